package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"shopify-sync-bridge/internal/application"
	"shopify-sync-bridge/internal/infrastructure/metrics"
	"shopify-sync-bridge/internal/infrastructure/sessions"
	shopifyinfra "shopify-sync-bridge/internal/infrastructure/shopify"
	"shopify-sync-bridge/internal/ports"

	"github.com/rs/zerolog"
)

// maxWebhookBody caps inbound webhook bodies well above anything the vendor
// sends.
const maxWebhookBody = 2 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// webhookHandler is the ingestion boundary for one webhook topic: verify
// the signature, sanity-check the JSON, enqueue, acknowledge. The vendor
// retries deliveries that do not get a 2xx quickly, so processing never
// happens inline. An enqueue failure is still acknowledged: the payload is
// logged for manual replay rather than bounced back for a redelivery storm.
func webhookHandler(
	topic string,
	verifier *shopifyinfra.Verifier,
	dispatcher ports.TaskDispatcher,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to read request body")
			return
		}

		signature := r.Header.Get("X-Shopify-Hmac-Sha256")
		if !verifier.Verify(body, signature) {
			metrics.WebhooksRejected.WithLabelValues("bad_signature").Inc()
			logger.Warn().Str("topic", topic).Msg("Webhook rejected: invalid signature")
			writeError(w, http.StatusUnauthorized, "Invalid webhook signature")
			return
		}

		if !json.Valid(body) {
			metrics.WebhooksRejected.WithLabelValues("malformed_json").Inc()
			writeError(w, http.StatusBadRequest, "Invalid JSON payload")
			return
		}

		metrics.WebhooksReceived.WithLabelValues(topic).Inc()
		shopDomain := r.Header.Get("X-Shopify-Shop-Domain")

		taskID, err := dispatcher.EnqueueWebhook(r.Context(), topic, shopDomain, body)
		if err != nil {
			// Acknowledge anyway: the delivery is verified and logged, manual
			// replay beats a vendor redelivery storm.
			metrics.EnqueueFailures.Inc()
			logger.Error().Err(err).
				Str("topic", topic).
				Str("shop", shopDomain).
				RawJSON("payload", body).
				Msg("Failed to enqueue webhook, payload logged for replay")
			writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
			return
		}

		logger.Info().
			Str("topic", topic).
			Str("shop", shopDomain).
			Str("task_id", taskID).
			Msg("Webhook enqueued")
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

// syncTriggerHandler queues a full resync of one resource kind for the shop
// named in the request body.
func syncTriggerHandler(
	resource string,
	shops ports.ShopStore,
	dispatcher ports.TaskDispatcher,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Shop string `json:"shop"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Shop == "" {
			writeError(w, http.StatusBadRequest, "shop is required")
			return
		}

		shop, err := shops.GetByDomain(r.Context(), req.Shop)
		if err != nil {
			logger.Error().Err(err).Str("shop", req.Shop).Msg("Failed to look up shop")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if shop == nil {
			writeError(w, http.StatusNotFound, "Shop not found")
			return
		}

		taskID, err := dispatcher.EnqueueSync(r.Context(), resource, req.Shop)
		if err != nil {
			logger.Error().Err(err).Str("resource", resource).Str("shop", req.Shop).Msg("Failed to enqueue sync")
			writeError(w, http.StatusInternalServerError, "Failed to queue sync")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status":   "queued",
			"resource": resource,
			"task_id":  taskID,
		})
	}
}

// vendorFetch abstracts the three passthrough list calls over their payload
// types.
type vendorFetch[T any] func(ctx context.Context, shop string, accessToken string) ([]T, error)

// listHandler proxies a live read against the vendor API using the shop's
// stored credential. Nothing is persisted on this path.
func listHandler[T any](
	key string,
	shops ports.ShopStore,
	fetch vendorFetch[T],
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopDomain := r.URL.Query().Get("shop")
		if shopDomain == "" {
			writeError(w, http.StatusBadRequest, "shop query parameter is required")
			return
		}

		shop, err := shops.GetByDomain(r.Context(), shopDomain)
		if err != nil {
			logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to look up shop")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if shop == nil {
			writeError(w, http.StatusNotFound, "Shop not found")
			return
		}

		items, err := fetch(r.Context(), shop.ShopDomain, shop.AccessToken)
		if err != nil {
			logger.Error().Err(err).Str("shop", shopDomain).Str("resource", key).Msg("Vendor API read failed")
			writeError(w, http.StatusBadGateway, "Vendor API request failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			key:     items,
			"count": len(items),
		})
	}
}

// authInitHandler starts the OAuth flow: CSRF state goes to the session
// store, then the merchant is redirected to the vendor's consent screen.
func authInitHandler(
	auth *application.AuthService,
	store *sessions.Store,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		if !application.ValidShopDomain(shop) {
			writeError(w, http.StatusBadRequest, "Invalid shop parameter")
			return
		}

		stateBytes := make([]byte, 16)
		if _, err := rand.Read(stateBytes); err != nil {
			logger.Error().Err(err).Msg("Failed to generate oauth state")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		state := hex.EncodeToString(stateBytes)

		if err := store.SaveState(r.Context(), state, shop); err != nil {
			logger.Error().Err(err).Msg("Failed to save oauth state")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		http.Redirect(w, r, auth.AuthorizeURL(shop, state), http.StatusFound)
	}
}

// authCallbackHandler finishes the OAuth flow: one-shot state check, code
// exchange, shop upsert, compliance webhook registration.
func authCallbackHandler(
	auth *application.AuthService,
	store *sessions.Store,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if shop == "" || code == "" || state == "" {
			writeError(w, http.StatusBadRequest, "Missing required parameters")
			return
		}

		issuedFor, err := store.ConsumeState(r.Context(), state)
		if errors.Is(err, sessions.ErrStateNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid or expired state")
			return
		}
		if err != nil {
			logger.Error().Err(err).Msg("Failed to consume oauth state")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if issuedFor != shop {
			writeError(w, http.StatusUnauthorized, "State does not match shop")
			return
		}

		record, err := auth.CompleteOAuth(r.Context(), shop, code)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("OAuth completion failed")
			writeError(w, http.StatusInternalServerError, "Authorization failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status": "connected",
			"shop":   record.ShopDomain,
		})
	}
}
