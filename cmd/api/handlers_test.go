package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopify-sync-bridge/internal/domain"
	shopifyinfra "shopify-sync-bridge/internal/infrastructure/shopify"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	err error

	topic      string
	shopDomain string
	payload    []byte
	resource   string
}

func (f *fakeDispatcher) EnqueueWebhook(ctx context.Context, topic, shopDomain string, payload []byte) (string, error) {
	f.topic = topic
	f.shopDomain = shopDomain
	f.payload = payload
	if f.err != nil {
		return "", f.err
	}
	return "task-123", nil
}

func (f *fakeDispatcher) EnqueueSync(ctx context.Context, resource, shopDomain string) (string, error) {
	f.resource = resource
	f.shopDomain = shopDomain
	if f.err != nil {
		return "", f.err
	}
	return "task-456", nil
}

type fakeShopStore struct {
	shops map[string]*domain.Shop
}

func (f *fakeShopStore) Save(ctx context.Context, shop *domain.Shop) error { return nil }

func (f *fakeShopStore) GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	return f.shops[shopDomain], nil
}

func (f *fakeShopStore) Delete(ctx context.Context, shopID uint) error { return nil }

const testSecret = "shpss_test_secret"

func postWebhook(t *testing.T, handler http.HandlerFunc, body []byte, sign bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/products/create", bytes.NewReader(body))
	req.Header.Set("X-Shopify-Shop-Domain", "example.myshopify.com")
	if sign {
		req.Header.Set("X-Shopify-Hmac-Sha256", shopifyinfra.Sign(testSecret, body))
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestWebhookHandler(t *testing.T) {
	verifier := shopifyinfra.NewVerifier(testSecret)

	t.Run("valid delivery is acknowledged and enqueued", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		handler := webhookHandler(domain.TopicProductsCreate, verifier, dispatcher, zerolog.Nop())

		body := []byte(`{"id":555,"title":"Widget","handle":"widget"}`)
		rec := postWebhook(t, handler, body, true)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
		assert.Equal(t, domain.TopicProductsCreate, dispatcher.topic)
		assert.Equal(t, "example.myshopify.com", dispatcher.shopDomain)
		assert.Equal(t, body, dispatcher.payload)
	})

	t.Run("missing signature is rejected before parsing", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		handler := webhookHandler(domain.TopicProductsCreate, verifier, dispatcher, zerolog.Nop())

		rec := postWebhook(t, handler, []byte(`{"id":555}`), false)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, dispatcher.topic)
	})

	t.Run("tampered body is rejected", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		handler := webhookHandler(domain.TopicProductsCreate, verifier, dispatcher, zerolog.Nop())

		body := []byte(`{"id":555}`)
		req := httptest.NewRequest(http.MethodPost, "/webhooks/products/create", bytes.NewReader(body))
		req.Header.Set("X-Shopify-Hmac-Sha256", shopifyinfra.Sign(testSecret, []byte(`{"id":666}`)))
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("signed but malformed JSON is a 400", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		handler := webhookHandler(domain.TopicProductsCreate, verifier, dispatcher, zerolog.Nop())

		rec := postWebhook(t, handler, []byte(`{"id":555`), true)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, dispatcher.topic)
	})

	t.Run("enqueue failure still acknowledges", func(t *testing.T) {
		dispatcher := &fakeDispatcher{err: errors.New("redis down")}
		handler := webhookHandler(domain.TopicProductsCreate, verifier, dispatcher, zerolog.Nop())

		rec := postWebhook(t, handler, []byte(`{"id":555,"title":"Widget"}`), true)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
	})

	t.Run("disabled verifier accepts unsigned deliveries", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		handler := webhookHandler(domain.TopicProductsCreate, shopifyinfra.NewVerifier(""), dispatcher, zerolog.Nop())

		rec := postWebhook(t, handler, []byte(`{"id":555}`), false)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSyncTriggerHandler(t *testing.T) {
	shops := &fakeShopStore{shops: map[string]*domain.Shop{
		"example.myshopify.com": {ID: 1, ShopDomain: "example.myshopify.com"},
	}}

	trigger := func(t *testing.T, dispatcher *fakeDispatcher, body string) *httptest.ResponseRecorder {
		t.Helper()
		handler := syncTriggerHandler(domain.SyncProducts, shops, dispatcher, zerolog.Nop())
		req := httptest.NewRequest(http.MethodPost, "/api/sync/products", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec
	}

	t.Run("known shop is queued with a task id", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		rec := trigger(t, dispatcher, `{"shop":"example.myshopify.com"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "queued", resp["status"])
		assert.Equal(t, "task-456", resp["task_id"])
		assert.Equal(t, domain.SyncProducts, dispatcher.resource)
	})

	t.Run("unknown shop is a 404", func(t *testing.T) {
		rec := trigger(t, &fakeDispatcher{}, `{"shop":"ghost.myshopify.com"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Shop not found"}`, rec.Body.String())
	})

	t.Run("missing shop is a 400", func(t *testing.T) {
		rec := trigger(t, &fakeDispatcher{}, `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListHandler(t *testing.T) {
	shops := &fakeShopStore{shops: map[string]*domain.Shop{
		"example.myshopify.com": {ID: 1, ShopDomain: "example.myshopify.com", AccessToken: "shpat_x"},
	}}

	fetch := func(ctx context.Context, shop, accessToken string) ([]domain.ProductPayload, error) {
		assert.Equal(t, "shpat_x", accessToken)
		return []domain.ProductPayload{{ID: 555, Title: "Widget"}}, nil
	}

	t.Run("proxies a live read", func(t *testing.T) {
		handler := listHandler("products", shops, fetch, zerolog.Nop())
		req := httptest.NewRequest(http.MethodGet, "/api/products?shop=example.myshopify.com", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Products []domain.ProductPayload `json:"products"`
			Count    int                     `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, int64(555), resp.Products[0].ID)
	})

	t.Run("unknown shop is a 404", func(t *testing.T) {
		handler := listHandler("products", shops, fetch, zerolog.Nop())
		req := httptest.NewRequest(http.MethodGet, "/api/products?shop=ghost.myshopify.com", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing shop parameter is a 400", func(t *testing.T) {
		handler := listHandler("products", shops, fetch, zerolog.Nop())
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
