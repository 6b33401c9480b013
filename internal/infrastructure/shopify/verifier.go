package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Verifier validates the authenticity of inbound webhook payloads. The
// vendor signs the raw request body with HMAC-SHA256 and transmits the
// digest base64-encoded in a header; the comparison here is over the
// encoded strings, since that is what the vendor sends.
type Verifier struct {
	secret string
}

// NewVerifier creates a verifier for the shared webhook secret. An empty
// secret turns the verifier into an accept-everything no-op; this is a
// development-mode bypass that Enabled exposes so production configuration
// checks can reject it.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Enabled reports whether verification is actually performed.
func (v *Verifier) Enabled() bool {
	return v.secret != ""
}

// Verify reports whether signature authenticates body. A missing signature
// fails closed. Length mismatch fails before any content comparison, and
// equal-length comparison is constant-time.
func (v *Verifier) Verify(body []byte, signature string) bool {
	if v.secret == "" {
		return true
	}
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if len(expected) != len(signature) {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the base64-encoded HMAC-SHA256 signature for body with the
// given secret, exactly as the vendor does.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
