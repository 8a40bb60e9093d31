package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignatureHeader carries the base64-encoded HMAC-SHA256 digest of the
// raw request body
const SignatureHeader = "X-Webhook-Hmac-Sha256"

// Verifier validates webhook authenticity. It is stateless; every call
// is independent.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for the given shared secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify computes HMAC-SHA256 over the raw body and compares it to the
// provided base64 digest in constant time. Fails closed: a missing
// secret, missing header, or undecodable digest is invalid.
func (v *Verifier) Verify(body []byte, digest string) bool {
	if len(v.secret) == 0 || digest == "" {
		return false
	}

	provided, err := base64.StdEncoding.DecodeString(digest)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)

	return hmac.Equal(mac.Sum(nil), provided)
}

// Sign produces the base64 HMAC-SHA256 digest for a body. Used by tests
// and by operators replaying deliveries.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
