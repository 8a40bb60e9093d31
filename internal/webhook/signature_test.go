package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifier(t *testing.T) {
	secret := "test-secret"
	body := []byte(`{"id":5001,"currency":"USD","line_items":[]}`)

	t.Run("accepts a correctly signed body", func(t *testing.T) {
		v := NewVerifier(secret)
		assert.True(t, v.Verify(body, Sign(secret, body)))
	})

	t.Run("rejects a tampered body", func(t *testing.T) {
		v := NewVerifier(secret)
		digest := Sign(secret, body)

		tampered := []byte(`{"id":5002,"currency":"USD","line_items":[]}`)
		assert.False(t, v.Verify(tampered, digest))
	})

	t.Run("rejects a digest from a different secret", func(t *testing.T) {
		v := NewVerifier(secret)
		assert.False(t, v.Verify(body, Sign("other-secret", body)))
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		v := NewVerifier(secret)
		assert.False(t, v.Verify(body, ""))
	})

	t.Run("rejects undecodable base64", func(t *testing.T) {
		v := NewVerifier(secret)
		assert.False(t, v.Verify(body, "not-valid-base64!!!"))
	})

	t.Run("fails closed with an empty secret", func(t *testing.T) {
		v := NewVerifier("")
		assert.False(t, v.Verify(body, Sign("", body)))
	})

	t.Run("whitespace changes the digest", func(t *testing.T) {
		v := NewVerifier(secret)
		reserialized := []byte(`{"id": 5001, "currency": "USD", "line_items": []}`)
		assert.False(t, v.Verify(reserialized, Sign(secret, body)))
	})
}
