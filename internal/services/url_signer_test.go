package services

import (
	"testing"
	"time"
)

func TestURLSigner(t *testing.T) {
	clock := &fixedClock{now: testNow}
	signer := NewURLSigner("signing-secret", clock)

	t.Run("round trip verifies", func(t *testing.T) {
		token, expires := signer.Sign(42, 100)
		if !signer.Verify(42, 100, expires, token) {
			t.Error("valid token rejected")
		}
	})

	t.Run("token is bound to the file and user", func(t *testing.T) {
		token, expires := signer.Sign(42, 100)
		if signer.Verify(43, 100, expires, token) {
			t.Error("token accepted for another file")
		}
		if signer.Verify(42, 101, expires, token) {
			t.Error("token accepted for another user")
		}
	})

	t.Run("tampered expiry is rejected", func(t *testing.T) {
		token, expires := signer.Sign(42, 100)
		if signer.Verify(42, 100, expires+3600, token) {
			t.Error("token accepted with extended expiry")
		}
	})

	t.Run("expires after its validity window", func(t *testing.T) {
		token, expires := signer.Sign(42, 100)

		later := NewURLSigner("signing-secret", fixedClock{now: testNow.Add(4 * time.Minute)})
		if later.Verify(42, 100, expires, token) {
			t.Error("expired token accepted")
		}
	})

	t.Run("different secret rejects", func(t *testing.T) {
		token, expires := signer.Sign(42, 100)
		other := NewURLSigner("other-secret", clock)
		if other.Verify(42, 100, expires, token) {
			t.Error("token accepted across secrets")
		}
	})
}
