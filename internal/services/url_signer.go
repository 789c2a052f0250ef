package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"
)

// URLSigner issues and checks short-lived HMAC tokens for file links, so
// download URLs can be handed to clients without exposing the files
// themselves.
type URLSigner interface {
	// Sign returns a token and its unix expiry for one (file, user) pair.
	Sign(fileID, userID uint) (token string, expires int64)
	// Verify checks a token against the (file, user) pair and its expiry.
	Verify(fileID, userID uint, expires int64, token string) bool
}

const fileTokenValidity = 3 * time.Minute

type hmacURLSigner struct {
	key   []byte
	clock Clock
}

func NewURLSigner(secret string, clock Clock) URLSigner {
	return &hmacURLSigner{
		key:   []byte(secret),
		clock: clock,
	}
}

func (s *hmacURLSigner) Sign(fileID, userID uint) (string, int64) {
	expires := s.clock.Now().Add(fileTokenValidity).Unix()
	return s.compute(fileID, userID, expires), expires
}

func (s *hmacURLSigner) Verify(fileID, userID uint, expires int64, token string) bool {
	if s.clock.Now().Unix() > expires {
		return false
	}

	expected := s.compute(fileID, userID, expires)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

func (s *hmacURLSigner) compute(fileID, userID uint, expires int64) string {
	payload := fmt.Sprintf("%d|%d|%d", fileID, userID, expires)
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
