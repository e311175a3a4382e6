// Package token issues and compares the opaque secrets used by the
// activation, email-verification and password-reset flows.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// Size is the number of random bytes per token; hex encoding doubles it.
const Size = 32

// New returns a fresh random token: 32 bytes, hex encoded (64 characters).
func New() (string, error) {
	buf := make([]byte, Size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashSHA256 returns the hex-encoded SHA-256 digest of a raw token.
// Reset tokens are persisted only in this form.
func HashSHA256(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Equal compares two tokens in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
