// Package csrf implements the synchronizer-token guard used on every
// state-changing form. Tokens live in the server-side session, are single
// use and expire after a configurable TTL.
package csrf

import (
	"strconv"
	"time"

	"github.com/dashmed/dashmed/internal/session"
	"github.com/dashmed/dashmed/internal/token"
)

const (
	keyToken    = "csrf_token"
	keyIssuedAt = "csrf_issued_at"
)

// Token returns the session's current CSRF token, minting one when none is
// stored. Calling it twice while rendering a page with several forms hands
// out the same value.
func Token(sess *session.Session) (string, error) {
	if existing, ok := sess.Get(keyToken); ok && existing != "" {
		return existing, nil
	}
	t, err := token.New()
	if err != nil {
		return "", err
	}
	sess.Set(keyToken, t)
	sess.Set(keyIssuedAt, strconv.FormatInt(time.Now().Unix(), 10))
	return t, nil
}

// Validate checks a submitted token against the session's stored one. The
// stored token is removed before any comparison, so a token can never be
// replayed, not even after a failed attempt.
func Validate(sess *session.Session, submitted string, ttl time.Duration) bool {
	stored, ok := sess.Get(keyToken)
	issuedRaw, _ := sess.Get(keyIssuedAt)
	sess.Delete(keyToken)
	sess.Delete(keyIssuedAt)

	if !ok || stored == "" || submitted == "" {
		return false
	}

	issued, err := strconv.ParseInt(issuedRaw, 10, 64)
	if err != nil {
		return false
	}
	if time.Since(time.Unix(issued, 0)) > ttl {
		return false
	}

	return token.Equal(stored, submitted)
}
