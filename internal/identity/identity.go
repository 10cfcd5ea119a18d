// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anna Velichko

// Package identity holds the client's bearer token and derives the
// "authenticated" signal the sync engine consumes. Token issuance belongs to
// the external auth layer; this package only stores what it was handed and
// answers whether the stored token is still usable.
package identity

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// leeway tolerated when comparing the token expiry against the local clock.
const expiryLeeway = 30 * time.Second

// TokenSource stores the bearer token for outbound requests and reports
// whether the client currently counts as authenticated. Safe for concurrent
// use.
type TokenSource struct {
	mu    sync.RWMutex
	token string

	now func() time.Time // test hook
}

// NewTokenSource returns an empty, unauthenticated TokenSource.
func NewTokenSource() *TokenSource {
	return &TokenSource{now: time.Now}
}

// SetToken stores token (whitespace-trimmed) for use in the Authorization
// header of all subsequent requests. An empty token makes the source
// anonymous again.
func (s *TokenSource) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
}

// Token returns the bearer token currently held, or an empty string if none
// has been set.
func (s *TokenSource) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether the stored token looks usable: non-empty,
// parseable as a JWT, and not expired (with leeway). The signature is not
// verified here; the server remains the authority and anonymous rejections
// from it are handled by the transport's error mapping.
func (s *TokenSource) Authenticated() bool {
	token := s.Token()
	if token == "" {
		return false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp == nil {
		// tokens without exp never go stale locally
		return true
	}

	return s.now().Before(exp.Time.Add(expiryLeeway))
}
