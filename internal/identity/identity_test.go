package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestTokenSource_EmptyIsAnonymous(t *testing.T) {
	s := NewTokenSource()
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())
}

func TestTokenSource_SetToken_Trims(t *testing.T) {
	s := NewTokenSource()
	s.SetToken("  abc  ")
	assert.Equal(t, "abc", s.Token())
}

func TestTokenSource_GarbageTokenIsAnonymous(t *testing.T) {
	s := NewTokenSource()
	s.SetToken("not-a-jwt")
	assert.False(t, s.Authenticated())
}

func TestTokenSource_ValidToken(t *testing.T) {
	s := NewTokenSource()
	s.SetToken(signedToken(t, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
	}))
	assert.True(t, s.Authenticated())
}

func TestTokenSource_ExpiredToken(t *testing.T) {
	s := NewTokenSource()
	s.SetToken(signedToken(t, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}))
	assert.False(t, s.Authenticated())
}

func TestTokenSource_ExpiryLeeway(t *testing.T) {
	s := NewTokenSource()
	// expired ten seconds ago, still inside the 30s leeway window
	s.SetToken(signedToken(t, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(-10 * time.Second).Unix(),
	}))
	assert.True(t, s.Authenticated())
}

func TestTokenSource_NoExpiryClaim(t *testing.T) {
	s := NewTokenSource()
	s.SetToken(signedToken(t, jwt.MapClaims{"sub": "42"}))
	assert.True(t, s.Authenticated())
}

func TestTokenSource_ClearToken(t *testing.T) {
	s := NewTokenSource()
	s.SetToken(signedToken(t, jwt.MapClaims{"sub": "42"}))
	require.True(t, s.Authenticated())

	s.SetToken("")
	assert.False(t, s.Authenticated())
}
