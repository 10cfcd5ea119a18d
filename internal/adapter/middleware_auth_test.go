package adapter

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/revise/internal/identity"
)

func TestAuthMiddleware(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name      string
		method    string
		token     string
		wantCalls int
		wantErr   error
	}{
		{name: "anonymous get passes", method: http.MethodGet, wantCalls: 1},
		{name: "anonymous post rejected", method: http.MethodPost, wantErr: ErrAnonymous},
		{name: "anonymous delete rejected", method: http.MethodDelete, wantErr: ErrAnonymous},
		{name: "authenticated post passes", method: http.MethodPost, token: signed, wantCalls: 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tokens := identity.NewTokenSource()
			if test.token != "" {
				tokens.SetToken(test.token)
			}

			calls := 0
			next := func(_ context.Context, _ *Request) (*Response, error) {
				calls++
				return &Response{}, nil
			}

			_, err := NewAuthMiddleware(tokens)(next)(context.Background(), &Request{Method: test.method, URL: "/api/settings"})
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, test.wantCalls, calls)
		})
	}
}
