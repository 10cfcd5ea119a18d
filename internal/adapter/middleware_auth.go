package adapter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avelichko/revise/internal/identity"
)

// NewAuthMiddleware fails mutating requests fast while the client is
// anonymous, before any network traffic. Reads are allowed through: the
// server decides what an anonymous client may see, and its 401 maps to the
// same [ErrAnonymous].
func NewAuthMiddleware(tokens *identity.TokenSource) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if req.Method != http.MethodGet && !tokens.Authenticated() {
				return nil, fmt.Errorf("%w: %s %s", ErrAnonymous, req.Method, req.URL)
			}
			return next(ctx, req)
		}
	}
}
