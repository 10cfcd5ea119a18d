// Package adapter provides the transport layer for communicating with the
// remote store.
//
// The primary abstraction is [Transport], which decouples the sync engine
// from the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPTransport]) built from a chain of composable [Middleware] around a
// resty base handler: request batching, anonymous fast-fail, and bounded
// retries are independent links in that chain.
//
// Error values defined in errors.go are mapped from HTTP status codes and the
// conflict sentinel payload by mapHTTPError so that callers can use
// [errors.Is] for transport-agnostic error handling (e.g. [ErrConflict] for a
// stale concurrency token, [ErrAnonymous] for 401).
package adapter

import (
	"context"

	"github.com/avelichko/revise/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/transport_mock.go -package=mock

// Transport issues requests against named resource URLs on the remote store.
// Implementations are responsible for serialisation, authentication header
// management, and mapping transport-level errors to the sentinel values
// defined in this package.
type Transport interface {
	// Get fetches the resource at url and returns its envelope: the
	// serialized value plus the server's last-modified marker.
	Get(ctx context.Context, url string) (models.Envelope, error)

	// Post writes body.Data to the resource at url. body.LastUpdatedAt
	// carries the concurrency token of the last state this client saw;
	// a stale token yields [ErrConflict]. Returns the server-echoed value
	// and the new marker.
	Post(ctx context.Context, url string, body models.WriteRequest) (models.Envelope, error)

	// Delete removes the resource at url, subject to the same concurrency
	// token check as Post.
	Delete(ctx context.Context, url string, body models.WriteRequest) (models.Envelope, error)
}
