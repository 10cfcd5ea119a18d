package adapter

import "errors"

var (
	// ErrAnonymous marks requests rejected because the client holds no
	// usable identity. Never queued for retry: replaying an anonymous
	// mutation is pointless.
	ErrAnonymous = errors.New("client anonymous")

	// ErrConflict marks a mutating request whose concurrency token was
	// stale: the resource moved on the server since this client last saw
	// it. Fatal to the operation; the engine raises the out-of-sync flag.
	ErrConflict = errors.New("concurrency token conflict")

	// ErrNotFound marks a resource the server holds nothing for.
	ErrNotFound = errors.New("resource not found")

	// ErrUnavailable marks transient transport failures: no connectivity,
	// gateway timeouts, server errors. Recovered locally by queueing the
	// mutation or serving the last known good value.
	ErrUnavailable = errors.New("remote store unavailable")
)
