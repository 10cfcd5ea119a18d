// Package service implements the offline-first resource engine: cache-aside
// reads with in-flight deduplication, optimistic writes with a pending-change
// queue, a catch-up sync pass driven by the remote manifest, and the
// background job that runs it.
//
// The engine swallows transient failures at its boundary. Callers observe
// degradation only through the pending-change count and the out-of-sync flag;
// the single error that propagates is a concurrency conflict, which requires
// an explicit full Sync to clear.
package service

import (
	"context"
	"time"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/resource_service_mock.go -package=mock

// ReadOptions control a single Read call.
type ReadOptions struct {
	// BypassCache forces a network fetch even when a cache entry exists.
	BypassCache bool

	// Default is returned when the value is unreachable: no cache entry and
	// the remote store rejected the request as anonymous or was unavailable.
	Default string
}

// ResourceService is the engine's public surface. Every operation takes the
// resource's remote url and its local cache key; the two are correlated but
// independent, so callers own the naming scheme (see keys.go for the one this
// installation uses).
type ResourceService interface {
	// Read returns the resource value. A cache hit (the empty string is a
	// valid cached value) short-circuits the network unless
	// opts.BypassCache is set. Concurrent reads of the same url share one
	// outbound GET. Failures degrade to the cached value, then to
	// opts.Default; Read does not fail on transport errors.
	Read(ctx context.Context, url, key string, opts ReadOptions) (string, error)

	// Write commits value to the local cache first, then posts it with the
	// recorded marker as a concurrency token. Transient failures enqueue a
	// pending change for url (replacing any prior one) and still return
	// the locally committed value with a nil error. A stale token returns
	// an error wrapping adapter.ErrConflict and raises the out-of-sync
	// flag; the optimistic cache entry is kept either way.
	Write(ctx context.Context, url, key, value string) (string, error)

	// Delete removes the cache entry and issues the remote delete, using
	// the recorded marker as the concurrency token. The prior value is
	// returned. Local removal is final: the failure path mirrors Write's
	// but nothing is restored.
	Delete(ctx context.Context, url, key string) (string, error)

	// Sync is the full catch-up pass: drops all pending changes, clears
	// the out-of-sync flag, flushes the marker map, then fetches the
	// remote manifest and force-reads every resource whose remote marker
	// is strictly newer than the local one. A failed or anonymous manifest
	// fetch is treated as "nothing newer", not an error. Safe to invoke
	// while a previous pass is still settling.
	Sync(ctx context.Context) error

	// SyncPendingChanges replays every queued change, removing exactly
	// those that now succeed, and returns the number still outstanding.
	// No change's request is ever issued more than once concurrently.
	SyncPendingChanges(ctx context.Context) (int, error)

	// OutOfSync reports whether a conflict was detected since the last
	// successful full Sync.
	OutOfSync() bool

	// PendingCount reports the number of queued changes.
	PendingCount() int

	// Flush synchronously persists the marker map, bypassing the debounce
	// window. Called on teardown so the last quarter second of marker
	// mutations is not lost.
	Flush()
}

// SyncJob is the background worker that periodically runs the full sync
// pass and replays pending changes.
type SyncJob interface {
	// Start launches the background goroutine, stopping any previous run
	// first. The interval defaults to 5 minutes when zero or negative.
	Start(ctx context.Context, interval time.Duration)

	// Trigger requests an immediate pass outside the ticker schedule.
	// Non-blocking; coalesces with an already queued trigger. Used by the
	// UI layer on visibility and reconnect signals.
	Trigger()

	// Stop cancels the background goroutine and blocks until it exits.
	// Safe to call when the job is not running.
	Stop()
}
