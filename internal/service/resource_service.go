// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anna Velichko

package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/avelichko/revise/internal/adapter"
	"github.com/avelichko/revise/internal/logger"
	"github.com/avelichko/revise/internal/store"
	"github.com/avelichko/revise/models"
)

type resourceService struct {
	kv        store.KVStore
	transport adapter.Transport
	markers   *lastUpdateMap
	pending   *pendingSet
	log       *logger.Logger

	flights   singleflight.Group
	outOfSync atomic.Bool
}

// NewResourceService builds the engine over a local store and a transport.
// The marker map is loaded from the store immediately; everything else starts
// empty.
func NewResourceService(kv store.KVStore, transport adapter.Transport, log *logger.Logger) ResourceService {
	return &resourceService{
		kv:        kv,
		transport: transport,
		markers:   newLastUpdateMap(kv, log),
		pending:   newPendingSet(),
		log:       log,
	}
}

// Read implements [ResourceService].
func (s *resourceService) Read(ctx context.Context, url, key string, opts ReadOptions) (string, error) {
	if !opts.BypassCache {
		if value, ok := s.kv.GetItem(key); ok {
			return value, nil
		}
	}

	value, err, _ := s.flights.Do(url, func() (any, error) {
		env, err := s.transport.Get(ctx, url)
		if err != nil {
			return nil, err
		}

		s.kv.SetItem(key, env.Data)
		s.markers.RecordUpdate(key, env.UpdatedAt)
		return env.Data, nil
	})
	if err != nil {
		return s.recoverRead(url, key, opts, err)
	}

	return value.(string), nil
}

// recoverRead degrades a failed fetch to the last known good value, then to
// the caller's default. Read failures never propagate.
func (s *resourceService) recoverRead(url, key string, opts ReadOptions, err error) (string, error) {
	if !errors.Is(err, adapter.ErrAnonymous) {
		if cached, ok := s.kv.GetItem(key); ok {
			s.log.Debug().Str("url", url).Err(err).Msg("read failed, serving cached value")
			return cached, nil
		}
	}

	s.log.Debug().Str("url", url).Err(err).Msg("read failed, serving default")
	return opts.Default, nil
}

// Write implements [ResourceService].
func (s *resourceService) Write(ctx context.Context, url, key, value string) (string, error) {
	// optimistic local commit, before and independent of the network call
	s.kv.SetItem(key, value)

	token, _ := s.markers.Marker(key)
	req := models.WriteRequest{Data: value, LastUpdatedAt: token}

	env, err := s.transport.Post(ctx, url, req)
	if err == nil {
		s.kv.SetItem(key, env.Data)
		s.markers.RecordUpdate(key, env.UpdatedAt)
		return env.Data, nil
	}

	switch {
	case errors.Is(err, adapter.ErrConflict):
		// the optimistic entry stays: conflicts are surfaced, not rolled back
		s.outOfSync.Store(true)
		s.log.Warn().Str("url", url).Msg("write conflict, client out of sync")
		return value, fmt.Errorf("write %s: %w", url, err)

	case errors.Is(err, adapter.ErrAnonymous):
		// replaying an anonymous mutation is pointless, nothing is queued
		s.log.Debug().Str("url", url).Msg("anonymous write kept local only")
		return value, nil

	default:
		s.pending.put(models.PendingChange{URL: url, Method: http.MethodPost, Body: req})
		s.log.Debug().Str("url", url).Err(err).Msg("write deferred to pending queue")
		return value, nil
	}
}

// Delete implements [ResourceService].
func (s *resourceService) Delete(ctx context.Context, url, key string) (string, error) {
	previous, _ := s.kv.GetItem(key)

	// local removal is final, regardless of the remote outcome
	s.kv.RemoveItem(key)

	token, _ := s.markers.Marker(key)
	req := models.WriteRequest{LastUpdatedAt: token}

	_, err := s.transport.Delete(ctx, url, req)
	if err == nil {
		s.markers.RecordRemoval(key)
		return previous, nil
	}

	switch {
	case errors.Is(err, adapter.ErrConflict):
		s.outOfSync.Store(true)
		s.log.Warn().Str("url", url).Msg("delete conflict, client out of sync")
		return previous, fmt.Errorf("delete %s: %w", url, err)

	case errors.Is(err, adapter.ErrAnonymous):
		return previous, nil

	default:
		s.pending.put(models.PendingChange{URL: url, Method: http.MethodDelete, Body: req})
		s.log.Debug().Str("url", url).Err(err).Msg("delete deferred to pending queue")
		return previous, nil
	}
}

// SyncPendingChanges implements [ResourceService].
func (s *resourceService) SyncPendingChanges(ctx context.Context) (int, error) {
	for _, change := range s.pending.snapshot() {
		if !s.pending.tryAcquire(change.URL) {
			continue
		}
		s.replayPending(ctx, change)
		s.pending.release(change.URL)
	}

	return s.pending.count(), nil
}

func (s *resourceService) replayPending(ctx context.Context, change models.PendingChange) {
	var err error
	switch change.Method {
	case http.MethodDelete:
		_, err = s.transport.Delete(ctx, change.URL, change.Body)
	default:
		_, err = s.transport.Post(ctx, change.URL, change.Body)
	}

	switch {
	case err == nil:
		s.pending.remove(change.URL)

	case errors.Is(err, adapter.ErrConflict):
		// the resource moved on; replaying the same token again cannot win
		s.outOfSync.Store(true)
		s.pending.remove(change.URL)
		s.log.Warn().Str("url", change.URL).Msg("pending change dropped on conflict")

	case errors.Is(err, adapter.ErrAnonymous):
		s.pending.remove(change.URL)
		s.log.Debug().Str("url", change.URL).Msg("pending change dropped, client anonymous")

	default:
		s.log.Debug().Str("url", change.URL).Err(err).Msg("pending change still failing")
	}
}

// OutOfSync implements [ResourceService].
func (s *resourceService) OutOfSync() bool {
	return s.outOfSync.Load()
}

// PendingCount implements [ResourceService].
func (s *resourceService) PendingCount() int {
	return s.pending.count()
}

// Flush implements [ResourceService].
func (s *resourceService) Flush() {
	s.markers.Flush()
}
