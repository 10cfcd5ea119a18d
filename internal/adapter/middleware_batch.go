// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anna Velichko

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/revise/internal/logger"
	"github.com/avelichko/revise/models"
)

const (
	// batchIdleWindow is how long a batch stays open after its most recent
	// item before it is flushed.
	batchIdleWindow = 250 * time.Millisecond

	// batchMaxItems closes a batch immediately once reached.
	batchMaxItems = 100
)

type batchKey struct {
	method  string
	baseURL string
}

type batchResult struct {
	resp *Response
	err  error
}

type batchItem struct {
	id     string
	body   models.WriteRequest
	result chan batchResult
}

type openBatch struct {
	id    string // correlation id for logs
	ctx   context.Context
	items []batchItem
	timer *time.Timer
}

type batcher struct {
	next     Handler
	families map[string]struct{}
	log      *logger.Logger

	mu      sync.Mutex
	batches map[batchKey]*openBatch
}

// NewBatchMiddleware coalesces per-item requests against the whitelisted URL
// families into bulk calls. Requests to the same family issued within the
// idle window share one call to baseURL+"/?bulk"; the bulk response is fanned
// back out so every caller observes its own item's envelope (or the shared
// failure). Batches never span methods or base URLs, and batch state lives
// only for the lifetime of the chain instance.
func NewBatchMiddleware(log *logger.Logger, families ...string) Middleware {
	return func(next Handler) Handler {
		b := &batcher{
			next:     next,
			families: make(map[string]struct{}, len(families)),
			log:      log,
			batches:  make(map[batchKey]*openBatch),
		}
		for _, f := range families {
			b.families[strings.TrimRight(f, "/")] = struct{}{}
		}
		return b.handle
	}
}

func (b *batcher) handle(ctx context.Context, req *Request) (*Response, error) {
	base, itemID, eligible := b.splitBulkURL(req)
	if !eligible {
		return b.next(ctx, req)
	}

	item := batchItem{id: itemID, result: make(chan batchResult, 1)}
	if body, ok := req.Body.(models.WriteRequest); ok {
		item.body = body
	}

	key := batchKey{method: req.Method, baseURL: base}

	b.mu.Lock()
	batch, ok := b.batches[key]
	if !ok {
		// the flush outlives any single contributor, so detach it from
		// the first caller's cancellation
		batch = &openBatch{id: uuid.NewString(), ctx: context.WithoutCancel(ctx)}
		b.batches[key] = batch
	}
	batch.items = append(batch.items, item)

	if len(batch.items) >= batchMaxItems {
		delete(b.batches, key)
		if batch.timer != nil {
			batch.timer.Stop()
		}
		b.mu.Unlock()
		b.flush(key, batch)
	} else {
		if batch.timer == nil {
			batch.timer = time.AfterFunc(batchIdleWindow, func() { b.closeIdle(key, batch) })
		} else {
			batch.timer.Reset(batchIdleWindow)
		}
		b.mu.Unlock()
	}

	res := <-item.result
	return res.resp, res.err
}

// closeIdle flushes batch unless the size boundary already closed it.
func (b *batcher) closeIdle(key batchKey, batch *openBatch) {
	b.mu.Lock()
	current, ok := b.batches[key]
	if !ok || current != batch {
		b.mu.Unlock()
		return
	}
	delete(b.batches, key)
	b.mu.Unlock()

	b.flush(key, batch)
}

// flush issues exactly one bulk request for the closed batch and delivers a
// result to every contributed item.
func (b *batcher) flush(key batchKey, batch *openBatch) {
	items := make([]models.BulkItem, 0, len(batch.items))
	for _, it := range batch.items {
		items = append(items, models.BulkItem{ID: it.id, Payload: it.body})
	}

	b.log.Debug().
		Str("batch_id", batch.id).
		Str("method", key.method).
		Str("base_url", key.baseURL).
		Int("items", len(items)).
		Msg("flushing bulk batch")

	req := &Request{
		Method: key.method,
		URL:    key.baseURL + "/?bulk",
		Body:   models.BulkRequest{Data: items, Method: key.method},
	}

	resp, err := b.next(batch.ctx, req)
	if err != nil {
		b.fanOutError(batch, err)
		return
	}

	perItem := make(map[string]json.RawMessage, len(batch.items))
	if len(resp.Data) > 0 {
		if err = json.Unmarshal(resp.Data, &perItem); err != nil {
			b.fanOutError(batch, fmt.Errorf("decode bulk response: %w", err))
			return
		}
	}

	for _, it := range batch.items {
		raw, ok := perItem[it.id]
		if !ok {
			it.result <- batchResult{err: fmt.Errorf("%w: no bulk result for item %s", ErrNotFound, it.id)}
			continue
		}

		var r Response
		if err := json.Unmarshal(raw, &r); err != nil {
			it.result <- batchResult{err: fmt.Errorf("decode bulk result for item %s: %w", it.id, err)}
			continue
		}
		if r.DataString() == models.ConflictSentinel {
			it.result <- batchResult{err: fmt.Errorf("%w: item %s", ErrConflict, it.id)}
			continue
		}

		it.result <- batchResult{resp: &r}
	}
}

func (b *batcher) fanOutError(batch *openBatch, err error) {
	for _, it := range batch.items {
		it.result <- batchResult{err: err}
	}
}

// splitBulkURL reports whether req targets a whitelisted family with a
// per-item id. The bulk flush request itself carries no id, so it can never
// be re-intercepted.
func (b *batcher) splitBulkURL(req *Request) (base, itemID string, ok bool) {
	base, query, found := strings.Cut(req.URL, "?")
	if !found {
		return "", "", false
	}

	base = strings.TrimRight(base, "/")
	if _, whitelisted := b.families[base]; !whitelisted {
		return "", "", false
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return "", "", false
	}
	itemID = values.Get("id")
	if itemID == "" {
		return "", "", false
	}

	return base, itemID, true
}
