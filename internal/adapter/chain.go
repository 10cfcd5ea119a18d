// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anna Velichko

package adapter

import (
	"context"
	"encoding/json"
)

// Request is one outbound call before serialisation. URL is relative to the
// transport's base URL and may carry a query component (e.g.
// "/api/events/detail?id=7"). Body is nil for GET, a [models.WriteRequest]
// for single-item mutations, or a [models.BulkRequest] for coalesced calls.
type Request struct {
	Method string
	URL    string
	Body   any
}

// Response is the decoded body of a successful call. Data is kept raw
// because the bulk endpoint nests per-item envelopes inside it while every
// other endpoint carries a plain serialized value.
type Response struct {
	Data      json.RawMessage `json:"data"`
	UpdatedAt string          `json:"updatedAt,omitempty"`
}

// Handler executes one request. The base handler talks HTTP; middleware
// handlers wrap it.
type Handler func(ctx context.Context, req *Request) (*Response, error)

// Middleware wraps a Handler with additional behaviour. Middleware must call
// next at most once per logical outcome and must always deliver a response or
// error to the caller.
type Middleware func(next Handler) Handler

// Chain composes mws around base, with mws[0] outermost.
func Chain(base Handler, mws ...Middleware) Handler {
	h := base
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// DataString interprets the raw data payload as the serialized resource
// value. Servers encode values as JSON strings; anything else is passed
// through verbatim so a misbehaving backend degrades to garbage-in-cache
// rather than a decode failure.
func (r *Response) DataString() string {
	if r == nil || len(r.Data) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(r.Data, &s); err == nil {
		return s
	}
	return string(r.Data)
}
