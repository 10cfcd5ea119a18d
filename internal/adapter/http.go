package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/avelichko/revise/internal/config"
	"github.com/avelichko/revise/internal/identity"
	"github.com/avelichko/revise/internal/logger"
	"github.com/avelichko/revise/models"
)

// URL families eligible for request coalescing. Only per-item detail and
// description endpoints are high-frequency enough to batch.
const (
	EventDetailURL      = "/api/events/detail"
	EventDescriptionURL = "/api/events/description"
)

type httpTransport struct {
	client *resty.Client
	tokens *identity.TokenSource

	handler Handler

	logger *logger.Logger
}

// NewHTTPTransport constructs the HTTP implementation of [Transport]. It
// normalises and validates the base URL from adapterCfg.BaseURL, configures
// the underlying resty client with the resolved base URL and request timeout,
// and composes the middleware chain around the raw HTTP handler:
//
//	batching → anonymous fast-fail → bounded GET retry → HTTP
//
// Batching sits outermost so a flushed bulk request still passes through
// auth and retry like any other call.
//
// Returns an error if adapterCfg.BaseURL is empty or cannot be parsed as a
// valid URL.
func NewHTTPTransport(adapterCfg config.ClientAdapter, appCfg config.ClientApp, tokens *identity.TokenSource, log *logger.Logger) (Transport, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter base url: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout).
		SetAllowGetMethodPayload(true) // bulk GET batches carry a body
	if appCfg.Version != "" {
		client.SetHeader("User-Agent", "revise/"+appCfg.Version)
	}

	h := &httpTransport{client: client, tokens: tokens, logger: log}
	h.handler = Chain(h.do,
		NewBatchMiddleware(log, EventDetailURL, EventDescriptionURL),
		NewAuthMiddleware(tokens),
		NewRetryMiddleware(log),
	)

	return h, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Get implements [Transport].
func (h *httpTransport) Get(ctx context.Context, url string) (models.Envelope, error) {
	return h.roundTrip(ctx, &Request{Method: http.MethodGet, URL: url})
}

// Post implements [Transport].
func (h *httpTransport) Post(ctx context.Context, url string, body models.WriteRequest) (models.Envelope, error) {
	return h.roundTrip(ctx, &Request{Method: http.MethodPost, URL: url, Body: body})
}

// Delete implements [Transport].
func (h *httpTransport) Delete(ctx context.Context, url string, body models.WriteRequest) (models.Envelope, error) {
	return h.roundTrip(ctx, &Request{Method: http.MethodDelete, URL: url, Body: body})
}

func (h *httpTransport) roundTrip(ctx context.Context, req *Request) (models.Envelope, error) {
	resp, err := h.handler(ctx, req)
	if err != nil {
		return models.Envelope{}, err
	}

	return models.Envelope{Data: resp.DataString(), UpdatedAt: resp.UpdatedAt}, nil
}

// do is the innermost handler: one resty round-trip plus error mapping and
// the conflict sentinel check.
func (h *httpTransport) do(ctx context.Context, req *Request) (*Response, error) {
	r := h.client.R().SetContext(ctx)
	if token := h.tokens.Token(); token != "" {
		r.SetHeader("Authorization", "Bearer "+token)
	}
	if req.Body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, req.Method, req.URL, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var decoded Response
	if len(resp.Body()) > 0 {
		if err = json.Unmarshal(resp.Body(), &decoded); err != nil {
			return nil, fmt.Errorf("decode response for %s %s: %w", req.Method, req.URL, err)
		}
	}

	if decoded.DataString() == models.ConflictSentinel {
		return nil, fmt.Errorf("%w: %s %s", ErrConflict, req.Method, req.URL)
	}

	return &decoded, nil
}
