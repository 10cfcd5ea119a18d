// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anna Velichko

package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/revise/internal/config"
	"github.com/avelichko/revise/internal/identity"
	"github.com/avelichko/revise/internal/logger"
	"github.com/avelichko/revise/models"
)

func signedTestToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newTestTransport(t *testing.T, server *httptest.Server, token string) Transport {
	t.Helper()
	tokens := identity.NewTokenSource()
	if token != "" {
		tokens.SetToken(token)
	}
	transport, err := NewHTTPTransport(
		config.ClientAdapter{BaseURL: server.URL, RequestTimeout: 5 * time.Second},
		config.ClientApp{Version: "test"},
		tokens,
		logger.Nop(),
	)
	require.NoError(t, err)
	return transport
}

func TestHTTPTransport_GetDecodesEnvelope(t *testing.T) {
	var gotAuth string
	r := chi.NewRouter()
	r.Get("/api/settings", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"data":      `{"theme":"dark"}`,
			"updatedAt": "2024-03-01T10:00:00Z",
		})
	})
	server := httptest.NewServer(r)
	defer server.Close()

	token := signedTestToken(t, time.Hour)
	transport := newTestTransport(t, server, token)

	env, err := transport.Get(context.Background(), "/api/settings")
	require.NoError(t, err)
	assert.Equal(t, `{"theme":"dark"}`, env.Data)
	assert.Equal(t, "2024-03-01T10:00:00Z", env.UpdatedAt)
	assert.Equal(t, "Bearer "+token, gotAuth)
}

func TestHTTPTransport_PostSendsConcurrencyToken(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/event-list", func(w http.ResponseWriter, req *http.Request) {
		var body models.WriteRequest
		if !assert.NoError(t, json.NewDecoder(req.Body).Decode(&body)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "2024-03-01T10:00:00Z", body.LastUpdatedAt)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"data":      body.Data,
			"updatedAt": "2024-03-01T11:00:00Z",
		})
	})
	server := httptest.NewServer(r)
	defer server.Close()

	transport := newTestTransport(t, server, signedTestToken(t, time.Hour))

	env, err := transport.Post(context.Background(), "/api/event-list", models.WriteRequest{
		Data:          `["e1","e2"]`,
		LastUpdatedAt: "2024-03-01T10:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, `["e1","e2"]`, env.Data)
	assert.Equal(t, "2024-03-01T11:00:00Z", env.UpdatedAt)
}

func TestHTTPTransport_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: ErrAnonymous},
		{name: "conflict status", status: http.StatusConflict, wantErr: ErrConflict},
		{name: "sentinel envelope body", status: http.StatusBadRequest, body: `{"data":"conflict"}`, wantErr: ErrConflict},
		{name: "error text mentioning conflict stays transient", status: http.StatusInternalServerError, body: "lock conflict detected upstream", wantErr: ErrUnavailable},
		{name: "not found", status: http.StatusNotFound, wantErr: ErrNotFound},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Get("/api/settings", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(test.status)
				_, _ = w.Write([]byte(test.body))
			})
			server := httptest.NewServer(r)
			defer server.Close()

			transport := newTestTransport(t, server, signedTestToken(t, time.Hour))

			_, err := transport.Get(context.Background(), "/api/settings")
			assert.ErrorIs(t, err, test.wantErr)
		})
	}
}

// A conflict sentinel inside a 200 response maps to ErrConflict exactly like
// a 409 status.
func TestHTTPTransport_ConflictSentinelBody(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/settings", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"data": models.ConflictSentinel})
	})
	server := httptest.NewServer(r)
	defer server.Close()

	transport := newTestTransport(t, server, signedTestToken(t, time.Hour))

	_, err := transport.Post(context.Background(), "/api/settings", models.WriteRequest{Data: "x"})
	assert.ErrorIs(t, err, ErrConflict)
}

// Server errors map to ErrUnavailable and idempotent reads get retried a
// bounded number of times.
func TestHTTPTransport_TransientGetRetried(t *testing.T) {
	var attempts atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/settings", func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	server := httptest.NewServer(r)
	defer server.Close()

	transport := newTestTransport(t, server, signedTestToken(t, time.Hour))

	_, err := transport.Get(context.Background(), "/api/settings")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1+retryMaxAttempts), attempts.Load())
}

// Mutations are never retried on server errors.
func TestHTTPTransport_TransientPostNotRetried(t *testing.T) {
	var attempts atomic.Int32
	r := chi.NewRouter()
	r.Post("/api/settings", func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	server := httptest.NewServer(r)
	defer server.Close()

	transport := newTestTransport(t, server, signedTestToken(t, time.Hour))

	_, err := transport.Post(context.Background(), "/api/settings", models.WriteRequest{Data: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), attempts.Load())
}

// An anonymous mutation fails fast without touching the network.
func TestHTTPTransport_AnonymousPostFailsFast(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := newTestTransport(t, server, "")

	_, err := transport.Post(context.Background(), "/api/settings", models.WriteRequest{Data: "x"})
	assert.ErrorIs(t, err, ErrAnonymous)
	assert.Zero(t, hits.Load())
}

// An expired token is as good as none for mutations.
func TestHTTPTransport_ExpiredTokenPostFailsFast(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := newTestTransport(t, server, signedTestToken(t, -time.Hour))

	_, err := transport.Delete(context.Background(), "/api/settings", models.WriteRequest{})
	assert.ErrorIs(t, err, ErrAnonymous)
	assert.Zero(t, hits.Load())
}

// Concurrent reads of whitelisted per-item endpoints reach the server as a
// single bulk call.
func TestHTTPTransport_BulkCoalescing(t *testing.T) {
	var bulkCalls atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/events/detail/", func(w http.ResponseWriter, req *http.Request) {
		assert.True(t, req.URL.Query().Has("bulk"))
		bulkCalls.Add(1)

		raw, err := io.ReadAll(req.Body)
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var bulk models.BulkRequest
		if !assert.NoError(t, json.Unmarshal(raw, &bulk)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		perItem := make(map[string]json.RawMessage, bulk.Length())
		for _, item := range bulk.Data {
			envelope, err := json.Marshal(map[string]string{
				"data":      "detail-" + item.ID,
				"updatedAt": "2024-03-01T10:00:00Z",
			})
			if !assert.NoError(t, err) {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			perItem[item.ID] = envelope
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.BulkResponse{Data: perItem})
	})
	server := httptest.NewServer(r)
	defer server.Close()

	transport := newTestTransport(t, server, signedTestToken(t, time.Hour))

	ids := []string{"a", "b", "c"}
	envelopes := make([]models.Envelope, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			env, err := transport.Get(context.Background(), EventDetailURL+"?id="+id)
			if assert.NoError(t, err) {
				envelopes[i] = env
			}
		}(i, id)
	}
	wg.Wait()

	assert.Equal(t, int32(1), bulkCalls.Load())
	for i, id := range ids {
		assert.Equal(t, "detail-"+id, envelopes[i].Data)
		assert.Equal(t, "2024-03-01T10:00:00Z", envelopes[i].UpdatedAt)
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare host", in: "localhost:8080", want: "http://localhost:8080"},
		{name: "scheme kept", in: "https://store.example.com", want: "https://store.example.com"},
		{name: "trailing slash trimmed", in: "http://store.example.com/", want: "http://store.example.com"},
		{name: "surrounding spaces", in: "  localhost:8080  ", want: "http://localhost:8080"},
		{name: "empty", in: "", wantErr: true},
		{name: "spaces only", in: "   ", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := normalizeBaseURL(test.in)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}
