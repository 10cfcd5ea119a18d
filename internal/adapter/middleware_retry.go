package adapter

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/avelichko/revise/internal/logger"
)

const (
	retryMaxAttempts = 2
	retryBaseDelay   = 100 * time.Millisecond
)

// NewRetryMiddleware retries idempotent GETs a bounded number of times on
// transient failures. Mutations are never retried here: the engine's
// pending-change queue owns their replay, and a blind retry could double
// apply a write the server actually accepted.
func NewRetryMiddleware(log *logger.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if req.Method != http.MethodGet {
				return next(ctx, req)
			}

			var resp *Response
			backoff := retry.WithMaxRetries(retryMaxAttempts, retry.NewFibonacci(retryBaseDelay))
			err := retry.Do(ctx, backoff, func(ctx context.Context) error {
				var err error
				resp, err = next(ctx, req)
				if err != nil && errors.Is(err, ErrUnavailable) {
					log.Debug().Str("url", req.URL).Err(err).Msg("retrying transient GET failure")
					return retry.RetryableError(err)
				}
				return err
			})

			return resp, err
		}
	}
}
