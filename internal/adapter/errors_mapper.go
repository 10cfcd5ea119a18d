package adapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/avelichko/revise/models"
)

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))

	switch {
	case resp.StatusCode() == http.StatusUnauthorized:
		return ErrAnonymous
	case resp.StatusCode() == http.StatusConflict || isConflictSentinel(resp.Body()):
		return ErrConflict
	case resp.StatusCode() == http.StatusNotFound:
		return ErrNotFound
	default:
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("%w: http %d: %s", ErrUnavailable, resp.StatusCode(), body)
	}
}

// isConflictSentinel reports whether the error body is the envelope form of a
// concurrency conflict, {"data":"conflict"}. Error text that merely mentions
// the word must not raise the sticky out-of-sync flag.
func isConflictSentinel(body []byte) bool {
	var env Response
	if err := json.Unmarshal(body, &env); err != nil {
		return false
	}
	return env.DataString() == models.ConflictSentinel
}
