package models

import "encoding/json"

// BulkItem is one coalesced per-item request inside a bulk call.
// For GET batches Payload is the zero value; only the ID matters.
type BulkItem struct {
	ID      string       `json:"id"`
	Payload WriteRequest `json:"payload,omitempty"`
}

// BulkRequest aggregates many single-item requests of the same method against
// the same base URL into one call to the "?bulk" endpoint.
type BulkRequest struct {
	Data   []BulkItem `json:"data"`
	Method string     `json:"method"`
}

// BulkResponse maps each contributed item ID back to the response body that
// item would have received from an individual request. Values are kept raw;
// the transport decodes them per item so one malformed entry cannot poison
// its siblings.
type BulkResponse struct {
	Data map[string]json.RawMessage `json:"data"`
}

// Length is the number of items carried by the request.
func (r BulkRequest) Length() int { return len(r.Data) }
