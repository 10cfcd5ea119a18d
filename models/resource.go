package models

// ConflictSentinel is the payload value the server substitutes for the real
// data when a mutating request carried a stale concurrency token. The
// transport layer maps it to the conflict error so callers never have to
// inspect response bodies themselves.
const ConflictSentinel = "conflict"

// Envelope is the body of every successful transport response. Data is the
// serialized resource value; UpdatedAt is the server's last-modified marker
// for it, an RFC 3339 timestamp. The marker doubles as the
// optimistic-concurrency token for the next write of the same resource.
type Envelope struct {
	Data      string `json:"data"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// WriteRequest is the body of a mutating request. LastUpdatedAt carries the
// marker recorded for the resource at the time of the last successful sync;
// the server rejects the write with [ConflictSentinel] if the resource has
// moved past it.
type WriteRequest struct {
	Data          string `json:"data,omitempty"`
	LastUpdatedAt string `json:"lastUpdatedAt,omitempty"`
}
