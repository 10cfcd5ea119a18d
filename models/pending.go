package models

// PendingChange is a mutation that failed remotely and is queued for a later
// retry. At most one pending change exists per URL: a newer failure for the
// same URL replaces the older one, so the retry pass always replays the most
// recent payload.
type PendingChange struct {
	URL    string
	Method string
	Body   WriteRequest
}
