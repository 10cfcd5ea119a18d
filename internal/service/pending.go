package service

import (
	"sync"

	"github.com/avelichko/revise/models"
)

// pendingSet holds deferred mutations keyed by request URL. A new failure for
// a URL replaces the prior entry, so at most one pending change exists per
// URL and a newer failed write supersedes an older one. The in-flight set
// keeps a replay from issuing the same change twice concurrently.
//
// Pending changes are process-lifetime state. Sync clears the whole set
// before fetching the manifest, so persisting them would only replay
// mutations the next full sync is about to discard anyway.
type pendingSet struct {
	mu       sync.Mutex
	changes  map[string]models.PendingChange
	inFlight map[string]struct{}
}

func newPendingSet() *pendingSet {
	return &pendingSet{
		changes:  make(map[string]models.PendingChange),
		inFlight: make(map[string]struct{}),
	}
}

func (p *pendingSet) put(change models.PendingChange) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes[change.URL] = change
}

func (p *pendingSet) remove(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.changes, url)
}

func (p *pendingSet) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.changes)
}

func (p *pendingSet) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = make(map[string]models.PendingChange)
}

func (p *pendingSet) snapshot() []models.PendingChange {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.PendingChange, 0, len(p.changes))
	for _, change := range p.changes {
		out = append(out, change)
	}
	return out
}

// tryAcquire marks url in flight. Returns false when a replay of the same
// change is already running.
func (p *pendingSet) tryAcquire(url string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, busy := p.inFlight[url]; busy {
		return false
	}
	p.inFlight[url] = struct{}{}
	return true
}

func (p *pendingSet) release(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, url)
}
