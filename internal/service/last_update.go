// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anna Velichko

package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/avelichko/revise/internal/logger"
	"github.com/avelichko/revise/internal/store"
)

// LastUpdateMapKey is where the marker map is persisted in the local store.
const LastUpdateMapKey = "last-update-map"

// flushDebounce is how long marker mutations are coalesced before one
// persisted write.
const flushDebounce = 250 * time.Millisecond

// lastUpdateMap tracks, per cache key, the remote last-modified marker of the
// state the local cache was last synchronized with. A key is present iff the
// engine believes its cached value matches some known remote state.
//
// Mutations are persisted with debounced coalescing: many RecordUpdate and
// RecordRemoval calls inside the debounce window produce a single store
// write. Flush persists synchronously and is called on teardown.
type lastUpdateMap struct {
	kv  store.KVStore
	log *logger.Logger

	mu      sync.Mutex
	markers map[string]string
	timer   *time.Timer
}

func newLastUpdateMap(kv store.KVStore, log *logger.Logger) *lastUpdateMap {
	m := &lastUpdateMap{kv: kv, log: log, markers: make(map[string]string)}

	raw, ok := kv.GetItem(LastUpdateMapKey)
	if !ok || raw == "" {
		return m
	}
	if err := json.Unmarshal([]byte(raw), &m.markers); err != nil {
		// malformed persisted state degrades to "nothing synchronized"
		m.log.Warn().Err(err).Msg("discarding malformed last-update map")
		m.markers = make(map[string]string)
	}
	return m
}

// Marker returns the recorded marker for key.
func (m *lastUpdateMap) Marker(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	marker, ok := m.markers[key]
	return marker, ok
}

// RecordUpdate stores marker for key unless a strictly more recent marker is
// already recorded, so overlapping sync passes settle on the newest state
// regardless of completion order.
func (m *lastUpdateMap) RecordUpdate(key, marker string) {
	if marker == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.markers[key]; ok && markerNewer(current, marker) {
		return
	}
	m.markers[key] = marker
	m.scheduleFlushLocked()
}

// RecordRemoval drops key from the map after a confirmed remote delete.
func (m *lastUpdateMap) RecordRemoval(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.markers[key]; !ok {
		return
	}
	delete(m.markers, key)
	m.scheduleFlushLocked()
}

// scheduleFlushLocked arms the debounce timer, cancel-and-reschedule. Caller
// holds m.mu.
func (m *lastUpdateMap) scheduleFlushLocked() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(flushDebounce, m.Flush)
}

// Flush persists the map immediately and disarms any pending debounce timer.
func (m *lastUpdateMap) Flush() {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	raw, err := json.Marshal(m.markers)
	m.mu.Unlock()

	if err != nil {
		m.log.Error().Err(err).Msg("marshal last-update map")
		return
	}
	m.kv.SetItem(LastUpdateMapKey, string(raw))
}

// markerNewer reports whether a is strictly newer than b. Markers are
// RFC 3339 timestamps in practice; unparseable ones fall back to a
// lexicographic comparison, which orders correctly for same-format strings.
func markerNewer(a, b string) bool {
	if a == "" {
		return false
	}
	if b == "" {
		return true
	}

	at, aErr := time.Parse(time.RFC3339, a)
	bt, bErr := time.Parse(time.RFC3339, b)
	if aErr == nil && bErr == nil {
		return at.After(bt)
	}
	return a > b
}
