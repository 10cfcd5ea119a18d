package store

import (
	"sort"
	"sync"
)

type memoryKV struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryKV returns a process-lifetime in-memory [KVStore]. Used for tests
// and ":memory:" DSNs.
func NewMemoryKV() KVStore {
	return &memoryKV{items: make(map[string]string)}
}

func (s *memoryKV) GetItem(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	return value, ok
}

func (s *memoryKV) SetItem(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

func (s *memoryKV) RemoveItem(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

func (s *memoryKV) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *memoryKV) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]string)
}
