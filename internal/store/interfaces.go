// Package store implements the durable browser-style key-value store the sync
// engine persists into: string keys to string values, synchronous access, and
// an enumerable key space.
//
// Two implementations are provided: a SQLite-backed store for real
// installations ([NewConnectSQLite] + [NewKVStore]) and an in-memory store
// ([NewMemoryKV]) for tests and ":memory:" DSNs. The store is modeled as
// always available: backend errors are logged and degrade to "absent" rather
// than propagating, so a malformed or unreadable row behaves as a cache miss.
package store

//go:generate mockgen -source=interfaces.go -destination=../mock/kv_store_mock.go -package=mock

// KVStore is the persistent key-value store contract consumed by the sync
// engine and the migration pipeline.
type KVStore interface {
	// GetItem returns the value stored under key and whether the key exists.
	// The empty string is a valid stored value, distinguished from absence
	// by the boolean.
	GetItem(key string) (string, bool)

	// SetItem stores value under key, overwriting any previous value.
	SetItem(key, value string)

	// RemoveItem deletes key. Removing a missing key is a no-op.
	RemoveItem(key string)

	// Keys returns every stored key in lexicographic order.
	Keys() []string

	// Clear removes every stored key.
	Clear()
}
