// Package kv provides the persistent key-value store that holds all durable
// taskgate state: the session token, the session user and the task collection.
//
// # Contract
//
// A Store maps string keys to string values. Get, Set and Remove are
// synchronous from the caller's point of view. A Store is not required to be
// transactional across keys; backends that can write several keys atomically
// also implement Batcher, and SetMany falls back to sequential Set calls
// otherwise, so a failure may leave a partial write behind.
//
// # Backends
//
//   - MemoryStore: map guarded by a mutex; for tests and throwaway sessions
//   - SQLiteStore: table kv(key, value) migrated by goose (modernc.org/sqlite)
//   - BoltStore: single bucket in a bbolt file
//
// Open selects a backend by name.
package kv
