// Package tasks provides the task repository: CRUD over the task collection,
// which is stored as one JSON array under a single key of the persistent
// store (see package kv).
//
// # Consistency
//
// Every operation reads the whole collection, modifies it in memory and
// writes the whole collection back. The cycle is not isolated: two calls
// whose cycles interleave on the same store can lose one of the writes. This
// is accepted for a single-tab, single-writer client; sequential calls always
// observe each other's effects.
//
// A missing or unparseable collection reads as empty. The corrupt value is
// logged and left in place until the next write replaces it.
package tasks
