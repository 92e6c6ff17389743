// Package store provides durable local state for the sync engine:
// the response cache (static and dynamic partitions) and the pending
// mutation queue. Both live in a single SQLite database so that a
// queued write and its optimistic cache overlay survive restarts
// together.
//
// The store is the only component that touches disk. Cache semantics
// are replace-on-write: a key never holds more than the latest value,
// and readers observe either the old value or the fully written new
// one. Queue semantics are append-only with remove-by-sequence; rows
// are never updated in place.
package store
