// Package syncer is the top-level coordinator. It owns the mutation
// queue and the cache store, exposes the read/write contract the
// presentation layer calls, and decides when queued writes replay.
//
// Reads resolve through the fetch strategy selector, so they
// transparently degrade to cached data when the network is down; the
// orchestrator then overlays any pending mutations so the caller sees
// their own unconfirmed writes, tagged pending. The orchestrator never
// invents data: with no network, no cache, and no pending writes, a
// view is empty and marked offline.
//
// Writes go straight to the store when it is reachable. A transient
// failure enqueues the mutation durably instead; the caller may treat
// the write as accepted once it is enqueued. TriggerSync drains the
// queue in FIFO order and is idempotent under concurrent calls: a
// second trigger while a drain is running waits for the in-flight
// drain and returns its report.
//
// Queued payloads are a superset of the wire request: they carry the
// derived nutrition snapshot alongside the fields the server reads, so
// the optimistic overlay can be reconstructed from the queue alone
// after a restart. Servers ignore the extra fields.
package syncer
