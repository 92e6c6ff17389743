// Package aggregate computes derived nutrition state from logged
// entries: daily totals and progress against targets, weekly and
// monthly rollups, streaks, and weight trends.
//
// Every function here is pure: output depends only on the inputs, and
// inputs are never mutated. Entries carry frozen derived values, so
// recomputing any aggregate from the same inputs yields identical
// results. Callers are responsible for input validity; malformed
// entries are rejected at the write boundary, not here.
package aggregate
