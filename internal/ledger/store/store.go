// Package store implements ledger.Store over memory, Postgres, Redis and
// bbolt. Every backend commits the snapshot and its events atomically and
// rejects a commit whose expected version is stale with sentinel.ErrConflict.
package store

import (
	"didanchor/internal/eventlog"
	"didanchor/internal/ledger"
)

const defaultReadLimit = 500

var (
	_ ledger.Store = (*Memory)(nil)
	_ ledger.Store = (*Postgres)(nil)
	_ ledger.Store = (*Redis)(nil)
	_ ledger.Store = (*Bolt)(nil)
)

func clampLimit(limit int) int {
	if limit <= 0 || limit > defaultReadLimit {
		return defaultReadLimit
	}
	return limit
}

// stamp numbers events to continue a log whose last Sequence is after.
func stamp(after uint64, events []eventlog.Event) []eventlog.Event {
	out := make([]eventlog.Event, len(events))
	for i, ev := range events {
		ev.Sequence = after + uint64(i) + 1
		out[i] = ev
	}
	return out
}
