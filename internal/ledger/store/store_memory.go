package store

import (
	"context"
	"fmt"
	"sync"

	"didanchor/internal/eventlog"
	"didanchor/internal/ledger"
	"didanchor/pkg/platform/sentinel"
)

// Memory keeps the ledger in process. State is lost on restart.
type Memory struct {
	mu       sync.RWMutex
	snapshot *ledger.Snapshot
	events   []eventlog.Event
}

// NewMemory returns an uninitialized in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Init(_ context.Context, genesis ledger.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot != nil {
		return nil
	}
	snap := genesis
	m.snapshot = &snap
	return nil
}

func (m *Memory) Load(_ context.Context) (ledger.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snapshot == nil {
		return ledger.Snapshot{}, sentinel.ErrNotInitialized
	}
	snap := *m.snapshot
	snap.EventCount = uint64(len(m.events))
	return snap, nil
}

func (m *Memory) Commit(_ context.Context, expectedVersion uint64, next ledger.Snapshot, events []eventlog.Event) ([]eventlog.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		return nil, sentinel.ErrNotInitialized
	}
	if m.snapshot.Version != expectedVersion {
		return nil, fmt.Errorf("memory commit at version %d, stored %d: %w", expectedVersion, m.snapshot.Version, sentinel.ErrConflict)
	}
	stamped := stamp(uint64(len(m.events)), events)
	snap := next
	m.snapshot = &snap
	m.events = append(m.events, stamped...)
	return stamped, nil
}

func (m *Memory) Append(_ context.Context, events []eventlog.Event) ([]eventlog.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		return nil, sentinel.ErrNotInitialized
	}
	stamped := stamp(uint64(len(m.events)), events)
	m.events = append(m.events, stamped...)
	return stamped, nil
}

func (m *Memory) ReadSince(_ context.Context, after uint64, limit int) ([]eventlog.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if after >= uint64(len(m.events)) {
		return nil, nil
	}
	end := after + uint64(clampLimit(limit))
	if end > uint64(len(m.events)) {
		end = uint64(len(m.events))
	}
	out := make([]eventlog.Event, end-after)
	copy(out, m.events[after:end])
	return out, nil
}
