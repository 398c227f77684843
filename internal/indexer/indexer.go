// Package indexer mirrors both directories off-chain by replaying the event
// log, and serves the witnesses callers need to submit operations.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"didanchor/internal/eventlog"
	"didanchor/internal/merkle"
	"didanchor/pkg/domain"
)

const pageSize = 200

// Indexer tails an eventlog.Reader into two sparse Merkle map mirrors.
type Indexer struct {
	reader eventlog.Reader
	logger *slog.Logger

	mu          sync.RWMutex
	dids        *merkle.Map
	issuers     *merkle.Map
	cursor      uint64
	logicalTime uint64
}

type Option func(*Indexer)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Indexer) {
		i.logger = logger
	}
}

// New returns an indexer positioned at the start of the log.
func New(reader eventlog.Reader, opts ...Option) *Indexer {
	i := &Indexer{
		reader:  reader,
		logger:  slog.Default(),
		dids:    merkle.NewMap(),
		issuers: merkle.NewMap(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Lookup is a witness together with the value it proves and the mirror
// state it was taken from.
type Lookup struct {
	Witness     merkle.Witness `json:"witness"`
	Value       domain.Hash    `json:"value"`
	Root        domain.Hash    `json:"root"`
	LogicalTime uint64         `json:"logical_time"`
}

// Sync applies every event after the cursor and returns how many it applied.
func (i *Indexer) Sync(ctx context.Context) (int, error) {
	applied := 0
	for {
		i.mu.RLock()
		after := i.cursor
		i.mu.RUnlock()

		events, err := i.reader.ReadSince(ctx, after, pageSize)
		if err != nil {
			return applied, fmt.Errorf("read events after %d: %w", after, err)
		}
		if len(events) == 0 {
			return applied, nil
		}
		if err := i.apply(events); err != nil {
			return applied, err
		}
		applied += len(events)
	}
}

func (i *Indexer) apply(events []eventlog.Event) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, ev := range events {
		if ev.Sequence != i.cursor+1 {
			return fmt.Errorf("event log gap: expected sequence %d, got %d", i.cursor+1, ev.Sequence)
		}
		switch ev.Type.Directory() {
		case eventlog.DirectoryDID:
			i.dids.Set(ev.SubjectKeyHash, ev.LeafValue)
		case eventlog.DirectoryIssuer:
			i.issuers.Set(ev.SubjectKeyHash, ev.LeafValue)
		case eventlog.DirectoryNone:
		}
		i.cursor = ev.Sequence
		i.logicalTime = ev.LogicalTime
	}
	return nil
}

// Run syncs every interval until ctx is done.
func (i *Indexer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if n, err := i.Sync(ctx); err != nil {
			i.logger.ErrorContext(ctx, "indexer sync failed", "error", err)
		} else if n > 0 {
			i.logger.DebugContext(ctx, "indexer synced", "events", n, "cursor", i.Cursor())
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Cursor is the sequence of the last applied event.
func (i *Indexer) Cursor() uint64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.cursor
}

// WitnessForDID proves the current document hash of owner.
func (i *Indexer) WitnessForDID(owner domain.PublicKey) Lookup {
	return i.lookup(i.dids, owner.KeyHash())
}

// WitnessForIssuer proves the current trust bit of issuer.
func (i *Indexer) WitnessForIssuer(issuer domain.PublicKey) Lookup {
	return i.lookup(i.issuers, issuer.KeyHash())
}

// Roots returns the mirrored DID and issuer roots.
func (i *Indexer) Roots() (dids, issuers domain.Hash) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.dids.Root(), i.issuers.Root()
}

func (i *Indexer) lookup(m *merkle.Map, key domain.Hash) Lookup {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return Lookup{
		Witness:     m.Witness(key),
		Value:       m.Get(key),
		Root:        m.Root(),
		LogicalTime: i.logicalTime,
	}
}
