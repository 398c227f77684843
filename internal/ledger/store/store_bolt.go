package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"didanchor/internal/eventlog"
	"didanchor/internal/ledger"
	"didanchor/pkg/platform/sentinel"
)

var (
	bucketLedger = []byte("ledger")
	bucketEvents = []byte("events")
	keySnapshot  = []byte("snapshot")
)

// Bolt is an embedded single-file store. bbolt serializes writers, so the
// version check and the write share one Update transaction.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the database file at path.
func OpenBolt(path string, timeout time.Duration) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketLedger); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketEvents)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bolt buckets: %w", err)
	}
	return &Bolt{db: db}, nil
}

// Close releases the file lock.
func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) Init(_ context.Context, genesis ledger.Snapshot) error {
	state, err := json.Marshal(genesis)
	if err != nil {
		return fmt.Errorf("encode genesis: %w", err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketLedger)
		if bkt.Get(keySnapshot) != nil {
			return nil
		}
		return bkt.Put(keySnapshot, state)
	})
}

func (b *Bolt) Load(_ context.Context) (ledger.Snapshot, error) {
	var snap ledger.Snapshot
	err := b.db.View(func(tx *bolt.Tx) error {
		var err error
		snap, err = readSnapshot(tx)
		return err
	})
	return snap, err
}

func readSnapshot(tx *bolt.Tx) (ledger.Snapshot, error) {
	raw := tx.Bucket(bucketLedger).Get(keySnapshot)
	if raw == nil {
		return ledger.Snapshot{}, sentinel.ErrNotInitialized
	}
	var snap ledger.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("decode ledger snapshot: %w", err)
	}
	snap.EventCount = tx.Bucket(bucketEvents).Sequence()
	return snap, nil
}

func (b *Bolt) Commit(_ context.Context, expectedVersion uint64, next ledger.Snapshot, events []eventlog.Event) ([]eventlog.Event, error) {
	state, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	var stamped []eventlog.Event
	err = b.db.Update(func(tx *bolt.Tx) error {
		cur, err := readSnapshot(tx)
		if err != nil {
			return err
		}
		if cur.Version != expectedVersion {
			return fmt.Errorf("bolt commit at version %d, stored %d: %w", expectedVersion, cur.Version, sentinel.ErrConflict)
		}
		if stamped, err = appendEvents(tx, events); err != nil {
			return err
		}
		return tx.Bucket(bucketLedger).Put(keySnapshot, state)
	})
	if err != nil {
		return nil, err
	}
	return stamped, nil
}

func (b *Bolt) Append(_ context.Context, events []eventlog.Event) ([]eventlog.Event, error) {
	var stamped []eventlog.Event
	err := b.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketLedger).Get(keySnapshot) == nil {
			return sentinel.ErrNotInitialized
		}
		var err error
		stamped, err = appendEvents(tx, events)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stamped, nil
}

// appendEvents numbers events from the bucket sequence, which always equals
// the last stored Sequence.
func appendEvents(tx *bolt.Tx, events []eventlog.Event) ([]eventlog.Event, error) {
	evBkt := tx.Bucket(bucketEvents)
	stamped := stamp(evBkt.Sequence(), events)
	for _, ev := range stamped {
		raw, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("encode event: %w", err)
		}
		if err := evBkt.Put(sequenceKey(ev.Sequence), raw); err != nil {
			return nil, err
		}
	}
	if len(stamped) > 0 {
		if err := evBkt.SetSequence(stamped[len(stamped)-1].Sequence); err != nil {
			return nil, err
		}
	}
	return stamped, nil
}

func (b *Bolt) ReadSince(_ context.Context, after uint64, limit int) ([]eventlog.Event, error) {
	limit = clampLimit(limit)
	var out []eventlog.Event
	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketEvents).Cursor()
		for k, v := c.Seek(sequenceKey(after + 1)); k != nil && len(out) < limit; k, v = c.Next() {
			var ev eventlog.Event
			if err := json.Unmarshal(v, &ev); err != nil {
				return fmt.Errorf("decode ledger event: %w", err)
			}
			out = append(out, ev)
		}
		return nil
	})
	return out, err
}

func sequenceKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
