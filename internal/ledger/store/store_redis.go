package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"didanchor/internal/eventlog"
	"didanchor/internal/ledger"
	"didanchor/pkg/platform/sentinel"
)

// maxWatchRetries bounds how often a commit or append is retried after a
// concurrent append invalidated its WATCH. A changed version is never
// retried.
const maxWatchRetries = 16

// Redis keeps the snapshot under one key and the events in a list whose
// index is Sequence-1. Both keys share a hash tag so WATCH/MULTI over them
// works on a cluster.
type Redis struct {
	client      redis.UniversalClient
	snapshotKey string
	eventsKey   string
}

// NewRedis builds a store whose keys live under prefix.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "didanchor"
	}
	tag := "{" + prefix + "}"
	return &Redis{
		client:      client,
		snapshotKey: tag + ":ledger:snapshot",
		eventsKey:   tag + ":ledger:events",
	}
}

func (r *Redis) Init(ctx context.Context, genesis ledger.Snapshot) error {
	state, err := json.Marshal(genesis)
	if err != nil {
		return fmt.Errorf("encode genesis: %w", err)
	}
	if err := r.client.SetNX(ctx, r.snapshotKey, state, 0).Err(); err != nil {
		return fmt.Errorf("init ledger snapshot: %w", err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context) (ledger.Snapshot, error) {
	var (
		get   *redis.StringCmd
		count *redis.IntCmd
	)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.Get(ctx, r.snapshotKey)
		count = pipe.LLen(ctx, r.eventsKey)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return ledger.Snapshot{}, fmt.Errorf("load ledger snapshot: %w", err)
	}
	return decodeSnapshot(get, count)
}

func decodeSnapshot(get *redis.StringCmd, count *redis.IntCmd) (ledger.Snapshot, error) {
	raw, err := get.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ledger.Snapshot{}, sentinel.ErrNotInitialized
		}
		return ledger.Snapshot{}, fmt.Errorf("load ledger snapshot: %w", err)
	}
	n, err := count.Result()
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("count ledger events: %w", err)
	}
	var snap ledger.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("decode ledger snapshot: %w", err)
	}
	snap.EventCount = uint64(n)
	return snap, nil
}

func (r *Redis) Commit(ctx context.Context, expectedVersion uint64, next ledger.Snapshot, events []eventlog.Event) ([]eventlog.Event, error) {
	state, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	var stamped []eventlog.Event
	err = r.watch(ctx, func(tx *redis.Tx) error {
		cur, err := decodeSnapshot(tx.Get(ctx, r.snapshotKey), tx.LLen(ctx, r.eventsKey))
		if err != nil {
			return err
		}
		if cur.Version != expectedVersion {
			return fmt.Errorf("redis commit at version %d, stored %d: %w", expectedVersion, cur.Version, sentinel.ErrConflict)
		}
		stamped = stamp(cur.EventCount, events)
		encoded, err := encodeEvents(stamped)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.snapshotKey, state, 0)
			if len(encoded) > 0 {
				pipe.RPush(ctx, r.eventsKey, encoded...)
			}
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return stamped, nil
}

func (r *Redis) Append(ctx context.Context, events []eventlog.Event) ([]eventlog.Event, error) {
	var stamped []eventlog.Event
	err := r.watch(ctx, func(tx *redis.Tx) error {
		cur, err := decodeSnapshot(tx.Get(ctx, r.snapshotKey), tx.LLen(ctx, r.eventsKey))
		if err != nil {
			return err
		}
		stamped = stamp(cur.EventCount, events)
		encoded, err := encodeEvents(stamped)
		if err != nil {
			return err
		}
		if len(encoded) == 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, r.eventsKey, encoded...)
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return stamped, nil
}

// watch runs fn under WATCH on both keys, retrying when EXEC was aborted.
// fn reloads the snapshot on every attempt, so a commit made by another
// writer surfaces as ErrConflict from fn rather than as a retry.
func (r *Redis) watch(ctx context.Context, fn func(tx *redis.Tx) error) error {
	for range maxWatchRetries {
		err := r.client.Watch(ctx, fn, r.snapshotKey, r.eventsKey)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("redis ledger write still contended after %d attempts: %w", maxWatchRetries, sentinel.ErrUnavailable)
}

func encodeEvents(events []eventlog.Event) ([]any, error) {
	encoded := make([]any, len(events))
	for i, ev := range events {
		b, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("encode event: %w", err)
		}
		encoded[i] = b
	}
	return encoded, nil
}

func (r *Redis) ReadSince(ctx context.Context, after uint64, limit int) ([]eventlog.Event, error) {
	start := int64(after)
	stop := start + int64(clampLimit(limit)) - 1
	raw, err := r.client.LRange(ctx, r.eventsKey, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read ledger events: %w", err)
	}
	out := make([]eventlog.Event, 0, len(raw))
	for _, item := range raw {
		var ev eventlog.Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, fmt.Errorf("decode ledger event: %w", err)
		}
		out = append(out, ev)
	}
	return out, nil
}
