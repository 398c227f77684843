package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"didanchor/internal/eventlog"
	"didanchor/internal/ledger"
	"didanchor/pkg/domain"
	"didanchor/pkg/platform/sentinel"
	"didanchor/pkg/platform/tx"
)

// Serialization failures and unique violations both mean another writer
// won the race.
const (
	pgSerializationFailure = "40001"
	pgUniqueViolation      = "23505"
)

// Postgres persists the snapshot as a single JSONB row and the events as an
// append-only table numbered from the ledger_log counter row. Every write
// locks that row first, so writers queue on it instead of failing
// serialization. Read committed is enough: the version guard in the UPDATE
// is re-evaluated after the lock wait.
type Postgres struct {
	db     *sql.DB
	runner *tx.Runner
}

// NewPostgres wraps a database opened with internal/platform/postgres.
func NewPostgres(db *sql.DB, runner *tx.Runner) *Postgres {
	return &Postgres{db: db, runner: runner.WithIsolation(sql.LevelReadCommitted)}
}

type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (p *Postgres) execer(ctx context.Context) sqlExecutor {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return p.db
}

func (p *Postgres) Init(ctx context.Context, genesis ledger.Snapshot) error {
	state, err := json.Marshal(genesis)
	if err != nil {
		return fmt.Errorf("encode genesis: %w", err)
	}
	return p.runner.RunInTx(ctx, func(ctx context.Context) error {
		_, err := p.execer(ctx).ExecContext(ctx,
			`INSERT INTO ledger_snapshot (id, version, state) VALUES (1, $1, $2) ON CONFLICT (id) DO NOTHING`,
			int64(genesis.Version), state)
		if err != nil {
			return fmt.Errorf("init ledger snapshot: %w", err)
		}
		_, err = p.execer(ctx).ExecContext(ctx,
			`INSERT INTO ledger_log (id, event_count) VALUES (1, 0) ON CONFLICT (id) DO NOTHING`)
		if err != nil {
			return fmt.Errorf("init ledger log: %w", err)
		}
		return nil
	})
}

func (p *Postgres) Load(ctx context.Context) (ledger.Snapshot, error) {
	var (
		state []byte
		count int64
	)
	err := p.execer(ctx).QueryRowContext(ctx, `
SELECT s.state, l.event_count FROM ledger_snapshot s CROSS JOIN ledger_log l
WHERE s.id = 1 AND l.id = 1`).Scan(&state, &count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Snapshot{}, sentinel.ErrNotInitialized
		}
		return ledger.Snapshot{}, fmt.Errorf("load ledger snapshot: %w", err)
	}
	var snap ledger.Snapshot
	if err := json.Unmarshal(state, &snap); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("decode ledger snapshot: %w", err)
	}
	snap.EventCount = uint64(count)
	return snap, nil
}

func (p *Postgres) Commit(ctx context.Context, expectedVersion uint64, next ledger.Snapshot, events []eventlog.Event) ([]eventlog.Event, error) {
	state, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	var stamped []eventlog.Event
	err = p.runner.RunInTx(ctx, func(ctx context.Context) error {
		count, err := p.lockLog(ctx)
		if err != nil {
			return err
		}
		res, err := p.execer(ctx).ExecContext(ctx,
			`UPDATE ledger_snapshot SET version = $1, state = $2, updated_at = now() WHERE id = 1 AND version = $3`,
			int64(next.Version), state, int64(expectedVersion))
		if err != nil {
			return fmt.Errorf("update ledger snapshot: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update ledger snapshot: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("postgres commit at version %d: %w", expectedVersion, sentinel.ErrConflict)
		}
		stamped = stamp(count, events)
		return p.appendEvents(ctx, count, stamped)
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return stamped, nil
}

func (p *Postgres) Append(ctx context.Context, events []eventlog.Event) ([]eventlog.Event, error) {
	var stamped []eventlog.Event
	err := p.runner.RunInTx(ctx, func(ctx context.Context) error {
		count, err := p.lockLog(ctx)
		if err != nil {
			return err
		}
		stamped = stamp(count, events)
		return p.appendEvents(ctx, count, stamped)
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return stamped, nil
}

// lockLog takes the writer lock and returns the last logged Sequence.
func (p *Postgres) lockLog(ctx context.Context) (uint64, error) {
	var count int64
	err := p.execer(ctx).QueryRowContext(ctx, `SELECT event_count FROM ledger_log WHERE id = 1 FOR UPDATE`).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotInitialized
		}
		return 0, fmt.Errorf("lock ledger log: %w", err)
	}
	return uint64(count), nil
}

// appendEvents inserts a batch stamped after count and advances the counter.
func (p *Postgres) appendEvents(ctx context.Context, count uint64, stamped []eventlog.Event) error {
	if len(stamped) == 0 {
		return nil
	}
	if err := p.insertEvents(ctx, stamped); err != nil {
		return err
	}
	_, err := p.execer(ctx).ExecContext(ctx,
		`UPDATE ledger_log SET event_count = $1 WHERE id = 1`, int64(count)+int64(len(stamped)))
	if err != nil {
		return fmt.Errorf("advance ledger log: %w", err)
	}
	return nil
}

// insertEvents writes the batch with a single unnest insert.
func (p *Postgres) insertEvents(ctx context.Context, events []eventlog.Event) error {
	if len(events) == 0 {
		return nil
	}
	var (
		sequences = make([]int64, len(events))
		ids       = make([]string, len(events))
		types     = make([]string, len(events))
		subjects  = make([][]byte, len(events))
		payloads  = make([][]byte, len(events))
		leaves    = make([][]byte, len(events))
		times     = make([]int64, len(events))
		details   = make([]string, len(events))
	)
	for i, ev := range events {
		d, err := json.Marshal(ev.Details)
		if err != nil {
			return fmt.Errorf("encode event details: %w", err)
		}
		if ev.Details == nil {
			d = []byte("{}")
		}
		sequences[i] = int64(ev.Sequence)
		ids[i] = ev.ID.String()
		types[i] = string(ev.Type)
		subjects[i] = bytesOf(ev.SubjectKeyHash)
		payloads[i] = bytesOf(ev.PayloadHash)
		leaves[i] = bytesOf(ev.LeafValue)
		times[i] = int64(ev.LogicalTime)
		details[i] = string(d)
	}
	_, err := p.execer(ctx).ExecContext(ctx, `
INSERT INTO ledger_events (sequence, id, type, subject_key_hash, payload_hash, leaf_value, logical_time, details)
SELECT * FROM unnest($1::bigint[], $2::uuid[], $3::text[], $4::bytea[], $5::bytea[], $6::bytea[], $7::bigint[], $8::jsonb[])`,
		pq.Array(sequences), pq.Array(ids), pq.Array(types),
		pq.Array(subjects), pq.Array(payloads), pq.Array(leaves),
		pq.Array(times), pq.Array(details))
	if err != nil {
		return fmt.Errorf("insert ledger events: %w", err)
	}
	return nil
}

func (p *Postgres) ReadSince(ctx context.Context, after uint64, limit int) ([]eventlog.Event, error) {
	rows, err := p.db.QueryContext(ctx, `
SELECT sequence, id, type, subject_key_hash, payload_hash, leaf_value, logical_time, details
FROM ledger_events WHERE sequence > $1 ORDER BY sequence LIMIT $2`,
		int64(after), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("read ledger events: %w", err)
	}
	defer rows.Close()

	var out []eventlog.Event
	for rows.Next() {
		var (
			ev                     eventlog.Event
			seq, logical           int64
			id, typ                string
			subject, payload, leaf []byte
			details                []byte
		)
		if err := rows.Scan(&seq, &id, &typ, &subject, &payload, &leaf, &logical, &details); err != nil {
			return nil, fmt.Errorf("scan ledger event: %w", err)
		}
		if ev.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("scan ledger event id: %w", err)
		}
		ev.Sequence = uint64(seq)
		ev.Type = eventlog.Type(typ)
		copy(ev.SubjectKeyHash[:], subject)
		copy(ev.PayloadHash[:], payload)
		copy(ev.LeafValue[:], leaf)
		ev.LogicalTime = uint64(logical)
		if len(details) > 0 && string(details) != "{}" {
			if err := json.Unmarshal(details, &ev.Details); err != nil {
				return nil, fmt.Errorf("decode event details: %w", err)
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read ledger events: %w", err)
	}
	return out, nil
}

func bytesOf(h domain.Hash) []byte {
	b := make([]byte, domain.HashSize)
	copy(b, h[:])
	return b
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgUniqueViolation:
			return fmt.Errorf("postgres commit: %s: %w", pgErr.Message, sentinel.ErrConflict)
		}
	}
	return err
}
