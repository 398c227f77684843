package tx

import (
	"context"
	"database/sql"
	"time"

	dErrors "didanchor/pkg/domain-errors"
)

const defaultTimeout = 5 * time.Second

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Runner executes callbacks inside a single SQL transaction, serializable
// unless configured otherwise.
type Runner struct {
	db        *sql.DB
	timeout   time.Duration
	isolation sql.IsolationLevel
}

// NewRunner builds a Runner. A zero timeout falls back to five seconds when
// the caller's context carries no deadline.
func NewRunner(db *sql.DB, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Runner{db: db, timeout: timeout, isolation: sql.LevelSerializable}
}

// WithIsolation returns a copy of r that opens transactions at level.
func (r *Runner) WithIsolation(level sql.IsolationLevel) *Runner {
	c := *r
	c.isolation = level
	return &c
}

// RunInTx begins a transaction, hands fn a context carrying it and commits
// when fn returns nil. Any error rolls the transaction back.
func (r *Runner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	sqlTx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: r.isolation})
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	return sqlTx.Commit()
}
