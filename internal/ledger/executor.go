package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"didanchor/internal/eventlog"
	dErrors "didanchor/pkg/domain-errors"
	"didanchor/pkg/platform/sentinel"
)

// Transition computes the next snapshot from the current one. It must not
// do I/O against the store and must not mutate cur.
type Transition func(ctx context.Context, cur Snapshot) (Snapshot, []eventlog.Event, error)

// Executor runs transitions against a Store.
type Executor struct {
	store   Store
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// Option configures an Executor.
type Option func(*Executor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Executor) {
		e.tracer = t
	}
}

// NewExecutor builds an executor over store.
func NewExecutor(store Store, opts ...Option) *Executor {
	e := &Executor{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("didanchor/ledger"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns the committed state without running a transition.
func (e *Executor) Snapshot(ctx context.Context) (Snapshot, error) {
	snap, err := e.store.Load(ctx)
	if err != nil {
		return Snapshot{}, translate(err, "failed to load ledger state")
	}
	return snap, nil
}

// Execute loads the snapshot, applies fn and commits on the loaded version.
// Transition errors are returned unchanged. A concurrent commit surfaces as
// CodeStateConflict.
func (e *Executor) Execute(ctx context.Context, operation string, fn Transition) (Receipt, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "ledger.execute", trace.WithAttributes(attribute.String("operation", operation)))
	defer span.End()

	cur, err := e.store.Load(ctx)
	if err != nil {
		e.metrics.Observe(operation, OutcomeError, start)
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return Receipt{}, translate(err, "failed to load ledger state")
	}

	next, events, err := fn(ctx, cur)
	if err != nil {
		e.metrics.Observe(operation, OutcomeRejected, start)
		span.SetAttributes(attribute.String("rejection", string(dErrors.CodeOf(err))))
		e.logger.InfoContext(ctx, "operation rejected",
			"operation", operation,
			"version", cur.Version,
			"code", dErrors.CodeOf(err),
			"error", err,
		)
		return Receipt{}, err
	}

	next.Version = cur.Version + 1
	stamped := make([]eventlog.Event, len(events))
	for i, ev := range events {
		ev.LogicalTime = next.Version
		stamped[i] = ev
	}

	stamped, err = e.store.Commit(ctx, cur.Version, next, stamped)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			e.metrics.Observe(operation, OutcomeConflict, start)
			e.logger.WarnContext(ctx, "commit lost a race",
				"operation", operation,
				"version", cur.Version,
			)
			return Receipt{}, dErrors.Wrap(err, dErrors.CodeStateConflict, "state changed concurrently, rebuild the witness and retry")
		}
		e.metrics.Observe(operation, OutcomeError, start)
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit failed")
		e.logger.ErrorContext(ctx, "commit failed", "operation", operation, "error", err)
		return Receipt{}, translate(err, "failed to commit ledger state")
	}

	e.metrics.Observe(operation, OutcomeCommitted, start)
	e.metrics.SetVersion(next.Version)
	span.SetAttributes(attribute.Int64("version", int64(next.Version)))
	e.logger.DebugContext(ctx, "operation committed",
		"operation", operation,
		"version", next.Version,
		"events", len(stamped),
	)
	return receiptFor(next, stamped), nil
}

// Append records audit events observed against the snapshot at. Nothing is
// committed: the version stays put and concurrent Execute calls are
// unaffected. Events carry at.Version as their logical time.
func (e *Executor) Append(ctx context.Context, operation string, at Snapshot, events []eventlog.Event) (Receipt, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "ledger.append", trace.WithAttributes(attribute.String("operation", operation)))
	defer span.End()

	stamped := make([]eventlog.Event, len(events))
	for i, ev := range events {
		ev.LogicalTime = at.Version
		stamped[i] = ev
	}
	stamped, err := e.store.Append(ctx, stamped)
	if err != nil {
		e.metrics.Observe(operation, OutcomeError, start)
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		e.logger.ErrorContext(ctx, "event append failed", "operation", operation, "error", err)
		return Receipt{}, translate(err, "failed to append ledger events")
	}
	e.metrics.Observe(operation, OutcomeAppended, start)
	return receiptFor(at, stamped), nil
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotInitialized):
		return dErrors.Wrap(err, dErrors.CodeInternal, "ledger is not initialized")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
