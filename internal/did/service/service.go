package service

import (
	"context"
	"log/slog"

	"didanchor/internal/did/models"
	"didanchor/internal/eventlog"
	"didanchor/internal/ledger"
	"didanchor/pkg/requestcontext"
)

// Ledger runs transitions against the committed snapshot and records audit
// events beside it.
type Ledger interface {
	Execute(ctx context.Context, operation string, fn ledger.Transition) (ledger.Receipt, error)
	Append(ctx context.Context, operation string, at ledger.Snapshot, events []eventlog.Event) (ledger.Receipt, error)
	Snapshot(ctx context.Context) (ledger.Snapshot, error)
}

// Operation names used for logging, metrics and tracing.
const (
	OpRegister = "did.register"
	OpUpdate   = "did.update"
	OpRevoke   = "did.revoke"
	OpVerify   = "did.verify"
)

// Service orchestrates DID registry operations. Every mutation is a single
// ledger execution over a pure transition of models.State.
type Service struct {
	ledger Ledger
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service.
func New(l Ledger, opts ...Option) *Service {
	s := &Service{ledger: l, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VerifyResult reports whether the claimed document is the committed one.
type VerifyResult struct {
	Exists  bool           `json:"exists"`
	Matched bool           `json:"matched"`
	Receipt ledger.Receipt `json:"receipt"`
}

func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (ledger.Receipt, error) {
	return s.apply(ctx, OpRegister, func(st models.State) (models.State, eventlog.Event, error) {
		return st.Register(req)
	})
}

func (s *Service) Update(ctx context.Context, req models.UpdateRequest) (ledger.Receipt, error) {
	return s.apply(ctx, OpUpdate, func(st models.State) (models.State, eventlog.Event, error) {
		return st.Update(req)
	})
}

// Revoke takes the sender from the request context; the admin may revoke
// without the owner's signature.
func (s *Service) Revoke(ctx context.Context, req models.RevokeRequest) (ledger.Receipt, error) {
	if sender, ok := requestcontext.Sender(ctx); ok {
		req.Sender = sender
	}
	return s.apply(ctx, OpRevoke, func(st models.State) (models.State, eventlog.Event, error) {
		return st.Revoke(req)
	})
}

// Verify checks the claim against the committed root and records an audit
// event. It commits nothing, so it never conflicts with a mutation.
func (s *Service) Verify(ctx context.Context, req models.VerifyRequest) (VerifyResult, error) {
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return VerifyResult{}, err
	}
	matched, event, err := snap.Registry.Verify(req)
	if err != nil {
		return VerifyResult{}, err
	}
	receipt, err := s.ledger.Append(ctx, OpVerify, snap, []eventlog.Event{event})
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{Exists: !req.ClaimedHash.IsZero(), Matched: matched, Receipt: receipt}, nil
}

// State returns the committed registry.
func (s *Service) State(ctx context.Context) (models.State, error) {
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return models.State{}, err
	}
	return snap.Registry, nil
}

func (s *Service) apply(ctx context.Context, op string, fn func(models.State) (models.State, eventlog.Event, error)) (ledger.Receipt, error) {
	receipt, err := s.ledger.Execute(ctx, op, func(_ context.Context, cur ledger.Snapshot) (ledger.Snapshot, []eventlog.Event, error) {
		next, event, err := fn(cur.Registry)
		if err != nil {
			return cur, nil, err
		}
		cur.Registry = next
		return cur, []eventlog.Event{event}, nil
	})
	if err != nil {
		return ledger.Receipt{}, err
	}
	s.logger.InfoContext(ctx, "did registry updated",
		"operation", op,
		"request_id", requestcontext.RequestID(ctx),
		"version", receipt.Version,
		"total_active", receipt.TotalActive,
	)
	return receipt, nil
}
