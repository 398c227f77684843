package service

import (
	"context"
	"log/slog"

	"didanchor/internal/eventlog"
	"didanchor/internal/issuer/models"
	"didanchor/internal/ledger"
	"didanchor/internal/merkle"
	"didanchor/pkg/domain"
	"didanchor/pkg/requestcontext"
)

// Ledger runs transitions against the committed snapshot.
type Ledger interface {
	Execute(ctx context.Context, operation string, fn ledger.Transition) (ledger.Receipt, error)
	Snapshot(ctx context.Context) (ledger.Snapshot, error)
}

const (
	OpAddIssuer    = "issuer.add"
	OpRemoveIssuer = "issuer.remove"
)

// Service manages the trusted issuer directory. Changes are admin-only; the
// admin is the authenticated sender in the request context.
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

func (s *Service) AddIssuer(ctx context.Context, issuer domain.PublicKey, w merkle.Witness) (ledger.Receipt, error) {
	return s.change(ctx, OpAddIssuer, issuer, w, models.State.AddIssuer)
}

func (s *Service) RemoveIssuer(ctx context.Context, issuer domain.PublicKey, w merkle.Witness) (ledger.Receipt, error) {
	return s.change(ctx, OpRemoveIssuer, issuer, w, models.State.RemoveIssuer)
}

// IsTrusted is a read-only check against the committed root.
func (s *Service) IsTrusted(ctx context.Context, issuer domain.PublicKey, w merkle.Witness) (bool, error) {
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return snap.Issuers.IsTrusted(issuer, w)
}

// State returns the committed issuer directory.
func (s *Service) State(ctx context.Context) (models.State, error) {
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return models.State{}, err
	}
	return snap.Issuers, nil
}

type changeFunc func(models.State, models.ChangeRequest) (models.State, eventlog.Event, error)

func (s *Service) change(ctx context.Context, op string, issuer domain.PublicKey, w merkle.Witness, fn changeFunc) (ledger.Receipt, error) {
	sender, _ := requestcontext.Sender(ctx)
	req := models.ChangeRequest{Issuer: issuer, Witness: w, Sender: sender}

	receipt, err := s.ledger.Execute(ctx, op, func(_ context.Context, cur ledger.Snapshot) (ledger.Snapshot, []eventlog.Event, error) {
		next, event, err := fn(cur.Issuers, req)
		if err != nil {
			return cur, nil, err
		}
		cur.Issuers = next
		return cur, []eventlog.Event{event}, nil
	})
	if err != nil {
		return ledger.Receipt{}, err
	}
	s.logger.InfoContext(ctx, "issuer trust changed",
		"operation", op,
		"issuer", issuer.String(),
		"request_id", requestcontext.RequestID(ctx),
		"version", receipt.Version,
	)
	return receipt, nil
}
