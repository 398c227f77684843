package service

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"didanchor/internal/credential/models"
	"didanchor/internal/eventlog"
	"didanchor/internal/ledger"
	"didanchor/internal/merkle"
	dErrors "didanchor/pkg/domain-errors"
	"didanchor/pkg/requestcontext"
)

// Ledger runs transitions against the committed snapshot.
type Ledger interface {
	Execute(ctx context.Context, operation string, fn ledger.Transition) (ledger.Receipt, error)
}

// ProofVerifier is the opaque zero-knowledge verifier.
type ProofVerifier interface {
	Verify(ctx context.Context, proof []byte, input models.PublicInput) (bool, error)
}

const OpVerifyCredential = "credential.verify"

// Metrics counts verification attempts.
type Metrics struct {
	Attempts *prometheus.CounterVec
}

// NewMetrics registers the credential metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Attempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "didanchor_credential_verifications_total",
			Help: "Credential verification attempts by kind and result code",
		}, []string{"kind", "result"}),
	}
}

// Service verifies credential submissions against the committed issuer
// directory and bumps the verification counter on success.
type Service struct {
	ledger   Ledger
	verifier ProofVerifier
	policy   models.Policy
	logger   *slog.Logger
	metrics  *Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPolicy(p models.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// New constructs a Service. A nil verifier disables the proof path.
func New(l Ledger, verifier ProofVerifier, opts ...Option) *Service {
	if verifier == nil {
		verifier = DisabledVerifier{}
	}
	s := &Service{
		ledger:   l,
		verifier: verifier,
		policy:   models.DefaultPolicy(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is an accepted verification.
type Result struct {
	Outcome models.Outcome `json:"outcome"`
	Receipt ledger.Receipt `json:"receipt"`
}

// Verify checks sub under the supplied issuer witness. The sender, used for
// self-attestation checks, comes from the request context.
func (s *Service) Verify(ctx context.Context, sub models.Submission, issuerWitness merkle.Witness) (Result, error) {
	sender, _ := requestcontext.Sender(ctx)
	req := models.Request{
		Submission:    sub,
		IssuerWitness: issuerWitness,
		Sender:        sender,
		Now:           requestcontext.Now(ctx),
	}

	var outcome models.Outcome
	receipt, err := s.ledger.Execute(ctx, OpVerifyCredential, func(ctx context.Context, cur ledger.Snapshot) (ledger.Snapshot, []eventlog.Event, error) {
		next, out, event, err := cur.Credentials.Verify(ctx, req, s.policy, cur.Issuers, s.verifier)
		if err != nil {
			return cur, nil, err
		}
		outcome = out
		cur.Credentials = next
		return cur, []eventlog.Event{event}, nil
	})
	kind := string(models.KindOf(sub))
	if err != nil {
		s.observe(kind, string(dErrors.CodeOf(err)))
		return Result{}, err
	}
	s.observe(kind, "accepted")
	s.logger.InfoContext(ctx, "credential verified",
		"kind", kind,
		"subject", outcome.Subject.String(),
		"threshold", outcome.Threshold,
		"request_id", requestcontext.RequestID(ctx),
		"version", receipt.Version,
	)
	return Result{Outcome: outcome, Receipt: receipt}, nil
}

func (s *Service) observe(kind, result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Attempts.WithLabelValues(kind, result).Inc()
}
