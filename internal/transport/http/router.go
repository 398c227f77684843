// Package httptransport exposes the anchor over JSON/HTTP.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	credentialModels "didanchor/internal/credential/models"
	credentialService "didanchor/internal/credential/service"
	didModels "didanchor/internal/did/models"
	didService "didanchor/internal/did/service"
	"didanchor/internal/indexer"
	"didanchor/internal/ledger"
	"didanchor/internal/merkle"
	"didanchor/pkg/domain"
	authmw "didanchor/pkg/platform/middleware/auth"
	"didanchor/pkg/platform/middleware/request"
	"didanchor/pkg/platform/middleware/requesttime"
)

//go:generate mockgen -source=router.go -destination=mocks/mocks.go -package=mocks DIDService,IssuerService,CredentialService,StateReader,WitnessIndex

// DIDService runs registry operations.
type DIDService interface {
	Register(ctx context.Context, req didModels.RegisterRequest) (ledger.Receipt, error)
	Update(ctx context.Context, req didModels.UpdateRequest) (ledger.Receipt, error)
	Revoke(ctx context.Context, req didModels.RevokeRequest) (ledger.Receipt, error)
	Verify(ctx context.Context, req didModels.VerifyRequest) (didService.VerifyResult, error)
}

// IssuerService runs trust-store operations.
type IssuerService interface {
	AddIssuer(ctx context.Context, issuer domain.PublicKey, w merkle.Witness) (ledger.Receipt, error)
	RemoveIssuer(ctx context.Context, issuer domain.PublicKey, w merkle.Witness) (ledger.Receipt, error)
	IsTrusted(ctx context.Context, issuer domain.PublicKey, w merkle.Witness) (bool, error)
}

// CredentialService verifies credential submissions.
type CredentialService interface {
	Verify(ctx context.Context, sub credentialModels.Submission, issuerWitness merkle.Witness) (credentialService.Result, error)
}

// StateReader returns the committed snapshot.
type StateReader interface {
	Snapshot(ctx context.Context) (ledger.Snapshot, error)
}

// WitnessIndex serves witnesses rebuilt from the event log.
type WitnessIndex interface {
	WitnessForDID(owner domain.PublicKey) indexer.Lookup
	WitnessForIssuer(issuer domain.PublicKey) indexer.Lookup
	Cursor() uint64
}

// Handler wires the anchor endpoints to their services.
type Handler struct {
	dids        DIDService
	issuers     IssuerService
	credentials CredentialService
	state       StateReader
	index       WitnessIndex
	logger      *slog.Logger
}

// New constructs a handler. index may be nil, in which case the witness
// routes are not mounted.
func New(dids DIDService, issuers IssuerService, credentials CredentialService, state StateReader, index WitnessIndex, logger *slog.Logger) *Handler {
	return &Handler{
		dids:        dids,
		issuers:     issuers,
		credentials: credentials,
		state:       state,
		index:       index,
		logger:      logger,
	}
}

// RouterConfig carries the cross-cutting pieces of the router.
type RouterConfig struct {
	Logger *slog.Logger
	// Validator resolves bearer tokens to senders. Nil disables bearer auth:
	// every request is anonymous and sender-only routes always return 401.
	Validator authmw.JWTValidator
	// Observe receives route and status of each request, typically a
	// Prometheus counter.
	Observe request.Observer
	// Metrics, when set, is served on /metrics.
	Metrics http.Handler
	// Ready, when set, backs /readyz with a dependency check.
	Ready func(ctx context.Context) error
}

// NewRouter mounts the API under /v1 with the standard middleware chain.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(request.AccessLog(cfg.Logger, cfg.Observe))

	r.Get("/healthz", h.HandleHealth)
	if cfg.Ready != nil {
		r.Get("/readyz", readiness(cfg.Ready, cfg.Logger))
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		if cfg.Validator != nil {
			r.Use(authmw.Authenticate(cfg.Validator, cfg.Logger))
		}
		h.Register(r, cfg.Logger)
	})
	return r
}

// Register mounts the API routes on r.
func (h *Handler) Register(r chi.Router, logger *slog.Logger) {
	r.Get("/state", h.HandleState)

	r.Post("/dids/register", h.HandleRegister)
	r.Post("/dids/update", h.HandleUpdate)
	r.Post("/dids/revoke", h.HandleRevoke)
	r.Post("/dids/verify", h.HandleVerifyDID)
	r.Post("/issuers/trusted", h.HandleIsTrusted)

	if h.index != nil {
		r.Get("/dids/{key}/witness", h.HandleDIDWitness)
		r.Get("/issuers/{key}/witness", h.HandleIssuerWitness)
	}

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireSender(logger))
		r.Post("/issuers", h.HandleAddIssuer)
		r.Post("/issuers/remove", h.HandleRemoveIssuer)
		r.Post("/credentials/verify", h.HandleVerifyCredential)
	})
}
