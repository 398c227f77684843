package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"didanchor/internal/ledger"
	"didanchor/pkg/domain"
	dErrors "didanchor/pkg/domain-errors"
	"didanchor/pkg/platform/httputil"
	"didanchor/pkg/requestcontext"
)

// StateResponse is the read-only view of the committed state.
type StateResponse struct {
	Version       uint64           `json:"version"`
	RegistryRoot  domain.Hash      `json:"registry_root"`
	TotalActive   uint64           `json:"total_active"`
	IssuerRoot    domain.Hash      `json:"issuer_root"`
	Admin         domain.PublicKey `json:"admin"`
	Verifications uint64           `json:"verifications"`
	EventCount    uint64           `json:"event_count"`
}

// TrustedResponse answers POST /v1/issuers/trusted.
type TrustedResponse struct {
	Issuer  domain.PublicKey `json:"issuer"`
	Trusted bool             `json:"trusted"`
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readiness(check func(ctx context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context()); err != nil {
			logger.WarnContext(r.Context(), "readiness check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// HandleState handles GET /v1/state.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.state.Snapshot(r.Context())
	if err != nil {
		h.fail(w, r, "state read failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StateResponse{
		Version:       snap.Version,
		RegistryRoot:  snap.Registry.Root,
		TotalActive:   snap.Registry.TotalActive,
		IssuerRoot:    snap.Issuers.Root,
		Admin:         snap.Registry.Admin,
		Verifications: snap.Credentials.Verifications,
		EventCount:    snap.EventCount,
	})
}

// HandleRegister handles POST /v1/dids/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	receipt, err := h.dids.Register(ctx, req.ToModel())
	h.writeReceipt(w, r, "did register failed", receipt, err)
}

// HandleUpdate handles POST /v1/dids/update.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	receipt, err := h.dids.Update(ctx, req.ToModel())
	h.writeReceipt(w, r, "did update failed", receipt, err)
}

// HandleRevoke handles POST /v1/dids/revoke.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RevokeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	receipt, err := h.dids.Revoke(ctx, req.ToModel())
	h.writeReceipt(w, r, "did revoke failed", receipt, err)
}

// HandleVerifyDID handles POST /v1/dids/verify.
func (h *Handler) HandleVerifyDID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[VerifyDIDRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	result, err := h.dids.Verify(ctx, req.ToModel())
	if err != nil {
		h.fail(w, r, "did verify failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleAddIssuer handles POST /v1/issuers.
func (h *Handler) HandleAddIssuer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[IssuerRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	receipt, err := h.issuers.AddIssuer(ctx, req.Issuer, req.Witness)
	h.writeReceipt(w, r, "add issuer failed", receipt, err)
}

// HandleRemoveIssuer handles POST /v1/issuers/remove.
func (h *Handler) HandleRemoveIssuer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[IssuerRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	receipt, err := h.issuers.RemoveIssuer(ctx, req.Issuer, req.Witness)
	h.writeReceipt(w, r, "remove issuer failed", receipt, err)
}

// HandleIsTrusted handles POST /v1/issuers/trusted.
func (h *Handler) HandleIsTrusted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[IssuerRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	trusted, err := h.issuers.IsTrusted(ctx, req.Issuer, req.Witness)
	if err != nil {
		h.fail(w, r, "trust check failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TrustedResponse{Issuer: req.Issuer, Trusted: trusted})
}

// HandleVerifyCredential handles POST /v1/credentials/verify.
func (h *Handler) HandleVerifyCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[VerifyCredentialRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	result, err := h.credentials.Verify(ctx, req.ParsedSubmission(), req.IssuerWitness)
	if err != nil {
		h.fail(w, r, "credential verification failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleDIDWitness handles GET /v1/dids/{key}/witness.
func (h *Handler) HandleDIDWitness(w http.ResponseWriter, r *http.Request) {
	key, err := domain.ParsePublicKey(chi.URLParam(r, "key"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.index.WitnessForDID(key))
}

// HandleIssuerWitness handles GET /v1/issuers/{key}/witness.
func (h *Handler) HandleIssuerWitness(w http.ResponseWriter, r *http.Request) {
	key, err := domain.ParsePublicKey(chi.URLParam(r, "key"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.index.WitnessForIssuer(key))
}

func (h *Handler) writeReceipt(w http.ResponseWriter, r *http.Request, msg string, receipt ledger.Receipt, err error) {
	if err != nil {
		h.fail(w, r, msg, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, receipt)
}

// fail logs rejections at warn and faults at error, then writes the envelope.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	attrs := []any{"request_id", requestcontext.RequestID(ctx), "error", err}
	if dErrors.CodeOf(err) == dErrors.CodeInternal || dErrors.CodeOf(err) == dErrors.CodeTimeout {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
