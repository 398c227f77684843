package models

import (
	"strconv"

	"didanchor/internal/authz"
	"didanchor/internal/eventlog"
	"didanchor/internal/merkle"
	"didanchor/pkg/domain"
	dErrors "didanchor/pkg/domain-errors"
)

// Every transition below is a pure function of the current state and the
// request. All checks run before the next state is built, so a rejection
// leaves nothing to roll back.

// Register moves H(owner) from empty to DocumentHash.
func (s State) Register(req RegisterRequest) (State, eventlog.Event, error) {
	if req.Owner.IsZero() {
		return s, eventlog.Event{}, dErrors.New(dErrors.CodeValidation, "owner key is required")
	}
	if req.DocumentHash.IsZero() {
		return s, eventlog.Event{}, dErrors.New(dErrors.CodeValidation, "document hash must be nonzero")
	}
	if !authz.VerifySignature(req.Owner, authz.RegisterPayload(req.DocumentHash), req.Signature) {
		return s, eventlog.Event{}, dErrors.New(dErrors.CodeUnauthorized, "invalid owner signature")
	}

	key := req.Owner.KeyHash()
	oldRoot, witnessKey, err := merkle.ComputeRootAndKey(req.Witness, domain.Zero)
	if err != nil {
		return s, eventlog.Event{}, err
	}
	if witnessKey != key {
		return s, eventlog.Event{}, dErrors.New(dErrors.CodeStateConflict, "witness does not authenticate the owner key")
	}
	if oldRoot != s.Root {
		return s, eventlog.Event{}, dErrors.New(dErrors.CodePreconditionFailed, "slot already occupied")
	}

	newRoot, _, err := merkle.ComputeRootAndKey(req.Witness, req.DocumentHash)
	if err != nil {
		return s, eventlog.Event{}, err
	}

	next := s
	next.Root = newRoot
	next.TotalActive++
	event := eventlog.New(eventlog.TypeDIDRegistered, key, req.DocumentHash).
		WithLeaf(req.DocumentHash)
	return next, event, nil
}

// Update replaces OldHash with NewHash. TotalActive is unchanged.
func (s State) Update(req UpdateRequest) (State, eventlog.Event, error) {
	if req.Owner.IsZero() {
		return s, eventlog.Event{}, dErrors.New(dErrors.CodeValidation, "owner key is required")
	}
	if req.NewHash.IsZero() {
		return s, eventlog.Event{}, dErrors.New(dErrors.CodeValidation, "new document hash must be nonzero, use revoke to clear a record")
	}
	if req.OldHash.IsZero() {
		return s, eventlog.Event{}, dErrors.New(dErrors.CodePreconditionFailed, "slot empty")
	}
	if !authz.VerifySignature(req.Owner, authz.UpdatePayload(req.NewHash), req.Signature) {
		return s, eventlog.Event{}, dErrors.New(dErrors.CodeUnauthorized, "invalid owner signature")
	}

	key := req.Owner.KeyHash()
	if err := s.checkCurrent(req.Witness, key, req.OldHash); err != nil {
		return s, eventlog.Event{}, err
	}
	newRoot, _, err := merkle.ComputeRootAndKey(req.Witness, req.NewHash)
	if err != nil {
		return s, eventlog.Event{}, err
	}

	next := s
	next.Root = newRoot
	event := eventlog.New(eventlog.TypeDIDUpdated, key, domain.SumHashes(req.OldHash, req.NewHash)).
		WithLeaf(req.NewHash).
		WithDetail("old", req.OldHash.String()).
		WithDetail("new", req.NewHash.String())
	return next, event, nil
}

// Revoke tombstones the record: the slot returns to zero and TotalActive
// drops by one. Allowed for the owner (signature) or the admin (sender).
func (s State) Revoke(req RevokeRequest) (State, eventlog.Event, error) {
	if req.Owner.IsZero() {
		return s, eventlog.Event{}, dErrors.New(dErrors.CodeValidation, "owner key is required")
	}
	selfSigValid := len(req.Signature) > 0 &&
		authz.VerifySignature(req.Owner, authz.RevokePayload(req.Owner), req.Signature)
	if !authz.OwnerOrAdmin(req.Sender, req.Owner, s.Admin, selfSigValid) {
		if len(req.Signature) > 0 {
			return s, eventlog.Event{}, dErrors.New(dErrors.CodeUnauthorized, "invalid owner signature")
		}
		return s, eventlog.Event{}, dErrors.New(dErrors.CodeForbidden, "revocation requires the owner's signature or the admin")
	}
	if req.OldHash.IsZero() {
		return s, eventlog.Event{}, dErrors.New(dErrors.CodePreconditionFailed, "slot empty")
	}

	key := req.Owner.KeyHash()
	if err := s.checkCurrent(req.Witness, key, req.OldHash); err != nil {
		return s, eventlog.Event{}, err
	}
	newRoot, _, err := merkle.ComputeRootAndKey(req.Witness, domain.Zero)
	if err != nil {
		return s, eventlog.Event{}, err
	}
	if s.TotalActive == 0 {
		return s, eventlog.Event{}, dErrors.New(dErrors.CodeInvariantViolation, "active count underflow")
	}

	next := s
	next.Root = newRoot
	next.TotalActive--
	event := eventlog.New(eventlog.TypeDIDRevoked, key, req.OldHash).
		WithLeaf(domain.Zero).
		WithDetail("by_admin", strconv.FormatBool(!selfSigValid))
	return next, event, nil
}

// Verify checks ClaimedHash against the committed root without changing the
// registry. The returned event is audit-only.
func (s State) Verify(req VerifyRequest) (bool, eventlog.Event, error) {
	if req.Owner.IsZero() {
		return false, eventlog.Event{}, dErrors.New(dErrors.CodeValidation, "owner key is required")
	}
	key := req.Owner.KeyHash()
	matched, err := merkle.Matches(req.Witness, req.ClaimedHash, key, s.Root)
	if err != nil {
		return false, eventlog.Event{}, err
	}
	event := eventlog.New(eventlog.TypeDIDVerified, key, req.ClaimedHash).
		WithDetail("exists", strconv.FormatBool(!req.ClaimedHash.IsZero())).
		WithDetail("matched", strconv.FormatBool(matched))
	return matched, event, nil
}

// checkCurrent asserts the witness proves value at key under the committed
// root. A mismatch means the witness is stale, forged or for another key.
func (s State) checkCurrent(w merkle.Witness, key, value domain.Hash) error {
	root, witnessKey, err := merkle.ComputeRootAndKey(w, value)
	if err != nil {
		return err
	}
	if witnessKey != key {
		return dErrors.New(dErrors.CodeStateConflict, "witness does not authenticate the owner key")
	}
	if root != s.Root {
		return dErrors.New(dErrors.CodeStateConflict, "witness is stale for the committed root")
	}
	return nil
}
