package models

import (
	"didanchor/internal/eventlog"
	"didanchor/internal/merkle"
	"didanchor/pkg/domain"
	dErrors "didanchor/pkg/domain-errors"
)

// State is the committed issuer trust directory: H(issuerKey) → {0, 1}.
// Only Admin may change it.
type State struct {
	Root  domain.Hash      `json:"root"`
	Admin domain.PublicKey `json:"admin"`
}

// Genesis returns an empty directory administered by admin.
func Genesis(admin domain.PublicKey) State {
	return State{Root: merkle.EmptyRoot(), Admin: admin}
}

// ChangeRequest adds or removes an issuer.
type ChangeRequest struct {
	Issuer  domain.PublicKey
	Witness merkle.Witness
	Sender  domain.PublicKey
}

// AddIssuer flips H(issuer) from 0 to 1.
func (s State) AddIssuer(req ChangeRequest) (State, eventlog.Event, error) {
	return s.set(req, domain.Zero, domain.One, eventlog.TypeIssuerAdded)
}

// RemoveIssuer flips H(issuer) from 1 back to 0.
func (s State) RemoveIssuer(req ChangeRequest) (State, eventlog.Event, error) {
	return s.set(req, domain.One, domain.Zero, eventlog.TypeIssuerRemoved)
}

// IsTrusted reports whether the witness proves value 1 at H(issuer).
// A malformed witness is an error; a valid witness for any other value is
// simply "not trusted".
func (s State) IsTrusted(issuer domain.PublicKey, w merkle.Witness) (bool, error) {
	if issuer.IsZero() {
		return false, dErrors.New(dErrors.CodeValidation, "issuer key is required")
	}
	return merkle.Matches(w, domain.One, issuer.KeyHash(), s.Root)
}

func (s State) set(req ChangeRequest, from, to domain.Hash, typ eventlog.Type) (State, eventlog.Event, error) {
	if req.Issuer.IsZero() {
		return s, eventlog.Event{}, dErrors.New(dErrors.CodeValidation, "issuer key is required")
	}
	if s.Admin.IsZero() || req.Sender != s.Admin {
		return s, eventlog.Event{}, dErrors.New(dErrors.CodeForbidden, "only the admin may change issuer trust")
	}

	key := req.Issuer.KeyHash()
	oldRoot, witnessKey, err := merkle.ComputeRootAndKey(req.Witness, from)
	if err != nil {
		return s, eventlog.Event{}, err
	}
	if witnessKey != key {
		return s, eventlog.Event{}, dErrors.New(dErrors.CodeStateConflict, "witness does not authenticate the issuer key")
	}
	if oldRoot != s.Root {
		if from.IsZero() {
			return s, eventlog.Event{}, dErrors.New(dErrors.CodePreconditionFailed, "issuer already trusted")
		}
		return s, eventlog.Event{}, dErrors.New(dErrors.CodePreconditionFailed, "issuer not trusted")
	}

	newRoot, _, err := merkle.ComputeRootAndKey(req.Witness, to)
	if err != nil {
		return s, eventlog.Event{}, err
	}
	next := s
	next.Root = newRoot
	return next, eventlog.New(typ, key, to).WithLeaf(to), nil
}
