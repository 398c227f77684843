package models

import (
	"didanchor/internal/merkle"
	"didanchor/pkg/domain"
)

// State is the committed DID registry.
//
// Invariants:
//   - Root is the single source of truth for every identity record
//   - For each key H(owner), the value consistent with Root is the last
//     document hash written, or zero if never registered or revoked
//   - TotalActive equals the number of keys whose value is nonzero
//   - Admin is fixed at genesis
//
// "Never registered" and "revoked" both collapse to zero. Nothing on the
// committed state tells them apart.
type State struct {
	Root        domain.Hash      `json:"root"`
	TotalActive uint64           `json:"total_active"`
	Admin       domain.PublicKey `json:"admin"`
}

// Genesis returns the empty registry administered by admin.
func Genesis(admin domain.PublicKey) State {
	return State{Root: merkle.EmptyRoot(), Admin: admin}
}

// RegisterRequest anchors a new document for Owner.
type RegisterRequest struct {
	Owner        domain.PublicKey
	DocumentHash domain.Hash
	Witness      merkle.Witness
	Signature    []byte
}

// UpdateRequest replaces the document of an active record. OldHash is the
// value the caller believes is committed; the witness must prove it.
type UpdateRequest struct {
	Owner     domain.PublicKey
	OldHash   domain.Hash
	NewHash   domain.Hash
	Witness   merkle.Witness
	Signature []byte
}

// RevokeRequest tombstones an active record. Signature is optional when
// Sender is the admin.
type RevokeRequest struct {
	Owner     domain.PublicKey
	OldHash   domain.Hash
	Witness   merkle.Witness
	Signature []byte
	Sender    domain.PublicKey
}

// VerifyRequest checks whether ClaimedHash is the committed value for Owner.
type VerifyRequest struct {
	Owner       domain.PublicKey
	ClaimedHash domain.Hash
	Witness     merkle.Witness
}
