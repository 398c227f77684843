// Package authz verifies signatures over operation-scoped payloads and
// evaluates the owner-or-admin policy.
package authz

import (
	"didanchor/pkg/domain"
)

// Operation names the mutation a signature authorizes. It is hashed into the
// payload so a signature for one operation never verifies for another.
type Operation string

const (
	OpRegister Operation = "did.register"
	OpUpdate   Operation = "did.update"
	OpRevoke   Operation = "did.revoke"
)

const payloadDomain = "didanchor/v1"

// Payload is the deterministic message signed for an operation. Fields never
// include the witness: witnesses change whenever the root moves and must not
// bind authorization.
type Payload struct {
	Operation Operation
	Fields    []domain.Hash
}

// RegisterPayload authorizes anchoring documentHash.
func RegisterPayload(documentHash domain.Hash) Payload {
	return Payload{Operation: OpRegister, Fields: []domain.Hash{documentHash}}
}

// UpdatePayload authorizes replacing the document with newHash.
func UpdatePayload(newHash domain.Hash) Payload {
	return Payload{Operation: OpUpdate, Fields: []domain.Hash{newHash}}
}

// RevokePayload authorizes tombstoning the record of owner.
func RevokePayload(owner domain.PublicKey) Payload {
	return Payload{Operation: OpRevoke, Fields: []domain.Hash{owner.KeyHash()}}
}

// Digest returns the bytes that are actually signed.
func (p Payload) Digest() domain.Hash {
	parts := make([][]byte, 0, len(p.Fields)+2)
	parts = append(parts, []byte(payloadDomain), []byte(p.Operation))
	for i := range p.Fields {
		parts = append(parts, p.Fields[i][:])
	}
	return domain.Sum(parts...)
}
