// Package eventlog defines the append-only notification records emitted by
// committed operations. The core writes events; only external consumers
// (indexer, Kafka relay) read them.
package eventlog

import (
	"context"

	"github.com/google/uuid"

	"didanchor/pkg/domain"
)

// Type enumerates event kinds.
type Type string

const (
	TypeDIDRegistered      Type = "did.registered"
	TypeDIDUpdated         Type = "did.updated"
	TypeDIDRevoked         Type = "did.revoked"
	TypeDIDVerified        Type = "did.verified"
	TypeIssuerAdded        Type = "issuer.added"
	TypeIssuerRemoved      Type = "issuer.removed"
	TypeCredentialVerified Type = "credential.verified"
)

// Directory names the sparse Merkle map an event writes to.
type Directory string

const (
	DirectoryNone   Directory = ""
	DirectoryDID    Directory = "did"
	DirectoryIssuer Directory = "issuer"
)

// Directory reports which map t mutates, if any. Audit-only events
// (verification checks) mutate nothing.
func (t Type) Directory() Directory {
	switch t {
	case TypeDIDRegistered, TypeDIDUpdated, TypeDIDRevoked:
		return DirectoryDID
	case TypeIssuerAdded, TypeIssuerRemoved:
		return DirectoryIssuer
	default:
		return DirectoryNone
	}
}

// Event is one append-only record.
//
// Sequence is a gapless position in the log assigned at commit; LogicalTime is
// the ledger version that produced the event. Several events may share a
// LogicalTime, never a Sequence.
type Event struct {
	ID             uuid.UUID         `json:"id"`
	Sequence       uint64            `json:"sequence"`
	Type           Type              `json:"type"`
	SubjectKeyHash domain.Hash       `json:"subject_key_hash"`
	PayloadHash    domain.Hash       `json:"payload_hash"`
	LeafValue      domain.Hash       `json:"leaf_value"`
	LogicalTime    uint64            `json:"logical_time"`
	Details        map[string]string `json:"details,omitempty"`
}

// New builds an event with a fresh ID. Sequence and LogicalTime are stamped
// by the ledger when the event is committed.
func New(typ Type, subjectKeyHash, payloadHash domain.Hash) Event {
	return Event{
		ID:             uuid.New(),
		Type:           typ,
		SubjectKeyHash: subjectKeyHash,
		PayloadHash:    payloadHash,
	}
}

// WithLeaf records the leaf value a directory write left behind.
func (e Event) WithLeaf(value domain.Hash) Event {
	e.LeafValue = value
	return e
}

// WithDetail attaches an indexer-facing attribute.
func (e Event) WithDetail(key, value string) Event {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

// Reader exposes the log to consumers in sequence order.
type Reader interface {
	// ReadSince returns up to limit events with Sequence > after.
	ReadSince(ctx context.Context, after uint64, limit int) ([]Event, error)
}
