// Package ledger is the execution environment for every state transition:
// one version-stamped snapshot guarded by compare-and-swap. An operation
// loads the snapshot, runs a pure transition and commits the result together
// with its events. A lost race is reported, never retried.
package ledger

import (
	"context"

	credentialModels "didanchor/internal/credential/models"
	didModels "didanchor/internal/did/models"
	"didanchor/internal/eventlog"
	issuerModels "didanchor/internal/issuer/models"
	"didanchor/pkg/domain"
)

// Snapshot is the whole committed state.
type Snapshot struct {
	// Version increases by one per commit and doubles as logical time.
	Version     uint64                 `json:"version"`
	Registry    didModels.State        `json:"registry"`
	Issuers     issuerModels.State     `json:"issuers"`
	Credentials credentialModels.State `json:"credentials"`
	// EventCount is the Sequence of the last logged event at load time. The
	// store owns it; audit appends advance it without a new Version.
	EventCount uint64 `json:"event_count"`
}

// Genesis is the initial snapshot: empty directories, zero counters.
func Genesis(admin domain.PublicKey) Snapshot {
	return Snapshot{
		Registry: didModels.Genesis(admin),
		Issuers:  issuerModels.Genesis(admin),
	}
}

// Store persists snapshots and their events.
//
// The store assigns event Sequences: each batch continues the log without
// gaps and the stamped batch is returned. Commit must atomically check that
// the stored version equals expectedVersion, replace the snapshot and append
// events; on a version mismatch it returns sentinel.ErrConflict and writes
// nothing. Append adds events to the log without touching the snapshot, so
// it never causes or suffers a version conflict. Load returns
// sentinel.ErrNotInitialized before Init. Init is idempotent: it keeps an
// existing snapshot.
type Store interface {
	eventlog.Reader
	Init(ctx context.Context, genesis Snapshot) error
	Load(ctx context.Context) (Snapshot, error)
	Commit(ctx context.Context, expectedVersion uint64, next Snapshot, events []eventlog.Event) ([]eventlog.Event, error)
	Append(ctx context.Context, events []eventlog.Event) ([]eventlog.Event, error)
}

// Receipt is the uniform result of an operation.
type Receipt struct {
	Version       uint64           `json:"version"`
	RegistryRoot  domain.Hash      `json:"registry_root"`
	IssuerRoot    domain.Hash      `json:"issuer_root"`
	TotalActive   uint64           `json:"total_active"`
	Verifications uint64           `json:"verifications"`
	Events        []eventlog.Event `json:"events"`
}

func receiptFor(s Snapshot, events []eventlog.Event) Receipt {
	return Receipt{
		Version:       s.Version,
		RegistryRoot:  s.Registry.Root,
		IssuerRoot:    s.Issuers.Root,
		TotalActive:   s.Registry.TotalActive,
		Verifications: s.Credentials.Verifications,
		Events:        events,
	}
}
