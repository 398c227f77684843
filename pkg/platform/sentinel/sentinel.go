package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Ledger stores and adapters return
// these (optionally wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: record does not exist in the store
// - ErrConflict: compare-and-swap lost, the stored version moved on
// - ErrNotInitialized: ledger state has not been created yet
// - ErrUnavailable: backend temporarily unavailable
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrNotInitialized = errors.New("not initialized")
	ErrUnavailable    = errors.New("unavailable")
)
