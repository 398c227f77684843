package models

import "time"

// Policy holds the deployment-specific acceptance rules.
//
// The self-attestation checks are flags rather than invariants: the proof
// path historically rejected subject == sender while the commitment path
// never did. Harden only after stakeholders agree.
type Policy struct {
	MinimumAge                        uint32
	MinimumKYCLevel                   uint32
	RejectSelfAttestationZK           bool
	RejectSelfAttestationCommitment   bool
	RequireTrustedIssuerForCommitment bool
	// MaxProofAge bounds how old a proof timestamp may be. Zero disables it.
	MaxProofAge time.Duration
	// MaxClockSkew is how far ahead of now a proof timestamp may be while
	// the window is enabled.
	MaxClockSkew time.Duration
}

// DefaultPolicy mirrors the behaviour of the latest proof path.
func DefaultPolicy() Policy {
	return Policy{
		MinimumAge:                        18,
		MinimumKYCLevel:                   1,
		RejectSelfAttestationZK:           true,
		RejectSelfAttestationCommitment:   false,
		RequireTrustedIssuerForCommitment: true,
		MaxClockSkew:                      time.Minute,
	}
}
