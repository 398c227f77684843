package service

import (
	"context"
	"crypto/ed25519"

	"didanchor/internal/credential/models"
	"didanchor/pkg/domain"
)

// SignedProofVerifier accepts a proof when it is an Ed25519 signature, by
// one of the trusted proving services, over the canonical public input.
// It stands in for a circuit verifier behind the same interface.
type SignedProofVerifier struct {
	keys []domain.PublicKey
}

// NewSignedProofVerifier trusts the given proving-service keys.
func NewSignedProofVerifier(keys ...domain.PublicKey) *SignedProofVerifier {
	return &SignedProofVerifier{keys: append([]domain.PublicKey(nil), keys...)}
}

func (v *SignedProofVerifier) Verify(_ context.Context, proof []byte, input models.PublicInput) (bool, error) {
	if len(proof) != ed25519.SignatureSize {
		return false, nil
	}
	digest := input.Digest()
	for _, k := range v.keys {
		if ed25519.Verify(k.Ed25519(), digest[:], proof) {
			return true, nil
		}
	}
	return false, nil
}

// SignProof produces a proof SignedProofVerifier accepts. Used by the CLI
// and tests to stand in for a prover.
func SignProof(priv ed25519.PrivateKey, input models.PublicInput) []byte {
	digest := input.Digest()
	return ed25519.Sign(priv, digest[:])
}

// DisabledVerifier rejects every proof. It is wired when no proving-service
// keys are configured, which leaves only the commitment path usable.
type DisabledVerifier struct{}

func (DisabledVerifier) Verify(context.Context, []byte, models.PublicInput) (bool, error) {
	return false, nil
}
