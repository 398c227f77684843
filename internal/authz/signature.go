package authz

import (
	"crypto/ed25519"

	"didanchor/pkg/domain"
)

// VerifySignature checks sig by signer over payload.
func VerifySignature(signer domain.PublicKey, payload Payload, sig []byte) bool {
	if signer.IsZero() || len(sig) != ed25519.SignatureSize {
		return false
	}
	digest := payload.Digest()
	return ed25519.Verify(signer.Ed25519(), digest[:], sig)
}

// Sign produces the signature VerifySignature accepts. Used by the CLI and
// tests; the service itself never holds owner keys.
func Sign(priv ed25519.PrivateKey, payload Payload) []byte {
	digest := payload.Digest()
	return ed25519.Sign(priv, digest[:])
}

// OwnerOrAdmin grants access when the record owner signed the request or the
// sender is the directory admin. A self signature counts only for a record
// that has an owner.
func OwnerOrAdmin(sender, recordOwner, admin domain.PublicKey, selfSigValid bool) bool {
	if selfSigValid && !recordOwner.IsZero() {
		return true
	}
	return !admin.IsZero() && sender == admin
}
