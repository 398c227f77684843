package domain

import (
	"crypto/ed25519"
	"strings"

	"github.com/mr-tron/base58"

	dErrors "didanchor/pkg/domain-errors"
)

// DIDPrefix is the method prefix of identifiers anchored here.
const DIDPrefix = "did:anchor:"

// PublicKey is an Ed25519 public key identifying owners, issuers and the admin.
type PublicKey [ed25519.PublicKeySize]byte

// IsZero reports whether k is unset.
func (k PublicKey) IsZero() bool {
	return k == PublicKey{}
}

// KeyHash is the directory key of k: H(publicKey).
func (k PublicKey) KeyHash() Hash {
	return Sum(k[:])
}

// DID renders k as a did:anchor identifier.
func (k PublicKey) DID() string {
	return DIDPrefix + k.String()
}

func (k PublicKey) String() string {
	return base58.Encode(k[:])
}

// Ed25519 returns k as a standard library key.
func (k PublicKey) Ed25519() ed25519.PublicKey {
	return ed25519.PublicKey(k[:])
}

// MarshalText encodes k as base58.
func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts base58 or a did:anchor identifier.
func (k *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParsePublicKey decodes a base58 key, optionally prefixed with did:anchor:.
func ParsePublicKey(s string) (PublicKey, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), DIDPrefix)
	if s == "" {
		return PublicKey{}, dErrors.New(dErrors.CodeInvalidInput, "public key is required")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return PublicKey{}, dErrors.New(dErrors.CodeInvalidInput, "public key must be base58 encoded")
	}
	if len(raw) != ed25519.PublicKeySize {
		return PublicKey{}, dErrors.New(dErrors.CodeInvalidInput, "public key must be 32 bytes")
	}
	var k PublicKey
	copy(k[:], raw)
	return k, nil
}

// PublicKeyFrom converts a standard library key.
func PublicKeyFrom(pub ed25519.PublicKey) PublicKey {
	var k PublicKey
	copy(k[:], pub)
	return k
}
