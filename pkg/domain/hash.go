// Package domain holds the value types shared by every component: digests
// and public keys.
package domain

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"

	dErrors "didanchor/pkg/domain-errors"
)

// HashSize is the digest width in bytes. The sparse Merkle map depth is
// derived from it.
const HashSize = blake2b.Size256

// Hash is a BLAKE2b-256 digest. The zero value doubles as the empty-slot
// sentinel of both directories.
type Hash [HashSize]byte

var (
	// Zero marks an empty slot (never written or revoked).
	Zero Hash
	// One is the "trusted" value of the issuer directory.
	One = Hash{HashSize - 1: 1}
)

// IsZero reports whether h is the empty sentinel.
func (h Hash) IsZero() bool {
	return h == Zero
}

// Bit returns bit i of h, counting from the most significant bit.
func (h Hash) Bit(i int) uint8 {
	return (h[i/8] >> (7 - uint(i%8))) & 1
}

// SetBit returns a copy of h with bit i (MSB-first) set to b.
func (h Hash) SetBit(i int, b uint8) Hash {
	mask := byte(1) << (7 - uint(i%8))
	if b == 0 {
		h[i/8] &^= mask
	} else {
		h[i/8] |= mask
	}
	return h
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalText encodes h as lowercase hex.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText accepts hex with or without a 0x prefix.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash decodes a 32-byte hex digest.
func ParseHash(s string) (Hash, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Zero, dErrors.New(dErrors.CodeInvalidInput, "hash must be hex encoded")
	}
	if len(raw) != HashSize {
		return Zero, dErrors.New(dErrors.CodeInvalidInput, "hash must be 32 bytes")
	}
	var h Hash
	copy(h[:], raw)
	return h, nil
}

// Sum hashes the length-prefixed concatenation of parts. Length prefixes keep
// distinct part lists from colliding on the same byte string.
func Sum(parts ...[]byte) Hash {
	d, _ := blake2b.New256(nil)
	var prefix [4]byte
	for _, p := range parts {
		binary.BigEndian.PutUint32(prefix[:], uint32(len(p)))
		d.Write(prefix[:])
		d.Write(p)
	}
	var out Hash
	copy(out[:], d.Sum(nil))
	return out
}

// SumHashes hashes a list of digests as individual parts.
func SumHashes(fields ...Hash) Hash {
	parts := make([][]byte, len(fields))
	for i := range fields {
		parts[i] = fields[i][:]
	}
	return Sum(parts...)
}

// DocumentHash digests an off-chain DID document.
//
// The registry treats 0 as "empty"; BLAKE2b is assumed never to output the
// all-zero digest for a real document. This is an assumption, not a proof,
// and must be revisited if the hash function changes.
func DocumentHash(document []byte) Hash {
	return Sum([]byte("didanchor/document"), document)
}

// Uint64 returns v as an 8-byte big-endian part for Sum.
func Uint64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

// Bool returns b as a single-byte part for Sum.
func Bool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}
