package models

import (
	"didanchor/pkg/domain"
)

// Submission is the closed set of credential submissions: *ZKProof,
// *AgeCommitment and *KYCCommitment. Verification switches over the concrete
// variants exhaustively so each policy stays auditable on its own.
type Submission interface {
	kind() Kind
}

// Kind names a submission variant on the wire and in events.
type Kind string

const (
	KindZKAge         Kind = "zk_age"
	KindAgeCommitment Kind = "age_commitment"
	KindKYCCommitment Kind = "kyc_commitment"
)

// PublicInput is the public part of an age proof. The prover commits to it;
// the verifier only sees these fields.
type PublicInput struct {
	Subject    domain.PublicKey `json:"subject"`
	MinimumAge uint32           `json:"minimum_age"`
	Issuer     domain.PublicKey `json:"issuer"`
	// Timestamp is the unix time (seconds) the proof was produced at.
	Timestamp uint64 `json:"timestamp"`
}

// Digest is the canonical encoding proof verifiers bind to.
func (p PublicInput) Digest() domain.Hash {
	return domain.Sum(
		[]byte("didanchor/zk-age/v1"),
		p.Subject[:],
		domain.Uint64(uint64(p.MinimumAge)),
		p.Issuer[:],
		domain.Uint64(p.Timestamp),
	)
}

// PublicOutput is what the circuit asserts about the private inputs.
type PublicOutput struct {
	Verified bool `json:"verified"`
}

// ZKProof is a zero-knowledge age proof produced off-chain.
type ZKProof struct {
	PublicInput  PublicInput  `json:"public_input"`
	PublicOutput PublicOutput `json:"public_output"`
	Proof        []byte       `json:"proof"`
}

func (*ZKProof) kind() Kind { return KindZKAge }

// CommitmentFields are shared by both hash-commitment variants.
//
// A commitment is a hash-preimage equality check, not a zero-knowledge proof.
// It is accepted for backward compatibility with credentials issued before
// the proof path existed; its soundness rests entirely on the caller being
// unable to forge SecretHash relationships.
type CommitmentFields struct {
	SecretHash domain.Hash      `json:"secret_hash"`
	Subject    domain.PublicKey `json:"subject"`
	Issuer     domain.PublicKey `json:"issuer"`
	Flag       bool             `json:"flag"`
	Commitment domain.Hash      `json:"commitment"`
}

// AgeCommitment attests that Subject is at least MinimumAge.
type AgeCommitment struct {
	CommitmentFields
	MinimumAge uint32 `json:"minimum_age"`
	IssuedAt   uint64 `json:"issued_at"`
}

func (*AgeCommitment) kind() Kind { return KindAgeCommitment }

// Expected recomputes H(secretHash, minimumAge, issuedAt, subject, issuer, flag).
func (c *AgeCommitment) Expected() domain.Hash {
	return commit(c.CommitmentFields, domain.Uint64(uint64(c.MinimumAge)), domain.Uint64(c.IssuedAt))
}

// KYCCommitment attests that Subject passed KYC at Level in Jurisdiction
// (ISO 3166-1 numeric).
type KYCCommitment struct {
	CommitmentFields
	Level        uint32 `json:"level"`
	Jurisdiction uint32 `json:"jurisdiction"`
	IssuedAt     uint64 `json:"issued_at"`
}

func (*KYCCommitment) kind() Kind { return KindKYCCommitment }

// Expected recomputes H(secretHash, level, jurisdiction, issuedAt, subject, issuer, flag).
func (c *KYCCommitment) Expected() domain.Hash {
	return commit(c.CommitmentFields,
		domain.Uint64(uint64(c.Level)),
		domain.Uint64(uint64(c.Jurisdiction)),
		domain.Uint64(c.IssuedAt))
}

func commit(f CommitmentFields, params ...[]byte) domain.Hash {
	parts := make([][]byte, 0, len(params)+4)
	parts = append(parts, f.SecretHash[:])
	parts = append(parts, params...)
	parts = append(parts, f.Subject[:], f.Issuer[:], domain.Bool(f.Flag))
	return domain.Sum(parts...)
}

// KindOf returns the wire name of a submission.
func KindOf(s Submission) Kind {
	if s == nil {
		return ""
	}
	return s.kind()
}
