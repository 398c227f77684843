package models

import (
	"context"
	"math"
	"strconv"
	"time"

	"didanchor/internal/eventlog"
	"didanchor/internal/merkle"
	"didanchor/pkg/domain"
	dErrors "didanchor/pkg/domain-errors"
)

// State counts accepted verifications. It only ever grows.
type State struct {
	Verifications uint64 `json:"verifications"`
}

// TrustChecker answers "is this issuer trusted under this witness".
// issuer/models.State satisfies it.
type TrustChecker interface {
	IsTrusted(issuer domain.PublicKey, w merkle.Witness) (bool, error)
}

// ProofVerifier checks a zero-knowledge proof against its public input.
// It is a black box to this package.
type ProofVerifier interface {
	Verify(ctx context.Context, proof []byte, input PublicInput) (bool, error)
}

// Request is one verification attempt.
type Request struct {
	Submission    Submission
	IssuerWitness merkle.Witness
	Sender        domain.PublicKey
	Now           time.Time
}

// Outcome summarizes an accepted submission.
type Outcome struct {
	Kind      Kind             `json:"kind"`
	Subject   domain.PublicKey `json:"subject"`
	Issuer    domain.PublicKey `json:"issuer"`
	Threshold uint32           `json:"threshold"`
	Timestamp uint64           `json:"timestamp"`
}

// Verify checks a submission and, on success, increments Verifications.
// The proof verifier is the only external call; everything else is a pure
// function of the inputs.
func (s State) Verify(ctx context.Context, req Request, policy Policy, trust TrustChecker, zk ProofVerifier) (State, Outcome, eventlog.Event, error) {
	var (
		out Outcome
		err error
	)
	switch sub := req.Submission.(type) {
	case *ZKProof:
		out, err = verifyZK(ctx, sub, req, policy, trust, zk)
	case *AgeCommitment:
		out, err = verifyAgeCommitment(sub, req, policy, trust)
	case *KYCCommitment:
		out, err = verifyKYCCommitment(sub, req, policy, trust)
	case nil:
		err = dErrors.New(dErrors.CodeValidation, "submission is required")
	default:
		err = dErrors.New(dErrors.CodeInternal, "unhandled submission kind")
	}
	if err != nil {
		return s, Outcome{}, eventlog.Event{}, err
	}

	next := s
	next.Verifications++
	return next, out, outcomeEvent(out), nil
}

func verifyZK(ctx context.Context, p *ZKProof, req Request, policy Policy, trust TrustChecker, zk ProofVerifier) (Outcome, error) {
	in := p.PublicInput
	if in.Subject.IsZero() || in.Issuer.IsZero() {
		return Outcome{}, dErrors.New(dErrors.CodeValidation, "subject and issuer keys are required")
	}
	if len(p.Proof) == 0 {
		return Outcome{}, dErrors.New(dErrors.CodeInvalidProof, "proof is empty")
	}
	if zk == nil {
		return Outcome{}, dErrors.New(dErrors.CodeInternal, "no proof verifier configured")
	}
	ok, err := zk.Verify(ctx, p.Proof, in)
	if err != nil {
		return Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "proof verifier failed")
	}
	if !ok {
		return Outcome{}, dErrors.New(dErrors.CodeInvalidProof, "invalid proof")
	}
	if !p.PublicOutput.Verified {
		return Outcome{}, dErrors.New(dErrors.CodePolicyViolation, "proof does not assert the age claim")
	}
	if in.MinimumAge < policy.MinimumAge {
		return Outcome{}, dErrors.New(dErrors.CodePolicyViolation, "proved age "+strconv.FormatUint(uint64(in.MinimumAge), 10)+" is below the required "+strconv.FormatUint(uint64(policy.MinimumAge), 10))
	}
	if policy.RejectSelfAttestationZK && in.Subject == req.Sender {
		return Outcome{}, dErrors.New(dErrors.CodePolicyViolation, "subject may not attest for themselves")
	}
	if err := checkFreshness(in.Timestamp, req.Now, policy); err != nil {
		return Outcome{}, err
	}
	if err := requireTrusted(trust, in.Issuer, req.IssuerWitness); err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Kind:      KindZKAge,
		Subject:   in.Subject,
		Issuer:    in.Issuer,
		Threshold: in.MinimumAge,
		Timestamp: in.Timestamp,
	}, nil
}

// checkFreshness enforces the proof window when one is configured. A proof
// dated more than MaxClockSkew after now is rejected like a stale one.
func checkFreshness(timestamp uint64, now time.Time, policy Policy) error {
	if policy.MaxProofAge <= 0 || now.IsZero() {
		return nil
	}
	if timestamp > math.MaxInt64 {
		return dErrors.New(dErrors.CodePolicyViolation, "proof timestamp is out of range")
	}
	issued := time.Unix(int64(timestamp), 0)
	if issued.After(now.Add(policy.MaxClockSkew)) {
		return dErrors.New(dErrors.CodePolicyViolation, "proof is dated in the future")
	}
	if now.Sub(issued) > policy.MaxProofAge {
		return dErrors.New(dErrors.CodePolicyViolation, "proof is older than the accepted window")
	}
	return nil
}

func verifyAgeCommitment(c *AgeCommitment, req Request, policy Policy, trust TrustChecker) (Outcome, error) {
	if err := checkCommitment(c.CommitmentFields, c.Expected(), req, policy, trust); err != nil {
		return Outcome{}, err
	}
	if c.MinimumAge < policy.MinimumAge {
		return Outcome{}, dErrors.New(dErrors.CodePolicyViolation, "committed age is below the required threshold")
	}
	return Outcome{
		Kind:      KindAgeCommitment,
		Subject:   c.Subject,
		Issuer:    c.Issuer,
		Threshold: c.MinimumAge,
		Timestamp: c.IssuedAt,
	}, nil
}

func verifyKYCCommitment(c *KYCCommitment, req Request, policy Policy, trust TrustChecker) (Outcome, error) {
	if err := checkCommitment(c.CommitmentFields, c.Expected(), req, policy, trust); err != nil {
		return Outcome{}, err
	}
	if c.Level < policy.MinimumKYCLevel {
		return Outcome{}, dErrors.New(dErrors.CodePolicyViolation, "KYC level is below the required minimum")
	}
	return Outcome{
		Kind:      KindKYCCommitment,
		Subject:   c.Subject,
		Issuer:    c.Issuer,
		Threshold: c.Level,
		Timestamp: c.IssuedAt,
	}, nil
}

// checkCommitment runs the checks shared by every commitment kind, in the
// order structural, flag, self-attestation, trust.
func checkCommitment(f CommitmentFields, expected domain.Hash, req Request, policy Policy, trust TrustChecker) error {
	if f.Subject.IsZero() || f.Issuer.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "subject and issuer keys are required")
	}
	if f.Commitment != expected {
		return dErrors.New(dErrors.CodeInvalidProof, "invalid proof")
	}
	if !f.Flag {
		return dErrors.New(dErrors.CodePolicyViolation, "credential flag is not set")
	}
	if policy.RejectSelfAttestationCommitment && f.Subject == req.Sender {
		return dErrors.New(dErrors.CodePolicyViolation, "subject may not attest for themselves")
	}
	if policy.RequireTrustedIssuerForCommitment {
		return requireTrusted(trust, f.Issuer, req.IssuerWitness)
	}
	return nil
}

func requireTrusted(trust TrustChecker, issuer domain.PublicKey, w merkle.Witness) error {
	if trust == nil {
		return dErrors.New(dErrors.CodeInternal, "no issuer trust store configured")
	}
	ok, err := trust.IsTrusted(issuer, w)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodePolicyViolation, "issuer is not trusted")
	}
	return nil
}

func outcomeEvent(out Outcome) eventlog.Event {
	payload := domain.Sum(
		[]byte(out.Kind),
		out.Issuer[:],
		domain.Uint64(uint64(out.Threshold)),
		domain.Uint64(out.Timestamp),
	)
	return eventlog.New(eventlog.TypeCredentialVerified, out.Subject.KeyHash(), payload).
		WithDetail("kind", string(out.Kind)).
		WithDetail("subject", out.Subject.String()).
		WithDetail("issuer", out.Issuer.String()).
		WithDetail("threshold", strconv.FormatUint(uint64(out.Threshold), 10)).
		WithDetail("timestamp", strconv.FormatUint(out.Timestamp, 10))
}
