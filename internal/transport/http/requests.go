package httptransport

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	credentialModels "didanchor/internal/credential/models"
	didModels "didanchor/internal/did/models"
	"didanchor/internal/merkle"
	"didanchor/pkg/domain"
	dErrors "didanchor/pkg/domain-errors"
)

// Hashes and keys decode through their TextUnmarshalers (hex and base58), so
// a malformed value fails in Decode with a bad_request. Validate covers the
// remaining shape checks.

// RegisterRequest is the body of POST /v1/dids/register.
type RegisterRequest struct {
	Owner        domain.PublicKey `json:"owner"`
	DocumentHash domain.Hash      `json:"document_hash"`
	Witness      merkle.Witness   `json:"witness"`
	Signature    string           `json:"signature"`

	signature []byte
}

func (r *RegisterRequest) Validate() error {
	if r.Owner.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "owner is required")
	}
	sig, err := decodeSignature(r.Signature, true)
	if err != nil {
		return err
	}
	r.signature = sig
	return r.Witness.Validate()
}

func (r *RegisterRequest) ToModel() didModels.RegisterRequest {
	return didModels.RegisterRequest{
		Owner:        r.Owner,
		DocumentHash: r.DocumentHash,
		Witness:      r.Witness,
		Signature:    r.signature,
	}
}

// UpdateRequest is the body of POST /v1/dids/update.
type UpdateRequest struct {
	Owner     domain.PublicKey `json:"owner"`
	OldHash   domain.Hash      `json:"old_hash"`
	NewHash   domain.Hash      `json:"new_hash"`
	Witness   merkle.Witness   `json:"witness"`
	Signature string           `json:"signature"`

	signature []byte
}

func (r *UpdateRequest) Validate() error {
	if r.Owner.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "owner is required")
	}
	sig, err := decodeSignature(r.Signature, true)
	if err != nil {
		return err
	}
	r.signature = sig
	return r.Witness.Validate()
}

func (r *UpdateRequest) ToModel() didModels.UpdateRequest {
	return didModels.UpdateRequest{
		Owner:     r.Owner,
		OldHash:   r.OldHash,
		NewHash:   r.NewHash,
		Witness:   r.Witness,
		Signature: r.signature,
	}
}

// RevokeRequest is the body of POST /v1/dids/revoke. Signature may be
// omitted when the bearer token identifies the admin.
type RevokeRequest struct {
	Owner     domain.PublicKey `json:"owner"`
	OldHash   domain.Hash      `json:"old_hash"`
	Witness   merkle.Witness   `json:"witness"`
	Signature string           `json:"signature,omitempty"`

	signature []byte
}

func (r *RevokeRequest) Validate() error {
	if r.Owner.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "owner is required")
	}
	sig, err := decodeSignature(r.Signature, false)
	if err != nil {
		return err
	}
	r.signature = sig
	return r.Witness.Validate()
}

func (r *RevokeRequest) ToModel() didModels.RevokeRequest {
	return didModels.RevokeRequest{
		Owner:     r.Owner,
		OldHash:   r.OldHash,
		Witness:   r.Witness,
		Signature: r.signature,
	}
}

// VerifyDIDRequest is the body of POST /v1/dids/verify.
type VerifyDIDRequest struct {
	Owner       domain.PublicKey `json:"owner"`
	ClaimedHash domain.Hash      `json:"claimed_hash"`
	Witness     merkle.Witness   `json:"witness"`
}

func (r *VerifyDIDRequest) Validate() error {
	if r.Owner.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "owner is required")
	}
	return r.Witness.Validate()
}

func (r *VerifyDIDRequest) ToModel() didModels.VerifyRequest {
	return didModels.VerifyRequest{Owner: r.Owner, ClaimedHash: r.ClaimedHash, Witness: r.Witness}
}

// IssuerRequest is the body of the issuer routes.
type IssuerRequest struct {
	Issuer  domain.PublicKey `json:"issuer"`
	Witness merkle.Witness   `json:"witness"`
}

func (r *IssuerRequest) Validate() error {
	if r.Issuer.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "issuer is required")
	}
	return r.Witness.Validate()
}

// VerifyCredentialRequest is the body of POST /v1/credentials/verify. Kind
// selects how Submission is decoded.
type VerifyCredentialRequest struct {
	Kind          credentialModels.Kind `json:"kind"`
	Submission    json.RawMessage       `json:"submission"`
	IssuerWitness merkle.Witness        `json:"issuer_witness"`

	submission credentialModels.Submission
}

// zkProofBody carries the proof as hex like every other binary field.
type zkProofBody struct {
	PublicInput  credentialModels.PublicInput  `json:"public_input"`
	PublicOutput credentialModels.PublicOutput `json:"public_output"`
	Proof        string                        `json:"proof"`
}

func (r *VerifyCredentialRequest) Validate() error {
	if len(r.Submission) == 0 {
		return dErrors.New(dErrors.CodeValidation, "submission is required")
	}
	sub, err := decodeSubmission(r.Kind, r.Submission)
	if err != nil {
		return err
	}
	r.submission = sub
	return r.IssuerWitness.Validate()
}

// ParsedSubmission returns the submission decoded by Validate.
func (r *VerifyCredentialRequest) ParsedSubmission() credentialModels.Submission {
	return r.submission
}

func decodeSubmission(kind credentialModels.Kind, raw json.RawMessage) (credentialModels.Submission, error) {
	switch kind {
	case credentialModels.KindZKAge:
		var body zkProofBody
		if err := strictUnmarshal(raw, &body); err != nil {
			return nil, err
		}
		proof, err := hex.DecodeString(strings.TrimPrefix(body.Proof, "0x"))
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "proof must be hex encoded")
		}
		return &credentialModels.ZKProof{
			PublicInput:  body.PublicInput,
			PublicOutput: body.PublicOutput,
			Proof:        proof,
		}, nil
	case credentialModels.KindAgeCommitment:
		var c credentialModels.AgeCommitment
		if err := strictUnmarshal(raw, &c); err != nil {
			return nil, err
		}
		return &c, nil
	case credentialModels.KindKYCCommitment:
		var c credentialModels.KYCCommitment
		if err := strictUnmarshal(raw, &c); err != nil {
			return nil, err
		}
		return &c, nil
	case "":
		return nil, dErrors.New(dErrors.CodeValidation, "kind is required")
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "unknown submission kind "+string(kind))
	}
}

func strictUnmarshal(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid submission")
	}
	return nil
}

func decodeSignature(s string, required bool) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		if required {
			return nil, dErrors.New(dErrors.CodeValidation, "signature is required")
		}
		return nil, nil
	}
	sig, err := hex.DecodeString(s)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "signature must be hex encoded")
	}
	return sig, nil
}
