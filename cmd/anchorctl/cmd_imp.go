package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	cli "github.com/urfave/cli"

	"didanchor/internal/authz"
	credentialModels "didanchor/internal/credential/models"
	credentialService "didanchor/internal/credential/service"
	jwttoken "didanchor/internal/jwt_token"
	"didanchor/pkg/domain"
)

const (
	defaultTokenTTL = time.Hour
	jwtIssuer       = "didanchor"
	jwtAudience     = "didanchor-api"
)

type keyPair struct {
	Public string `json:"public"`
	DID    string `json:"did"`
	Seed   string `json:"seed,omitempty"`
}

func keygen(c *cli.Context) error {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return err
	}
	key := domain.PublicKeyFrom(pub)
	out := keyPair{Public: key.String(), DID: key.DID()}
	seed := hex.EncodeToString(priv.Seed())
	if path := c.String("out"); path != "" {
		if err := os.WriteFile(path, []byte(seed+"\n"), 0o600); err != nil {
			return err
		}
	} else {
		out.Seed = seed
	}
	return printJSON(c, out)
}

func printDID(c *cli.Context) error {
	var key domain.PublicKey
	if path := c.String("key"); path != "" {
		priv, err := readKey(path)
		if err != nil {
			return err
		}
		key = domain.PublicKeyFrom(priv.Public().(ed25519.PublicKey))
	} else {
		if !c.Args().Present() {
			return errors.New("missing public key")
		}
		parsed, err := domain.ParsePublicKey(c.Args().First())
		if err != nil {
			return err
		}
		key = parsed
	}
	_, err := fmt.Fprintln(c.App.Writer, key.DID())
	return err
}

func hashDocument(c *cli.Context) error {
	if !c.Args().Present() {
		return errors.New("missing document file")
	}
	doc, err := os.ReadFile(c.Args().First())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, domain.DocumentHash(doc).String())
	return err
}

func signRegister(c *cli.Context) error {
	h, err := hashArg(c)
	if err != nil {
		return err
	}
	return sign(c, authz.RegisterPayload(h))
}

func signUpdate(c *cli.Context) error {
	h, err := hashArg(c)
	if err != nil {
		return err
	}
	return sign(c, authz.UpdatePayload(h))
}

func signRevoke(c *cli.Context) error {
	priv, err := readKey(c.String("key"))
	if err != nil {
		return err
	}
	owner := domain.PublicKeyFrom(priv.Public().(ed25519.PublicKey))
	return sign(c, authz.RevokePayload(owner))
}

func sign(c *cli.Context, payload authz.Payload) error {
	priv, err := readKey(c.String("key"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, hex.EncodeToString(authz.Sign(priv, payload)))
	return err
}

func issueToken(c *cli.Context) error {
	sender, err := domain.ParsePublicKey(c.String("sender"))
	if err != nil {
		return err
	}
	tokens := jwttoken.NewJWTService(c.String("secret"), jwtIssuer, jwtAudience)
	tok, err := tokens.GenerateSenderToken(sender, c.Duration("ttl"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, tok)
	return err
}

func commitmentFields(c *cli.Context) (credentialModels.CommitmentFields, error) {
	secret, err := domain.ParseHash(c.String("secret-hash"))
	if err != nil {
		return credentialModels.CommitmentFields{}, fmt.Errorf("secret-hash: %w", err)
	}
	subject, err := domain.ParsePublicKey(c.String("subject"))
	if err != nil {
		return credentialModels.CommitmentFields{}, fmt.Errorf("subject: %w", err)
	}
	issuer, err := domain.ParsePublicKey(c.String("issuer"))
	if err != nil {
		return credentialModels.CommitmentFields{}, fmt.Errorf("issuer: %w", err)
	}
	return credentialModels.CommitmentFields{
		SecretHash: secret,
		Subject:    subject,
		Issuer:     issuer,
		Flag:       c.BoolT("flag"),
	}, nil
}

func ageCommitment(c *cli.Context) error {
	fields, err := commitmentFields(c)
	if err != nil {
		return err
	}
	sub := &credentialModels.AgeCommitment{
		CommitmentFields: fields,
		MinimumAge:       uint32(c.Uint("min-age")),
		IssuedAt:         c.Uint64("issued-at"),
	}
	sub.Commitment = sub.Expected()
	return printSubmission(c, credentialModels.KindAgeCommitment, sub)
}

func kycCommitment(c *cli.Context) error {
	fields, err := commitmentFields(c)
	if err != nil {
		return err
	}
	sub := &credentialModels.KYCCommitment{
		CommitmentFields: fields,
		Level:            uint32(c.Uint("level")),
		Jurisdiction:     uint32(c.Uint("jurisdiction")),
		IssuedAt:         c.Uint64("issued-at"),
	}
	sub.Commitment = sub.Expected()
	return printSubmission(c, credentialModels.KindKYCCommitment, sub)
}

// proofBody matches the wire shape of a zk_age submission.
type proofBody struct {
	PublicInput  credentialModels.PublicInput  `json:"public_input"`
	PublicOutput credentialModels.PublicOutput `json:"public_output"`
	Proof        string                        `json:"proof"`
}

func ageProof(c *cli.Context) error {
	priv, err := readKey(c.String("key"))
	if err != nil {
		return err
	}
	subject, err := domain.ParsePublicKey(c.String("subject"))
	if err != nil {
		return fmt.Errorf("subject: %w", err)
	}
	issuer, err := domain.ParsePublicKey(c.String("issuer"))
	if err != nil {
		return fmt.Errorf("issuer: %w", err)
	}
	ts := c.Uint64("timestamp")
	if ts == 0 {
		ts = uint64(time.Now().Unix())
	}
	input := credentialModels.PublicInput{
		Subject:    subject,
		MinimumAge: uint32(c.Uint("min-age")),
		Issuer:     issuer,
		Timestamp:  ts,
	}
	return printSubmission(c, credentialModels.KindZKAge, proofBody{
		PublicInput:  input,
		PublicOutput: credentialModels.PublicOutput{Verified: true},
		Proof:        hex.EncodeToString(credentialService.SignProof(priv, input)),
	})
}

func printSubmission(c *cli.Context, kind credentialModels.Kind, sub any) error {
	return printJSON(c, map[string]any{"kind": kind, "submission": sub})
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func hashArg(c *cli.Context) (domain.Hash, error) {
	if !c.Args().Present() {
		return domain.Zero, errors.New("missing document hash")
	}
	return domain.ParseHash(c.Args().First())
}

func readKey(path string) (ed25519.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("key file %s: %w", path, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("key file %s: seed must be %d bytes", path, ed25519.SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}
