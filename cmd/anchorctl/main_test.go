package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"didanchor/internal/authz"
	credentialModels "didanchor/internal/credential/models"
	credentialService "didanchor/internal/credential/service"
	jwttoken "didanchor/internal/jwt_token"
	"didanchor/pkg/domain"
)

func runApp(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cliApp.Writer = &out
	require.NoError(t, cliApp.Run(append([]string{"anchorctl"}, args...)))
	return out.String()
}

func newKeyFile(t *testing.T) (string, domain.PublicKey) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key.hex")
	var pair keyPair
	require.NoError(t, json.Unmarshal([]byte(runApp(t, "keygen", "--out", path)), &pair))
	assert.Empty(t, pair.Seed)
	key, err := domain.ParsePublicKey(pair.Public)
	require.NoError(t, err)
	assert.Equal(t, key.DID(), pair.DID)
	return path, key
}

func TestSignRegister(t *testing.T) {
	keyPath, owner := newKeyFile(t)
	docPath := filepath.Join(t.TempDir(), "did.json")
	require.NoError(t, os.WriteFile(docPath, []byte(`{"id":"did:anchor:x"}`), 0o600))

	hash := strings.TrimSpace(runApp(t, "hash", docPath))
	doc, err := domain.ParseHash(hash)
	require.NoError(t, err)

	sig, err := hex.DecodeString(strings.TrimSpace(runApp(t, "sign", "register", "--key", keyPath, hash)))
	require.NoError(t, err)
	assert.True(t, authz.VerifySignature(owner, authz.RegisterPayload(doc), sig))
	assert.False(t, authz.VerifySignature(owner, authz.UpdatePayload(doc), sig))

	sig, err = hex.DecodeString(strings.TrimSpace(runApp(t, "sign", "revoke", "--key", keyPath)))
	require.NoError(t, err)
	assert.True(t, authz.VerifySignature(owner, authz.RevokePayload(owner), sig))
}

func TestDID(t *testing.T) {
	keyPath, key := newKeyFile(t)
	assert.Equal(t, key.DID(), strings.TrimSpace(runApp(t, "did", "--key", keyPath)))
	assert.Equal(t, key.DID(), strings.TrimSpace(runApp(t, "did", key.String())))
}

func TestToken(t *testing.T) {
	_, sender := newKeyFile(t)
	tok := strings.TrimSpace(runApp(t, "token", "--secret", "s3cret", "--sender", sender.String()))

	got, err := jwttoken.NewJWTService("s3cret", jwtIssuer, jwtAudience).ExtractSender(tok)
	require.NoError(t, err)
	assert.Equal(t, sender, got)
}

func TestCommitmentAndProof(t *testing.T) {
	keyPath, prover := newKeyFile(t)
	_, subject := newKeyFile(t)
	_, issuer := newKeyFile(t)
	secret := domain.Sum([]byte("secret")).String()

	var age struct {
		Kind       credentialModels.Kind          `json:"kind"`
		Submission credentialModels.AgeCommitment `json:"submission"`
	}
	out := runApp(t, "commitment", "age",
		"--secret-hash", secret, "--subject", subject.String(), "--issuer", issuer.String(),
		"--min-age", "21", "--issued-at", "1700000000")
	require.NoError(t, json.Unmarshal([]byte(out), &age))
	assert.Equal(t, credentialModels.KindAgeCommitment, age.Kind)
	assert.True(t, age.Submission.Flag)
	assert.Equal(t, uint32(21), age.Submission.MinimumAge)
	assert.Equal(t, age.Submission.Expected(), age.Submission.Commitment)

	var proof struct {
		Kind       credentialModels.Kind `json:"kind"`
		Submission proofBody             `json:"submission"`
	}
	out = runApp(t, "proof", "--key", keyPath,
		"--subject", subject.String(), "--issuer", issuer.String(), "--timestamp", "1700000000")
	require.NoError(t, json.Unmarshal([]byte(out), &proof))
	assert.Equal(t, credentialModels.KindZKAge, proof.Kind)
	raw, err := hex.DecodeString(proof.Submission.Proof)
	require.NoError(t, err)

	ok, err := credentialService.NewSignedProofVerifier(prover).Verify(t.Context(), raw, proof.Submission.PublicInput)
	require.NoError(t, err)
	assert.True(t, ok)
}
