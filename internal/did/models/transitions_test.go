package models

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/suite"

	"didanchor/internal/authz"
	"didanchor/internal/eventlog"
	"didanchor/internal/merkle"
	"didanchor/pkg/domain"
	dErrors "didanchor/pkg/domain-errors"
)

type party struct {
	pub  domain.PublicKey
	priv ed25519.PrivateKey
}

func newParty(s *suite.Suite) party {
	pub, priv, err := ed25519.GenerateKey(nil)
	s.Require().NoError(err)
	return party{pub: domain.PublicKeyFrom(pub), priv: priv}
}

// RegistrySuite drives the pure transitions while mirroring every committed
// write into an off-chain map, the way a client would obtain witnesses.
type RegistrySuite struct {
	suite.Suite
	admin  party
	alice  party
	bob    party
	state  State
	mirror *merkle.Map
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.admin = newParty(&s.Suite)
	s.alice = newParty(&s.Suite)
	s.bob = newParty(&s.Suite)
	s.state = Genesis(s.admin.pub)
	s.mirror = merkle.NewMap()
}

func (s *RegistrySuite) witness(p party) merkle.Witness {
	return s.mirror.Witness(p.pub.KeyHash())
}

func (s *RegistrySuite) commit(next State, event eventlog.Event) {
	if event.Type.Directory() == eventlog.DirectoryDID {
		s.mirror.Set(event.SubjectKeyHash, event.LeafValue)
	}
	s.Require().Equal(s.mirror.Root(), next.Root, "mirror diverged from committed root")
	s.state = next
}

func (s *RegistrySuite) register(p party, doc domain.Hash) error {
	next, event, err := s.state.Register(RegisterRequest{
		Owner:        p.pub,
		DocumentHash: doc,
		Witness:      s.witness(p),
		Signature:    authz.Sign(p.priv, authz.RegisterPayload(doc)),
	})
	if err == nil {
		s.commit(next, event)
	}
	return err
}

func (s *RegistrySuite) update(p party, oldDoc, newDoc domain.Hash) error {
	next, event, err := s.state.Update(UpdateRequest{
		Owner:     p.pub,
		OldHash:   oldDoc,
		NewHash:   newDoc,
		Witness:   s.witness(p),
		Signature: authz.Sign(p.priv, authz.UpdatePayload(newDoc)),
	})
	if err == nil {
		s.commit(next, event)
	}
	return err
}

func (s *RegistrySuite) revoke(p party, oldDoc domain.Hash) error {
	next, event, err := s.state.Revoke(RevokeRequest{
		Owner:     p.pub,
		OldHash:   oldDoc,
		Witness:   s.witness(p),
		Signature: authz.Sign(p.priv, authz.RevokePayload(p.pub)),
	})
	if err == nil {
		s.commit(next, event)
	}
	return err
}

func (s *RegistrySuite) verify(p party, claimed domain.Hash) bool {
	ok, event, err := s.state.Verify(VerifyRequest{Owner: p.pub, ClaimedHash: claimed, Witness: s.witness(p)})
	s.Require().NoError(err)
	s.Equal(eventlog.TypeDIDVerified, event.Type)
	return ok
}

func doc(label string) domain.Hash {
	return domain.DocumentHash([]byte(label))
}

// TestAliceScenario walks register, verify, duplicate register, update and
// revoke against successive roots R0..R3.
func (s *RegistrySuite) TestAliceScenario() {
	r0 := s.state

	s.Require().NoError(s.register(s.alice, doc("doc1")))
	s.True(s.verify(s.alice, doc("doc1")))

	err := s.register(s.alice, doc("doc1"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))

	s.Require().NoError(s.update(s.alice, doc("doc1"), doc("doc2")))
	s.False(s.verify(s.alice, doc("doc1")))
	s.True(s.verify(s.alice, doc("doc2")))

	s.Require().NoError(s.revoke(s.alice, doc("doc2")))
	s.Equal(r0.TotalActive, s.state.TotalActive)
	s.Equal(r0.Root, s.state.Root)
}

func (s *RegistrySuite) TestNonMembershipSoundness() {
	s.Require().NoError(s.register(s.bob, doc("bob")))

	s.True(s.verify(s.alice, domain.Zero))
	s.Require().NoError(s.register(s.alice, doc("alice")))
	s.True(s.verify(s.alice, doc("alice")))
	s.Equal(uint64(2), s.state.TotalActive)
}

func (s *RegistrySuite) TestCountAccounting() {
	s.Require().NoError(s.register(s.alice, doc("a1")))
	s.Require().NoError(s.register(s.bob, doc("b1")))
	s.Equal(uint64(2), s.state.TotalActive)

	s.Require().NoError(s.update(s.alice, doc("a1"), doc("a2")))
	s.Equal(uint64(2), s.state.TotalActive, "update must not change the count")

	s.Require().NoError(s.revoke(s.bob, doc("b1")))
	s.Equal(uint64(1), s.state.TotalActive)
}

func (s *RegistrySuite) TestRevokeReregisterCycle() {
	before := s.state.TotalActive
	s.Require().NoError(s.register(s.alice, doc("v1")))
	s.Require().NoError(s.revoke(s.alice, doc("v1")))
	s.Require().NoError(s.register(s.alice, doc("v2")))
	s.Equal(before+1, s.state.TotalActive)
	s.Require().NoError(s.revoke(s.alice, doc("v2")))
	s.Equal(before, s.state.TotalActive)
}

func (s *RegistrySuite) TestRegisterRejections() {
	s.Run("zero document hash", func() {
		err := s.register(s.alice, domain.Zero)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("signature by another key", func() {
		_, _, err := s.state.Register(RegisterRequest{
			Owner:        s.alice.pub,
			DocumentHash: doc("d"),
			Witness:      s.witness(s.alice),
			Signature:    authz.Sign(s.bob.priv, authz.RegisterPayload(doc("d"))),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("witness for another key", func() {
		_, _, err := s.state.Register(RegisterRequest{
			Owner:        s.alice.pub,
			DocumentHash: doc("d"),
			Witness:      s.witness(s.bob),
			Signature:    authz.Sign(s.alice.priv, authz.RegisterPayload(doc("d"))),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeStateConflict))
	})

	s.Run("truncated witness", func() {
		_, _, err := s.state.Register(RegisterRequest{
			Owner:        s.alice.pub,
			DocumentHash: doc("d"),
			Witness:      merkle.Witness{},
			Signature:    authz.Sign(s.alice.priv, authz.RegisterPayload(doc("d"))),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidWitness))
	})

	s.Equal(merkle.EmptyRoot(), s.state.Root, "rejections must not move the root")
	s.Zero(s.state.TotalActive)
}

func (s *RegistrySuite) TestUpdateRejections() {
	s.Require().NoError(s.register(s.alice, doc("a1")))
	committed := s.state

	s.Run("empty slot", func() {
		err := s.update(s.bob, domain.Zero, doc("b1"))
		s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
	})

	s.Run("wrong old value", func() {
		err := s.update(s.alice, doc("not-a1"), doc("a2"))
		s.True(dErrors.HasCode(err, dErrors.CodeStateConflict))
	})

	s.Run("stale witness", func() {
		stale := s.witness(s.alice)
		s.Require().NoError(s.register(s.bob, doc("b1")))
		_, _, err := s.state.Update(UpdateRequest{
			Owner:     s.alice.pub,
			OldHash:   doc("a1"),
			NewHash:   doc("a2"),
			Witness:   stale,
			Signature: authz.Sign(s.alice.priv, authz.UpdatePayload(doc("a2"))),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeStateConflict))
	})

	s.Run("signature replayed from register", func() {
		_, _, err := s.state.Update(UpdateRequest{
			Owner:     s.alice.pub,
			OldHash:   doc("a1"),
			NewHash:   doc("a1"),
			Witness:   s.witness(s.alice),
			Signature: authz.Sign(s.alice.priv, authz.RegisterPayload(doc("a1"))),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Equal(committed.TotalActive+1, s.state.TotalActive)
}

func (s *RegistrySuite) TestRevokeAuthorization() {
	s.Require().NoError(s.register(s.alice, doc("a1")))

	s.Run("stranger without signature is forbidden", func() {
		_, _, err := s.state.Revoke(RevokeRequest{
			Owner:   s.alice.pub,
			OldHash: doc("a1"),
			Witness: s.witness(s.alice),
			Sender:  s.bob.pub,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("wrong signature is unauthorized", func() {
		_, _, err := s.state.Revoke(RevokeRequest{
			Owner:     s.alice.pub,
			OldHash:   doc("a1"),
			Witness:   s.witness(s.alice),
			Signature: authz.Sign(s.bob.priv, authz.RevokePayload(s.alice.pub)),
			Sender:    s.bob.pub,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("admin may revoke without the owner's signature", func() {
		next, event, err := s.state.Revoke(RevokeRequest{
			Owner:   s.alice.pub,
			OldHash: doc("a1"),
			Witness: s.witness(s.alice),
			Sender:  s.admin.pub,
		})
		s.Require().NoError(err)
		s.Equal("true", event.Details["by_admin"])
		s.commit(next, event)
		s.Zero(s.state.TotalActive)
	})

	s.Run("revoking an empty slot fails", func() {
		err := s.revoke(s.alice, domain.Zero)
		s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
	})
}

func (s *RegistrySuite) TestVerifyAuditFlags() {
	_, event, err := s.state.Verify(VerifyRequest{Owner: s.alice.pub, ClaimedHash: domain.Zero, Witness: s.witness(s.alice)})
	s.Require().NoError(err)
	s.Equal("false", event.Details["exists"])
	s.Equal("true", event.Details["matched"])
}
