package service

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/suite"

	"didanchor/internal/ledger"
	"didanchor/internal/ledger/store"
	"didanchor/internal/merkle"
	"didanchor/pkg/domain"
	dErrors "didanchor/pkg/domain-errors"
	"didanchor/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	adminCtx context.Context
	admin    domain.PublicKey
	issuer   domain.PublicKey
	mirror   *merkle.Map
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) key() domain.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	s.Require().NoError(err)
	return domain.PublicKeyFrom(pub)
}

func (s *ServiceSuite) SetupTest() {
	s.admin = s.key()
	s.issuer = s.key()
	s.adminCtx = requestcontext.WithSender(context.Background(), s.admin)

	mem := store.NewMemory()
	s.Require().NoError(mem.Init(context.Background(), ledger.Genesis(s.admin)))
	s.service = New(ledger.NewExecutor(mem))
	s.mirror = merkle.NewMap()
}

func (s *ServiceSuite) witness() merkle.Witness {
	return s.mirror.Witness(s.issuer.KeyHash())
}

func (s *ServiceSuite) TestAddAndRemove() {
	trusted, err := s.service.IsTrusted(s.adminCtx, s.issuer, s.witness())
	s.Require().NoError(err)
	s.False(trusted)

	receipt, err := s.service.AddIssuer(s.adminCtx, s.issuer, s.witness())
	s.Require().NoError(err)
	s.mirror.Set(s.issuer.KeyHash(), domain.One)
	s.Equal(s.mirror.Root(), receipt.IssuerRoot)

	trusted, err = s.service.IsTrusted(s.adminCtx, s.issuer, s.witness())
	s.Require().NoError(err)
	s.True(trusted)

	_, err = s.service.AddIssuer(s.adminCtx, s.issuer, s.witness())
	s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed) || dErrors.HasCode(err, dErrors.CodeStateConflict))

	_, err = s.service.RemoveIssuer(s.adminCtx, s.issuer, s.witness())
	s.Require().NoError(err)
	s.mirror.Set(s.issuer.KeyHash(), domain.Zero)

	trusted, err = s.service.IsTrusted(s.adminCtx, s.issuer, s.witness())
	s.Require().NoError(err)
	s.False(trusted)

	state, err := s.service.State(s.adminCtx)
	s.Require().NoError(err)
	s.Equal(merkle.EmptyRoot(), state.Root)
}

func (s *ServiceSuite) TestNonAdminSender() {
	s.Run("no sender", func() {
		_, err := s.service.AddIssuer(context.Background(), s.issuer, s.witness())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
	s.Run("other sender", func() {
		ctx := requestcontext.WithSender(context.Background(), s.key())
		_, err := s.service.AddIssuer(ctx, s.issuer, s.witness())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
