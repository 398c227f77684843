package indexer

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/suite"

	"didanchor/internal/authz"
	didModels "didanchor/internal/did/models"
	didService "didanchor/internal/did/service"
	"didanchor/internal/eventlog"
	issuerService "didanchor/internal/issuer/service"
	"didanchor/internal/ledger"
	"didanchor/internal/ledger/store"
	"didanchor/internal/merkle"
	"didanchor/pkg/domain"
	"didanchor/pkg/requestcontext"
)

type IndexerSuite struct {
	suite.Suite
	ctx     context.Context
	admin   domain.PublicKey
	mem     *store.Memory
	exec    *ledger.Executor
	dids    *didService.Service
	issuers *issuerService.Service
	index   *Indexer
}

func TestIndexerSuite(t *testing.T) {
	suite.Run(t, new(IndexerSuite))
}

func (s *IndexerSuite) SetupTest() {
	pub, _, err := ed25519.GenerateKey(nil)
	s.Require().NoError(err)
	s.admin = domain.PublicKeyFrom(pub)
	s.ctx = requestcontext.WithSender(context.Background(), s.admin)

	s.mem = store.NewMemory()
	s.Require().NoError(s.mem.Init(s.ctx, ledger.Genesis(s.admin)))
	s.exec = ledger.NewExecutor(s.mem)
	s.dids = didService.New(s.exec)
	s.issuers = issuerService.New(s.exec)
	s.index = New(s.mem)
}

func (s *IndexerSuite) sync() {
	_, err := s.index.Sync(s.ctx)
	s.Require().NoError(err)
}

func (s *IndexerSuite) TestWitnessesTrackTheLedger() {
	owners := make([]ed25519.PrivateKey, 3)
	for i := range owners {
		_, priv, err := ed25519.GenerateKey(nil)
		s.Require().NoError(err)
		owners[i] = priv
	}

	for i, priv := range owners {
		owner := domain.PublicKeyFrom(priv.Public().(ed25519.PublicKey))
		s.sync()
		lookup := s.index.WitnessForDID(owner)
		s.True(lookup.Value.IsZero())

		doc := domain.DocumentHash([]byte{byte(i)})
		_, err := s.dids.Register(s.ctx, didModels.RegisterRequest{
			Owner:        owner,
			DocumentHash: doc,
			Witness:      lookup.Witness,
			Signature:    authz.Sign(priv, authz.RegisterPayload(doc)),
		})
		s.Require().NoError(err)
	}

	issuer := domain.PublicKeyFrom(owners[0].Public().(ed25519.PublicKey))
	s.sync()
	_, err := s.issuers.AddIssuer(s.ctx, issuer, s.index.WitnessForIssuer(issuer).Witness)
	s.Require().NoError(err)

	// audit-only events advance the cursor without touching either mirror
	owner := domain.PublicKeyFrom(owners[1].Public().(ed25519.PublicKey))
	s.sync()
	lookup := s.index.WitnessForDID(owner)
	res, err := s.dids.Verify(s.ctx, didModels.VerifyRequest{Owner: owner, ClaimedHash: lookup.Value, Witness: lookup.Witness})
	s.Require().NoError(err)
	s.True(res.Matched)

	s.sync()
	snap, err := s.exec.Snapshot(s.ctx)
	s.Require().NoError(err)
	didRoot, issuerRoot := s.index.Roots()
	s.Equal(snap.Registry.Root, didRoot)
	s.Equal(snap.Issuers.Root, issuerRoot)
	s.Equal(snap.EventCount, s.index.Cursor())
	s.Equal(domain.One, s.index.WitnessForIssuer(issuer).Value)
	s.Equal(snap.Version, s.index.WitnessForIssuer(issuer).LogicalTime)
}

type gappyReader struct{}

func (gappyReader) ReadSince(_ context.Context, after uint64, _ int) ([]eventlog.Event, error) {
	if after > 0 {
		return nil, nil
	}
	ev := eventlog.New(eventlog.TypeDIDRegistered, domain.Sum([]byte("k")), domain.Zero)
	ev.Sequence = 2
	return []eventlog.Event{ev}, nil
}

func (s *IndexerSuite) TestGapIsAnError() {
	idx := New(gappyReader{})
	_, err := idx.Sync(s.ctx)
	s.Error(err)
	s.Zero(idx.Cursor())
	dids, _ := idx.Roots()
	s.Equal(merkle.EmptyRoot(), dids)
}
