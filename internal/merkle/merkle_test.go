package merkle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"didanchor/pkg/domain"
	dErrors "didanchor/pkg/domain-errors"
)

type MerkleSuite struct {
	suite.Suite
	m *Map
}

func (s *MerkleSuite) SetupTest() {
	s.m = NewMap()
}

func TestMerkleSuite(t *testing.T) {
	suite.Run(t, new(MerkleSuite))
}

func key(label string) domain.Hash {
	return domain.Sum([]byte(label))
}

func (s *MerkleSuite) TestEmptyMap() {
	s.Equal(EmptyRoot(), s.m.Root())

	w := s.m.Witness(key("alice"))
	root, gotKey, err := ComputeRootAndKey(w, domain.Zero)
	s.Require().NoError(err)
	s.Equal(EmptyRoot(), root)
	s.Equal(key("alice"), gotKey)
}

func (s *MerkleSuite) TestWitnessRecomputesRoot() {
	s.m.Set(key("alice"), key("doc1"))
	s.m.Set(key("bob"), key("doc2"))

	for _, k := range []string{"alice", "bob", "carol"} {
		w := s.m.Witness(key(k))
		root, gotKey, err := ComputeRootAndKey(w, s.m.Get(key(k)))
		s.Require().NoError(err)
		s.Equal(s.m.Root(), root, k)
		s.Equal(key(k), gotKey, k)
	}
}

func (s *MerkleSuite) TestWitnessPredictsNextRoot() {
	s.m.Set(key("bob"), key("doc2"))

	w := s.m.Witness(key("alice"))
	predicted, _, err := ComputeRootAndKey(w, key("doc1"))
	s.Require().NoError(err)

	actual := s.m.Set(key("alice"), key("doc1"))
	s.Equal(actual, predicted)
	s.Equal(actual, s.m.Root())
}

func (s *MerkleSuite) TestClearingRestoresRoot() {
	before := s.m.Set(key("bob"), key("doc2"))
	s.m.Set(key("alice"), key("doc1"))
	after := s.m.Set(key("alice"), domain.Zero)

	s.Equal(before, after)
	s.Equal(1, s.m.Len())
}

func (s *MerkleSuite) TestStaleWitnessRejected() {
	w := s.m.Witness(key("alice"))
	s.m.Set(key("bob"), key("doc2"))

	ok, err := Matches(w, domain.Zero, key("alice"), s.m.Root())
	s.Require().NoError(err)
	s.False(ok)
}

func (s *MerkleSuite) TestWrongValueRejected() {
	s.m.Set(key("alice"), key("doc1"))
	w := s.m.Witness(key("alice"))

	ok, err := Matches(w, key("doc2"), key("alice"), s.m.Root())
	s.Require().NoError(err)
	s.False(ok)

	ok, err = Matches(w, key("doc1"), key("alice"), s.m.Root())
	s.Require().NoError(err)
	s.True(ok)
}

func TestComputeRootAndKey_MalformedWitness(t *testing.T) {
	_, _, err := ComputeRootAndKey(Witness{Path: make([]Sibling, Depth-1)}, domain.Zero)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidWitness))
}

func TestEmptyHashesChain(t *testing.T) {
	assert.Equal(t, domain.Zero, emptyHashes[0])
	assert.Equal(t, hashNode(emptyHashes[Depth-1], emptyHashes[Depth-1]), EmptyRoot())
	assert.NotEqual(t, domain.Zero, EmptyRoot())
}
