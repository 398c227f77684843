package ledger_test

import (
	"context"
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"didanchor/internal/eventlog"
	"didanchor/internal/ledger"
	"didanchor/internal/ledger/mocks"
	"didanchor/internal/ledger/store"
	"didanchor/pkg/domain"
	dErrors "didanchor/pkg/domain-errors"
	"didanchor/pkg/platform/sentinel"
)

//go:generate mockgen -source=ledger.go -destination=mocks/mocks.go -package=mocks Store
type ExecutorSuite struct {
	suite.Suite
	ctx     context.Context
	genesis ledger.Snapshot
	metrics *ledger.Metrics
}

func TestExecutorSuite(t *testing.T) {
	suite.Run(t, new(ExecutorSuite))
}

func (s *ExecutorSuite) SetupTest() {
	s.ctx = context.Background()
	pub, _, err := ed25519.GenerateKey(nil)
	s.Require().NoError(err)
	s.genesis = ledger.Genesis(domain.PublicKeyFrom(pub))
	s.metrics = ledger.NewMetrics(prometheus.NewRegistry())
}

func bump(n int) ledger.Transition {
	return func(_ context.Context, cur ledger.Snapshot) (ledger.Snapshot, []eventlog.Event, error) {
		next := cur
		next.Credentials.Verifications++
		events := make([]eventlog.Event, n)
		for i := range events {
			events[i] = eventlog.New(eventlog.TypeCredentialVerified, domain.Zero, domain.Zero)
		}
		return next, events, nil
	}
}

func (s *ExecutorSuite) TestExecute() {
	mem := store.NewMemory()
	s.Require().NoError(mem.Init(s.ctx, s.genesis))
	exec := ledger.NewExecutor(mem, ledger.WithMetrics(s.metrics))

	s.Run("stamps version and sequences", func() {
		first, err := exec.Execute(s.ctx, "bump", bump(2))
		s.Require().NoError(err)
		s.Equal(uint64(1), first.Version)
		s.Equal(uint64(1), first.Verifications)
		s.Require().Len(first.Events, 2)
		s.Equal(uint64(1), first.Events[0].Sequence)
		s.Equal(uint64(2), first.Events[1].Sequence)
		s.Equal(uint64(1), first.Events[1].LogicalTime)

		second, err := exec.Execute(s.ctx, "bump", bump(1))
		s.Require().NoError(err)
		s.Equal(uint64(2), second.Version)
		s.Equal(uint64(3), second.Events[0].Sequence)

		snap, err := exec.Snapshot(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(3), snap.EventCount)
		s.Equal(2.0, testutil.ToFloat64(s.metrics.Operations.WithLabelValues("bump", ledger.OutcomeCommitted)))
	})

	s.Run("rejected transition writes nothing", func() {
		before, err := exec.Snapshot(s.ctx)
		s.Require().NoError(err)

		_, err = exec.Execute(s.ctx, "reject", func(context.Context, ledger.Snapshot) (ledger.Snapshot, []eventlog.Event, error) {
			return ledger.Snapshot{}, nil, dErrors.New(dErrors.CodePreconditionFailed, "slot already occupied")
		})
		s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))

		after, err := exec.Snapshot(s.ctx)
		s.Require().NoError(err)
		s.Equal(before, after)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Operations.WithLabelValues("reject", ledger.OutcomeRejected)))
	})
}

// interleavedStore runs hook once, between the executor's Load and Commit.
type interleavedStore struct {
	ledger.Store
	hook func()
}

func (i *interleavedStore) Commit(ctx context.Context, expectedVersion uint64, next ledger.Snapshot, events []eventlog.Event) ([]eventlog.Event, error) {
	if i.hook != nil {
		hook := i.hook
		i.hook = nil
		hook()
	}
	return i.Store.Commit(ctx, expectedVersion, next, events)
}

func (s *ExecutorSuite) TestAppend() {
	mem := store.NewMemory()
	s.Require().NoError(mem.Init(s.ctx, s.genesis))
	exec := ledger.NewExecutor(mem, ledger.WithMetrics(s.metrics))

	_, err := exec.Execute(s.ctx, "bump", bump(1))
	s.Require().NoError(err)

	s.Run("records events without a new version", func() {
		at, err := exec.Snapshot(s.ctx)
		s.Require().NoError(err)

		receipt, err := exec.Append(s.ctx, "audit", at, []eventlog.Event{
			eventlog.New(eventlog.TypeDIDVerified, domain.Zero, domain.Zero),
		})
		s.Require().NoError(err)
		s.Equal(at.Version, receipt.Version)
		s.Require().Len(receipt.Events, 1)
		s.Equal(uint64(2), receipt.Events[0].Sequence)
		s.Equal(at.Version, receipt.Events[0].LogicalTime)

		after, err := exec.Snapshot(s.ctx)
		s.Require().NoError(err)
		s.Equal(at.Version, after.Version)
		s.Equal(uint64(2), after.EventCount)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Operations.WithLabelValues("audit", ledger.OutcomeAppended)))
	})

	s.Run("append between load and commit does not conflict", func() {
		wrapped := &interleavedStore{Store: mem}
		racing := ledger.NewExecutor(wrapped)
		wrapped.hook = func() {
			at, err := racing.Snapshot(s.ctx)
			s.Require().NoError(err)
			_, err = racing.Append(s.ctx, "audit", at, []eventlog.Event{
				eventlog.New(eventlog.TypeDIDVerified, domain.Zero, domain.Zero),
			})
			s.Require().NoError(err)
		}

		receipt, err := racing.Execute(s.ctx, "bump", bump(1))
		s.Require().NoError(err)
		s.Equal(uint64(2), receipt.Version)
		s.Equal(uint64(4), receipt.Events[0].Sequence)

		logged, err := mem.ReadSince(s.ctx, 0, 10)
		s.Require().NoError(err)
		s.Require().Len(logged, 4)
		s.Equal(eventlog.TypeDIDVerified, logged[2].Type)
	})
}

func (s *ExecutorSuite) TestStoreFailures() {
	s.Run("lost race surfaces as state conflict", func() {
		ctrl := gomock.NewController(s.T())
		st := mocks.NewMockStore(ctrl)
		st.EXPECT().Load(gomock.Any()).Return(s.genesis, nil)
		st.EXPECT().Commit(gomock.Any(), uint64(0), gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrConflict)

		_, err := ledger.NewExecutor(st).Execute(s.ctx, "bump", bump(1))
		s.True(dErrors.HasCode(err, dErrors.CodeStateConflict))
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("no retry after a conflict", func() {
		ctrl := gomock.NewController(s.T())
		st := mocks.NewMockStore(ctrl)
		st.EXPECT().Load(gomock.Any()).Return(s.genesis, nil).Times(1)
		st.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrConflict).Times(1)

		_, err := ledger.NewExecutor(st).Execute(s.ctx, "bump", bump(1))
		s.Error(err)
	})

	s.Run("uninitialized ledger", func() {
		ctrl := gomock.NewController(s.T())
		st := mocks.NewMockStore(ctrl)
		st.EXPECT().Load(gomock.Any()).Return(ledger.Snapshot{}, sentinel.ErrNotInitialized)

		_, err := ledger.NewExecutor(st).Execute(s.ctx, "bump", bump(1))
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("append failure is internal", func() {
		ctrl := gomock.NewController(s.T())
		st := mocks.NewMockStore(ctrl)
		st.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil, errors.New("disk full"))

		_, err := ledger.NewExecutor(st).Append(s.ctx, "audit", s.genesis, []eventlog.Event{
			eventlog.New(eventlog.TypeDIDVerified, domain.Zero, domain.Zero),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("backend failure is internal", func() {
		ctrl := gomock.NewController(s.T())
		st := mocks.NewMockStore(ctrl)
		st.EXPECT().Load(gomock.Any()).Return(s.genesis, nil)
		st.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("disk full"))

		_, err := ledger.NewExecutor(st).Execute(s.ctx, "bump", bump(1))
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
