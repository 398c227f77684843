package store

import (
	"context"
	"crypto/ed25519"
	"errors"
	"sync"

	"github.com/stretchr/testify/suite"

	"didanchor/internal/eventlog"
	"didanchor/internal/ledger"
	"didanchor/pkg/domain"
	"didanchor/pkg/platform/sentinel"
)

// StoreSuite exercises the ledger.Store contract. Backends embed it and
// provide a fresh store per test.
type StoreSuite struct {
	suite.Suite
	ctx      context.Context
	newStore func() ledger.Store
	store    ledger.Store
	genesis  ledger.Snapshot
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	pub, _, err := ed25519.GenerateKey(nil)
	s.Require().NoError(err)
	s.genesis = ledger.Genesis(domain.PublicKeyFrom(pub))
	s.store = s.newStore()
}

func (s *StoreSuite) next(cur ledger.Snapshot, n int) (ledger.Snapshot, []eventlog.Event) {
	next := cur
	next.Version++
	next.Registry.TotalActive++
	next.Registry.Root = domain.Sum(domain.Uint64(next.Version))
	next.EventCount += uint64(n)
	events := make([]eventlog.Event, n)
	for i := range events {
		ev := eventlog.New(eventlog.TypeDIDRegistered, domain.Sum([]byte("owner")), domain.Sum([]byte("doc"))).
			WithLeaf(domain.Sum([]byte("doc"))).
			WithDetail("n", string(rune('a'+i)))
		ev.LogicalTime = next.Version
		events[i] = ev
	}
	return next, events
}

func (s *StoreSuite) commit(cur ledger.Snapshot, n int) ledger.Snapshot {
	next, events := s.next(cur, n)
	_, err := s.store.Commit(s.ctx, cur.Version, next, events)
	s.Require().NoError(err)
	return next
}

func auditEvent() eventlog.Event {
	return eventlog.New(eventlog.TypeDIDVerified, domain.Sum([]byte("owner")), domain.Sum([]byte("doc")))
}

func (s *StoreSuite) TestLifecycle() {
	s.Run("load before init", func() {
		_, err := s.store.Load(s.ctx)
		s.ErrorIs(err, sentinel.ErrNotInitialized)
	})

	s.Run("init is idempotent", func() {
		s.Require().NoError(s.store.Init(s.ctx, s.genesis))
		snap, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.Equal(s.genesis, snap)

		next := s.commit(snap, 1)
		s.Require().NoError(s.store.Init(s.ctx, s.genesis))

		reloaded, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.Equal(next, reloaded)
	})
}

func (s *StoreSuite) TestCompareAndSwap() {
	s.Require().NoError(s.store.Init(s.ctx, s.genesis))
	cur, err := s.store.Load(s.ctx)
	s.Require().NoError(err)

	next, events := s.next(cur, 2)
	events[1].Sequence = 42
	stamped, err := s.store.Commit(s.ctx, cur.Version, next, events)
	s.Require().NoError(err)

	s.Run("store numbers the batch without gaps", func() {
		s.Require().Len(stamped, 2)
		s.Equal(uint64(1), stamped[0].Sequence)
		s.Equal(uint64(2), stamped[1].Sequence)
	})

	s.Run("stale version is rejected and writes nothing", func() {
		stale, staleEvents := s.next(cur, 1)
		_, err := s.store.Commit(s.ctx, cur.Version, stale, staleEvents)
		s.ErrorIs(err, sentinel.ErrConflict)

		snap, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.Equal(next, snap)

		got, err := s.store.ReadSince(s.ctx, 0, 10)
		s.Require().NoError(err)
		s.Len(got, 2)
	})

	s.Run("concurrent commits on one version, one wins", func() {
		base, err := s.store.Load(s.ctx)
		s.Require().NoError(err)

		const writers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			wins      int
			conflicts int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, evs := s.next(base, 1)
				_, err := s.store.Commit(s.ctx, base.Version, n, evs)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					wins++
				case errors.Is(err, sentinel.ErrConflict):
					conflicts++
				}
			}()
		}
		wg.Wait()
		s.Equal(1, wins)
		s.Equal(writers-1, conflicts)

		snap, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.Equal(base.Version+1, snap.Version)
	})
}

func (s *StoreSuite) TestReadSince() {
	s.Require().NoError(s.store.Init(s.ctx, s.genesis))
	cur, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	for i := 0; i < 3; i++ {
		cur = s.commit(cur, 2)
	}

	s.Run("pages in sequence order", func() {
		first, err := s.store.ReadSince(s.ctx, 0, 4)
		s.Require().NoError(err)
		s.Require().Len(first, 4)
		for i, ev := range first {
			s.Equal(uint64(i+1), ev.Sequence)
		}

		rest, err := s.store.ReadSince(s.ctx, first[len(first)-1].Sequence, 10)
		s.Require().NoError(err)
		s.Require().Len(rest, 2)
		s.Equal(uint64(5), rest[0].Sequence)
		s.Equal(uint64(3), rest[1].LogicalTime)
	})

	s.Run("round trips every field", func() {
		got, err := s.store.ReadSince(s.ctx, 0, 1)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		ev := got[0]
		s.Equal(eventlog.TypeDIDRegistered, ev.Type)
		s.Equal(domain.Sum([]byte("owner")), ev.SubjectKeyHash)
		s.Equal(domain.Sum([]byte("doc")), ev.LeafValue)
		s.Equal("a", ev.Details["n"])
		s.NotEqual(ev.ID.String(), "00000000-0000-0000-0000-000000000000")
	})

	s.Run("past the end", func() {
		got, err := s.store.ReadSince(s.ctx, 6, 10)
		s.Require().NoError(err)
		s.Empty(got)
	})
}

func (s *StoreSuite) TestAppend() {
	s.Run("needs init", func() {
		_, err := s.store.Append(s.ctx, []eventlog.Event{auditEvent()})
		s.ErrorIs(err, sentinel.ErrNotInitialized)
	})

	s.Require().NoError(s.store.Init(s.ctx, s.genesis))
	cur, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	cur = s.commit(cur, 1)

	s.Run("continues the log and keeps the version", func() {
		stamped, err := s.store.Append(s.ctx, []eventlog.Event{auditEvent(), auditEvent()})
		s.Require().NoError(err)
		s.Require().Len(stamped, 2)
		s.Equal(uint64(2), stamped[0].Sequence)
		s.Equal(uint64(3), stamped[1].Sequence)

		snap, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.Equal(cur.Version, snap.Version)
		s.Equal(uint64(3), snap.EventCount)
	})

	s.Run("commit on a version loaded before the append succeeds", func() {
		next, events := s.next(cur, 1)
		stamped, err := s.store.Commit(s.ctx, cur.Version, next, events)
		s.Require().NoError(err)
		s.Equal(uint64(4), stamped[0].Sequence)
		cur = next
	})

	s.Run("concurrent appends and a commit leave no gaps", func() {
		const appenders = 6
		var wg sync.WaitGroup
		errs := make(chan error, appenders+1)
		for i := 0; i < appenders; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.store.Append(s.ctx, []eventlog.Event{auditEvent()})
				errs <- err
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			next, events := s.next(cur, 2)
			_, err := s.store.Commit(s.ctx, cur.Version, next, events)
			errs <- err
		}()
		wg.Wait()
		close(errs)
		for err := range errs {
			s.Require().NoError(err)
		}

		got, err := s.store.ReadSince(s.ctx, 0, 100)
		s.Require().NoError(err)
		s.Require().Len(got, 4+appenders+2)
		for i, ev := range got {
			s.Equal(uint64(i+1), ev.Sequence)
		}
		snap, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.Equal(cur.Version+1, snap.Version)
		s.Equal(uint64(len(got)), snap.EventCount)
	})
}
