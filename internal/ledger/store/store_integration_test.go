//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"didanchor/internal/ledger"
	"didanchor/pkg/platform/tx"
	"didanchor/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	suite.Run(t, &StoreSuite{newStore: func() ledger.Store {
		require.NoError(t, pg.Truncate(context.Background()))
		return NewPostgres(pg.DB, tx.NewRunner(pg.DB, 5*time.Second))
	}})
}

func TestRedisStore(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	suite.Run(t, &StoreSuite{newStore: func() ledger.Store {
		require.NoError(t, rc.FlushAll(context.Background()))
		return NewRedis(rc.Client, "test")
	}})
}
