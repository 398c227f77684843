package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"didanchor/internal/ledger"
)

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func() ledger.Store { return NewMemory() }})
}

func TestBoltStore(t *testing.T) {
	dir := t.TempDir()
	n := 0
	suite.Run(t, &StoreSuite{newStore: func() ledger.Store {
		n++
		b, err := OpenBolt(filepath.Join(dir, "ledger-"+string(rune('a'+n))+".db"), 0)
		require.NoError(t, err)
		t.Cleanup(func() { _ = b.Close() })
		return b
	}})
}
