package indexer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ammPool/internal/model"
)

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cp.json")
	store := NewCheckpointStore(path, true)

	_, ok, err := store.Load()
	require.NoError(t, err)
	require.False(t, ok)

	state := &model.PoolState{ReserveA: "10", ReserveB: "20", KLast: "200", TotalSupply: "14"}
	require.NoError(t, store.Save(42, state))

	cp, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(42), cp.LastProcessed)
	require.Equal(t, state, cp.Pool)
	require.NotEmpty(t, cp.UpdatedAt)
}

func TestCheckpointDisabled(t *testing.T) {
	store := NewCheckpointStore(filepath.Join(t.TempDir(), "cp.json"), false)
	require.NoError(t, store.Save(1, nil))
	_, ok, err := store.Load()
	require.NoError(t, err)
	require.False(t, ok)
}
