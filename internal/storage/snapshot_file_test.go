package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpmm/internal/fixedpoint"
	"cpmm/internal/model"
)

func sampleSnapshot(version uint64) model.PoolSnapshot {
	return model.PoolSnapshot{
		PoolID:                      "sol-usdc",
		Version:                     version,
		IsLaunched:                  true,
		InitialLockedLiquidity:      100_000,
		ConstantProductSqrt:         fixedpoint.New(2_000_000, 1<<63),
		BaseQuoteRatio:              fixedpoint.FromUint64(4),
		BaseLiquidity:               4_000_000,
		QuoteLiquidity:              1_000_000,
		LpTokensSupply:              2_000_000,
		ProvidersFeeRateBasisPoints: 25,
		ProtocolFeeRateBasisPoints:  5,
		UpdatedAt:                   "2026-01-02T03:04:05Z",
	}
}

func TestFileSnapshotStore(t *testing.T) {
	ctx := context.Background()
	store := &FileSnapshotStore{Dir: filepath.Join(t.TempDir(), "pools")}

	_, found, err := store.Load(ctx, "sol-usdc")
	require.NoError(t, err)
	assert.False(t, found)

	snap := sampleSnapshot(1)
	require.NoError(t, store.Save(ctx, snap))

	got, found, err := store.Load(ctx, "sol-usdc")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, snap, got)

	err = store.Save(ctx, sampleSnapshot(1))
	assert.ErrorIs(t, err, ErrVersionConflict)
	err = store.Save(ctx, sampleSnapshot(3))
	assert.ErrorIs(t, err, ErrVersionConflict)

	next := sampleSnapshot(2)
	next.BaseLiquidity = 4_400_000
	require.NoError(t, store.Save(ctx, next))
	got, _, err = store.Load(ctx, "sol-usdc")
	require.NoError(t, err)
	assert.Equal(t, uint64(4_400_000), got.BaseLiquidity)

	_, err = os.Stat(filepath.Join(store.Dir, "sol-usdc.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileSnapshotStoreRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	store := &FileSnapshotStore{Dir: t.TempDir()}

	_, _, err := store.Load(ctx, "../escape")
	assert.Error(t, err)

	fresh := sampleSnapshot(2)
	err = store.Save(ctx, fresh)
	assert.ErrorIs(t, err, ErrVersionConflict, "first snapshot must be version 1")

	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, "broken.json"), []byte("{"), 0o644))
	_, _, err = store.Load(ctx, "broken")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, "other.json"), []byte(`{"pool_id":"sol-usdc"}`), 0o644))
	_, _, err = store.Load(ctx, "other")
	assert.Error(t, err)
}
