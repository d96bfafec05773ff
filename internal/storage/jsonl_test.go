package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpmm/internal/model"
)

func TestJsonlJournal(t *testing.T) {
	ctx := context.Background()
	journal := NewJsonlJournal(filepath.Join(t.TempDir(), "nested", "journal.jsonl"))

	history, err := journal.History(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, history)

	records := []model.OperationRecord{
		{PoolID: "a", Version: 1, Kind: model.OperationLaunch, Payload: map[string]uint64{"base_liquidity": 10}, RecordedAt: "2026-01-01T00:00:00Z"},
		{PoolID: "b", Version: 1, Kind: model.OperationLaunch, Payload: map[string]uint64{"base_liquidity": 20}, RecordedAt: "2026-01-01T00:00:01Z"},
		{PoolID: "a", Version: 2, Kind: model.OperationRedeemFees, Payload: model.FeeRedemption{BaseAmount: 3}, RecordedAt: "2026-01-01T00:00:02Z"},
	}
	for _, rec := range records {
		require.NoError(t, journal.Append(ctx, rec))
	}

	all, err := journal.History(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	poolA, err := journal.History(ctx, "a")
	require.NoError(t, err)
	require.Len(t, poolA, 2)
	assert.Equal(t, uint64(2), poolA[1].Version)
	assert.Equal(t, model.OperationRedeemFees, poolA[1].Kind)

	var redemption model.FeeRedemption
	require.NoError(t, json.Unmarshal(poolA[1].Payload, &redemption))
	assert.Equal(t, uint64(3), redemption.BaseAmount)
}

func TestJsonlJournalRejectsUnencodablePayload(t *testing.T) {
	journal := NewJsonlJournal(filepath.Join(t.TempDir(), "journal.jsonl"))
	err := journal.Append(context.Background(), model.OperationRecord{PoolID: "a", Payload: make(chan int)})
	assert.Error(t, err)
}
