package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RecordAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entries := []Entry{
		{EventID: "evt-1", EventType: "entry-hit", Symbol: "AAPL", TradeID: 1, Summary: "AAPL crossed entry_1 (100)", Outcome: OutcomeOK, TookMs: 12},
		{EventID: "evt-2", EventType: "profit-hit", Symbol: "AAPL", TradeID: 1, Summary: "Profit 1 hit: AAPL at 103", Outcome: OutcomeOK, TookMs: 8},
		{EventID: "evt-3", EventType: "mystery", Symbol: "TSLA", TradeID: 2, Summary: "mystery: TSLA", Outcome: OutcomeIgnored},
	}
	for _, e := range entries {
		require.NoError(t, s.Record(ctx, e))
	}

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// newest first
	assert.Equal(t, "evt-3", got[0].EventID)
	assert.Equal(t, OutcomeIgnored, got[0].Outcome)
	assert.Equal(t, "evt-1", got[2].EventID)
	assert.Equal(t, int64(12), got[2].TookMs)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestStore_RecentLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, Entry{EventType: "entry-hit", TradeID: int64(i), Outcome: OutcomeOK}))
	}

	got, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 5) // falls back to the default window
}

func TestStore_PreservesCreatedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(ctx, Entry{EventType: "reset", TradeID: 1, Outcome: OutcomeOK, CreatedAt: at}))

	got, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, at.Unix(), got[0].CreatedAt.Unix())
}

func TestNewStore_EmptyPath(t *testing.T) {
	_, err := NewStore("  ")
	assert.Error(t, err)
}
