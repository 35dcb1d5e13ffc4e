package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the shared Store contract against a backend.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	gameID := uuid.New()
	finished := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	second := RoundRecord{
		GameID: gameID, Round: 1, Reason: "stock exhausted", WentOut: -1,
		DeltaA: 60, DeltaB: -30, ScoreA: 540, ScoreB: -40,
		Players: []string{"ana", "bia", "caio", "davi"}, FinishedAt: finished.Add(time.Minute),
	}
	first := RoundRecord{
		GameID: gameID, Round: 0, Reason: "went out", WentOut: 2,
		DeltaA: 480, DeltaB: -10, ScoreA: 480, ScoreB: -10,
		Players: []string{"ana", "bia", "caio", "davi"}, FinishedAt: finished,
	}
	require.NoError(t, s.SaveRoundResult(ctx, second))
	require.NoError(t, s.SaveRoundResult(ctx, first))
	require.NoError(t, s.SaveRoundResult(ctx, RoundRecord{GameID: uuid.New(), Players: []string{"x"}, FinishedAt: finished}))

	punctuated := uuid.New()
	require.NoError(t, s.SaveRoundResult(ctx, RoundRecord{
		GameID: punctuated, Reason: "went out", WentOut: 0,
		Players: []string{"ana, bia", "caio", "", `d"avi`}, FinishedAt: finished,
	}))
	byName, err := s.ListRoundResults(ctx, punctuated)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, []string{"ana, bia", "caio", "", `d"avi`}, byName[0].Players, "usernames keep their seat and text")

	got, err := s.ListRoundResults(ctx, gameID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 0, got[0].Round)
	assert.Equal(t, "went out", got[0].Reason)
	assert.Equal(t, 2, got[0].WentOut)
	assert.Equal(t, [4]int{480, -10, 480, -10}, [4]int{got[0].DeltaA, got[0].DeltaB, got[0].ScoreA, got[0].ScoreB})
	assert.Equal(t, []string{"ana", "bia", "caio", "davi"}, got[0].Players)
	assert.True(t, finished.Equal(got[0].FinishedAt), "finishedAt = %v", got[0].FinishedAt)
	assert.NotEqual(t, uuid.Nil, got[0].ID)
	assert.Equal(t, gameID, got[0].GameID)

	assert.Equal(t, 1, got[1].Round)
	assert.Equal(t, -1, got[1].WentOut)

	empty, err := s.ListRoundResults(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStoreInMemory(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStoreFileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "buraco.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	gameID := uuid.New()
	require.NoError(t, s.SaveRoundResult(ctx, RoundRecord{GameID: gameID, Round: 0, Reason: "went out", Players: []string{"a", "b", "c", "d"}, FinishedAt: time.Now()}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.ListRoundResults(ctx, gameID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	s, err := NewStore(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore(ctx, Options{Driver: "SQLite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = NewStore(ctx, Options{Driver: "sqlite"})
	assert.Error(t, err)

	_, err = NewStore(ctx, Options{Driver: "postgres"})
	assert.Error(t, err)

	_, err = NewStore(ctx, Options{Driver: "mongo"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
