package cache

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishWithoutRedis(t *testing.T) {
	require.Nil(t, Rdb)
	err := PublishGameAction(context.Background(), GameActionRecord{GameID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = LoadGameActions(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, Close())
}

func TestActionListKey(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Equal(t, "buraco:actions:6ba7b810-9dad-11d1-80b4-00c04fd430c8", ActionListKey(id))
}

func TestDecodeRecords(t *testing.T) {
	rec := GameActionRecord{
		GameID:        uuid.New(),
		ActionIndex:   3,
		ActorUserID:   uuid.New(),
		ActionType:    "discard",
		ActionPayload: map[string]interface{}{"seat": float64(2), "card": "9C"},
		Timestamp:     1700000000000,
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	got, err := decodeRecords([]string{string(data)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec, got[0])

	_, err = decodeRecords([]string{"{not json"})
	assert.Error(t, err)
}
