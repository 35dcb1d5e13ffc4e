// Package cache publishes the per-game action log to Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Rdb is the shared Redis client. It stays nil when Redis is not configured and
// every publish becomes a no-op at the call site.
var Rdb *redis.Client

// ErrNotConnected is returned when Redis has not been configured.
var ErrNotConnected = errors.New("cache: redis is not connected")

const (
	// ActionChannel receives every published action for live consumers.
	ActionChannel = "buraco:actions"

	actionListPrefix = "buraco:actions:"
)

// GameActionRecord is one entry of a game's action log.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"gameId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorUserID   uuid.UUID              `json:"actorUserId"` // uuid.Nil for game events
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload"`
	Timestamp     int64                  `json:"timestamp"` // unix milliseconds
}

// ConnectRedis dials Redis, verifies it with a PING and installs the client as Rdb.
func ConnectRedis(ctx context.Context, addr, password string, db int) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping %s: %w", addr, err)
	}
	Rdb = client
	log.Infof("Connected to Redis at %s (db %d).", addr, db)
	return nil
}

// Close releases the shared client.
func Close() error {
	if Rdb == nil {
		return nil
	}
	err := Rdb.Close()
	Rdb = nil
	return err
}

// ActionListKey returns the list key holding a game's ordered action log.
func ActionListKey(gameID uuid.UUID) string {
	return actionListPrefix + gameID.String()
}

// PublishGameAction appends rec to its game's log and announces it on ActionChannel.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return ErrNotConnected
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action %d: %w", rec.ActionIndex, err)
	}
	pipe := Rdb.TxPipeline()
	pipe.RPush(ctx, ActionListKey(rec.GameID), data)
	pipe.Publish(ctx, ActionChannel, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish action %d: %w", rec.ActionIndex, err)
	}
	return nil
}

// LoadGameActions returns a game's action log in publish order.
func LoadGameActions(ctx context.Context, gameID uuid.UUID) ([]GameActionRecord, error) {
	if Rdb == nil {
		return nil, ErrNotConnected
	}
	raw, err := Rdb.LRange(ctx, ActionListKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load actions for game %s: %w", gameID, err)
	}
	return decodeRecords(raw)
}

func decodeRecords(raw []string) ([]GameActionRecord, error) {
	out := make([]GameActionRecord, 0, len(raw))
	for i, s := range raw {
		var rec GameActionRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("decode action entry %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
