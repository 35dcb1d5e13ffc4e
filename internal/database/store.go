// Package database persists finished rounds. Three backends share the Store
// interface: an in-process map, an embedded SQLite file and PostgreSQL.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Supported Options.Driver values.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned by NewStore for an unsupported driver name.
var ErrUnknownDriver = errors.New("database: unknown store driver")

// RoundRecord is the persisted result of one finished round.
type RoundRecord struct {
	ID         uuid.UUID `json:"id"`
	GameID     uuid.UUID `json:"gameId"`
	Round      int       `json:"round"`
	Reason     string    `json:"reason"`
	WentOut    int       `json:"wentOut"` // seat that went out, -1 when the stock ran out
	DeltaA     int       `json:"deltaA"`
	DeltaB     int       `json:"deltaB"`
	ScoreA     int       `json:"scoreA"`
	ScoreB     int       `json:"scoreB"`
	Players    []string  `json:"players"` // usernames by seat
	FinishedAt time.Time `json:"finishedAt"`
}

// Store saves and lists round results.
type Store interface {
	SaveRoundResult(ctx context.Context, rec RoundRecord) error
	// ListRoundResults returns a game's rounds ordered by round number.
	ListRoundResults(ctx context.Context, gameID uuid.UUID) ([]RoundRecord, error)
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver      string
	SQLitePath  string
	PostgresURL string
}

// NewStore opens the backend named by opts.Driver. An empty driver means memory.
func NewStore(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverMemory, "mem":
		return NewMemoryStore(), nil
	case DriverSQLite:
		return NewSQLiteStore(ctx, opts.SQLitePath)
	case DriverPostgres, "postgresql":
		return NewPostgresStore(ctx, opts.PostgresURL)
	default:
		return nil, fmt.Errorf("%w %q (supported: %s, %s, %s)", ErrUnknownDriver, opts.Driver, DriverMemory, DriverSQLite, DriverPostgres)
	}
}

// encodePlayers stores the seat-ordered usernames as a JSON array.
func encodePlayers(players []string) (string, error) {
	if players == nil {
		players = []string{}
	}
	b, err := json.Marshal(players)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodePlayers(s string) ([]string, error) {
	players := []string{}
	if s == "" {
		return players, nil
	}
	if err := json.Unmarshal([]byte(s), &players); err != nil {
		return nil, err
	}
	return players, nil
}
