package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists round results in an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path. ":memory:" is accepted
// for tests; the pool is pinned to one connection so it stays a single database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if path != ":memory:" {
		if parent := filepath.Dir(path); parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", pragma, err)
		}
	}
	if err := ensureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func ensureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS round_results (
    id             TEXT PRIMARY KEY,
    game_id        TEXT NOT NULL,
    round          INTEGER NOT NULL,
    reason         TEXT NOT NULL,
    went_out       INTEGER NOT NULL,
    delta_a        INTEGER NOT NULL,
    delta_b        INTEGER NOT NULL,
    score_a        INTEGER NOT NULL,
    score_b        INTEGER NOT NULL,
    players        TEXT NOT NULL,
    finished_at_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_round_results_game ON round_results (game_id, round);
`)
	if err != nil {
		return fmt.Errorf("ensure sqlite schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveRoundResult(ctx context.Context, rec RoundRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	players, err := encodePlayers(rec.Players)
	if err != nil {
		return fmt.Errorf("encode players of game %s: %w", rec.GameID, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO round_results (
    id, game_id, round, reason, went_out, delta_a, delta_b, score_a, score_b, players, finished_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, rec.ID.String(), rec.GameID.String(), rec.Round, rec.Reason, rec.WentOut,
		rec.DeltaA, rec.DeltaB, rec.ScoreA, rec.ScoreB, players, rec.FinishedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save round %d of game %s: %w", rec.Round, rec.GameID, err)
	}
	return nil
}

func (s *SQLiteStore) ListRoundResults(ctx context.Context, gameID uuid.UUID) ([]RoundRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, game_id, round, reason, went_out, delta_a, delta_b, score_a, score_b, players, finished_at_ms
FROM round_results
WHERE game_id = ?
ORDER BY round ASC
`, gameID.String())
	if err != nil {
		return nil, fmt.Errorf("list rounds of game %s: %w", gameID, err)
	}
	defer rows.Close()

	out := []RoundRecord{}
	for rows.Next() {
		var (
			rec              RoundRecord
			id, game, plays  string
			finishedAtMillis int64
		)
		if err := rows.Scan(&id, &game, &rec.Round, &rec.Reason, &rec.WentOut,
			&rec.DeltaA, &rec.DeltaB, &rec.ScoreA, &rec.ScoreB, &plays, &finishedAtMillis); err != nil {
			return nil, err
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("round id %q: %w", id, err)
		}
		if rec.GameID, err = uuid.Parse(game); err != nil {
			return nil, fmt.Errorf("game id %q: %w", game, err)
		}
		if rec.Players, err = decodePlayers(plays); err != nil {
			return nil, fmt.Errorf("players of round %s: %w", id, err)
		}
		rec.FinishedAt = time.UnixMilli(finishedAtMillis).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
