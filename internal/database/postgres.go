package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists round results in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("empty postgres dsn")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if _, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS round_results (
    id          UUID PRIMARY KEY,
    game_id     UUID NOT NULL,
    round       INTEGER NOT NULL,
    reason      TEXT NOT NULL,
    went_out    INTEGER NOT NULL,
    delta_a     INTEGER NOT NULL,
    delta_b     INTEGER NOT NULL,
    score_a     INTEGER NOT NULL,
    score_b     INTEGER NOT NULL,
    players     TEXT[] NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_round_results_game ON round_results (game_id, round);
`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure postgres schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) SaveRoundResult(ctx context.Context, rec RoundRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	players := rec.Players
	if players == nil {
		players = []string{}
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO round_results (
    id, game_id, round, reason, went_out, delta_a, delta_b, score_a, score_b, players, finished_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`, rec.ID, rec.GameID, rec.Round, rec.Reason, rec.WentOut,
		rec.DeltaA, rec.DeltaB, rec.ScoreA, rec.ScoreB, players, rec.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("save round %d of game %s: %w", rec.Round, rec.GameID, err)
	}
	return nil
}

func (s *PostgresStore) ListRoundResults(ctx context.Context, gameID uuid.UUID) ([]RoundRecord, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, game_id, round, reason, went_out, delta_a, delta_b, score_a, score_b, players, finished_at
FROM round_results
WHERE game_id = $1
ORDER BY round ASC
`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list rounds of game %s: %w", gameID, err)
	}
	defer rows.Close()

	out := []RoundRecord{}
	for rows.Next() {
		var rec RoundRecord
		if err := rows.Scan(&rec.ID, &rec.GameID, &rec.Round, &rec.Reason, &rec.WentOut,
			&rec.DeltaA, &rec.DeltaB, &rec.ScoreA, &rec.ScoreB, &rec.Players, &rec.FinishedAt); err != nil {
			return nil, err
		}
		rec.FinishedAt = rec.FinishedAt.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}
