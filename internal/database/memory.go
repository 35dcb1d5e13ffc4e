package database

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps round results in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	rounds map[uuid.UUID][]RoundRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rounds: make(map[uuid.UUID][]RoundRecord)}
}

func (s *MemoryStore) SaveRoundResult(_ context.Context, rec RoundRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.Players = append([]string(nil), rec.Players...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[rec.GameID] = append(s.rounds[rec.GameID], rec)
	return nil
}

func (s *MemoryStore) ListRoundResults(_ context.Context, gameID uuid.UUID) ([]RoundRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]RoundRecord{}, s.rounds[gameID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
