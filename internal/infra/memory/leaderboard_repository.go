package memory

import (
	"context"
	"sync"

	"quizely-service/internal/domain"
)

// LeaderboardRepository is an in-memory implementation of
// app.EntryRepository, useful for tests and for running without Redis or
// Postgres configured.
type LeaderboardRepository struct {
	mu         sync.RWMutex
	entries    []domain.LeaderboardEntry
	lastPlayer *domain.LastPlayer

	// error injection for storage-degradation tests
	LoadErr error
	SaveErr error
}

func NewLeaderboardRepository() *LeaderboardRepository {
	return &LeaderboardRepository{}
}

func (r *LeaderboardRepository) Load(_ context.Context) ([]domain.LeaderboardEntry, error) {
	if r.LoadErr != nil {
		return nil, r.LoadErr
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.LeaderboardEntry(nil), r.entries...), nil
}

func (r *LeaderboardRepository) Save(_ context.Context, entries []domain.LeaderboardEntry) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append([]domain.LeaderboardEntry(nil), entries...)
	return nil
}

func (r *LeaderboardRepository) SetLastPlayer(_ context.Context, player domain.LastPlayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastPlayer = &player
	return nil
}

func (r *LeaderboardRepository) LastPlayer(_ context.Context) (domain.LastPlayer, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.lastPlayer == nil {
		return domain.LastPlayer{}, false, nil
	}
	return *r.lastPlayer, true, nil
}
