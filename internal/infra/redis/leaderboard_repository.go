package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quizely-service/internal/domain"
)

// Key layout mirrors the single-key browser storage the board grew out of:
// the whole serialized entry sequence lives under one key, and a second
// transient key marks the player who just finished.
const (
	boardKey      = "quizely:leaderboard"
	lastPlayerKey = "quizely:current-player"
)

// LeaderboardRepository persists the board as one JSON value in Redis.
// Single reader/writer per process; last write wins.
type LeaderboardRepository struct {
	client        *redis.Client
	lastPlayerTTL time.Duration
}

func NewLeaderboardRepository(client *redis.Client, lastPlayerTTL time.Duration) *LeaderboardRepository {
	return &LeaderboardRepository{client: client, lastPlayerTTL: lastPlayerTTL}
}

func (r *LeaderboardRepository) Load(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	raw, err := r.client.Get(ctx, boardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal leaderboard: %w", err)
	}
	return entries, nil
}

func (r *LeaderboardRepository) Save(ctx context.Context, entries []domain.LeaderboardEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal leaderboard: %w", err)
	}
	if err := r.client.Set(ctx, boardKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("save leaderboard: %w", err)
	}
	return nil
}

func (r *LeaderboardRepository) SetLastPlayer(ctx context.Context, player domain.LastPlayer) error {
	raw, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("marshal last player: %w", err)
	}
	if err := r.client.Set(ctx, lastPlayerKey, raw, r.lastPlayerTTL).Err(); err != nil {
		return fmt.Errorf("save last player: %w", err)
	}
	return nil
}

func (r *LeaderboardRepository) LastPlayer(ctx context.Context) (domain.LastPlayer, bool, error) {
	raw, err := r.client.Get(ctx, lastPlayerKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.LastPlayer{}, false, nil
	}
	if err != nil {
		return domain.LastPlayer{}, false, fmt.Errorf("load last player: %w", err)
	}
	var player domain.LastPlayer
	if err := json.Unmarshal(raw, &player); err != nil {
		return domain.LastPlayer{}, false, fmt.Errorf("unmarshal last player: %w", err)
	}
	return player, true, nil
}
