package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizely-service/internal/domain"
)

// The table keeps the key-value shape of the storage contract: one row holds
// the serialized entry sequence, a second row the transient highlight marker.
const (
	boardID      = "quizely"
	lastPlayerID = "quizely:current-player"
)

// LeaderboardRepository stores the board as a JSONB document in Postgres.
type LeaderboardRepository struct {
	pool *pgxpool.Pool
}

func NewLeaderboardRepository(pool *pgxpool.Pool) *LeaderboardRepository {
	return &LeaderboardRepository{pool: pool}
}

func (r *LeaderboardRepository) Load(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM leaderboards WHERE id=$1`, boardID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
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
	return r.upsert(ctx, boardID, raw)
}

func (r *LeaderboardRepository) SetLastPlayer(ctx context.Context, player domain.LastPlayer) error {
	raw, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("marshal last player: %w", err)
	}
	return r.upsert(ctx, lastPlayerID, raw)
}

func (r *LeaderboardRepository) LastPlayer(ctx context.Context) (domain.LastPlayer, bool, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM leaderboards WHERE id=$1`, lastPlayerID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (r *LeaderboardRepository) upsert(ctx context.Context, id string, raw []byte) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leaderboards (id, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		id, raw)
	if err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	return nil
}
