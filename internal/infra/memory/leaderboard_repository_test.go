package memory

import (
	"context"
	"testing"
	"time"

	"quizely-service/internal/domain"
)

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewLeaderboardRepository()

	entries, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected fresh repo empty, got %d", len(entries))
	}

	saved := []domain.LeaderboardEntry{{PlayerName: "Alice", Percentage: 90, SortKey: 1}}
	if err := repo.Save(ctx, saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("load 2: %v", err)
	}
	if len(entries) != 1 || entries[0].PlayerName != "Alice" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	// the loaded slice is a copy, mutating it must not touch the store
	entries[0].PlayerName = "Mallory"
	entries, _ = repo.Load(ctx)
	if entries[0].PlayerName != "Alice" {
		t.Fatalf("repository leaked internal state")
	}
}

func TestLastPlayerMarker(t *testing.T) {
	ctx := context.Background()
	repo := NewLeaderboardRepository()

	if _, ok, err := repo.LastPlayer(ctx); err != nil || ok {
		t.Fatalf("expected no marker initially, ok=%v err=%v", ok, err)
	}

	marker := domain.LastPlayer{Name: "Alice", FinishedAt: time.Unix(1000, 0)}
	if err := repo.SetLastPlayer(ctx, marker); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := repo.LastPlayer(ctx)
	if err != nil || !ok {
		t.Fatalf("expected marker, ok=%v err=%v", ok, err)
	}
	if got.Name != "Alice" {
		t.Fatalf("unexpected marker %+v", got)
	}
}
