package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quizely-service/internal/app"
	"quizely-service/internal/domain"
	"quizely-service/internal/infra/memory"
)

type stubSource struct {
	set domain.QuestionSet
	err error
}

func (s *stubSource) Load(_ context.Context, _ int) (domain.QuestionSet, error) {
	return s.set, s.err
}

func TestStartValidatesPlayerBeforeFetching(t *testing.T) {
	service := app.NewGameService(&stubSource{err: errors.New("should not be called")},
		newBoard(t), 10)

	_, err := service.Start(context.Background(), "A", "")
	if !errors.Is(err, domain.ErrInvalidPlayerName) {
		t.Fatalf("expected ErrInvalidPlayerName, got %v", err)
	}
}

func TestStartPropagatesLoaderErrors(t *testing.T) {
	fetchErr := fmt.Errorf("%w: connection refused", domain.ErrFetchFailed)
	service := app.NewGameService(&stubSource{err: fetchErr}, newBoard(t), 10)

	_, err := service.Start(context.Background(), "Alice", "")
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("expected fetch error to propagate untouched, got %v", err)
	}
}

func TestFinishInsertsEntryAndMarksPlayer(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewLeaderboardRepository()
	board := app.NewLeaderboard(ctx, repo, 100)
	service := app.NewGameService(&stubSource{set: questionSet(1)}, board, 1)

	session, err := service.Start(ctx, "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := service.Finish(ctx, session); !errors.Is(err, domain.ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive before completion, got %v", err)
	}

	if _, err := session.Submit("Right 0"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	stored, err := service.Finish(ctx, session)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if stored.PlayerName != "Alice" || stored.Percentage != 100 || stored.Tier != domain.TierGrandmaster {
		t.Fatalf("unexpected entry %+v", stored)
	}
	if board.Len() != 1 {
		t.Fatalf("expected entry inserted, board has %d", board.Len())
	}

	marker, ok := board.LastPlayer(ctx)
	if !ok || marker.Name != "Alice" {
		t.Fatalf("expected last player marker for Alice, got %+v ok=%v", marker, ok)
	}
}

func newBoard(t *testing.T) *app.Leaderboard {
	t.Helper()
	return app.NewLeaderboardWithClock(context.Background(),
		memory.NewLeaderboardRepository(), 100, func() time.Time { return time.Unix(0, 0) })
}
