package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quizely-service/internal/app"
	"quizely-service/internal/domain"
	"quizely-service/internal/infra/memory"
)

func TestServeBoardSplitsPodium(t *testing.T) {
	ctx := context.Background()
	board := app.NewLeaderboard(ctx, memory.NewLeaderboardRepository(), 100)
	for i, name := range []string{"first", "second", "third", "fourth", "fifth"} {
		board.Insert(ctx, domain.LeaderboardEntry{
			PlayerName:       name,
			Percentage:       100 - i*10,
			TotalQuestions:   10,
			TimeTakenSeconds: 30,
			CreatedAt:        time.Now(),
		})
	}
	handler := NewLeaderboardHandler(board)

	rec := httptest.NewRecorder()
	handler.ServeBoard(rec, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))

	var resp struct {
		Podium []struct {
			Rank int    `json:"rank"`
			Name string `json:"name"`
		} `json:"podium"`
		Entries []struct {
			Rank int    `json:"rank"`
			Name string `json:"name"`
		} `json:"entries"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Podium) != 3 || len(resp.Entries) != 2 {
		t.Fatalf("expected 3 podium + 2 rest, got %d + %d", len(resp.Podium), len(resp.Entries))
	}
	if resp.Podium[0].Rank != 1 || resp.Podium[0].Name != "first" {
		t.Fatalf("unexpected podium head %+v", resp.Podium[0])
	}
	if resp.Entries[0].Rank != 4 || resp.Entries[0].Name != "fourth" {
		t.Fatalf("expected ranks to continue at 4, got %+v", resp.Entries[0])
	}
}

func TestServeBoardAppliesSearch(t *testing.T) {
	ctx := context.Background()
	board := app.NewLeaderboard(ctx, memory.NewLeaderboardRepository(), 100)
	board.Insert(ctx, domain.LeaderboardEntry{PlayerName: "Alice", Percentage: 90, CreatedAt: time.Now()})
	board.Insert(ctx, domain.LeaderboardEntry{PlayerName: "Bob", Percentage: 80, CreatedAt: time.Now()})
	handler := NewLeaderboardHandler(board)

	rec := httptest.NewRecorder()
	handler.ServeBoard(rec, httptest.NewRequest(http.MethodGet, "/leaderboard?q=ali", nil))

	var resp struct {
		Podium []struct {
			Name string `json:"name"`
		} `json:"podium"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Podium) != 1 || resp.Podium[0].Name != "Alice" {
		t.Fatalf("expected only Alice, got %+v", resp.Podium)
	}
}

func TestServeExportSetsAttachmentHeaders(t *testing.T) {
	ctx := context.Background()
	board := app.NewLeaderboard(ctx, memory.NewLeaderboardRepository(), 100)
	handler := NewLeaderboardHandler(board)
	handler.now = func() time.Time { return time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC) }

	rec := httptest.NewRecorder()
	handler.ServeExport(rec, httptest.NewRequest(http.MethodGet, "/leaderboard/export", nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "quizely-leaderboard-2025-08-15.csv") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if body := rec.Body.String(); body != "Rank,Name,Email,Score,Total,Percentage,Time,Date\n" {
		t.Fatalf("expected header-only export for empty board, got %q", body)
	}
}

func TestServeClearEmptiesBoard(t *testing.T) {
	ctx := context.Background()
	board := app.NewLeaderboard(ctx, memory.NewLeaderboardRepository(), 100)
	board.Insert(ctx, domain.LeaderboardEntry{PlayerName: "Alice", Percentage: 90, CreatedAt: time.Now()})
	handler := NewLeaderboardHandler(board)

	rec := httptest.NewRecorder()
	handler.ServeClear(rec, httptest.NewRequest(http.MethodPost, "/leaderboard/clear", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if board.Len() != 0 {
		t.Fatalf("expected board cleared, got %d entries", board.Len())
	}

	rec = httptest.NewRecorder()
	handler.ServeClear(rec, httptest.NewRequest(http.MethodGet, "/leaderboard/clear", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", rec.Code)
	}
}
