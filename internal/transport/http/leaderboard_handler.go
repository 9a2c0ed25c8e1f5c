package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"quizely-service/internal/app"
	"quizely-service/internal/domain"
	"quizely-service/internal/export"
)

// LeaderboardHandler serves the ranked board, its CSV export, and the clear
// action.
type LeaderboardHandler struct {
	board *app.Leaderboard
	now   func() time.Time
}

func NewLeaderboardHandler(board *app.Leaderboard) *LeaderboardHandler {
	return &LeaderboardHandler{board: board, now: time.Now}
}

type rankedEntry struct {
	Rank int `json:"rank"`
	domain.LeaderboardEntry
}

type leaderboardResponse struct {
	Podium     []rankedEntry      `json:"podium"`
	Entries    []rankedEntry      `json:"entries"`
	LastPlayer *domain.LastPlayer `json:"lastPlayer,omitempty"`
}

// ServeBoard answers GET /leaderboard?window=all|today|week&q=search.
// Ranks 1-3 are split into the podium; the split is presentational, the
// underlying order is one sequence.
func (h *LeaderboardHandler) ServeBoard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	window := parseWindow(r.URL.Query().Get("window"))
	entries := h.board.Query(window, r.URL.Query().Get("q"))

	ranked := make([]rankedEntry, 0, len(entries))
	for i, entry := range entries {
		ranked = append(ranked, rankedEntry{Rank: i + 1, LeaderboardEntry: entry})
	}
	split := len(ranked)
	if split > 3 {
		split = 3
	}

	resp := leaderboardResponse{
		Podium:  ranked[:split],
		Entries: ranked[split:],
	}
	if player, ok := h.board.LastPlayer(r.Context()); ok {
		resp.LastPlayer = &player
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// ServeExport answers GET /leaderboard/export with a CSV attachment. The
// same window/search parameters apply, so a filtered view exports as shown.
func (h *LeaderboardHandler) ServeExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	window := parseWindow(r.URL.Query().Get("window"))
	entries := h.board.Query(window, r.URL.Query().Get("q"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(h.now())))
	_, _ = w.Write([]byte(export.ToCSV(entries)))
}

// ServeClear answers POST /leaderboard/clear. Irreversible.
func (h *LeaderboardHandler) ServeClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.board.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func parseWindow(raw string) domain.Window {
	switch domain.Window(raw) {
	case domain.WindowToday:
		return domain.WindowToday
	case domain.WindowThisWeek:
		return domain.WindowThisWeek
	default:
		return domain.WindowAll
	}
}
