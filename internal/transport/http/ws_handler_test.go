package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quizely-service/internal/app"
	"quizely-service/internal/domain"
	"quizely-service/internal/infra/memory"
)

type staticSource struct {
	set domain.QuestionSet
}

func (s *staticSource) Load(_ context.Context, _ int) (domain.QuestionSet, error) {
	return s.set, nil
}

func TestWebSocketPlayThrough(t *testing.T) {
	board := app.NewLeaderboard(context.Background(), memory.NewLeaderboardRepository(), 100)
	service := app.NewGameService(&staticSource{set: sampleQuestions()}, board, 1)
	handler := NewGameHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?name=Alice&email=alice@example.com"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// First frame presents the opening question.
	typ, payload := readNext(conn, t, "question")
	if typ != "question" || payload["text"] != "What is 2 + 2?" {
		t.Fatalf("expected opening question, got %s %+v", typ, payload)
	}

	if err := conn.WriteJSON(map[string]any{
		"type":    "answer",
		"payload": map[string]any{"answer": "4"},
	}); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	typ, payload = readNext(conn, t, "answerResult")
	if typ != "answerResult" || payload["correct"] != true {
		t.Fatalf("expected correct answerResult, got %s %+v", typ, payload)
	}

	if err := conn.WriteJSON(map[string]any{"type": "advance"}); err != nil {
		t.Fatalf("write advance: %v", err)
	}

	// Completion frame and the updated leaderboard follow.
	completeSeen := false
	leaderboardSeen := false
	for i := 0; i < 3; i++ {
		typ, _ = readNext(conn, t, "")
		switch typ {
		case "complete":
			completeSeen = true
		case "leaderboard":
			leaderboardSeen = true
		}
		if completeSeen && leaderboardSeen {
			break
		}
	}
	if !completeSeen || !leaderboardSeen {
		t.Fatalf("expected complete and leaderboard frames, got complete=%v leaderboard=%v",
			completeSeen, leaderboardSeen)
	}

	if board.Len() != 1 {
		t.Fatalf("expected entry persisted after play-through, got %d", board.Len())
	}
}

func TestAdvanceBeforeAnswerYieldsErrorFrame(t *testing.T) {
	board := app.NewLeaderboard(context.Background(), memory.NewLeaderboardRepository(), 100)
	service := app.NewGameService(&staticSource{set: sampleQuestions()}, board, 1)
	handler := NewGameHandler(service)

	server := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "?name=Alice"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "question")

	if err := conn.WriteJSON(map[string]any{"type": "advance"}); err != nil {
		t.Fatalf("write advance: %v", err)
	}
	_, payload := readNext(conn, t, "error")
	if payload["message"] != domain.ErrPrematureAdvance.Error() {
		t.Fatalf("unexpected error payload %+v", payload)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func sampleQuestions() domain.QuestionSet {
	return domain.QuestionSet{
		{
			Text:             "What is 2 + 2?",
			CorrectAnswer:    "4",
			IncorrectAnswers: []string{"3", "5"},
			DisplayOrder:     []string{"3", "4", "5"},
		},
	}
}
