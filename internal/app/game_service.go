package app

import (
	"context"
	"time"

	"quizely-service/internal/domain"
)

// QuestionSource loads a batch of playable questions (from the trivia
// provider, possibly through a cache).
type QuestionSource interface {
	Load(ctx context.Context, count int) (domain.QuestionSet, error)
}

// GameService wires a question source and the leaderboard into the quiz
// use cases.
type GameService struct {
	source        QuestionSource
	board         *Leaderboard
	questionCount int
	now           func() time.Time
}

func NewGameService(source QuestionSource, board *Leaderboard, questionCount int) *GameService {
	return &GameService{
		source:        source,
		board:         board,
		questionCount: questionCount,
		now:           time.Now,
	}
}

// Board exposes the leaderboard for query/export surfaces.
func (g *GameService) Board() *Leaderboard {
	return g.board
}

// Start validates the player, loads a question batch, and begins a session.
// Loader errors propagate untouched; retry is the caller's decision.
func (g *GameService) Start(ctx context.Context, name, email string) (*Session, error) {
	player, err := NewPlayer(name, email)
	if err != nil {
		return nil, err
	}
	questions, err := g.source.Load(ctx, g.questionCount)
	if err != nil {
		return nil, err
	}
	return NewSessionWithClock(player, questions, g.now)
}

// Finish freezes a completed session into a leaderboard entry, inserts it,
// and marks the player for highlighting in the leaderboard view.
func (g *GameService) Finish(ctx context.Context, session *Session) (domain.LeaderboardEntry, error) {
	summary, err := session.Summary()
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}

	now := g.now()
	entry := g.board.Insert(ctx, NewEntry(summary, now))
	g.board.MarkLastPlayer(ctx, domain.LastPlayer{
		Name:       summary.Player.Name,
		FinishedAt: now,
	})
	return entry, nil
}
