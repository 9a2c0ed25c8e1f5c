package app

import (
	"sync"
	"time"

	"quizely-service/internal/domain"
)

// EventType tags the notifications a renderer can subscribe to.
type EventType string

const (
	EventQuestionPresented EventType = "questionPresented"
	EventAnswerResolved    EventType = "answerResolved"
	EventSessionComplete   EventType = "sessionComplete"
)

// QuestionView is the renderer-facing shape of the current question. The
// correct answer is deliberately absent.
type QuestionView struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Text    string   `json:"text"`
	Answers []string `json:"answers"`
}

// AnswerOutcome reports how a submission resolved.
type AnswerOutcome struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	Selected      string `json:"selected"`
	Score         int    `json:"score"`
}

// Event is one notification emitted by a session. Exactly one payload field
// is set, matching Type.
type Event struct {
	Type     EventType       `json:"type"`
	Question *QuestionView   `json:"question,omitempty"`
	Answer   *AnswerOutcome  `json:"answer,omitempty"`
	Summary  *domain.Summary `json:"summary,omitempty"`
}

// Session is the state machine for one play-through. The loading phase is the
// time before construction: a session only exists once a non-empty question
// set has been fetched. Mutations happen in response to discrete renderer
// events; the lock flag keeps a replayed submit from double-counting.
type Session struct {
	player    domain.Player
	questions domain.QuestionSet
	now       func() time.Time

	mu          sync.Mutex
	index       int
	score       int
	locked      bool
	outcome     AnswerOutcome
	startedAt   time.Time
	endedAt     time.Time
	complete    bool
	subscribers map[chan Event]struct{}
}

// NewSession transitions loading -> in progress, stamping the start time.
// An empty question set fails with ErrNoQuestions and never starts.
func NewSession(player domain.Player, questions domain.QuestionSet) (*Session, error) {
	return NewSessionWithClock(player, questions, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(player domain.Player, questions domain.QuestionSet, now func() time.Time) (*Session, error) {
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return &Session{
		player:      player,
		questions:   questions,
		now:         now,
		startedAt:   now(),
		subscribers: make(map[chan Event]struct{}),
	}, nil
}

// Player returns the identity the session was started with.
func (s *Session) Player() domain.Player {
	return s.player
}

// Current returns the renderer view of the current question, or false once
// the session is complete.
func (s *Session) Current() (QuestionView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.complete {
		return QuestionView{}, false
	}
	return s.viewLocked(), true
}

// Submit records an answer for the current question. A second submit while
// the question is locked is ignored and returns the first outcome unchanged;
// submitting after completion fails with ErrSessionFinished.
func (s *Session) Submit(answer string) (AnswerOutcome, error) {
	s.mu.Lock()
	if s.complete {
		s.mu.Unlock()
		return AnswerOutcome{}, domain.ErrSessionFinished
	}
	if s.locked {
		outcome := s.outcome
		s.mu.Unlock()
		return outcome, nil
	}

	question := s.questions[s.index]
	s.locked = true
	correct := answer == question.CorrectAnswer
	if correct {
		s.score++
	}
	s.outcome = AnswerOutcome{
		Correct:       correct,
		CorrectAnswer: question.CorrectAnswer,
		Selected:      answer,
		Score:         s.score,
	}
	outcome := s.outcome
	event := Event{Type: EventAnswerResolved, Answer: &outcome}
	s.broadcastLocked(event)
	s.mu.Unlock()
	return outcome, nil
}

// Advance moves to the next question, or to completion after the last one.
// Advancing an unanswered question fails with ErrPrematureAdvance.
func (s *Session) Advance() error {
	s.mu.Lock()
	if s.complete {
		s.mu.Unlock()
		return domain.ErrSessionFinished
	}
	if !s.locked {
		s.mu.Unlock()
		return domain.ErrPrematureAdvance
	}

	s.index++
	s.locked = false
	s.outcome = AnswerOutcome{}

	var event Event
	if s.index == len(s.questions) {
		s.complete = true
		s.endedAt = s.now()
		summary := s.summaryLocked()
		event = Event{Type: EventSessionComplete, Summary: &summary}
	} else {
		view := s.viewLocked()
		event = Event{Type: EventQuestionPresented, Question: &view}
	}
	s.broadcastLocked(event)
	s.mu.Unlock()
	return nil
}

// Complete reports whether the session has reached its terminal state.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// Score returns the running score.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Summary derives the display-ready result. It fails with ErrSessionActive
// until the session is complete.
func (s *Session) Summary() (domain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.complete {
		return domain.Summary{}, domain.ErrSessionActive
	}
	return s.summaryLocked(), nil
}

// Subscribe returns a channel receiving session events. The caller must
// invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) viewLocked() QuestionView {
	question := s.questions[s.index]
	return QuestionView{
		Index:   s.index,
		Total:   len(s.questions),
		Text:    question.Text,
		Answers: append([]string(nil), question.DisplayOrder...),
	}
}

func (s *Session) summaryLocked() domain.Summary {
	total := len(s.questions)
	percentage := Percentage(s.score, total)
	seconds := DurationSeconds(s.startedAt, s.endedAt)
	return domain.Summary{
		Player:           s.player,
		Score:            s.score,
		TotalQuestions:   total,
		Percentage:       percentage,
		Tier:             TierFor(percentage),
		TimeTakenSeconds: seconds,
		TimeTaken:        FormatDuration(seconds),
	}
}

func (s *Session) broadcastLocked(event Event) {
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// drop the oldest update rather than block the dispatcher
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}
