package domain

import "errors"

var (
	// ErrFetchFailed means the trivia provider was unreachable. Retry is a
	// user-initiated action, never automatic.
	ErrFetchFailed = errors.New("trivia provider unreachable")
	// ErrBadFormat means the provider responded but the payload is unusable.
	ErrBadFormat = errors.New("trivia provider returned an unusable payload")
	// ErrNoQuestions means a session cannot start from an empty question set.
	ErrNoQuestions = errors.New("no questions to play")
	// ErrPrematureAdvance means Advance was called before the current
	// question was answered. This indicates a renderer bug, not user input.
	ErrPrematureAdvance = errors.New("advance called before an answer was submitted")
	// ErrSessionFinished means the session is complete and accepts no
	// further submissions or advances.
	ErrSessionFinished = errors.New("session already finished")
	// ErrSessionActive means a result was requested before completion.
	ErrSessionActive = errors.New("session still in progress")
	// ErrInvalidPlayerName rejects names shorter than two characters after trimming.
	ErrInvalidPlayerName = errors.New("player name must be at least 2 characters")
	// ErrInvalidPlayerEmail rejects non-empty emails that do not parse.
	ErrInvalidPlayerEmail = errors.New("player email is not a valid address")
)
