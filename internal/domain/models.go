package domain

import "time"

// Question is one multiple-choice prompt with its fixed display order.
// DisplayOrder is a permutation of the correct answer plus the incorrect
// answers, shuffled once at load time and never re-shuffled.
type Question struct {
	Text             string   `json:"text"`
	CorrectAnswer    string   `json:"correctAnswer"`
	IncorrectAnswers []string `json:"incorrectAnswers"`
	DisplayOrder     []string `json:"displayOrder"`
}

// QuestionSet is the immutable batch of questions backing one play-through.
type QuestionSet []Question

// Player identifies who is playing a session. Email may be empty.
type Player struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RankTier is a coarse display label derived from the percentage score.
type RankTier string

const (
	TierNovice      RankTier = "novice"
	TierApprentice  RankTier = "apprentice"
	TierElite       RankTier = "elite"
	TierMaster      RankTier = "master"
	TierGrandmaster RankTier = "grandmaster"
)

// Summary is the display-ready view of a finished session.
type Summary struct {
	Player           Player   `json:"player"`
	Score            int      `json:"score"`
	TotalQuestions   int      `json:"totalQuestions"`
	Percentage       int      `json:"percentage"`
	Tier             RankTier `json:"tier"`
	TimeTakenSeconds int      `json:"timeTakenSeconds"`
	TimeTaken        string   `json:"timeTaken"` // MM:SS
}

// LeaderboardEntry is one persisted result. Entries are append-only history:
// they are never mutated after insertion.
type LeaderboardEntry struct {
	PlayerName       string    `json:"name"`
	PlayerEmail      string    `json:"email"`
	Score            int       `json:"score"`
	TotalQuestions   int       `json:"totalQuestions"`
	Percentage       int       `json:"percentage"`
	TimeTakenSeconds int       `json:"timeTaken"`
	Tier             RankTier  `json:"tier"`
	CreatedAt        time.Time `json:"createdAt"`
	// SortKey is a monotonic insertion marker; it makes the canonical
	// comparator a total order even when CreatedAt collides.
	SortKey int64 `json:"sortKey"`
}

// LastPlayer marks who just finished, for row highlighting only. It carries
// no uniqueness constraint and is not part of the ranking data.
type LastPlayer struct {
	Name       string    `json:"name"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Window selects the time span a leaderboard query covers.
type Window string

const (
	WindowAll      Window = "all"
	WindowToday    Window = "today"
	WindowThisWeek Window = "week"
)
