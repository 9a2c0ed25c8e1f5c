package app

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"

	"quizely-service/internal/domain"
)

// Percentage computes the integer score percentage, rounding half-up.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}

// TierFor maps a percentage to its rank tier. Thresholds are evaluated
// top-down, first match wins: 90/80/70/60.
func TierFor(percentage int) domain.RankTier {
	switch {
	case percentage >= 90:
		return domain.TierGrandmaster
	case percentage >= 80:
		return domain.TierMaster
	case percentage >= 70:
		return domain.TierElite
	case percentage >= 60:
		return domain.TierApprentice
	default:
		return domain.TierNovice
	}
}

// DurationSeconds is the whole seconds between start and end, fraction
// discarded.
func DurationSeconds(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start) / time.Second)
}

// FormatDuration renders whole seconds as zero-padded MM:SS. Durations are
// assumed shorter than an hour; there is no hour rollover.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// NewPlayer validates and normalizes a player identity. Names need at least
// two characters after trimming; emails are optional but must parse when set.
func NewPlayer(name, email string) (domain.Player, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return domain.Player{}, domain.ErrInvalidPlayerName
	}
	email = strings.TrimSpace(email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return domain.Player{}, domain.ErrInvalidPlayerEmail
		}
	}
	return domain.Player{Name: name, Email: email}, nil
}

// NewEntry freezes a finished session's summary into an immutable
// leaderboard entry. The sort key is assigned by the leaderboard on insert.
func NewEntry(summary domain.Summary, createdAt time.Time) domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		PlayerName:       summary.Player.Name,
		PlayerEmail:      summary.Player.Email,
		Score:            summary.Score,
		TotalQuestions:   summary.TotalQuestions,
		Percentage:       summary.Percentage,
		TimeTakenSeconds: summary.TimeTakenSeconds,
		Tier:             summary.Tier,
		CreatedAt:        createdAt,
	}
}
