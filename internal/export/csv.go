// Package export serializes the leaderboard to a portable delimited text
// payload.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"quizely-service/internal/app"
	"quizely-service/internal/domain"
)

// header is the fixed column order. Rank is the 1-based position in the
// given sequence, not a stored field.
var header = []string{"Rank", "Name", "Email", "Score", "Total", "Percentage", "Time", "Date"}

// ToCSV renders entries in their given order. String fields are always
// quote-wrapped with embedded quotes doubled; numeric fields are bare. An
// empty input yields a header-only payload.
func ToCSV(entries []domain.LeaderboardEntry) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(header, ","))
	sb.WriteByte('\n')

	for i, entry := range entries {
		row := []string{
			strconv.Itoa(i + 1),
			quote(entry.PlayerName),
			quote(entry.PlayerEmail),
			strconv.Itoa(entry.Score),
			strconv.Itoa(entry.TotalQuestions),
			strconv.Itoa(entry.Percentage),
			quote(app.FormatDuration(entry.TimeTakenSeconds)),
			quote(entry.CreatedAt.Format("2006-01-02")),
		}
		sb.WriteString(strings.Join(row, ","))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Filename follows the download convention quizely-leaderboard-<ISO date>.csv.
func Filename(now time.Time) string {
	return fmt.Sprintf("quizely-leaderboard-%s.csv", now.Format("2006-01-02"))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
