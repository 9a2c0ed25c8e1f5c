package trivia

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quizely-service/internal/domain"
)

// Loader turns raw records into a playable QuestionSet. Each question gets
// its display order assigned exactly once here; nothing downstream
// re-shuffles.
type Loader struct {
	fetcher Fetcher

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{
		fetcher: fetcher,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewLoaderWithRand is test-only for deterministic shuffles.
func NewLoaderWithRand(fetcher Fetcher, rnd *rand.Rand) *Loader {
	return &Loader{fetcher: fetcher, rnd: rnd}
}

// Load fetches count questions and builds the immutable QuestionSet. A short
// batch is not an error; the session's total is whatever the provider gave.
func (l *Loader) Load(ctx context.Context, count int) (domain.QuestionSet, error) {
	records, err := l.fetcher.Fetch(ctx, count)
	if err != nil {
		return nil, err
	}

	set := make(domain.QuestionSet, 0, len(records))
	for _, rec := range records {
		answers := make([]string, 0, len(rec.IncorrectAnswers)+1)
		answers = append(answers, rec.CorrectAnswer)
		answers = append(answers, rec.IncorrectAnswers...)
		l.shuffle(answers)

		set = append(set, domain.Question{
			Text:             rec.Text,
			CorrectAnswer:    rec.CorrectAnswer,
			IncorrectAnswers: append([]string(nil), rec.IncorrectAnswers...),
			DisplayOrder:     answers,
		})
	}
	return set, nil
}

// shuffle is a Fisher-Yates pass over answers in place.
func (l *Loader) shuffle(answers []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(answers) - 1; i > 0; i-- {
		j := l.rnd.Intn(i + 1)
		answers[i], answers[j] = answers[j], answers[i]
	}
}
