package app

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"quizely-service/internal/domain"
)

// EntryRepository abstracts the durable key-value store holding the
// serialized leaderboard (in-memory, Redis, Postgres).
type EntryRepository interface {
	Load(ctx context.Context) ([]domain.LeaderboardEntry, error)
	Save(ctx context.Context, entries []domain.LeaderboardEntry) error
	SetLastPlayer(ctx context.Context, player domain.LastPlayer) error
	LastPlayer(ctx context.Context) (domain.LastPlayer, bool, error)
}

// DefaultCapacity bounds the board at the top 100 entries.
const DefaultCapacity = 100

// Leaderboard is the ranked, append-only collection of past results. It is
// always sorted by the canonical comparator immediately after any mutation,
// and flushed to the repository after every mutation.
type Leaderboard struct {
	repo     EntryRepository
	capacity int
	now      func() time.Time

	mu          sync.RWMutex
	entries     []domain.LeaderboardEntry
	nextKey     int64
	subscribers map[chan []domain.LeaderboardEntry]struct{}
}

// NewLeaderboard loads the persisted board. An unreadable store degrades to
// an empty board with a warning rather than failing startup.
func NewLeaderboard(ctx context.Context, repo EntryRepository, capacity int) *Leaderboard {
	return NewLeaderboardWithClock(ctx, repo, capacity, time.Now)
}

// NewLeaderboardWithClock is test-only for deterministic time windows.
func NewLeaderboardWithClock(ctx context.Context, repo EntryRepository, capacity int, now func() time.Time) *Leaderboard {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	board := &Leaderboard{
		repo:        repo,
		capacity:    capacity,
		now:         now,
		subscribers: make(map[chan []domain.LeaderboardEntry]struct{}),
	}

	entries, err := repo.Load(ctx)
	if err != nil {
		log.Printf("leaderboard: load failed, starting empty: %v", err)
		entries = nil
	}
	board.entries = entries
	for _, entry := range entries {
		if entry.SortKey >= board.nextKey {
			board.nextKey = entry.SortKey + 1
		}
	}
	board.sortLocked()
	return board
}

// Insert appends the entry, re-sorts, truncates to capacity, and flushes.
// The stored entry (with its assigned sort key) is returned.
func (b *Leaderboard) Insert(ctx context.Context, entry domain.LeaderboardEntry) domain.LeaderboardEntry {
	b.mu.Lock()
	entry.SortKey = b.nextKey
	b.nextKey++
	b.entries = append(b.entries, entry)
	b.sortLocked()
	if len(b.entries) > b.capacity {
		b.entries = b.entries[:b.capacity]
	}
	snapshot := b.snapshotLocked()
	b.mu.Unlock()

	b.flush(ctx, snapshot)
	b.broadcast(snapshot)
	return entry
}

// Query applies the time window, then the search text, preserving the
// canonical order. Search matches name or email case-insensitively.
func (b *Leaderboard) Query(window domain.Window, search string) []domain.LeaderboardEntry {
	now := b.now()
	search = strings.ToLower(strings.TrimSpace(search))

	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]domain.LeaderboardEntry, 0, len(b.entries))
	for _, entry := range b.entries {
		if !inWindow(entry.CreatedAt, window, now) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(entry.PlayerName), search) &&
			!strings.Contains(strings.ToLower(entry.PlayerEmail), search) {
			continue
		}
		result = append(result, entry)
	}
	return result
}

// Clear empties the board. Irreversible.
func (b *Leaderboard) Clear(ctx context.Context) {
	b.mu.Lock()
	b.entries = nil
	snapshot := b.snapshotLocked()
	b.mu.Unlock()

	b.flush(ctx, snapshot)
	b.broadcast(snapshot)
}

// Len reports the number of stored entries.
func (b *Leaderboard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// MarkLastPlayer records the just-finished player for row highlighting.
// Failures are non-fatal.
func (b *Leaderboard) MarkLastPlayer(ctx context.Context, player domain.LastPlayer) {
	if err := b.repo.SetLastPlayer(ctx, player); err != nil {
		log.Printf("leaderboard: mark last player failed: %v", err)
	}
}

// LastPlayer returns the highlight marker if one is set.
func (b *Leaderboard) LastPlayer(ctx context.Context) (domain.LastPlayer, bool) {
	player, ok, err := b.repo.LastPlayer(ctx)
	if err != nil {
		log.Printf("leaderboard: read last player failed: %v", err)
		return domain.LastPlayer{}, false
	}
	return player, ok
}

// Subscribe returns a channel receiving the full ranked board after each
// mutation. The caller must invoke cancel to avoid leaks.
func (b *Leaderboard) Subscribe() (<-chan []domain.LeaderboardEntry, func()) {
	ch := make(chan []domain.LeaderboardEntry, 8)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	initial := b.snapshotLocked()
	b.mu.Unlock()

	ch <- initial

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// sortLocked applies the canonical comparator: percentage descending, time
// taken ascending, submission time ascending, then insertion order. The last
// key makes the order total, so sort stability is irrelevant.
func (b *Leaderboard) sortLocked() {
	sort.Slice(b.entries, func(i, j int) bool {
		a, c := b.entries[i], b.entries[j]
		if a.Percentage != c.Percentage {
			return a.Percentage > c.Percentage
		}
		if a.TimeTakenSeconds != c.TimeTakenSeconds {
			return a.TimeTakenSeconds < c.TimeTakenSeconds
		}
		if !a.CreatedAt.Equal(c.CreatedAt) {
			return a.CreatedAt.Before(c.CreatedAt)
		}
		return a.SortKey < c.SortKey
	})
}

func (b *Leaderboard) snapshotLocked() []domain.LeaderboardEntry {
	return append([]domain.LeaderboardEntry(nil), b.entries...)
}

// flush persists the snapshot. A write failure is a warning, never fatal to
// the session that produced the entry.
func (b *Leaderboard) flush(ctx context.Context, snapshot []domain.LeaderboardEntry) {
	if err := b.repo.Save(ctx, snapshot); err != nil {
		log.Printf("leaderboard: save failed: %v", err)
	}
}

func (b *Leaderboard) broadcast(snapshot []domain.LeaderboardEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func inWindow(createdAt time.Time, window domain.Window, now time.Time) bool {
	switch window {
	case domain.WindowToday:
		y1, m1, d1 := createdAt.Local().Date()
		y2, m2, d2 := now.Local().Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case domain.WindowThisWeek:
		return !createdAt.Before(now.Add(-7 * 24 * time.Hour))
	default:
		return true
	}
}
