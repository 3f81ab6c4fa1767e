// internal/daily/store.go
//
// Daily challenge results.
// Responsibilities:
//   - One result per profile per date (the first completion counts). An
//     abandoned daily is stored as a marker so the day cannot be replayed.
//   - Leaderboard per date and tier: fastest completion first, then most
//     words spelled, then earliest finish. Markers are never ranked.
//
// Results live in the daily_results table created by the store migrations;
// MemoryResults serves tests and STORE=memory.

package daily

import (
	"cmp"
	"context"
	"database/sql"
	"slices"
	"sync"
	"time"

	"github.com/robalobadob/bunny-rescue/internal/difficulty"
)

// DefaultLimit applies when a leaderboard is requested without a limit.
const DefaultLimit = 20

// Result is one finished (or abandoned) daily game.
type Result struct {
	ProfileID      string          `json:"profileId"`
	Nickname       string          `json:"nickname,omitempty"`
	Date           string          `json:"date"`
	Tier           difficulty.Tier `json:"difficulty"`
	Seed           int64           `json:"seed"`
	WordsSpelled   int             `json:"wordsSpelled"`
	BunniesRescued int             `json:"bunniesRescued"`
	ElapsedMs      int64           `json:"elapsedMs"`
	Abandoned      bool            `json:"abandoned,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Results records daily outcomes.
type Results interface {
	AlreadyPlayed(ctx context.Context, profileID, date string) (bool, error)
	// InsertResult is a no-op when the profile already has a result for
	// the date.
	InsertResult(ctx context.Context, r Result) error
	// Leaderboard ranks the completed results of one tier's board.
	Leaderboard(ctx context.Context, date string, tier difficulty.Tier, limit int) ([]Result, error)
}

// less orders leaderboard rows.
func less(a, b Result) int {
	return cmp.Or(
		cmp.Compare(a.ElapsedMs, b.ElapsedMs),
		cmp.Compare(b.WordsSpelled, a.WordsSpelled),
		a.CreatedAt.Compare(b.CreatedAt),
	)
}

// ------------------------------- SQLite -------------------------------------

// Store is the SQLite implementation of Results.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, profileID, date string) (bool, error) {
	var cnt int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE profile_id=? AND date=?`,
		profileID, date,
	).Scan(&cnt); err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO daily_results
            (profile_id, date, tier, seed, words_spelled, bunnies_rescued, elapsed_ms, abandoned)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ProfileID, r.Date, string(r.Tier), r.Seed, r.WordsSpelled, r.BunniesRescued, r.ElapsedMs, r.Abandoned,
	)
	return err
}

func (s *Store) Leaderboard(ctx context.Context, date string, tier difficulty.Tier, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT profile_id, date, tier, seed, words_spelled, bunnies_rescued, elapsed_ms, created_at
        FROM daily_results
        WHERE date=? AND tier=? AND abandoned=0
        ORDER BY elapsed_ms ASC, words_spelled DESC, created_at ASC
        LIMIT ?`, date, string(tier), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var (
			r       Result
			created string
		)
		if err := rows.Scan(&r.ProfileID, &r.Date, &r.Tier, &r.Seed, &r.WordsSpelled, &r.BunniesRescued, &r.ElapsedMs, &created); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ------------------------------- memory -------------------------------------

// MemoryResults keeps results in a map keyed by date then profile.
type MemoryResults struct {
	mu     sync.Mutex
	byDate map[string]map[string]Result
	now    func() time.Time
}

func NewMemoryResults() *MemoryResults {
	return &MemoryResults{byDate: make(map[string]map[string]Result), now: time.Now}
}

func (m *MemoryResults) AlreadyPlayed(ctx context.Context, profileID, date string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byDate[date][profileID]
	return ok, nil
}

func (m *MemoryResults) InsertResult(ctx context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := m.byDate[r.Date]
	if day == nil {
		day = make(map[string]Result)
		m.byDate[r.Date] = day
	}
	if _, ok := day[r.ProfileID]; ok {
		return nil
	}
	r.CreatedAt = m.now().UTC()
	day[r.ProfileID] = r
	return nil
}

func (m *MemoryResults) Leaderboard(ctx context.Context, date string, tier difficulty.Tier, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	m.mu.Lock()
	out := make([]Result, 0, len(m.byDate[date]))
	for _, r := range m.byDate[date] {
		if r.Tier == tier && !r.Abandoned {
			out = append(out, r)
		}
	}
	m.mu.Unlock()

	slices.SortFunc(out, less)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
