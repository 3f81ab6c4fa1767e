package daily

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/bunny-rescue/internal/difficulty"
	"github.com/robalobadob/bunny-rescue/internal/store"
)

func TestDateKey(t *testing.T) {
	tz := time.FixedZone("NZDT", 13*3600)
	// 08:00 on the 17th in Auckland is still the 16th in UTC.
	if got := DateKey(time.Date(2026, 10, 17, 8, 0, 0, 0, tz)); got != "2026-10-16" {
		t.Errorf("DateKey = %s", got)
	}
}

func TestSeed(t *testing.T) {
	morning := time.Date(2026, 10, 16, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 10, 16, 23, 59, 0, 0, time.UTC)
	tomorrow := morning.AddDate(0, 0, 1)

	a := Seed(morning, "salt")
	if a < 0 || a >= MaxSeed {
		t.Fatalf("seed %d out of range", a)
	}
	if b := Seed(evening, "salt"); a != b {
		t.Errorf("same day, different seeds: %d vs %d", a, b)
	}
	if c := SeedForKey("2026-10-16", "salt"); a != c {
		t.Errorf("SeedForKey = %d, Seed = %d", c, a)
	}
	if Seed(tomorrow, "salt") == a && Seed(morning, "other") == a {
		t.Error("seed ignores both date and salt")
	}
}

func backends(t *testing.T, fn func(t *testing.T, r Results, tick func())) {
	t.Run("memory", func(t *testing.T) {
		m := NewMemoryResults()
		now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
		m.now = func() time.Time { return now }
		fn(t, m, func() { now = now.Add(time.Second) })
	})
	t.Run("sqlite", func(t *testing.T) {
		db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "daily.db"))
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		// created_at has millisecond resolution
		fn(t, NewStore(db), func() { time.Sleep(5 * time.Millisecond) })
	})
}

func TestResults(t *testing.T) {
	backends(t, func(t *testing.T, r Results, tick func()) {
		ctx := context.Background()
		date := "2026-10-16"

		ex := difficulty.Explorer
		inserts := []Result{
			{ProfileID: "slow", Date: date, Tier: ex, Seed: 7, WordsSpelled: 5, BunniesRescued: 4, ElapsedMs: 90_000},
			{ProfileID: "fast", Date: date, Tier: ex, Seed: 7, WordsSpelled: 4, BunniesRescued: 4, ElapsedMs: 30_000},
			{ProfileID: "tie-more-words", Date: date, Tier: ex, Seed: 7, WordsSpelled: 6, BunniesRescued: 4, ElapsedMs: 60_000},
			{ProfileID: "tie-fewer-words", Date: date, Tier: ex, Seed: 7, WordsSpelled: 3, BunniesRescued: 4, ElapsedMs: 60_000},
			{ProfileID: "yesterday", Date: "2026-10-15", Tier: ex, Seed: 3, WordsSpelled: 9, BunniesRescued: 4, ElapsedMs: 1},
			{ProfileID: "other-board", Date: date, Tier: difficulty.Guardian, Seed: 7, WordsSpelled: 2, BunniesRescued: 12, ElapsedMs: 10},
			{ProfileID: "quitter", Date: date, Tier: ex, Seed: 7, Abandoned: true},
		}
		for _, in := range inserts {
			if err := r.InsertResult(ctx, in); err != nil {
				t.Fatalf("InsertResult(%s): %v", in.ProfileID, err)
			}
			tick()
		}

		// a second completion on the same day does not replace the first
		if err := r.InsertResult(ctx, Result{ProfileID: "slow", Date: date, Tier: ex, ElapsedMs: 1}); err != nil {
			t.Fatalf("duplicate insert: %v", err)
		}

		played, err := r.AlreadyPlayed(ctx, "fast", date)
		if err != nil || !played {
			t.Errorf("AlreadyPlayed(fast) = %v, %v", played, err)
		}
		if played, _ := r.AlreadyPlayed(ctx, "fast", "2026-10-15"); played {
			t.Error("AlreadyPlayed leaked across dates")
		}

		if played, _ := r.AlreadyPlayed(ctx, "quitter", date); !played {
			t.Error("an abandoned daily does not count as played")
		}

		top, err := r.Leaderboard(ctx, date, ex, 0)
		if err != nil {
			t.Fatalf("Leaderboard: %v", err)
		}
		want := []string{"fast", "tie-more-words", "tie-fewer-words", "slow"}
		if len(top) != len(want) {
			t.Fatalf("leaderboard = %+v", top)
		}
		for i, id := range want {
			if top[i].ProfileID != id {
				t.Errorf("rank %d = %s, want %s", i+1, top[i].ProfileID, id)
			}
		}
		if top[3].ElapsedMs != 90_000 || top[0].Seed != 7 || top[0].Tier != ex {
			t.Errorf("stored values = %+v", top)
		}

		if two, _ := r.Leaderboard(ctx, date, ex, 2); len(two) != 2 {
			t.Errorf("limit ignored: %d rows", len(two))
		}
		guardian, err := r.Leaderboard(ctx, date, difficulty.Guardian, 0)
		if err != nil || len(guardian) != 1 || guardian[0].ProfileID != "other-board" {
			t.Errorf("guardian board = %+v, %v", guardian, err)
		}
	})
}
