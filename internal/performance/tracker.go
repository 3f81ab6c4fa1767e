// internal/performance/tracker.go
//
// Per-word attempt statistics.
// The tracker is seeded from a profile's saved map, updated after every
// submission and written back to the profile when a session ends. Mastered
// words are pushed to the back of the selection order.

package performance

import (
	"strings"
	"time"
)

// masteryMinAttempts and masteryMaxMissRatio define when a word is mastered.
const (
	masteryMinAttempts  = 3
	masteryMaxMissRatio = 0.2
)

// WordPerformance is the running record for one word.
type WordPerformance struct {
	Word             string    `json:"word"`
	Attempts         int       `json:"attempts"`
	LetterMistakes   int       `json:"letterMistakes"`
	IncorrectSubmits int       `json:"incorrectSubmits"`
	TimeToCorrectMs  int64     `json:"timeToCorrect"` // latest attempt, not an average
	Mastered         bool      `json:"mastered"`      // sticky once set
	LastAttempt      time.Time `json:"lastAttempt"`
}

// Tracker aggregates WordPerformance keyed by lowercase word.
// Not safe for concurrent use.
type Tracker struct {
	perf map[string]*WordPerformance
	now  func() time.Time
}

// New returns a tracker seeded with a copy of initial.
func New(initial map[string]WordPerformance) *Tracker {
	t := &Tracker{perf: make(map[string]*WordPerformance, len(initial)), now: time.Now}
	for k, v := range initial {
		v := v
		t.perf[strings.ToLower(k)] = &v
	}
	return t
}

// WithClock replaces the time source. Used by tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// RecordAttempt upserts the record for word.
func (t *Tracker) RecordAttempt(word string, success bool, letterMistakes int, elapsed time.Duration) {
	key := strings.ToLower(word)
	p, ok := t.perf[key]
	if !ok {
		p = &WordPerformance{Word: word}
		if !success {
			p.IncorrectSubmits = 1
		}
		p.Attempts = 1
		p.LetterMistakes = letterMistakes
		p.TimeToCorrectMs = elapsed.Milliseconds()
		p.LastAttempt = t.now()
		t.perf[key] = p
		return
	}

	p.Attempts++
	p.LetterMistakes += letterMistakes
	if !success {
		p.IncorrectSubmits++
	}
	p.TimeToCorrectMs = elapsed.Milliseconds()
	p.LastAttempt = t.now()

	if success && p.Attempts >= masteryMinAttempts &&
		float64(p.IncorrectSubmits)/float64(p.Attempts) < masteryMaxMissRatio {
		p.Mastered = true
	}
}

// Performance returns a copy of the record for word.
func (t *Tracker) Performance(word string) (WordPerformance, bool) {
	p, ok := t.perf[strings.ToLower(word)]
	if !ok {
		return WordPerformance{}, false
	}
	return *p, true
}

// IsMastered reports whether word has been mastered.
func (t *Tracker) IsMastered(word string) bool {
	p, ok := t.perf[strings.ToLower(word)]
	return ok && p.Mastered
}

// All returns a copy of every record, for persisting to the profile.
func (t *Tracker) All() map[string]WordPerformance {
	out := make(map[string]WordPerformance, len(t.perf))
	for k, p := range t.perf {
		out[k] = *p
	}
	return out
}

// Accuracy is the percentage of attempts that were not incorrect submits,
// or 0 with no data.
func (t *Tracker) Accuracy() float64 {
	var attempts, incorrect int
	for _, p := range t.perf {
		attempts += p.Attempts
		incorrect += p.IncorrectSubmits
	}
	if attempts == 0 {
		return 0
	}
	return float64(attempts-incorrect) / float64(attempts) * 100
}

// MasteredCount counts mastered words.
func (t *Tracker) MasteredCount() int {
	n := 0
	for _, p := range t.perf {
		if p.Mastered {
			n++
		}
	}
	return n
}
