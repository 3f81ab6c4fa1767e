// internal/difficulty/difficulty.go
//
// Static difficulty tables.
// Each tier fixes the grid size, the mistake budgets, the round shape
// (words per round, timer, shuffle cadence) and the consequence policies
// the engine applies. Tables are read-only at runtime; Override swaps the
// whole table once at startup.

package difficulty

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// Tier is a named difficulty bracket.
type Tier string

const (
	Sprout   Tier = "Sprout"
	Explorer Tier = "Explorer"
	Ranger   Tier = "Ranger"
	Guardian Tier = "Guardian"
)

// Tiers lists every tier from easiest to hardest.
var Tiers = []Tier{Sprout, Explorer, Ranger, Guardian}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool { return slices.Contains(Tiers, t) }

// Grade is a school grade.
type Grade string

const (
	GradePreK Grade = "PreK"
	GradeK    Grade = "K"
	Grade1    Grade = "1"
	Grade2    Grade = "2"
	Grade3    Grade = "3"
	Grade4    Grade = "4"
	Grade5    Grade = "5"
	Grade6    Grade = "6"
	Grade7    Grade = "7"
	Grade8    Grade = "8"
)

// Grades lists every grade in order.
var Grades = []Grade{GradePreK, GradeK, Grade1, Grade2, Grade3, Grade4, Grade5, Grade6, Grade7, Grade8}

// Valid reports whether g is a known grade.
func (g Grade) Valid() bool { return slices.Contains(Grades, g) }

// FocusZeroPolicy is what happens when the focus budget runs out.
type FocusZeroPolicy int

const (
	EndTurn FocusZeroPolicy = iota
	EndTurnResetStreak
	EndTurnDisableHint
	EndTurnLoseMultiplier
)

// IncorrectSubmitPolicy is what happens after a wrong single-word submit.
type IncorrectSubmitPolicy int

const (
	AddToReview IncorrectSubmitPolicy = iota
	ImmediateReset
	RequireRetry
	BlockProgress
)

// IncorrectLetterPolicy is the extra penalty for a wrong letter.
type IncorrectLetterPolicy int

const (
	NoLetterPenalty IncorrectLetterPolicy = iota
	LockTile
)

// Consequences bundles a tier's penalty policies.
type Consequences struct {
	OnFocusZero       FocusZeroPolicy       `json:"onFocusZero" yaml:"onFocusZero"`
	OnIncorrectSubmit IncorrectSubmitPolicy `json:"onIncorrectSubmit" yaml:"onIncorrectSubmit"`
	OnIncorrectLetter IncorrectLetterPolicy `json:"onIncorrectLetter" yaml:"onIncorrectLetter"`
}

// Config is the immutable parameter set for one tier.
type Config struct {
	Tier            Tier          `json:"tier" yaml:"tier"`
	Grades          []Grade       `json:"grades" yaml:"grades"`
	GridSize        int           `json:"gridSize" yaml:"gridSize"`
	FocusBudget     int           `json:"focusBudget" yaml:"focusBudget"`
	GentleMode      bool          `json:"gentleMode" yaml:"gentleMode"`
	AllowRetry      bool          `json:"allowRetry" yaml:"allowRetry"`
	TimerDuration   time.Duration `json:"timerDuration" yaml:"timerDuration"`     // 0 disables the round timer
	ShuffleInterval time.Duration `json:"shuffleInterval" yaml:"shuffleInterval"` // 0 disables board shuffles
	WordsPerRound   int           `json:"wordsPerRound" yaml:"wordsPerRound"`     // >1 selects multi-word rounds
	MaxStrikes      int           `json:"maxStrikes" yaml:"maxStrikes"`
	Consequences    Consequences  `json:"consequences" yaml:"consequences"`
}

// MultiWord reports whether the tier plays multi-word rounds by default.
func (c Config) MultiWord() bool { return c.WordsPerRound > 1 }

// Timed reports whether rounds run against a clock.
func (c Config) Timed() bool { return c.TimerDuration > 0 }

// Validate checks the invariants the engine relies on.
func (c Config) Validate() error {
	switch {
	case !c.Tier.Valid():
		return fmt.Errorf("difficulty: unknown tier %q", c.Tier)
	case c.GridSize < 1:
		return fmt.Errorf("difficulty: %s: gridSize must be positive", c.Tier)
	case c.FocusBudget < 1:
		return fmt.Errorf("difficulty: %s: focusBudget must be positive", c.Tier)
	case c.WordsPerRound < 1:
		return fmt.Errorf("difficulty: %s: wordsPerRound must be positive", c.Tier)
	case c.MaxStrikes < 1:
		return fmt.Errorf("difficulty: %s: maxStrikes must be positive", c.Tier)
	case c.TimerDuration < 0 || c.ShuffleInterval < 0:
		return fmt.Errorf("difficulty: %s: durations must not be negative", c.Tier)
	}
	for _, g := range c.Grades {
		if !g.Valid() {
			return fmt.Errorf("difficulty: %s: unknown grade %q", c.Tier, g)
		}
	}
	return nil
}

var defaults = map[Tier]Config{
	Sprout: {
		Tier:          Sprout,
		Grades:        []Grade{GradePreK, GradeK},
		GridSize:      4,
		FocusBudget:   999, // effectively unlimited for young kids
		GentleMode:    true,
		AllowRetry:    true,
		WordsPerRound: 1,
		MaxStrikes:    3,
		Consequences: Consequences{
			OnFocusZero:       EndTurn,
			OnIncorrectSubmit: AddToReview,
		},
	},
	Explorer: {
		Tier:          Explorer,
		Grades:        []Grade{Grade1, Grade2},
		GridSize:      5,
		FocusBudget:   3,
		WordsPerRound: 1,
		MaxStrikes:    3,
		Consequences: Consequences{
			OnFocusZero:       EndTurnResetStreak,
			OnIncorrectSubmit: ImmediateReset,
		},
	},
	Ranger: {
		Tier:            Ranger,
		Grades:          []Grade{Grade3, Grade4, Grade5},
		GridSize:        6,
		FocusBudget:     3,
		AllowRetry:      true,
		TimerDuration:   90 * time.Second,
		ShuffleInterval: 30 * time.Second,
		WordsPerRound:   3,
		MaxStrikes:      3,
		Consequences: Consequences{
			OnFocusZero:       EndTurnDisableHint,
			OnIncorrectSubmit: RequireRetry,
		},
	},
	Guardian: {
		Tier:            Guardian,
		Grades:          []Grade{Grade6, Grade7, Grade8},
		GridSize:        7,
		FocusBudget:     2,
		TimerDuration:   60 * time.Second,
		ShuffleInterval: 20 * time.Second,
		WordsPerRound:   4,
		MaxStrikes:      3,
		Consequences: Consequences{
			OnFocusZero:       EndTurnLoseMultiplier,
			OnIncorrectSubmit: BlockProgress,
			OnIncorrectLetter: LockTile,
		},
	},
}

var (
	mu    sync.RWMutex
	table = defaults
)

// For returns the config of tier t. ok is false for unknown tiers.
func For(t Tier) (Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := table[t]
	if ok {
		c.Grades = slices.Clone(c.Grades)
	}
	return c, ok
}

// MustFor is For for tiers known to be valid; it panics otherwise.
func MustFor(t Tier) Config {
	c, ok := For(t)
	if !ok {
		panic(fmt.Sprintf("difficulty: unknown tier %q", t))
	}
	return c
}

// All returns every config in tier order.
func All() []Config {
	out := make([]Config, 0, len(Tiers))
	for _, t := range Tiers {
		if c, ok := For(t); ok {
			out = append(out, c)
		}
	}
	return out
}

// ForGrade maps a grade to its tier, falling back to Explorer.
func ForGrade(g Grade) Tier {
	for _, c := range All() {
		if slices.Contains(c.Grades, g) {
			return c.Tier
		}
	}
	return Explorer
}

// Override replaces the table. Every tier must be present and valid.
// Call it once during startup, before any session exists.
func Override(configs []Config) error {
	next := make(map[Tier]Config, len(configs))
	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return err
		}
		if _, dup := next[c.Tier]; dup {
			return fmt.Errorf("difficulty: tier %s defined twice", c.Tier)
		}
		next[c.Tier] = c
	}
	for _, t := range Tiers {
		if _, ok := next[t]; !ok {
			return fmt.Errorf("difficulty: tier %s missing", t)
		}
	}
	mu.Lock()
	table = next
	mu.Unlock()
	return nil
}

// Restore puts the built-in table back. Intended for tests.
func Restore() {
	mu.Lock()
	table = defaults
	mu.Unlock()
}
