// internal/game/controller.go
//
// Controller drives one session from start to completion.
// Responsibilities:
//   - Build the session: board, traps, word selector, review basket and
//     one performance tracker per player.
//   - Apply engine verdicts to the session (letters, focus, strikes,
//     locked tiles, found words, rescues, stats).
//   - Run turns and rounds: next word after a turn ends, a fresh board and
//     target words after a multi-word round ends.
//   - Advance timers on Tick. The controller never starts a timer itself;
//     an external scheduler calls Tick.
//
// A Controller is not safe for concurrent use. Callers serving several
// goroutines must guard it (the HTTP layer holds one mutex per controller).

package game

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/bunny-rescue/internal/board"
	"github.com/robalobadob/bunny-rescue/internal/difficulty"
	"github.com/robalobadob/bunny-rescue/internal/performance"
	"github.com/robalobadob/bunny-rescue/internal/review"
	"github.com/robalobadob/bunny-rescue/internal/rng"
	"github.com/robalobadob/bunny-rescue/internal/words"
)

var (
	ErrCompleted   = errors.New("game: session is completed")
	ErrNoTile      = errors.New("game: no tile at that position")
	ErrNoWords     = errors.New("game: word list is empty")
	ErrNoProfile   = errors.New("game: session needs at least one profile")
	ErrUnknownTier = errors.New("game: unknown difficulty tier")
)

// ModeChoice overrides the tier's default round shape.
type ModeChoice string

const (
	ModeDefault ModeChoice = ""
	ModeSingle  ModeChoice = "single"
	ModeMulti   ModeChoice = "multi"
)

// defaultWordsPerRound applies when multi-word play is forced on a tier
// configured for one word per round.
const defaultWordsPerRound = 3

// maxBoardSeed bounds the seeds drawn for the boards of later rounds.
const maxBoardSeed = 1_000_000

// Options configures Start.
type Options struct {
	ID         string // generated when empty
	ProfileIDs []string
	Tier       difficulty.Tier // derived from Grade when empty
	Grade      difficulty.Grade
	Words      []string
	Mode       ModeChoice
	Seed       *int64 // random when nil
	DailyKey   string
	// Performance seeds each player's tracker, usually from the profiles.
	Performance PlayerPerformance
	Clock       func() time.Time
}

// PlayerPerformance maps profile ids to their per-word records.
type PlayerPerformance map[string]map[string]performance.WordPerformance

// Outcome reports what one controller action did.
type Outcome struct {
	Message       string        `json:"message,omitempty"`
	Validation    *Validation   `json:"validation,omitempty"`
	Submit        *SubmitResult `json:"submit,omitempty"`
	TurnEnded     bool          `json:"turnEnded,omitempty"`
	RoundComplete bool          `json:"roundComplete,omitempty"`
	NewRound      bool          `json:"newRound,omitempty"`
	TimeUp        bool          `json:"timeUp,omitempty"`
	Shuffled      bool          `json:"shuffled,omitempty"`
	Won           bool          `json:"won,omitempty"`
}

// Hint points at the next letter of a word still in play.
type Hint struct {
	Letter string           `json:"letter"`
	Tiles  []board.Position `json:"tiles"`
}

// Controller owns a session and the per-session helpers.
type Controller struct {
	s        *Session
	cfg      difficulty.Config
	rnd      *rng.Rand
	selector *words.Selector
	basket   *review.Basket
	trackers map[string]*performance.Tracker // by profile id
	now      func() time.Time

	// letter mistakes in the word being attempted
	turnMistakes int
}

// Start creates a new session.
func Start(opts Options) (*Controller, error) {
	if len(opts.ProfileIDs) == 0 {
		return nil, ErrNoProfile
	}
	tier := opts.Tier
	if tier == "" {
		tier = difficulty.ForGrade(opts.Grade)
	}
	cfg, ok := difficulty.For(tier)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	cfg = applyMode(cfg, opts.Mode)

	var (
		seed int64
		rnd  *rng.Rand
	)
	if opts.Seed != nil {
		seed = *opts.Seed
		rnd = rng.New(seed)
	} else {
		rnd, seed = rng.NewRandom()
	}

	c := newController(cfg, rnd, opts.Clock, opts.ProfileIDs, opts.Performance)
	c.selector = words.NewSelector(opts.Words, rnd)
	if c.selector.Len() == 0 {
		return nil, ErrNoWords
	}
	// daily boards deal the same words to everyone
	if opts.DailyKey == "" {
		c.selector.Deprioritize(c.trackers[opts.ProfileIDs[0]].IsMastered)
	}
	c.basket = review.New(rnd)

	now := c.now()
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	stats := make(map[string]PlayerStats, len(opts.ProfileIDs))
	for _, p := range opts.ProfileIDs {
		stats[p] = PlayerStats{}
	}
	b, traps := board.Generate(cfg.GridSize, seed)
	c.s = &Session{
		ID:           id,
		ProfileIDs:   slices.Clone(opts.ProfileIDs),
		Tier:         cfg.Tier,
		Grade:        opts.Grade,
		Seed:         seed,
		DailyKey:     opts.DailyKey,
		Board:        b,
		Traps:        traps,
		Focus:        cfg.FocusBudget,
		FocusMax:     cfg.FocusBudget,
		TotalBunnies: len(traps),
		TurnStart:    now,
		SessionStart: now,
		LastShuffle:  now,
		Stats:        stats,
		ActiveWords:  c.selector.Words(),
	}
	if cfg.MultiWord() {
		c.s.Mode = MultiWord{TargetWords: c.drawTargets(0), RoundStart: now}
	} else {
		c.s.Mode = SingleWord{CurrentWord: c.selector.Next(0, c.basket)}
	}
	c.syncBasket()
	return c, nil
}

// Resume rebuilds a controller around a stored session. The selector is
// rebuilt from the session's active words with a fresh permutation.
func Resume(s *Session, perf PlayerPerformance, clock func() time.Time) (*Controller, error) {
	if len(s.ProfileIDs) == 0 {
		return nil, ErrNoProfile
	}
	cfg, ok := difficulty.For(s.Tier)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, s.Tier)
	}
	if _, multi := s.Mode.(MultiWord); multi {
		cfg = applyMode(cfg, ModeMulti)
	} else {
		cfg = applyMode(cfg, ModeSingle)
	}
	rnd, _ := rng.NewRandom()
	c := newController(cfg, rnd, clock, s.ProfileIDs, perf)
	c.s = s.Clone()
	c.selector = words.NewSelector(s.ActiveWords, rnd)
	if c.selector.Len() == 0 {
		return nil, ErrNoWords
	}
	if s.DailyKey == "" {
		c.selector.Deprioritize(c.trackers[s.ProfileIDs[0]].IsMastered)
	}
	c.basket = review.New(rnd, s.ReviewWords...)
	return c, nil
}

func newController(cfg difficulty.Config, rnd *rng.Rand, clock func() time.Time, players []string, perf PlayerPerformance) *Controller {
	if clock == nil {
		clock = time.Now
	}
	c := &Controller{
		cfg:      cfg,
		rnd:      rnd,
		trackers: make(map[string]*performance.Tracker, len(players)),
		now:      clock,
	}
	for _, id := range players {
		c.trackers[id] = performance.New(perf[id]).WithClock(clock)
	}
	return c
}

func applyMode(cfg difficulty.Config, mode ModeChoice) difficulty.Config {
	switch mode {
	case ModeSingle:
		cfg.WordsPerRound = 1
	case ModeMulti:
		if cfg.WordsPerRound < 2 {
			cfg.WordsPerRound = defaultWordsPerRound
		}
	}
	return cfg
}

// Session returns a copy of the current session.
func (c *Controller) Session() *Session { return c.s.Clone() }

// Config is the difficulty config in effect, after any mode override.
func (c *Controller) Config() difficulty.Config { return c.cfg }

// Performance returns every player's records for saving to the profiles.
func (c *Controller) Performance() PlayerPerformance {
	out := make(PlayerPerformance, len(c.trackers))
	for id, t := range c.trackers {
		out[id] = t.All()
	}
	return out
}

// tracker is the current player's tracker, falling back to the owner's.
// Attempts are recorded before the turn passes on.
func (c *Controller) tracker() *performance.Tracker {
	if t, ok := c.trackers[c.s.CurrentProfile()]; ok {
		return t
	}
	return c.trackers[c.s.ProfileIDs[0]]
}

// SelectTile handles a click on the tile at row, col.
func (c *Controller) SelectTile(row, col int) (Outcome, error) {
	if c.s.Completed {
		return Outcome{}, ErrCompleted
	}
	tile := c.s.Board.Tile(row, col)
	if tile == nil {
		return Outcome{}, ErrNoTile
	}
	if tile.Selected {
		return Outcome{Message: "That tile is already in your word."}, nil
	}

	v := ValidateLetterSelection(c.s, *tile, c.cfg)
	out := Outcome{Validation: &v, Message: v.Message}
	if v.Valid {
		tile.Selected = true
		c.s.CurrentInput += tile.Letter
		c.s.Selected = append(c.s.Selected, board.Position{Row: row, Col: col})
		return out, nil
	}
	if !v.FocusReduced {
		return out, nil
	}

	c.turnMistakes++
	c.bumpStats(func(ps *PlayerStats) { ps.LetterMistakes++ })
	if c.s.Focus > 0 {
		c.s.Focus--
	}

	switch m := c.s.Mode.(type) {
	case MultiWord:
		m.Strikes++
		c.s.Mode = m
		if v.TurnEnded {
			c.failRound(c.now())
			out.TurnEnded = true
			out.NewRound = true
			return out, nil
		}
	case SingleWord:
		if v.TurnEnded {
			c.endTurnFocusZero()
			out.TurnEnded = true
			out.Message = "Focus reached zero. Moving to the next word."
			return out, nil
		}
	}
	if v.TileLocked {
		tile.Locked = true
	}
	return out, nil
}

// Undo removes the last selected letter.
func (c *Controller) Undo() (Outcome, error) {
	if c.s.Completed {
		return Outcome{}, ErrCompleted
	}
	n := len(c.s.Selected)
	if n == 0 {
		return Outcome{}, nil
	}
	last := c.s.Selected[n-1]
	if t := c.s.Board.Tile(last.Row, last.Col); t != nil {
		t.Selected = false
	}
	c.s.Selected = c.s.Selected[:n-1]
	if l := len(c.s.CurrentInput); l > 0 {
		c.s.CurrentInput = c.s.CurrentInput[:l-1]
	}
	return Outcome{}, nil
}

// Clear deselects every tile and empties the input.
func (c *Controller) Clear() (Outcome, error) {
	if c.s.Completed {
		return Outcome{}, ErrCompleted
	}
	c.clearSelection()
	return Outcome{}, nil
}

func (c *Controller) clearSelection() {
	c.s.CurrentInput = ""
	c.s.Selected = nil
	for r := range c.s.Board {
		for col := range c.s.Board[r] {
			c.s.Board[r][col].Selected = false
		}
	}
}

// Submit judges the current input.
func (c *Controller) Submit() (Outcome, error) {
	if c.s.Completed {
		return Outcome{}, ErrCompleted
	}
	if c.s.CurrentInput == "" {
		return Outcome{Message: "Pick some letters first."}, nil
	}

	res, next := SubmitWord(c.s, c.cfg)
	c.s = next
	out := Outcome{Submit: &res, Message: res.Message}
	now := c.now()
	elapsed := now.Sub(c.s.TurnStart)

	if !res.Correct {
		c.bumpStats(func(ps *PlayerStats) { ps.IncorrectSubmits++ })
		sw, single := c.s.Mode.(SingleWord)
		if !single {
			c.clearSelection()
			return out, nil
		}
		c.basket.Add(sw.CurrentWord)
		c.tracker().RecordAttempt(sw.CurrentWord, false, c.turnMistakes, elapsed)
		c.turnMistakes = 0
		if res.RequireRetry {
			c.clearSelection()
		} else {
			c.advanceSingle(now)
			out.TurnEnded = true
		}
		c.syncBasket()
		return out, nil
	}

	word := res.WordCompleted
	c.basket.Remove(word)
	c.tracker().RecordAttempt(word, true, c.turnMistakes, elapsed)
	c.turnMistakes = 0
	c.s.BunniesRescued += res.BunniesRescued
	c.s.WordsSpelled++
	c.s.Streak++
	c.bumpStats(func(ps *PlayerStats) {
		ps.WordsSpelled++
		ps.BunniesRescued += res.BunniesRescued
		ps.TurnsTaken++
	})
	c.clearSelection()
	c.syncBasket()

	if m, ok := c.s.Mode.(MultiWord); ok {
		m.FoundWords = append(m.FoundWords, word)
		c.s.Mode = m
	}

	if CheckWinCondition(c.s, c.basket) {
		c.s.Completed = true
		c.s.CompletedAt = now
		out.Won = true
		out.Message = "You won! All bunnies rescued and review basket cleared!"
		return out, nil
	}

	switch c.s.Mode.(type) {
	case MultiWord:
		if CheckRoundComplete(c.s) {
			out.RoundComplete = true
			out.NewRound = true
			out.Message = "All words found! Starting a new round..."
			c.startRound(now)
			return out, nil
		}
		c.s.TurnStart = now
		out.Message = "Word found! Keep going!"
	case SingleWord:
		c.advanceSingle(now)
		out.TurnEnded = true
	}
	return out, nil
}

// Tick advances time-driven behavior: round or turn timer expiry and the
// periodic board shuffle.
func (c *Controller) Tick(now time.Time) (Outcome, error) {
	if c.s.Completed {
		return Outcome{}, ErrCompleted
	}
	var out Outcome

	if c.cfg.Timed() {
		switch m := c.s.Mode.(type) {
		case MultiWord:
			if now.Sub(m.RoundStart) >= c.cfg.TimerDuration {
				c.failRound(now)
				out.TimeUp = true
				out.NewRound = true
				out.Message = "Time's up! Try again!"
				return out, nil
			}
		case SingleWord:
			if now.Sub(c.s.TurnStart) >= c.cfg.TimerDuration {
				c.basket.Add(m.CurrentWord)
				c.tracker().RecordAttempt(m.CurrentWord, false, c.turnMistakes, now.Sub(c.s.TurnStart))
				c.turnMistakes = 0
				c.advanceSingle(now)
				c.syncBasket()
				out.TimeUp = true
				out.TurnEnded = true
				out.Message = "Time's up! Moving to the next word."
				return out, nil
			}
		}
	}

	if c.cfg.ShuffleInterval > 0 && now.Sub(c.s.LastShuffle) >= c.cfg.ShuffleInterval {
		c.s.Board = board.Shuffle(c.s.Board, c.rnd)
		c.s.CurrentInput = ""
		c.s.Selected = nil
		c.s.LastShuffle = now
		out.Shuffled = true
	}
	return out, nil
}

// Hint returns the next letter of the first remaining word that extends
// the current input, and where that letter can be picked.
func (c *Controller) Hint() (Hint, Outcome, error) {
	if c.s.Completed {
		return Hint{}, Outcome{}, ErrCompleted
	}
	if c.s.HintsDisabled {
		return Hint{}, Outcome{Message: "Hints are turned off for this game."}, nil
	}
	input := strings.ToUpper(c.s.CurrentInput)
	for _, w := range c.s.RemainingWords() {
		if len(w) <= len(input) || !strings.HasPrefix(w, input) {
			continue
		}
		h := Hint{Letter: w[len(input) : len(input)+1], Tiles: []board.Position{}}
		for _, row := range c.s.Board {
			for _, t := range row {
				if t.Letter == h.Letter && !t.Cleared && !t.Locked && !t.Selected {
					h.Tiles = append(h.Tiles, t.Pos())
				}
			}
		}
		return h, Outcome{}, nil
	}
	return Hint{}, Outcome{Message: "Clear your letters and try again."}, nil
}

// endTurnFocusZero files the current word for review, applies the tier's
// consequence and moves to the next word.
func (c *Controller) endTurnFocusZero() {
	sw, ok := c.s.Mode.(SingleWord)
	if !ok {
		return
	}
	now := c.now()
	c.basket.Add(sw.CurrentWord)
	c.tracker().RecordAttempt(sw.CurrentWord, false, c.turnMistakes, now.Sub(c.s.TurnStart))
	c.turnMistakes = 0
	c.s = ApplyFocusZeroConsequence(c.s, c.cfg)
	c.advanceSingle(now)
	c.syncBasket()
}

// advanceSingle ends a single-word turn and draws the next word.
func (c *Controller) advanceSingle(now time.Time) {
	c.s = NextTurn(c.s, now)
	c.s.TurnNumber++
	c.s.Mode = SingleWord{CurrentWord: c.selector.Next(c.s.TurnNumber, c.basket)}
}

// failRound files unfound target words for review and starts a new round.
func (c *Controller) failRound(now time.Time) {
	if m, ok := c.s.Mode.(MultiWord); ok {
		for _, w := range m.Remaining() {
			c.basket.Add(w)
		}
	}
	c.turnMistakes = 0
	c.startRound(now)
}

// startRound deals a fresh board and target words for a multi-word round.
func (c *Controller) startRound(now time.Time) {
	b, traps := board.Generate(c.cfg.GridSize, int64(c.rnd.NextInt(maxBoardSeed)))
	c.s.Board = b
	c.s.Traps = traps
	c.s.TotalBunnies += len(traps)
	c.s = NextTurn(c.s, now)
	c.s.Mode = MultiWord{TargetWords: c.drawTargets(c.s.TurnNumber), RoundStart: now}
	c.s.TurnNumber++
	c.s.LastShuffle = now
	c.syncBasket()
}

// drawTargets draws up to WordsPerRound distinct words.
func (c *Controller) drawTargets(turn int) []string {
	want := c.cfg.WordsPerRound
	out := make([]string, 0, want)
	for i := 0; len(out) < want && i < want*4; i++ {
		w := c.selector.Next(turn+i, c.basket)
		if w == "" || slices.Contains(out, w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func (c *Controller) syncBasket() {
	c.s.ReviewWords = c.basket.All()
}

func (c *Controller) bumpStats(fn func(*PlayerStats)) {
	id := c.s.CurrentProfile()
	if c.s.Stats == nil {
		c.s.Stats = map[string]PlayerStats{}
	}
	ps := c.s.Stats[id]
	fn(&ps)
	c.s.Stats[id] = ps
}
