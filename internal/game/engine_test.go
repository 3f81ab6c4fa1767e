package game

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/bunny-rescue/internal/board"
	"github.com/robalobadob/bunny-rescue/internal/difficulty"
	"github.com/robalobadob/bunny-rescue/internal/review"
)

var t0 = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

// makeBoard builds a board from rows of letters. Lowercase letters carry a
// trap.
func makeBoard(rows ...string) (board.Board, []board.Trap) {
	var traps []board.Trap
	b := make(board.Board, len(rows))
	for r, row := range rows {
		b[r] = make([]board.Tile, len(row))
		for c, ch := range row {
			letter := strings.ToUpper(string(ch))
			trapped := letter != string(ch)
			b[r][c] = board.Tile{Letter: letter, Row: r, Col: c, HasTrap: trapped}
			if trapped {
				traps = append(traps, board.Trap{Row: r, Col: c})
			}
		}
	}
	return b, traps
}

func newSession(mode Mode, focus int, rows ...string) *Session {
	b, traps := makeBoard(rows...)
	return &Session{
		ID:         "test-session",
		ProfileIDs: []string{"p1"},
		Tier:       difficulty.Explorer,
		Board:      b,
		Traps:      traps,
		Mode:       mode,
		Focus:      focus,
		FocusMax:   focus,
		Stats:      map[string]PlayerStats{"p1": {}},
	}
}

// pick mimics the caller applying a valid selection.
func pick(s *Session, row, col int) {
	t := s.Board.Tile(row, col)
	t.Selected = true
	s.CurrentInput += t.Letter
	s.Selected = append(s.Selected, board.Position{Row: row, Col: col})
}

func TestValidateLetterProgression(t *testing.T) {
	cfg := difficulty.MustFor(difficulty.Explorer)
	s := newSession(SingleWord{CurrentWord: "CAT"}, 3, "CAT")

	for col := 0; col < 3; col++ {
		v := ValidateLetterSelection(s, s.Board[0][col], cfg)
		if !v.Valid || v.Message != "" {
			t.Fatalf("letter %d: %+v", col, v)
		}
		pick(s, 0, col)
	}
	if s.CurrentInput != "CAT" {
		t.Fatalf("input = %q", s.CurrentInput)
	}
}

func TestValidateRejections(t *testing.T) {
	cfg := difficulty.MustFor(difficulty.Explorer)

	tests := []struct {
		name  string
		tile  func(board.Tile) board.Tile
		focus int
		want  Validation
	}{
		{
			name:  "cleared tile",
			tile:  func(t board.Tile) board.Tile { t.Cleared = true; return t },
			focus: 3,
			want:  Validation{Message: msgTileUsed},
		},
		{
			name:  "locked tile",
			tile:  func(t board.Tile) board.Tile { t.Locked = true; return t },
			focus: 3,
			want:  Validation{Message: msgTileLocked},
		},
		{
			name:  "wrong letter",
			tile:  func(t board.Tile) board.Tile { t.Letter = "Z"; return t },
			focus: 3,
			want:  Validation{Message: msgWrongLetter, FocusReduced: true},
		},
		{
			name:  "wrong letter with one focus left",
			tile:  func(t board.Tile) board.Tile { t.Letter = "Z"; return t },
			focus: 1,
			want:  Validation{Message: msgFocusGone, FocusReduced: true, TurnEnded: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(SingleWord{CurrentWord: "CAT"}, tt.focus, "CAT")
			before := s.Clone()
			got := ValidateLetterSelection(s, tt.tile(s.Board[0][0]), cfg)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if s.Focus != before.Focus || s.CurrentInput != before.CurrentInput {
				t.Error("validation mutated the session")
			}
		})
	}
}

func TestValidateAnyRemainingWord(t *testing.T) {
	cfg := difficulty.MustFor(difficulty.Ranger)
	s := newSession(MultiWord{TargetWords: []string{"CAT", "DOG", "SUN"}, FoundWords: []string{"SUN"}}, 3, "CDS")

	if v := ValidateLetterSelection(s, s.Board[0][0], cfg); !v.Valid {
		t.Error("C should start CAT")
	}
	if v := ValidateLetterSelection(s, s.Board[0][1], cfg); !v.Valid {
		t.Error("D should start DOG")
	}
	if v := ValidateLetterSelection(s, s.Board[0][2], cfg); v.Valid {
		t.Error("S starts a word that is already found")
	}
}

func TestSubmitRescuesTrappedBunny(t *testing.T) {
	cfg := difficulty.MustFor(difficulty.Explorer)
	s := newSession(SingleWord{CurrentWord: "CAT"}, 3, "cAT")
	pick(s, 0, 0)
	pick(s, 0, 1)
	pick(s, 0, 2)

	res, next := SubmitWord(s, cfg)
	if !res.Correct || res.BunniesRescued != 1 || res.WordCompleted != "CAT" {
		t.Fatalf("result = %+v", res)
	}
	if res.Message != "Perfect! You rescued 1 bunny!" {
		t.Errorf("message = %q", res.Message)
	}
	if !next.Traps[0].Rescued {
		t.Error("trap not rescued")
	}
	for col := 0; col < 3; col++ {
		if !next.Board[0][col].Cleared {
			t.Errorf("tile %d not cleared", col)
		}
	}
	if s.Traps[0].Rescued || s.Board[0][0].Cleared {
		t.Error("SubmitWord mutated its input")
	}

	// a second pass over the same trap rescues nothing
	again, _ := SubmitWord(next, cfg)
	if again.BunniesRescued != 0 || again.Message != msgWordSpelled {
		t.Errorf("second submit = %+v", again)
	}
}

func TestSubmitPluralMessage(t *testing.T) {
	s := newSession(SingleWord{CurrentWord: "CAT"}, 3, "caT")
	pick(s, 0, 0)
	pick(s, 0, 1)
	pick(s, 0, 2)
	res, _ := SubmitWord(s, difficulty.MustFor(difficulty.Explorer))
	if res.Message != "Perfect! You rescued 2 bunnies!" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestSubmitIncorrectSingleWord(t *testing.T) {
	tests := []struct {
		tier        difficulty.Tier
		retry       bool
		consequence string
		message     string
	}{
		{difficulty.Sprout, false, "Word added to review basket.", `Not quite. The word is "CAT". Would you like to try again?`},
		{difficulty.Explorer, false, "Try another word.", "That's not correct. Try another word."},
		{difficulty.Ranger, true, "Try spelling this word again!", "That's not correct. Try spelling this word again!"},
		{difficulty.Guardian, true, "You must spell this word correctly to continue.", "That's not correct. You must spell this word correctly to continue."},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			s := newSession(SingleWord{CurrentWord: "CAT"}, 3, "DOG")
			s.CurrentInput = "DOG"
			res, next := SubmitWord(s, difficulty.MustFor(tt.tier))
			if res.Correct || res.BunniesRescued != 0 {
				t.Fatalf("result = %+v", res)
			}
			if res.RequireRetry != tt.retry || res.Consequence != tt.consequence || res.Message != tt.message {
				t.Errorf("result = %+v", res)
			}
			if next.Board[0][0].Cleared {
				t.Error("failed submit cleared tiles")
			}
		})
	}
}

func TestSubmitIncorrectMultiWord(t *testing.T) {
	s := newSession(MultiWord{TargetWords: []string{"CAT", "DOG"}}, 3, "DOT")
	s.CurrentInput = "DOT"
	res, _ := SubmitWord(s, difficulty.MustFor(difficulty.Guardian))
	if res.Correct || res.Message != msgNotTarget || res.RequireRetry || res.Consequence != "" {
		t.Errorf("result = %+v", res)
	}
}

func TestSubmitSkipsFoundWords(t *testing.T) {
	s := newSession(MultiWord{TargetWords: []string{"CAT", "DOG"}, FoundWords: []string{"CAT"}}, 3, "CAT")
	pick(s, 0, 0)
	pick(s, 0, 1)
	pick(s, 0, 2)
	if res, _ := SubmitWord(s, difficulty.MustFor(difficulty.Ranger)); res.Correct {
		t.Error("a found word was accepted twice")
	}
}

func TestGuardianLocksWrongTile(t *testing.T) {
	cfg := difficulty.MustFor(difficulty.Guardian)
	s := newSession(SingleWord{CurrentWord: "CAT"}, cfg.FocusBudget, "ZAT")
	s.Tier = difficulty.Guardian

	v := ValidateLetterSelection(s, s.Board[0][0], cfg)
	if v.Valid || !v.FocusReduced || !v.TileLocked {
		t.Fatalf("wrong letter: %+v", v)
	}

	// apply the deltas the way a caller does
	s.Focus--
	s.Board[0][0].Locked = true
	if s.Focus != cfg.FocusBudget-1 {
		t.Errorf("focus = %d", s.Focus)
	}

	again := ValidateLetterSelection(s, s.Board[0][0], cfg)
	if again.Valid || again.Message != msgTileLocked || again.FocusReduced {
		t.Errorf("reselect locked tile: %+v", again)
	}
}

func TestLockTileOnlyOnGuardian(t *testing.T) {
	cfg := difficulty.MustFor(difficulty.Ranger)
	cfg.Consequences.OnIncorrectLetter = difficulty.LockTile
	s := newSession(SingleWord{CurrentWord: "CAT"}, cfg.FocusBudget, "ZAT")
	s.Tier = difficulty.Ranger

	v := ValidateLetterSelection(s, s.Board[0][0], cfg)
	if v.Valid || !v.FocusReduced {
		t.Fatalf("wrong letter: %+v", v)
	}
	if v.TileLocked {
		t.Error("a Ranger config with LockTile locked the tile")
	}
}

func TestStrikeLimit(t *testing.T) {
	cfg := difficulty.MustFor(difficulty.Ranger)
	if cfg.MaxStrikes != 3 {
		t.Fatalf("MaxStrikes = %d", cfg.MaxStrikes)
	}
	s := newSession(MultiWord{TargetWords: []string{"CAT", "DOG"}}, 3, "ZZZ")

	for i := 1; i <= 3; i++ {
		v := ValidateLetterSelection(s, s.Board[0][0], cfg)
		if v.Valid || !v.FocusReduced {
			t.Fatalf("strike %d: %+v", i, v)
		}
		if wantEnded := i == 3; v.TurnEnded != wantEnded {
			t.Fatalf("strike %d: TurnEnded = %v, want %v", i, v.TurnEnded, wantEnded)
		}
		if i == 3 && v.Message != "3 strikes! Round over. Try again!" {
			t.Errorf("message = %q", v.Message)
		}
		m := s.Mode.(MultiWord)
		m.Strikes++
		s.Mode = m
	}
}

func TestCheckRoundComplete(t *testing.T) {
	s := newSession(MultiWord{TargetWords: []string{"CAT", "DOG"}, FoundWords: []string{"DOG"}}, 3, "A")
	if CheckRoundComplete(s) {
		t.Error("round complete with one word left")
	}
	s.Mode = MultiWord{TargetWords: []string{"CAT", "DOG"}, FoundWords: []string{"DOG", "CAT"}}
	if !CheckRoundComplete(s) {
		t.Error("round not complete with every word found")
	}
	s.Mode = SingleWord{CurrentWord: "CAT"}
	if CheckRoundComplete(s) {
		t.Error("single-word sessions have no rounds")
	}
}

func TestCheckWinCondition(t *testing.T) {
	tests := []struct {
		name   string
		traps  []board.Trap
		basket []string
		want   bool
	}{
		{name: "no traps and empty basket", want: true},
		{name: "no traps but basket has words", basket: []string{"cat"}, want: false},
		{name: "all rescued", traps: []board.Trap{{Rescued: true}, {Row: 1, Rescued: true}}, want: true},
		{name: "one unrescued", traps: []board.Trap{{Rescued: true}, {Row: 1}}, want: false},
		{name: "all rescued but basket has words", traps: []board.Trap{{Rescued: true}}, basket: []string{"dog"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(SingleWord{CurrentWord: "CAT"}, 3, "A")
			s.Traps = tt.traps
			if got := CheckWinCondition(s, review.New(nil, tt.basket...)); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyFocusZeroConsequence(t *testing.T) {
	tests := []struct {
		policy     difficulty.FocusZeroPolicy
		wantStreak int
		wantHints  bool
	}{
		{difficulty.EndTurn, 7, false},
		{difficulty.EndTurnResetStreak, 0, false},
		{difficulty.EndTurnDisableHint, 7, true},
		{difficulty.EndTurnLoseMultiplier, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			cfg := difficulty.MustFor(difficulty.Explorer)
			cfg.Consequences.OnFocusZero = tt.policy
			s := newSession(SingleWord{CurrentWord: "CAT"}, 3, "A")
			s.Streak = 7

			next := ApplyFocusZeroConsequence(s, cfg)
			if next.Streak != tt.wantStreak || next.HintsDisabled != tt.wantHints {
				t.Errorf("streak=%d hints=%v", next.Streak, next.HintsDisabled)
			}
			if s.Streak != 7 {
				t.Error("input mutated")
			}
		})
	}
}

func TestResetTurn(t *testing.T) {
	s := newSession(SingleWord{CurrentWord: "CAT"}, 3, "cAT", "XYZ")
	pick(s, 0, 0)
	s.Focus = 1
	s.Board[1][0].Locked = true
	s.Board[1][1].Cleared = true
	s.Traps[0].Rescued = true

	next := ResetTurn(s, t0)
	if next.CurrentInput != "" || len(next.Selected) != 0 || next.Focus != 3 || !next.TurnStart.Equal(t0) {
		t.Errorf("turn not reset: %+v", next)
	}
	if next.Board[0][0].Selected || next.Board[1][0].Locked {
		t.Error("tile flags not reset")
	}
	if !next.Board[1][1].Cleared || !next.Traps[0].Rescued {
		t.Error("cleared tiles or traps were touched")
	}
}

func TestNextTurnRotatesCoopPlayers(t *testing.T) {
	s := newSession(SingleWord{CurrentWord: "CAT"}, 3, "A")
	s = NextTurn(s, t0)
	if s.CurrentPlayer != 0 {
		t.Errorf("solo player moved to %d", s.CurrentPlayer)
	}

	s.ProfileIDs = []string{"a", "b", "c"}
	var order []string
	for i := 0; i < 4; i++ {
		s = NextTurn(s, t0)
		order = append(order, s.CurrentProfile())
	}
	if got := strings.Join(order, ""); got != "bcab" {
		t.Errorf("rotation = %s", got)
	}
}

func TestSessionJSONKeepsMode(t *testing.T) {
	for _, mode := range []Mode{
		SingleWord{CurrentWord: "CAT"},
		MultiWord{TargetWords: []string{"CAT", "DOG"}, FoundWords: []string{"DOG"}, Strikes: 2, RoundStart: t0},
	} {
		s := newSession(mode, 3, "cA")
		b, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var back Session
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		switch m := back.Mode.(type) {
		case SingleWord:
			if m.CurrentWord != "CAT" {
				t.Errorf("single = %+v", m)
			}
		case MultiWord:
			if m.Strikes != 2 || len(m.TargetWords) != 2 || m.FoundWords[0] != "DOG" || !m.RoundStart.Equal(t0) {
				t.Errorf("multi = %+v", m)
			}
		default:
			t.Fatalf("mode lost: %T", back.Mode)
		}
		if len(back.Traps) != 1 || back.Board[0][0].Letter != "C" || !back.Board[0][0].HasTrap {
			t.Errorf("board lost: %+v", back.Board)
		}
	}

	if err := json.Unmarshal([]byte(`{"mode":{"kind":"triple"}}`), &Session{}); err == nil {
		t.Error("unknown mode accepted")
	}
}

func TestPlayerStatsAccuracy(t *testing.T) {
	tests := []struct {
		stats PlayerStats
		want  float64
	}{
		{PlayerStats{}, 0},
		{PlayerStats{WordsSpelled: 3}, 100},
		{PlayerStats{WordsSpelled: 3, IncorrectSubmits: 1, LetterMistakes: 9}, 75},
		{PlayerStats{IncorrectSubmits: 2}, 0},
	}
	for _, tt := range tests {
		if got := tt.stats.Accuracy(); got != tt.want {
			t.Errorf("%+v.Accuracy() = %v, want %v", tt.stats, got, tt.want)
		}
	}
}
