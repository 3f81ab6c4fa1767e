// internal/game/engine.go
//
// Rules engine.
// Responsibilities:
//   - Validate a tile click against every word still in play.
//   - Judge a submitted word, rescuing trapped bunnies under the selection.
//   - Apply the tier's focus-zero consequence.
//   - Evaluate round completion and the overall win condition.
//   - Reset and rotate turns.
//
// Notes:
//   - Every function is stateless. Functions that change state return a
//     new *Session and leave their input untouched.
//   - Rejections are ordinary return values; nothing here fails.

package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/robalobadob/bunny-rescue/internal/board"
	"github.com/robalobadob/bunny-rescue/internal/difficulty"
	"github.com/robalobadob/bunny-rescue/internal/review"
)

const (
	msgTileUsed    = "This tile has already been used!"
	msgTileLocked  = "This tile is locked for this turn."
	msgWrongLetter = "That letter doesn't match any target word. Strike!"
	msgFocusGone   = "Out of focus! This turn is over."
	msgWordSpelled = "Great job spelling that word!"
	msgNotTarget   = "That's not one of the target words. Try again!"
)

// Validation is the verdict on one tile click.
type Validation struct {
	Valid        bool   `json:"valid"`
	Message      string `json:"message,omitempty"`
	FocusReduced bool   `json:"focusReduced,omitempty"`
	TileLocked   bool   `json:"tileLocked,omitempty"`
	TurnEnded    bool   `json:"turnEnded,omitempty"`
}

// SubmitResult is the verdict on one submission.
type SubmitResult struct {
	Correct        bool   `json:"correct"`
	BunniesRescued int    `json:"bunniesRescued"`
	Message        string `json:"message"`
	Consequence    string `json:"consequence,omitempty"`
	RequireRetry   bool   `json:"requireRetry,omitempty"`
	WordCompleted  string `json:"wordCompleted,omitempty"`
}

// ValidateLetterSelection checks whether tile is the next letter of any
// remaining word. It does not change s; the caller applies the outcome
// (append the letter, spend focus or a strike, lock the tile).
func ValidateLetterSelection(s *Session, tile board.Tile, cfg difficulty.Config) Validation {
	if tile.Cleared {
		return Validation{Message: msgTileUsed}
	}
	if tile.Locked {
		return Validation{Message: msgTileLocked}
	}

	input := strings.ToUpper(s.CurrentInput)
	pos := len(input)
	for _, w := range s.RemainingWords() {
		if pos < len(w) && tile.Letter == w[pos:pos+1] {
			return Validation{Valid: true}
		}
	}

	v := Validation{Message: msgWrongLetter, FocusReduced: true}
	switch m := s.Mode.(type) {
	case MultiWord:
		if m.Strikes+1 >= cfg.MaxStrikes {
			v.TurnEnded = true
			v.Message = fmt.Sprintf("%d strikes! Round over. Try again!", cfg.MaxStrikes)
		}
	case SingleWord:
		if s.Focus-1 <= 0 {
			v.TurnEnded = true
			v.Message = msgFocusGone
		}
	}
	// Only Guardian locks tiles, whatever an override file says.
	if cfg.Tier == difficulty.Guardian && cfg.Consequences.OnIncorrectLetter == difficulty.LockTile {
		v.TileLocked = true
	}
	return v
}

// SubmitWord judges the current input. On success the returned session has
// every trap under the selection rescued and every selected tile cleared;
// on failure it is an unchanged copy.
func SubmitWord(s *Session, cfg difficulty.Config) (SubmitResult, *Session) {
	next := s.Clone()
	input := strings.ToUpper(s.CurrentInput)

	matched := ""
	for _, w := range s.RemainingWords() {
		if w == input {
			matched = w
			break
		}
	}

	if matched == "" {
		return failedSubmit(s, cfg), next
	}

	rescued := 0
	for _, p := range next.Selected {
		t := next.Board.Tile(p.Row, p.Col)
		if t == nil {
			continue
		}
		if t.HasTrap {
			for i := range next.Traps {
				tr := &next.Traps[i]
				if tr.Row == p.Row && tr.Col == p.Col && !tr.Rescued {
					tr.Rescued = true
					rescued++
				}
			}
		}
		t.Cleared = true
		t.Selected = false
	}

	msg := msgWordSpelled
	if rescued > 0 {
		noun := "bunnies"
		if rescued == 1 {
			noun = "bunny"
		}
		msg = fmt.Sprintf("Perfect! You rescued %d %s!", rescued, noun)
	}
	return SubmitResult{Correct: true, BunniesRescued: rescued, Message: msg, WordCompleted: matched}, next
}

func failedSubmit(s *Session, cfg difficulty.Config) SubmitResult {
	sw, ok := s.Mode.(SingleWord)
	if !ok {
		return SubmitResult{Message: msgNotTarget}
	}

	var res SubmitResult
	switch cfg.Consequences.OnIncorrectSubmit {
	case difficulty.AddToReview:
		res.Consequence = "Word added to review basket."
	case difficulty.ImmediateReset:
		res.Consequence = "Try another word."
	case difficulty.RequireRetry:
		res.Consequence = "Try spelling this word again!"
		res.RequireRetry = true
	case difficulty.BlockProgress:
		res.Consequence = "You must spell this word correctly to continue."
		res.RequireRetry = true
	}
	if cfg.GentleMode {
		res.Message = fmt.Sprintf("Not quite. The word is %q. Would you like to try again?", sw.CurrentWord)
	} else {
		res.Message = "That's not correct. " + res.Consequence
	}
	return res
}

// CheckRoundComplete reports whether every target word of a multi-word
// round has been found. Always false in single-word mode.
func CheckRoundComplete(s *Session) bool {
	m, ok := s.Mode.(MultiWord)
	if !ok || len(m.TargetWords) == 0 {
		return false
	}
	return len(m.FoundWords) >= len(m.TargetWords)
}

// CheckWinCondition is true when every trap is rescued and the review
// basket is empty. A board without traps only needs the empty basket.
func CheckWinCondition(s *Session, basket *review.Basket) bool {
	return board.CountRemaining(s.Traps) == 0 && (basket == nil || basket.IsEmpty())
}

// ApplyFocusZeroConsequence returns s with the tier's focus-zero penalty
// applied. Ending the turn itself is left to the caller.
func ApplyFocusZeroConsequence(s *Session, cfg difficulty.Config) *Session {
	next := s.Clone()
	switch cfg.Consequences.OnFocusZero {
	case difficulty.EndTurn:
	case difficulty.EndTurnResetStreak:
		next.Streak = 0
	case difficulty.EndTurnDisableHint:
		next.HintsDisabled = true
	case difficulty.EndTurnLoseMultiplier:
		next.Streak /= 2
	}
	return next
}

// ResetTurn returns s with an empty input, full focus, and every tile
// unlocked and deselected. Cleared tiles and traps are kept.
func ResetTurn(s *Session, now time.Time) *Session {
	next := s.Clone()
	next.CurrentInput = ""
	next.Selected = nil
	next.Focus = next.FocusMax
	next.TurnStart = now
	for r := range next.Board {
		for c := range next.Board[r] {
			next.Board[r][c].Locked = false
			next.Board[r][c].Selected = false
		}
	}
	return next
}

// NextTurn resets the turn and hands play to the next profile in a co-op
// session.
func NextTurn(s *Session, now time.Time) *Session {
	next := ResetTurn(s, now)
	if n := len(next.ProfileIDs); n > 1 {
		next.CurrentPlayer = (next.CurrentPlayer + 1) % n
	}
	return next
}
