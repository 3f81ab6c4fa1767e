// internal/game/types.go
//
// Session state for one game.
// Defines:
//   - Mode: SingleWord (one current word, focus budget) or MultiWord
//     (several target words per round, strike counter).
//   - Session: the root aggregate the engine and controller operate on.
//   - PlayerStats: per-profile counters for a session.

package game

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/robalobadob/bunny-rescue/internal/board"
	"github.com/robalobadob/bunny-rescue/internal/difficulty"
)

// Mode is the round shape of a session. It is either SingleWord or MultiWord.
type Mode interface {
	isMode()
}

// SingleWord plays one word per turn against the focus budget.
type SingleWord struct {
	CurrentWord string
}

// MultiWord plays rounds of several target words against a strike limit.
type MultiWord struct {
	TargetWords []string
	FoundWords  []string
	Strikes     int
	RoundStart  time.Time
}

func (SingleWord) isMode() {}
func (MultiWord) isMode()  {}

const (
	modeSingle = "single"
	modeMulti  = "multi"
)

// Remaining returns the target words not found yet, in target order.
func (m MultiWord) Remaining() []string {
	out := make([]string, 0, len(m.TargetWords))
	for _, w := range m.TargetWords {
		if !slices.Contains(m.FoundWords, w) {
			out = append(out, w)
		}
	}
	return out
}

func (m MultiWord) clone() MultiWord {
	m.TargetWords = slices.Clone(m.TargetWords)
	m.FoundWords = slices.Clone(m.FoundWords)
	return m
}

// PlayerStats are per-profile counters within one session.
type PlayerStats struct {
	WordsSpelled     int `json:"wordsSpelled"`
	BunniesRescued   int `json:"bunniesRescued"`
	LetterMistakes   int `json:"letterMistakes"`
	IncorrectSubmits int `json:"incorrectSubmits"`
	TurnsTaken       int `json:"turnsTaken"`
}

// Accuracy is the share of submitted words that were correct, as a
// percentage. A player who submitted nothing scores 0.
func (p PlayerStats) Accuracy() float64 {
	total := p.WordsSpelled + p.IncorrectSubmits
	if total == 0 {
		return 0
	}
	return float64(p.WordsSpelled) / float64(total) * 100
}

// Session is the state of one game.
type Session struct {
	ID             string                 `json:"id"`
	ProfileIDs     []string               `json:"profileIds"`
	CurrentPlayer  int                    `json:"currentPlayerIndex"`
	Tier           difficulty.Tier        `json:"difficulty"`
	Grade          difficulty.Grade       `json:"grade"`
	Seed           int64                  `json:"seed"`
	DailyKey       string                 `json:"dailyKey,omitempty"`
	Board          board.Board            `json:"board"`
	Traps          []board.Trap           `json:"bunnyTraps"`
	Mode           Mode                   `json:"-"`
	CurrentInput   string                 `json:"currentInput"`
	Selected       []board.Position       `json:"selectedTiles"`
	Focus          int                    `json:"gardenFocus"`
	FocusMax       int                    `json:"gardenFocusMax"`
	Streak         int                    `json:"streak"`
	BunniesRescued int                    `json:"bunniesRescued"`
	TotalBunnies   int                    `json:"totalBunnies"`
	WordsSpelled   int                    `json:"wordsSpelled"`
	HintsDisabled  bool                   `json:"hintsDisabled"`
	TurnNumber     int                    `json:"turnNumber"`
	TurnStart      time.Time              `json:"turnStartTime"`
	SessionStart   time.Time              `json:"sessionStartTime"`
	LastShuffle    time.Time              `json:"lastShuffleTime"`
	Completed      bool                   `json:"completed"`
	CompletedAt    time.Time              `json:"completedAt"`
	Stats          map[string]PlayerStats `json:"stats"`
	ReviewWords    []string               `json:"reviewBasket"`
	ActiveWords    []string               `json:"activeWords"`
}

// CurrentProfile is the profile whose turn it is, or "" if there is none.
func (s *Session) CurrentProfile() string {
	if s.CurrentPlayer < 0 || s.CurrentPlayer >= len(s.ProfileIDs) {
		return ""
	}
	return s.ProfileIDs[s.CurrentPlayer]
}

// RemainingWords is the set of words a letter may still be matched against.
// Single-word sessions always have exactly one.
func (s *Session) RemainingWords() []string {
	switch m := s.Mode.(type) {
	case SingleWord:
		return []string{strings.ToUpper(m.CurrentWord)}
	case MultiWord:
		return m.Remaining()
	}
	return nil
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	c := *s
	c.ProfileIDs = slices.Clone(s.ProfileIDs)
	c.Board = s.Board.Clone()
	c.Traps = board.CloneTraps(s.Traps)
	c.Selected = slices.Clone(s.Selected)
	c.ReviewWords = slices.Clone(s.ReviewWords)
	c.ActiveWords = slices.Clone(s.ActiveWords)
	if s.Stats != nil {
		c.Stats = make(map[string]PlayerStats, len(s.Stats))
		for k, v := range s.Stats {
			c.Stats[k] = v
		}
	}
	if m, ok := s.Mode.(MultiWord); ok {
		c.Mode = m.clone()
	}
	return &c
}

// modeJSON is the wire form of Mode, discriminated by Kind.
type modeJSON struct {
	Kind        string     `json:"kind"`
	CurrentWord string     `json:"currentWord,omitempty"`
	TargetWords []string   `json:"targetWords,omitempty"`
	FoundWords  []string   `json:"foundWords,omitempty"`
	Strikes     int        `json:"strikes,omitempty"`
	RoundStart  *time.Time `json:"roundStartTime,omitempty"`
}

type sessionAlias Session

type sessionJSON struct {
	*sessionAlias
	Mode modeJSON `json:"mode"`
}

// MarshalJSON encodes the session with its mode as a tagged object.
func (s *Session) MarshalJSON() ([]byte, error) {
	out := sessionJSON{sessionAlias: (*sessionAlias)(s)}
	switch m := s.Mode.(type) {
	case SingleWord:
		out.Mode = modeJSON{Kind: modeSingle, CurrentWord: m.CurrentWord}
	case MultiWord:
		rs := m.RoundStart
		out.Mode = modeJSON{
			Kind:        modeMulti,
			TargetWords: m.TargetWords,
			FoundWords:  m.FoundWords,
			Strikes:     m.Strikes,
			RoundStart:  &rs,
		}
	default:
		return nil, fmt.Errorf("game: session %s has no mode", s.ID)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes what MarshalJSON produced.
func (s *Session) UnmarshalJSON(b []byte) error {
	in := sessionJSON{sessionAlias: (*sessionAlias)(s)}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	switch in.Mode.Kind {
	case modeSingle:
		s.Mode = SingleWord{CurrentWord: in.Mode.CurrentWord}
	case modeMulti:
		m := MultiWord{
			TargetWords: in.Mode.TargetWords,
			FoundWords:  in.Mode.FoundWords,
			Strikes:     in.Mode.Strikes,
		}
		if in.Mode.RoundStart != nil {
			m.RoundStart = *in.Mode.RoundStart
		}
		s.Mode = m
	default:
		return fmt.Errorf("game: unknown session mode %q", in.Mode.Kind)
	}
	return nil
}
