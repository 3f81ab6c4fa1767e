// internal/difficulty/policy.go
//
// Text forms of the consequence policies, used by JSON responses and by
// YAML overrides ("endTurnResetStreak", "requireRetry", "lockTile", ...).

package difficulty

import "fmt"

var focusZeroNames = map[FocusZeroPolicy]string{
	EndTurn:               "endTurn",
	EndTurnResetStreak:    "endTurnResetStreak",
	EndTurnDisableHint:    "endTurnDisableHint",
	EndTurnLoseMultiplier: "endTurnLoseMultiplier",
}

var incorrectSubmitNames = map[IncorrectSubmitPolicy]string{
	AddToReview:    "addToReview",
	ImmediateReset: "immediateReset",
	RequireRetry:   "requireRetry",
	BlockProgress:  "blockProgress",
}

var incorrectLetterNames = map[IncorrectLetterPolicy]string{
	NoLetterPenalty: "none",
	LockTile:        "lockTile",
}

func (p FocusZeroPolicy) String() string { return nameOf(focusZeroNames, p) }

func (p FocusZeroPolicy) MarshalText() ([]byte, error) { return marshalName(focusZeroNames, p) }

func (p *FocusZeroPolicy) UnmarshalText(b []byte) error { return unmarshalName(focusZeroNames, p, b) }

func (p IncorrectSubmitPolicy) String() string { return nameOf(incorrectSubmitNames, p) }

func (p IncorrectSubmitPolicy) MarshalText() ([]byte, error) {
	return marshalName(incorrectSubmitNames, p)
}

func (p *IncorrectSubmitPolicy) UnmarshalText(b []byte) error {
	return unmarshalName(incorrectSubmitNames, p, b)
}

func (p IncorrectLetterPolicy) String() string { return nameOf(incorrectLetterNames, p) }

func (p IncorrectLetterPolicy) MarshalText() ([]byte, error) {
	return marshalName(incorrectLetterNames, p)
}

func (p *IncorrectLetterPolicy) UnmarshalText(b []byte) error {
	return unmarshalName(incorrectLetterNames, p, b)
}

func nameOf[P ~int](names map[P]string, p P) string {
	if s, ok := names[p]; ok {
		return s
	}
	return fmt.Sprintf("unknown(%d)", p)
}

func marshalName[P ~int](names map[P]string, p P) ([]byte, error) {
	s, ok := names[p]
	if !ok {
		return nil, fmt.Errorf("difficulty: unknown policy %d", p)
	}
	return []byte(s), nil
}

func unmarshalName[P ~int](names map[P]string, p *P, b []byte) error {
	for k, v := range names {
		if v == string(b) {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("difficulty: unknown policy %q", b)
}
