// internal/words/selector.go
//
// Target word selection with interleaved review words.

package words

import (
	"slices"
	"strings"

	"github.com/robalobadob/bunny-rescue/internal/review"
	"github.com/robalobadob/bunny-rescue/internal/rng"
)

// reviewCadence is how often (in turns) a review word replaces a fresh one.
const reviewCadence = 3

// Selector hands out target words from a shuffled permutation of its list.
// Not safe for concurrent use.
type Selector struct {
	words  []string
	order  []string
	cursor int
	rnd    *rng.Rand
	deprio func(word string) bool
}

// NewSelector builds a selector over list (uppercased, first occurrence
// kept). A nil rnd gets a randomly seeded generator.
func NewSelector(list []string, rnd *rng.Rand) *Selector {
	if rnd == nil {
		rnd, _ = rng.NewRandom()
	}
	s := &Selector{rnd: rnd}
	seen := make(map[string]struct{}, len(list))
	for _, w := range list {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		s.words = append(s.words, w)
	}
	s.reshuffle()
	return s
}

// Deprioritize installs a predicate; words it accepts are moved behind the
// others in every fresh permutation, keeping relative order.
func (s *Selector) Deprioritize(fn func(word string) bool) {
	s.deprio = fn
	s.reshuffle()
}

func (s *Selector) reshuffle() {
	order := rng.Shuffle(s.rnd, s.words)
	if s.deprio != nil {
		front := make([]string, 0, len(order))
		var back []string
		for _, w := range order {
			if s.deprio(w) {
				back = append(back, w)
			} else {
				front = append(front, w)
			}
		}
		order = append(front, back...)
	}
	s.order = order
	s.cursor = 0
}

// Next returns the word for turnNumber. On every positive multiple of three
// a non-empty basket supplies a random review word instead, without moving
// the permutation. Returns "" only when the list is empty and no review
// word was drawn.
func (s *Selector) Next(turnNumber int, basket *review.Basket) string {
	if turnNumber > 0 && turnNumber%reviewCadence == 0 && basket != nil && !basket.IsEmpty() {
		if w, ok := basket.RandomWord(); ok {
			return strings.ToUpper(w)
		}
	}
	if len(s.words) == 0 {
		return ""
	}
	if s.cursor >= len(s.order) {
		s.reshuffle()
	}
	w := s.order[s.cursor]
	s.cursor++
	return w
}

// AddWords appends words not already present, then reshuffles and
// restarts the permutation.
func (s *Selector) AddWords(list []string) {
	for _, w := range list {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w == "" || slices.Contains(s.words, w) {
			continue
		}
		s.words = append(s.words, w)
	}
	s.reshuffle()
}

// Reset reshuffles and restarts the permutation.
func (s *Selector) Reset() { s.reshuffle() }

// Len is the number of distinct words available.
func (s *Selector) Len() int { return len(s.words) }

// Words returns a copy of the word list in insertion order.
func (s *Selector) Words() []string { return slices.Clone(s.words) }
