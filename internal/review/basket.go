// internal/review/basket.go
//
// Review basket: words the player missed, queued for spaced repetition.
// Words are compared case-insensitively and stored lowercase. A word goes in
// when it is failed and comes out when it is later spelled correctly.

package review

import (
	"slices"
	"strings"

	"github.com/robalobadob/bunny-rescue/internal/rng"
)

// Basket is a case-insensitive word set. Not safe for concurrent use.
type Basket struct {
	words map[string]struct{}
	rnd   *rng.Rand
}

// New returns a basket holding initial, picking review words with rnd.
// A nil rnd gets a randomly seeded generator.
func New(rnd *rng.Rand, initial ...string) *Basket {
	if rnd == nil {
		rnd, _ = rng.NewRandom()
	}
	b := &Basket{words: make(map[string]struct{}, len(initial)), rnd: rnd}
	for _, w := range initial {
		b.Add(w)
	}
	return b
}

func normalize(w string) string { return strings.ToLower(strings.TrimSpace(w)) }

// Add inserts w; adding an existing word in any case is a no-op.
func (b *Basket) Add(w string) {
	if w = normalize(w); w != "" {
		b.words[w] = struct{}{}
	}
}

// Remove deletes w and reports whether it was present.
func (b *Basket) Remove(w string) bool {
	w = normalize(w)
	if _, ok := b.words[w]; !ok {
		return false
	}
	delete(b.words, w)
	return true
}

// Has reports whether w is in the basket.
func (b *Basket) Has(w string) bool {
	_, ok := b.words[normalize(w)]
	return ok
}

func (b *Basket) IsEmpty() bool { return len(b.words) == 0 }

func (b *Basket) Size() int { return len(b.words) }

// All returns the words, lowercase and sorted.
func (b *Basket) All() []string {
	out := make([]string, 0, len(b.words))
	for w := range b.words {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

func (b *Basket) Clear() { clear(b.words) }

// RandomWord returns a uniformly chosen word, or ok=false when empty.
func (b *Basket) RandomWord() (string, bool) {
	if b.IsEmpty() {
		return "", false
	}
	all := b.All()
	return all[b.rnd.NextInt(len(all))], true
}
