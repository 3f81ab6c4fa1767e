// internal/rng/rng.go
//
// Deterministic pseudo-random source used for board generation, word
// shuffles and review picks.
//
// The generator is the small linear-congruential recurrence
//
//	seed = (seed*9301 + 49297) mod 233280
//	value = seed / 233280
//
// which is cheap, portable and reproduces the same boards in every port
// that uses the same recurrence. It is NOT suitable for anything that
// needs unpredictability.
package rng

import (
	"math"
	"math/rand/v2"
)

const (
	multiplier = 9301
	increment  = 49297
	modulus    = 233280

	// maxRandomSeed bounds seeds picked by NewRandom.
	maxRandomSeed = 1_000_000
)

// Rand is a seeded LCG. The zero value is usable and behaves like New(0).
// A Rand is not safe for concurrent use.
type Rand struct {
	seed int64
}

// New returns a generator seeded with seed.
// The seed is reduced into [0, 233280); for non-negative seeds this does not
// change the output sequence.
func New(seed int64) *Rand {
	s := seed % modulus
	if s < 0 {
		s += modulus
	}
	return &Rand{seed: s}
}

// NewRandom returns a generator with a random seed in [0, 1_000_000).
// The chosen seed is returned so callers can record it for replay.
func NewRandom() (*Rand, int64) {
	seed := rand.Int64N(maxRandomSeed)
	return New(seed), seed
}

// Next advances the generator and returns a float in [0, 1).
func (r *Rand) Next() float64 {
	r.seed = (r.seed*multiplier + increment) % modulus
	return float64(r.seed) / modulus
}

// NextInt returns an integer in [0, max). max must be positive.
func (r *Rand) NextInt(max int) int {
	return int(math.Floor(r.Next() * float64(max)))
}

// Shuffle returns a Fisher–Yates shuffled copy of in. The input is untouched.
func Shuffle[T any](r *Rand, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	for i := len(out) - 1; i > 0; i-- {
		j := r.NextInt(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
