// internal/board/board.go
//
// Letter grid generation for a session.
// Responsibilities:
//   - Build an N×N board from a weighted English letter pool.
//   - Keep a vowel floor in the letter pool so words stay buildable.
//   - Scatter bunny traps over a quarter of the tiles.
//   - Re-shuffle the letters of untouched tiles mid-round.
//
// Generation is fully determined by (gridSize, seed); see internal/rng.

package board

import (
	"math"

	"github.com/robalobadob/bunny-rescue/internal/rng"
)

// letterWeight is one row of the frequency table.
type letterWeight struct {
	letter byte
	freq   float64
}

// letterFrequencies approximates English letter frequency (percent), tuned
// for sight words. Order matters: the pool is built in this order.
var letterFrequencies = []letterWeight{
	{'A', 8.2}, {'B', 1.5}, {'C', 2.8}, {'D', 4.3}, {'E', 12.7}, {'F', 2.2},
	{'G', 2.0}, {'H', 6.1}, {'I', 7.0}, {'J', 0.15}, {'K', 0.77}, {'L', 4.0},
	{'M', 2.4}, {'N', 6.7}, {'O', 7.5}, {'P', 1.9}, {'Q', 0.1}, {'R', 6.0},
	{'S', 6.3}, {'T', 9.1}, {'U', 2.8}, {'V', 0.98}, {'W', 2.4}, {'X', 0.15},
	{'Y', 2.0}, {'Z', 0.07},
}

var vowels = []byte{'A', 'E', 'I', 'O', 'U'}

const (
	poolScale    = 1.2
	vowelDensity = 0.3
)

// Generate builds a board and its traps for the given grid size and seed.
// The same (gridSize, seed) always yields the same board.
func Generate(gridSize int, seed int64) (Board, []Trap) {
	return generate(gridSize, rng.New(seed))
}

// GenerateRandom builds a board from a random seed and reports that seed.
func GenerateRandom(gridSize int) (Board, []Trap, int64) {
	r, seed := rng.NewRandom()
	b, traps := generate(gridSize, r)
	return b, traps, seed
}

func generate(gridSize int, r *rng.Rand) (Board, []Trap) {
	if gridSize <= 0 {
		return Board{}, []Trap{}
	}
	total := gridSize * gridSize
	letters := rng.Shuffle(r, letterPool(total, r))[:total]

	b := make(Board, gridSize)
	k := 0
	for row := 0; row < gridSize; row++ {
		b[row] = make([]Tile, gridSize)
		for col := 0; col < gridSize; col++ {
			b[row][col] = Tile{Letter: string(letters[k]), Row: row, Col: col}
			k++
		}
	}

	// Traps by rejection sampling on duplicate coordinates.
	trapCount := TrapCount(gridSize)
	traps := make([]Trap, 0, trapCount)
	taken := make(map[Position]bool, trapCount)
	for len(traps) < trapCount {
		p := Position{Row: r.NextInt(gridSize), Col: r.NextInt(gridSize)}
		if taken[p] {
			continue
		}
		taken[p] = true
		b[p.Row][p.Col].HasTrap = true
		traps = append(traps, Trap{Row: p.Row, Col: p.Col})
	}
	return b, traps
}

// letterPool builds the weighted pool for a board of total tiles: every
// letter at least once, scaled by frequency, then random vowels appended
// until vowels make up floor(0.3 × total) of the pool. The pool is always
// at least total long.
func letterPool(total int, r *rng.Rand) []byte {
	var pool []byte
	for _, lw := range letterFrequencies {
		n := int(math.Max(1, jsRound(lw.freq/100*float64(total)*poolScale)))
		for i := 0; i < n; i++ {
			pool = append(pool, lw.letter)
		}
	}

	for nv := countVowels(pool); nv < MinPoolVowels(total); nv++ {
		pool = append(pool, vowels[r.NextInt(len(vowels))])
	}

	// The scaled pool covers the board for every real grid size; doubling
	// keeps the slice in bounds regardless.
	for len(pool) < total {
		pool = append(pool, pool...)
	}
	return pool
}

// Shuffle returns a copy of b whose letters are permuted across the tiles
// that are neither cleared nor locked. Shuffled tiles lose their selection;
// cleared, locked and trap data never change.
func Shuffle(b Board, r *rng.Rand) Board {
	out := b.Clone()

	var letters []string
	var open []Position
	for _, row := range out {
		for _, t := range row {
			if t.Cleared || t.Locked {
				continue
			}
			letters = append(letters, t.Letter)
			open = append(open, Position{Row: t.Row, Col: t.Col})
		}
	}

	letters = rng.Shuffle(r, letters)
	for i, p := range open {
		t := &out[p.Row][p.Col]
		t.Letter = letters[i]
		t.Selected = false
	}
	return out
}

// TrapCount is the number of traps placed on a gridSize×gridSize board.
func TrapCount(gridSize int) int {
	return gridSize * gridSize / 4
}

// MinPoolVowels is the vowel floor of the letter pool for a board of total
// tiles. The board itself is a shuffled slice of the pool and may hold fewer.
func MinPoolVowels(total int) int {
	return int(math.Floor(float64(total) * vowelDensity))
}

// CountRemaining counts traps that still hold a bunny.
func CountRemaining(traps []Trap) int {
	n := 0
	for _, t := range traps {
		if !t.Rescued {
			n++
		}
	}
	return n
}

func isVowel(c byte) bool {
	for _, v := range vowels {
		if c == v {
			return true
		}
	}
	return false
}

func countVowels(letters []byte) int {
	n := 0
	for _, c := range letters {
		if isVowel(c) {
			n++
		}
	}
	return n
}

// jsRound rounds half up, matching the rounding the frequency table was
// tuned with (math.Round differs only for negative halves).
func jsRound(x float64) float64 {
	return math.Floor(x + 0.5)
}
