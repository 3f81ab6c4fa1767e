// internal/board/types.go
//
// Board, tile and trap types shared by the generator and the game engine.

package board

// Position addresses a tile on the board.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Tile is one cell of the letter grid.
//
// Cleared only ever goes false → true within a round; a locked tile can
// never be selected.
type Tile struct {
	Letter   string `json:"letter"` // single uppercase A–Z
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	HasTrap  bool   `json:"hasTrap"`
	Cleared  bool   `json:"cleared"`
	Locked   bool   `json:"locked"`
	Selected bool   `json:"selected"`
}

// Pos returns the tile's coordinates.
func (t Tile) Pos() Position { return Position{Row: t.Row, Col: t.Col} }

// Trap holds a bunny until a correct word passes over its tile.
type Trap struct {
	Row     int  `json:"row"`
	Col     int  `json:"col"`
	Rescued bool `json:"rescued"`
}

// Board is a square grid of tiles indexed [row][col].
type Board [][]Tile

// Size is the board's edge length.
func (b Board) Size() int { return len(b) }

// Tile returns the tile at (row, col) or nil when out of range.
func (b Board) Tile(row, col int) *Tile {
	if row < 0 || row >= len(b) || col < 0 || col >= len(b[row]) {
		return nil
	}
	return &b[row][col]
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	for i, row := range b {
		out[i] = make([]Tile, len(row))
		copy(out[i], row)
	}
	return out
}

// Letters returns the board letters row by row, for logging and tests.
func (b Board) Letters() []string {
	out := make([]string, len(b))
	for i, row := range b {
		s := make([]byte, 0, len(row))
		for _, t := range row {
			s = append(s, t.Letter...)
		}
		out[i] = string(s)
	}
	return out
}

// CloneTraps returns a copy of traps.
func CloneTraps(traps []Trap) []Trap {
	if traps == nil {
		return nil
	}
	out := make([]Trap, len(traps))
	copy(out, traps)
	return out
}
