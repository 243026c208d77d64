package locator

import "fmt"

// Grid bounds. Rows and columns share the same range.
const (
	MinDim = 2
	MaxDim = 400
	MinK   = 1
	MaxK   = 800
)

// Cell is the state of one grid square.
type Cell uint8

const (
	Empty Cell = iota
	Occupied
)

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case Occupied:
		return "occupied"
	default:
		return fmt.Sprintf("Cell(%d)", uint8(c))
	}
}

// Position is a 0-based (row, col) coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Grid is a validated, rectangular, row-major grid. It is only built by
// Validate, so every Grid has dimensions in [MinDim, MaxDim] and at least one
// Occupied cell.
type Grid struct {
	rows  int
	cols  int
	cells []Cell
}

// Rows returns N.
func (g *Grid) Rows() int { return g.rows }

// Cols returns M.
func (g *Grid) Cols() int { return g.cols }

// At returns the cell at (row, col). It panics when out of range, like a
// slice index.
func (g *Grid) At(row, col int) Cell {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		panic(fmt.Sprintf("locator: position (%d,%d) outside %dx%d grid", row, col, g.rows, g.cols))
	}
	return g.cells[row*g.cols+col]
}

// Ints converts the grid back to the 0/1 wire encoding. The result is a fresh
// allocation.
func (g *Grid) Ints() [][]int {
	out := make([][]int, g.rows)
	for r := range out {
		row := make([]int, g.cols)
		for c := range row {
			if g.cells[r*g.cols+c] == Occupied {
				row[c] = 1
			}
		}
		out[r] = row
	}
	return out
}

// Distance is the grid (taxicab) distance between a and b.
func Distance(a, b Position) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
