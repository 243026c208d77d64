package locator

import "math"

// Query is a validated input pair.
type Query struct {
	K    int
	Grid *Grid
}

// Validate checks a (k, grid) pair as it arrives off the wire and converts it
// into a Grid. JSON numbers decode as float64, so integrality is enforced
// here. The checks run in a fixed order and the first failure is returned:
//
//  1. k is an integer in [MinK, MaxK]
//  2. grid has at least one row
//  3. row and column counts are in [MinDim, MaxDim]
//  4. every row has the same length as the first
//  5. every value is exactly 0 or 1
//  6. at least one value is 1
//
// The returned Query shares no memory with raw.
func Validate(k float64, raw [][]float64) (*Query, error) {
	if math.IsNaN(k) || k != math.Trunc(k) || k < MinK || k > MaxK {
		return nil, invalid(FieldK, "k must be an integer within the range [1..800]")
	}

	if len(raw) == 0 {
		return nil, invalid(FieldGrid, "grid must be a non-empty array")
	}

	n, m := len(raw), len(raw[0])
	if n < MinDim || n > MaxDim || m < MinDim || m > MaxDim {
		return nil, invalid(FieldGrid, "grid dimensions must be within the range [2..400]")
	}

	for _, row := range raw {
		if len(row) != m {
			return nil, invalid(FieldGrid, "grid must be rectangular with consistent row lengths")
		}
	}

	cells := make([]Cell, 0, n*m)
	houses := 0
	for _, row := range raw {
		for _, v := range row {
			switch v {
			case 0:
				cells = append(cells, Empty)
			case 1:
				cells = append(cells, Occupied)
				houses++
			default:
				return nil, invalid(FieldGrid, "grid elements must be integers 0 or 1")
			}
		}
	}

	if houses == 0 {
		return nil, invalid(FieldGrid, "grid must contain at least one house (value 1)")
	}

	return &Query{K: int(k), Grid: &Grid{rows: n, cols: m, cells: cells}}, nil
}

// ValidateInts is Validate for callers that already hold integers.
func ValidateInts(k int, raw [][]int) (*Query, error) {
	return Validate(float64(k), Float64s(raw))
}

// Float64s widens an integer grid to the wire representation. Row slices keep
// their individual lengths so jagged input stays jagged.
func Float64s(raw [][]int) [][]float64 {
	if raw == nil {
		return nil
	}
	out := make([][]float64, len(raw))
	for i, row := range raw {
		if row == nil {
			continue
		}
		fr := make([]float64, len(row))
		for j, v := range row {
			fr[j] = float64(v)
		}
		out[i] = fr
	}
	return out
}
