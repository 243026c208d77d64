package locator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(rows, cols int, v float64) [][]float64 {
	g := make([][]float64, rows)
	for r := range g {
		g[r] = make([]float64, cols)
		for c := range g[r] {
			g[r][c] = v
		}
	}
	return g
}

func withHouse(g [][]float64) [][]float64 {
	g[0][0] = 1
	return g
}

func TestValidate_Errors(t *testing.T) {
	valid := [][]float64{{0, 1}, {0, 0}}

	tests := []struct {
		name      string
		k         float64
		grid      [][]float64
		wantField string
		wantMsg   string
	}{
		{"k zero", 0, valid, FieldK, "k must be an integer within the range [1..800]"},
		{"k too large", 801, valid, FieldK, "k must be an integer within the range [1..800]"},
		{"k negative", -3, valid, FieldK, "k must be an integer within the range [1..800]"},
		{"k fractional", 1.5, valid, FieldK, "k must be an integer within the range [1..800]"},
		{"k NaN", math.NaN(), valid, FieldK, "k must be an integer within the range [1..800]"},
		{"k infinite", math.Inf(1), valid, FieldK, "k must be an integer within the range [1..800]"},
		{"k checked before grid", 0, nil, FieldK, "k must be an integer within the range [1..800]"},
		{"nil grid", 2, nil, FieldGrid, "grid must be a non-empty array"},
		{"no rows", 2, [][]float64{}, FieldGrid, "grid must be a non-empty array"},
		{"single row", 2, [][]float64{{0, 1, 0}}, FieldGrid, "grid dimensions must be within the range [2..400]"},
		{"single column", 2, [][]float64{{1}, {0}}, FieldGrid, "grid dimensions must be within the range [2..400]"},
		{"empty first row", 2, [][]float64{{}, {0, 1}}, FieldGrid, "grid dimensions must be within the range [2..400]"},
		{"too many rows", 2, withHouse(filled(401, 2, 0)), FieldGrid, "grid dimensions must be within the range [2..400]"},
		{"too many columns", 2, withHouse(filled(2, 401, 0)), FieldGrid, "grid dimensions must be within the range [2..400]"},
		{"jagged short", 2, [][]float64{{0, 1}, {1}}, FieldGrid, "grid must be rectangular with consistent row lengths"},
		{"jagged long", 2, [][]float64{{0, 1}, {1, 0, 0}}, FieldGrid, "grid must be rectangular with consistent row lengths"},
		{"nil row", 2, [][]float64{{0, 1}, nil}, FieldGrid, "grid must be rectangular with consistent row lengths"},
		{"shape before values", 2, [][]float64{{2, 1}, {1}}, FieldGrid, "grid must be rectangular with consistent row lengths"},
		{"value two", 2, [][]float64{{0, 2}, {1, 0}}, FieldGrid, "grid elements must be integers 0 or 1"},
		{"value negative", 2, [][]float64{{0, -1}, {1, 0}}, FieldGrid, "grid elements must be integers 0 or 1"},
		{"value fractional", 2, [][]float64{{0, 0.5}, {1, 0}}, FieldGrid, "grid elements must be integers 0 or 1"},
		{"value NaN", 2, [][]float64{{0, math.NaN()}, {1, 0}}, FieldGrid, "grid elements must be integers 0 or 1"},
		{"all empty", 2, [][]float64{{0, 0}, {0, 0}}, FieldGrid, "grid must contain at least one house (value 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Validate(tt.k, tt.grid)
			require.Error(t, err)
			assert.Nil(t, q)

			ve, ok := IsValidationError(err)
			require.True(t, ok, "expected *ValidationError, got %T", err)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Equal(t, tt.wantMsg, ve.Message)
			assert.Equal(t, "ValidationError", ve.Kind())
		})
	}
}

func TestValidate_Bounds(t *testing.T) {
	tests := []struct {
		name string
		k    float64
		grid [][]float64
	}{
		{"minimum", MinK, withHouse(filled(MinDim, MinDim, 0))},
		{"maximum", MaxK, withHouse(filled(MaxDim, MaxDim, 0))},
		{"all houses", 3, filled(3, 4, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Validate(tt.k, tt.grid)
			require.NoError(t, err)
			assert.Equal(t, int(tt.k), q.K)
			assert.Equal(t, len(tt.grid), q.Grid.Rows())
			assert.Equal(t, len(tt.grid[0]), q.Grid.Cols())
		})
	}
}

func TestValidate_CopiesInput(t *testing.T) {
	raw := [][]float64{{0, 1}, {0, 0}}
	q, err := Validate(1, raw)
	require.NoError(t, err)

	raw[0][1] = 0
	raw[1][1] = 1

	assert.Equal(t, Occupied, q.Grid.At(0, 1))
	assert.Equal(t, Empty, q.Grid.At(1, 1))
	assert.Equal(t, [][]int{{0, 1}, {0, 0}}, q.Grid.Ints())
}

func TestValidateInts(t *testing.T) {
	q, err := ValidateInts(4, [][]int{{1, 0, 0}, {0, 0, 1}})
	require.NoError(t, err)
	assert.Equal(t, 4, q.K)
	assert.Equal(t, [][]int{{1, 0, 0}, {0, 0, 1}}, q.Grid.Ints())

	_, err = ValidateInts(2, [][]int{{0, 1}, {1}})
	ve, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, FieldGrid, ve.Field)
}

func TestFloat64s(t *testing.T) {
	assert.Nil(t, Float64s(nil))
	assert.Equal(t, [][]float64{{1, 0}, nil, {0}}, Float64s([][]int{{1, 0}, nil, {0}}))
}

func TestGridAt_OutOfRange(t *testing.T) {
	q, err := ValidateInts(1, [][]int{{1, 0}, {0, 0}})
	require.NoError(t, err)
	assert.Panics(t, func() { q.Grid.At(2, 0) })
	assert.Panics(t, func() { q.Grid.At(0, -1) })
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: FieldK, Message: "bad"}
	assert.Equal(t, "invalid k: bad", err.Error())
}
