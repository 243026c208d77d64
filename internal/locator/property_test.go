package locator

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomGrid(rng *rand.Rand, rows, cols int, density float64) [][]int {
	g := make([][]int, rows)
	for r := range g {
		g[r] = make([]int, cols)
		for c := range g[r] {
			if rng.Float64() < density {
				g[r][c] = 1
			}
		}
	}
	g[rng.IntN(rows)][rng.IntN(cols)] = 1
	return g
}

func TestSolve_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(20260301, 17))
	s := NewSolver(nil)

	for i := 0; i < 200; i++ {
		rows := MinDim + rng.IntN(14)
		cols := MinDim + rng.IntN(14)
		k := MinK + rng.IntN(rows+cols)
		grid := randomGrid(rng, rows, cols, 0.02+rng.Float64()*0.2)

		res, err := s.SolveInts(k, grid)
		require.NoError(t, err, "case %d", i)

		var houses []Position
		for r, row := range grid {
			for c, v := range row {
				if v == 1 {
					houses = append(houses, Position{r, c})
				}
			}
		}

		// count consistency and distinctness
		require.Equal(t, len(res.Locations), res.Count, "case %d", i)
		seen := make(map[Position]bool, res.Count)
		for _, p := range res.Locations {
			require.False(t, seen[p], "case %d: duplicate %v", i, p)
			seen[p] = true
			require.Equal(t, 0, grid[p.Row][p.Col], "case %d: %v is not a plot", i, p)
		}

		// soundness
		for _, p := range res.Locations {
			for _, h := range houses {
				require.LessOrEqual(t, Distance(p, h), k, "case %d: %v too far from %v", i, p, h)
			}
		}

		// completeness
		for r, row := range grid {
			for c, v := range row {
				p := Position{r, c}
				if v != 0 || seen[p] {
					continue
				}
				violated := false
				for _, h := range houses {
					if Distance(p, h) > k {
						violated = true
						break
					}
				}
				require.True(t, violated, "case %d: plot %v omitted but within %d of all houses", i, p, k)
			}
		}

		// determinism
		again, err := s.SolveInts(k, grid)
		require.NoError(t, err)
		assert.Equal(t, res.Locations, again.Locations, "case %d", i)
	}
}

func BenchmarkSolve_Dense(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))
	grid := randomGrid(rng, 100, 100, 0.5)
	raw := Float64s(grid)
	s := NewSolver(nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Solve(MaxK, raw); err != nil {
			b.Fatal(err)
		}
	}
}
