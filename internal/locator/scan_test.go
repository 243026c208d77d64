package locator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestScan_RowMajor(t *testing.T) {
	q, err := ValidateInts(2, [][]int{
		{0, 0, 0, 0},
		{0, 0, 1, 0},
		{1, 0, 0, 1},
	})
	require.NoError(t, err)

	occupied, empty := Scan(q.Grid)

	wantOccupied := []Position{{1, 2}, {2, 0}, {2, 3}}
	wantEmpty := []Position{
		{0, 0}, {0, 1}, {0, 2}, {0, 3},
		{1, 0}, {1, 1}, {1, 3},
		{2, 1}, {2, 2},
	}
	if diff := cmp.Diff(wantOccupied, occupied); diff != "" {
		t.Errorf("occupied mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantEmpty, empty); diff != "" {
		t.Errorf("empty mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_PartitionsEveryCell(t *testing.T) {
	q, err := ValidateInts(1, [][]int{{1, 1}, {1, 1}})
	require.NoError(t, err)

	occupied, empty := Scan(q.Grid)
	require.Len(t, occupied, 4)
	require.Empty(t, empty)
}
