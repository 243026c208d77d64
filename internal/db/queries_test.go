package db

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/storefinder/internal/locator"
)

func TestRecordQuery_RoundTrip(t *testing.T) {
	d := NewTestDB(t)

	created := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)
	rec := &QueryRecord{
		K:         2,
		Grid:      [][]int{{0, 0, 0, 0}, {0, 0, 1, 0}, {1, 0, 0, 1}},
		Count:     2,
		Locations: []locator.Position{{Row: 2, Col: 1}, {Row: 2, Col: 2}},
		ElapsedMs: 0.042,
		Client:    "127.0.0.1",
		CreatedAt: created,
	}
	require.NoError(t, d.RecordQuery(rec))
	require.NotEmpty(t, rec.ID)
	assert.Equal(t, 3, rec.Rows)
	assert.Equal(t, 4, rec.Cols)

	got, err := d.GetQuery(rec.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Errorf("stored query mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordQuery_KeepsGivenID(t *testing.T) {
	d := NewTestDB(t)

	rec := &QueryRecord{ID: "fixed-id", K: 1, Grid: [][]int{{0, 1}, {0, 0}}, Count: 0}
	require.NoError(t, d.RecordQuery(rec))
	assert.Equal(t, "fixed-id", rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := d.GetQuery("fixed-id")
	require.NoError(t, err)
	assert.Empty(t, got.Locations)
	assert.NotNil(t, got.Locations)

	assert.Error(t, d.RecordQuery(&QueryRecord{ID: "fixed-id", K: 1}), "duplicate id")
}

func TestGetQuery_NotFound(t *testing.T) {
	d := NewTestDB(t)

	_, err := d.GetQuery("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListQueries_NewestFirst(t *testing.T) {
	d := NewTestDB(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, d.RecordQuery(&QueryRecord{
			ID:        fmt.Sprintf("q%d", i),
			K:         i + 1,
			Grid:      [][]int{{1, 0}, {0, 0}},
			Count:     i,
			ElapsedMs: float64(i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := d.ListQueries(10)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "q4", all[0].ID)
	assert.Equal(t, "q0", all[4].ID)
	assert.Nil(t, all[0].Grid, "list omits grid payload")
	assert.Equal(t, base.Add(4*time.Minute), all[0].CreatedAt)

	two, err := d.ListQueries(2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	clamped, err := d.ListQueries(0)
	require.NoError(t, err)
	assert.Len(t, clamped, 1)
}

func TestListQueries_Empty(t *testing.T) {
	d := NewTestDB(t)

	got, err := d.ListQueries(50)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestElapsedSamples(t *testing.T) {
	d := NewTestDB(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, ms := range []float64{1.5, 2.5, 0.5} {
		require.NoError(t, d.RecordQuery(&QueryRecord{
			K:         1,
			Grid:      [][]int{{1, 0}, {0, 0}},
			ElapsedMs: ms,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	samples, err := d.ElapsedSamples(10)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 2.5, 1.5}, samples)

	latest, err := d.ElapsedSamples(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, latest)
}

func TestQueryRecord_String(t *testing.T) {
	q := &QueryRecord{ID: "abc", K: 3, Rows: 4, Cols: 5, Count: 2, ElapsedMs: 1.25}
	assert.Equal(t, "ID: abc, K: 3, Size: 4x5, Count: 2, Elapsed: 1.250ms", q.String())
}
