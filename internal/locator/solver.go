package locator

import (
	"context"
	"fmt"
	"time"

	"github.com/banshee-data/storefinder/internal/timeutil"
)

// Result is the outcome of one query. Count always equals len(Locations).
// Query is the validated input the locations were computed from.
type Result struct {
	Query     *Query
	Count     int
	Locations []Position
	Elapsed   time.Duration
}

// Solver runs the validate, scan, evaluate pipeline. The zero value is ready
// to use and measures elapsed time with the wall clock.
type Solver struct {
	Clock timeutil.Clock
}

// NewSolver returns a Solver that reads time from clock. A nil clock means
// the wall clock.
func NewSolver(clock timeutil.Clock) *Solver {
	return &Solver{Clock: clock}
}

func (s *Solver) clock() timeutil.Clock {
	if s == nil || s.Clock == nil {
		return timeutil.RealClock{}
	}
	return s.Clock
}

// Solve validates the input and returns every plot within k of all houses.
// Elapsed covers validation, scanning and evaluation.
//
// Malformed input yields a *ValidationError and no partial result. Any other
// failure is reported wrapped in ErrInternal.
func (s *Solver) Solve(k float64, raw [][]float64) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: solve: %v", ErrInternal, r)
		}
	}()

	clock := s.clock()
	start := clock.Now()

	q, err := Validate(k, raw)
	if err != nil {
		return nil, err
	}

	occupied, empty := Scan(q.Grid)
	locations := Aggregate(empty, occupied, q.K)

	return &Result{
		Query:     q,
		Count:     len(locations),
		Locations: locations,
		Elapsed:   clock.Since(start),
	}, nil
}

// SolveInts is Solve for integer input.
func (s *Solver) SolveInts(k int, raw [][]int) (*Result, error) {
	return s.Solve(float64(k), Float64s(raw))
}

// SolveContext runs Solve on its own goroutine and gives up waiting when ctx
// is done. The computation is not interrupted; a late result is dropped.
// raw is copied first so the caller may reuse it as soon as this returns.
func (s *Solver) SolveContext(ctx context.Context, k float64, raw [][]float64) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw = cloneRows(raw)

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := s.Solve(k, raw)
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func cloneRows(raw [][]float64) [][]float64 {
	if raw == nil {
		return nil
	}
	out := make([][]float64, len(raw))
	for i, row := range raw {
		if row != nil {
			out[i] = append([]float64(nil), row...)
		}
	}
	return out
}
