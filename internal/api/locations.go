package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/storefinder/internal/db"
	"github.com/banshee-data/storefinder/internal/httputil"
	"github.com/banshee-data/storefinder/internal/locator"
	"github.com/banshee-data/storefinder/internal/metrics"
)

// storeLocationsRequest keeps the fields raw so that a missing field can be
// told apart from a badly typed one. Matrix is accepted as an alias of Grid.
type storeLocationsRequest struct {
	K      json.RawMessage `json:"k"`
	Grid   json.RawMessage `json:"grid"`
	Matrix json.RawMessage `json:"matrix"`
}

type storeLocationsData struct {
	ID        string             `json:"id"`
	Count     int                `json:"count"`
	Locations []locator.Position `json:"locations"`
	Elapsed   float64            `json:"elapsed"`
}

type storeLocationsResponse struct {
	Success bool               `json:"success"`
	Data    storeLocationsData `json:"data"`
}

func (s *Server) handleStoreLocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	var req storeLocationsRequest
	if err := decodeBody(r.Body, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteJSONError(w, http.StatusRequestEntityTooLarge, "request body exceeds the size limit")
			return
		}
		httputil.BadRequest(w, "request body must be a JSON object")
		return
	}

	rawGrid := req.Grid
	if len(rawGrid) == 0 {
		rawGrid = req.Matrix
	}
	if len(req.K) == 0 || len(rawGrid) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error:   "Missing required parameters",
			Message: "Both k and grid are required",
		})
		return
	}
	k := decodeNumber(req.K)
	grid := decodeGrid(rawGrid)

	ctx, cancel := context.WithTimeout(r.Context(), s.solveTimeout)
	defer cancel()

	res, err := s.solver.SolveContext(ctx, k, grid)
	if err != nil {
		s.writeSolveError(w, err)
		return
	}

	id := uuid.NewString()
	elapsedMs := float64(res.Elapsed) / float64(time.Millisecond)
	metrics.RecordQuery(metrics.OutcomeOK)
	metrics.RecordSolve(res.Elapsed, res.Count)

	if s.store != nil {
		rec := &db.QueryRecord{
			ID:        id,
			K:         res.Query.K,
			Grid:      res.Query.Grid.Ints(),
			Count:     res.Count,
			Locations: res.Locations,
			ElapsedMs: elapsedMs,
			Client:    clientIP(r),
			CreatedAt: s.clock.Now().UTC(),
		}
		if err := s.store.RecordQuery(rec); err != nil {
			logf("failed to record query %s: %v", id, err)
		}
	}

	httputil.WriteJSONOK(w, storeLocationsResponse{
		Success: true,
		Data: storeLocationsData{
			ID:        id,
			Count:     res.Count,
			Locations: res.Locations,
			Elapsed:   elapsedMs,
		},
	})
}

func (s *Server) writeSolveError(w http.ResponseWriter, err error) {
	if ve, ok := locator.IsValidationError(err); ok {
		metrics.RecordQuery(metrics.OutcomeValidationError)
		httputil.WriteError(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error:   "Validation Error",
			Message: ve.Message,
			Kind:    ve.Kind(),
			Field:   ve.Field,
		})
		return
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		metrics.RecordQuery(metrics.OutcomeTimeout)
		logf("store location solve abandoned: %v", err)
		httputil.ServiceUnavailable(w, "The request took too long to process")
		return
	}
	metrics.RecordQuery(metrics.OutcomeInternalError)
	logf("Unexpected error: %v", err)
	httputil.WriteError(w, http.StatusInternalServerError, httputil.ErrorResponse{
		Error:   "Internal Server Error",
		Message: "An unexpected error occurred",
		Kind:    "InternalError",
	})
}

// decodeBody reads exactly one JSON value from body. An empty body decodes to
// the zero request; anything after the first value is an error.
func decodeBody(body io.Reader, req *storeLocationsRequest) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON object")
		}
		return err
	}
	return nil
}

// decodeNumber returns the JSON number in raw, or NaN for anything else so
// the validator reports it against k.
func decodeNumber(raw json.RawMessage) float64 {
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return math.NaN()
	}
	return v
}

// decodeGrid converts a JSON grid into the validator's input form. A value
// that is not an array becomes a nil grid and a non-array row a nil row;
// non-numeric cells become NaN. The validator then rejects each of these
// against the grid field.
func decodeGrid(raw json.RawMessage) [][]float64 {
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil || rows == nil {
		return nil
	}
	grid := make([][]float64, len(rows))
	for i, rawRow := range rows {
		var cells []json.RawMessage
		if err := json.Unmarshal(rawRow, &cells); err != nil || cells == nil {
			continue
		}
		row := make([]float64, len(cells))
		for j, c := range cells {
			row[j] = decodeNumber(c)
		}
		grid[i] = row
	}
	return grid
}
