package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/banshee-data/storefinder/internal/db"
	"github.com/banshee-data/storefinder/internal/httputil"
	"github.com/banshee-data/storefinder/internal/render"
)

const (
	defaultListLimit = 50
	// statsSampleLimit bounds how many recent queries feed /api/stats.
	statsSampleLimit = 1000
)

// requireStore reports whether history is available, answering 503 if not.
func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		httputil.ServiceUnavailable(w, "query history is disabled")
		return false
	}
	return true
}

func (s *Server) listQueries(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	queries, err := s.store.ListQueries(limit)
	if err != nil {
		logf("failed to list queries: %v", err)
		httputil.InternalServerError(w, "failed to list queries")
		return
	}
	if queries == nil {
		queries = []db.QueryRecord{}
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"count":   len(queries),
		"queries": queries,
	})
}

// lookupQuery loads the query named by the {id} path value, writing the
// error response itself when it cannot.
func (s *Server) lookupQuery(w http.ResponseWriter, r *http.Request) (*db.QueryRecord, bool) {
	if !s.requireStore(w) {
		return nil, false
	}
	id := r.PathValue("id")
	q, err := s.store.GetQuery(id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "query not found")
		return nil, false
	}
	if err != nil {
		logf("failed to load query %s: %v", id, err)
		httputil.InternalServerError(w, "failed to load query")
		return nil, false
	}
	return q, true
}

func (s *Server) showQuery(w http.ResponseWriter, r *http.Request) {
	q, ok := s.lookupQuery(w, r)
	if !ok {
		return
	}
	httputil.WriteJSONOK(w, q)
}

func layoutOf(q *db.QueryRecord) render.Layout {
	return render.Layout{
		Title:     "Query " + q.ID,
		K:         q.K,
		Grid:      q.Grid,
		Locations: q.Locations,
	}
}

func (s *Server) showQueryChart(w http.ResponseWriter, r *http.Request) {
	q, ok := s.lookupQuery(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.Heatmap(&buf, layoutOf(q)); err != nil {
		logf("failed to render chart for %s: %v", q.ID, err)
		httputil.InternalServerError(w, "failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) showQueryPlot(w http.ResponseWriter, r *http.Request) {
	q, ok := s.lookupQuery(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.PlotPNG(&buf, layoutOf(q)); err != nil {
		logf("failed to plot %s: %v", q.ID, err)
		httputil.InternalServerError(w, "failed to render plot")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) showStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	samples, err := s.store.ElapsedSamples(statsSampleLimit)
	if err != nil {
		logf("failed to load elapsed samples: %v", err)
		httputil.InternalServerError(w, "failed to load stats")
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"elapsed": render.ElapsedSummary(samples),
	})
}
