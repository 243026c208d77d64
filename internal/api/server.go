// Package api serves the store-location solver over HTTP.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/storefinder/internal/db"
	"github.com/banshee-data/storefinder/internal/httputil"
	"github.com/banshee-data/storefinder/internal/locator"
	"github.com/banshee-data/storefinder/internal/metrics"
	"github.com/banshee-data/storefinder/internal/monitoring"
	"github.com/banshee-data/storefinder/internal/timeutil"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// logf reports handler failures. Request lines go through LoggingMiddleware.
var logf = monitoring.Prefixed("api")

// QueryStore persists answered queries. *db.DB satisfies it.
type QueryStore interface {
	RecordQuery(q *db.QueryRecord) error
	ListQueries(limit int) ([]db.QueryRecord, error)
	GetQuery(id string) (*db.QueryRecord, error)
	ElapsedSamples(limit int) ([]float64, error)
}

// Options tunes a Server. Zero values fall back to the documented defaults.
type Options struct {
	SolveTimeout time.Duration
	MaxBodyBytes int64
	// RateLimit is the number of requests a client IP may make per
	// RateWindow. Zero disables rate limiting.
	RateLimit  int
	RateWindow time.Duration
	Clock      timeutil.Clock
}

const (
	defaultSolveTimeout = 10 * time.Second
	defaultMaxBodyBytes = 10 << 20
)

type Server struct {
	store        QueryStore
	solver       *locator.Solver
	clock        timeutil.Clock
	limiter      *RateLimiter
	solveTimeout time.Duration
	maxBodyBytes int64
}

// NewServer returns a Server answering from store, which may be nil to run
// without query history.
func NewServer(store QueryStore, o Options) *Server {
	clock := o.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	s := &Server{
		store:        store,
		solver:       locator.NewSolver(clock),
		clock:        clock,
		solveTimeout: o.SolveTimeout,
		maxBodyBytes: o.MaxBodyBytes,
	}
	if s.solveTimeout <= 0 {
		s.solveTimeout = defaultSolveTimeout
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = defaultMaxBodyBytes
	}
	s.limiter = NewRateLimiter(o.RateLimit, o.RateWindow, clock)
	return s
}

// Start runs background maintenance until Close is called.
func (s *Server) Start() {
	if s.limiter != nil {
		go s.limiter.Start()
	}
}

// Close stops background maintenance.
func (s *Server) Close() {
	s.limiter.Stop()
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux registers every route on a new mux. Callers may add more routes
// (the admin debugger, for instance) before serving it through Handler.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/store-locations", s.handleStoreLocations)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/examples", s.handleExamples)
	mux.HandleFunc("GET /api/queries", s.listQueries)
	mux.HandleFunc("GET /api/queries/{id}", s.showQuery)
	mux.HandleFunc("GET /api/queries/{id}/chart", s.showQueryChart)
	mux.HandleFunc("GET /api/queries/{id}/plot.png", s.showQueryPlot)
	mux.HandleFunc("GET /api/stats", s.showStats)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

// Handler wraps mux with request logging and rate limiting.
func (s *Server) Handler(mux http.Handler) http.Handler {
	return LoggingMiddleware(s.limiter.Middleware(mux))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	httputil.NotFound(w, "The requested endpoint does not exist")
}
