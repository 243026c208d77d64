package api

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"

	"github.com/banshee-data/storefinder/internal/httputil"
	"github.com/banshee-data/storefinder/internal/metrics"
	"github.com/banshee-data/storefinder/internal/timeutil"
)

const defaultRateWindow = 15 * time.Minute

// RateLimiter gives each client IP a token bucket holding up to requests
// tokens that refills over window. Buckets of clients idle for a full window
// are dropped.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	clock   timeutil.Clock
	clients *ttlcache.Cache[string, *rate.Limiter]
}

// NewRateLimiter returns a limiter admitting requests per window per client.
// It returns nil when requests is not positive; a nil *RateLimiter admits
// everything.
func NewRateLimiter(requests int, window time.Duration, clock timeutil.Clock) *RateLimiter {
	if requests <= 0 {
		return nil
	}
	if window <= 0 {
		window = defaultRateWindow
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &RateLimiter{
		limit: rate.Every(window / time.Duration(requests)),
		burst: requests,
		clock: clock,
		clients: ttlcache.New[string, *rate.Limiter](
			ttlcache.WithTTL[string, *rate.Limiter](window),
		),
	}
}

// Start evicts idle clients until Stop is called. It blocks.
func (rl *RateLimiter) Start() {
	if rl != nil {
		rl.clients.Start()
	}
}

// Stop ends Start.
func (rl *RateLimiter) Stop() {
	if rl != nil {
		rl.clients.Stop()
	}
}

// Allow reports whether client may make another request now.
func (rl *RateLimiter) Allow(client string) bool {
	if rl == nil {
		return true
	}
	item, _ := rl.clients.GetOrSetFunc(client, func() *rate.Limiter {
		return rate.NewLimiter(rl.limit, rl.burst)
	})
	return item.Value().AllowN(rl.clock.Now(), 1)
}

// Clients is the number of clients currently tracked.
func (rl *RateLimiter) Clients() int {
	if rl == nil {
		return 0
	}
	return rl.clients.Len()
}

// exempt paths are probes and operator endpoints that must stay reachable.
func exempt(path string) bool {
	return path == "/health" || path == "/metrics" || strings.HasPrefix(path, "/debug/")
}

// Middleware rejects requests from clients over their limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !exempt(r.URL.Path) && !rl.Allow(clientIP(r)) {
			metrics.RecordRateLimited()
			httputil.TooManyRequests(w, "Too many requests from this IP, please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP is the host part of the request's remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
