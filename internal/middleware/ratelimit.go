package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/edgeiot/command_service/internal/httputil"
	"github.com/edgeiot/command_service/pkg/logger"
)

const (
	defaultIdleTTL = 10 * time.Minute
	sweepEvery     = 512
)

// RateLimiter applies a token bucket per client IP and evicts idle buckets.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	logger  *logger.Logger
	now     func() time.Time

	mu    sync.Mutex
	byKey map[string]*limiterEntry
	hits  uint64
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter. It returns nil when rps or burst is
// not positive; a nil limiter lets every request through.
func NewRateLimiter(rps float64, burst int, log *logger.Logger) *RateLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: defaultIdleTTL,
		logger:  log,
		now:     time.Now,
		byKey:   make(map[string]*limiterEntry),
	}
}

// Allow reports whether one request from key may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	if rl == nil || key == "" {
		return true
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.byKey[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.byKey[key] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	rl.hits++
	if rl.hits%sweepEvery == 0 {
		cutoff := now.Add(-rl.idleTTL)
		for k, v := range rl.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(rl.byKey, k)
			}
		}
	}
	return allowed
}

// Handler returns the rate limiting middleware handler
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if !rl.Allow(key) {
			rl.logger.LogSecurityEvent(r.Context(), "rate_limit_exceeded", map[string]interface{}{
				"key":    key,
				"path":   r.URL.Path,
				"method": r.Method,
			})
			w.Header().Set("Retry-After", "1")
			httputil.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
