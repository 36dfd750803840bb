package middleware

import (
	"net/http"
	"sync"
	"time"
)

// rateLimiter is a fixed-window per-client counter. Good enough for a
// single-instance deployment; counters reset when the window rolls over.
type rateLimiter struct {
	mu      sync.Mutex
	counts  map[string]int
	started time.Time
	limit   int
	window  time.Duration
}

var limiter *rateLimiter

func InitRateLimiter(requestsPerMinute int) {
	limiter = &rateLimiter{
		counts:  make(map[string]int),
		started: time.Now(),
		limit:   requestsPerMinute,
		window:  time.Minute,
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.started) >= rl.window {
		rl.counts = make(map[string]int)
		rl.started = now
	}

	if rl.counts[ip] >= rl.limit {
		return false
	}

	rl.counts[ip]++
	return true
}

func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		if !limiter.allow(r.RemoteAddr) {
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
