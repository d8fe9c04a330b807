package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the sliding window limiter.
type RateLimitConfig struct {
	// Max requests per client per Window.
	Max    int
	Window time.Duration
	// Prefixes limits the middleware to matching request paths. Empty
	// limits every path.
	Prefixes []string
	// Key identifies the client; defaults to the client IP.
	Key func(*http.Request) string
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// window holds the counts of the current and previous fixed windows.
type window struct {
	start      time.Time
	curr, prev float64
}

type limiter struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	clients map[string]*window
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.Key == nil {
		cfg.Key = ClientIP
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &limiter{cfg: cfg, clients: make(map[string]*window)}
}

func (l *limiter) applies(path string) bool {
	if len(l.cfg.Prefixes) == 0 {
		return true
	}
	for _, p := range l.cfg.Prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// take consumes one request for key. The previous window is weighted by
// how much of it still overlaps the sliding window ending at now.
func (l *limiter) take(key string, now time.Time) (remaining int, reset time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.cfg.Window
	start := now.Truncate(size)
	w, found := l.clients[key]
	switch {
	case !found:
		w = &window{start: start}
		l.clients[key] = w
	case start.Sub(w.start) >= 2*size:
		*w = window{start: start}
	case start.After(w.start):
		*w = window{start: start, prev: w.curr}
	}

	overlap := 1 - float64(now.Sub(w.start))/float64(size)
	used := w.prev*overlap + w.curr
	reset = w.start.Add(size)
	if used >= float64(l.cfg.Max) {
		return 0, reset, false
	}
	w.curr++
	return max(0, int(float64(l.cfg.Max)-used-1)), reset, true
}

// evict drops clients idle for two full windows.
func (l *limiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.clients {
		if now.Sub(w.start) >= 2*l.cfg.Window {
			delete(l.clients, key)
		}
	}
}

func (l *limiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.applies(r.URL.Path) || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		now := l.cfg.Now()
		remaining, reset, ok := l.take(l.cfg.Key(r), now)

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Max))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
		if !ok {
			retry := max(0, reset.Sub(now).Seconds())
			h.Set("Retry-After", strconv.Itoa(int(math.Ceil(retry))))
			writeJSONError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit limits requests per client without background eviction.
func RateLimit(cfg RateLimitConfig) Middleware {
	return newLimiter(cfg).middleware
}

// RateLimitWithCleanup is RateLimit plus a goroutine evicting idle clients
// every two windows until ctx is done.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := newLimiter(cfg)
	go func() {
		ticker := time.NewTicker(2 * cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.evict(l.cfg.Now())
			}
		}
	}()
	return l.middleware
}

// ClientIP returns the first X-Forwarded-For hop, X-Real-IP, or the remote
// address host.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
