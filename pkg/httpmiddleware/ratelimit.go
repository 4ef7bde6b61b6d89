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

	"github.com/go-faster/jx"
)

// RateLimitConfig configures the per-client sliding window limiter.
type RateLimitConfig struct {
	// Max is the number of requests allowed per window.
	Max int
	// Window is the sliding window length.
	Window time.Duration
	// KeyFunc derives the limit key from a request. Defaults to the client
	// IP, honouring X-Forwarded-For and X-Real-IP.
	KeyFunc func(*http.Request) string
}

// client tracks one key's request counts over the current and previous
// windows.
type client struct {
	windowStart time.Time
	count       int
	prevCount   int
}

// limiter is the shared sliding window state. clients is guarded by mu.
type limiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	clients map[string]*client
}

// RateLimit returns a middleware enforcing cfg.Max requests per cfg.Window
// for each client key. Every response carries X-RateLimit-Limit, -Remaining,
// and -Reset headers; over-limit requests get 429 with Retry-After. A
// background goroutine evicts idle clients until ctx is cancelled.
func RateLimit(ctx context.Context, cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	l := &limiter{cfg: cfg, clients: make(map[string]*client)}
	go l.evictLoop(ctx)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, resetAt, ok := l.take(cfg.KeyFunc(r), time.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !ok {
				retryAfter := int(math.Ceil(time.Until(resetAt).Seconds()))
				if retryAfter < 0 {
					retryAfter = 0
				}
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)

				e := &jx.Encoder{}
				e.Obj(func(e *jx.Encoder) {
					e.Field("code", func(e *jx.Encoder) { e.Int(http.StatusTooManyRequests) })
					e.Field("message", func(e *jx.Encoder) { e.Str("rate limit exceeded") })
				})
				_, _ = w.Write(e.Bytes())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// take counts one request against key. The previous window is weighted by
// its overlap with the sliding window, so a burst at a window boundary
// cannot double the allowance.
func (l *limiter) take(key string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, found := l.clients[key]
	if !found {
		c = &client{windowStart: now}
		l.clients[key] = c
	}

	if elapsed := now.Sub(c.windowStart); elapsed >= l.cfg.Window {
		if elapsed >= 2*l.cfg.Window {
			c.prevCount = 0
		} else {
			c.prevCount = c.count
		}
		c.count = 0
		c.windowStart = now.Truncate(l.cfg.Window)
	}

	weight := 1 - now.Sub(c.windowStart).Seconds()/l.cfg.Window.Seconds()
	if weight < 0 {
		weight = 0
	}
	used := float64(c.prevCount)*weight + float64(c.count)
	resetAt = c.windowStart.Add(l.cfg.Window)

	if used >= float64(l.cfg.Max) {
		return 0, resetAt, false
	}
	c.count++

	remaining = l.cfg.Max - int(used) - 1
	if remaining < 0 {
		remaining = 0
	}
	return remaining, resetAt, true
}

// evictLoop drops clients idle for two full windows.
func (l *limiter) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(2 * l.cfg.Window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for key, c := range l.clients {
				if now.Sub(c.windowStart) >= 2*l.cfg.Window {
					delete(l.clients, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// clientIP extracts the caller address, preferring proxy headers over the
// socket peer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(ip)
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
