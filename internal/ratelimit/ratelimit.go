// Package ratelimit is middleware for per-IP rate limiting.
//
// Simple in-memory implementation, not shared between instances or
// distributed. It protects a single process against one address flooding the
// listener (connection/goroutine exhaustion) and gives observability into
// abuse via callbacks; it does not defend against distributed attacks or
// bandwidth-bill attacks. The site itself is stateless, so this is defense in
// depth alongside upstream filtering.
package ratelimit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/northpier/northpier-web/internal/httpmw"
)

// visitor tracks a single IP's limiter and last activity.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	// logged tracks whether the first-denial callback fired; resets when the
	// entry is evicted and re-created
	logged bool
}

// IPLimiter holds per-IP rate limiters with background eviction.
type IPLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	// requests per second refill and burst ceiling
	perSecond rate.Limit
	burst     int

	// how long an idle IP stays in the map before eviction
	ttl time.Duration

	// ceiling on tracked visitors; new IPs are rejected once reached
	maxVisitors int

	// OnFirstDenied fires once per visitor lifetime, for logging.
	OnFirstDenied func(ip string)
	// OnDenied fires on every denied request, for counters.
	OnDenied func(ip string)
	// OnCapacity fires when the visitor map is full and a new IP is turned
	// away.
	OnCapacity func()
}

type Option func(*IPLimiter)

// WithRate sets the bucket size and refill rate. WithRate(10, 50) allows 50
// requests at once, then refills at 10 requests per second.
func WithRate(perSecond float64, burst int) Option {
	return func(l *IPLimiter) {
		l.perSecond = rate.Limit(perSecond)
		l.burst = burst
	}
}

// WithTTL controls how long an idle IP stays in the map before cleanup.
func WithTTL(d time.Duration) Option {
	return func(l *IPLimiter) { l.ttl = d }
}

// WithMaxVisitors caps the tracked-IP map.
func WithMaxVisitors(n int) Option {
	return func(l *IPLimiter) { l.maxVisitors = n }
}

func WithOnFirstDenied(fn func(ip string)) Option {
	return func(l *IPLimiter) { l.OnFirstDenied = fn }
}

func WithOnDenied(fn func(ip string)) Option {
	return func(l *IPLimiter) { l.OnDenied = fn }
}

func WithOnCapacity(fn func()) Option {
	return func(l *IPLimiter) { l.OnCapacity = fn }
}

// New creates an IPLimiter and starts the background cleanup goroutine,
// cancelled via ctx on shutdown.
func New(ctx context.Context, opts ...Option) *IPLimiter {
	l := &IPLimiter{
		visitors:    make(map[string]*visitor),
		perSecond:   10,
		burst:       30,
		ttl:         5 * time.Minute,
		maxVisitors: 10000,
	}
	for _, o := range opts {
		o(l)
	}
	go l.cleanup(ctx)
	return l
}

// allow reports whether the request from ip should proceed; it creates the
// visitor entry on first sight and fires the denial callbacks.
func (l *IPLimiter) allow(ip string) bool {
	l.mu.Lock()
	v, exists := l.visitors[ip]
	if !exists {
		if len(l.visitors) >= l.maxVisitors {
			l.mu.Unlock()
			if l.OnCapacity != nil {
				l.OnCapacity()
			}
			if l.OnDenied != nil {
				l.OnDenied(ip)
			}
			return false
		}
		v = &visitor{limiter: rate.NewLimiter(l.perSecond, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	allowed := v.limiter.Allow()

	if !allowed && !v.logged {
		v.logged = true
		// release before callbacks; they may do slow work
		l.mu.Unlock()
		if l.OnFirstDenied != nil {
			l.OnFirstDenied(ip)
		}
		if l.OnDenied != nil {
			l.OnDenied(ip)
		}
		return false
	}

	l.mu.Unlock()

	if !allowed && l.OnDenied != nil {
		l.OnDenied(ip)
	}

	return allowed
}

// cleanup periodically evicts visitors idle past the TTL. Runs every TTL/2
// to avoid holding stale entries much longer than intended.
func (l *IPLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for ip, v := range l.visitors {
				if now.Sub(v.lastSeen) > l.ttl {
					delete(l.visitors, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Middleware rejects requests over the per-IP rate limit with 429.
func (l *IPLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := httpmw.ClientIPFromContext(r.Context())

		if !l.allow(ip) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Retry-After", "30")
			w.Header().Set("Cache-Control", "no-store")
			w.WriteHeader(http.StatusTooManyRequests)
			// intentionally no detail about limits or refill timing
			_, _ = w.Write([]byte("429 Too Many Requests"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
