package api

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"stayhub/internal/config"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// rateLimiter keeps one token bucket per client address. Buckets idle for
// longer than idleTTL are dropped.
type rateLimiter struct {
	buckets   sync.Map
	cfg       config.RateLimitConfig
	idleTTL   time.Duration
	lastPrune atomic.Int64
	now       func() time.Time
}

func newRateLimiter(cfg config.RateLimitConfig) *rateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	l := &rateLimiter{
		cfg:     cfg,
		idleTTL: limiterIdleTTL,
		now:     time.Now,
	}
	l.lastPrune.Store(l.now().UnixNano())
	return l
}

func (l *rateLimiter) allow(key string) bool {
	now := l.now()
	l.maybePrune(now)

	v, ok := l.buckets.Load(key)
	if !ok {
		v, _ = l.buckets.LoadOrStore(key, &clientBucket{
			limiter: rate.NewLimiter(rate.Limit(l.cfg.RPS), l.cfg.Burst),
		})
	}
	b := v.(*clientBucket)
	b.lastSeen.Store(now.UnixNano())
	return b.limiter.AllowN(now, 1)
}

func (l *rateLimiter) maybePrune(now time.Time) {
	last := l.lastPrune.Load()
	if now.UnixNano()-last < int64(l.idleTTL) || !l.lastPrune.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	cutoff := now.Add(-l.idleTTL).UnixNano()
	l.buckets.Range(func(k, v any) bool {
		if v.(*clientBucket).lastSeen.Load() < cutoff {
			l.buckets.Delete(k)
		}
		return true
	})
}

// Middleware rejects clients over their budget with 429. A non-positive
// RPS disables limiting.
func (l *rateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.cfg.RPS <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		if !l.allow(clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
