package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"stayhub/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerClientBuckets(t *testing.T) {
	l := newRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 2})
	now := time.Unix(1700000000, 0)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, l.allow("10.0.0.1"))
}

func TestRateLimiter_PrunesIdleBuckets(t *testing.T) {
	l := newRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 1})
	now := time.Unix(1700000000, 0)
	l.now = func() time.Time { return now }
	l.lastPrune.Store(now.UnixNano())

	l.allow("idle")
	now = now.Add(l.idleTTL / 2)
	l.allow("active")

	now = now.Add(l.idleTTL/2 + time.Second)
	l.allow("active")

	_, idleKept := l.buckets.Load("idle")
	_, activeKept := l.buckets.Load("active")
	assert.False(t, idleKept)
	assert.True(t, activeKept)
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientKey(r))

	r.RemoteAddr = "192.0.2.1"
	assert.Equal(t, "192.0.2.1", clientKey(r))

	r.RemoteAddr = ""
	assert.Equal(t, "unknown", clientKey(r))
}
