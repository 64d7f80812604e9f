package common

import (
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// LoginLimiter rate-limits login attempts per client address. Each client gets
// its own token bucket; idle buckets are evicted by the backing cache.
type LoginLimiter struct {
	limiters *cache.Cache
	rps      rate.Limit
	burst    int
}

func NewLoginLimiter(rps rate.Limit, burst int, idleTTL time.Duration) *LoginLimiter {
	return &LoginLimiter{
		limiters: cache.New(idleTTL, 2*idleTTL),
		rps:      rps,
		burst:    burst,
	}
}

// Allow reports whether the client may attempt a login and consumes a token.
func (l *LoginLimiter) Allow(ip string) bool {
	v, ok := l.limiters.Get(ip)
	if !ok {
		v = rate.NewLimiter(l.rps, l.burst)
	}
	// Refresh the TTL on every attempt so active clients are not evicted
	// mid-window.
	l.limiters.Set(ip, v, cache.DefaultExpiration)
	return v.(*rate.Limiter).Allow()
}
