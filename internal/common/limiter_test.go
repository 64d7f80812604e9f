package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestLoginLimiterBlocksAfterBurst(t *testing.T) {
	l := NewLoginLimiter(0.1, 2, time.Minute)
	ip := "203.0.113.10"

	assert.True(t, l.Allow(ip))
	assert.True(t, l.Allow(ip))
	assert.False(t, l.Allow(ip))
}

func TestLoginLimiterIsPerClient(t *testing.T) {
	l := NewLoginLimiter(0.1, 1, time.Minute)

	assert.True(t, l.Allow("203.0.113.20"))
	assert.True(t, l.Allow("203.0.113.21"))
	assert.False(t, l.Allow("203.0.113.20"))
}

func TestLoginLimiterRefills(t *testing.T) {
	l := NewLoginLimiter(rate.Every(50*time.Millisecond), 1, time.Minute)
	ip := "203.0.113.30"

	assert.True(t, l.Allow(ip))
	assert.False(t, l.Allow(ip))

	time.Sleep(75 * time.Millisecond)
	assert.True(t, l.Allow(ip))
}
