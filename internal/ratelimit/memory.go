package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLimiter keeps a token bucket per key in process memory. The bucket
// holds limit tokens and refills them over window.
type MemoryLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		every: rate.Every(window / time.Duration(limit)),
		burst: limit,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	return m.limiter(key).Allow(), nil
}

func (m *MemoryLimiter) limiter(key string) *rate.Limiter {
	if v, ok := m.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	lim := rate.NewLimiter(m.every, m.burst)
	actual, _ := m.limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter)
}
