package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverLimiter uses primary until it fails, then serves from fallback and
// retries primary once per recoveryInterval.
type FailoverLimiter struct {
	primary   Limiter
	fallback  Limiter
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverLimiter(primary, fallback Limiter, logger *zerolog.Logger) *FailoverLimiter {
	return &FailoverLimiter{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (f *FailoverLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if !f.isDown.Load() || f.recoveryDue() {
		allowed, err := f.primary.Allow(ctx, key)
		if err == nil {
			if f.isDown.CompareAndSwap(true, false) {
				f.logger.Info().Msg("primary rate limiter recovered")
			}
			return allowed, nil
		}
		if !f.isDown.Swap(true) {
			f.logger.Error().Err(err).Msg("primary rate limiter failed, falling back to memory")
		}
		f.lastCheck.Store(f.now().UnixNano())
	}

	return f.fallback.Allow(ctx, key)
}

func (f *FailoverLimiter) recoveryDue() bool {
	last := time.Unix(0, f.lastCheck.Load())
	return f.now().Sub(last) > recoveryInterval
}
