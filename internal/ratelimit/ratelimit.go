// Package ratelimit counts requests per client key in fixed windows.
package ratelimit

import "context"

// Limiter decides whether one more request from key fits its budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
