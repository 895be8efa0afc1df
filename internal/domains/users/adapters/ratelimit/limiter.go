// Package ratelimit adapts the redis fixed-window counter to the login limiter port.
package ratelimit

import (
	"context"
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/users/ports"
	"github.com/Apurer/supplychain-tracker/internal/platform/cache/rediscache"
)

var _ ports.AttemptLimiter = (*LoginLimiter)(nil)

// LoginLimiter allows limit attempts per key in each window.
type LoginLimiter struct {
	rl     *rediscache.RateLimiter
	limit  int64
	window time.Duration
}

func NewLoginLimiter(rl *rediscache.RateLimiter, limit int64, window time.Duration) *LoginLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &LoginLimiter{rl: rl, limit: limit, window: window}
}

func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	allowed, _, err := l.rl.Allow(ctx, "login:"+key, l.limit, l.window)
	return allowed, err
}
