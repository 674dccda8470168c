package adapter

import (
	"context"
	"time"
)

// RateLimiter answers whether one more hit under key fits in the window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
