package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPLimiter is a fixed-window counter per user kept in Redis.
type OTPLimiter struct {
	redis  *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewOTPLimiter(client *redis.Client, limit int, window time.Duration) *OTPLimiter {
	return &OTPLimiter{redis: client, prefix: "otp:issued", limit: limit, window: window}
}

// Allow records one issuance and reports whether it is within the limit.
func (l *OTPLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	key := fmt.Sprintf("%s:%s", l.prefix, userID)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.limit), nil
}
