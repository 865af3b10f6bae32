package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPRateLimiter counts challenge issuances per phone inside a fixed window.
// Key format: otp:rl:<phone>
type OTPRateLimiter struct {
	client *redis.Client
}

// NewOTPRateLimiter creates an OTPRateLimiter wrapping the given Redis client.
func NewOTPRateLimiter(client *redis.Client) *OTPRateLimiter {
	return &OTPRateLimiter{client: client}
}

// Hit records one issuance for phone and returns the running count. The
// window TTL is set atomically with the first increment, so the counter and
// its expiry can never drift apart.
func (l *OTPRateLimiter) Hit(ctx context.Context, phone string, window time.Duration) (int64, error) {
	key := l.key(phone)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate limit incr: %w", err)
	}

	return incr.Val(), nil
}

func (l *OTPRateLimiter) key(phone string) string {
	return fmt.Sprintf("otp:rl:%s", phone)
}
