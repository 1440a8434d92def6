package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisLimiter struct {
	client     *redis.Client
	counterTTL time.Duration
	logger     *zap.Logger
}

func NewRedisLimiter(client *redis.Client, counterTTL time.Duration, logger *zap.Logger) *RedisLimiter {
	if counterTTL <= 0 {
		counterTTL = 2 * time.Minute
	}
	return &RedisLimiter{
		client:     client,
		counterTTL: counterTTL,
		logger:     logger.Named("RedisLimiter"),
	}
}

var _ Limiter = (*RedisLimiter)(nil)

func (l *RedisLimiter) Admit(ctx context.Context, keyID string, rpmLimit int) (Decision, error) {
	windowStart, retryAfter := currentWindow(time.Now())
	counterKey := fmt.Sprintf("rl:%s:%d", keyID, windowStart)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, counterKey)
	pipe.Expire(ctx, counterKey, l.counterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		// Fail open: the usage ledger still bounds total consumption.
		l.logger.Warn("Rate limit counter unavailable, admitting request", zap.String("key_id", keyID), zap.Error(err))
		return Decision{Allowed: true}, nil
	}

	if incr.Val() > int64(rpmLimit) {
		l.logger.Debug("Rate limit tripped",
			zap.String("key_id", keyID),
			zap.Int64("count", incr.Val()),
			zap.Int("rpm_limit", rpmLimit),
		)
		return Decision{Allowed: false, RetryAfterSeconds: retryAfter}, nil
	}

	return Decision{Allowed: true}, nil
}
