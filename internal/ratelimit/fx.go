package ratelimit

import (
	"context"

	"github.com/MaverickDev-J/hrm/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("rate.limit",
	fx.Provide(newLoginLimiter),
)

// newLoginLimiter throttles credential checks per email. Without a redis
// address the limiter is nil and login proceeds unthrottled.
func newLoginLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *TokenBucket {
	if cfg.RedisAddr == "" {
		log.Named("ratelimit").Info("redis not configured, login throttling disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	// 5 burst attempts, refilling one every 10 seconds.
	return NewTokenBucket(client, 0.1, 5)
}
