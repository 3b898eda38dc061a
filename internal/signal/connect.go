package signal

import (
	"context"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/ics-breach-sim/internal/infra"
)

const maxConnectDelay = 5 * time.Second

// Connect создает клиент Redis и ждет его готовности с экспоненциальным бэкоффом.
// Клиент возвращается даже при ошибке: GuardedChannel переживет недоступность,
// а go-redis сам переподключится, когда Redis поднимется.
func Connect(ctx context.Context, cfg infra.RedisConfig, attempts uint, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if attempts == 0 {
		attempts = 1
	}

	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
			d := retry.BackOffDelay(n, err, config)
			if d > maxConnectDelay {
				return maxConnectDelay
			}
			return d
		}),
	)

	err := r.Do(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis ping failed", zap.String("addr", cfg.Addr), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return rdb, err
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))
	return rdb, nil
}
