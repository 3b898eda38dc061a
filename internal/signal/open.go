package signal

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/ics-breach-sim/internal/infra"
)

// Open собирает канал по конфигу: бэкенд (memory или redis), обернутый в GuardedChannel.
// Для redis возвращается и клиент, чтобы вызывающий мог подписаться на пробуждения и закрыть его.
// Недоступный на старте Redis ошибкой не считается: канал работает в деградированном режиме.
func Open(ctx context.Context, cfg infra.Config, metrics *Metrics, logger *zap.Logger) (Channel, *redis.Client, error) {
	opts := GuardOptions{
		Failures: cfg.Signal.BreakerFailures,
		Timeout:  cfg.Signal.BreakerTimeout,
	}

	switch cfg.Signal.Backend {
	case infra.BackendMemory:
		logger.Info("breach signal channel: in-memory")
		return NewGuardedChannel(NewMemoryChannel(), opts, metrics, logger), nil, nil

	case infra.BackendRedis:
		rdb, err := Connect(ctx, cfg.Redis, cfg.Signal.ConnectAttempts, logger)
		if err != nil {
			logger.Warn("redis unreachable at startup, running degraded", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		return NewGuardedChannel(NewRedisChannel(rdb, logger), opts, metrics, logger), rdb, nil

	default:
		return nil, nil, fmt.Errorf("signal.backend: unknown backend %q", cfg.Signal.Backend)
	}
}
