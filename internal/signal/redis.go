package signal

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
	"github.com/xela07ax/ics-breach-sim/internal/infra"
)

// RedisChannel хранит флаги в Redis: SET на запись, GETDEL на опрос.
// GETDEL атомарен, поэтому даже несколько инстансов-читателей получат сигнал один раз.
type RedisChannel struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisChannel(rdb *redis.Client, logger *zap.Logger) *RedisChannel {
	return &RedisChannel{
		rdb:    rdb,
		logger: logger.With(zap.String("mod", "signal-redis")),
	}
}

func (c *RedisChannel) Signal(ctx context.Context, target domain.Target) error {
	// 1. Флаг + 2. Пробуждение пуллеров, одной транзакцией
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, infra.BreachFlagKey(target), target.TriggerLiteral(), 0)
		pipe.Publish(ctx, infra.RedisChanBreachSignal, string(target))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: signal %s: %v", ErrUnavailable, target, err)
	}
	return nil
}

func (c *RedisChannel) PollAndConsume(ctx context.Context, target domain.Target) (bool, error) {
	value, err := c.rdb.GetDel(ctx, infra.BreachFlagKey(target)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: poll %s: %v", ErrUnavailable, target, err)
	}

	if !domain.IsTrigger(value) {
		// Мусор под ключом считаем отсутствием сигнала, но ключ уже вычищен
		c.logger.Debug("malformed breach flag dropped",
			zap.String("target", string(target)), zap.String("value", value))
		return false, nil
	}
	return true, nil
}
