package signal

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
	"github.com/xela07ax/ics-breach-sim/internal/infra"
)

var (
	resubscribeDelay = 5 * time.Second
	reconnectDelay   = 1 * time.Second
)

// ListenWakeups — "живучая" подписка на пробуждения пуллеров.
// Сам флаг здесь не читается: onWake лишь инициирует внеочередной опрос,
// поэтому семантика "не более одного раза" остается за PollAndConsume.
func ListenWakeups(
	ctx context.Context,
	rdb *redis.Client,
	logger *zap.Logger,
	onWake func(target domain.Target), // Callback для внеочередного опроса
) {
	logger = logger.With(zap.String("mod", "signal-listener"))
	channel := infra.RedisChanBreachSignal

	for {
		pubsub := rdb.Subscribe(ctx, channel)

		// Проверка успешности подписки
		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			if ctx.Err() != nil {
				return
			}
			logger.Error("failed to subscribe", zap.String("chan", channel), zap.Error(err))
			if !sleepCtx(ctx, resubscribeDelay) {
				return
			}
			continue
		}

		ch := pubsub.Channel()
		logger.Info("breach wake-up listener started", zap.String("chan", channel))

	loop:
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break loop // Канал закрыт, идем на переподключение
				}

				target, err := domain.ParseTarget(msg.Payload)
				if err != nil {
					logger.Error("invalid wake-up payload", zap.String("payload", msg.Payload))
					continue
				}
				onWake(target)
			}
		}

		pubsub.Close()
		if !sleepCtx(ctx, reconnectDelay) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
