package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
	"github.com/xela07ax/ics-breach-sim/internal/signal"
)

// ControlService — удаленный пульт: пишет флаг взлома в общий канал.
type ControlService struct {
	channel signal.Channel
	logger  *zap.Logger
}

func NewControlService(ch signal.Channel, logger *zap.Logger) *ControlService {
	return &ControlService{
		channel: ch,
		logger:  logger.Named("control-service"),
	}
}

// Trigger проверяет цель и пишет сигнал. Сбой хранилища ошибкой не считается:
// у signalBreach нет пути отказа, GuardedChannel уже залогировал проблему.
func (s *ControlService) Trigger(ctx context.Context, raw string) (domain.Target, error) {
	target, err := domain.ParseTarget(raw)
	if err != nil {
		return "", fmt.Errorf("trigger: %w", err)
	}

	if err := s.channel.Signal(ctx, target); err != nil {
		s.logger.Warn("breach signal not written", zap.String("target", raw), zap.Error(err))
		return target, nil
	}

	s.logger.Info("breach signal written", zap.String("target", string(target)))
	return target, nil
}
