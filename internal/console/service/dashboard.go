package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
	"github.com/xela07ax/ics-breach-sim/internal/engine"
)

const (
	DefaultNotificationLimit = 20
	MaxNotificationLimit     = 100
)

// NotificationSource — откуда брать историю тостов (notify.Feed).
type NotificationSource interface {
	Recent(target domain.Target, limit int) []domain.Notification
}

type DashboardService struct {
	registry *engine.Registry
	feed     NotificationSource
	logger   *zap.Logger
}

func NewDashboardService(registry *engine.Registry, feed NotificationSource, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		registry: registry,
		feed:     feed,
		logger:   logger.Named("dashboard-service"),
	}
}

func (s *DashboardService) List(_ context.Context) []domain.DashboardState {
	all := s.registry.All()
	out := make([]domain.DashboardState, 0, len(all))
	for _, d := range all {
		out = append(out, d.State())
	}
	return out
}

func (s *DashboardService) Get(_ context.Context, target domain.Target) (domain.DashboardState, error) {
	d, err := s.registry.Get(target)
	if err != nil {
		return domain.DashboardState{}, err
	}
	return d.State(), nil
}

// Breach — локальная кнопка "взломать". accepted=false, если дашборд уже не в Normal.
func (s *DashboardService) Breach(_ context.Context, target domain.Target) (domain.DashboardState, bool, error) {
	d, err := s.registry.Get(target)
	if err != nil {
		return domain.DashboardState{}, false, err
	}
	accepted := d.StartBreach(domain.SourceLocal)
	s.logger.Info("local breach requested", zap.String("target", string(target)), zap.Bool("accepted", accepted))
	return d.State(), accepted, nil
}

func (s *DashboardService) Restore(_ context.Context, target domain.Target) (domain.DashboardState, bool, error) {
	d, err := s.registry.Get(target)
	if err != nil {
		return domain.DashboardState{}, false, err
	}
	accepted := d.Restore()
	s.logger.Info("restore requested", zap.String("target", string(target)), zap.Bool("accepted", accepted))
	return d.State(), accepted, nil
}

// Notifications отдает последние тосты. limit приводится к [1, MaxNotificationLimit].
func (s *DashboardService) Notifications(_ context.Context, target domain.Target, limit int) []domain.Notification {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		limit = MaxNotificationLimit
	}
	return s.feed.Recent(target, limit)
}
