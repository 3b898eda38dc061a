package engine

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
	"github.com/xela07ax/ics-breach-sim/internal/infra"
	"github.com/xela07ax/ics-breach-sim/internal/scenario"
	"github.com/xela07ax/ics-breach-sim/internal/signal"
)

// Registry держит все дашборды процесса в порядке domain.AllTargets.
type Registry struct {
	order      []domain.Target
	dashboards map[domain.Target]*Dashboard
}

// NewRegistry поднимает дашборд на каждый профиль. У каждого свой rng,
// производный от engine.seed, чтобы прогоны воспроизводились.
func NewRegistry(
	cfg infra.EngineConfig,
	pollInterval time.Duration,
	ch signal.Channel,
	notifier Notifier,
	metrics *Metrics,
	logger *zap.Logger,
) (*Registry, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	r := &Registry{dashboards: make(map[domain.Target]*Dashboard)}
	for i, p := range scenario.Profiles() {
		sc, err := scenario.New(p, rand.New(rand.NewSource(seed+int64(i))))
		if err != nil {
			return nil, fmt.Errorf("init scenario: %w", err)
		}
		d := NewDashboard(sc, ch, notifier, metrics, logger, DashboardOptions{
			Countdown:         cfg.CountdownFor(p.Target),
			ClockInterval:     cfg.ClockInterval,
			CountdownInterval: cfg.CountdownInterval,
			PollInterval:      pollInterval,
		})
		r.order = append(r.order, p.Target)
		r.dashboards[p.Target] = d
	}

	logger.Info("dashboards registered", zap.Int("count", len(r.order)), zap.Int64("seed", seed))
	return r, nil
}

func (r *Registry) Get(t domain.Target) (*Dashboard, error) {
	d, ok := r.dashboards[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTarget, t)
	}
	return d, nil
}

func (r *Registry) All() []*Dashboard {
	out := make([]*Dashboard, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.dashboards[t])
	}
	return out
}

func (r *Registry) Attach(s *Scheduler) {
	for _, d := range r.All() {
		d.Attach(s)
	}
}

func (r *Registry) Detach() {
	for _, d := range r.All() {
		d.Detach()
	}
}

// Observe подписывает наблюдателя на все дашборды.
func (r *Registry) Observe(obs Observer) {
	for _, d := range r.All() {
		d.Observe(obs)
	}
}

// Wake — внеочередной опрос одного дашборда (пробуждение из Pub/Sub).
func (r *Registry) Wake(t domain.Target) {
	if d, ok := r.dashboards[t]; ok {
		d.Wake()
	}
}
