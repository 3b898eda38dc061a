package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
	"github.com/xela07ax/ics-breach-sim/internal/scenario"
	"github.com/xela07ax/ics-breach-sim/internal/signal"
)

// Notifier принимает тосты. Реализация не должна блокировать.
type Notifier interface {
	Notify(n domain.Notification)
}

// Observer получает каждое новое состояние дашборда.
// Вызывается под блокировкой дашборда: не блокировать и не звать методы Dashboard.
type Observer func(state domain.DashboardState)

type DashboardOptions struct {
	Countdown         int
	ClockInterval     time.Duration
	CountdownInterval time.Duration
	PollInterval      time.Duration
	Now               func() time.Time
}

// Dashboard — рантайм одного дашборда: сценарий, машина, часы и опрос канала сигналов.
type Dashboard struct {
	mu sync.Mutex

	target   domain.Target
	scenario *scenario.Scenario
	machine  *Machine
	channel  signal.Channel
	notifier Notifier
	metrics  *Metrics
	logger   *zap.Logger
	opts     DashboardOptions

	clock          time.Time
	lastTransition time.Time
	observers      []Observer
	sched          *Scheduler
}

func NewDashboard(
	sc *scenario.Scenario,
	ch signal.Channel,
	notifier Notifier,
	metrics *Metrics,
	logger *zap.Logger,
	opts DashboardOptions,
) *Dashboard {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ClockInterval <= 0 {
		opts.ClockInterval = time.Second
	}
	if opts.CountdownInterval <= 0 {
		opts.CountdownInterval = time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	target := sc.Profile().Target
	now := opts.Now()
	d := &Dashboard{
		target:         target,
		scenario:       sc,
		machine:        NewMachine(opts.Countdown),
		channel:        ch,
		notifier:       notifier,
		metrics:        metrics,
		logger:         logger.Named("dashboard").With(zap.String("target", string(target))),
		opts:           opts,
		clock:          now,
		lastTransition: now,
	}
	d.metrics.Phase.WithLabelValues(string(target)).Set(0)
	d.metrics.Countdown.WithLabelValues(string(target)).Set(0)
	return d
}

func (d *Dashboard) Target() domain.Target { return d.target }

func (d *Dashboard) taskName(kind string) string {
	return string(d.target) + ":" + kind
}

// Observe подписывает наблюдателя и сразу отдает ему текущее состояние.
func (d *Dashboard) Observe(obs Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, obs)
	obs(d.stateLocked())
}

// Attach регистрирует часы и опрос канала в планировщике.
func (d *Dashboard) Attach(s *Scheduler) {
	d.mu.Lock()
	d.sched = s
	d.mu.Unlock()

	s.Every(d.taskName("clock"), d.opts.ClockInterval, func(context.Context) { d.UpdateClock() })
	s.Every(d.taskName("poll"), d.opts.PollInterval, d.Poll)
}

// Detach снимает все задачи дашборда, включая идущий отсчет.
func (d *Dashboard) Detach() {
	d.mu.Lock()
	s := d.sched
	d.sched = nil
	d.mu.Unlock()

	if s == nil {
		return
	}
	for _, kind := range []string{"clock", "poll", "countdown"} {
		s.Cancel(d.taskName(kind))
	}
}

// Wake — внеочередной опрос по пробуждению из Pub/Sub. Выполняется в цикле планировщика.
func (d *Dashboard) Wake() bool {
	d.mu.Lock()
	s := d.sched
	d.mu.Unlock()
	if s == nil {
		return false
	}
	return s.Fire(d.taskName("poll"))
}

// State — снимок публичного состояния.
func (d *Dashboard) State() domain.DashboardState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stateLocked()
}

// StartBreach запускает взлом. false, если дашборд уже не в Normal.
func (d *Dashboard) StartBreach(source domain.BreachSource) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	tr, ok := d.machine.Start()
	if !ok {
		d.logger.Debug("breach ignored", zap.String("phase", string(d.machine.Phase())), zap.String("source", string(source)))
		return false
	}

	d.metrics.BreachesTotal.WithLabelValues(string(d.target), string(source)).Inc()
	d.logger.Info("breach started", zap.String("source", string(source)), zap.Int("countdown", tr.Remaining))

	msgs := d.scenario.Profile().Messages
	d.notify(domain.NotifyBreachDetected, msgs.BreachTitle, msgs.BreachDescription, "destructive")

	if tr.To == domain.PhaseCompromised {
		d.commitLocked()
	} else if d.sched != nil {
		d.sched.Every(d.taskName("countdown"), d.opts.CountdownInterval, func(context.Context) { d.Tick() })
	}

	d.transitionLocked()
	return true
}

// Tick — один шаг обратного отсчета. Вне Breaching ничего не делает.
func (d *Dashboard) Tick() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	tr, ok := d.machine.Tick()
	if !ok {
		return false
	}
	if tr.To == domain.PhaseCompromised {
		d.commitLocked()
		d.cancelCountdownLocked()
	}
	d.transitionLocked()
	return true
}

// Restore возвращает базовый снимок из Breaching или Compromised.
func (d *Dashboard) Restore() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	tr, ok := d.machine.Restore()
	if !ok {
		d.logger.Debug("restore ignored, dashboard is normal")
		return false
	}

	d.cancelCountdownLocked()
	d.scenario.RestoreBaseline()
	d.metrics.RestoresTotal.WithLabelValues(string(d.target)).Inc()
	d.logger.Info("dashboard restored", zap.String("from", string(tr.From)))

	msgs := d.scenario.Profile().Messages
	d.notify(domain.NotifyRestored, msgs.RestoredTitle, msgs.RestoredDesc, "default")

	d.transitionLocked()
	return true
}

// Poll забирает сигнал из канала. Флаг снимается при каждом опросе, даже вне Normal,
// поэтому сигнал, пришедший во время взлома, после restore не срабатывает.
func (d *Dashboard) Poll(ctx context.Context) {
	triggered, err := d.channel.PollAndConsume(ctx, d.target)
	if err != nil {
		d.logger.Warn("signal poll failed", zap.Error(err))
		return
	}
	if !triggered {
		d.metrics.PollsTotal.WithLabelValues(string(d.target), "empty").Inc()
		return
	}

	d.metrics.PollsTotal.WithLabelValues(string(d.target), "trigger").Inc()
	d.StartBreach(domain.SourceRemote)
}

// UpdateClock обновляет отображаемое время. Наблюдателей не дергает.
func (d *Dashboard) UpdateClock() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clock = d.opts.Now()
}

func (d *Dashboard) commitLocked() {
	d.scenario.CommitFailure()
	d.metrics.CompromiseTotal.WithLabelValues(string(d.target)).Inc()
	d.logger.Warn("dashboard compromised")

	msgs := d.scenario.Profile().Messages
	d.notify(domain.NotifyCompromised, msgs.CompromisedTitle, msgs.CompromisedDesc, "destructive")
}

func (d *Dashboard) cancelCountdownLocked() {
	if d.sched != nil {
		d.sched.Cancel(d.taskName("countdown"))
	}
}

func (d *Dashboard) transitionLocked() {
	d.lastTransition = d.opts.Now()
	d.metrics.Phase.WithLabelValues(string(d.target)).Set(phaseValue(d.machine.Phase()))
	d.metrics.Countdown.WithLabelValues(string(d.target)).Set(float64(d.machine.Remaining()))

	state := d.stateLocked()
	for _, obs := range d.observers {
		obs(state)
	}
}

func (d *Dashboard) notify(kind domain.NotificationKind, title, desc, variant string) {
	if d.notifier == nil {
		return
	}
	d.notifier.Notify(domain.Notification{
		ID:          uuid.New().String(),
		Target:      d.target,
		Kind:        kind,
		Title:       title,
		Description: desc,
		Variant:     variant,
		Timestamp:   d.opts.Now(),
	})
}

func (d *Dashboard) stateLocked() domain.DashboardState {
	return domain.DashboardState{
		Target:         d.target,
		Title:          d.scenario.Profile().Title,
		Phase:          d.machine.Phase(),
		Countdown:      d.machine.Remaining(),
		Clock:          d.clock,
		LastTransition: d.lastTransition,
		Units:          d.scenario.Snapshot(),
	}
}
