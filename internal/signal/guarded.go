package signal

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

type Metrics struct {
	// Errors: сбои хранилища флагов по операциям (signal, poll)
	ErrorTotal *prometheus.CounterVec

	// Saturation: состояние Circuit Breaker (0 - ок, 1 - выбило, 0.5 - полуоткрыт)
	BreakerState prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Metrics{
		ErrorTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ics_signal_errors_total",
			Help: "Breach signal channel failures by operation.",
		}, []string{"op"}),
		BreakerState: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "ics_signal_breaker_state",
			Help: "Signal store circuit breaker state (0=closed, 0.5=half-open, 1=open).",
		}),
	}
}

type GuardOptions struct {
	Failures uint32        // Подряд ошибок до размыкания
	Timeout  time.Duration // Через сколько breaker попробует "закрыться"
}

// GuardedChannel — деградация без ошибок: любой сбой хранилища логируется,
// считается в метриках и превращается в no-op. Дашборд тогда можно взломать только локально.
type GuardedChannel struct {
	next    Channel
	cb      *gobreaker.CircuitBreaker
	metrics *Metrics
	logger  *zap.Logger
}

func NewGuardedChannel(next Channel, opts GuardOptions, metrics *Metrics, logger *zap.Logger) *GuardedChannel {
	if opts.Failures == 0 {
		opts.Failures = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	logger = logger.With(zap.String("mod", "signal-guard"))

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "signal-store",
		MaxRequests: 1,
		Timeout:     opts.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.Failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("signal breaker state changed",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
			metrics.BreakerState.Set(breakerValue(to))
		},
	})

	return &GuardedChannel{next: next, cb: cb, metrics: metrics, logger: logger}
}

func breakerValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 0.5
	default:
		return 0
	}
}

// Signal никогда не возвращает ошибку: у signalBreach нет пути отказа.
func (g *GuardedChannel) Signal(ctx context.Context, target domain.Target) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, g.next.Signal(ctx, target)
	})
	if err != nil {
		g.fail("signal", target, err)
	}
	return nil
}

// PollAndConsume при сбое возвращает "нет сигнала".
func (g *GuardedChannel) PollAndConsume(ctx context.Context, target domain.Target) (bool, error) {
	res, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.PollAndConsume(ctx, target)
	})
	if err != nil {
		g.fail("poll", target, err)
		return false, nil
	}
	return res.(bool), nil
}

func (g *GuardedChannel) fail(op string, target domain.Target, err error) {
	g.metrics.ErrorTotal.WithLabelValues(op).Inc()
	if errors.Is(err, gobreaker.ErrOpenState) {
		// Breaker уже разомкнут, переход залогирован в OnStateChange
		g.logger.Debug("signal channel short-circuited", zap.String("op", op), zap.String("target", string(target)))
		return
	}
	g.logger.Warn("signal channel degraded",
		zap.String("op", op), zap.String("target", string(target)), zap.Error(err))
}
