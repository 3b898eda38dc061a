package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

type Metrics struct {
	// Traffic: сколько взломов начато (local - кнопка/API, remote - флаг пульта)
	BreachesTotal *prometheus.CounterVec

	// Сколько раз отсчет дошел до конца и снимок заменен аварийным
	CompromiseTotal *prometheus.CounterVec

	RestoresTotal *prometheus.CounterVec

	// Опросы канала сигналов по результату (trigger, empty)
	PollsTotal *prometheus.CounterVec

	// Saturation: текущая фаза (0 - normal, 1 - breaching, 2 - compromised)
	Phase *prometheus.GaugeVec

	// Остаток обратного отсчета
	Countdown *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		BreachesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ics_breaches_total",
			Help: "Total number of breaches started.",
		}, []string{"target", "source"}),

		CompromiseTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ics_compromise_total",
			Help: "Total number of failure snapshots committed.",
		}, []string{"target"}),

		RestoresTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ics_restores_total",
			Help: "Total number of restores to baseline.",
		}, []string{"target"}),

		PollsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ics_signal_polls_total",
			Help: "Breach signal polls by result.",
		}, []string{"target", "result"}),

		Phase: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "ics_dashboard_phase",
			Help: "Current dashboard phase (0=normal, 1=breaching, 2=compromised).",
		}, []string{"target"}),

		Countdown: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "ics_breach_countdown_seconds",
			Help: "Remaining breach countdown ticks.",
		}, []string{"target"}),
	}
}

func phaseValue(p domain.Phase) float64 {
	switch p {
	case domain.PhaseBreaching:
		return 1
	case domain.PhaseCompromised:
		return 2
	default:
		return 0
	}
}
