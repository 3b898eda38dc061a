package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Доставленные тосты по виду
	Delivered *prometheus.CounterVec

	// Сброшенные при переполнении буфера
	Dropped prometheus.Counter

	// Backpressure: заполненность буфера ленты
	BufferFill prometheus.Gauge

	// Подключенные websocket клиенты
	Clients prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Metrics{
		Delivered: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ics_notifications_total",
			Help: "Notifications delivered to subscribers by kind.",
		}, []string{"kind"}),
		Dropped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "ics_notifications_dropped_total",
			Help: "Notifications dropped because the feed buffer was full.",
		}),
		BufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "ics_notification_buffer_utilization",
			Help: "Current number of notifications waiting in the feed buffer.",
		}),
		Clients: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "ics_ws_clients",
			Help: "Connected websocket clients.",
		}),
	}
}
