package notify

/*
Feed — лента тостов дашбордов.

- Notify не блокирует: события уходят в буферизованный канал, при переполнении
  сбрасываются (Load Shedding) с записью в лог и метрику. Дашборд зовет Notify под
  своей блокировкой, поэтому ждать здесь нельзя.
- Воркер копит события пачками и по таймеру отдает их подписчикам (Sink),
  параллельно складывая в кольцо последних N для GET /api/v1/notifications.
- Stop закрывает вход под блокировкой (Notify после Stop просто отбрасывается)
  и дожидается финального сброса (Drain Pattern).
*/

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

const (
	flushInterval = 100 * time.Millisecond
	maxBatch      = 64
)

// Sink получает пачки доставленных тостов (websocket hub и т.п.).
type Sink interface {
	Deliver(batch []domain.Notification)
}

type Feed struct {
	ch      chan domain.Notification
	sinks   []Sink
	metrics *Metrics
	logger  *zap.Logger
	wg      sync.WaitGroup

	mu      sync.RWMutex
	history []domain.Notification // Кольцо, самые старые в начале
	limit   int

	closeMu sync.RWMutex // Notify шлет под RLock, Stop закрывает канал под Lock
	closed  bool
}

func NewFeed(buffer, history int, metrics *Metrics, logger *zap.Logger, sinks ...Sink) *Feed {
	if buffer <= 0 {
		buffer = 256
	}
	if history <= 0 {
		history = 100
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Feed{
		ch:      make(chan domain.Notification, buffer),
		sinks:   sinks,
		metrics: metrics,
		logger:  logger.With(zap.String("mod", "notify-feed")),
		limit:   history,
	}
}

func (f *Feed) Start() {
	f.wg.Add(1)
	go f.worker()
}

// Stop запирает вход и ждет, пока воркер доставит остатки.
func (f *Feed) Stop() {
	f.closeMu.Lock()
	if f.closed {
		f.closeMu.Unlock()
		return
	}
	f.closed = true
	f.logger.Info("stopping feed: closing channel and flushing buffer...")
	close(f.ch)
	f.closeMu.Unlock()

	f.wg.Wait()
	f.logger.Info("feed stopped gracefully")
}

func (f *Feed) Notify(n domain.Notification) {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	// Отправка неблокирующая, поэтому RLock не задерживает Stop
	f.closeMu.RLock()
	defer f.closeMu.RUnlock()
	if f.closed {
		f.logger.Warn("notification dropped: feed is stopping", zap.String("id", n.ID))
		return
	}

	select {
	case f.ch <- n:
		f.metrics.BufferFill.Set(float64(len(f.ch)))
	default:
		f.metrics.Dropped.Inc()
		f.logger.Error("notification_buffer_overflow",
			zap.String("target", string(n.Target)),
			zap.String("kind", string(n.Kind)),
		)
	}
}

// Recent возвращает до limit последних тостов, новые первыми. Пустой target — все дашборды.
func (f *Feed) Recent(target domain.Target, limit int) []domain.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]domain.Notification, 0)
	for i := len(f.history) - 1; i >= 0; i-- {
		n := f.history[i]
		if target != "" && n.Target != target {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (f *Feed) worker() {
	defer f.wg.Done()

	batch := make([]domain.Notification, 0, maxBatch)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		f.remember(batch)
		for _, s := range f.sinks {
			s.Deliver(batch)
		}
		for _, n := range batch {
			f.metrics.Delivered.WithLabelValues(string(n.Kind)).Inc()
		}
		f.metrics.BufferFill.Set(float64(len(f.ch)))
		// Sink может держать срез, поэтому новая пачка — новый массив
		batch = make([]domain.Notification, 0, maxBatch)
	}

	for {
		select {
		case n, ok := <-f.ch:
			if !ok {
				flush() // Финальный сброс
				f.logger.Info("feed worker finished")
				return
			}
			batch = append(batch, n)
			if len(batch) >= maxBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (f *Feed) remember(batch []domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.history = append(f.history, batch...)
	if over := len(f.history) - f.limit; over > 0 {
		f.history = append(f.history[:0:0], f.history[over:]...)
	}
}
