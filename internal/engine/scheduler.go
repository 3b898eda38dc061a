package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Ticker — минимальный интерфейс тикера, чтобы тесты могли тикать руками.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker — фабрика по умолчанию на time.Ticker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type task struct {
	name   string
	gen    uint64
	fn     func(ctx context.Context)
	ticker Ticker
	stop   chan struct{}
}

type tick struct {
	name string
	gen  uint64
}

// Scheduler — кооперативный планировщик периодических задач.
// Тикеры живут в своих горутинах, а колбэки выполняются строго по очереди в одном цикле,
// поэтому они никогда не пересекаются. Колбэк может сам добавлять и отменять задачи.
type Scheduler struct {
	mu        sync.Mutex
	tasks     map[string]*task
	gen       uint64
	closed    bool
	ticks     chan tick
	newTicker TickerFactory
	wg        sync.WaitGroup
	logger    *zap.Logger
}

func NewScheduler(factory TickerFactory, logger *zap.Logger) *Scheduler {
	if factory == nil {
		factory = NewRealTicker
	}
	return &Scheduler{
		tasks:     make(map[string]*task),
		ticks:     make(chan tick, 64),
		newTicker: factory,
		logger:    logger.Named("scheduler"),
	}
}

// Every регистрирует (или заменяет) задачу name с периодом interval.
func (s *Scheduler) Every(name string, interval time.Duration, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if old, ok := s.tasks[name]; ok {
		s.stopLocked(old)
	}

	s.gen++
	t := &task{
		name:   name,
		gen:    s.gen,
		fn:     fn,
		ticker: s.newTicker(interval),
		stop:   make(chan struct{}),
	}
	s.tasks[name] = t

	s.wg.Add(1)
	go s.forward(t)
}

// Cancel снимает задачу. Уже поставленные в очередь тики этой задачи будут проигнорированы.
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[name]
	if !ok {
		return false
	}
	s.stopLocked(t)
	delete(s.tasks, name)
	return true
}

// Has сообщает, зарегистрирована ли задача.
func (s *Scheduler) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[name]
	return ok
}

// Fire ставит внеочередной запуск задачи. false, если задачи нет или очередь полна.
func (s *Scheduler) Fire(name string) bool {
	s.mu.Lock()
	t, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return false
	}

	select {
	case s.ticks <- tick{name: t.name, gen: t.gen}:
		return true
	default:
		return false
	}
}

// Run крутит цикл событий до отмены ctx, затем останавливает все тикеры.
func (s *Scheduler) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case tk := <-s.ticks:
				s.dispatch(gctx, tk)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		s.shutdown()
		s.wg.Wait()
		return nil
	})

	return g.Wait()
}

func (s *Scheduler) dispatch(ctx context.Context, tk tick) {
	s.mu.Lock()
	t, ok := s.tasks[tk.name]
	s.mu.Unlock()

	// Задачу отменили или заменили, пока тик стоял в очереди
	if !ok || t.gen != tk.gen {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panicked", zap.String("task", tk.name), zap.Any("panic", r))
		}
	}()
	t.fn(ctx)
}

func (s *Scheduler) forward(t *task) {
	defer s.wg.Done()
	defer t.ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-t.ticker.C():
			select {
			case s.ticks <- tick{name: t.name, gen: t.gen}:
			case <-t.stop:
				return
			}
		}
	}
}

func (s *Scheduler) stopLocked(t *task) {
	close(t.stop)
}

func (s *Scheduler) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for name, t := range s.tasks {
		s.stopLocked(t)
		delete(s.tasks, name)
	}
	s.logger.Info("scheduler stopped")
}
