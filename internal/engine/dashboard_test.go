package engine

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
	"github.com/xela07ax/ics-breach-sim/internal/scenario"
	"github.com/xela07ax/ics-breach-sim/internal/signal"
)

type recordingNotifier struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (r *recordingNotifier) Notify(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) kinds() []domain.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.NotificationKind, 0, len(r.items))
	for _, n := range r.items {
		out = append(out, n.Kind)
	}
	return out
}

func newTestDashboard(t *testing.T, p scenario.Profile, countdown int, ch signal.Channel) (*Dashboard, *recordingNotifier, *Metrics) {
	t.Helper()
	sc, err := scenario.New(p, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("scenario.New: %v", err)
	}
	if ch == nil {
		ch = signal.NewMemoryChannel()
	}
	n := &recordingNotifier{}
	m := NewMetrics(nil)
	d := NewDashboard(sc, ch, n, m, zap.NewNop(), DashboardOptions{Countdown: countdown})
	return d, n, m
}

func unitMetric(t *testing.T, s domain.DashboardState, id, key string) float64 {
	t.Helper()
	u, ok := s.Units.Find(id)
	if !ok {
		t.Fatalf("unit %s not found", id)
	}
	return u.Metrics[key]
}

func TestGridBreachEndToEnd(t *testing.T) {
	d, notes, metrics := newTestDashboard(t, scenario.Grid(), 10, nil)

	st := d.State()
	for _, sub := range st.Units.ByKind(domain.KindSubstation) {
		if sub.Status != scenario.GridOnline {
			t.Fatalf("%s status %q before breach", sub.ID, sub.Status)
		}
	}
	if unitMetric(t, st, "SUB-A", domain.MetricLoad) != 75 || unitMetric(t, st, "SUB-B", domain.MetricLoad) != 82 {
		t.Fatalf("unexpected baseline loads")
	}

	if !d.StartBreach(domain.SourceLocal) {
		t.Fatalf("StartBreach rejected")
	}
	for i := 0; i < 9; i++ {
		d.Tick()
	}

	// За тик до конца метрики еще исходные
	st = d.State()
	if st.Phase != domain.PhaseBreaching || st.Countdown != 1 {
		t.Fatalf("after 9 ticks: %s/%d", st.Phase, st.Countdown)
	}
	if unitMetric(t, st, "SUB-A", domain.MetricLoad) != 75 {
		t.Fatalf("metrics changed during countdown")
	}

	d.Tick()
	st = d.State()
	if st.Phase != domain.PhaseCompromised {
		t.Fatalf("after 10 ticks: %s", st.Phase)
	}
	for _, sub := range st.Units.ByKind(domain.KindSubstation) {
		if sub.Status != scenario.GridEmergencyShutdown {
			t.Fatalf("%s status %q", sub.ID, sub.Status)
		}
		if sub.Metrics[domain.MetricVoltage] != 0 || sub.Metrics[domain.MetricLoad] != 0 {
			t.Fatalf("%s metrics not zeroed: %v", sub.ID, sub.Metrics)
		}
	}

	if !d.Restore() {
		t.Fatalf("Restore rejected")
	}
	st = d.State()
	if st.Phase != domain.PhaseNormal {
		t.Fatalf("after restore: %s", st.Phase)
	}
	if unitMetric(t, st, "SUB-A", domain.MetricLoad) != 75 || unitMetric(t, st, "SUB-B", domain.MetricLoad) != 82 {
		t.Fatalf("loads not restored")
	}

	want := []domain.NotificationKind{domain.NotifyBreachDetected, domain.NotifyCompromised, domain.NotifyRestored}
	got := notes.kinds()
	if len(got) != len(want) {
		t.Fatalf("notifications = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("notifications = %v, want %v", got, want)
		}
	}

	if v := testutil.ToFloat64(metrics.BreachesTotal.WithLabelValues("grid", "local")); v != 1 {
		t.Fatalf("breaches_total = %v", v)
	}
	if v := testutil.ToFloat64(metrics.CompromiseTotal.WithLabelValues("grid")); v != 1 {
		t.Fatalf("compromise_total = %v", v)
	}
	if v := testutil.ToFloat64(metrics.Phase.WithLabelValues("grid")); v != 0 {
		t.Fatalf("phase gauge = %v", v)
	}
}

func TestTrainRemoteBreachEndToEnd(t *testing.T) {
	ch := signal.NewMemoryChannel()
	d, notes, _ := newTestDashboard(t, scenario.Train(), 0, ch)
	baseline := d.State().Units

	if err := ch.Signal(context.Background(), domain.TargetTrain); err != nil {
		t.Fatalf("Signal: %v", err)
	}
	d.Poll(context.Background())

	st := d.State()
	if st.Phase != domain.PhaseCompromised {
		t.Fatalf("phase = %s", st.Phase)
	}

	lights := st.Units.ByKind(domain.KindTrafficLight)
	if len(lights) != 5 {
		t.Fatalf("lights = %d", len(lights))
	}
	for _, l := range lights {
		orig, _ := baseline.Find(l.ID)
		if l.Status == orig.Status {
			t.Fatalf("light %s kept status %q", l.ID, l.Status)
		}
	}
	for _, tr := range st.Units.ByKind(domain.KindTrain) {
		if tr.Metrics[domain.MetricSpeed] != 0 {
			t.Fatalf("train %s speed %v", tr.ID, tr.Metrics[domain.MetricSpeed])
		}
		if tr.Status != scenario.TrainEmergencyStop && tr.Status != scenario.TrainSignalFailure {
			t.Fatalf("train %s status %q", tr.ID, tr.Status)
		}
	}

	// Мгновенная компрометация все равно дает оба тоста
	if k := notes.kinds(); len(k) != 2 || k[0] != domain.NotifyBreachDetected || k[1] != domain.NotifyCompromised {
		t.Fatalf("notifications = %v", k)
	}
}

func TestStartBreachDoesNotResetCountdown(t *testing.T) {
	d, notes, _ := newTestDashboard(t, scenario.Grid(), 10, nil)
	d.StartBreach(domain.SourceLocal)
	d.Tick()
	d.Tick()
	d.Tick()

	if d.StartBreach(domain.SourceRemote) {
		t.Fatalf("second StartBreach accepted")
	}
	if st := d.State(); st.Countdown != 7 {
		t.Fatalf("countdown = %d, want 7", st.Countdown)
	}
	if len(notes.kinds()) != 1 {
		t.Fatalf("rejected breach emitted a notification")
	}
}

func TestRestoreDuringCountdown(t *testing.T) {
	d, _, _ := newTestDashboard(t, scenario.Airport(), 5, nil)
	want := d.State().Units

	d.StartBreach(domain.SourceLocal)
	d.Tick()
	if !d.Restore() {
		t.Fatalf("Restore from Breaching rejected")
	}

	st := d.State()
	if st.Phase != domain.PhaseNormal || st.Countdown != 0 {
		t.Fatalf("after restore: %s/%d", st.Phase, st.Countdown)
	}
	if d.Tick() {
		t.Fatalf("tick accepted after restore")
	}
	for i, u := range st.Units {
		if u.Status != want[i].Status {
			t.Fatalf("unit %s status %q, want %q", u.ID, u.Status, want[i].Status)
		}
	}
}

func TestRestoreFromNormalIsSilent(t *testing.T) {
	d, notes, _ := newTestDashboard(t, scenario.OilRig(), 0, nil)
	if d.Restore() {
		t.Fatalf("Restore from Normal accepted")
	}
	if len(notes.kinds()) != 0 {
		t.Fatalf("notifications emitted: %v", notes.kinds())
	}
}

func TestPollConsumesFlagOutsideNormal(t *testing.T) {
	ch := signal.NewMemoryChannel()
	ctx := context.Background()
	d, _, _ := newTestDashboard(t, scenario.Train(), 0, ch)

	d.StartBreach(domain.SourceLocal)
	_ = ch.Signal(ctx, domain.TargetTrain)
	d.Poll(ctx)
	if ch.Pending(domain.TargetTrain) {
		t.Fatalf("flag not consumed while compromised")
	}

	d.Restore()
	d.Poll(ctx)
	if st := d.State(); st.Phase != domain.PhaseNormal {
		t.Fatalf("stale signal re-breached dashboard: %s", st.Phase)
	}
}

func TestHealthObserverTracksPhase(t *testing.T) {
	d, _, _ := newTestDashboard(t, scenario.Grid(), 0, nil)
	hs := health.NewServer()
	d.Observe(HealthObserver(hs))

	check := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{Service: HealthServiceName(domain.TargetGrid)})
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		return resp.GetStatus()
	}

	if s := check(); s != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("initial status %s", s)
	}
	d.StartBreach(domain.SourceLocal)
	if s := check(); s != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("compromised status %s", s)
	}
	d.Restore()
	if s := check(); s != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("restored status %s", s)
	}
}

func TestDashboardCountdownViaScheduler(t *testing.T) {
	fc := &fakeClock{}
	s := NewScheduler(fc.factory, zap.NewNop())
	d, _, _ := newTestDashboard(t, scenario.Grid(), 3, nil)
	d.Attach(s)

	stop := startScheduler(t, s)
	defer stop()

	d.StartBreach(domain.SourceLocal)
	countdown := d.taskName("countdown")
	if !s.Has(countdown) {
		t.Fatalf("countdown task not registered")
	}

	// 0 - часы, 1 - опрос, 2 - отсчет
	for i := 0; i < 3; i++ {
		fc.ticker(2).c <- time.Now()
	}
	eventually(t, func() bool { return d.State().Phase == domain.PhaseCompromised }, "compromised")
	eventually(t, func() bool { return !s.Has(countdown) }, "countdown cancelled")

	d.Detach()
	if s.Has(d.taskName("poll")) || s.Has(d.taskName("clock")) {
		t.Fatalf("tasks left after Detach")
	}
}

func TestDashboardWakeTriggersPoll(t *testing.T) {
	fc := &fakeClock{}
	s := NewScheduler(fc.factory, zap.NewNop())
	ch := signal.NewMemoryChannel()
	d, _, _ := newTestDashboard(t, scenario.Train(), 0, ch)
	d.Attach(s)

	stop := startScheduler(t, s)
	defer stop()

	_ = ch.Signal(context.Background(), domain.TargetTrain)
	if !d.Wake() {
		t.Fatalf("Wake failed")
	}
	eventually(t, func() bool { return d.State().Phase == domain.PhaseCompromised }, "remote breach")
}
