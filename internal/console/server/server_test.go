package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xela07ax/ics-breach-sim/internal/console/handler"
	"github.com/xela07ax/ics-breach-sim/internal/console/service"
	"github.com/xela07ax/ics-breach-sim/internal/domain"
	"github.com/xela07ax/ics-breach-sim/internal/engine"
	"github.com/xela07ax/ics-breach-sim/internal/infra"
	"github.com/xela07ax/ics-breach-sim/internal/notify"
	"github.com/xela07ax/ics-breach-sim/internal/signal"
)

type testEnv struct {
	srv      *Server
	channel  *signal.MemoryChannel
	registry *engine.Registry
	feed     *notify.Feed
}

func newTestEnv(t *testing.T, limiter *rate.Limiter) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	ch := signal.NewMemoryChannel()

	feed := notify.NewFeed(64, 50, nil, logger)
	feed.Start()
	t.Cleanup(feed.Stop)

	cfg := infra.EngineConfig{Countdown: map[string]int{"grid": 3}, Seed: 1}
	reg, err := engine.NewRegistry(cfg, time.Second, ch, feed, nil, logger)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	srv := New(logger, Handlers{
		Dashboards: handler.NewDashboardHandler(service.NewDashboardService(reg, feed, logger)),
		Control:    handler.NewControlHandler(service.NewControlService(ch, logger), limiter),
	})
	return &testEnv{srv: srv, channel: ch, registry: reg, feed: feed}
}

func (e *testEnv) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestListDashboards(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/v1/dashboards")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	states := decode[[]domain.DashboardState](t, rec)
	if len(states) != 4 {
		t.Fatalf("dashboards = %d", len(states))
	}
	for _, s := range states {
		if s.Phase != domain.PhaseNormal || len(s.Units) == 0 {
			t.Fatalf("%s: phase %s, units %d", s.Target, s.Phase, len(s.Units))
		}
	}
	if rec.Header().Get("X-Trace-ID") == "" {
		t.Fatalf("trace id header missing")
	}
}

func TestBreachAndRestoreOverHTTP(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/dashboards/grid/breach")
	resp := decode[handler.ActionResponse](t, rec)
	if !resp.Accepted || resp.State.Phase != domain.PhaseBreaching || resp.State.Countdown != 3 {
		t.Fatalf("breach: %+v", resp)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/dashboards/grid/breach")
	if resp := decode[handler.ActionResponse](t, rec); resp.Accepted {
		t.Fatalf("second breach accepted")
	}

	rec = env.do(t, http.MethodPost, "/api/v1/dashboards/grid/restore")
	resp = decode[handler.ActionResponse](t, rec)
	if !resp.Accepted || resp.State.Phase != domain.PhaseNormal {
		t.Fatalf("restore: %+v", resp)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/dashboards/grid")
	if st := decode[domain.DashboardState](t, rec); st.Phase != domain.PhaseNormal {
		t.Fatalf("get: %s", st.Phase)
	}
}

func TestRemoteControlBreachesOnPoll(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/breach-control?target=oil-rig")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	if !env.channel.Pending(domain.TargetOilRig) {
		t.Fatalf("flag not written")
	}

	d, _ := env.registry.Get(domain.TargetOilRig)
	d.Poll(t.Context())
	if st := d.State(); st.Phase != domain.PhaseCompromised {
		t.Fatalf("oil-rig phase = %s", st.Phase)
	}
}

func TestRemoteControlRateLimit(t *testing.T) {
	env := newTestEnv(t, rate.NewLimiter(rate.Every(time.Hour), 1))

	if rec := env.do(t, http.MethodPost, "/breach-control?target=grid"); rec.Code != http.StatusAccepted {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec := env.do(t, http.MethodPost, "/breach-control?target=grid")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", rec.Code)
	}
	if body := decode[handler.ErrorResponse](t, rec); body.Error != "rate_limited" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestUnknownTargetsAndPaths(t *testing.T) {
	env := newTestEnv(t, nil)

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/v1/dashboards/harbor", http.StatusNotFound},
		{http.MethodPost, "/api/v1/dashboards/harbor/breach", http.StatusNotFound},
		{http.MethodPost, "/breach-control?target=harbor", http.StatusNotFound},
		{http.MethodPost, "/breach-control", http.StatusBadRequest},
		{http.MethodGet, "/api/v1/notifications?limit=-1", http.StatusBadRequest},
		{http.MethodGet, "/no/such/page", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := env.do(t, tc.method, tc.path)
		if rec.Code != tc.want {
			t.Errorf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.want)
		}
	}

	rec := env.do(t, http.MethodGet, "/no/such/page")
	if body := decode[handler.ErrorResponse](t, rec); body.Error != "not_found" {
		t.Fatalf("fallback error = %q", body.Error)
	}
}

func TestNotificationsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/v1/dashboards/train/breach")
	env.do(t, http.MethodPost, "/api/v1/dashboards/train/restore")

	deadline := time.Now().Add(2 * time.Second)
	var got []domain.Notification
	for {
		rec := env.do(t, http.MethodGet, "/api/v1/notifications?target=train&limit=10")
		got = decode[[]domain.Notification](t, rec)
		if len(got) == 3 || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	if len(got) != 3 {
		t.Fatalf("notifications = %d, want 3", len(got))
	}
	if got[0].Kind != domain.NotifyRestored || got[2].Kind != domain.NotifyBreachDetected {
		t.Fatalf("order = %s..%s", got[0].Kind, got[2].Kind)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(t, http.MethodGet, "/health"); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
