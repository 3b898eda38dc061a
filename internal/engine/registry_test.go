package engine

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
	"github.com/xela07ax/ics-breach-sim/internal/infra"
	"github.com/xela07ax/ics-breach-sim/internal/signal"
)

func TestRegistryBuildsEveryDashboard(t *testing.T) {
	cfg := infra.EngineConfig{
		ClockInterval:     time.Second,
		CountdownInterval: time.Second,
		Countdown:         map[string]int{"airport": 4},
		Seed:              7,
	}
	r, err := NewRegistry(cfg, time.Second, signal.NewMemoryChannel(), nil, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	all := r.All()
	if len(all) != len(domain.AllTargets()) {
		t.Fatalf("dashboards = %d", len(all))
	}
	for i, target := range domain.AllTargets() {
		if all[i].Target() != target {
			t.Fatalf("order[%d] = %s, want %s", i, all[i].Target(), target)
		}
	}

	airport, err := r.Get(domain.TargetAirport)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	airport.StartBreach(domain.SourceLocal)
	if st := airport.State(); st.Countdown != 4 {
		t.Fatalf("airport countdown = %d, want 4", st.Countdown)
	}

	grid, _ := r.Get(domain.TargetGrid)
	grid.StartBreach(domain.SourceLocal)
	if st := grid.State(); st.Countdown != infra.DefaultCountdown {
		t.Fatalf("grid countdown = %d, want default", st.Countdown)
	}

	if _, err := r.Get("harbor"); !errors.Is(err, domain.ErrUnknownTarget) {
		t.Fatalf("Get(harbor) err = %v", err)
	}
}
