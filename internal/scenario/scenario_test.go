package scenario

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"testing"

	"pgregory.net/rapid"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

// fataler — общее подмножество *testing.T и *rapid.T.
type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

func mustJSON(t fataler, s domain.Snapshot) []byte {
	t.Helper()
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	return b
}

func TestBaselinesHaveUniqueIDs(t *testing.T) {
	for _, p := range Profiles() {
		if err := p.Baseline().Validate(); err != nil {
			t.Fatalf("%s baseline invalid: %v", p.Target, err)
		}
	}
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	p := Grid()
	p.Baseline = func() domain.Snapshot {
		return domain.Snapshot{{ID: "X"}, {ID: "X"}}
	}
	if _, err := New(p, nil); err == nil {
		t.Fatalf("expected error for duplicate ids")
	}
}

func TestRestoreBaselineIsByteIdentical(t *testing.T) {
	for _, p := range Profiles() {
		s, err := New(p, rand.New(rand.NewSource(7)))
		if err != nil {
			t.Fatalf("New(%s): %v", p.Target, err)
		}
		mount := mustJSON(t, s.Snapshot())

		s.CommitFailure()
		if bytes.Equal(mount, mustJSON(t, s.Snapshot())) {
			t.Fatalf("%s: failure snapshot equals baseline", p.Target)
		}

		s.RestoreBaseline()
		if got := mustJSON(t, s.Snapshot()); !bytes.Equal(mount, got) {
			t.Fatalf("%s: restore mismatch\nwant %s\ngot  %s", p.Target, mount, got)
		}
	}
}

func TestCommitFailureChangesEveryStatus(t *testing.T) {
	for _, p := range Profiles() {
		s, err := New(p, rand.New(rand.NewSource(42)))
		if err != nil {
			t.Fatalf("New(%s): %v", p.Target, err)
		}
		before := s.Snapshot()
		s.CommitFailure()
		after := s.Snapshot()
		for i, u := range after {
			if u.Health != domain.HealthFailed {
				t.Errorf("%s/%s: health = %s, want failed", p.Target, u.ID, u.Health)
			}
			if u.Status == before[i].Status {
				t.Errorf("%s/%s: status %q kept after breach", p.Target, u.ID, u.Status)
			}
		}
	}
}

func TestGridDegradeZeroesVolatileMetrics(t *testing.T) {
	s, err := New(Grid(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.CommitFailure()
	for _, sub := range s.Snapshot().ByKind(domain.KindSubstation) {
		if sub.Status != GridEmergencyShutdown {
			t.Fatalf("%s status = %s", sub.ID, sub.Status)
		}
		for _, k := range []string{domain.MetricVoltage, domain.MetricFrequency, domain.MetricLoad} {
			if sub.Metrics[k] != 0 {
				t.Fatalf("%s %s = %v, want 0", sub.ID, k, sub.Metrics[k])
			}
		}
	}
	for _, l := range s.Snapshot().ByKind(domain.KindLoad) {
		if l.Metrics[domain.MetricPower] != 0 || l.Status != GridEmergencyShutdown {
			t.Fatalf("load %s not shut down: %+v", l.ID, l)
		}
	}
}

func TestTrainDegradeStopsTrains(t *testing.T) {
	s, err := New(Train(), rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.CommitFailure()
	for _, tr := range s.Snapshot().ByKind(domain.KindTrain) {
		if tr.Metrics[domain.MetricSpeed] != 0 {
			t.Fatalf("%s speed = %v", tr.ID, tr.Metrics[domain.MetricSpeed])
		}
		if tr.Status != TrainEmergencyStop && tr.Status != TrainSignalFailure {
			t.Fatalf("%s status = %q", tr.ID, tr.Status)
		}
	}
	for _, l := range s.Snapshot().ByKind(domain.KindTrafficLight) {
		if l.Status != LightRed && l.Status != LightYellow {
			t.Fatalf("%s status = %q", l.ID, l.Status)
		}
	}
}

func TestRandomizedMetricsStayInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		for _, p := range []Profile{Airport(), OilRig()} {
			s, err := New(p, rand.New(rand.NewSource(seed)))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			s.CommitFailure()
			for _, u := range s.Snapshot() {
				if v, ok := u.Metrics[domain.MetricLoad]; ok && (v < 0 || v >= 100) {
					t.Fatalf("%s load out of range: %v", u.ID, v)
				}
				if v, ok := u.Metrics[domain.MetricLevel]; ok && (v < 0 || v >= 100) {
					t.Fatalf("%s level out of range: %v", u.ID, v)
				}
				if v, ok := u.Metrics[domain.MetricPressure]; ok && (v < 0 || v >= 4000) {
					t.Fatalf("%s pressure out of range: %v", u.ID, v)
				}
			}
		}
	})
}

func TestRestoreIsIdempotentAfterAnySequence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := rapid.SampledFrom(Profiles()).Draw(t, "profile")
		s, err := New(p, rand.New(rand.NewSource(rapid.Int64().Draw(t, "seed"))))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		mount := mustJSON(t, s.Snapshot())

		ops := rapid.SliceOfN(rapid.Bool(), 0, 8).Draw(t, "ops")
		for _, commit := range ops {
			if commit {
				s.CommitFailure()
			} else {
				s.RestoreBaseline()
			}
		}
		s.RestoreBaseline()
		s.RestoreBaseline()
		if !bytes.Equal(mount, mustJSON(t, s.Snapshot())) {
			t.Fatalf("%s: snapshot differs from mount after restore", p.Target)
		}
	})
}

func TestSnapshotIsACopy(t *testing.T) {
	s, err := New(Grid(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	snap := s.Snapshot()
	snap[0].Metrics[domain.MetricLoad] = 999
	snap[0].Status = "hacked"

	if got := s.Snapshot()[0]; got.Metrics[domain.MetricLoad] != 75 || got.Status != GridOnline {
		t.Fatalf("internal snapshot mutated through copy: %+v", got)
	}
}
