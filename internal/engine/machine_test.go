package engine

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

func TestMachineCountdownReachesCompromisedOnNthTick(t *testing.T) {
	m := NewMachine(10)
	if _, ok := m.Start(); !ok {
		t.Fatalf("Start from Normal rejected")
	}
	if m.Phase() != domain.PhaseBreaching || m.Remaining() != 10 {
		t.Fatalf("after Start: %s/%d", m.Phase(), m.Remaining())
	}

	for i := 1; i < 10; i++ {
		tr, ok := m.Tick()
		if !ok || tr.To != domain.PhaseBreaching {
			t.Fatalf("tick %d: %+v %v", i, tr, ok)
		}
		if m.Remaining() != 10-i {
			t.Fatalf("tick %d: remaining %d", i, m.Remaining())
		}
	}

	tr, ok := m.Tick()
	if !ok || tr.From != domain.PhaseBreaching || tr.To != domain.PhaseCompromised {
		t.Fatalf("10th tick: %+v %v", tr, ok)
	}
	if _, ok := m.Tick(); ok {
		t.Fatalf("tick in Compromised accepted")
	}
}

func TestMachineStartIsNotReentrant(t *testing.T) {
	m := NewMachine(10)
	m.Start()
	m.Tick()
	m.Tick()

	if _, ok := m.Start(); ok {
		t.Fatalf("Start in Breaching accepted")
	}
	if m.Remaining() != 8 {
		t.Fatalf("countdown reset to %d", m.Remaining())
	}

	for m.Phase() == domain.PhaseBreaching {
		m.Tick()
	}
	if _, ok := m.Start(); ok {
		t.Fatalf("Start in Compromised accepted")
	}
}

func TestMachineRestore(t *testing.T) {
	m := NewMachine(3)
	if _, ok := m.Restore(); ok {
		t.Fatalf("Restore from Normal accepted")
	}

	m.Start()
	m.Tick()
	tr, ok := m.Restore()
	if !ok || tr.From != domain.PhaseBreaching || tr.To != domain.PhaseNormal {
		t.Fatalf("Restore from Breaching: %+v %v", tr, ok)
	}
	if m.Remaining() != 0 {
		t.Fatalf("countdown not cleared: %d", m.Remaining())
	}
	if _, ok := m.Tick(); ok {
		t.Fatalf("tick after restore accepted")
	}
}

func TestMachineZeroCountdownCommitsImmediately(t *testing.T) {
	m := NewMachine(0)
	tr, ok := m.Start()
	if !ok || tr.From != domain.PhaseNormal || tr.To != domain.PhaseCompromised {
		t.Fatalf("Start: %+v %v", tr, ok)
	}
}

// Инварианты на случайных последовательностях операций.
func TestMachineInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(t, "countdown")
		m := NewMachine(n)
		ops := rapid.SliceOf(rapid.SampledFrom([]string{"start", "tick", "restore"})).Draw(t, "ops")

		for _, op := range ops {
			before, rem := m.Phase(), m.Remaining()
			switch op {
			case "start":
				_, ok := m.Start()
				if ok != (before == domain.PhaseNormal) {
					t.Fatalf("start from %s: ok=%v", before, ok)
				}
				if !ok && m.Remaining() != rem {
					t.Fatalf("rejected start changed countdown %d -> %d", rem, m.Remaining())
				}
			case "tick":
				_, ok := m.Tick()
				if ok && before == domain.PhaseBreaching && rem > 1 && m.Remaining() != rem-1 {
					t.Fatalf("tick decremented %d -> %d", rem, m.Remaining())
				}
			case "restore":
				m.Restore()
				if m.Phase() != domain.PhaseNormal {
					t.Fatalf("restore left phase %s", m.Phase())
				}
			}

			if m.Phase() != domain.PhaseBreaching && m.Remaining() != 0 {
				t.Fatalf("remaining %d outside Breaching", m.Remaining())
			}
			if m.Phase() == domain.PhaseBreaching && (m.Remaining() < 1 || m.Remaining() > n) {
				t.Fatalf("remaining %d out of [1,%d]", m.Remaining(), n)
			}
		}
	})
}
