package engine

import "github.com/xela07ax/ics-breach-sim/internal/domain"

// Transition — результат успешного перехода машины.
type Transition struct {
	From      domain.Phase
	To        domain.Phase
	Remaining int // Остаток отсчета после перехода (0 вне Breaching)
}

// Machine — чистая машина состояний Normal -> Breaching(n) -> Compromised -> Normal.
// Без блокировок и побочных эффектов: их добавляет Dashboard.
type Machine struct {
	countdown int
	phase     domain.Phase
	remaining int
}

// NewMachine создает машину в Normal. countdown <= 0 означает мгновенную компрометацию.
func NewMachine(countdown int) *Machine {
	if countdown < 0 {
		countdown = 0
	}
	return &Machine{countdown: countdown, phase: domain.PhaseNormal}
}

func (m *Machine) Phase() domain.Phase { return m.phase }

// Remaining — сколько тиков осталось до Compromised. Вне Breaching всегда 0.
func (m *Machine) Remaining() int { return m.remaining }

// Start начинает взлом. Разрешен только из Normal.
func (m *Machine) Start() (Transition, bool) {
	if m.phase != domain.PhaseNormal {
		return Transition{}, false
	}
	if m.countdown == 0 {
		return m.move(domain.PhaseCompromised, 0), true
	}
	return m.move(domain.PhaseBreaching, m.countdown), true
}

// Tick уменьшает отсчет на единицу. На последнем тике машина уходит в Compromised.
func (m *Machine) Tick() (Transition, bool) {
	if m.phase != domain.PhaseBreaching {
		return Transition{}, false
	}
	if m.remaining > 1 {
		return m.move(domain.PhaseBreaching, m.remaining-1), true
	}
	return m.move(domain.PhaseCompromised, 0), true
}

// Restore возвращает машину в Normal из Breaching или Compromised.
func (m *Machine) Restore() (Transition, bool) {
	if m.phase == domain.PhaseNormal {
		return Transition{}, false
	}
	return m.move(domain.PhaseNormal, 0), true
}

func (m *Machine) move(to domain.Phase, remaining int) Transition {
	t := Transition{From: m.phase, To: to, Remaining: remaining}
	m.phase = to
	m.remaining = remaining
	return t
}
