package scenario

import (
	"fmt"
	"math/rand"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

// DegradePolicy строит аварийный снимок из текущего. Входной срез не меняется.
type DegradePolicy func(rng *rand.Rand, current domain.Snapshot) domain.Snapshot

// Messages — тексты тостов для переходов машины.
type Messages struct {
	BreachTitle       string
	BreachDescription string
	CompromisedTitle  string
	CompromisedDesc   string
	RestoredTitle     string
	RestoredDesc      string
}

// Profile — конфигурационная запись одного домена: базовый набор юнитов и политика деградации.
type Profile struct {
	Target   domain.Target
	Title    string
	Baseline func() domain.Snapshot // Всегда возвращает свежий литерал
	Degrade  DegradePolicy
	Messages Messages
}

// Scenario хранит текущий снимок одного дашборда.
// Не потокобезопасен: синхронизацию делает engine.Dashboard.
type Scenario struct {
	profile  Profile
	rng      *rand.Rand
	snapshot domain.Snapshot
}

func New(p Profile, rng *rand.Rand) (*Scenario, error) {
	if p.Baseline == nil || p.Degrade == nil {
		return nil, fmt.Errorf("profile %s: baseline and degrade policy are required", p.Target)
	}
	base := p.Baseline()
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Target, err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Scenario{profile: p, rng: rng, snapshot: base}, nil
}

func (s *Scenario) Profile() Profile {
	return s.profile
}

// Snapshot отдает копию, чтобы вызывающий не мог мутировать состояние.
func (s *Scenario) Snapshot() domain.Snapshot {
	return s.snapshot.Clone()
}

// CommitFailure заменяет снимок аварийным по политике домена.
func (s *Scenario) CommitFailure() {
	s.snapshot = s.profile.Degrade(s.rng, s.snapshot.Clone())
}

// RestoreBaseline заменяет снимок исходным литералом.
func (s *Scenario) RestoreBaseline() {
	s.snapshot = s.profile.Baseline()
}
