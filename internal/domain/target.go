package domain

import (
	"errors"
	"fmt"
)

// Target — идентификатор дашборда (домена симуляции).
type Target string

const (
	TargetGrid    Target = "grid"    // Электросеть: подстанции и нагрузки
	TargetAirport Target = "airport" // Аэропорт: энергосистемы и табло рейсов
	TargetTrain   Target = "train"   // Ж/д: светофоры и составы
	TargetOilRig  Target = "oil-rig" // Буровая: резервуары и скважины
)

// Значения флага, которые пишет внешний пульт.
const (
	TriggerValue = "trigger"
	TrueValue    = "true"
)

var ErrUnknownTarget = errors.New("unknown target")

// targetMeta описывает legacy-ключ флага и литерал, который под ним пишется.
type targetMeta struct {
	flag    string
	trigger string
}

var targets = map[Target]targetMeta{
	TargetGrid:    {flag: "gridBreach", trigger: TriggerValue},
	TargetAirport: {flag: "airportBreach", trigger: TrueValue},
	TargetTrain:   {flag: "trainBreach", trigger: TrueValue},
	TargetOilRig:  {flag: "oilRigBreach", trigger: TrueValue},
}

// AllTargets возвращает цели в фиксированном порядке (как на главной странице).
func AllTargets() []Target {
	return []Target{TargetGrid, TargetAirport, TargetTrain, TargetOilRig}
}

// ParseTarget проверяет строку из URL/CLI.
func ParseTarget(s string) (Target, error) {
	t := Target(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTarget, s)
	}
	return t, nil
}

// Valid — известна ли цель.
func (t Target) Valid() bool {
	_, ok := targets[t]
	return ok
}

// FlagName — имя флага в общем хранилище (gridBreach, trainBreach, ...).
func (t Target) FlagName() string {
	return targets[t].flag
}

// TriggerLiteral — значение, которое пишется при сигнале для этой цели.
func (t Target) TriggerLiteral() string {
	return targets[t].trigger
}

// IsTrigger — любое из двух литералов считается сигналом, остальное игнорируем.
func IsTrigger(value string) bool {
	return value == TriggerValue || value == TrueValue
}
