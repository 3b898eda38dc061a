package domain

import (
	"fmt"
	"time"
)

type UnitKind string

const (
	KindSubstation   UnitKind = "substation"
	KindLoad         UnitKind = "load"
	KindPowerSystem  UnitKind = "power_system"
	KindFlight       UnitKind = "flight"
	KindTrafficLight UnitKind = "traffic_light"
	KindTrain        UnitKind = "train"
	KindFluidTank    UnitKind = "fluid_tank"
	KindWell         UnitKind = "well"
)

// Health — обобщенная классификация статуса юнита.
type Health string

const (
	HealthNominal  Health = "nominal"  // online, On Time, Active, green ...
	HealthDegraded Health = "degraded" // Delayed, high, low, Maintenance ...
	HealthFailed   Health = "failed"   // emergency_shutdown, Cancelled, critical ...
)

// Ключи метрик. Набор зависит от домена.
const (
	MetricVoltage   = "voltage"
	MetricFrequency = "frequency"
	MetricLoad      = "load"
	MetricPower     = "power"
	MetricSpeed     = "speed"
	MetricLevel     = "level"
	MetricCapacity  = "capacity"
	MetricDepth     = "depth"
	MetricTarget    = "target"
	MetricPressure  = "pressure"
)

// MonitoredUnit — одна отображаемая сущность (подстанция, рейс, состав, скважина...).
type MonitoredUnit struct {
	ID      string             `json:"id"`
	Kind    UnitKind           `json:"kind"`
	Name    string             `json:"name"`
	Status  string             `json:"status"`
	Health  Health             `json:"health"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
	Attrs   map[string]string  `json:"attrs,omitempty"` // gate, eta, route, platform ...
}

func (u MonitoredUnit) Clone() MonitoredUnit {
	c := u
	if u.Metrics != nil {
		c.Metrics = make(map[string]float64, len(u.Metrics))
		for k, v := range u.Metrics {
			c.Metrics[k] = v
		}
	}
	if u.Attrs != nil {
		c.Attrs = make(map[string]string, len(u.Attrs))
		for k, v := range u.Attrs {
			c.Attrs[k] = v
		}
	}
	return c
}

// Snapshot — то, что отображается прямо сейчас. Меняется только целиком.
type Snapshot []MonitoredUnit

func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for i, u := range s {
		out[i] = u.Clone()
	}
	return out
}

// Validate проверяет уникальность ID внутри сценария.
func (s Snapshot) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for _, u := range s {
		if u.ID == "" {
			return fmt.Errorf("unit %q has empty id", u.Name)
		}
		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("duplicate unit id %q", u.ID)
		}
		seen[u.ID] = struct{}{}
	}
	return nil
}

// ByKind возвращает юниты одного класса в исходном порядке.
func (s Snapshot) ByKind(kind UnitKind) []MonitoredUnit {
	var out []MonitoredUnit
	for _, u := range s {
		if u.Kind == kind {
			out = append(out, u)
		}
	}
	return out
}

func (s Snapshot) Find(id string) (MonitoredUnit, bool) {
	for _, u := range s {
		if u.ID == id {
			return u, true
		}
	}
	return MonitoredUnit{}, false
}

// Phase — состояние машины взлома.
type Phase string

const (
	PhaseNormal      Phase = "normal"
	PhaseBreaching   Phase = "breaching"   // Идет обратный отсчет
	PhaseCompromised Phase = "compromised" // Снимок заменен на аварийный
)

// BreachSource — кто инициировал взлом.
type BreachSource string

const (
	SourceLocal  BreachSource = "local"  // Кнопка на дашборде / API
	SourceRemote BreachSource = "remote" // Флаг от внешнего пульта
)

// DashboardState — публичное представление дашборда для API и websocket.
type DashboardState struct {
	Target         Target    `json:"target"`
	Title          string    `json:"title"`
	Phase          Phase     `json:"phase"`
	Countdown      int       `json:"countdown"`
	Clock          time.Time `json:"clock"`
	LastTransition time.Time `json:"last_transition"`
	Units          Snapshot  `json:"units"`
}
