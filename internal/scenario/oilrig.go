package scenario

import (
	"math/rand"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

const (
	FluidNormal   = "normal"
	FluidHigh     = "high"
	FluidLow      = "low"
	FluidWarning  = "warning"
	FluidCritical = "critical"

	WellActive        = "Active"
	WellComplete      = "Complete"
	WellDrilling      = "Drilling"
	WellStandby       = "Standby"
	WellEmergencyStop = "Emergency Stop"
	WellSystemFailure = "System Failure"
)

// OilRig — баланс резервуаров и буровые операции.
func OilRig() Profile {
	return Profile{
		Target:   domain.TargetOilRig,
		Title:    "Oil Rig Control Centre",
		Baseline: oilRigBaseline,
		Degrade:  oilRigDegrade,
		Messages: Messages{
			BreachTitle:       "SECURITY BREACH DETECTED",
			BreachDescription: "Drilling control network has been accessed remotely.",
			CompromisedTitle:  "RIG SYSTEMS COMPROMISED",
			CompromisedDesc:   "Fluid balancing lost, drilling operations halted.",
			RestoredTitle:     "SYSTEMS RESET",
			RestoredDesc:      "Fluid levels and drilling operations restored.",
		},
	}
}

func oilRigBaseline() domain.Snapshot {
	return domain.Snapshot{
		tank("TANK-1", "Crude Oil Tank 1", 78, 1000, FluidNormal),
		tank("TANK-2", "Crude Oil Tank 2", 65, 1000, FluidNormal),
		tank("TANK-3", "Water Separator", 42, 500, FluidNormal),
		tank("TANK-4", "Mud Circulation", 88, 800, FluidHigh),
		tank("TANK-5", "Fuel Reserve", 35, 600, FluidLow),
		well("WELL-A1", "Well-A1", 2450, 3000, 2800, WellActive),
		well("WELL-B2", "Well-B2", 1875, 2500, 2200, WellActive),
		well("WELL-C3", "Well-C3", 3200, 3200, 3100, WellComplete),
		well("WELL-D4", "Well-D4", 890, 2800, 1200, WellDrilling),
		well("WELL-E5", "Well-E5", 0, 2200, 0, WellStandby),
	}
}

func tank(id, name string, level, capacity float64, status string) domain.MonitoredUnit {
	health := domain.HealthNominal
	if status != FluidNormal {
		health = domain.HealthDegraded
	}
	return domain.MonitoredUnit{
		ID: id, Kind: domain.KindFluidTank, Name: name,
		Status: status, Health: health,
		Metrics: map[string]float64{domain.MetricLevel: level, domain.MetricCapacity: capacity},
	}
}

func well(id, name string, depth, target, pressure float64, status string) domain.MonitoredUnit {
	health := domain.HealthNominal
	if status == WellStandby {
		health = domain.HealthDegraded
	}
	return domain.MonitoredUnit{
		ID: id, Kind: domain.KindWell, Name: name,
		Status: status, Health: health,
		Metrics: map[string]float64{domain.MetricDepth: depth, domain.MetricTarget: target, domain.MetricPressure: pressure},
	}
}

func oilRigDegrade(rng *rand.Rand, s domain.Snapshot) domain.Snapshot {
	mapUnits(s, domain.KindFluidTank, func(u domain.MonitoredUnit) domain.MonitoredUnit {
		u = fail(u, pickFailure(rng, 0.6, FluidCritical, FluidWarning, u.Status))
		u.Metrics[domain.MetricLevel] = rng.Float64() * 100
		return u
	})
	mapUnits(s, domain.KindWell, func(u domain.MonitoredUnit) domain.MonitoredUnit {
		u = fail(u, pickFailure(rng, 0.5, WellEmergencyStop, WellSystemFailure, u.Status))
		u.Metrics[domain.MetricPressure] = rng.Float64() * 4000
		return u
	})
	return s
}
