package scenario

import (
	"math/rand"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

const (
	GridOnline            = "online"
	GridOffline           = "offline"
	GridEmergencyShutdown = "emergency_shutdown"
)

// Grid — дашборд электросети. Деградация детерминированная: все в ноль.
func Grid() Profile {
	return Profile{
		Target:   domain.TargetGrid,
		Title:    "Grid Control Center",
		Baseline: gridBaseline,
		Degrade:  gridDegrade,
		Messages: Messages{
			BreachTitle:       "SECURITY BREACH DETECTED",
			BreachDescription: "Emergency shutdown initiated. All systems will be offline in 10 seconds.",
			CompromisedTitle:  "EMERGENCY SHUTDOWN COMPLETE",
			CompromisedDesc:   "All power systems have been safely disconnected.",
			RestoredTitle:     "SYSTEM RESTORED",
			RestoredDesc:      "All power grid systems are back online and operational.",
		},
	}
}

func gridBaseline() domain.Snapshot {
	return domain.Snapshot{
		{
			ID: "SUB-A", Kind: domain.KindSubstation, Name: "Substation Alpha",
			Status: GridOnline, Health: domain.HealthNominal,
			Metrics: map[string]float64{domain.MetricVoltage: 138000, domain.MetricFrequency: 60.0, domain.MetricLoad: 75},
		},
		{
			ID: "SUB-B", Kind: domain.KindSubstation, Name: "Substation Beta",
			Status: GridOnline, Health: domain.HealthNominal,
			Metrics: map[string]float64{domain.MetricVoltage: 138000, domain.MetricFrequency: 60.0, domain.MetricLoad: 82},
		},
		gridLoad("LOAD-1", "Industrial Complex A", 45.2, "A"),
		gridLoad("LOAD-2", "Residential Area North", 28.7, "A"),
		gridLoad("LOAD-3", "Commercial District", 52.1, "B"),
		gridLoad("LOAD-4", "Hospital & Emergency", 31.8, "B"),
		gridLoad("LOAD-5", "Water Treatment Plant", 22.5, "A"),
	}
}

func gridLoad(id, name string, power float64, substation string) domain.MonitoredUnit {
	return domain.MonitoredUnit{
		ID: id, Kind: domain.KindLoad, Name: name,
		Status: GridOnline, Health: domain.HealthNominal,
		Metrics: map[string]float64{domain.MetricPower: power},
		Attrs:   map[string]string{"substation": substation},
	}
}

func gridDegrade(_ *rand.Rand, s domain.Snapshot) domain.Snapshot {
	mapUnits(s, domain.KindSubstation, func(u domain.MonitoredUnit) domain.MonitoredUnit {
		u = fail(u, GridEmergencyShutdown)
		u.Metrics[domain.MetricVoltage] = 0
		u.Metrics[domain.MetricFrequency] = 0
		u.Metrics[domain.MetricLoad] = 0
		return u
	})
	mapUnits(s, domain.KindLoad, func(u domain.MonitoredUnit) domain.MonitoredUnit {
		u = fail(u, GridEmergencyShutdown)
		u.Metrics[domain.MetricPower] = 0
		return u
	})
	return s
}
