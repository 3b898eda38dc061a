package scenario

import (
	"math/rand"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

const (
	LightGreen  = "green"
	LightYellow = "yellow"
	LightRed    = "red"

	TrainArrived       = "Arrived"
	TrainDeparting     = "Departing"
	TrainEnRoute       = "En Route"
	TrainMaintenance   = "Maintenance"
	TrainBoarding      = "Boarding"
	TrainEmergencyStop = "Emergency Stop"
	TrainSignalFailure = "Signal Failure"
)

// Train — светофоры и составы.
func Train() Profile {
	return Profile{
		Target:   domain.TargetTrain,
		Title:    "Train Control Centre",
		Baseline: trainBaseline,
		Degrade:  trainDegrade,
		Messages: Messages{
			BreachTitle:       "SECURITY BREACH DETECTED",
			BreachDescription: "Railway signalling network has been accessed remotely.",
			CompromisedTitle:  "RAILWAY SYSTEMS COMPROMISED",
			CompromisedDesc:   "Traffic signals overridden, all trains brought to a stop.",
			RestoredTitle:     "SYSTEMS RESET",
			RestoredDesc:      "Traffic signals and train movements restored.",
		},
	}
}

func trainBaseline() domain.Snapshot {
	return domain.Snapshot{
		light("SIG-1", "Platform 1 Entry", LightGreen, "14:28"),
		light("SIG-2", "Platform 2 Entry", LightGreen, "14:25"),
		light("SIG-3", "Main Junction", LightRed, "14:30"),
		light("SIG-4", "Depot Exit", LightYellow, "14:29"),
		light("SIG-5", "Bridge Crossing", LightGreen, "14:27"),
		train("T001", "North Line", "1", TrainArrived, 0, "Central Station"),
		train("T002", "East Line", "3", TrainDeparting, 15, "Industrial Zone"),
		train("T003", "South Line", "2", TrainEnRoute, 80, "Platform 2"),
		train("T004", "West Line", "-", TrainMaintenance, 0, "Depot"),
		train("T005", "Express", "4", TrainBoarding, 0, "Airport Terminal"),
	}
}

func light(id, location, status, lastChange string) domain.MonitoredUnit {
	return domain.MonitoredUnit{
		ID: id, Kind: domain.KindTrafficLight, Name: location,
		Status: status, Health: domain.HealthNominal,
		Attrs: map[string]string{"last_change": lastChange},
	}
}

func train(id, route, platform, status string, speed float64, nextStop string) domain.MonitoredUnit {
	health := domain.HealthNominal
	if status == TrainMaintenance {
		health = domain.HealthDegraded
	}
	return domain.MonitoredUnit{
		ID: id, Kind: domain.KindTrain, Name: route,
		Status: status, Health: health,
		Metrics: map[string]float64{domain.MetricSpeed: speed},
		Attrs:   map[string]string{"platform": platform, "next_stop": nextStop},
	}
}

func trainDegrade(rng *rand.Rand, s domain.Snapshot) domain.Snapshot {
	mapUnits(s, domain.KindTrafficLight, func(u domain.MonitoredUnit) domain.MonitoredUnit {
		return fail(u, pickFailure(rng, 0.7, LightRed, LightYellow, u.Status))
	})
	mapUnits(s, domain.KindTrain, func(u domain.MonitoredUnit) domain.MonitoredUnit {
		u = fail(u, pickFailure(rng, 0.5, TrainEmergencyStop, TrainSignalFailure, u.Status))
		u.Metrics[domain.MetricSpeed] = 0
		return u
	})
	return s
}
