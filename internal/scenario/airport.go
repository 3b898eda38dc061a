package scenario

import (
	"math/rand"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

const (
	AirportOnline  = "online"
	AirportOffline = "offline"
	AirportWarning = "warning"

	FlightOnTime    = "On Time"
	FlightBoarding  = "Boarding"
	FlightDelayed   = "Delayed"
	FlightLanding   = "Landing"
	FlightCancelled = "Cancelled"
)

// Airport — энергосистемы терминалов и табло рейсов.
func Airport() Profile {
	return Profile{
		Target:   domain.TargetAirport,
		Title:    "Airport Control Centre",
		Baseline: airportBaseline,
		Degrade:  airportDegrade,
		Messages: Messages{
			BreachTitle:       "SECURITY BREACH DETECTED",
			BreachDescription: "Unauthorized access to airport power and flight systems.",
			CompromisedTitle:  "AIRPORT SYSTEMS COMPROMISED",
			CompromisedDesc:   "Power systems unstable, flight operations disrupted.",
			RestoredTitle:     "SYSTEMS RESET",
			RestoredDesc:      "Airport power and flight systems restored to normal operation.",
		},
	}
}

func airportBaseline() domain.Snapshot {
	return domain.Snapshot{
		airportPower("PWR-1", "Terminal A Power", 85),
		airportPower("PWR-2", "Terminal B Power", 72),
		airportPower("PWR-3", "Runway Lighting", 95),
		airportPower("PWR-4", "Control Tower", 60),
		airportPower("PWR-5", "Baggage Systems", 78),
		flight("AA101", "Arrival", "A12", FlightOnTime, "14:30"),
		flight("UA205", "Departure", "B7", FlightBoarding, "15:15"),
		flight("DL342", "Arrival", "A8", FlightDelayed, "14:45"),
		flight("SW128", "Departure", "B12", FlightOnTime, "15:45"),
		flight("BA891", "Arrival", "A15", FlightLanding, "14:25"),
	}
}

func airportPower(id, name string, load float64) domain.MonitoredUnit {
	return domain.MonitoredUnit{
		ID: id, Kind: domain.KindPowerSystem, Name: name,
		Status: AirportOnline, Health: domain.HealthNominal,
		Metrics: map[string]float64{domain.MetricLoad: load},
	}
}

func flight(id, typ, gate, status, eta string) domain.MonitoredUnit {
	health := domain.HealthNominal
	if status == FlightDelayed {
		health = domain.HealthDegraded
	}
	return domain.MonitoredUnit{
		ID: id, Kind: domain.KindFlight, Name: id,
		Status: status, Health: health,
		Attrs: map[string]string{"type": typ, "gate": gate, "eta": eta},
	}
}

func airportDegrade(rng *rand.Rand, s domain.Snapshot) domain.Snapshot {
	mapUnits(s, domain.KindPowerSystem, func(u domain.MonitoredUnit) domain.MonitoredUnit {
		u = fail(u, pickFailure(rng, 0.5, AirportOffline, AirportWarning, u.Status))
		u.Metrics[domain.MetricLoad] = rng.Float64() * 100
		return u
	})
	mapUnits(s, domain.KindFlight, func(u domain.MonitoredUnit) domain.MonitoredUnit {
		return fail(u, pickFailure(rng, 0.5, FlightDelayed, FlightCancelled, u.Status))
	})
	return s
}
