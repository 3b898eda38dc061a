package scenario

import (
	"math/rand"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

// pickFailure выбирает аварийный статус. Если выпал исходный статус юнита,
// берется другой вариант из набора, чтобы ни один юнит не остался как был.
func pickFailure(rng *rand.Rand, threshold float64, hi, lo, original string) string {
	pick := lo
	if rng.Float64() > threshold {
		pick = hi
	}
	if pick == original {
		if pick == hi {
			return lo
		}
		return hi
	}
	return pick
}

// fail помечает юнит аварийным. Метрики меняет вызывающий.
func fail(u domain.MonitoredUnit, status string) domain.MonitoredUnit {
	u.Status = status
	u.Health = domain.HealthFailed
	if u.Metrics == nil {
		u.Metrics = map[string]float64{}
	}
	return u
}

// mapUnits применяет fn к каждому юниту указанного класса.
func mapUnits(s domain.Snapshot, kind domain.UnitKind, fn func(domain.MonitoredUnit) domain.MonitoredUnit) {
	for i := range s {
		if s[i].Kind == kind {
			s[i] = fn(s[i])
		}
	}
}
