package scenario

import (
	"fmt"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

// Profiles возвращает профили всех дашбордов в порядке domain.AllTargets.
func Profiles() []Profile {
	return []Profile{Grid(), Airport(), Train(), OilRig()}
}

func ProfileFor(t domain.Target) (Profile, error) {
	for _, p := range Profiles() {
		if p.Target == t {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", domain.ErrUnknownTarget, t)
}
