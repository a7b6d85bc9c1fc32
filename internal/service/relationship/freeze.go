package relationship

import (
	"time"

	"github.com/Saifkhan77806/LoveTown/internal/config"
)

const defaultFreezeUnits = 24

// FreezePolicy is the cooldown applied to a user who unpins. It is resolved
// once at startup: production counts Units in hours, every other
// environment counts them in minutes.
type FreezePolicy struct {
	Window time.Duration
}

func NewFreezePolicy(cfg *config.Config) FreezePolicy {
	units := defaultFreezeUnits
	if cfg != nil && cfg.Freeze.Units > 0 {
		units = cfg.Freeze.Units
	}
	unit := time.Minute
	if cfg != nil && cfg.IsProduction() {
		unit = time.Hour
	}
	return FreezePolicy{Window: time.Duration(units) * unit}
}

// Until returns when a freeze starting at now ends.
func (p FreezePolicy) Until(now time.Time) time.Time {
	return now.Add(p.Window)
}
