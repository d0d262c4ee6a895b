package services

import (
	"math"

	"route-match-service/internal/domain"
)

// Capacity unit conversion: 5 kg or 10 dm3 each consume one unit. A coarse
// heuristic inherited from production; kept behind this function so the
// ledger never depends on it directly.
const (
	kgPerCapacityUnit  = 5.0
	dm3PerCapacityUnit = 10.0
)

// CapacityRequired returns how many capacity units servicing the
// announcement consumes. At least one unit is always consumed; weight and
// volume each set a floor and the larger wins.
func CapacityRequired(a *domain.Announcement) int {
	units := 1

	if a.WeightKg > 0 {
		byWeight := int(math.Ceil(a.WeightKg / kgPerCapacityUnit))
		if byWeight > units {
			units = byWeight
		}
	}

	if a.VolumeDm3 > 0 {
		byVolume := int(math.Ceil(a.VolumeDm3 / dm3PerCapacityUnit))
		if byVolume > units {
			units = byVolume
		}
	}

	return units
}
