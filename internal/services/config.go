package services

import "time"

// MatchConfig collects the tunables of the matching engine. The values were
// previously scattered magic numbers; they are injected here so tests and
// deployments can control them. Defaults mirror production behavior.
type MatchConfig struct {
	// MaxDetourKm caps the extra distance a deliverer is asked to drive.
	MaxDetourKm float64

	// PickupWindowBefore/After bound the accepted gap between a route's
	// departure and a candidate's requested pickup time. The window is
	// asymmetric: deliverers can pick up a little early but tolerate more
	// lateness.
	PickupWindowBefore time.Duration
	PickupWindowAfter  time.Duration

	// MaxSuggestions caps a matching run's output; NotifyFanout caps how
	// many client notifications a run emits.
	MaxSuggestions int
	NotifyFanout   int

	// MinScore is the floor applied by public route search. The scorer
	// itself never thresholds.
	MinScore float64

	// Travel and cost estimation constants.
	AverageSpeedKmh         float64
	StopTimeMinutes         int
	FuelConsumptionPer100Km float64
	FuelPricePerLiter       float64

	// CandidatePoolLimit bounds how many open announcements one matching
	// run analyzes.
	CandidatePoolLimit int
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		MaxDetourKm:             15,
		PickupWindowBefore:      2 * time.Hour,
		PickupWindowAfter:       4 * time.Hour,
		MaxSuggestions:          8,
		NotifyFanout:            5,
		MinScore:                40,
		AverageSpeedKmh:         50,
		StopTimeMinutes:         15,
		FuelConsumptionPer100Km: 7,
		FuelPricePerLiter:       1.5,
		CandidatePoolLimit:      50,
	}
}
