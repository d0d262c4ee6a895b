package services

import (
	"math"
	"time"

	"route-match-service/internal/domain"
)

// Pricing constants for the per-suggestion estimate: a base fare, a rate on
// the carried leg, and a surcharge on the detour the deliverer absorbs.
const (
	basePriceEUR         = 3.50
	pricePerKmEUR        = 1.20
	detourSurchargePerKm = 0.80
)

// EstimatedDeliveryTime projects when the dropoff would happen if the
// candidate is serviced: departure plus travel over the augmented trip at
// the configured average speed, plus a fixed stop allowance.
func EstimatedDeliveryTime(route *domain.PlannedRoute, detour DetourAnalysis, cfg MatchConfig) time.Time {
	travelMinutes := 0.0
	if cfg.AverageSpeedKmh > 0 {
		travelMinutes = detour.NewDistanceKm / cfg.AverageSpeedKmh * 60
	}
	minutes := travelMinutes + float64(cfg.StopTimeMinutes)
	return route.DepartureTime.Add(time.Duration(math.Round(minutes)) * time.Minute)
}

// EstimatedFuelCostDelta prices the extra fuel a detour burns, rounded to
// cents.
func EstimatedFuelCostDelta(detourKm float64, cfg MatchConfig) float64 {
	cost := detourKm * cfg.FuelConsumptionPer100Km / 100 * cfg.FuelPricePerLiter
	return round2(cost)
}

// EstimatedPrice suggests a price for the carried delivery: base fare, the
// pickup->dropoff leg at the per-km rate, and a detour surcharge.
func EstimatedPrice(detour DetourAnalysis) float64 {
	price := basePriceEUR +
		detour.Segments.PickupToDropoff*pricePerKmEUR +
		detour.DetourKm*detourSurchargePerKm
	return round2(price)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
