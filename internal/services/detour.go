package services

import (
	"math"

	"route-match-service/internal/domain"
)

// DetourSegments breaks the augmented trip into its three legs.
type DetourSegments struct {
	OriginToPickup       float64
	PickupToDropoff      float64
	DropoffToDestination float64
}

// DetourAnalysis describes the cost of inserting one pickup+dropoff pair
// into a route. Computed per matching run, never persisted.
type DetourAnalysis struct {
	OriginalDistanceKm float64
	NewDistanceKm      float64
	DetourKm           float64
	DetourPercentage   float64
	Segments           DetourSegments
}

// AnalyzeDetour computes the extra distance incurred by servicing a
// delivery on the way. The insertion order is fixed:
// origin -> pickup -> dropoff -> destination. Alternative waypoint
// orderings are a deliberate non-feature; multi-stop optimization would be
// a separate component consuming several accepted candidates.
func AnalyzeDetour(origin, destination, pickup, dropoff domain.Coordinates) DetourAnalysis {
	segments := DetourSegments{
		OriginToPickup:       DistanceKm(origin, pickup),
		PickupToDropoff:      DistanceKm(pickup, dropoff),
		DropoffToDestination: DistanceKm(dropoff, destination),
	}

	original := DistanceKm(origin, destination)
	augmented := segments.OriginToPickup + segments.PickupToDropoff + segments.DropoffToDestination

	// Floating point must not produce a negative detour when the insertion
	// lies on the direct path.
	detour := math.Max(0, augmented-original)

	percentage := 0.0
	if original > 0 {
		percentage = detour / original * 100
	}

	return DetourAnalysis{
		OriginalDistanceKm: original,
		NewDistanceKm:      augmented,
		DetourKm:           detour,
		DetourPercentage:   percentage,
		Segments:           segments,
	}
}

// RouteDetour analyzes a candidate against a route's direct leg. The
// candidate must be geolocated; callers filter beforehand.
func RouteDetour(route *domain.PlannedRoute, ann *domain.Announcement) DetourAnalysis {
	return AnalyzeDetour(route.Origin, route.Destination, *ann.Pickup, *ann.Dropoff)
}
