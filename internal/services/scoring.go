package services

import (
	"math"
	"time"

	"route-match-service/internal/domain"
)

// Criterion is one component of a weighted compatibility score. Score
// returns a normalized value in [0,1]; the component contributes
// Score(input) * Weight points, clamped to its weight.
type Criterion[T any] struct {
	Name   string
	Weight float64
	Score  func(T) float64
}

// WeightedScore sums the clamped weighted components and rounds the result
// to one decimal. With weights summing to 100 the result is a 0-100 score.
func WeightedScore[T any](criteria []Criterion[T], input T) float64 {
	total := 0.0
	for _, c := range criteria {
		v := c.Score(input)
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		total += v * c.Weight
	}
	return math.Round(total*10) / 10
}

// timingSpanHours is the scheduling gap beyond which the timing component
// contributes nothing.
const timingSpanHours = 6.0

// RouteMatchInput feeds the five-factor route/announcement scorer.
type RouteMatchInput struct {
	DetourKm       float64
	TimeDeltaHours float64
	Reputation     *domain.Reputation
}

// routeMatchCriteria builds the five-factor weighted components used for
// route/announcement matching: detour 40, timing 25, reputation 20,
// experience 10, punctuality 5.
func routeMatchCriteria(cfg MatchConfig) []Criterion[RouteMatchInput] {
	return []Criterion[RouteMatchInput]{
		{
			Name:   "detour",
			Weight: 40,
			Score: func(in RouteMatchInput) float64 {
				if cfg.MaxDetourKm <= 0 {
					return 0
				}
				return (cfg.MaxDetourKm - in.DetourKm) / cfg.MaxDetourKm
			},
		},
		{
			Name:   "timing",
			Weight: 25,
			Score: func(in RouteMatchInput) float64 {
				return (timingSpanHours - math.Abs(in.TimeDeltaHours)) / timingSpanHours
			},
		},
		{
			Name:   "reputation",
			Weight: 20,
			Score: func(in RouteMatchInput) float64 {
				if in.Reputation == nil {
					return 0
				}
				return in.Reputation.AverageRating / 5
			},
		},
		{
			Name:   "experience",
			Weight: 10,
			Score: func(in RouteMatchInput) float64 {
				if in.Reputation == nil {
					return 0
				}
				return float64(in.Reputation.TotalDeliveries) / 100
			},
		},
		{
			Name:   "punctuality",
			Weight: 5,
			Score: func(in RouteMatchInput) float64 {
				if in.Reputation == nil {
					return 0
				}
				return in.Reputation.OnTimeRatePercent / 100
			},
		},
	}
}

// ScoreRouteMatch computes the 0-100 compatibility score for servicing an
// announcement on a route. Purely a ranking aid: thresholds are caller
// policy.
func ScoreRouteMatch(route *domain.PlannedRoute, requestedPickup time.Time, detour DetourAnalysis, cfg MatchConfig) float64 {
	in := RouteMatchInput{
		DetourKm:       detour.DetourKm,
		TimeDeltaHours: requestedPickup.Sub(route.DepartureTime).Hours(),
		Reputation:     route.Reputation,
	}
	return WeightedScore(routeMatchCriteria(cfg), in)
}

// serviceDistanceSpanKm is the radius beyond which the distance component
// of the service scorer contributes nothing.
const serviceDistanceSpanKm = 20.0

// ServiceMatchInput feeds the simpler four-factor scorer used for
// personal-service style matching, where there is no route to detour from.
type ServiceMatchInput struct {
	DistanceKm float64
	Reputation *domain.Reputation
	Available  bool
}

// serviceMatchCriteria: distance 30, reputation 40, experience 20,
// availability 10. Shares the weighted-criteria shape with the route scorer.
var serviceMatchCriteria = []Criterion[ServiceMatchInput]{
	{
		Name:   "distance",
		Weight: 30,
		Score: func(in ServiceMatchInput) float64 {
			return (serviceDistanceSpanKm - in.DistanceKm) / serviceDistanceSpanKm
		},
	},
	{
		Name:   "reputation",
		Weight: 40,
		Score: func(in ServiceMatchInput) float64 {
			if in.Reputation == nil {
				return 0
			}
			return in.Reputation.AverageRating / 5
		},
	},
	{
		Name:   "experience",
		Weight: 20,
		Score: func(in ServiceMatchInput) float64 {
			if in.Reputation == nil {
				return 0
			}
			return float64(in.Reputation.TotalDeliveries) / 100
		},
	},
	{
		Name:   "availability",
		Weight: 10,
		Score: func(in ServiceMatchInput) float64 {
			if in.Available {
				return 1
			}
			return 0
		},
	},
}

// ScoreServiceMatch ranks a provider for a personal-service request by
// proximity, reputation, experience and current availability.
func ScoreServiceMatch(distanceKm float64, rep *domain.Reputation, available bool) float64 {
	return WeightedScore(serviceMatchCriteria, ServiceMatchInput{
		DistanceKm: distanceKm,
		Reputation: rep,
		Available:  available,
	})
}
