package services

import (
	"slices"
	"time"

	"route-match-service/internal/domain"
)

// Rank scores each candidate against the route and returns the top
// suggestions, best first. Order: compatibility score descending, ties
// broken by smaller detour, then candidate id for determinism. The slice
// is truncated to maxSuggestions.
//
// Candidates are expected to be pre-filtered; non-geolocated entries are
// skipped defensively rather than scored.
func Rank(route *domain.PlannedRoute, candidates []*domain.Announcement, maxSuggestions int, now time.Time, cfg MatchConfig) []domain.MatchSuggestion {
	suggestions := make([]domain.MatchSuggestion, 0, len(candidates))

	for _, c := range candidates {
		if !c.Geolocated() {
			continue
		}
		suggestions = append(suggestions, BuildSuggestion(route, c, now, cfg))
	}

	slices.SortFunc(suggestions, func(a, b domain.MatchSuggestion) int {
		if a.CompatibilityScore > b.CompatibilityScore {
			return -1
		}
		if a.CompatibilityScore < b.CompatibilityScore {
			return 1
		}
		if a.DetourKm < b.DetourKm {
			return -1
		}
		if a.DetourKm > b.DetourKm {
			return 1
		}
		// Stable tie-breaker keeps repeated runs deterministic.
		if a.CandidateID < b.CandidateID {
			return -1
		}
		if a.CandidateID > b.CandidateID {
			return 1
		}
		return 0
	})

	if maxSuggestions > 0 && len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	return suggestions
}

// BuildSuggestion assembles one scored suggestion record from a route and a
// geolocated candidate.
func BuildSuggestion(route *domain.PlannedRoute, c *domain.Announcement, now time.Time, cfg MatchConfig) domain.MatchSuggestion {
	detour := RouteDetour(route, c)

	return domain.MatchSuggestion{
		RouteID:                route.ID,
		CandidateID:            c.ID,
		CompatibilityScore:     ScoreRouteMatch(route, c.RequestedPickupTime, detour, cfg),
		DetourKm:               detour.DetourKm,
		EstimatedDeliveryTime:  EstimatedDeliveryTime(route, detour, cfg),
		EstimatedFuelCostDelta: EstimatedFuelCostDelta(detour.DetourKm, cfg),
		EstimatedPrice:         EstimatedPrice(detour),
		CapacityUnitsRequired:  CapacityRequired(c),
		Status:                 domain.SuggestionStatusSuggested,
		CreatedAt:              now,
		ExpiresAt:              now.Add(domain.SuggestionTTL),
	}
}
