package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"route-match-service/internal/domain"
	"route-match-service/internal/platform/obs"
	"route-match-service/internal/ports"
	"time"
)

// searchBoxDegrees is the half-side of the coarse pre-filter box around the
// requested pickup, roughly 55 km of latitude.
const searchBoxDegrees = 0.5

// RouteSearchRequest is a client-side lookup: given a desired delivery,
// find published routes that could carry it.
type RouteSearchRequest struct {
	Pickup        domain.Coordinates
	Dropoff       domain.Coordinates
	RequestedTime time.Time
	MaxDetourKm   float64 // 0 = use configured default
	Limit         int     // 0 = 10
}

// ScoredRoute pairs a route with its fit for the requested delivery.
type ScoredRoute struct {
	Route                   *domain.PlannedRoute
	CompatibilityScore      float64
	DetourKm                float64
	EstimatedPrice          float64
	EstimatedDurationMinute int
}

// RouteSearchResult carries the ranked routes plus run metadata for
// display.
type RouteSearchResult struct {
	Routes       []ScoredRoute
	Analyzed     int
	Compatible   int
	AverageScore float64
}

// SearchRoutes finds, scores and ranks published routes able to service a
// requested delivery. Routes beyond the detour cap or under the minimum
// score are dropped; the rest are returned best first, truncated to the
// request limit.
func SearchRoutes(ctx context.Context, req RouteSearchRequest, routes ports.RouteRepository, cfg MatchConfig) (_ *RouteSearchResult, err error) {
	defer obs.Time(ctx, "match.search")(&err)

	if !req.Pickup.Valid() {
		return nil, &domain.ValidationError{Field: "pickup", Reason: "coordinates out of range"}
	}
	if !req.Dropoff.Valid() {
		return nil, &domain.ValidationError{Field: "dropoff", Reason: "coordinates out of range"}
	}

	maxDetour := req.MaxDetourKm
	if maxDetour <= 0 {
		maxDetour = cfg.MaxDetourKm
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	query := ports.RouteSearchQuery{
		DepartureFrom: req.RequestedTime.Add(-cfg.PickupWindowBefore),
		DepartureTo:   req.RequestedTime.Add(cfg.PickupWindowAfter),
		MinLat:        req.Pickup.Lat - searchBoxDegrees,
		MaxLat:        req.Pickup.Lat + searchBoxDegrees,
		MinLon:        req.Pickup.Lon - searchBoxDegrees,
		MaxLon:        req.Pickup.Lon + searchBoxDegrees,
	}

	published, err := routes.SearchPublished(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search routes: query published routes: %w", err)
	}

	searchCfg := cfg
	searchCfg.MaxDetourKm = maxDetour

	result := &RouteSearchResult{Analyzed: len(published)}
	scored := make([]ScoredRoute, 0, len(published))

	for _, r := range published {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search routes: aborted: %w", err)
		}

		detour := AnalyzeDetour(r.Origin, r.Destination, req.Pickup, req.Dropoff)
		if detour.DetourKm > maxDetour {
			continue
		}

		score := ScoreRouteMatch(r, req.RequestedTime, detour, searchCfg)
		if score < cfg.MinScore {
			continue
		}

		durationMin := 0
		if cfg.AverageSpeedKmh > 0 {
			durationMin = int(math.Round(detour.NewDistanceKm/cfg.AverageSpeedKmh*60)) + cfg.StopTimeMinutes
		}

		scored = append(scored, ScoredRoute{
			Route:                   r,
			CompatibilityScore:      score,
			DetourKm:                detour.DetourKm,
			EstimatedPrice:          EstimatedPrice(detour),
			EstimatedDurationMinute: durationMin,
		})
	}

	result.Compatible = len(scored)

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].CompatibilityScore != scored[j].CompatibilityScore {
			return scored[i].CompatibilityScore > scored[j].CompatibilityScore
		}
		return scored[i].DetourKm < scored[j].DetourKm
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	result.Routes = scored

	if len(scored) > 0 {
		sum := 0.0
		for _, s := range scored {
			sum += s.CompatibilityScore
		}
		result.AverageScore = math.Round(sum/float64(len(scored))*10) / 10
	}

	return result, nil
}
