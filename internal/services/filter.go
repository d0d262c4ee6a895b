package services

import (
	"route-match-service/internal/domain"
)

// FilterCompatible selects the announcements a route could plausibly
// service: requested pickup inside the departure window and detour within
// the configured cap. Announcements without coordinates are skipped, not
// errors. Output order is unspecified; ranking happens downstream.
func FilterCompatible(route *domain.PlannedRoute, candidates []*domain.Announcement, cfg MatchConfig) []*domain.Announcement {
	compatible := make([]*domain.Announcement, 0, len(candidates))

	for _, c := range candidates {
		if !c.Geolocated() {
			continue
		}
		if !pickupTimeCompatible(route, c, cfg) {
			continue
		}
		if RouteDetour(route, c).DetourKm > cfg.MaxDetourKm {
			continue
		}
		compatible = append(compatible, c)
	}

	return compatible
}

// pickupTimeCompatible checks the asymmetric departure window
// [departure - before, departure + after].
func pickupTimeCompatible(route *domain.PlannedRoute, c *domain.Announcement, cfg MatchConfig) bool {
	earliest := route.DepartureTime.Add(-cfg.PickupWindowBefore)
	latest := route.DepartureTime.Add(cfg.PickupWindowAfter)

	t := c.RequestedPickupTime
	return !t.Before(earliest) && !t.After(latest)
}
