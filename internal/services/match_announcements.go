package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"route-match-service/internal/domain"
	"route-match-service/internal/platform/obs"
	"route-match-service/internal/ports"
)

// MatchRunSummary reports what one matching run analyzed and produced.
type MatchRunSummary struct {
	RouteID     string
	Analyzed    int
	Compatible  int
	Suggested   int
	TopScore    float64
	Suggestions []domain.MatchSuggestion
}

// MatchRoute runs the full filter -> score -> rank pipeline for one route
// and hands the result to the suggestion sink and notifier.
//
// The run is advisory: it may read a stale capacity snapshot, and it is
// safely abortable between candidates because nothing before the sink has
// side effects. A candidate that fails validation is logged and skipped;
// it never aborts the run. An empty suggestion list is a normal outcome.
func MatchRoute(
	ctx context.Context,
	routeID string,
	routes ports.RouteRepository,
	announcements ports.AnnouncementRepository,
	index ports.CandidateIndex,
	sink ports.SuggestionSink,
	notifier ports.Notifier,
	cfg MatchConfig,
) (_ *MatchRunSummary, err error) {
	defer obs.Time(ctx, "match.run")(&err)

	route, err := routes.GetRoute(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("match route: get route %q: %w", routeID, err)
	}
	if !route.Status.Matchable() {
		return nil, fmt.Errorf("match route: route %q has status %s: %w",
			routeID, route.Status, domain.ErrRouteNotFound)
	}
	if err := route.Validate(); err != nil {
		return nil, fmt.Errorf("match route: route %q: %w", routeID, err)
	}

	pool, err := candidatePool(ctx, route, announcements, index, cfg)
	if err != nil {
		return nil, fmt.Errorf("match route: load candidates: %w", err)
	}

	summary := &MatchRunSummary{RouteID: route.ID, Analyzed: len(pool)}

	// Per-candidate failures are isolated: skip and keep scoring survivors.
	sound := make([]*domain.Announcement, 0, len(pool))
	for _, c := range pool {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("match route: aborted: %w", err)
		}
		if err := c.Validate(); err != nil {
			log.Printf("match route=%s skip announcement=%s err=%v", route.ID, c.ID, err)
			continue
		}
		sound = append(sound, c)
	}

	compatible := FilterCompatible(route, sound, cfg)
	summary.Compatible = len(compatible)

	suggestions := Rank(route, compatible, cfg.MaxSuggestions, time.Now().UTC(), cfg)
	summary.Suggested = len(suggestions)
	summary.Suggestions = suggestions
	if len(suggestions) > 0 {
		summary.TopScore = suggestions[0].CompatibilityScore
	}

	if len(suggestions) == 0 {
		return summary, nil
	}

	if err := sink.SaveSuggestions(ctx, suggestions); err != nil {
		return nil, fmt.Errorf("match route: save suggestions: %w", err)
	}

	notifyMatches(ctx, route, suggestions, pool, notifier, cfg)

	return summary, nil
}

// candidatePool loads the announcements a run will analyze. With a geo
// index available, the pool is narrowed to pickups reachable within the
// detour budget; the triangle inequality bounds them inside
// originalDistance + maxDetour of the origin.
func candidatePool(
	ctx context.Context,
	route *domain.PlannedRoute,
	announcements ports.AnnouncementRepository,
	index ports.CandidateIndex,
	cfg MatchConfig,
) ([]*domain.Announcement, error) {
	if index == nil {
		return announcements.ListOpen(ctx, cfg.CandidatePoolLimit)
	}

	radius := DistanceKm(route.Origin, route.Destination) + cfg.MaxDetourKm
	ids, err := index.Nearby(ctx, route.Origin, radius)
	if err != nil {
		// A degraded index must not kill matching; fall back to the store.
		log.Printf("match route=%s candidate index unavailable err=%v", route.ID, err)
		return announcements.ListOpen(ctx, cfg.CandidatePoolLimit)
	}
	if len(ids) == 0 {
		// The index is a pre-filter, not the record of open announcements.
		// An empty reply is indistinguishable from an unpopulated index, so
		// the run falls back to the store instead of going dark.
		log.Printf("match route=%s candidate index empty, falling back to store", route.ID)
		return announcements.ListOpen(ctx, cfg.CandidatePoolLimit)
	}
	if len(ids) > cfg.CandidatePoolLimit && cfg.CandidatePoolLimit > 0 {
		ids = ids[:cfg.CandidatePoolLimit]
	}

	return announcements.ListByIDs(ctx, ids)
}

// notifyMatches emits notification intents: one to the deliverer with the
// match count, one per top-fanout client. Notification failures are logged
// and never fail the run.
func notifyMatches(
	ctx context.Context,
	route *domain.PlannedRoute,
	suggestions []domain.MatchSuggestion,
	pool []*domain.Announcement,
	notifier ports.Notifier,
	cfg MatchConfig,
) {
	if notifier == nil {
		return
	}

	if err := notifier.NotifyDeliverer(ctx, route.DelivererID, route.ID, len(suggestions)); err != nil {
		log.Printf("notify deliverer=%s route=%s err=%v", route.DelivererID, route.ID, err)
	}

	clientByAnnouncement := make(map[string]string, len(pool))
	for _, c := range pool {
		clientByAnnouncement[c.ID] = c.ClientID
	}

	fanout := suggestions
	if cfg.NotifyFanout > 0 && len(fanout) > cfg.NotifyFanout {
		fanout = fanout[:cfg.NotifyFanout]
	}
	for _, s := range fanout {
		clientID, ok := clientByAnnouncement[s.CandidateID]
		if !ok {
			continue
		}
		if err := notifier.NotifyClient(ctx, clientID, s.RouteID, s.CompatibilityScore); err != nil {
			log.Printf("notify client=%s route=%s err=%v", clientID, s.RouteID, err)
		}
	}
}

// AcceptOutcome reports a successful acceptance: units consumed and the
// capacity the route has left.
type AcceptOutcome struct {
	UnitsConsumed     int
	RemainingCapacity int
}

// AcceptSuggestion consumes route capacity for an announcement and marks
// the stored suggestion accepted. The decrement is a single atomic
// check-and-decrement in the route store; on insufficient capacity the
// typed error propagates and nothing changes. An accepted announcement is
// dropped from the candidate index so later runs stop analyzing it.
func AcceptSuggestion(
	ctx context.Context,
	routeID, announcementID string,
	routes ports.RouteRepository,
	announcements ports.AnnouncementRepository,
	index ports.CandidateIndex,
	sink ports.SuggestionSink,
) (_ *AcceptOutcome, err error) {
	defer obs.Time(ctx, "match.accept")(&err)

	route, err := routes.GetRoute(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("accept suggestion: get route %q: %w", routeID, err)
	}
	if !route.Status.Matchable() {
		return nil, &domain.ValidationError{
			Field:  "routeId",
			Reason: fmt.Sprintf("route status %s does not accept deliveries", route.Status),
		}
	}

	ann, err := announcements.GetAnnouncement(ctx, announcementID)
	if err != nil {
		return nil, fmt.Errorf("accept suggestion: get announcement %q: %w", announcementID, err)
	}
	if err := ann.Validate(); err != nil {
		return nil, fmt.Errorf("accept suggestion: announcement %q: %w", announcementID, err)
	}

	units := CapacityRequired(ann)
	remaining, err := routes.ConsumeCapacity(ctx, routeID, units)
	if err != nil {
		return nil, fmt.Errorf("accept suggestion: consume %d units on route %q: %w", units, routeID, err)
	}

	if err := sink.MarkAccepted(ctx, routeID, announcementID); err != nil {
		// Direct acceptance without a prior matching run has no stored
		// suggestion row; the capacity consumption above still stands.
		if errors.Is(err, domain.ErrSuggestionNotFound) {
			log.Printf("accept route=%s announcement=%s no stored suggestion to mark", routeID, announcementID)
		} else {
			return nil, fmt.Errorf("accept suggestion: mark accepted: %w", err)
		}
	}

	if index != nil {
		if err := index.Remove(ctx, announcementID); err != nil {
			log.Printf("accept route=%s announcement=%s index remove err=%v", routeID, announcementID, err)
		}
	}

	return &AcceptOutcome{UnitsConsumed: units, RemainingCapacity: remaining}, nil
}
