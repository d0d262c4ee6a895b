package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"route-match-service/internal/domain"
	"route-match-service/internal/ports"
)

// In-memory port fakes for pipeline tests.

type fakeRoutes struct {
	routes map[string]*domain.PlannedRoute
}

func (f *fakeRoutes) GetRoute(_ context.Context, id string) (*domain.PlannedRoute, error) {
	r, ok := f.routes[id]
	if !ok {
		return nil, domain.ErrRouteNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRoutes) ListByDeliverer(_ context.Context, delivererID string, statuses []domain.RouteStatus) ([]*domain.PlannedRoute, error) {
	var out []*domain.PlannedRoute
	for _, r := range f.routes {
		if r.DelivererID != delivererID {
			continue
		}
		if len(statuses) > 0 {
			found := false
			for _, s := range statuses {
				if r.Status == s {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRoutes) SearchPublished(_ context.Context, q ports.RouteSearchQuery) ([]*domain.PlannedRoute, error) {
	var out []*domain.PlannedRoute
	for _, r := range f.routes {
		if r.Status != domain.RouteStatusPublished || r.AvailableCapacityUnits < 1 {
			continue
		}
		if r.DepartureTime.Before(q.DepartureFrom) || r.DepartureTime.After(q.DepartureTo) {
			continue
		}
		if r.Origin.Lat < q.MinLat || r.Origin.Lat > q.MaxLat ||
			r.Origin.Lon < q.MinLon || r.Origin.Lon > q.MaxLon {
			continue
		}
		out = append(out, r)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRoutes) CreateRoute(_ context.Context, r *domain.PlannedRoute) error {
	f.routes[r.ID] = r
	return nil
}

func (f *fakeRoutes) UpdateStatus(_ context.Context, id string, from, to domain.RouteStatus) (bool, error) {
	r, ok := f.routes[id]
	if !ok {
		return false, domain.ErrRouteNotFound
	}
	if r.Status != from {
		return false, nil
	}
	r.Status = to
	return true, nil
}

func (f *fakeRoutes) ConsumeCapacity(_ context.Context, id string, units int) (int, error) {
	r, ok := f.routes[id]
	if !ok {
		return 0, domain.ErrRouteNotFound
	}
	consumed, err := r.Consume(units)
	if err != nil {
		return 0, err
	}
	f.routes[id] = &consumed
	return consumed.AvailableCapacityUnits, nil
}

type fakeAnnouncements struct {
	open []*domain.Announcement
}

func (f *fakeAnnouncements) GetAnnouncement(_ context.Context, id string) (*domain.Announcement, error) {
	for _, a := range f.open {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, domain.ErrAnnouncementNotFound
}

func (f *fakeAnnouncements) ListOpen(_ context.Context, limit int) ([]*domain.Announcement, error) {
	if limit > 0 && len(f.open) > limit {
		return f.open[:limit], nil
	}
	return f.open, nil
}

func (f *fakeAnnouncements) ListByIDs(ctx context.Context, ids []string) ([]*domain.Announcement, error) {
	var out []*domain.Announcement
	for _, id := range ids {
		if a, err := f.GetAnnouncement(ctx, id); err == nil {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeIndex struct {
	ids     []string
	err     error
	added   []string
	removed []string
}

func (f *fakeIndex) Add(_ context.Context, id string, _ domain.Coordinates) error {
	f.added = append(f.added, id)
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, id string) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeIndex) Nearby(context.Context, domain.Coordinates, float64) ([]string, error) {
	return f.ids, f.err
}

type fakeSink struct {
	saved    []domain.MatchSuggestion
	accepted [][2]string
}

func (f *fakeSink) SaveSuggestions(_ context.Context, suggestions []domain.MatchSuggestion) error {
	f.saved = append(f.saved, suggestions...)
	return nil
}

func (f *fakeSink) MarkAccepted(_ context.Context, routeID, candidateID string) error {
	for _, s := range f.saved {
		if s.RouteID == routeID && s.CandidateID == candidateID {
			f.accepted = append(f.accepted, [2]string{routeID, candidateID})
			return nil
		}
	}
	return domain.ErrSuggestionNotFound
}

func (f *fakeSink) ListByRoute(_ context.Context, routeID string) ([]domain.MatchSuggestion, error) {
	var out []domain.MatchSuggestion
	for _, s := range f.saved {
		if s.RouteID == routeID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	delivererCalls []int
	clientCalls    []string
}

func (f *fakeNotifier) NotifyDeliverer(_ context.Context, _, _ string, matchCount int) error {
	f.delivererCalls = append(f.delivererCalls, matchCount)
	return nil
}

func (f *fakeNotifier) NotifyClient(_ context.Context, clientID, _ string, _ float64) error {
	f.clientCalls = append(f.clientCalls, clientID)
	return nil
}

func matchFixtures(rep *domain.Reputation) (*fakeRoutes, *fakeAnnouncements) {
	route := testRoute(rep)
	routes := &fakeRoutes{routes: map[string]*domain.PlannedRoute{route.ID: route}}

	depart := route.DepartureTime
	anns := &fakeAnnouncements{open: []*domain.Announcement{
		testAnnouncement("a-1", paris, lyon, depart),
		testAnnouncement("a-2", paris, lyon, depart.Add(3*time.Hour)),
		testAnnouncement("a-3", paris, lyon, depart.Add(10*time.Hour)), // outside window
	}}
	return routes, anns
}

func TestMatchRoute(t *testing.T) {
	routes, anns := matchFixtures(nil)
	sink := &fakeSink{}
	notifier := &fakeNotifier{}

	summary, err := MatchRoute(context.Background(), "r-1", routes, anns, nil, sink, notifier, DefaultMatchConfig())
	if err != nil {
		t.Fatalf("MatchRoute: %v", err)
	}

	if summary.Analyzed != 3 || summary.Compatible != 2 || summary.Suggested != 2 {
		t.Errorf("summary analyzed/compatible/suggested = %d/%d/%d, want 3/2/2",
			summary.Analyzed, summary.Compatible, summary.Suggested)
	}
	if len(sink.saved) != 2 {
		t.Fatalf("sink holds %d suggestions, want 2", len(sink.saved))
	}
	if sink.saved[0].CandidateID != "a-1" {
		t.Errorf("top suggestion candidate = %s, want a-1 (best timing)", sink.saved[0].CandidateID)
	}
	if summary.TopScore != sink.saved[0].CompatibilityScore {
		t.Errorf("TopScore = %v, want %v", summary.TopScore, sink.saved[0].CompatibilityScore)
	}

	if len(notifier.delivererCalls) != 1 || notifier.delivererCalls[0] != 2 {
		t.Errorf("deliverer notifications = %v, want one call with count 2", notifier.delivererCalls)
	}
	if len(notifier.clientCalls) != 2 {
		t.Errorf("client notifications = %v, want 2", notifier.clientCalls)
	}
}

func TestMatchRouteRejectsNonMatchableRoute(t *testing.T) {
	routes, anns := matchFixtures(nil)
	routes.routes["r-1"].Status = domain.RouteStatusDraft

	_, err := MatchRoute(context.Background(), "r-1", routes, anns, nil, &fakeSink{}, nil, DefaultMatchConfig())
	if !errors.Is(err, domain.ErrRouteNotFound) {
		t.Fatalf("err = %v, want ErrRouteNotFound for a draft route", err)
	}
}

func TestMatchRouteUnknownRoute(t *testing.T) {
	routes, anns := matchFixtures(nil)

	_, err := MatchRoute(context.Background(), "r-missing", routes, anns, nil, &fakeSink{}, nil, DefaultMatchConfig())
	if !errors.Is(err, domain.ErrRouteNotFound) {
		t.Fatalf("err = %v, want ErrRouteNotFound", err)
	}
}

func TestMatchRouteSkipsInvalidCandidate(t *testing.T) {
	routes, anns := matchFixtures(nil)
	anns.open[1].ClientID = "" // fails validation, must not abort the run

	summary, err := MatchRoute(context.Background(), "r-1", routes, anns, nil, &fakeSink{}, nil, DefaultMatchConfig())
	if err != nil {
		t.Fatalf("MatchRoute: %v", err)
	}
	if summary.Analyzed != 3 || summary.Compatible != 1 {
		t.Errorf("analyzed/compatible = %d/%d, want 3/1 after skipping the invalid candidate",
			summary.Analyzed, summary.Compatible)
	}
}

func TestMatchRouteEmptyPoolIsNotAnError(t *testing.T) {
	routes, _ := matchFixtures(nil)
	sink := &fakeSink{}

	summary, err := MatchRoute(context.Background(), "r-1", routes, &fakeAnnouncements{}, nil, sink, nil, DefaultMatchConfig())
	if err != nil {
		t.Fatalf("MatchRoute: %v", err)
	}
	if summary.Suggested != 0 {
		t.Errorf("suggested = %d, want 0", summary.Suggested)
	}
	if len(sink.saved) != 0 {
		t.Errorf("sink received %d suggestions on an empty run, want 0", len(sink.saved))
	}
}

func TestMatchRouteAbortsOnCancelledContext(t *testing.T) {
	routes, anns := matchFixtures(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MatchRoute(ctx, "r-1", routes, anns, nil, &fakeSink{}, nil, DefaultMatchConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestMatchRouteUsesIndexNarrowing(t *testing.T) {
	routes, anns := matchFixtures(nil)
	index := &fakeIndex{ids: []string{"a-2"}}

	summary, err := MatchRoute(context.Background(), "r-1", routes, anns, index, &fakeSink{}, nil, DefaultMatchConfig())
	if err != nil {
		t.Fatalf("MatchRoute: %v", err)
	}
	if summary.Analyzed != 1 {
		t.Errorf("analyzed = %d, want 1 after geo narrowing", summary.Analyzed)
	}
}

func TestMatchRouteFallsBackWhenIndexFails(t *testing.T) {
	routes, anns := matchFixtures(nil)
	index := &fakeIndex{err: errors.New("redis down")}

	summary, err := MatchRoute(context.Background(), "r-1", routes, anns, index, &fakeSink{}, nil, DefaultMatchConfig())
	if err != nil {
		t.Fatalf("MatchRoute should survive a degraded index: %v", err)
	}
	if summary.Analyzed != 3 {
		t.Errorf("analyzed = %d, want 3 via the store fallback", summary.Analyzed)
	}
}

func TestMatchRouteFallsBackWhenIndexEmpty(t *testing.T) {
	routes, anns := matchFixtures(nil)
	// A healthy index with no entries must not be read as an empty pool;
	// the store still holds open announcements.
	index := &fakeIndex{}

	summary, err := MatchRoute(context.Background(), "r-1", routes, anns, index, &fakeSink{}, nil, DefaultMatchConfig())
	if err != nil {
		t.Fatalf("MatchRoute: %v", err)
	}
	if summary.Analyzed != 3 || summary.Compatible != 2 {
		t.Errorf("analyzed/compatible = %d/%d, want 3/2 via the store fallback",
			summary.Analyzed, summary.Compatible)
	}
}

func TestSyncCandidateIndex(t *testing.T) {
	_, anns := matchFixtures(nil)
	anns.open = append(anns.open, &domain.Announcement{
		ID: "a-blind", ClientID: "c-4",
		RequestedPickupTime: anns.open[0].RequestedPickupTime,
	})
	index := &fakeIndex{}

	added, err := SyncCandidateIndex(context.Background(), anns, index, 50)
	if err != nil {
		t.Fatalf("SyncCandidateIndex: %v", err)
	}
	if added != 3 {
		t.Errorf("added = %d, want 3 (announcement without coordinates stays out)", added)
	}
	if len(index.added) != 3 {
		t.Fatalf("index holds %d entries, want 3: %v", len(index.added), index.added)
	}
	for _, id := range index.added {
		if id == "a-blind" {
			t.Errorf("non-geolocated announcement %s was indexed", id)
		}
	}
}

func TestSyncCandidateIndexNilIndex(t *testing.T) {
	_, anns := matchFixtures(nil)

	added, err := SyncCandidateIndex(context.Background(), anns, nil, 50)
	if err != nil || added != 0 {
		t.Fatalf("SyncCandidateIndex(nil index) = (%d, %v), want (0, nil)", added, err)
	}
}

func TestAcceptSuggestion(t *testing.T) {
	routes, anns := matchFixtures(nil)
	anns.open[0].WeightKg = 12 // 3 capacity units
	sink := &fakeSink{saved: []domain.MatchSuggestion{{RouteID: "r-1", CandidateID: "a-1"}}}
	index := &fakeIndex{}

	outcome, err := AcceptSuggestion(context.Background(), "r-1", "a-1", routes, anns, index, sink)
	if err != nil {
		t.Fatalf("AcceptSuggestion: %v", err)
	}
	if outcome.UnitsConsumed != 3 || outcome.RemainingCapacity != 7 {
		t.Errorf("outcome = %+v, want 3 units consumed, 7 remaining", outcome)
	}
	if routes.routes["r-1"].AvailableCapacityUnits != 7 {
		t.Errorf("stored capacity = %d, want 7", routes.routes["r-1"].AvailableCapacityUnits)
	}
	if len(sink.accepted) != 1 || sink.accepted[0] != [2]string{"r-1", "a-1"} {
		t.Errorf("sink accepted = %v, want [{r-1 a-1}]", sink.accepted)
	}
	if len(index.removed) != 1 || index.removed[0] != "a-1" {
		t.Errorf("index removed = %v, want [a-1] after acceptance", index.removed)
	}
}

func TestAcceptSuggestionWithoutStoredSuggestion(t *testing.T) {
	routes, anns := matchFixtures(nil)
	sink := &fakeSink{}

	// Direct acceptance with no prior matching run: capacity is still
	// consumed, the missing suggestion row is only logged.
	outcome, err := AcceptSuggestion(context.Background(), "r-1", "a-1", routes, anns, nil, sink)
	if err != nil {
		t.Fatalf("AcceptSuggestion: %v", err)
	}
	if outcome.UnitsConsumed != 1 {
		t.Errorf("units consumed = %d, want 1", outcome.UnitsConsumed)
	}
	if routes.routes["r-1"].AvailableCapacityUnits != 9 {
		t.Errorf("stored capacity = %d, want 9", routes.routes["r-1"].AvailableCapacityUnits)
	}
	if len(sink.accepted) != 0 {
		t.Errorf("sink accepted = %v, want none without a stored suggestion", sink.accepted)
	}
}

func TestAcceptSuggestionInsufficientCapacity(t *testing.T) {
	routes, anns := matchFixtures(nil)
	routes.routes["r-1"].AvailableCapacityUnits = 1
	anns.open[0].WeightKg = 12
	sink := &fakeSink{}

	_, err := AcceptSuggestion(context.Background(), "r-1", "a-1", routes, anns, nil, sink)
	var insufficient *domain.InsufficientCapacityError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientCapacityError", err)
	}
	if insufficient.Required != 3 || insufficient.Available != 1 {
		t.Errorf("error reports required=%d available=%d, want 3 and 1",
			insufficient.Required, insufficient.Available)
	}
	if routes.routes["r-1"].AvailableCapacityUnits != 1 {
		t.Errorf("capacity changed on a failed acceptance: %d", routes.routes["r-1"].AvailableCapacityUnits)
	}
	if len(sink.accepted) != 0 {
		t.Errorf("sink marked accepted on a failed acceptance")
	}
}

func TestAcceptSuggestionRejectsTerminalRoute(t *testing.T) {
	routes, anns := matchFixtures(nil)
	routes.routes["r-1"].Status = domain.RouteStatusCompleted

	_, err := AcceptSuggestion(context.Background(), "r-1", "a-1", routes, anns, nil, &fakeSink{})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError for a completed route", err)
	}
}
