package ports

import (
	"context"
	"time"

	"route-match-service/internal/domain"
)

// RouteSearchQuery narrows published-route lookups to a departure window
// and a coarse bounding box around the requested pickup point. The box is a
// performance pre-filter only; precise compatibility is decided downstream.
type RouteSearchQuery struct {
	DepartureFrom time.Time
	DepartureTo   time.Time
	MinLat        float64
	MaxLat        float64
	MinLon        float64
	MaxLon        float64
	Limit         int
}

// Port: a boundary for reading and mutating PlannedRoute records.
type RouteRepository interface {
	// Retrieve a single route by id. Returns domain.ErrRouteNotFound when absent.
	GetRoute(ctx context.Context, id string) (*domain.PlannedRoute, error)

	// Retrieve a deliverer's routes, optionally narrowed to the given statuses.
	ListByDeliverer(ctx context.Context, delivererID string, statuses []domain.RouteStatus) ([]*domain.PlannedRoute, error)

	// Retrieve published routes with remaining capacity inside the query window and box.
	SearchPublished(ctx context.Context, q RouteSearchQuery) ([]*domain.PlannedRoute, error)

	// Persist a new route.
	CreateRoute(ctx context.Context, r *domain.PlannedRoute) error

	// Compare-and-set status transition. Returns false when the stored
	// status no longer matches from (lost race, no update applied).
	UpdateStatus(ctx context.Context, id string, from, to domain.RouteStatus) (bool, error)

	// Atomically decrement available capacity by units. Returns the
	// remaining capacity, or *domain.InsufficientCapacityError when the
	// route has fewer units left than requested.
	ConsumeCapacity(ctx context.Context, id string, units int) (int, error)
}
