package domain

import (
	"fmt"
	"time"
)

type RouteStatus string

const (
	RouteStatusDraft      RouteStatus = "DRAFT"
	RouteStatusPublished  RouteStatus = "PUBLISHED"
	RouteStatusInProgress RouteStatus = "IN_PROGRESS"
	RouteStatusCompleted  RouteStatus = "COMPLETED"
	RouteStatusCancelled  RouteStatus = "CANCELLED"
)

// Only published or in-progress routes participate in matching.
func (s RouteStatus) Matchable() bool {
	return s == RouteStatusPublished || s == RouteStatusInProgress
}

// Terminal states stop all matching and capacity mutation.
func (s RouteStatus) Terminal() bool {
	return s == RouteStatusCompleted || s == RouteStatusCancelled
}

// allowedTransitions represents the route lifecycle as code.
var allowedTransitions = map[RouteStatus][]RouteStatus{
	RouteStatusDraft:      {RouteStatusPublished, RouteStatusCancelled},
	RouteStatusPublished:  {RouteStatusDraft, RouteStatusInProgress, RouteStatusCancelled},
	RouteStatusInProgress: {RouteStatusCompleted, RouteStatusCancelled},
}

func CanTransition(from, to RouteStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Reputation is a read-only snapshot of the deliverer's profile stats.
// A nil snapshot on a route means the deliverer has no history yet and
// contributes zero to reputation-based scoring.
type Reputation struct {
	AverageRating     float64 // 0..5
	TotalDeliveries   int
	OnTimeRatePercent float64 // 0..100
}

// PlannedRoute is a deliverer's offered trip: a direct origin->destination
// leg with a schedule and a remaining carrying capacity in abstract units.
type PlannedRoute struct {
	ID                     string
	DelivererID            string
	Origin                 Coordinates
	Destination            Coordinates
	DepartureTime          time.Time
	ArrivalTime            time.Time
	AvailableCapacityUnits int
	Status                 RouteStatus
	Reputation             *Reputation
}

// Validate rejects malformed routes before any matching computation.
func (r *PlannedRoute) Validate() error {
	if r.DelivererID == "" {
		return &ValidationError{Field: "delivererId", Reason: "must be non-empty"}
	}
	if !r.Origin.Valid() {
		return &ValidationError{Field: "origin", Reason: "coordinates out of range"}
	}
	if !r.Destination.Valid() {
		return &ValidationError{Field: "destination", Reason: "coordinates out of range"}
	}
	if !r.DepartureTime.Before(r.ArrivalTime) {
		return &ValidationError{Field: "departureTime", Reason: "must be before arrivalTime"}
	}
	if r.AvailableCapacityUnits < 0 {
		return &ValidationError{Field: "availableCapacityUnits", Reason: "must not be negative"}
	}
	return nil
}

// Consume returns a copy of the route with units subtracted from its
// available capacity. The authoritative decrement lives in the route store;
// this pure form backs the in-memory ledger and tests.
func (r PlannedRoute) Consume(units int) (PlannedRoute, error) {
	if units < 1 {
		return r, &ValidationError{Field: "units", Reason: fmt.Sprintf("must be >= 1, got %d", units)}
	}
	if units > r.AvailableCapacityUnits {
		return r, &InsufficientCapacityError{
			RouteID:   r.ID,
			Required:  units,
			Available: r.AvailableCapacityUnits,
		}
	}
	r.AvailableCapacityUnits -= units
	return r, nil
}
