package domain

import (
	"errors"
	"testing"
	"time"
)

func TestPlannedRouteValidate(t *testing.T) {
	depart := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	valid := PlannedRoute{
		DelivererID:            "d-1",
		Origin:                 Coordinates{Lat: 48.8566, Lon: 2.3522},
		Destination:            Coordinates{Lat: 45.7640, Lon: 4.8357},
		DepartureTime:          depart,
		ArrivalTime:            depart.Add(5 * time.Hour),
		AvailableCapacityUnits: 10,
		Status:                 RouteStatusDraft,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(r *PlannedRoute)
		field  string
	}{
		{
			name:   "arrival before departure",
			mutate: func(r *PlannedRoute) { r.ArrivalTime = r.DepartureTime.Add(-time.Hour) },
			field:  "departureTime",
		},
		{
			name:   "arrival equals departure",
			mutate: func(r *PlannedRoute) { r.ArrivalTime = r.DepartureTime },
			field:  "departureTime",
		},
		{
			name:   "latitude out of range",
			mutate: func(r *PlannedRoute) { r.Origin.Lat = 91 },
			field:  "origin",
		},
		{
			name:   "longitude out of range",
			mutate: func(r *PlannedRoute) { r.Destination.Lon = -181 },
			field:  "destination",
		},
		{
			name:   "negative capacity",
			mutate: func(r *PlannedRoute) { r.AvailableCapacityUnits = -1 },
			field:  "availableCapacityUnits",
		},
		{
			name:   "missing deliverer",
			mutate: func(r *PlannedRoute) { r.DelivererID = "" },
			field:  "delivererId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)

			err := r.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestPlannedRouteConsume(t *testing.T) {
	route := PlannedRoute{ID: "r-1", AvailableCapacityUnits: 5}

	updated, err := route.Consume(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.AvailableCapacityUnits != 2 {
		t.Errorf("capacity = %d, want 2", updated.AvailableCapacityUnits)
	}
	if route.AvailableCapacityUnits != 5 {
		t.Errorf("original route mutated: capacity = %d, want 5", route.AvailableCapacityUnits)
	}
}

func TestPlannedRouteConsumeInsufficient(t *testing.T) {
	route := PlannedRoute{ID: "r-1", AvailableCapacityUnits: 2}

	same, err := route.Consume(3)
	if err == nil {
		t.Fatal("expected insufficient capacity error, got nil")
	}

	var capErr *InsufficientCapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected *InsufficientCapacityError, got %T", err)
	}
	if capErr.Required != 3 || capErr.Available != 2 {
		t.Errorf("error = %+v, want required=3 available=2", capErr)
	}
	if same.AvailableCapacityUnits != 2 {
		t.Errorf("route changed on failed consume: capacity = %d, want 2", same.AvailableCapacityUnits)
	}
}

func TestPlannedRouteConsumeRejectsZeroUnits(t *testing.T) {
	route := PlannedRoute{ID: "r-1", AvailableCapacityUnits: 2}

	if _, err := route.Consume(0); err == nil {
		t.Fatal("expected error for zero units, got nil")
	}
}

func TestRouteStatusMatchable(t *testing.T) {
	tests := []struct {
		status RouteStatus
		want   bool
	}{
		{RouteStatusDraft, false},
		{RouteStatusPublished, true},
		{RouteStatusInProgress, true},
		{RouteStatusCompleted, false},
		{RouteStatusCancelled, false},
	}

	for _, tt := range tests {
		if got := tt.status.Matchable(); got != tt.want {
			t.Errorf("%s Matchable() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to RouteStatus
		want     bool
	}{
		{RouteStatusDraft, RouteStatusPublished, true},
		{RouteStatusPublished, RouteStatusDraft, true},
		{RouteStatusPublished, RouteStatusInProgress, true},
		{RouteStatusInProgress, RouteStatusCompleted, true},
		{RouteStatusInProgress, RouteStatusCancelled, true},
		{RouteStatusDraft, RouteStatusInProgress, false},
		{RouteStatusCompleted, RouteStatusPublished, false},
		{RouteStatusCancelled, RouteStatusDraft, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
