package domain

import (
	"errors"
	"fmt"
)

// ErrRouteNotFound is returned by route stores when no route matches the
// requested identifier.
var ErrRouteNotFound = errors.New("route not found")

// ErrAnnouncementNotFound is the announcement store's counterpart.
var ErrAnnouncementNotFound = errors.New("announcement not found")

// ErrSuggestionNotFound is returned by suggestion sinks when a mark
// targets a (route, announcement) pair that was never suggested.
var ErrSuggestionNotFound = errors.New("suggestion not found")

// ValidationError marks input rejected at the data-model boundary.
// It is surfaced to the caller and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// InsufficientCapacityError is returned when an acceptance would consume
// more capacity units than the route has left. The route is unchanged.
type InsufficientCapacityError struct {
	RouteID   string
	Required  int
	Available int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf(
		"insufficient capacity on route %s: required %d units, %d available",
		e.RouteID, e.Required, e.Available,
	)
}
