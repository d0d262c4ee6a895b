package ports

import (
	"context"

	"route-match-service/internal/domain"
)

// Port: the consumer of ranked match suggestions. The sink owns persistence
// and de-duplication; the engine emits and forgets.
type SuggestionSink interface {
	// Persist a matching run's suggestions. Re-suggesting an existing
	// (route, candidate) pair refreshes its score instead of duplicating.
	SaveSuggestions(ctx context.Context, suggestions []domain.MatchSuggestion) error

	// Mark a stored suggestion as accepted.
	MarkAccepted(ctx context.Context, routeID, candidateID string) error

	// Retrieve stored suggestions for a route, best score first.
	ListByRoute(ctx context.Context, routeID string) ([]domain.MatchSuggestion, error)
}
