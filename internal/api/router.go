package api

import (
	"net/http"

	"route-match-service/internal/api/handlers"
	"route-match-service/internal/ports"
	"route-match-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	routes ports.RouteRepository,
	announcements ports.AnnouncementRepository,
	index ports.CandidateIndex,
	sink ports.SuggestionSink,
	notifier ports.Notifier,
	cfg services.MatchConfig,
) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{
		Routes:        routes,
		Announcements: announcements,
		Index:         index,
		Sink:          sink,
		Notifier:      notifier,
		Config:        cfg,
	}
	matchHandler := &handlers.MatchHandler{
		Routes:        routes,
		Announcements: announcements,
		Index:         index,
		Sink:          sink,
		Config:        cfg,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/routes", routeHandler.HandleRoutes)
	mux.HandleFunc("/routes/publish", routeHandler.Publish)
	mux.HandleFunc("/matches/search", matchHandler.Search)
	mux.HandleFunc("/matches/accept", matchHandler.Accept)

	return loggingMiddleware(mux)
}
