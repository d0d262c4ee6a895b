package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"route-match-service/internal/api/dto"
	"route-match-service/internal/domain"
	"route-match-service/internal/ports"
	"route-match-service/internal/services"
)

// MatchHandler exposes the client-facing matching surface: route search for
// a requested delivery and suggestion acceptance.
type MatchHandler struct {
	Routes        ports.RouteRepository
	Announcements ports.AnnouncementRepository
	Index         ports.CandidateIndex
	Sink          ports.SuggestionSink
	Config        services.MatchConfig
}

func (h *MatchHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SearchMatchesRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if req.RequestedTime.IsZero() {
		writeError(w, r, http.StatusBadRequest, "requested_time is required")
		return
	}

	result, err := services.SearchRoutes(r.Context(), services.RouteSearchRequest{
		Pickup:        domain.Coordinates{Lat: req.Pickup.Lat, Lon: req.Pickup.Lon},
		Dropoff:       domain.Coordinates{Lat: req.Dropoff.Lat, Lon: req.Dropoff.Lon},
		RequestedTime: req.RequestedTime,
		MaxDetourKm:   req.MaxDetourKm,
		Limit:         req.Limit,
	}, h.Routes, h.Config)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeError(w, r, http.StatusBadRequest, verr.Error())
			return
		}
		log.Printf("search matches failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.SearchMatchesResponse{
		Routes:       make([]dto.ScoredRouteResponse, 0, len(result.Routes)),
		Analyzed:     result.Analyzed,
		Compatible:   result.Compatible,
		AverageScore: result.AverageScore,
	}
	for _, sr := range result.Routes {
		res.Routes = append(res.Routes, dto.ScoredRouteResponse{
			Route:                    toRouteResponse(sr.Route),
			CompatibilityScore:       sr.CompatibilityScore,
			DetourKm:                 sr.DetourKm,
			EstimatedPrice:           sr.EstimatedPrice,
			EstimatedDurationMinutes: sr.EstimatedDurationMinute,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *MatchHandler) Accept(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.AcceptMatchRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	routeID := strings.TrimSpace(req.RouteID)
	announcementID := strings.TrimSpace(req.AnnouncementID)
	if routeID == "" || announcementID == "" {
		writeError(w, r, http.StatusBadRequest, "route_id and announcement_id are required")
		return
	}

	outcome, err := services.AcceptSuggestion(r.Context(), routeID, announcementID,
		h.Routes, h.Announcements, h.Index, h.Sink)
	if err != nil {
		var insufficient *domain.InsufficientCapacityError
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &insufficient):
			writeError(w, r, http.StatusConflict, fmt.Sprintf(
				"insufficient capacity: required %d, available %d",
				insufficient.Required, insufficient.Available))
		case errors.Is(err, domain.ErrRouteNotFound):
			writeError(w, r, http.StatusNotFound, "route not found")
		case errors.Is(err, domain.ErrAnnouncementNotFound):
			writeError(w, r, http.StatusNotFound, "announcement not found")
		case errors.As(err, &verr):
			writeError(w, r, http.StatusConflict, verr.Error())
		default:
			log.Printf("accept match failed: route=%s announcement=%s err=%v", routeID, announcementID, err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, dto.AcceptMatchResponse{
		RouteID:           routeID,
		AnnouncementID:    announcementID,
		UnitsConsumed:     outcome.UnitsConsumed,
		RemainingCapacity: outcome.RemainingCapacity,
	})
}
