package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"route-match-service/internal/api/dto"
	"route-match-service/internal/domain"
	"route-match-service/internal/ports"
	"route-match-service/internal/services"
)

// RouteHandler exposes the deliverer-facing route lifecycle: listing,
// creation and publishing. Publishing triggers a matching run, so the
// handler carries the full set of pipeline ports.
type RouteHandler struct {
	Routes        ports.RouteRepository
	Announcements ports.AnnouncementRepository
	Index         ports.CandidateIndex
	Sink          ports.SuggestionSink
	Notifier      ports.Notifier
	Config        services.MatchConfig
}

// HandleRoutes dispatches /routes by method: GET lists a deliverer's routes,
// POST creates a new DRAFT route.
func (h *RouteHandler) HandleRoutes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *RouteHandler) list(w http.ResponseWriter, r *http.Request) {
	delivererID := strings.TrimSpace(r.URL.Query().Get("deliverer_id"))
	if delivererID == "" {
		writeError(w, r, http.StatusBadRequest, "deliverer_id is required")
		return
	}

	var statuses []domain.RouteStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, domain.RouteStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}

	routes, err := h.Routes.ListByDeliverer(r.Context(), delivererID, statuses)
	if err != nil {
		log.Printf("list routes failed: deliverer=%s err=%v", delivererID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRoutesResponse{Routes: make([]dto.RouteResponse, 0, len(routes))}
	for _, rt := range routes {
		res.Routes = append(res.Routes, toRouteResponse(rt))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *RouteHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRouteRequest

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

	route := &domain.PlannedRoute{
		ID:                     strings.TrimSpace(req.RouteID),
		DelivererID:            strings.TrimSpace(req.DelivererID),
		Origin:                 domain.Coordinates{Lat: req.Origin.Lat, Lon: req.Origin.Lon},
		Destination:            domain.Coordinates{Lat: req.Destination.Lat, Lon: req.Destination.Lon},
		DepartureTime:          req.DepartureTime,
		ArrivalTime:            req.ArrivalTime,
		AvailableCapacityUnits: req.AvailableCapacity,
		Status:                 domain.RouteStatusDraft,
	}
	if route.ID == "" {
		route.ID = newRouteID()
	}

	if err := route.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Routes.CreateRoute(r.Context(), route); err != nil {
		log.Printf("create route failed: route=%s err=%v", route.ID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, toRouteResponse(route))
}

// Publish flips a route between DRAFT and PUBLISHED. Publishing kicks off a
// matching run; a failed run does not roll the publish back, the route
// simply goes live without an initial suggestion batch.
func (h *RouteHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PublishRouteRequest

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
	if routeID == "" {
		writeError(w, r, http.StatusBadRequest, "route_id is required")
		return
	}

	from, to := domain.RouteStatusDraft, domain.RouteStatusPublished
	if !req.Publish {
		from, to = domain.RouteStatusPublished, domain.RouteStatusDraft
	}

	ok, err := h.Routes.UpdateStatus(r.Context(), routeID, from, to)
	if err != nil {
		if errors.Is(err, domain.ErrRouteNotFound) {
			writeError(w, r, http.StatusNotFound, "route not found")
			return
		}
		log.Printf("publish route failed: route=%s err=%v", routeID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, r, http.StatusConflict, "route is not in "+string(from)+" status")
		return
	}

	res := dto.PublishRouteResponse{RouteID: routeID, Status: string(to)}

	if req.Publish {
		summary, err := services.MatchRoute(r.Context(), routeID,
			h.Routes, h.Announcements, h.Index, h.Sink, h.Notifier, h.Config)
		if err != nil {
			log.Printf("matching run failed: route=%s err=%v", routeID, err)
		} else {
			res.Matching = toMatchRunResponse(summary)
		}
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toRouteResponse(r *domain.PlannedRoute) dto.RouteResponse {
	res := dto.RouteResponse{
		RouteID:           r.ID,
		DelivererID:       r.DelivererID,
		Origin:            dto.Coordinates{Lat: r.Origin.Lat, Lon: r.Origin.Lon},
		Destination:       dto.Coordinates{Lat: r.Destination.Lat, Lon: r.Destination.Lon},
		DepartureTime:     r.DepartureTime,
		ArrivalTime:       r.ArrivalTime,
		AvailableCapacity: r.AvailableCapacityUnits,
		Status:            string(r.Status),
	}
	if r.Reputation != nil {
		res.Reputation = &dto.Reputation{
			AverageRating:     r.Reputation.AverageRating,
			TotalDeliveries:   r.Reputation.TotalDeliveries,
			OnTimeRatePercent: r.Reputation.OnTimeRatePercent,
		}
	}
	return res
}

func toMatchRunResponse(s *services.MatchRunSummary) *dto.MatchRunResponse {
	res := &dto.MatchRunResponse{
		RouteID:     s.RouteID,
		Analyzed:    s.Analyzed,
		Compatible:  s.Compatible,
		Suggested:   s.Suggested,
		TopScore:    s.TopScore,
		Suggestions: make([]dto.SuggestionResponse, 0, len(s.Suggestions)),
	}
	for _, sg := range s.Suggestions {
		res.Suggestions = append(res.Suggestions, dto.SuggestionResponse{
			RouteID:                sg.RouteID,
			AnnouncementID:         sg.CandidateID,
			CompatibilityScore:     sg.CompatibilityScore,
			DetourKm:               sg.DetourKm,
			EstimatedDeliveryTime:  sg.EstimatedDeliveryTime,
			EstimatedFuelCostDelta: sg.EstimatedFuelCostDelta,
			EstimatedPrice:         sg.EstimatedPrice,
			CapacityUnits:          sg.CapacityUnitsRequired,
			Status:                 string(sg.Status),
			ExpiresAt:              sg.ExpiresAt,
		})
	}
	return res
}

func newRouteID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
