package dto

import "time"

type SearchMatchesRequest struct {
	Pickup        Coordinates `json:"pickup"`
	Dropoff       Coordinates `json:"dropoff"`
	RequestedTime time.Time   `json:"requested_time"`
	MaxDetourKm   float64     `json:"max_detour_km"`
	Limit         int         `json:"limit"`
}

type ScoredRouteResponse struct {
	Route                    RouteResponse `json:"route"`
	CompatibilityScore       float64       `json:"compatibility_score"`
	DetourKm                 float64       `json:"detour_km"`
	EstimatedPrice           float64       `json:"estimated_price"`
	EstimatedDurationMinutes int           `json:"estimated_duration_minutes"`
}

type SearchMatchesResponse struct {
	Routes       []ScoredRouteResponse `json:"routes"`
	Analyzed     int                   `json:"analyzed"`
	Compatible   int                   `json:"compatible"`
	AverageScore float64               `json:"average_score"`
}

type SuggestionResponse struct {
	RouteID                string    `json:"route_id"`
	AnnouncementID         string    `json:"announcement_id"`
	CompatibilityScore     float64   `json:"compatibility_score"`
	DetourKm               float64   `json:"detour_km"`
	EstimatedDeliveryTime  time.Time `json:"estimated_delivery_time"`
	EstimatedFuelCostDelta float64   `json:"estimated_fuel_cost_delta"`
	EstimatedPrice         float64   `json:"estimated_price"`
	CapacityUnits          int       `json:"capacity_units"`
	Status                 string    `json:"status"`
	ExpiresAt              time.Time `json:"expires_at"`
}

type MatchRunResponse struct {
	RouteID     string               `json:"route_id"`
	Analyzed    int                  `json:"analyzed"`
	Compatible  int                  `json:"compatible"`
	Suggested   int                  `json:"suggested"`
	TopScore    float64              `json:"top_score"`
	Suggestions []SuggestionResponse `json:"suggestions"`
}

type AcceptMatchRequest struct {
	RouteID        string `json:"route_id"`
	AnnouncementID string `json:"announcement_id"`
}

type AcceptMatchResponse struct {
	RouteID           string `json:"route_id"`
	AnnouncementID    string `json:"announcement_id"`
	UnitsConsumed     int    `json:"units_consumed"`
	RemainingCapacity int    `json:"remaining_capacity"`
}
