package dto

import "time"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Reputation struct {
	AverageRating     float64 `json:"average_rating"`
	TotalDeliveries   int     `json:"total_deliveries"`
	OnTimeRatePercent float64 `json:"on_time_rate_percent"`
}

type CreateRouteRequest struct {
	RouteID           string      `json:"route_id"`
	DelivererID       string      `json:"deliverer_id"`
	Origin            Coordinates `json:"origin"`
	Destination       Coordinates `json:"destination"`
	DepartureTime     time.Time   `json:"departure_time"`
	ArrivalTime       time.Time   `json:"arrival_time"`
	AvailableCapacity int         `json:"available_capacity"`
}

type RouteResponse struct {
	RouteID           string      `json:"route_id"`
	DelivererID       string      `json:"deliverer_id"`
	Origin            Coordinates `json:"origin"`
	Destination       Coordinates `json:"destination"`
	DepartureTime     time.Time   `json:"departure_time"`
	ArrivalTime       time.Time   `json:"arrival_time"`
	AvailableCapacity int         `json:"available_capacity"`
	Status            string      `json:"status"`
	Reputation        *Reputation `json:"reputation,omitempty"`
}

type ListRoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}

type PublishRouteRequest struct {
	RouteID string `json:"route_id"`
	Publish bool   `json:"publish"`
}

type PublishRouteResponse struct {
	RouteID  string            `json:"route_id"`
	Status   string            `json:"status"`
	Matching *MatchRunResponse `json:"matching,omitempty"`
}
