package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Initialize the Postgres database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createProfilesQuery := `
	CREATE TABLE IF NOT EXISTS deliverer_profiles (
		deliverer_id TEXT PRIMARY KEY,
		average_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_deliveries INTEGER NOT NULL DEFAULT 0,
		on_time_rate_percent DOUBLE PRECISION NOT NULL DEFAULT 0
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		route_id TEXT PRIMARY KEY,
		deliverer_id TEXT NOT NULL,
		origin_lat DOUBLE PRECISION NOT NULL,
		origin_lon DOUBLE PRECISION NOT NULL,
		destination_lat DOUBLE PRECISION NOT NULL,
		destination_lon DOUBLE PRECISION NOT NULL,
		departure_time TIMESTAMPTZ NOT NULL,
		arrival_time TIMESTAMPTZ NOT NULL,
		available_capacity INTEGER NOT NULL CHECK (available_capacity >= 0),
		status TEXT NOT NULL
	);
	`

	createAnnouncementsQuery := `
	CREATE TABLE IF NOT EXISTS announcements (
		announcement_id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		pickup_lat DOUBLE PRECISION,
		pickup_lon DOUBLE PRECISION,
		dropoff_lat DOUBLE PRECISION,
		dropoff_lon DOUBLE PRECISION,
		requested_pickup_time TIMESTAMPTZ NOT NULL,
		weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
		volume_dm3 DOUBLE PRECISION NOT NULL DEFAULT 0,
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		urgency TEXT NOT NULL DEFAULT 'LOW',
		status TEXT NOT NULL DEFAULT 'OPEN'
	);
	`

	createSuggestionsQuery := `
	CREATE TABLE IF NOT EXISTS match_suggestions (
		route_id TEXT NOT NULL,
		announcement_id TEXT NOT NULL,
		compatibility_score DOUBLE PRECISION NOT NULL,
		detour_km DOUBLE PRECISION NOT NULL,
		estimated_delivery_time TIMESTAMPTZ NOT NULL,
		estimated_fuel_cost_delta DOUBLE PRECISION NOT NULL,
		estimated_price DOUBLE PRECISION NOT NULL,
		capacity_units INTEGER NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (route_id, announcement_id)
	);
	`

	createRouteSearchIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_routes_status_departure
	ON routes(status, departure_time);
	`

	createAnnouncementStatusIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_announcements_status
	ON announcements(status);
	`

	statements := []string{
		createProfilesQuery,
		createRoutesQuery,
		createAnnouncementsQuery,
		createSuggestionsQuery,
		createRouteSearchIndexQuery,
		createAnnouncementStatusIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type RouteSeed struct {
	RouteID           string    `json:"route_id"`
	DelivererID       string    `json:"deliverer_id"`
	OriginLat         float64   `json:"origin_lat"`
	OriginLon         float64   `json:"origin_lon"`
	DestinationLat    float64   `json:"destination_lat"`
	DestinationLon    float64   `json:"destination_lon"`
	DepartureTime     time.Time `json:"departure_time"`
	ArrivalTime       time.Time `json:"arrival_time"`
	AvailableCapacity int       `json:"available_capacity"`
	Status            string    `json:"status"`
}

type AnnouncementSeed struct {
	AnnouncementID      string    `json:"announcement_id"`
	ClientID            string    `json:"client_id"`
	PickupLat           *float64  `json:"pickup_lat"`
	PickupLon           *float64  `json:"pickup_lon"`
	DropoffLat          *float64  `json:"dropoff_lat"`
	DropoffLon          *float64  `json:"dropoff_lon"`
	RequestedPickupTime time.Time `json:"requested_pickup_time"`
	WeightKg            float64   `json:"weight_kg"`
	VolumeDm3           float64   `json:"volume_dm3"`
	Price               float64   `json:"price"`
	Urgency             string    `json:"urgency"`
}

// Populate the database with route data from a JSON file.
func SeedRoutesFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed routes: read %q: %w", jsonPath, err)
	}

	var data []RouteSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed routes: parse json: %w", err)
	}

	for i, r := range data {
		if strings.TrimSpace(r.RouteID) == "" {
			return fmt.Errorf("seed routes: item at index %d: route_id cannot be empty", i+1)
		}
		if strings.TrimSpace(r.DelivererID) == "" {
			return fmt.Errorf("seed routes: item at index %d: deliverer_id cannot be empty", i+1)
		}
		if r.AvailableCapacity < 0 {
			return fmt.Errorf("seed routes: item at index %d: negative capacity %d", i+1, r.AvailableCapacity)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed routes: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO routes (
		route_id,
		deliverer_id,
		origin_lat, origin_lon,
		destination_lat, destination_lon,
		departure_time,
		arrival_time,
		available_capacity,
		status
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (route_id) DO UPDATE SET
		deliverer_id = EXCLUDED.deliverer_id,
		origin_lat = EXCLUDED.origin_lat,
		origin_lon = EXCLUDED.origin_lon,
		destination_lat = EXCLUDED.destination_lat,
		destination_lon = EXCLUDED.destination_lon,
		departure_time = EXCLUDED.departure_time,
		arrival_time = EXCLUDED.arrival_time,
		available_capacity = EXCLUDED.available_capacity,
		status = EXCLUDED.status;
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed routes: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range data {
		status := r.Status
		if status == "" {
			status = "PUBLISHED"
		}
		_, err := stmt.Exec(
			r.RouteID, r.DelivererID,
			r.OriginLat, r.OriginLon,
			r.DestinationLat, r.DestinationLon,
			r.DepartureTime, r.ArrivalTime,
			r.AvailableCapacity, status,
		)
		if err != nil {
			return fmt.Errorf("seed routes: insert route_id=%s: %w", r.RouteID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed routes: commit tx: %w", err)
	}

	return nil
}

// Populate the database with announcement data from a JSON file.
func SeedAnnouncementsFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed announcements: read %q: %w", jsonPath, err)
	}

	var data []AnnouncementSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed announcements: parse json: %w", err)
	}

	for i, a := range data {
		if strings.TrimSpace(a.AnnouncementID) == "" {
			return fmt.Errorf("seed announcements: item at index %d: announcement_id cannot be empty", i+1)
		}
		if strings.TrimSpace(a.ClientID) == "" {
			return fmt.Errorf("seed announcements: item at index %d: client_id cannot be empty", i+1)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed announcements: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO announcements (
		announcement_id,
		client_id,
		pickup_lat, pickup_lon,
		dropoff_lat, dropoff_lon,
		requested_pickup_time,
		weight_kg,
		volume_dm3,
		price,
		urgency,
		status
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'OPEN')
	ON CONFLICT (announcement_id) DO UPDATE SET
		client_id = EXCLUDED.client_id,
		pickup_lat = EXCLUDED.pickup_lat,
		pickup_lon = EXCLUDED.pickup_lon,
		dropoff_lat = EXCLUDED.dropoff_lat,
		dropoff_lon = EXCLUDED.dropoff_lon,
		requested_pickup_time = EXCLUDED.requested_pickup_time,
		weight_kg = EXCLUDED.weight_kg,
		volume_dm3 = EXCLUDED.volume_dm3,
		price = EXCLUDED.price,
		urgency = EXCLUDED.urgency;
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed announcements: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range data {
		urgency := a.Urgency
		if urgency == "" {
			urgency = "LOW"
		}
		_, err := stmt.Exec(
			a.AnnouncementID, a.ClientID,
			a.PickupLat, a.PickupLon,
			a.DropoffLat, a.DropoffLon,
			a.RequestedPickupTime,
			a.WeightKg, a.VolumeDm3, a.Price,
			urgency,
		)
		if err != nil {
			return fmt.Errorf("seed announcements: insert announcement_id=%s: %w", a.AnnouncementID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed announcements: commit tx: %w", err)
	}

	return nil
}
