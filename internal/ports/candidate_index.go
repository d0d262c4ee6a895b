package ports

import (
	"context"

	"route-match-service/internal/domain"
)

// Port: a geospatial index over open announcements, keyed by pickup point.
// Used as a coarse radius pre-filter before detour analysis; the index may
// be stale, since matching runs are advisory.
type CandidateIndex interface {
	// Add or refresh an announcement's pickup position in the index.
	Add(ctx context.Context, announcementID string, pickup domain.Coordinates) error

	// Remove an announcement from the index.
	Remove(ctx context.Context, announcementID string) error

	// Return ids of announcements whose pickup lies within radiusKm of
	// center, nearest first.
	Nearby(ctx context.Context, center domain.Coordinates, radiusKm float64) ([]string, error)
}
