package ports

import (
	"context"

	"route-match-service/internal/domain"
)

// Port: a boundary for reading Announcement records seeking transport.
// The matching engine never mutates announcements.
type AnnouncementRepository interface {
	// Retrieve a single announcement by id. Returns
	// domain.ErrAnnouncementNotFound when absent.
	GetAnnouncement(ctx context.Context, id string) (*domain.Announcement, error)

	// Retrieve open announcements, at most limit records.
	ListOpen(ctx context.Context, limit int) ([]*domain.Announcement, error)

	// Retrieve open announcements by id, preserving no particular order.
	// Used after a geo-index pre-filter has narrowed the candidate pool.
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Announcement, error)
}
