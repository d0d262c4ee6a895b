package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route-match-service/internal/domain"
)

// Postgres-backed implementation of the AnnouncementRepository port.
type PostgresAnnouncementRepository struct{ DB *sql.DB }

func NewPostgresAnnouncementRepository(db *sql.DB) *PostgresAnnouncementRepository {
	return &PostgresAnnouncementRepository{DB: db}
}

const announcementColumns = `
	announcement_id,
	client_id,
	pickup_lat, pickup_lon,
	dropoff_lat, dropoff_lon,
	requested_pickup_time,
	weight_kg,
	volume_dm3,
	price,
	urgency
`

func (s *PostgresAnnouncementRepository) GetAnnouncement(ctx context.Context, id string) (*domain.Announcement, error) {
	if s.DB == nil {
		return nil, errors.New("postgres announcement repository: DB is nil")
	}

	query := `
	SELECT ` + announcementColumns + `
	FROM announcements
	WHERE announcement_id = $1;
	`
	a, err := scanAnnouncement(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAnnouncementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get announcement: scan row: %w", err)
	}

	return a, nil
}

func (s *PostgresAnnouncementRepository) ListOpen(ctx context.Context, limit int) ([]*domain.Announcement, error) {
	if s.DB == nil {
		return nil, errors.New("postgres announcement repository: DB is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
	SELECT ` + announcementColumns + `
	FROM announcements
	WHERE status = 'OPEN'
	ORDER BY requested_pickup_time
	LIMIT $1;
	`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list open announcements: query announcements table: %w", err)
	}
	defer rows.Close()

	return collectAnnouncements(rows, "list open announcements")
}

func (s *PostgresAnnouncementRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Announcement, error) {
	if s.DB == nil {
		return nil, errors.New("postgres announcement repository: DB is nil")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
	SELECT ` + announcementColumns + `
	FROM announcements
	WHERE status = 'OPEN' AND announcement_id = ANY($1::text[]);
	`
	rows, err := s.DB.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list announcements by ids: query announcements table: %w", err)
	}
	defer rows.Close()

	return collectAnnouncements(rows, "list announcements by ids")
}

func scanAnnouncement(row rowScanner) (*domain.Announcement, error) {
	var a domain.Announcement
	var urgency string
	var pickupLat, pickupLon, dropoffLat, dropoffLon sql.NullFloat64

	err := row.Scan(
		&a.ID, &a.ClientID,
		&pickupLat, &pickupLon,
		&dropoffLat, &dropoffLon,
		&a.RequestedPickupTime,
		&a.WeightKg, &a.VolumeDm3, &a.Price,
		&urgency,
	)
	if err != nil {
		return nil, err
	}

	a.Urgency = domain.Urgency(urgency)
	if pickupLat.Valid && pickupLon.Valid {
		a.Pickup = &domain.Coordinates{Lat: pickupLat.Float64, Lon: pickupLon.Float64}
	}
	if dropoffLat.Valid && dropoffLon.Valid {
		a.Dropoff = &domain.Coordinates{Lat: dropoffLat.Float64, Lon: dropoffLon.Float64}
	}

	return &a, nil
}

func collectAnnouncements(rows *sql.Rows, op string) ([]*domain.Announcement, error) {
	announcements := make([]*domain.Announcement, 0, 16)
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		announcements = append(announcements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}
	return announcements, nil
}
