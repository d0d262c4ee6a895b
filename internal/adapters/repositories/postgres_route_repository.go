package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route-match-service/internal/domain"
	"route-match-service/internal/ports"
)

// Postgres-backed implementation of the RouteRepository port. Reputation is
// joined in from the deliverer profile snapshot; routes without a profile
// row carry a nil snapshot.
type PostgresRouteRepository struct{ DB *sql.DB }

func NewPostgresRouteRepository(db *sql.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{DB: db}
}

const routeColumns = `
	r.route_id,
	r.deliverer_id,
	r.origin_lat, r.origin_lon,
	r.destination_lat, r.destination_lon,
	r.departure_time,
	r.arrival_time,
	r.available_capacity,
	r.status,
	p.average_rating,
	p.total_deliveries,
	p.on_time_rate_percent
`

func (s *PostgresRouteRepository) GetRoute(ctx context.Context, id string) (*domain.PlannedRoute, error) {
	if s.DB == nil {
		return nil, errors.New("postgres route repository: DB is nil")
	}

	query := `
	SELECT ` + routeColumns + `
	FROM routes r
	LEFT JOIN deliverer_profiles p ON p.deliverer_id = r.deliverer_id
	WHERE r.route_id = $1;
	`
	route, err := scanRoute(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRouteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get route: scan row: %w", err)
	}

	return route, nil
}

func (s *PostgresRouteRepository) ListByDeliverer(ctx context.Context, delivererID string, statuses []domain.RouteStatus) ([]*domain.PlannedRoute, error) {
	if s.DB == nil {
		return nil, errors.New("postgres route repository: DB is nil")
	}

	query := `
	SELECT ` + routeColumns + `
	FROM routes r
	LEFT JOIN deliverer_profiles p ON p.deliverer_id = r.deliverer_id
	WHERE r.deliverer_id = $1
	  AND (cardinality($2::text[]) = 0 OR r.status = ANY($2::text[]))
	ORDER BY r.departure_time;
	`
	filter := make([]string, 0, len(statuses))
	for _, st := range statuses {
		filter = append(filter, string(st))
	}

	rows, err := s.DB.QueryContext(ctx, query, delivererID, filter)
	if err != nil {
		return nil, fmt.Errorf("list routes by deliverer: query routes table: %w", err)
	}
	defer rows.Close()

	return collectRoutes(rows, "list routes by deliverer")
}

func (s *PostgresRouteRepository) SearchPublished(ctx context.Context, q ports.RouteSearchQuery) ([]*domain.PlannedRoute, error) {
	if s.DB == nil {
		return nil, errors.New("postgres route repository: DB is nil")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
	SELECT ` + routeColumns + `
	FROM routes r
	LEFT JOIN deliverer_profiles p ON p.deliverer_id = r.deliverer_id
	WHERE r.status = 'PUBLISHED'
	  AND r.available_capacity >= 1
	  AND r.departure_time BETWEEN $1 AND $2
	  AND r.origin_lat BETWEEN $3 AND $4
	  AND r.origin_lon BETWEEN $5 AND $6
	ORDER BY r.departure_time
	LIMIT $7;
	`
	rows, err := s.DB.QueryContext(ctx, query,
		q.DepartureFrom, q.DepartureTo,
		q.MinLat, q.MaxLat,
		q.MinLon, q.MaxLon,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search published routes: query routes table: %w", err)
	}
	defer rows.Close()

	return collectRoutes(rows, "search published routes")
}

func (s *PostgresRouteRepository) CreateRoute(ctx context.Context, r *domain.PlannedRoute) error {
	if s.DB == nil {
		return errors.New("postgres route repository: DB is nil")
	}

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
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := s.DB.ExecContext(ctx, query,
		r.ID, r.DelivererID,
		r.Origin.Lat, r.Origin.Lon,
		r.Destination.Lat, r.Destination.Lon,
		r.DepartureTime, r.ArrivalTime,
		r.AvailableCapacityUnits, string(r.Status),
	)
	if err != nil {
		return fmt.Errorf("create route: insert route_id=%s: %w", r.ID, err)
	}

	return nil
}

// Compare-and-set on status. A false return means the stored status no
// longer matched from and nothing was updated.
func (s *PostgresRouteRepository) UpdateStatus(ctx context.Context, id string, from, to domain.RouteStatus) (bool, error) {
	if s.DB == nil {
		return false, errors.New("postgres route repository: DB is nil")
	}

	query := `
	UPDATE routes
	SET status = $3
	WHERE route_id = $1 AND status = $2;
	`
	res, err := s.DB.ExecContext(ctx, query, id, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("update route status: route_id=%s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update route status: rows affected: %w", err)
	}

	return affected == 1, nil
}

// Atomic conditional decrement. The guard in the WHERE clause makes the
// check and the subtraction one statement, so concurrent acceptances can
// never overdraw the route.
func (s *PostgresRouteRepository) ConsumeCapacity(ctx context.Context, id string, units int) (int, error) {
	if s.DB == nil {
		return 0, errors.New("postgres route repository: DB is nil")
	}
	if units < 1 {
		return 0, &domain.ValidationError{Field: "units", Reason: fmt.Sprintf("must be >= 1, got %d", units)}
	}

	query := `
	UPDATE routes
	SET available_capacity = available_capacity - $2
	WHERE route_id = $1 AND available_capacity >= $2
	RETURNING available_capacity;
	`
	var remaining int
	err := s.DB.QueryRowContext(ctx, query, id, units).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the route does not exist or it lacks capacity.
		var available int
		err := s.DB.QueryRowContext(ctx,
			`SELECT available_capacity FROM routes WHERE route_id = $1;`, id,
		).Scan(&available)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrRouteNotFound
		}
		if err != nil {
			return 0, fmt.Errorf("consume capacity: read route_id=%s: %w", id, err)
		}
		return 0, &domain.InsufficientCapacityError{RouteID: id, Required: units, Available: available}
	}
	if err != nil {
		return 0, fmt.Errorf("consume capacity: decrement route_id=%s: %w", id, err)
	}

	return remaining, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row rowScanner) (*domain.PlannedRoute, error) {
	var r domain.PlannedRoute
	var status string
	var rating, onTimeRate sql.NullFloat64
	var deliveries sql.NullInt64

	err := row.Scan(
		&r.ID, &r.DelivererID,
		&r.Origin.Lat, &r.Origin.Lon,
		&r.Destination.Lat, &r.Destination.Lon,
		&r.DepartureTime, &r.ArrivalTime,
		&r.AvailableCapacityUnits, &status,
		&rating, &deliveries, &onTimeRate,
	)
	if err != nil {
		return nil, err
	}

	r.Status = domain.RouteStatus(status)
	if rating.Valid {
		r.Reputation = &domain.Reputation{
			AverageRating:     rating.Float64,
			TotalDeliveries:   int(deliveries.Int64),
			OnTimeRatePercent: onTimeRate.Float64,
		}
	}

	return &r, nil
}

func collectRoutes(rows *sql.Rows, op string) ([]*domain.PlannedRoute, error) {
	routes := make([]*domain.PlannedRoute, 0, 16)
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}
	return routes, nil
}
