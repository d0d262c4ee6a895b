package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route-match-service/internal/domain"
)

// Postgres-backed implementation of the SuggestionSink port. Re-suggesting
// an existing (route, announcement) pair refreshes the stored score and
// estimates instead of duplicating the row.
type PostgresSuggestionRepository struct{ DB *sql.DB }

func NewPostgresSuggestionRepository(db *sql.DB) *PostgresSuggestionRepository {
	return &PostgresSuggestionRepository{DB: db}
}

func (s *PostgresSuggestionRepository) SaveSuggestions(ctx context.Context, suggestions []domain.MatchSuggestion) error {
	if s.DB == nil {
		return errors.New("postgres suggestion repository: DB is nil")
	}
	if len(suggestions) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save suggestions: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO match_suggestions (
		route_id,
		announcement_id,
		compatibility_score,
		detour_km,
		estimated_delivery_time,
		estimated_fuel_cost_delta,
		estimated_price,
		capacity_units,
		status,
		created_at,
		expires_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (route_id, announcement_id) DO UPDATE SET
		compatibility_score = EXCLUDED.compatibility_score,
		detour_km = EXCLUDED.detour_km,
		estimated_delivery_time = EXCLUDED.estimated_delivery_time,
		estimated_fuel_cost_delta = EXCLUDED.estimated_fuel_cost_delta,
		estimated_price = EXCLUDED.estimated_price,
		capacity_units = EXCLUDED.capacity_units,
		status = EXCLUDED.status,
		created_at = EXCLUDED.created_at,
		expires_at = EXCLUDED.expires_at;
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("save suggestions: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, sg := range suggestions {
		_, err := stmt.ExecContext(ctx,
			sg.RouteID, sg.CandidateID,
			sg.CompatibilityScore, sg.DetourKm,
			sg.EstimatedDeliveryTime,
			sg.EstimatedFuelCostDelta, sg.EstimatedPrice,
			sg.CapacityUnitsRequired,
			string(sg.Status),
			sg.CreatedAt, sg.ExpiresAt,
		)
		if err != nil {
			return fmt.Errorf("save suggestions: upsert route_id=%s announcement_id=%s: %w",
				sg.RouteID, sg.CandidateID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save suggestions: commit tx: %w", err)
	}

	return nil
}

func (s *PostgresSuggestionRepository) MarkAccepted(ctx context.Context, routeID, candidateID string) error {
	if s.DB == nil {
		return errors.New("postgres suggestion repository: DB is nil")
	}

	query := `
	UPDATE match_suggestions
	SET status = $3
	WHERE route_id = $1 AND announcement_id = $2;
	`
	res, err := s.DB.ExecContext(ctx, query, routeID, candidateID, string(domain.SuggestionStatusAccepted))
	if err != nil {
		return fmt.Errorf("mark suggestion accepted: route_id=%s announcement_id=%s: %w",
			routeID, candidateID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark suggestion accepted: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("mark suggestion accepted: route_id=%s announcement_id=%s: %w",
			routeID, candidateID, domain.ErrSuggestionNotFound)
	}

	return nil
}

func (s *PostgresSuggestionRepository) ListByRoute(ctx context.Context, routeID string) ([]domain.MatchSuggestion, error) {
	if s.DB == nil {
		return nil, errors.New("postgres suggestion repository: DB is nil")
	}

	query := `
	SELECT
		route_id,
		announcement_id,
		compatibility_score,
		detour_km,
		estimated_delivery_time,
		estimated_fuel_cost_delta,
		estimated_price,
		capacity_units,
		status,
		created_at,
		expires_at
	FROM match_suggestions
	WHERE route_id = $1
	ORDER BY compatibility_score DESC, detour_km;
	`
	rows, err := s.DB.QueryContext(ctx, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("list suggestions by route: query match_suggestions table: %w", err)
	}
	defer rows.Close()

	suggestions := make([]domain.MatchSuggestion, 0, 8)
	for rows.Next() {
		var sg domain.MatchSuggestion
		var status string
		err := rows.Scan(
			&sg.RouteID, &sg.CandidateID,
			&sg.CompatibilityScore, &sg.DetourKm,
			&sg.EstimatedDeliveryTime,
			&sg.EstimatedFuelCostDelta, &sg.EstimatedPrice,
			&sg.CapacityUnitsRequired,
			&status,
			&sg.CreatedAt, &sg.ExpiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("list suggestions by route: scan row: %w", err)
		}
		sg.Status = domain.SuggestionStatus(status)
		suggestions = append(suggestions, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list suggestions by route: row iteration: %w", err)
	}

	return suggestions, nil
}
