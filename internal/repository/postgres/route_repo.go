// internal/repository/postgres/route_repo.go
package postgres

import (
	"context"
	"fmt"

	"takataka-service/internal/domain/route"
	xerrors "takataka-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RouteRepository struct {
	db *pgxpool.Pool
}

func NewRouteRepository(db *pgxpool.Pool) *RouteRepository {
	return &RouteRepository{db: db}
}

const routeColumns = `
	id, name, area, collection_day, description, driver_id, vehicle_id,
	is_active, created_at, updated_at`

// Create inserts a new collection route.
func (r *RouteRepository) Create(ctx context.Context, rt *route.Route) error {
	query := `
		INSERT INTO routes (name, area, collection_day, description, driver_id, vehicle_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		rt.Name, rt.Area, rt.CollectionDay, rt.Description, rt.DriverID, rt.VehicleID, rt.IsActive,
	).Scan(&rt.ID, &rt.CreatedAt, &rt.UpdatedAt)

	if isUniqueViolation(err) {
		return xerrors.Conflictf("route %q already exists", rt.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to create route: %w", err)
	}
	return nil
}

// FindByID retrieves a route by ID.
func (r *RouteRepository) FindByID(ctx context.Context, id int64) (*route.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1`

	var rt route.Route
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rt.ID, &rt.Name, &rt.Area, &rt.CollectionDay, &rt.Description,
		&rt.DriverID, &rt.VehicleID, &rt.IsActive, &rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "route", id)
	}
	return &rt, nil
}

// List retrieves all routes with per-route customer counts.
func (r *RouteRepository) List(ctx context.Context, activeOnly bool) ([]route.RouteSummary, error) {
	query := `
		SELECT r.id, r.name, r.area, r.collection_day, r.description,
		       r.driver_id, r.vehicle_id, r.is_active, r.created_at, r.updated_at,
		       COUNT(c.id) AS customer_count
		FROM routes r
		LEFT JOIN customers c ON c.route_id = r.id AND c.deleted_at IS NULL
	`
	if activeOnly {
		query += ` WHERE r.is_active`
	}
	query += ` GROUP BY r.id ORDER BY r.name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	defer rows.Close()

	routes := []route.RouteSummary{}
	for rows.Next() {
		var rs route.RouteSummary
		if err := rows.Scan(
			&rs.ID, &rs.Name, &rs.Area, &rs.CollectionDay, &rs.Description,
			&rs.DriverID, &rs.VehicleID, &rs.IsActive, &rs.CreatedAt, &rs.UpdatedAt,
			&rs.CustomerCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes = append(routes, rs)
	}

	return routes, rows.Err()
}

// Update persists mutable route fields.
func (r *RouteRepository) Update(ctx context.Context, rt *route.Route) error {
	query := `
		UPDATE routes SET
			name = $2, area = $3, collection_day = $4, description = $5,
			driver_id = $6, vehicle_id = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		rt.ID, rt.Name, rt.Area, rt.CollectionDay, rt.Description,
		rt.DriverID, rt.VehicleID, rt.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update route: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.NotFoundf("route", rt.ID)
	}
	return nil
}
