// internal/repository/postgres/fleet_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"takataka-service/internal/domain/fleet"
	xerrors "takataka-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FleetRepository persists drivers, vehicles and maintenance records.
type FleetRepository struct {
	db *pgxpool.Pool
}

func NewFleetRepository(db *pgxpool.Pool) *FleetRepository {
	return &FleetRepository{db: db}
}

// ---------- Drivers ----------

const driverColumns = `
	id, employee_number, full_name, phone_number, email, licence_number,
	licence_expiry, status, created_at, updated_at`

func (r *FleetRepository) CreateDriver(ctx context.Context, d *fleet.Driver) error {
	query := `
		INSERT INTO drivers (employee_number, full_name, phone_number, email, licence_number, licence_expiry, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		d.EmployeeNumber, d.FullName, d.PhoneNumber, d.Email, d.LicenceNumber, d.LicenceExpiry, d.Status,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)

	if isUniqueViolation(err) {
		return xerrors.Conflict("driver with this employee number or licence already exists")
	}
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}
	return nil
}

func (r *FleetRepository) FindDriverByID(ctx context.Context, id int64) (*fleet.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`

	var d fleet.Driver
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.EmployeeNumber, &d.FullName, &d.PhoneNumber, &d.Email,
		&d.LicenceNumber, &d.LicenceExpiry, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "driver", id)
	}
	return &d, nil
}

func (r *FleetRepository) ListDrivers(ctx context.Context) ([]fleet.Driver, error) {
	rows, err := r.db.Query(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	drivers := []fleet.Driver{}
	for rows.Next() {
		var d fleet.Driver
		if err := rows.Scan(
			&d.ID, &d.EmployeeNumber, &d.FullName, &d.PhoneNumber, &d.Email,
			&d.LicenceNumber, &d.LicenceExpiry, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (r *FleetRepository) UpdateDriver(ctx context.Context, d *fleet.Driver) error {
	query := `
		UPDATE drivers SET
			full_name = $2, phone_number = $3, email = $4,
			licence_number = $5, licence_expiry = $6, status = $7, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		d.ID, d.FullName, d.PhoneNumber, d.Email, d.LicenceNumber, d.LicenceExpiry, d.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update driver: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.NotFoundf("driver", d.ID)
	}
	return nil
}

// ---------- Vehicles ----------

const vehicleColumns = `
	id, registration_plate, make, model, vehicle_type, capacity_kg, status,
	created_at, updated_at`

func (r *FleetRepository) CreateVehicle(ctx context.Context, v *fleet.Vehicle) error {
	query := `
		INSERT INTO vehicles (registration_plate, make, model, vehicle_type, capacity_kg, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		v.RegistrationPlate, v.Make, v.Model, v.VehicleType, v.CapacityKg, v.Status,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)

	if isUniqueViolation(err) {
		return xerrors.Conflictf("vehicle %s already exists", v.RegistrationPlate)
	}
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

func (r *FleetRepository) FindVehicleByID(ctx context.Context, id int64) (*fleet.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	return r.scanVehicle(ctx, r.db, query, id)
}

// FindVehicleByIDForUpdate locks the vehicle row so concurrent maintenance
// scheduling serializes on the status flip.
func (r *FleetRepository) FindVehicleByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*fleet.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1 FOR UPDATE`
	return r.scanVehicle(ctx, tx, query, id)
}

func (r *FleetRepository) scanVehicle(ctx context.Context, q Queryer, query string, id int64) (*fleet.Vehicle, error) {
	var v fleet.Vehicle
	err := q.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.RegistrationPlate, &v.Make, &v.Model, &v.VehicleType,
		&v.CapacityKg, &v.Status, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "vehicle", id)
	}
	return &v, nil
}

func (r *FleetRepository) ListVehicles(ctx context.Context) ([]fleet.Vehicle, error) {
	rows, err := r.db.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY registration_plate`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []fleet.Vehicle{}
	for rows.Next() {
		var v fleet.Vehicle
		if err := rows.Scan(
			&v.ID, &v.RegistrationPlate, &v.Make, &v.Model, &v.VehicleType,
			&v.CapacityKg, &v.Status, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// UpdateVehicleStatusWithTx persists a vehicle status flip inside the
// caller's transaction.
func (r *FleetRepository) UpdateVehicleStatusWithTx(ctx context.Context, tx pgx.Tx, id int64, status fleet.VehicleStatus) error {
	tag, err := tx.Exec(ctx,
		`UPDATE vehicles SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update vehicle status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.NotFoundf("vehicle", id)
	}
	return nil
}

// ---------- Maintenance ----------

const maintenanceColumns = `
	id, vehicle_id, description, scheduled_for, started_at, completed_at,
	cost, status, created_at, updated_at`

func (r *FleetRepository) CreateMaintenanceWithTx(ctx context.Context, tx pgx.Tx, m *fleet.Maintenance) error {
	query := `
		INSERT INTO vehicle_maintenance (vehicle_id, description, scheduled_for, started_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		m.VehicleID, m.Description, m.ScheduledFor, m.StartedAt, m.Status,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create maintenance record: %w", err)
	}
	return nil
}

func (r *FleetRepository) FindMaintenanceByID(ctx context.Context, id int64) (*fleet.Maintenance, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM vehicle_maintenance WHERE id = $1`

	var m fleet.Maintenance
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.VehicleID, &m.Description, &m.ScheduledFor, &m.StartedAt,
		&m.CompletedAt, &m.Cost, &m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "maintenance record", id)
	}
	return &m, nil
}

// CompleteMaintenanceWithTx closes out a maintenance job inside the
// caller's transaction.
func (r *FleetRepository) CompleteMaintenanceWithTx(ctx context.Context, tx pgx.Tx, m *fleet.Maintenance) error {
	query := `
		UPDATE vehicle_maintenance SET
			completed_at = $2, cost = $3, status = $4, updated_at = NOW()
		WHERE id = $1 AND status IN ('scheduled', 'ongoing')
	`

	tag, err := tx.Exec(ctx, query, m.ID, m.CompletedAt, m.Cost, m.Status)
	if err != nil {
		return fmt.Errorf("failed to complete maintenance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.Conflictf("maintenance record %d is not open", m.ID)
	}
	return nil
}

// ListOngoingMaintenance returns jobs that keep vehicles off the road as
// of now: ongoing, or scheduled with the date reached.
func (r *FleetRepository) ListOngoingMaintenance(ctx context.Context, now time.Time) ([]fleet.Maintenance, error) {
	query := `
		SELECT ` + maintenanceColumns + `
		FROM vehicle_maintenance
		WHERE status = 'ongoing' OR (status = 'scheduled' AND scheduled_for <= $1)
		ORDER BY scheduled_for
	`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list ongoing maintenance: %w", err)
	}
	defer rows.Close()

	records := []fleet.Maintenance{}
	for rows.Next() {
		var m fleet.Maintenance
		if err := rows.Scan(
			&m.ID, &m.VehicleID, &m.Description, &m.ScheduledFor, &m.StartedAt,
			&m.CompletedAt, &m.Cost, &m.Status, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan maintenance record: %w", err)
		}
		records = append(records, m)
	}
	return records, rows.Err()
}
