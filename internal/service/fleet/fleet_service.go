// internal/service/fleet/fleet_service.go
package fleet

import (
	"context"
	"database/sql"
	"time"

	"takataka-service/internal/domain/fleet"
	xerrors "takataka-service/internal/pkg/errors"
	"takataka-service/internal/pkg/ref"
	"takataka-service/internal/repository/postgres"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service manages drivers, vehicles and maintenance. Maintenance
// scheduling and completion flip the vehicle's status in the same
// transaction, so a vehicle is never both on a route and in the shop.
type Service struct {
	repo   *postgres.FleetRepository
	db     *postgres.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo *postgres.FleetRepository, db *postgres.DB, logger *zap.Logger) *Service {
	return &Service{repo: repo, db: db, logger: logger, now: time.Now}
}

// ---------- Drivers ----------

// CreateDriver adds a driver to the payroll.
func (s *Service) CreateDriver(ctx context.Context, req *fleet.CreateDriverRequest) (*fleet.Driver, error) {
	expiry, err := time.Parse("2006-01-02", req.LicenceExpiry)
	if err != nil {
		return nil, xerrors.Validation("licence_expiry", "must be a date in YYYY-MM-DD format")
	}
	if expiry.Before(s.now()) {
		return nil, xerrors.Validation("licence_expiry", "licence is already expired")
	}

	d := &fleet.Driver{
		EmployeeNumber: ref.New(ref.PrefixEmployee),
		FullName:       req.FullName,
		PhoneNumber:    req.PhoneNumber,
		LicenceNumber:  req.LicenceNumber,
		LicenceExpiry:  expiry,
		Status:         fleet.DriverActive,
	}
	if req.Email != "" {
		d.Email = sql.NullString{String: req.Email, Valid: true}
	}

	if err := s.repo.CreateDriver(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("driver created", zap.String("employee_number", d.EmployeeNumber))
	return d, nil
}

// GetDriver returns a driver by ID.
func (s *Service) GetDriver(ctx context.Context, id int64) (*fleet.Driver, error) {
	return s.repo.FindDriverByID(ctx, id)
}

// ListDrivers returns all drivers.
func (s *Service) ListDrivers(ctx context.Context) ([]fleet.Driver, error) {
	return s.repo.ListDrivers(ctx)
}

// UpdateDriver applies a partial update to a driver.
func (s *Service) UpdateDriver(ctx context.Context, id int64, req *fleet.UpdateDriverRequest) (*fleet.Driver, error) {
	d, err := s.repo.FindDriverByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		d.FullName = *req.FullName
	}
	if req.PhoneNumber != nil {
		d.PhoneNumber = *req.PhoneNumber
	}
	if req.Email != nil {
		d.Email = sql.NullString{String: *req.Email, Valid: *req.Email != ""}
	}
	if req.LicenceNumber != nil {
		d.LicenceNumber = *req.LicenceNumber
	}
	if req.LicenceExpiry != nil {
		expiry, err := time.Parse("2006-01-02", *req.LicenceExpiry)
		if err != nil {
			return nil, xerrors.Validation("licence_expiry", "must be a date in YYYY-MM-DD format")
		}
		d.LicenceExpiry = expiry
	}
	if req.Status != nil {
		d.Status = fleet.DriverStatus(*req.Status)
	}

	if err := s.repo.UpdateDriver(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ---------- Vehicles ----------

// CreateVehicle adds a truck to the fleet.
func (s *Service) CreateVehicle(ctx context.Context, req *fleet.CreateVehicleRequest) (*fleet.Vehicle, error) {
	v := &fleet.Vehicle{
		RegistrationPlate: req.RegistrationPlate,
		Make:              req.Make,
		Model:             req.Model,
		VehicleType:       req.VehicleType,
		CapacityKg:        req.CapacityKg,
		Status:            fleet.VehicleActive,
	}

	if err := s.repo.CreateVehicle(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle created", zap.String("registration_plate", v.RegistrationPlate))
	return v, nil
}

// GetVehicle returns a vehicle by ID.
func (s *Service) GetVehicle(ctx context.Context, id int64) (*fleet.Vehicle, error) {
	return s.repo.FindVehicleByID(ctx, id)
}

// ListVehicles returns the fleet.
func (s *Service) ListVehicles(ctx context.Context) ([]fleet.Vehicle, error) {
	return s.repo.ListVehicles(ctx)
}

// ---------- Maintenance ----------

// ScheduleMaintenance books a service job and takes the vehicle off the
// road immediately when the job starts now. The vehicle row lock keeps
// two concurrent schedules from both flipping the status.
func (s *Service) ScheduleMaintenance(ctx context.Context, vehicleID int64, req *fleet.ScheduleMaintenanceRequest) (*fleet.Maintenance, error) {
	scheduledFor, err := time.Parse("2006-01-02", req.ScheduledFor)
	if err != nil {
		return nil, xerrors.Validation("scheduled_for", "must be a date in YYYY-MM-DD format")
	}

	now := s.now()
	startsNow := !scheduledFor.After(now)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	v, err := s.repo.FindVehicleByIDForUpdate(ctx, tx, vehicleID)
	if err != nil {
		return nil, err
	}

	m := &fleet.Maintenance{
		VehicleID:    vehicleID,
		Description:  req.Description,
		ScheduledFor: scheduledFor,
		Status:       fleet.MaintenanceScheduled,
	}

	if startsNow {
		if err := v.EnterMaintenance(); err != nil {
			return nil, xerrors.Conflict(err.Error())
		}
		m.Status = fleet.MaintenanceOngoing
		m.StartedAt = sql.NullTime{Time: now, Valid: true}
		if err := s.repo.UpdateVehicleStatusWithTx(ctx, tx, v.ID, v.Status); err != nil {
			return nil, err
		}
	} else if v.Status == fleet.VehicleRetired {
		return nil, xerrors.Conflict("cannot schedule maintenance for a retired vehicle")
	}

	if err := s.repo.CreateMaintenanceWithTx(ctx, tx, m); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, xerrors.Wrap(err, "failed to commit transaction")
	}

	s.logger.Info("maintenance scheduled",
		zap.String("registration_plate", v.RegistrationPlate),
		zap.Time("scheduled_for", scheduledFor),
		zap.Bool("started", startsNow),
	)
	return m, nil
}

// CompleteMaintenance closes out a job and returns the vehicle to
// service in the same transaction.
func (s *Service) CompleteMaintenance(ctx context.Context, maintenanceID int64, req *fleet.CompleteMaintenanceRequest) (*fleet.Maintenance, error) {
	m, err := s.repo.FindMaintenanceByID(ctx, maintenanceID)
	if err != nil {
		return nil, err
	}
	if m.Status == fleet.MaintenanceCompleted || m.Status == fleet.MaintenanceCancelled {
		return nil, xerrors.Conflictf("maintenance record %d is already %s", m.ID, m.Status)
	}

	if req.Cost != "" {
		cost, err := decimal.NewFromString(req.Cost)
		if err != nil || cost.IsNegative() {
			return nil, xerrors.Validation("cost", "must be a non-negative decimal")
		}
		m.Cost = decimal.NullDecimal{Decimal: cost, Valid: true}
	}

	now := s.now()
	wasOngoing := m.Status == fleet.MaintenanceOngoing
	m.Status = fleet.MaintenanceCompleted
	m.CompletedAt = sql.NullTime{Time: now, Valid: true}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if err := s.repo.CompleteMaintenanceWithTx(ctx, tx, m); err != nil {
		return nil, err
	}

	if wasOngoing {
		v, err := s.repo.FindVehicleByIDForUpdate(ctx, tx, m.VehicleID)
		if err != nil {
			return nil, err
		}
		if err := v.ReturnToService(); err == nil {
			if err := s.repo.UpdateVehicleStatusWithTx(ctx, tx, v.ID, v.Status); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, xerrors.Wrap(err, "failed to commit transaction")
	}

	s.logger.Info("maintenance completed",
		zap.Int64("maintenance_id", m.ID),
		zap.Int64("vehicle_id", m.VehicleID),
	)
	return m, nil
}

// ListOngoingMaintenance returns the jobs currently keeping vehicles off
// the road.
func (s *Service) ListOngoingMaintenance(ctx context.Context) ([]fleet.Maintenance, error) {
	return s.repo.ListOngoingMaintenance(ctx, s.now())
}
