// internal/domain/fleet/entity.go
package fleet

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type DriverStatus string

const (
	DriverActive   DriverStatus = "active"
	DriverOnLeave  DriverStatus = "on_leave"
	DriverInactive DriverStatus = "inactive"
)

// Driver is a collection-truck driver on the payroll.
type Driver struct {
	ID             int64          `json:"id" db:"id"`
	EmployeeNumber string         `json:"employee_number" db:"employee_number"`
	FullName       string         `json:"full_name" db:"full_name"`
	PhoneNumber    string         `json:"phone_number" db:"phone_number"`
	Email          sql.NullString `json:"email,omitempty" db:"email"`
	LicenceNumber  string         `json:"licence_number" db:"licence_number"`
	LicenceExpiry  time.Time      `json:"licence_expiry" db:"licence_expiry"`
	Status         DriverStatus   `json:"status" db:"status"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

type VehicleStatus string

const (
	VehicleActive      VehicleStatus = "active"
	VehicleMaintenance VehicleStatus = "maintenance"
	VehicleRetired     VehicleStatus = "retired"
)

// Vehicle is a truck in the collection fleet.
type Vehicle struct {
	ID                int64         `json:"id" db:"id"`
	RegistrationPlate string        `json:"registration_plate" db:"registration_plate"`
	Make              string        `json:"make" db:"make"`
	Model             string        `json:"model" db:"model"`
	VehicleType       string        `json:"vehicle_type" db:"vehicle_type"` // truck, pickup, tricycle
	CapacityKg        int           `json:"capacity_kg" db:"capacity_kg"`
	Status            VehicleStatus `json:"status" db:"status"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

// EnterMaintenance flips an active vehicle off the road.
func (v *Vehicle) EnterMaintenance() error {
	if v.Status != VehicleActive {
		return fmt.Errorf("vehicle is %s, not active", v.Status)
	}
	v.Status = VehicleMaintenance
	return nil
}

// ReturnToService flips a vehicle back after maintenance completes.
func (v *Vehicle) ReturnToService() error {
	if v.Status != VehicleMaintenance {
		return fmt.Errorf("vehicle is %s, not under maintenance", v.Status)
	}
	v.Status = VehicleActive
	return nil
}

type MaintenanceStatus string

const (
	MaintenanceScheduled MaintenanceStatus = "scheduled"
	MaintenanceOngoing   MaintenanceStatus = "ongoing"
	MaintenanceCompleted MaintenanceStatus = "completed"
	MaintenanceCancelled MaintenanceStatus = "cancelled"
)

// Maintenance is a scheduled or ongoing service job on a vehicle.
type Maintenance struct {
	ID           int64               `json:"id" db:"id"`
	VehicleID    int64               `json:"vehicle_id" db:"vehicle_id"`
	Description  string              `json:"description" db:"description"`
	ScheduledFor time.Time           `json:"scheduled_for" db:"scheduled_for"`
	StartedAt    sql.NullTime        `json:"started_at,omitempty" db:"started_at"`
	CompletedAt  sql.NullTime        `json:"completed_at,omitempty" db:"completed_at"`
	Cost         decimal.NullDecimal `json:"cost,omitempty" db:"cost"`
	Status       MaintenanceStatus   `json:"status" db:"status"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" db:"updated_at"`
}

// IsOngoing reports whether the job currently keeps the vehicle off the
// road (scheduled jobs count once their date has arrived).
func (m *Maintenance) IsOngoing(now time.Time) bool {
	switch m.Status {
	case MaintenanceOngoing:
		return true
	case MaintenanceScheduled:
		return !m.ScheduledFor.After(now)
	default:
		return false
	}
}
