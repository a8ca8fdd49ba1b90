// internal/domain/route/entity.go
package route

import (
	"database/sql"
	"time"
)

// Route is a collection route: an area served on a given weekday by an
// assigned driver and vehicle.
type Route struct {
	ID            int64          `json:"id" db:"id"`
	Name          string         `json:"name" db:"name"`
	Area          string         `json:"area" db:"area"`
	CollectionDay string         `json:"collection_day" db:"collection_day"` // monday..sunday
	Description   sql.NullString `json:"description,omitempty" db:"description"`
	DriverID      sql.NullInt64  `json:"driver_id,omitempty" db:"driver_id"`
	VehicleID     sql.NullInt64  `json:"vehicle_id,omitempty" db:"vehicle_id"`
	IsActive      bool           `json:"is_active" db:"is_active"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// RouteSummary carries customer counts for list views.
type RouteSummary struct {
	Route
	CustomerCount int64 `json:"customer_count"`
}

type CreateRouteRequest struct {
	Name          string `json:"name" binding:"required,max=255"`
	Area          string `json:"area" binding:"required,max=255"`
	CollectionDay string `json:"collection_day" binding:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Description   string `json:"description"`
	DriverID      *int64 `json:"driver_id"`
	VehicleID     *int64 `json:"vehicle_id"`
}

type UpdateRouteRequest struct {
	Name          *string `json:"name" binding:"omitempty,max=255"`
	Area          *string `json:"area" binding:"omitempty,max=255"`
	CollectionDay *string `json:"collection_day" binding:"omitempty,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Description   *string `json:"description"`
	DriverID      *int64  `json:"driver_id"`
	VehicleID     *int64  `json:"vehicle_id"`
	IsActive      *bool   `json:"is_active"`
}

type AssignCustomerRequest struct {
	CustomerID int64 `json:"customer_id" binding:"required"`
}
