// internal/domain/plan/entity.go
package plan

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a recurring service tier: a fixed monthly price for a number of
// collections per week.
type Plan struct {
	ID                 int64           `json:"id" db:"id"`
	Code               string          `json:"code" db:"code"`
	Name               string          `json:"name" db:"name"`
	Description        sql.NullString  `json:"description,omitempty" db:"description"`
	MonthlyPrice       decimal.Decimal `json:"monthly_price" db:"monthly_price"`
	CollectionsPerWeek int             `json:"collections_per_week" db:"collections_per_week"`
	IsActive           bool            `json:"is_active" db:"is_active"`
	DisplayOrder       int             `json:"display_order" db:"display_order"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

type CreatePlanRequest struct {
	Code               string  `json:"code" binding:"required,max=50"`
	Name               string  `json:"name" binding:"required,max=255"`
	Description        string  `json:"description"`
	MonthlyPrice       string  `json:"monthly_price" binding:"required"`
	CollectionsPerWeek int     `json:"collections_per_week" binding:"required,min=1,max=7"`
	DisplayOrder       int     `json:"display_order"`
}

type UpdatePlanRequest struct {
	Name               *string `json:"name" binding:"omitempty,max=255"`
	Description        *string `json:"description"`
	MonthlyPrice       *string `json:"monthly_price"`
	CollectionsPerWeek *int    `json:"collections_per_week" binding:"omitempty,min=1,max=7"`
	IsActive           *bool   `json:"is_active"`
	DisplayOrder       *int    `json:"display_order"`
}
