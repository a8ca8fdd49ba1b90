// internal/domain/settings/entity.go
package settings

import (
	"database/sql"
	"time"
)

// Well-known setting keys.
const (
	KeyRegistrationFee = "registration_fee"
	KeyTaxRate         = "tax_rate"
	KeyInvoiceDueDays  = "invoice_due_days"
	KeyCompanyName     = "company_name"
)

// Setting is a single row in the key-value settings store.
type Setting struct {
	Key         string         `json:"key" db:"key"`
	Value       string         `json:"value" db:"value"`
	Description sql.NullString `json:"description,omitempty" db:"description"`
	UpdatedBy   sql.NullInt64  `json:"updated_by,omitempty" db:"updated_by"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

type UpsertSettingRequest struct {
	Value       string `json:"value" binding:"required,max=1000"`
	Description string `json:"description" binding:"max=500"`
}
