// internal/domain/customer/entity.go
package customer

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// Customer is a waste-collection customer. Registration and billing state
// only change through the transition methods below; field writes elsewhere
// are a bug.
type Customer struct {
	ID             int64  `json:"id" db:"id"`
	CustomerNumber string `json:"customer_number" db:"customer_number"`

	// Profile
	FullName       string         `json:"full_name" db:"full_name"`
	PhoneNumber    string         `json:"phone_number" db:"phone_number"`
	AltPhoneNumber sql.NullString `json:"alt_phone_number,omitempty" db:"alt_phone_number"`
	Email          sql.NullString `json:"email,omitempty" db:"email"`

	// Location
	Address   string         `json:"address" db:"address"`
	Estate    sql.NullString `json:"estate,omitempty" db:"estate"`
	Latitude  float64        `json:"latitude" db:"latitude"`
	Longitude float64        `json:"longitude" db:"longitude"`
	RouteID   sql.NullInt64  `json:"route_id,omitempty" db:"route_id"`

	// Registration and billing state
	RegistrationStatus RegistrationStatus `json:"registration_status" db:"registration_status"`
	RegistrationFee    decimal.Decimal    `json:"registration_fee" db:"registration_fee"`
	RegistrationPaid   bool               `json:"registration_paid" db:"registration_paid"`
	RegistrationPaidAt sql.NullTime       `json:"registration_paid_at,omitempty" db:"registration_paid_at"`
	Status             Status             `json:"status" db:"status"`

	// Additional info
	Notes    sql.NullString         `json:"notes,omitempty" db:"notes"`
	Tags     pq.StringArray         `json:"tags,omitempty" db:"tags"`
	Metadata map[string]interface{} `json:"metadata,omitempty" db:"metadata"`

	// Timestamps
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
	DeletedAt sql.NullTime `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ApproveRegistration moves a pending registration to approved and
// activates the customer. Approving an already-decided registration is
// rejected so an admin double-click cannot silently rewrite history.
func (c *Customer) ApproveRegistration() error {
	if c.RegistrationStatus != RegistrationPending {
		return fmt.Errorf("registration is already %s", c.RegistrationStatus)
	}
	c.RegistrationStatus = RegistrationApproved
	c.Status = StatusActive
	return nil
}

// RejectRegistration moves a pending registration to rejected.
func (c *Customer) RejectRegistration() error {
	if c.RegistrationStatus != RegistrationPending {
		return fmt.Errorf("registration is already %s", c.RegistrationStatus)
	}
	c.RegistrationStatus = RegistrationRejected
	c.Status = StatusInactive
	return nil
}

// MarkRegistrationPaid records payment of the registration fee. Payment
// implies approval and activation regardless of the current registration
// status, so a paying customer is never left inactive.
func (c *Customer) MarkRegistrationPaid(now time.Time) {
	c.RegistrationPaid = true
	c.RegistrationPaidAt = sql.NullTime{Time: now, Valid: true}
	c.RegistrationStatus = RegistrationApproved
	c.Status = StatusActive
}

// Suspend takes an active customer out of service without losing history.
func (c *Customer) Suspend() error {
	if c.Status != StatusActive {
		return fmt.Errorf("cannot suspend a %s customer", c.Status)
	}
	c.Status = StatusSuspended
	return nil
}

// Reactivate restores a suspended customer.
func (c *Customer) Reactivate() error {
	if c.Status != StatusSuspended {
		return fmt.Errorf("cannot reactivate a %s customer", c.Status)
	}
	c.Status = StatusActive
	return nil
}

// CheckInvariant verifies registration_paid => approved and active.
func (c *Customer) CheckInvariant() error {
	if c.RegistrationPaid {
		if c.RegistrationStatus != RegistrationApproved {
			return fmt.Errorf("registration paid but status is %s", c.RegistrationStatus)
		}
		if c.Status != StatusActive && c.Status != StatusSuspended {
			return fmt.Errorf("registration paid but customer is %s", c.Status)
		}
	}
	return nil
}

type CustomerStats struct {
	TotalCustomers    int64 `json:"total_customers"`
	ActiveCustomers   int64 `json:"active_customers"`
	PendingApproval   int64 `json:"pending_approval"`
	PaidRegistrations int64 `json:"paid_registrations"`
	NewThisMonth      int64 `json:"new_this_month"`
}
