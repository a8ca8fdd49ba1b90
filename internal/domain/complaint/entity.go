// internal/domain/complaint/entity.go
package complaint

import (
	"database/sql"
	"fmt"
	"time"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

type Category string

const (
	CategoryMissedCollection Category = "missed_collection"
	CategoryBilling          Category = "billing"
	CategoryStaffConduct     Category = "staff_conduct"
	CategorySpillage         Category = "spillage"
	CategoryOther            Category = "other"
)

// Complaint is a customer-raised issue tracked to resolution.
type Complaint struct {
	ID              int64          `json:"id" db:"id"`
	CustomerID      int64          `json:"customer_id" db:"customer_id"`
	Category        Category       `json:"category" db:"category"`
	Subject         string         `json:"subject" db:"subject"`
	Description     string         `json:"description" db:"description"`
	Status          Status         `json:"status" db:"status"`
	AssignedTo      sql.NullInt64  `json:"assigned_to,omitempty" db:"assigned_to"`
	ResolutionNotes sql.NullString `json:"resolution_notes,omitempty" db:"resolution_notes"`
	ResolvedAt      sql.NullTime   `json:"resolved_at,omitempty" db:"resolved_at"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// Assign puts the complaint in progress under an admin.
func (c *Complaint) Assign(adminID int64) error {
	if c.Status == StatusResolved || c.Status == StatusClosed {
		return fmt.Errorf("complaint is already %s", c.Status)
	}
	c.AssignedTo = sql.NullInt64{Int64: adminID, Valid: true}
	c.Status = StatusInProgress
	return nil
}

// Resolve closes out the complaint with notes.
func (c *Complaint) Resolve(now time.Time, notes string) error {
	if c.Status == StatusResolved || c.Status == StatusClosed {
		return fmt.Errorf("complaint is already %s", c.Status)
	}
	c.Status = StatusResolved
	c.ResolutionNotes = sql.NullString{String: notes, Valid: true}
	c.ResolvedAt = sql.NullTime{Time: now, Valid: true}
	return nil
}

type FileComplaintRequest struct {
	CustomerID  int64    `json:"customer_id" binding:"required"`
	Category    Category `json:"category" binding:"required,oneof=missed_collection billing staff_conduct spillage other"`
	Subject     string   `json:"subject" binding:"required,max=255"`
	Description string   `json:"description" binding:"required,max=2000"`
}

type ResolveComplaintRequest struct {
	ResolutionNotes string `json:"resolution_notes" binding:"required,max=2000"`
}

type ComplaintListFilters struct {
	CustomerID *int64 `form:"customer_id"`
	Status     string `form:"status" binding:"omitempty,oneof=open in_progress resolved closed"`
	Category   string `form:"category"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size" binding:"omitempty,max=100"`
}
