package customer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newPendingCustomer() *Customer {
	return &Customer{
		ID:                 1,
		CustomerNumber:     "CUS-01TEST",
		FullName:           "Wanjiku Kamau",
		PhoneNumber:        "+254712345678",
		RegistrationStatus: RegistrationPending,
		RegistrationFee:    decimal.NewFromInt(500),
		Status:             StatusInactive,
	}
}

func TestApproveRegistration(t *testing.T) {
	c := newPendingCustomer()

	if err := c.ApproveRegistration(); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if c.RegistrationStatus != RegistrationApproved {
		t.Errorf("expected approved, got %s", c.RegistrationStatus)
	}
	if c.Status != StatusActive {
		t.Errorf("expected active, got %s", c.Status)
	}
	// Approval alone must not mark the fee as paid
	if c.RegistrationPaid {
		t.Error("registration_paid flipped by approval")
	}
}

func TestApproveRegistrationTwice(t *testing.T) {
	c := newPendingCustomer()
	if err := c.ApproveRegistration(); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}
	if err := c.ApproveRegistration(); err == nil {
		t.Error("expected error approving an already-approved registration")
	}
}

func TestRejectAfterApprove(t *testing.T) {
	c := newPendingCustomer()
	if err := c.ApproveRegistration(); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := c.RejectRegistration(); err == nil {
		t.Error("expected error rejecting an approved registration")
	}
}

func TestMarkRegistrationPaid(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		setup func(*Customer)
	}{
		{"from pending", func(c *Customer) {}},
		{"from approved", func(c *Customer) { _ = c.ApproveRegistration() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newPendingCustomer()
			tt.setup(c)
			c.MarkRegistrationPaid(now)

			if !c.RegistrationPaid {
				t.Error("registration_paid not set")
			}
			if !c.RegistrationPaidAt.Valid || !c.RegistrationPaidAt.Time.Equal(now) {
				t.Error("registration_paid_at not set")
			}
			if err := c.CheckInvariant(); err != nil {
				t.Errorf("invariant violated after payment: %v", err)
			}
		})
	}
}

func TestCheckInvariant(t *testing.T) {
	c := newPendingCustomer()
	if err := c.CheckInvariant(); err != nil {
		t.Errorf("unpaid pending customer should satisfy invariant: %v", err)
	}

	// A paid customer that was never approved is corrupt state
	c.RegistrationPaid = true
	if err := c.CheckInvariant(); err == nil {
		t.Error("expected invariant violation: paid but pending")
	}
}

func TestSuspendReactivate(t *testing.T) {
	c := newPendingCustomer()
	if err := c.Suspend(); err == nil {
		t.Error("expected error suspending an inactive customer")
	}

	c.MarkRegistrationPaid(time.Now())
	if err := c.Suspend(); err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	// Suspension must not break the paid invariant
	if err := c.CheckInvariant(); err != nil {
		t.Errorf("invariant violated by suspension: %v", err)
	}
	if err := c.Reactivate(); err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	if c.Status != StatusActive {
		t.Errorf("expected active, got %s", c.Status)
	}
}
