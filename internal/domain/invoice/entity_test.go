package invoice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewComputesTotal(t *testing.T) {
	inv := New(1, TypeMonthlyPlan, decimal.NewFromInt(1000), decimal.NewFromInt(160), time.Now().AddDate(0, 0, 7), "August collection")

	if !inv.TotalAmount.Equal(decimal.NewFromInt(1160)) {
		t.Errorf("expected total 1160, got %s", inv.TotalAmount)
	}
	if inv.Status != StatusPending {
		t.Errorf("expected pending, got %s", inv.Status)
	}
	if err := inv.CheckInvariant(); err != nil {
		t.Errorf("fresh invoice violates invariant: %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name        string
		from        Status
		to          Status
		shouldAllow bool
	}{
		{"pending to paid", StatusPending, StatusPaid, true},
		{"pending to overdue", StatusPending, StatusOverdue, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"overdue to paid", StatusOverdue, StatusPaid, true},
		{"overdue to cancelled", StatusOverdue, StatusCancelled, true},
		{"overdue to pending", StatusOverdue, StatusPending, false},
		{"paid to pending", StatusPaid, StatusPending, false},
		{"paid to cancelled", StatusPaid, StatusCancelled, false},
		{"cancelled to paid", StatusCancelled, StatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &Invoice{Status: tt.from}
			if got := inv.CanTransitionTo(tt.to); got != tt.shouldAllow {
				t.Errorf("CanTransitionTo(%s) from %s = %v, want %v", tt.to, tt.from, got, tt.shouldAllow)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []Status{StatusPaid, StatusCancelled} {
		if !(&Invoice{Status: s}).IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusOverdue} {
		if (&Invoice{Status: s}).IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestTypeMarker(t *testing.T) {
	tests := []struct {
		typ    Type
		marker string
	}{
		{TypeRegistration, "REG"},
		{TypeMonthlyPlan, "PLN"},
		{TypeOneTime, "ONE"},
	}
	for _, tt := range tests {
		if got := tt.typ.TypeMarker(); got != tt.marker {
			t.Errorf("TypeMarker(%s) = %s, want %s", tt.typ, got, tt.marker)
		}
	}
}
