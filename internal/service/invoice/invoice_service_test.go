// internal/service/invoice/invoice_service_test.go
package invoice

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"takataka-service/internal/domain/customer"
	"takataka-service/internal/domain/invoice"
	"takataka-service/internal/events"
	xerrors "takataka-service/internal/pkg/errors"
	"takataka-service/internal/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeInvoices struct {
	byID   map[int64]*invoice.Invoice
	nextID int64
}

func newFakeInvoices() *fakeInvoices {
	return &fakeInvoices{byID: map[int64]*invoice.Invoice{}}
}

func (f *fakeInvoices) Create(ctx context.Context, inv *invoice.Invoice) error {
	f.nextID++
	inv.ID = f.nextID
	cp := *inv
	f.byID[inv.ID] = &cp
	return nil
}

func (f *fakeInvoices) FindByID(ctx context.Context, id int64) (*invoice.Invoice, error) {
	inv, ok := f.byID[id]
	if !ok {
		return nil, xerrors.NotFoundf("invoice", id)
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInvoices) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*invoice.Invoice, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeInvoices) FindByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	for _, inv := range f.byID {
		if inv.InvoiceNumber == number {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, xerrors.NotFoundf("invoice", number)
}

func (f *fakeInvoices) MarkPaidWithTx(ctx context.Context, tx pgx.Tx, id int64, paidAt time.Time) error {
	inv, ok := f.byID[id]
	if !ok || (inv.Status != invoice.StatusPending && inv.Status != invoice.StatusOverdue) {
		return xerrors.Conflictf("invoice %d is not payable", id)
	}
	inv.Status = invoice.StatusPaid
	inv.PaidAt = sql.NullTime{Time: paidAt, Valid: true}
	return nil
}

func (f *fakeInvoices) Cancel(ctx context.Context, id int64) error {
	inv, ok := f.byID[id]
	if !ok || (inv.Status != invoice.StatusPending && inv.Status != invoice.StatusOverdue) {
		return xerrors.Conflictf("invoice %d cannot be cancelled", id)
	}
	inv.Status = invoice.StatusCancelled
	return nil
}

func (f *fakeInvoices) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	var n int64
	for _, inv := range f.byID {
		if inv.Status == invoice.StatusPending && inv.DueDate.Before(asOf) {
			inv.Status = invoice.StatusOverdue
			n++
		}
	}
	return n, nil
}

func (f *fakeInvoices) List(ctx context.Context, filters *invoice.InvoiceListFilters) ([]invoice.Invoice, int64, error) {
	out := []invoice.Invoice{}
	for _, inv := range f.byID {
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

type fakeCustomers struct {
	ids map[int64]bool
}

func (f *fakeCustomers) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	if !f.ids[id] {
		return nil, xerrors.NotFoundf("customer", id)
	}
	return &customer.Customer{ID: id}, nil
}

func newTestService(t *testing.T) (*Service, *fakeInvoices, *testutil.DB) {
	t.Helper()
	store := newFakeInvoices()
	db := &testutil.DB{}
	svc := NewService(store, &fakeCustomers{ids: map[int64]bool{7: true}}, db, events.NewBus(nil), zap.NewNop())
	return svc, store, db
}

func TestCreate(t *testing.T) {
	svc, _, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), &invoice.CreateInvoiceRequest{
		CustomerID:  7,
		InvoiceType: "one_time",
		Amount:      "350.50",
		TaxAmount:   "56.08",
		DueDate:     "2026-09-15",
		Description: "Bulk pickup",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !inv.TotalAmount.Equal(decimal.RequireFromString("406.58")) {
		t.Errorf("total = %s, want 406.58", inv.TotalAmount)
	}
	if inv.Status != invoice.StatusPending {
		t.Errorf("status = %s, want pending", inv.Status)
	}
	if !strings.HasPrefix(inv.InvoiceNumber, "INV-ONE-") {
		t.Errorf("invoice number %q missing INV-ONE- prefix", inv.InvoiceNumber)
	}
}

func TestCreateUnknownCustomer(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), &invoice.CreateInvoiceRequest{
		CustomerID:  99,
		InvoiceType: "one_time",
		Amount:      "100",
		DueDate:     "2026-09-15",
	})
	if !xerrors.Is(err, xerrors.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestCreateRejectsBadAmount(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, amount := range []string{"", "abc", "-5"} {
		_, err := svc.Create(context.Background(), &invoice.CreateInvoiceRequest{
			CustomerID:  7,
			InvoiceType: "one_time",
			Amount:      amount,
			DueDate:     "2026-09-15",
		})
		if !xerrors.Is(err, xerrors.ErrInvalidInput) {
			t.Errorf("amount %q: err = %v, want invalid input", amount, err)
		}
	}
}

func TestMarkPaid(t *testing.T) {
	svc, store, db := newTestService(t)

	inv, err := svc.Create(context.Background(), &invoice.CreateInvoiceRequest{
		CustomerID: 7, InvoiceType: "one_time", Amount: "100", DueDate: "2026-09-15",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	paid, err := svc.MarkPaid(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if paid.Status != invoice.StatusPaid || !paid.PaidAt.Valid {
		t.Errorf("status = %s, paid_at valid = %v", paid.Status, paid.PaidAt.Valid)
	}
	if store.byID[inv.ID].Status != invoice.StatusPaid {
		t.Error("paid status not persisted")
	}
	if !db.LastTx.Committed {
		t.Error("transaction was not committed")
	}
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), &invoice.CreateInvoiceRequest{
		CustomerID: 7, InvoiceType: "one_time", Amount: "100", DueDate: "2026-09-15",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := svc.MarkPaid(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("first MarkPaid: %v", err)
	}
	second, err := svc.MarkPaid(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("second MarkPaid: %v", err)
	}
	if !second.PaidAt.Time.Equal(first.PaidAt.Time) {
		t.Error("second MarkPaid changed paid_at")
	}
}

func TestMarkPaidCancelledInvoiceConflicts(t *testing.T) {
	svc, _, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), &invoice.CreateInvoiceRequest{
		CustomerID: 7, InvoiceType: "one_time", Amount: "100", DueDate: "2026-09-15",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), inv.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if _, err := svc.MarkPaid(context.Background(), inv.ID); !xerrors.Is(err, xerrors.ErrConflict) {
		t.Errorf("err = %v, want conflict", err)
	}
}

func TestMarkOverdue(t *testing.T) {
	svc, store, _ := newTestService(t)
	svc.now = func() time.Time { return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC) }

	due, err := svc.Create(context.Background(), &invoice.CreateInvoiceRequest{
		CustomerID: 7, InvoiceType: "one_time", Amount: "100", DueDate: "2026-09-15",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), &invoice.CreateInvoiceRequest{
		CustomerID: 7, InvoiceType: "one_time", Amount: "100", DueDate: "2026-10-15",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := svc.MarkOverdue(context.Background())
	if err != nil {
		t.Fatalf("MarkOverdue: %v", err)
	}
	if n != 1 {
		t.Errorf("flipped %d invoices, want 1", n)
	}
	if store.byID[due.ID].Status != invoice.StatusOverdue {
		t.Error("past-due invoice not flipped")
	}
}

func TestMarkPaidOverdueInvoice(t *testing.T) {
	svc, store, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), &invoice.CreateInvoiceRequest{
		CustomerID: 7, InvoiceType: "one_time", Amount: "100", DueDate: "2026-09-15",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	store.byID[inv.ID].Status = invoice.StatusOverdue

	paid, err := svc.MarkPaid(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if paid.Status != invoice.StatusPaid {
		t.Errorf("status = %s, want paid", paid.Status)
	}
}
