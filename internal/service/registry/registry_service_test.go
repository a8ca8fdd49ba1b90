// internal/service/registry/registry_service_test.go
package registry

import (
	"context"
	"testing"

	"takataka-service/internal/domain/customer"
	"takataka-service/internal/domain/invoice"
	"takataka-service/internal/events"
	xerrors "takataka-service/internal/pkg/errors"
	"takataka-service/internal/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeCustomers struct {
	byID   map[int64]*customer.Customer
	nextID int64
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{byID: map[int64]*customer.Customer{}, nextID: 1}
}

func (f *fakeCustomers) add(c *customer.Customer) *customer.Customer {
	c.ID = f.nextID
	f.nextID++
	f.byID[c.ID] = c
	return c
}

func (f *fakeCustomers) CreateWithTx(ctx context.Context, tx pgx.Tx, c *customer.Customer) error {
	f.add(c)
	return nil
}

func (f *fakeCustomers) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, xerrors.NotFoundf("customer", id)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomers) FindByNumber(ctx context.Context, number string) (*customer.Customer, error) {
	for _, c := range f.byID {
		if c.CustomerNumber == number {
			cp := *c
			return &cp, nil
		}
	}
	return nil, xerrors.NotFoundf("customer", number)
}

func (f *fakeCustomers) UpdateRegistrationState(ctx context.Context, c *customer.Customer) error {
	if _, ok := f.byID[c.ID]; !ok {
		return xerrors.NotFoundf("customer", c.ID)
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCustomers) UpdateProfile(ctx context.Context, c *customer.Customer) error {
	return f.UpdateRegistrationState(ctx, c)
}

func (f *fakeCustomers) List(ctx context.Context, filters *customer.CustomerListFilters) ([]customer.Customer, int64, error) {
	out := []customer.Customer{}
	for _, c := range f.byID {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeCustomers) GetStats(ctx context.Context) (*customer.CustomerStats, error) {
	return &customer.CustomerStats{TotalCustomers: int64(len(f.byID))}, nil
}

func (f *fakeCustomers) SoftDelete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return xerrors.NotFoundf("customer", id)
	}
	delete(f.byID, id)
	return nil
}

type fakeInvoices struct {
	created []*invoice.Invoice
}

func (f *fakeInvoices) CreateWithTx(ctx context.Context, tx pgx.Tx, inv *invoice.Invoice) error {
	inv.ID = int64(len(f.created) + 1)
	f.created = append(f.created, inv)
	return nil
}

type fakeSettings struct {
	decimals map[string]decimal.Decimal
	ints     map[string]int
}

func (f *fakeSettings) Decimal(ctx context.Context, key string, fallback decimal.Decimal) decimal.Decimal {
	if v, ok := f.decimals[key]; ok {
		return v
	}
	return fallback
}

func (f *fakeSettings) Int(ctx context.Context, key string, fallback int) int {
	if v, ok := f.ints[key]; ok {
		return v
	}
	return fallback
}

type recordedEvents struct {
	types []events.Type
}

func (r *recordedEvents) HandleEvent(ctx context.Context, ev events.Event) {
	r.types = append(r.types, ev.Type)
}

func newTestService(t *testing.T) (*Service, *fakeCustomers, *fakeInvoices, *testutil.DB, *recordedEvents) {
	t.Helper()
	customers := newFakeCustomers()
	invoices := &fakeInvoices{}
	settings := &fakeSettings{
		decimals: map[string]decimal.Decimal{"registration_fee": decimal.NewFromInt(750)},
	}
	db := &testutil.DB{}
	bus := events.NewBus(nil)
	rec := &recordedEvents{}
	bus.Subscribe(rec)
	svc := NewService(customers, invoices, settings, db, bus, zap.NewNop())
	return svc, customers, invoices, db, rec
}

func validRequest() *customer.RegisterCustomerRequest {
	lat, lng := -1.2921, 36.8219
	return &customer.RegisterCustomerRequest{
		FullName:    "Wanjiku Kamau",
		PhoneNumber: "+254712345678",
		Address:     "14 Moi Avenue",
		Latitude:    &lat,
		Longitude:   &lng,
	}
}

func TestRegister(t *testing.T) {
	svc, _, invoices, db, rec := newTestService(t)

	c, inv, err := svc.Register(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if c.RegistrationStatus != customer.RegistrationPending {
		t.Errorf("registration status = %s, want pending", c.RegistrationStatus)
	}
	if c.Status != customer.StatusInactive {
		t.Errorf("status = %s, want inactive", c.Status)
	}
	if c.RegistrationPaid {
		t.Error("new customer should not be marked paid")
	}
	if got := c.RegistrationFee.String(); got != "750" {
		t.Errorf("registration fee = %s, want 750", got)
	}

	if inv.InvoiceType != invoice.TypeRegistration {
		t.Errorf("invoice type = %s, want registration", inv.InvoiceType)
	}
	if inv.CustomerID != c.ID {
		t.Errorf("invoice customer = %d, want %d", inv.CustomerID, c.ID)
	}
	if !inv.TotalAmount.Equal(decimal.NewFromInt(750)) {
		t.Errorf("invoice total = %s, want 750", inv.TotalAmount)
	}
	if len(invoices.created) != 1 {
		t.Fatalf("created %d invoices, want 1", len(invoices.created))
	}

	if db.LastTx == nil || !db.LastTx.Committed {
		t.Error("transaction was not committed")
	}
	if len(rec.types) != 2 || rec.types[0] != events.TypeCustomerRegistered || rec.types[1] != events.TypeInvoiceCreated {
		t.Errorf("events = %v", rec.types)
	}
}

func TestRegisterNormalizesLocalPhone(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	req := validRequest()
	req.PhoneNumber = "0712345678"

	c, _, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if c.PhoneNumber != "+254712345678" {
		t.Errorf("phone = %s, want +254712345678", c.PhoneNumber)
	}
}

func TestRegisterRejectsBadPhone(t *testing.T) {
	svc, customers, invoices, _, _ := newTestService(t)

	for _, phone := range []string{"12345", "+15551234567", "07123456789", ""} {
		req := validRequest()
		req.PhoneNumber = phone
		if _, _, err := svc.Register(context.Background(), req); !xerrors.Is(err, xerrors.ErrInvalidInput) {
			t.Errorf("phone %q: err = %v, want invalid input", phone, err)
		}
	}

	if len(customers.byID) != 0 || len(invoices.created) != 0 {
		t.Error("nothing should be persisted on validation failure")
	}
}

func TestRegisterRequiresCoordinates(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	req := validRequest()
	req.Latitude = nil
	if _, _, err := svc.Register(context.Background(), req); !xerrors.Is(err, xerrors.ErrInvalidInput) {
		t.Errorf("err = %v, want invalid input", err)
	}
}

func TestApprove(t *testing.T) {
	svc, customers, _, _, rec := newTestService(t)

	c, _, err := svc.Register(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	approved, err := svc.Approve(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.RegistrationStatus != customer.RegistrationApproved {
		t.Errorf("registration status = %s, want approved", approved.RegistrationStatus)
	}
	if approved.Status != customer.StatusActive {
		t.Errorf("status = %s, want active", approved.Status)
	}

	stored := customers.byID[c.ID]
	if stored.RegistrationStatus != customer.RegistrationApproved {
		t.Error("approval was not persisted")
	}
	if rec.types[len(rec.types)-1] != events.TypeCustomerApproved {
		t.Errorf("last event = %v, want customer.approved", rec.types[len(rec.types)-1])
	}
}

func TestApproveTwiceConflicts(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	c, _, err := svc.Register(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Approve(context.Background(), c.ID); err != nil {
		t.Fatalf("first Approve: %v", err)
	}

	if _, err := svc.Approve(context.Background(), c.ID); !xerrors.Is(err, xerrors.ErrConflict) {
		t.Errorf("second approve: err = %v, want conflict", err)
	}
}

func TestRejectAfterApproveConflicts(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	c, _, err := svc.Register(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Approve(context.Background(), c.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if _, err := svc.Reject(context.Background(), c.ID); !xerrors.Is(err, xerrors.ErrConflict) {
		t.Errorf("reject after approve: err = %v, want conflict", err)
	}
}

func TestApproveUnknownCustomer(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	if _, err := svc.Approve(context.Background(), 404); !xerrors.Is(err, xerrors.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}
