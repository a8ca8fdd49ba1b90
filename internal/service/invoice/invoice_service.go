// internal/service/invoice/invoice_service.go
package invoice

import (
	"context"
	"time"

	"takataka-service/internal/domain/customer"
	"takataka-service/internal/domain/invoice"
	"takataka-service/internal/events"
	xerrors "takataka-service/internal/pkg/errors"
	"takataka-service/internal/pkg/ref"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceStore is the persistence surface the ledger needs.
type InvoiceStore interface {
	Create(ctx context.Context, inv *invoice.Invoice) error
	FindByID(ctx context.Context, id int64) (*invoice.Invoice, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*invoice.Invoice, error)
	FindByNumber(ctx context.Context, number string) (*invoice.Invoice, error)
	MarkPaidWithTx(ctx context.Context, tx pgx.Tx, id int64, paidAt time.Time) error
	Cancel(ctx context.Context, id int64) error
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
	List(ctx context.Context, filters *invoice.InvoiceListFilters) ([]invoice.Invoice, int64, error)
}

// CustomerStore is the slice of the customer repository the ledger needs.
type CustomerStore interface {
	FindByID(ctx context.Context, id int64) (*customer.Customer, error)
}

// TxBeginner starts database transactions.
type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// Service is the billing ledger. Invoices are the single source of truth
// for what a customer owes; everything that charges a customer goes
// through here.
type Service struct {
	invoices  InvoiceStore
	customers CustomerStore
	db        TxBeginner
	bus       *events.Bus
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(invoices InvoiceStore, customers CustomerStore, db TxBeginner, bus *events.Bus, logger *zap.Logger) *Service {
	return &Service{
		invoices:  invoices,
		customers: customers,
		db:        db,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

// Create raises a one-off invoice against a customer.
func (s *Service) Create(ctx context.Context, req *invoice.CreateInvoiceRequest) (*invoice.Invoice, error) {
	if _, err := s.customers.FindByID(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		return nil, xerrors.Validation("amount", "must be a non-negative decimal")
	}

	taxAmount := decimal.Zero
	if req.TaxAmount != "" {
		taxAmount, err = decimal.NewFromString(req.TaxAmount)
		if err != nil || taxAmount.IsNegative() {
			return nil, xerrors.Validation("tax_amount", "must be a non-negative decimal")
		}
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, xerrors.Validation("due_date", "must be a date in YYYY-MM-DD format")
	}

	inv := invoice.New(req.CustomerID, invoice.Type(req.InvoiceType), amount, taxAmount, dueDate, req.Description)
	inv.InvoiceNumber = ref.Invoice(inv.InvoiceType.TypeMarker())

	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Int64("customer_id", inv.CustomerID),
		zap.String("total_amount", inv.TotalAmount.String()),
	)
	s.bus.Publish(ctx, events.TypeInvoiceCreated, map[string]interface{}{"invoice": inv})

	return inv, nil
}

// Get returns an invoice by ID.
func (s *Service) Get(ctx context.Context, id int64) (*invoice.Invoice, error) {
	return s.invoices.FindByID(ctx, id)
}

// GetByNumber returns an invoice by invoice number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	return s.invoices.FindByNumber(ctx, number)
}

// MarkPaid settles an invoice directly, outside payment reconciliation
// (e.g. an admin recording a waiver). Marking an already-paid invoice is
// a no-op so retries are safe.
func (s *Service) MarkPaid(ctx context.Context, id int64) (*invoice.Invoice, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	inv, changed, err := s.MarkPaidTx(ctx, tx, id, s.now())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, xerrors.Wrap(err, "failed to commit transaction")
	}

	if changed {
		s.logger.Info("invoice marked paid",
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.Int64("customer_id", inv.CustomerID),
		)
		s.bus.Publish(ctx, events.TypeInvoicePaid, map[string]interface{}{"invoice": inv})
	}
	return inv, nil
}

// MarkPaidTx settles an invoice inside the caller's transaction. It locks
// the invoice row, so concurrent settlements of the same invoice
// serialize. Returns the invoice and whether this call changed it; an
// already-paid invoice returns changed=false with no error, a cancelled
// one returns a conflict. The caller publishes events after commit.
func (s *Service) MarkPaidTx(ctx context.Context, tx pgx.Tx, id int64, paidAt time.Time) (*invoice.Invoice, bool, error) {
	inv, err := s.invoices.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}

	if inv.Status == invoice.StatusPaid {
		return inv, false, nil
	}
	if !inv.CanTransitionTo(invoice.StatusPaid) {
		return nil, false, xerrors.Conflictf("invoice %s is %s and cannot be paid", inv.InvoiceNumber, inv.Status)
	}

	if err := s.invoices.MarkPaidWithTx(ctx, tx, id, paidAt); err != nil {
		return nil, false, err
	}

	inv.Status = invoice.StatusPaid
	inv.PaidAt.Time = paidAt
	inv.PaidAt.Valid = true
	return inv, true, nil
}

// Cancel voids an unpaid invoice.
func (s *Service) Cancel(ctx context.Context, id int64) (*invoice.Invoice, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.CanTransitionTo(invoice.StatusCancelled) {
		return nil, xerrors.Conflictf("invoice %s is %s and cannot be cancelled", inv.InvoiceNumber, inv.Status)
	}

	if err := s.invoices.Cancel(ctx, id); err != nil {
		return nil, err
	}
	inv.Status = invoice.StatusCancelled

	s.logger.Info("invoice cancelled", zap.String("invoice_number", inv.InvoiceNumber))
	return inv, nil
}

// MarkOverdue flips pending invoices past their due date. Meant to be
// called from a daily scheduler.
func (s *Service) MarkOverdue(ctx context.Context) (int64, error) {
	n, err := s.invoices.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("invoices marked overdue", zap.Int64("count", n))
	}
	return n, nil
}

// List returns invoices matching the filters.
func (s *Service) List(ctx context.Context, filters *invoice.InvoiceListFilters) (*invoice.InvoiceListResponse, error) {
	normalizePaging(&filters.Page, &filters.PageSize)

	invoices, total, err := s.invoices.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &invoice.InvoiceListResponse{
		Invoices:   invoices,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: int((total + int64(filters.PageSize) - 1) / int64(filters.PageSize)),
	}, nil
}

func normalizePaging(page, pageSize *int) {
	if *page < 1 {
		*page = 1
	}
	if *pageSize < 1 || *pageSize > 100 {
		*pageSize = 20
	}
}
