// internal/service/registry/registry_service.go
package registry

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"time"

	"takataka-service/internal/domain/customer"
	"takataka-service/internal/domain/invoice"
	"takataka-service/internal/domain/settings"
	"takataka-service/internal/events"
	xerrors "takataka-service/internal/pkg/errors"
	"takataka-service/internal/pkg/ref"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Defaults used when the settings store has no value for a key.
var defaultRegistrationFee = decimal.NewFromInt(500)

const defaultDueDays = 7

// Kenyan mobile numbers: +2547XXXXXXXX, +2541XXXXXXXX, or the local
// 07XX/01XX form which is normalized to +254.
var phonePattern = regexp.MustCompile(`^(?:\+254|0)(7|1)\d{8}$`)

// CustomerStore is the persistence surface the registry needs.
type CustomerStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, c *customer.Customer) error
	FindByID(ctx context.Context, id int64) (*customer.Customer, error)
	FindByNumber(ctx context.Context, number string) (*customer.Customer, error)
	UpdateRegistrationState(ctx context.Context, c *customer.Customer) error
	UpdateProfile(ctx context.Context, c *customer.Customer) error
	List(ctx context.Context, filters *customer.CustomerListFilters) ([]customer.Customer, int64, error)
	GetStats(ctx context.Context) (*customer.CustomerStats, error)
	SoftDelete(ctx context.Context, id int64) error
}

// InvoiceStore creates the registration invoice inside the registry's
// transaction.
type InvoiceStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, inv *invoice.Invoice) error
}

// SettingsProvider resolves billing parameters at registration time.
type SettingsProvider interface {
	Decimal(ctx context.Context, key string, fallback decimal.Decimal) decimal.Decimal
	Int(ctx context.Context, key string, fallback int) int
}

// TxBeginner starts database transactions.
type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// Service owns the customer registration lifecycle: register, approve or
// reject, profile updates, and the registration-fee invoice raised
// atomically with each new customer.
type Service struct {
	customers CustomerStore
	invoices  InvoiceStore
	settings  SettingsProvider
	db        TxBeginner
	bus       *events.Bus
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(customers CustomerStore, invoices InvoiceStore, settings SettingsProvider, db TxBeginner, bus *events.Bus, logger *zap.Logger) *Service {
	return &Service{
		customers: customers,
		invoices:  invoices,
		settings:  settings,
		db:        db,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates a pending customer and their registration-fee invoice
// in one transaction. The fee is snapshotted on the customer row so a
// later fee change never reprices an in-flight registration.
func (s *Service) Register(ctx context.Context, req *customer.RegisterCustomerRequest) (*customer.Customer, *invoice.Invoice, error) {
	phone, err := normalizePhone(req.PhoneNumber)
	if err != nil {
		return nil, nil, err
	}
	if req.Latitude == nil || req.Longitude == nil {
		return nil, nil, xerrors.Validation("latitude", "collection point coordinates are required")
	}

	fee := s.settings.Decimal(ctx, settings.KeyRegistrationFee, defaultRegistrationFee)
	dueDays := s.settings.Int(ctx, settings.KeyInvoiceDueDays, defaultDueDays)
	now := s.now()

	c := &customer.Customer{
		CustomerNumber:     ref.New(ref.PrefixCustomer),
		FullName:           strings.TrimSpace(req.FullName),
		PhoneNumber:        phone,
		Address:            strings.TrimSpace(req.Address),
		Latitude:           *req.Latitude,
		Longitude:          *req.Longitude,
		RegistrationStatus: customer.RegistrationPending,
		RegistrationFee:    fee,
		Status:             customer.StatusInactive,
		Tags:               req.Tags,
		Metadata:           req.Metadata,
	}
	if req.AltPhoneNumber != "" {
		alt, err := normalizePhone(req.AltPhoneNumber)
		if err != nil {
			return nil, nil, xerrors.Validation("alt_phone_number", "must be a valid Kenyan phone number")
		}
		c.AltPhoneNumber = sql.NullString{String: alt, Valid: true}
	}
	if req.Email != "" {
		c.Email = sql.NullString{String: strings.ToLower(req.Email), Valid: true}
	}
	if req.Estate != "" {
		c.Estate = sql.NullString{String: req.Estate, Valid: true}
	}
	if req.Notes != "" {
		c.Notes = sql.NullString{String: req.Notes, Valid: true}
	}

	inv := invoice.New(0, invoice.TypeRegistration, fee, decimal.Zero,
		now.AddDate(0, 0, dueDays), "Registration fee")
	inv.InvoiceNumber = ref.Invoice(invoice.TypeRegistration.TypeMarker())

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, nil, xerrors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if err := s.customers.CreateWithTx(ctx, tx, c); err != nil {
		return nil, nil, err
	}
	inv.CustomerID = c.ID
	if err := s.invoices.CreateWithTx(ctx, tx, inv); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, xerrors.Wrap(err, "failed to commit transaction")
	}

	s.logger.Info("customer registered",
		zap.String("customer_number", c.CustomerNumber),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("registration_fee", fee.String()),
	)
	s.bus.Publish(ctx, events.TypeCustomerRegistered, map[string]interface{}{"customer": c})
	s.bus.Publish(ctx, events.TypeInvoiceCreated, map[string]interface{}{"invoice": inv})

	return c, inv, nil
}

// Approve moves a pending registration to approved. Approving a
// registration that is already decided is a conflict, not a no-op, so an
// admin sees that someone else got there first.
func (s *Service) Approve(ctx context.Context, customerID int64) (*customer.Customer, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := c.ApproveRegistration(); err != nil {
		return nil, xerrors.Conflict(err.Error())
	}
	if err := s.customers.UpdateRegistrationState(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("registration approved", zap.String("customer_number", c.CustomerNumber))
	s.bus.Publish(ctx, events.TypeCustomerApproved, map[string]interface{}{"customer": c})
	return c, nil
}

// Reject moves a pending registration to rejected.
func (s *Service) Reject(ctx context.Context, customerID int64) (*customer.Customer, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := c.RejectRegistration(); err != nil {
		return nil, xerrors.Conflict(err.Error())
	}
	if err := s.customers.UpdateRegistrationState(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("registration rejected", zap.String("customer_number", c.CustomerNumber))
	s.bus.Publish(ctx, events.TypeCustomerRejected, map[string]interface{}{"customer": c})
	return c, nil
}

// Get returns a customer by ID.
func (s *Service) Get(ctx context.Context, id int64) (*customer.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

// GetByNumber returns a customer by customer number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*customer.Customer, error) {
	return s.customers.FindByNumber(ctx, number)
}

// Update applies a partial profile update. Registration and billing state
// are not touchable through this path.
func (s *Service) Update(ctx context.Context, id int64, req *customer.UpdateCustomerRequest) (*customer.Customer, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		c.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.PhoneNumber != nil {
		phone, err := normalizePhone(*req.PhoneNumber)
		if err != nil {
			return nil, err
		}
		c.PhoneNumber = phone
	}
	if req.AltPhoneNumber != nil {
		if *req.AltPhoneNumber == "" {
			c.AltPhoneNumber = sql.NullString{}
		} else {
			alt, err := normalizePhone(*req.AltPhoneNumber)
			if err != nil {
				return nil, xerrors.Validation("alt_phone_number", "must be a valid Kenyan phone number")
			}
			c.AltPhoneNumber = sql.NullString{String: alt, Valid: true}
		}
	}
	if req.Email != nil {
		c.Email = sql.NullString{String: strings.ToLower(*req.Email), Valid: *req.Email != ""}
	}
	if req.Address != nil {
		c.Address = strings.TrimSpace(*req.Address)
	}
	if req.Estate != nil {
		c.Estate = sql.NullString{String: *req.Estate, Valid: *req.Estate != ""}
	}
	if req.Latitude != nil {
		c.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		c.Longitude = *req.Longitude
	}
	if req.Notes != nil {
		c.Notes = sql.NullString{String: *req.Notes, Valid: *req.Notes != ""}
	}
	if req.Tags != nil {
		c.Tags = req.Tags
	}
	if req.Metadata != nil {
		c.Metadata = req.Metadata
	}

	if err := s.customers.UpdateProfile(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Suspend takes an active customer out of service.
func (s *Service) Suspend(ctx context.Context, id int64) (*customer.Customer, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Suspend(); err != nil {
		return nil, xerrors.Conflict(err.Error())
	}
	if err := s.customers.UpdateRegistrationState(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("customer suspended", zap.String("customer_number", c.CustomerNumber))
	return c, nil
}

// Reactivate restores a suspended customer.
func (s *Service) Reactivate(ctx context.Context, id int64) (*customer.Customer, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Reactivate(); err != nil {
		return nil, xerrors.Conflict(err.Error())
	}
	if err := s.customers.UpdateRegistrationState(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("customer reactivated", zap.String("customer_number", c.CustomerNumber))
	return c, nil
}

// Delete soft-deletes a customer, keeping invoice and payment history
// intact.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.customers.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("customer deleted", zap.Int64("customer_id", id))
	return nil
}

// List returns customers matching the filters.
func (s *Service) List(ctx context.Context, filters *customer.CustomerListFilters) (*customer.CustomerListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	customers, total, err := s.customers.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &customer.CustomerListResponse{
		Customers:  customers,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: int((total + int64(filters.PageSize) - 1) / int64(filters.PageSize)),
	}, nil
}

// Stats returns the dashboard aggregates.
func (s *Service) Stats(ctx context.Context) (*customer.CustomerStats, error) {
	return s.customers.GetStats(ctx)
}

// normalizePhone validates a Kenyan phone number and returns it in
// +254 form.
func normalizePhone(phone string) (string, error) {
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if !phonePattern.MatchString(phone) {
		return "", xerrors.Validation("phone_number", "must be a valid Kenyan phone number")
	}
	if strings.HasPrefix(phone, "0") {
		phone = "+254" + phone[1:]
	}
	return phone, nil
}
