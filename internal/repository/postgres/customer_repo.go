// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"takataka-service/internal/domain/customer"
	xerrors "takataka-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `
	id, customer_number, full_name, phone_number, alt_phone_number, email,
	address, estate, latitude, longitude, route_id,
	registration_status, registration_fee, registration_paid, registration_paid_at, status,
	notes, tags, metadata, created_at, updated_at, deleted_at`

// Create inserts a new customer outside a transaction.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	return r.create(ctx, r.db, c)
}

// CreateWithTx inserts a new customer inside the caller's transaction.
func (r *CustomerRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, c *customer.Customer) error {
	return r.create(ctx, tx, c)
}

func (r *CustomerRepository) create(ctx context.Context, q Queryer, c *customer.Customer) error {
	query := `
		INSERT INTO customers (
			customer_number, full_name, phone_number, alt_phone_number, email,
			address, estate, latitude, longitude, route_id,
			registration_status, registration_fee, registration_paid, status,
			notes, tags, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at
	`

	metadataJSON, err := marshalMetadata(c.Metadata)
	if err != nil {
		return err
	}

	err = q.QueryRow(
		ctx, query,
		c.CustomerNumber, c.FullName, c.PhoneNumber, c.AltPhoneNumber, c.Email,
		c.Address, c.Estate, c.Latitude, c.Longitude, c.RouteID,
		c.RegistrationStatus, c.RegistrationFee, c.RegistrationPaid, c.Status,
		c.Notes, c.Tags, metadataJSON,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if isUniqueViolation(err) {
		return xerrors.Conflict("customer with this number or phone already exists")
	}
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// FindByID retrieves a customer by ID.
func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 AND deleted_at IS NULL`
	return r.scanOne(ctx, r.db, query, id, id)
}

// FindByIDForUpdate locks the customer row for the duration of tx. Used to
// serialize concurrent subscribe calls for the same customer.
func (r *CustomerRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	return r.scanOne(ctx, tx, query, id, id)
}

// FindByNumber retrieves a customer by customer number.
func (r *CustomerRepository) FindByNumber(ctx context.Context, number string) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE customer_number = $1 AND deleted_at IS NULL`
	return r.scanOne(ctx, r.db, query, number, number)
}

// FindByPhone retrieves a customer by primary phone number.
func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE phone_number = $1 AND deleted_at IS NULL`
	return r.scanOne(ctx, r.db, query, phone, phone)
}

func (r *CustomerRepository) scanOne(ctx context.Context, q Queryer, query string, arg interface{}, id interface{}) (*customer.Customer, error) {
	var c customer.Customer
	var metadataJSON []byte

	err := q.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.CustomerNumber, &c.FullName, &c.PhoneNumber, &c.AltPhoneNumber, &c.Email,
		&c.Address, &c.Estate, &c.Latitude, &c.Longitude, &c.RouteID,
		&c.RegistrationStatus, &c.RegistrationFee, &c.RegistrationPaid, &c.RegistrationPaidAt, &c.Status,
		&c.Notes, &c.Tags, &metadataJSON, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "customer", id)
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &c.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &c, nil
}

// UpdateProfile persists profile fields mutated by UpdateCustomerRequest.
func (r *CustomerRepository) UpdateProfile(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers SET
			full_name = $2, phone_number = $3, alt_phone_number = $4, email = $5,
			address = $6, estate = $7, latitude = $8, longitude = $9,
			notes = $10, tags = $11, metadata = $12, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	metadataJSON, err := marshalMetadata(c.Metadata)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query,
		c.ID, c.FullName, c.PhoneNumber, c.AltPhoneNumber, c.Email,
		c.Address, c.Estate, c.Latitude, c.Longitude,
		c.Notes, c.Tags, metadataJSON,
	)
	if isUniqueViolation(err) {
		return xerrors.Conflict("another customer already uses this phone number")
	}
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.NotFoundf("customer", c.ID)
	}
	return nil
}

// UpdateRegistrationState persists the registration state machine fields.
func (r *CustomerRepository) UpdateRegistrationState(ctx context.Context, c *customer.Customer) error {
	return r.updateRegistrationState(ctx, r.db, c)
}

// UpdateRegistrationStateWithTx persists registration state inside the
// caller's transaction (payment confirmation cascade).
func (r *CustomerRepository) UpdateRegistrationStateWithTx(ctx context.Context, tx pgx.Tx, c *customer.Customer) error {
	return r.updateRegistrationState(ctx, tx, c)
}

func (r *CustomerRepository) updateRegistrationState(ctx context.Context, q Queryer, c *customer.Customer) error {
	query := `
		UPDATE customers SET
			registration_status = $2, registration_paid = $3,
			registration_paid_at = $4, status = $5, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := q.Exec(ctx, query,
		c.ID, c.RegistrationStatus, c.RegistrationPaid, c.RegistrationPaidAt, c.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update registration state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.NotFoundf("customer", c.ID)
	}
	return nil
}

// AssignRoute sets or clears the customer's collection route.
func (r *CustomerRepository) AssignRoute(ctx context.Context, customerID int64, routeID *int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE customers SET route_id = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`,
		customerID, routeID,
	)
	if err != nil {
		return fmt.Errorf("failed to assign route: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.NotFoundf("customer", customerID)
	}
	return nil
}

// List retrieves customers with filters and pagination.
func (r *CustomerRepository) List(ctx context.Context, filters *customer.CustomerListFilters) ([]customer.Customer, int64, error) {
	conditions := []string{"deleted_at IS NULL"}
	args := []interface{}{}
	argPos := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filters.Status)
		argPos++
	}
	if filters.RegistrationStatus != "" {
		conditions = append(conditions, fmt.Sprintf("registration_status = $%d", argPos))
		args = append(args, filters.RegistrationStatus)
		argPos++
	}
	if filters.RegistrationPaid != nil {
		conditions = append(conditions, fmt.Sprintf("registration_paid = $%d", argPos))
		args = append(args, *filters.RegistrationPaid)
		argPos++
	}
	if filters.RouteID != nil {
		conditions = append(conditions, fmt.Sprintf("route_id = $%d", argPos))
		args = append(args, *filters.RouteID)
		argPos++
	}
	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(full_name ILIKE $%d OR phone_number ILIKE $%d OR customer_number ILIKE $%d)",
			argPos, argPos, argPos,
		))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	sortBy := "created_at"
	switch filters.SortBy {
	case "full_name", "customer_number", "created_at":
		sortBy = filters.SortBy
	}
	sortOrder := "DESC"
	if strings.EqualFold(filters.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf(
		`SELECT %s FROM customers WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		customerColumns, where, sortBy, sortOrder, argPos, argPos+1,
	)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []customer.Customer{}
	for rows.Next() {
		var c customer.Customer
		var metadataJSON []byte
		if err := rows.Scan(
			&c.ID, &c.CustomerNumber, &c.FullName, &c.PhoneNumber, &c.AltPhoneNumber, &c.Email,
			&c.Address, &c.Estate, &c.Latitude, &c.Longitude, &c.RouteID,
			&c.RegistrationStatus, &c.RegistrationFee, &c.RegistrationPaid, &c.RegistrationPaidAt, &c.Status,
			&c.Notes, &c.Tags, &metadataJSON, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &c.Metadata); err != nil {
				return nil, 0, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		customers = append(customers, c)
	}

	return customers, total, rows.Err()
}

// GetStats aggregates customer counts for the dashboard.
func (r *CustomerRepository) GetStats(ctx context.Context) (*customer.CustomerStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE registration_status = 'pending'),
			COUNT(*) FILTER (WHERE registration_paid),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('month', NOW()))
		FROM customers
		WHERE deleted_at IS NULL
	`

	var stats customer.CustomerStats
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalCustomers, &stats.ActiveCustomers, &stats.PendingApproval,
		&stats.PaidRegistrations, &stats.NewThisMonth,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer stats: %w", err)
	}

	return &stats, nil
}

// SoftDelete marks a customer deleted without breaking invoice and payment
// references.
func (r *CustomerRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE customers SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.NotFoundf("customer", id)
	}
	return nil
}

func marshalMetadata(m map[string]interface{}) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return b, nil
}
