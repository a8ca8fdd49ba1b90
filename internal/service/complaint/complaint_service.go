// internal/service/complaint/complaint_service.go
package complaint

import (
	"context"
	"time"

	"takataka-service/internal/domain/complaint"
	"takataka-service/internal/events"
	xerrors "takataka-service/internal/pkg/errors"
	"takataka-service/internal/repository/postgres"

	"go.uber.org/zap"
)

// Service tracks customer complaints from filing to resolution.
type Service struct {
	repo      *postgres.ComplaintRepository
	customers *postgres.CustomerRepository
	bus       *events.Bus
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo *postgres.ComplaintRepository, customers *postgres.CustomerRepository, bus *events.Bus, logger *zap.Logger) *Service {
	return &Service{repo: repo, customers: customers, bus: bus, logger: logger, now: time.Now}
}

// File opens a complaint for a customer.
func (s *Service) File(ctx context.Context, req *complaint.FileComplaintRequest) (*complaint.Complaint, error) {
	cust, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	c := &complaint.Complaint{
		CustomerID:  cust.ID,
		Category:    req.Category,
		Subject:     req.Subject,
		Description: req.Description,
		Status:      complaint.StatusOpen,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("complaint filed",
		zap.Int64("complaint_id", c.ID),
		zap.String("customer_number", cust.CustomerNumber),
		zap.String("category", string(c.Category)),
	)
	s.bus.Publish(ctx, events.TypeComplaintOpened, map[string]interface{}{"complaint": c})

	return c, nil
}

// Get returns a complaint by ID.
func (s *Service) Get(ctx context.Context, id int64) (*complaint.Complaint, error) {
	return s.repo.FindByID(ctx, id)
}

// Assign puts a complaint in progress under an admin.
func (s *Service) Assign(ctx context.Context, id, adminID int64) (*complaint.Complaint, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.Assign(adminID); err != nil {
		return nil, xerrors.Conflict(err.Error())
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("complaint assigned",
		zap.Int64("complaint_id", c.ID),
		zap.Int64("admin_id", adminID),
	)
	return c, nil
}

// Resolve closes out a complaint with resolution notes.
func (s *Service) Resolve(ctx context.Context, id int64, req *complaint.ResolveComplaintRequest) (*complaint.Complaint, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.Resolve(s.now(), req.ResolutionNotes); err != nil {
		return nil, xerrors.Conflict(err.Error())
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("complaint resolved", zap.Int64("complaint_id", c.ID))
	return c, nil
}

// List returns complaints matching the filters.
func (s *Service) List(ctx context.Context, filters *complaint.ComplaintListFilters) ([]complaint.Complaint, int64, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	return s.repo.List(ctx, filters)
}
