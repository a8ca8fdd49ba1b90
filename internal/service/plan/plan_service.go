// internal/service/plan/plan_service.go
package plan

import (
	"context"
	"database/sql"
	"strings"

	"takataka-service/internal/domain/plan"
	xerrors "takataka-service/internal/pkg/errors"
	"takataka-service/internal/repository/postgres"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service manages the plan catalog. Price changes never touch existing
// subscriptions; those carry their own snapshot.
type Service struct {
	repo   *postgres.PlanRepository
	logger *zap.Logger
}

func NewService(repo *postgres.PlanRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create adds a plan to the catalog.
func (s *Service) Create(ctx context.Context, req *plan.CreatePlanRequest) (*plan.Plan, error) {
	price, err := decimal.NewFromString(req.MonthlyPrice)
	if err != nil || !price.IsPositive() {
		return nil, xerrors.Validation("monthly_price", "must be a positive decimal")
	}

	p := &plan.Plan{
		Code:               strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:               req.Name,
		MonthlyPrice:       price,
		CollectionsPerWeek: req.CollectionsPerWeek,
		IsActive:           true,
		DisplayOrder:       req.DisplayOrder,
	}
	if req.Description != "" {
		p.Description = sql.NullString{String: req.Description, Valid: true}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("plan created",
		zap.String("code", p.Code),
		zap.String("monthly_price", p.MonthlyPrice.String()),
	)
	return p, nil
}

// Get returns a plan by ID.
func (s *Service) Get(ctx context.Context, id int64) (*plan.Plan, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByCode returns a plan by its code.
func (s *Service) GetByCode(ctx context.Context, code string) (*plan.Plan, error) {
	return s.repo.FindByCode(ctx, strings.ToUpper(code))
}

// List returns the catalog, optionally only plans open for subscription.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]plan.Plan, error) {
	return s.repo.List(ctx, activeOnly)
}

// Update applies a partial update to a plan.
func (s *Service) Update(ctx context.Context, id int64, req *plan.UpdatePlanRequest) (*plan.Plan, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.MonthlyPrice != nil {
		price, err := decimal.NewFromString(*req.MonthlyPrice)
		if err != nil || !price.IsPositive() {
			return nil, xerrors.Validation("monthly_price", "must be a positive decimal")
		}
		p.MonthlyPrice = price
	}
	if req.CollectionsPerWeek != nil {
		p.CollectionsPerWeek = *req.CollectionsPerWeek
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.DisplayOrder != nil {
		p.DisplayOrder = *req.DisplayOrder
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("plan updated", zap.String("code", p.Code))
	return p, nil
}
