// internal/service/route/route_service.go
package route

import (
	"context"
	"database/sql"

	"takataka-service/internal/domain/customer"
	"takataka-service/internal/domain/route"
	xerrors "takataka-service/internal/pkg/errors"
	"takataka-service/internal/repository/postgres"

	"go.uber.org/zap"
)

// Service manages collection routes and customer-to-route assignment.
type Service struct {
	routes    *postgres.RouteRepository
	customers *postgres.CustomerRepository
	fleet     *postgres.FleetRepository
	logger    *zap.Logger
}

func NewService(routes *postgres.RouteRepository, customers *postgres.CustomerRepository, fleet *postgres.FleetRepository, logger *zap.Logger) *Service {
	return &Service{routes: routes, customers: customers, fleet: fleet, logger: logger}
}

// Create adds a collection route. Driver and vehicle references are
// verified before the insert.
func (s *Service) Create(ctx context.Context, req *route.CreateRouteRequest) (*route.Route, error) {
	rt := &route.Route{
		Name:          req.Name,
		Area:          req.Area,
		CollectionDay: req.CollectionDay,
		IsActive:      true,
	}
	if req.Description != "" {
		rt.Description = sql.NullString{String: req.Description, Valid: true}
	}

	if req.DriverID != nil {
		if _, err := s.fleet.FindDriverByID(ctx, *req.DriverID); err != nil {
			return nil, err
		}
		rt.DriverID = sql.NullInt64{Int64: *req.DriverID, Valid: true}
	}
	if req.VehicleID != nil {
		if _, err := s.fleet.FindVehicleByID(ctx, *req.VehicleID); err != nil {
			return nil, err
		}
		rt.VehicleID = sql.NullInt64{Int64: *req.VehicleID, Valid: true}
	}

	if err := s.routes.Create(ctx, rt); err != nil {
		return nil, err
	}

	s.logger.Info("route created",
		zap.String("name", rt.Name),
		zap.String("collection_day", rt.CollectionDay),
	)
	return rt, nil
}

// Get returns a route by ID.
func (s *Service) Get(ctx context.Context, id int64) (*route.Route, error) {
	return s.routes.FindByID(ctx, id)
}

// List returns routes with their customer counts.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]route.RouteSummary, error) {
	return s.routes.List(ctx, activeOnly)
}

// Update applies a partial update to a route.
func (s *Service) Update(ctx context.Context, id int64, req *route.UpdateRouteRequest) (*route.Route, error) {
	rt, err := s.routes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rt.Name = *req.Name
	}
	if req.Area != nil {
		rt.Area = *req.Area
	}
	if req.CollectionDay != nil {
		rt.CollectionDay = *req.CollectionDay
	}
	if req.Description != nil {
		rt.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.DriverID != nil {
		if _, err := s.fleet.FindDriverByID(ctx, *req.DriverID); err != nil {
			return nil, err
		}
		rt.DriverID = sql.NullInt64{Int64: *req.DriverID, Valid: true}
	}
	if req.VehicleID != nil {
		if _, err := s.fleet.FindVehicleByID(ctx, *req.VehicleID); err != nil {
			return nil, err
		}
		rt.VehicleID = sql.NullInt64{Int64: *req.VehicleID, Valid: true}
	}
	if req.IsActive != nil {
		rt.IsActive = *req.IsActive
	}

	if err := s.routes.Update(ctx, rt); err != nil {
		return nil, err
	}

	s.logger.Info("route updated", zap.Int64("route_id", rt.ID))
	return rt, nil
}

// AssignCustomer puts a customer on a route. Inactive routes do not
// accept new customers.
func (s *Service) AssignCustomer(ctx context.Context, routeID int64, req *route.AssignCustomerRequest) error {
	rt, err := s.routes.FindByID(ctx, routeID)
	if err != nil {
		return err
	}
	if !rt.IsActive {
		return xerrors.Precondition("route is not active")
	}

	c, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return err
	}
	if c.Status != customer.StatusActive {
		return xerrors.Precondition("only active customers can be assigned to a route")
	}

	if err := s.customers.AssignRoute(ctx, c.ID, &routeID); err != nil {
		return err
	}

	s.logger.Info("customer assigned to route",
		zap.String("customer_number", c.CustomerNumber),
		zap.Int64("route_id", routeID),
	)
	return nil
}

// UnassignCustomer removes a customer from their route.
func (s *Service) UnassignCustomer(ctx context.Context, customerID int64) error {
	if err := s.customers.AssignRoute(ctx, customerID, nil); err != nil {
		return err
	}
	s.logger.Info("customer removed from route", zap.Int64("customer_id", customerID))
	return nil
}
