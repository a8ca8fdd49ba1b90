// internal/handlers/route/route_handler.go
package route

import (
	"net/http"
	"strconv"

	"takataka-service/internal/domain/route"
	"takataka-service/internal/pkg/response"
	service "takataka-service/internal/service/route"

	"github.com/gin-gonic/gin"
)

type RouteHandler struct {
	routeService *service.Service
}

func NewRouteHandler(routeService *service.Service) *RouteHandler {
	return &RouteHandler{routeService: routeService}
}

// CreateRoute defines a new collection route.
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	var req route.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.routeService.Create(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to create route", err)
		return
	}

	response.Success(c, http.StatusCreated, "route created", result)
}

// GetRoute retrieves a route by ID.
func (h *RouteHandler) GetRoute(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid route ID", err)
		return
	}

	result, err := h.routeService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "route not found", err)
		return
	}

	response.Success(c, http.StatusOK, "route retrieved", result)
}

// ListRoutes lists routes with customer counts.
func (h *RouteHandler) ListRoutes(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	result, err := h.routeService.List(c.Request.Context(), activeOnly)
	if err != nil {
		response.FromError(c, "failed to list routes", err)
		return
	}

	response.Success(c, http.StatusOK, "routes retrieved", result)
}

// UpdateRoute applies a partial route update.
func (h *RouteHandler) UpdateRoute(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid route ID", err)
		return
	}

	var req route.UpdateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.routeService.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, "failed to update route", err)
		return
	}

	response.Success(c, http.StatusOK, "route updated", result)
}

// AssignCustomer places a customer on the route.
func (h *RouteHandler) AssignCustomer(c *gin.Context) {
	routeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid route ID", err)
		return
	}

	var req route.AssignCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := h.routeService.AssignCustomer(c.Request.Context(), routeID, &req); err != nil {
		response.FromError(c, "failed to assign customer to route", err)
		return
	}

	response.Success(c, http.StatusOK, "customer assigned to route", nil)
}

// UnassignCustomer removes a customer from their route.
func (h *RouteHandler) UnassignCustomer(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("customerId"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid customer ID", err)
		return
	}

	if err := h.routeService.UnassignCustomer(c.Request.Context(), customerID); err != nil {
		response.FromError(c, "failed to unassign customer", err)
		return
	}

	response.Success(c, http.StatusOK, "customer removed from route", nil)
}
