// internal/handlers/plan/plan_handler.go
package plan

import (
	"net/http"
	"strconv"

	"takataka-service/internal/domain/plan"
	"takataka-service/internal/pkg/response"
	service "takataka-service/internal/service/plan"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService *service.Service
}

func NewPlanHandler(planService *service.Service) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// CreatePlan adds a new service plan. Super admin only.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req plan.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.planService.Create(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to create plan", err)
		return
	}

	response.Success(c, http.StatusCreated, "plan created", result)
}

// GetPlan retrieves a plan by ID.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid plan ID", err)
		return
	}

	result, err := h.planService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "plan not found", err)
		return
	}

	response.Success(c, http.StatusOK, "plan retrieved", result)
}

// ListPlans lists plans, optionally only the active ones.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	result, err := h.planService.List(c.Request.Context(), activeOnly)
	if err != nil {
		response.FromError(c, "failed to list plans", err)
		return
	}

	response.Success(c, http.StatusOK, "plans retrieved", result)
}

// UpdatePlan applies a partial plan update. Super admin only.
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid plan ID", err)
		return
	}

	var req plan.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.planService.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, "failed to update plan", err)
		return
	}

	response.Success(c, http.StatusOK, "plan updated", result)
}
