// internal/handlers/fleet/fleet_handler.go
package fleet

import (
	"net/http"
	"strconv"

	"takataka-service/internal/domain/fleet"
	"takataka-service/internal/pkg/response"
	service "takataka-service/internal/service/fleet"

	"github.com/gin-gonic/gin"
)

type FleetHandler struct {
	fleetService *service.Service
}

func NewFleetHandler(fleetService *service.Service) *FleetHandler {
	return &FleetHandler{fleetService: fleetService}
}

// ========== Drivers ==========

func (h *FleetHandler) CreateDriver(c *gin.Context) {
	var req fleet.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.fleetService.CreateDriver(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to create driver", err)
		return
	}

	response.Success(c, http.StatusCreated, "driver created", result)
}

func (h *FleetHandler) GetDriver(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid driver ID", err)
		return
	}

	result, err := h.fleetService.GetDriver(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "driver not found", err)
		return
	}

	response.Success(c, http.StatusOK, "driver retrieved", result)
}

func (h *FleetHandler) ListDrivers(c *gin.Context) {
	result, err := h.fleetService.ListDrivers(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to list drivers", err)
		return
	}

	response.Success(c, http.StatusOK, "drivers retrieved", result)
}

func (h *FleetHandler) UpdateDriver(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid driver ID", err)
		return
	}

	var req fleet.UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.fleetService.UpdateDriver(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, "failed to update driver", err)
		return
	}

	response.Success(c, http.StatusOK, "driver updated", result)
}

// ========== Vehicles ==========

func (h *FleetHandler) CreateVehicle(c *gin.Context) {
	var req fleet.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.fleetService.CreateVehicle(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to create vehicle", err)
		return
	}

	response.Success(c, http.StatusCreated, "vehicle created", result)
}

func (h *FleetHandler) GetVehicle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid vehicle ID", err)
		return
	}

	result, err := h.fleetService.GetVehicle(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "vehicle not found", err)
		return
	}

	response.Success(c, http.StatusOK, "vehicle retrieved", result)
}

func (h *FleetHandler) ListVehicles(c *gin.Context) {
	result, err := h.fleetService.ListVehicles(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to list vehicles", err)
		return
	}

	response.Success(c, http.StatusOK, "vehicles retrieved", result)
}

// ========== Maintenance ==========

// ScheduleMaintenance books maintenance for a vehicle. Work scheduled
// for today takes the vehicle out of service immediately.
func (h *FleetHandler) ScheduleMaintenance(c *gin.Context) {
	vehicleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid vehicle ID", err)
		return
	}

	var req fleet.ScheduleMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.fleetService.ScheduleMaintenance(c.Request.Context(), vehicleID, &req)
	if err != nil {
		response.FromError(c, "failed to schedule maintenance", err)
		return
	}

	response.Success(c, http.StatusCreated, "maintenance scheduled", result)
}

// CompleteMaintenance closes a maintenance record and returns the
// vehicle to service.
func (h *FleetHandler) CompleteMaintenance(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid maintenance ID", err)
		return
	}

	var req fleet.CompleteMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.fleetService.CompleteMaintenance(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, "failed to complete maintenance", err)
		return
	}

	response.Success(c, http.StatusOK, "maintenance completed", result)
}

func (h *FleetHandler) ListOngoingMaintenance(c *gin.Context) {
	result, err := h.fleetService.ListOngoingMaintenance(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to list maintenance", err)
		return
	}

	response.Success(c, http.StatusOK, "ongoing maintenance retrieved", result)
}
