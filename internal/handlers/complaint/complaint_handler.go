// internal/handlers/complaint/complaint_handler.go
package complaint

import (
	"net/http"
	"strconv"

	"takataka-service/internal/domain/complaint"
	"takataka-service/internal/middleware"
	"takataka-service/internal/pkg/response"
	service "takataka-service/internal/service/complaint"

	"github.com/gin-gonic/gin"
)

type ComplaintHandler struct {
	complaintService *service.Service
}

func NewComplaintHandler(complaintService *service.Service) *ComplaintHandler {
	return &ComplaintHandler{complaintService: complaintService}
}

// FileComplaint opens a complaint on behalf of a customer.
func (h *ComplaintHandler) FileComplaint(c *gin.Context) {
	var req complaint.FileComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.complaintService.File(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to file complaint", err)
		return
	}

	response.Success(c, http.StatusCreated, "complaint filed", result)
}

// GetComplaint retrieves a complaint by ID.
func (h *ComplaintHandler) GetComplaint(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid complaint ID", err)
		return
	}

	result, err := h.complaintService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "complaint not found", err)
		return
	}

	response.Success(c, http.StatusOK, "complaint retrieved", result)
}

// AssignComplaint assigns the complaint to an admin. With no admin_id in
// the body the caller takes it themselves.
func (h *ComplaintHandler) AssignComplaint(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid complaint ID", err)
		return
	}

	var body struct {
		AdminID *int64 `json:"admin_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	adminID := middleware.MustGetAdminID(c)
	if body.AdminID != nil {
		adminID = *body.AdminID
	}

	result, err := h.complaintService.Assign(c.Request.Context(), id, adminID)
	if err != nil {
		response.FromError(c, "failed to assign complaint", err)
		return
	}

	response.Success(c, http.StatusOK, "complaint assigned", result)
}

// ResolveComplaint closes a complaint with a resolution note.
func (h *ComplaintHandler) ResolveComplaint(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid complaint ID", err)
		return
	}

	var req complaint.ResolveComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.complaintService.Resolve(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, "failed to resolve complaint", err)
		return
	}

	response.Success(c, http.StatusOK, "complaint resolved", result)
}

// ListComplaints returns a filtered, paginated complaint list.
func (h *ComplaintHandler) ListComplaints(c *gin.Context) {
	var filters complaint.ComplaintListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}

	items, total, err := h.complaintService.List(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list complaints", err)
		return
	}

	response.Success(c, http.StatusOK, "complaints retrieved", gin.H{
		"complaints": items,
		"total":      total,
	})
}
