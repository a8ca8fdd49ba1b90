// internal/handlers/customer/customer_handler.go
package customer

import (
	"net/http"
	"strconv"

	"takataka-service/internal/domain/customer"
	"takataka-service/internal/pkg/response"
	service "takataka-service/internal/service/registry"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	registryService *service.Service
}

func NewCustomerHandler(registryService *service.Service) *CustomerHandler {
	return &CustomerHandler{registryService: registryService}
}

// Register creates a pending customer together with its registration
// invoice.
func (h *CustomerHandler) Register(c *gin.Context) {
	var req customer.RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	cust, inv, err := h.registryService.Register(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to register customer", err)
		return
	}

	response.Success(c, http.StatusCreated, "customer registered", gin.H{
		"customer": cust,
		"invoice":  inv,
	})
}

// GetCustomer retrieves a customer by ID.
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid customer ID", err)
		return
	}

	result, err := h.registryService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "customer not found", err)
		return
	}

	response.Success(c, http.StatusOK, "customer retrieved", result)
}

// GetCustomerByNumber retrieves a customer by customer number.
func (h *CustomerHandler) GetCustomerByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		response.ValidationError(c, "customer number is required", nil)
		return
	}

	result, err := h.registryService.GetByNumber(c.Request.Context(), number)
	if err != nil {
		response.FromError(c, "customer not found", err)
		return
	}

	response.Success(c, http.StatusOK, "customer retrieved", result)
}

// ListCustomers returns a filtered, paginated customer list.
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	var filters customer.CustomerListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}

	result, err := h.registryService.List(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list customers", err)
		return
	}

	response.Success(c, http.StatusOK, "customers retrieved", result)
}

// UpdateCustomer applies a partial profile update.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid customer ID", err)
		return
	}

	var req customer.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.registryService.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, "failed to update customer", err)
		return
	}

	response.Success(c, http.StatusOK, "customer updated", result)
}

// ApproveCustomer moves a pending registration to approved.
func (h *CustomerHandler) ApproveCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid customer ID", err)
		return
	}

	result, err := h.registryService.Approve(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "failed to approve customer", err)
		return
	}

	response.Success(c, http.StatusOK, "customer approved", result)
}

// RejectCustomer moves a pending registration to rejected.
func (h *CustomerHandler) RejectCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid customer ID", err)
		return
	}

	result, err := h.registryService.Reject(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "failed to reject customer", err)
		return
	}

	response.Success(c, http.StatusOK, "customer rejected", result)
}

// SuspendCustomer suspends an active customer.
func (h *CustomerHandler) SuspendCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid customer ID", err)
		return
	}

	result, err := h.registryService.Suspend(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "failed to suspend customer", err)
		return
	}

	response.Success(c, http.StatusOK, "customer suspended", result)
}

// ReactivateCustomer restores a suspended customer.
func (h *CustomerHandler) ReactivateCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid customer ID", err)
		return
	}

	result, err := h.registryService.Reactivate(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "failed to reactivate customer", err)
		return
	}

	response.Success(c, http.StatusOK, "customer reactivated", result)
}

// DeleteCustomer soft-deletes a customer record. Super admin only.
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid customer ID", err)
		return
	}

	if err := h.registryService.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, "failed to delete customer", err)
		return
	}

	response.Success(c, http.StatusOK, "customer deleted", nil)
}

// Stats returns aggregate customer counts for the dashboard.
func (h *CustomerHandler) Stats(c *gin.Context) {
	result, err := h.registryService.Stats(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to load customer stats", err)
		return
	}

	response.Success(c, http.StatusOK, "customer stats", result)
}
