// internal/handlers/payment/payment_handler.go
package payment

import (
	"net/http"
	"strconv"

	"takataka-service/internal/domain/payment"
	"takataka-service/internal/pkg/response"
	service "takataka-service/internal/service/payment"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService *service.Service
}

func NewPaymentHandler(paymentService *service.Service) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RecordPayment records a pending payment attempt against an invoice.
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req payment.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.paymentService.Record(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to record payment", err)
		return
	}

	response.Success(c, http.StatusCreated, "payment recorded", result)
}

// ConfirmPayment resolves a pending payment to completed or failed and
// applies the billing consequences.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid payment ID", err)
		return
	}

	var req payment.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.paymentService.Confirm(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, "failed to confirm payment", err)
		return
	}

	response.Success(c, http.StatusOK, "payment confirmed", result)
}

// GetPayment retrieves a payment by ID.
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid payment ID", err)
		return
	}

	result, err := h.paymentService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "payment not found", err)
		return
	}

	response.Success(c, http.StatusOK, "payment retrieved", result)
}

// GetPaymentByReference retrieves a payment by its reference.
func (h *PaymentHandler) GetPaymentByReference(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		response.ValidationError(c, "payment reference is required", nil)
		return
	}

	result, err := h.paymentService.GetByReference(c.Request.Context(), reference)
	if err != nil {
		response.FromError(c, "payment not found", err)
		return
	}

	response.Success(c, http.StatusOK, "payment retrieved", result)
}

// ListPayments returns a filtered, paginated payment list.
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var filters payment.PaymentListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}

	result, err := h.paymentService.List(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list payments", err)
		return
	}

	response.Success(c, http.StatusOK, "payments retrieved", result)
}
