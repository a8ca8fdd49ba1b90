// internal/handlers/invoice/invoice_handler.go
package invoice

import (
	"net/http"
	"strconv"

	"takataka-service/internal/domain/invoice"
	"takataka-service/internal/pkg/response"
	service "takataka-service/internal/service/invoice"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService *service.Service
}

func NewInvoiceHandler(invoiceService *service.Service) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// CreateInvoice raises a one-time or ad hoc invoice against a customer.
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req invoice.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.invoiceService.Create(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to create invoice", err)
		return
	}

	response.Success(c, http.StatusCreated, "invoice created", result)
}

// GetInvoice retrieves an invoice by ID.
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid invoice ID", err)
		return
	}

	result, err := h.invoiceService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "invoice not found", err)
		return
	}

	response.Success(c, http.StatusOK, "invoice retrieved", result)
}

// GetInvoiceByNumber retrieves an invoice by invoice number.
func (h *InvoiceHandler) GetInvoiceByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		response.ValidationError(c, "invoice number is required", nil)
		return
	}

	result, err := h.invoiceService.GetByNumber(c.Request.Context(), number)
	if err != nil {
		response.FromError(c, "invoice not found", err)
		return
	}

	response.Success(c, http.StatusOK, "invoice retrieved", result)
}

// ListInvoices returns a filtered, paginated invoice list.
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var filters invoice.InvoiceListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}

	result, err := h.invoiceService.List(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list invoices", err)
		return
	}

	response.Success(c, http.StatusOK, "invoices retrieved", result)
}

// MarkPaid settles an invoice manually, outside payment confirmation.
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid invoice ID", err)
		return
	}

	result, err := h.invoiceService.MarkPaid(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "failed to mark invoice paid", err)
		return
	}

	response.Success(c, http.StatusOK, "invoice marked paid", result)
}

// CancelInvoice voids an unpaid invoice.
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid invoice ID", err)
		return
	}

	result, err := h.invoiceService.Cancel(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "failed to cancel invoice", err)
		return
	}

	response.Success(c, http.StatusOK, "invoice cancelled", result)
}

// SweepOverdue flips past-due pending invoices to overdue. Meant to be
// hit by an external cron.
func (h *InvoiceHandler) SweepOverdue(c *gin.Context) {
	flipped, err := h.invoiceService.MarkOverdue(c.Request.Context())
	if err != nil {
		response.FromError(c, "overdue sweep failed", err)
		return
	}

	response.Success(c, http.StatusOK, "overdue sweep complete", gin.H{
		"marked_overdue": flipped,
	})
}
