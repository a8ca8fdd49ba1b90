// internal/domain/invoice/dto.go
package invoice

type CreateInvoiceRequest struct {
	CustomerID  int64  `json:"customer_id" binding:"required"`
	InvoiceType string `json:"invoice_type" binding:"required,oneof=registration monthly_plan one_time"`
	Amount      string `json:"amount" binding:"required"`
	TaxAmount   string `json:"tax_amount"`
	DueDate     string `json:"due_date" binding:"required"` // YYYY-MM-DD
	Description string `json:"description" binding:"max=500"`
}

type InvoiceListFilters struct {
	CustomerID  *int64 `form:"customer_id"`
	InvoiceType string `form:"invoice_type" binding:"omitempty,oneof=registration monthly_plan one_time"`
	Status      string `form:"status" binding:"omitempty,oneof=pending paid overdue cancelled"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size" binding:"omitempty,max=100"`
	SortBy      string `form:"sort_by"` // created_at, due_date, total_amount
	SortOrder   string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

type InvoiceListResponse struct {
	Invoices   []Invoice `json:"invoices"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}
