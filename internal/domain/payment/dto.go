// internal/domain/payment/dto.go
package payment

type RecordPaymentRequest struct {
	InvoiceID            int64                  `json:"invoice_id" binding:"required"`
	Amount               string                 `json:"amount" binding:"required"`
	Method               Method                 `json:"payment_method" binding:"required"`
	TransactionReference string                 `json:"transaction_reference" binding:"max=255"`
	PaymentDetails       map[string]interface{} `json:"payment_details"`
}

type ConfirmPaymentRequest struct {
	Outcome              Status                 `json:"outcome" binding:"required,oneof=completed failed"`
	TransactionReference string                 `json:"transaction_reference" binding:"max=255"`
	FailureReason        string                 `json:"failure_reason" binding:"max=500"`
	PaymentDetails       map[string]interface{} `json:"payment_details"`
}

type PaymentListFilters struct {
	CustomerID *int64 `form:"customer_id"`
	InvoiceID  *int64 `form:"invoice_id"`
	Method     string `form:"payment_method" binding:"omitempty,oneof=mpesa bank_transfer cash card airtel_money"`
	Status     string `form:"status" binding:"omitempty,oneof=pending completed failed cancelled"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size" binding:"omitempty,max=100"`
}

type PaymentListResponse struct {
	Payments   []Payment `json:"payments"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}
