// internal/domain/expense/dto.go
package expense

type SubmitExpenseRequest struct {
	Category    Category `json:"category" binding:"required,oneof=fuel maintenance salaries equipment office other"`
	Description string   `json:"description" binding:"required,max=500"`
	Amount      string   `json:"amount" binding:"required"`
	IncurredOn  string   `json:"incurred_on" binding:"required"` // YYYY-MM-DD
	ReceiptURL  string   `json:"receipt_url" binding:"omitempty,max=1000"`
}

type RejectExpenseRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type UpsertBudgetRequest struct {
	Category     Category `json:"category" binding:"required,oneof=fuel maintenance salaries equipment office other"`
	PeriodMonth  string   `json:"period_month" binding:"required"` // YYYY-MM
	BudgetAmount string   `json:"budget_amount" binding:"required"`
	AllowOverrun bool     `json:"allow_overrun"`
}

type ExpenseListFilters struct {
	Category string `form:"category"`
	Status   string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,max=100"`
}
