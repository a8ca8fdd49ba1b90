// internal/handlers/expense/expense_handler.go
package expense

import (
	"net/http"
	"strconv"

	"takataka-service/internal/domain/expense"
	"takataka-service/internal/middleware"
	"takataka-service/internal/pkg/response"
	service "takataka-service/internal/service/expense"

	"github.com/gin-gonic/gin"
)

type ExpenseHandler struct {
	expenseService *service.Service
}

func NewExpenseHandler(expenseService *service.Service) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// SubmitExpense records a pending expense claim for the current admin.
func (h *ExpenseHandler) SubmitExpense(c *gin.Context) {
	var req expense.SubmitExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.expenseService.Submit(c.Request.Context(), &req, middleware.MustGetAdminID(c))
	if err != nil {
		response.FromError(c, "failed to submit expense", err)
		return
	}

	response.Success(c, http.StatusCreated, "expense submitted", result)
}

// GetExpense retrieves an expense by ID.
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid expense ID", err)
		return
	}

	result, err := h.expenseService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "expense not found", err)
		return
	}

	response.Success(c, http.StatusOK, "expense retrieved", result)
}

// ApproveExpense approves an expense against its category budget.
func (h *ExpenseHandler) ApproveExpense(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid expense ID", err)
		return
	}

	result, err := h.expenseService.Approve(c.Request.Context(), id, middleware.MustGetAdminID(c))
	if err != nil {
		response.FromError(c, "failed to approve expense", err)
		return
	}

	response.Success(c, http.StatusOK, "expense approved", result)
}

// RejectExpense rejects a pending expense.
func (h *ExpenseHandler) RejectExpense(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid expense ID", err)
		return
	}

	var req expense.RejectExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.expenseService.Reject(c.Request.Context(), id, middleware.MustGetAdminID(c), &req)
	if err != nil {
		response.FromError(c, "failed to reject expense", err)
		return
	}

	response.Success(c, http.StatusOK, "expense rejected", result)
}

// ListExpenses returns a filtered, paginated expense list.
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	var filters expense.ExpenseListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}

	items, total, err := h.expenseService.List(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list expenses", err)
		return
	}

	response.Success(c, http.StatusOK, "expenses retrieved", gin.H{
		"expenses": items,
		"total":    total,
	})
}

// SetBudget creates or replaces a category budget for a month. Super
// admin only.
func (h *ExpenseHandler) SetBudget(c *gin.Context) {
	var req expense.UpsertBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.expenseService.SetBudget(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to set budget", err)
		return
	}

	response.Success(c, http.StatusOK, "budget saved", result)
}

// ListBudgets lists budgets, optionally for a single YYYY-MM period.
func (h *ExpenseHandler) ListBudgets(c *gin.Context) {
	result, err := h.expenseService.ListBudgets(c.Request.Context(), c.Query("period"))
	if err != nil {
		response.FromError(c, "failed to list budgets", err)
		return
	}

	response.Success(c, http.StatusOK, "budgets retrieved", result)
}
