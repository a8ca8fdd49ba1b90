// internal/domain/subscription/dto.go
package subscription

type SubscribeRequest struct {
	PlanID    int64 `json:"plan_id" binding:"required"`
	AutoRenew bool  `json:"auto_renew"`
}

type CancelSubscriptionRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type SubscriptionListFilters struct {
	CustomerID *int64 `form:"customer_id"`
	PlanID     *int64 `form:"plan_id"`
	Status     string `form:"status" binding:"omitempty,oneof=active expired cancelled suspended"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size" binding:"omitempty,max=100"`
}

type SubscriptionListResponse struct {
	Subscriptions []CustomerPlan `json:"subscriptions"`
	Total         int64          `json:"total"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
	TotalPages    int            `json:"total_pages"`
}
