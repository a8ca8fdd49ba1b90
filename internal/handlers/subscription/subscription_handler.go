// internal/handlers/subscription/subscription_handler.go
package subscription

import (
	"net/http"
	"strconv"

	"takataka-service/internal/domain/subscription"
	"takataka-service/internal/pkg/response"
	service "takataka-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService *service.Service
}

func NewSubscriptionHandler(subscriptionService *service.Service) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// Subscribe puts a customer on a plan and issues the first monthly
// invoice. An existing subscription to a different plan is replaced.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid customer ID", err)
		return
	}

	var req subscription.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	sub, inv, err := h.subscriptionService.Subscribe(c.Request.Context(), customerID, &req)
	if err != nil {
		response.FromError(c, "failed to subscribe customer", err)
		return
	}

	response.Success(c, http.StatusCreated, "subscription started", gin.H{
		"subscription": sub,
		"invoice":      inv,
	})
}

// Cancel ends the customer's active subscription.
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid customer ID", err)
		return
	}

	var req subscription.CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.subscriptionService.Cancel(c.Request.Context(), customerID, &req)
	if err != nil {
		response.FromError(c, "failed to cancel subscription", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription cancelled", result)
}

// Current returns the customer's active subscription.
func (h *SubscriptionHandler) Current(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid customer ID", err)
		return
	}

	result, err := h.subscriptionService.Current(c.Request.Context(), customerID)
	if err != nil {
		response.FromError(c, "no active subscription", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription retrieved", result)
}

// GetSubscription retrieves a subscription record by ID.
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid subscription ID", err)
		return
	}

	result, err := h.subscriptionService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "subscription not found", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription retrieved", result)
}

// ListSubscriptions returns a filtered, paginated subscription list.
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	var filters subscription.SubscriptionListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}

	result, err := h.subscriptionService.List(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list subscriptions", err)
		return
	}

	response.Success(c, http.StatusOK, "subscriptions retrieved", result)
}
