// internal/app/router.go
package app

import (
	authHandler "takataka-service/internal/handlers/auth"
	complaintHandler "takataka-service/internal/handlers/complaint"
	customerHandler "takataka-service/internal/handlers/customer"
	eventsHandler "takataka-service/internal/handlers/events"
	expenseHandler "takataka-service/internal/handlers/expense"
	fleetHandler "takataka-service/internal/handlers/fleet"
	invoiceHandler "takataka-service/internal/handlers/invoice"
	paymentHandler "takataka-service/internal/handlers/payment"
	planHandler "takataka-service/internal/handlers/plan"
	routeHandler "takataka-service/internal/handlers/route"
	settingsHandler "takataka-service/internal/handlers/settings"
	subscriptionHandler "takataka-service/internal/handlers/subscription"
	"takataka-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler         *authHandler.AuthHandler
	CustomerHandler     *customerHandler.CustomerHandler
	PlanHandler         *planHandler.PlanHandler
	SubscriptionHandler *subscriptionHandler.SubscriptionHandler
	InvoiceHandler      *invoiceHandler.InvoiceHandler
	PaymentHandler      *paymentHandler.PaymentHandler
	RouteHandler        *routeHandler.RouteHandler
	FleetHandler        *fleetHandler.FleetHandler
	ComplaintHandler    *complaintHandler.ComplaintHandler
	ExpenseHandler      *expenseHandler.ExpenseHandler
	SettingsHandler     *settingsHandler.SettingsHandler
	EventsHandler       *eventsHandler.EventsHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ==================== Auth ====================
	api.POST("/auth/login", h.AuthHandler.Login)

	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.GET("/me", h.AuthHandler.Me)
		authProtected.POST("/admins", h.AuthMiddleware.RequireSuperAdmin(), h.AuthHandler.CreateAdmin)
	}

	// Everything below requires a valid token.
	protected := api.Group("")
	protected.Use(h.AuthMiddleware.Auth())

	// ==================== Event Feed ====================
	protected.GET("/events/stream", h.EventsHandler.Stream)

	// ==================== Customers ====================
	customers := protected.Group("/customers")
	{
		customers.POST("", h.CustomerHandler.Register)
		customers.GET("", h.CustomerHandler.ListCustomers)
		customers.GET("/stats", h.CustomerHandler.Stats)
		customers.GET("/number/:number", h.CustomerHandler.GetCustomerByNumber)
		customers.GET("/:id", h.CustomerHandler.GetCustomer)
		customers.PATCH("/:id", h.CustomerHandler.UpdateCustomer)
		customers.POST("/:id/approve", h.CustomerHandler.ApproveCustomer)
		customers.POST("/:id/reject", h.CustomerHandler.RejectCustomer)
		customers.POST("/:id/suspend", h.CustomerHandler.SuspendCustomer)
		customers.POST("/:id/reactivate", h.CustomerHandler.ReactivateCustomer)
		customers.DELETE("/:id", h.AuthMiddleware.RequireSuperAdmin(), h.CustomerHandler.DeleteCustomer)

		// Subscription lifecycle hangs off the customer.
		customers.POST("/:id/subscription", h.SubscriptionHandler.Subscribe)
		customers.DELETE("/:id/subscription", h.SubscriptionHandler.Cancel)
		customers.GET("/:id/subscription", h.SubscriptionHandler.Current)
	}

	// ==================== Plans ====================
	plans := protected.Group("/plans")
	{
		plans.GET("", h.PlanHandler.ListPlans)
		plans.GET("/:id", h.PlanHandler.GetPlan)
		plans.POST("", h.AuthMiddleware.RequireSuperAdmin(), h.PlanHandler.CreatePlan)
		plans.PATCH("/:id", h.AuthMiddleware.RequireSuperAdmin(), h.PlanHandler.UpdatePlan)
	}

	// ==================== Subscriptions ====================
	subscriptions := protected.Group("/subscriptions")
	{
		subscriptions.GET("", h.SubscriptionHandler.ListSubscriptions)
		subscriptions.GET("/:id", h.SubscriptionHandler.GetSubscription)
	}

	// ==================== Invoices ====================
	invoices := protected.Group("/invoices")
	{
		invoices.POST("", h.InvoiceHandler.CreateInvoice)
		invoices.GET("", h.InvoiceHandler.ListInvoices)
		invoices.GET("/number/:number", h.InvoiceHandler.GetInvoiceByNumber)
		invoices.GET("/:id", h.InvoiceHandler.GetInvoice)
		invoices.POST("/:id/mark-paid", h.InvoiceHandler.MarkPaid)
		invoices.POST("/:id/cancel", h.InvoiceHandler.CancelInvoice)
		invoices.POST("/sweep-overdue", h.InvoiceHandler.SweepOverdue)
	}

	// ==================== Payments ====================
	payments := protected.Group("/payments")
	{
		payments.POST("", h.PaymentHandler.RecordPayment)
		payments.GET("", h.PaymentHandler.ListPayments)
		payments.GET("/reference/:reference", h.PaymentHandler.GetPaymentByReference)
		payments.GET("/:id", h.PaymentHandler.GetPayment)
		payments.POST("/:id/confirm", h.PaymentHandler.ConfirmPayment)
	}

	// ==================== Routes ====================
	routes := protected.Group("/routes")
	{
		routes.POST("", h.RouteHandler.CreateRoute)
		routes.GET("", h.RouteHandler.ListRoutes)
		routes.GET("/:id", h.RouteHandler.GetRoute)
		routes.PATCH("/:id", h.RouteHandler.UpdateRoute)
		routes.POST("/:id/customers", h.RouteHandler.AssignCustomer)
		routes.DELETE("/customers/:customerId", h.RouteHandler.UnassignCustomer)
	}

	// ==================== Fleet ====================
	fleet := protected.Group("/fleet")
	{
		fleet.POST("/drivers", h.FleetHandler.CreateDriver)
		fleet.GET("/drivers", h.FleetHandler.ListDrivers)
		fleet.GET("/drivers/:id", h.FleetHandler.GetDriver)
		fleet.PATCH("/drivers/:id", h.FleetHandler.UpdateDriver)

		fleet.POST("/vehicles", h.FleetHandler.CreateVehicle)
		fleet.GET("/vehicles", h.FleetHandler.ListVehicles)
		fleet.GET("/vehicles/:id", h.FleetHandler.GetVehicle)
		fleet.POST("/vehicles/:id/maintenance", h.FleetHandler.ScheduleMaintenance)

		fleet.GET("/maintenance", h.FleetHandler.ListOngoingMaintenance)
		fleet.POST("/maintenance/:id/complete", h.FleetHandler.CompleteMaintenance)
	}

	// ==================== Complaints ====================
	complaints := protected.Group("/complaints")
	{
		complaints.POST("", h.ComplaintHandler.FileComplaint)
		complaints.GET("", h.ComplaintHandler.ListComplaints)
		complaints.GET("/:id", h.ComplaintHandler.GetComplaint)
		complaints.POST("/:id/assign", h.ComplaintHandler.AssignComplaint)
		complaints.POST("/:id/resolve", h.ComplaintHandler.ResolveComplaint)
	}

	// ==================== Expenses ====================
	expenses := protected.Group("/expenses")
	{
		expenses.POST("", h.ExpenseHandler.SubmitExpense)
		expenses.GET("", h.ExpenseHandler.ListExpenses)
		expenses.GET("/:id", h.ExpenseHandler.GetExpense)
		expenses.POST("/:id/approve", h.ExpenseHandler.ApproveExpense)
		expenses.POST("/:id/reject", h.ExpenseHandler.RejectExpense)

		expenses.GET("/budgets", h.ExpenseHandler.ListBudgets)
		expenses.PUT("/budgets", h.AuthMiddleware.RequireSuperAdmin(), h.ExpenseHandler.SetBudget)
	}

	// ==================== Settings ====================
	settings := protected.Group("/settings")
	{
		settings.GET("", h.SettingsHandler.ListSettings)
		settings.GET("/:key", h.SettingsHandler.GetSetting)
		settings.PUT("/:key", h.AuthMiddleware.RequireSuperAdmin(), h.SettingsHandler.UpsertSetting)
	}
}
