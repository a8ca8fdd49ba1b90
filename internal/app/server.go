// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"takataka-service/internal/config"
	"takataka-service/internal/db"
	"takataka-service/internal/events"
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
	"takataka-service/internal/pkg/jwt"
	"takataka-service/internal/repository/postgres"
	authsvc "takataka-service/internal/service/auth"
	complaintsvc "takataka-service/internal/service/complaint"
	expensesvc "takataka-service/internal/service/expense"
	fleetsvc "takataka-service/internal/service/fleet"
	invoicesvc "takataka-service/internal/service/invoice"
	paymentsvc "takataka-service/internal/service/payment"
	plansvc "takataka-service/internal/service/plan"
	registrysvc "takataka-service/internal/service/registry"
	routesvc "takataka-service/internal/service/route"
	settingssvc "takataka-service/internal/service/settings"
	subscriptionsvc "takataka-service/internal/service/subscription"
	"takataka-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	httpServer *http.Server
	pool       *pgxpool.Pool
	redis      *redis.Client
	cancelBg   context.CancelFunc
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

// Start wires the whole service together and begins serving HTTP. It
// blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool
	logger.Info("connected to PostgreSQL")

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	s.redis = redisClient
	logger.Info("connected to Redis")

	// ----- JWT Manager -----
	jwtManager, err := jwt.NewManager(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.JWTTTL)
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	authRepo := postgres.NewAuthRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	planRepo := postgres.NewPlanRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	routeRepo := postgres.NewRouteRepository(pool)
	fleetRepo := postgres.NewFleetRepository(pool)
	complaintRepo := postgres.NewComplaintRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)

	// ----- Event Bus & WebSocket Hub -----
	bus := events.NewBus(logger)
	hub := websocket.NewHub(logger)
	bus.Subscribe(hub)

	bgCtx, cancelBg := context.WithCancel(context.Background())
	s.cancelBg = cancelBg
	go hub.Run(bgCtx)

	// ----- Services -----
	settingsService := settingssvc.NewService(settingsRepo, redisClient, logger)
	authService := authsvc.NewService(authRepo, jwtManager, logger)
	registryService := registrysvc.NewService(customerRepo, invoiceRepo, settingsService, dbWrapper, bus, logger)
	planService := plansvc.NewService(planRepo, logger)
	invoiceService := invoicesvc.NewService(invoiceRepo, customerRepo, dbWrapper, bus, logger)
	subscriptionService := subscriptionsvc.NewService(customerRepo, planRepo, subscriptionRepo, invoiceRepo, settingsService, dbWrapper, bus, logger)
	paymentService := paymentsvc.NewService(paymentRepo, invoiceRepo, invoiceService, customerRepo, dbWrapper, bus, logger)
	routeService := routesvc.NewService(routeRepo, customerRepo, fleetRepo, logger)
	fleetService := fleetsvc.NewService(fleetRepo, dbWrapper, logger)
	complaintService := complaintsvc.NewService(complaintRepo, customerRepo, bus, logger)
	expenseService := expensesvc.NewService(expenseRepo, dbWrapper, bus, logger)

	// ----- Super Admin Bootstrap -----
	if err := s.initializeSuperAdmin(authService); err != nil {
		logger.Error("failed to initialize super admin", zap.Error(err))
	}

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:         authHandler.NewAuthHandler(authService),
		CustomerHandler:     customerHandler.NewCustomerHandler(registryService),
		PlanHandler:         planHandler.NewPlanHandler(planService),
		SubscriptionHandler: subscriptionHandler.NewSubscriptionHandler(subscriptionService),
		InvoiceHandler:      invoiceHandler.NewInvoiceHandler(invoiceService),
		PaymentHandler:      paymentHandler.NewPaymentHandler(paymentService),
		RouteHandler:        routeHandler.NewRouteHandler(routeService),
		FleetHandler:        fleetHandler.NewFleetHandler(fleetService),
		ComplaintHandler:    complaintHandler.NewComplaintHandler(complaintService),
		ExpenseHandler:      expenseHandler.NewExpenseHandler(expenseService),
		SettingsHandler:     settingsHandler.NewSettingsHandler(settingsService),
		EventsHandler:       eventsHandler.NewEventsHandler(hub, logger),
		AuthMiddleware:      middleware.NewAuthMiddleware(authService),
	}

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	s.httpServer = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancelBg != nil {
		s.cancelBg()
	}

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.redis != nil {
		s.redis.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// initializeSuperAdmin creates the super admin account on first boot.
// Skipped when the bootstrap credentials are not configured.
func (s *Server) initializeSuperAdmin(authService *authsvc.Service) error {
	if s.cfg.SuperAdminEmail == "" || s.cfg.SuperAdminPassword == "" {
		s.logger.Warn("super admin bootstrap skipped, SUPER_ADMIN_EMAIL/SUPER_ADMIN_PASSWORD not set")
		return nil
	}
	if len(s.cfg.SuperAdminPassword) < 8 {
		return fmt.Errorf("super admin password must be at least 8 characters")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return authService.EnsureSuperAdmin(ctx, s.cfg.SuperAdminEmail, s.cfg.SuperAdminPassword, s.cfg.SuperAdminName)
}
