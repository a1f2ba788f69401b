package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/payments"
	"storefront/pkg/rabbitmq"
	"storefront/pkg/telemetry"
)

// AppDeps are the external collaborators of the HTTP app. Publisher and Payments may be nil.
type AppDeps struct {
	DB        *gorm.DB
	Publisher services.EventPublisher
	Payments  payments.Provider
	Metrics   *telemetry.Metrics
	Log       *zap.Logger
}

// NewApp builds the Fiber app with every route and middleware registered.
func NewApp(cfg *config.Config, deps AppDeps) *fiber.App {
	deps.Log = telemetry.OrNop(deps.Log)
	store := repositories.NewGORMStore(deps.DB)

	// --- Initialize Services ---
	authService := services.NewAuthService(store.Users(), store.RefreshTokens(), cfg.JWTSecret, cfg.JWTTTL, cfg.RefreshTTL)
	productService := services.NewProductService(store.Products(), store.Categories())
	cartService := services.NewCartService(store)
	addressService := services.NewAddressService(store)
	orderService := services.NewOrderService(store, deps.Publisher, cfg.PaymentCurrency, deps.Metrics, deps.Log)
	paymentService := services.NewPaymentService(store, deps.Payments, cfg.PaymentCurrency, deps.Log)
	reviewService := services.NewReviewService(store)
	wishlistService := services.NewWishlistService(store)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      cfg.ServiceName,
		ErrorHandler: errorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(deps.Log))
	if deps.Metrics != nil {
		app.Use(middleware.Metrics(deps.Metrics))
	}

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	auth := middleware.AuthRequired(authService)

	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1, auth)
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1, auth)
	handlers.NewCartHandler(cartService).RegisterRoutes(apiV1, auth)
	handlers.NewAddressHandler(addressService).RegisterRoutes(apiV1, auth)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1, auth)
	handlers.NewPaymentHandler(paymentService).RegisterRoutes(apiV1, auth)
	handlers.NewReviewHandler(reviewService).RegisterRoutes(apiV1, auth)
	handlers.NewWishlistHandler(wishlistService).RegisterRoutes(apiV1, auth)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		code, state, dbState := fiber.StatusOK, "healthy", "connected"
		if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			code, state, dbState = fiber.StatusServiceUnavailable, "degraded", "unreachable"
		}
		mqState := "disabled"
		if deps.Publisher != nil {
			mqState = "connected"
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   state,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbState,
			"rabbitmq": mqState,
		})
	})

	return app
}

// errorHandler renders errors that escaped the handlers in the same shape as handler errors.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		middleware.Logger(c).Error("unhandled error", zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"message": message})
}

// logOrderEvent is the consumer side of the order event queue.
func logOrderEvent(logger *zap.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var ev services.OrderEvent
		if err := json.Unmarshal(msg.Body, &ev); err != nil {
			logger.Warn("discarding malformed order event", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
			return nil
		}
		logger.Info("order event received",
			zap.String("type", msg.Type),
			zap.String("order_id", ev.OrderID),
			zap.String("user_id", ev.UserID),
			zap.String("status", string(ev.Status)))
		return nil
	}
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics, shutdownMetrics, err := telemetry.InitMetrics(ctx, telemetry.MetricsConfig{
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Fatal("failed to initialize metrics", zap.Error(err))
	}

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	if n, err := repositories.NewGORMRefreshTokenRepository(db).DeleteExpired(ctx, time.Now().UTC()); err != nil {
		logger.Warn("failed to purge expired refresh tokens", zap.Error(err))
	} else if n > 0 {
		logger.Info("purged expired refresh tokens", zap.Int64("count", n))
	}

	deps := AppDeps{DB: db, Metrics: metrics, Log: logger}

	// --- Initialize RabbitMQ Client ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger)
		if err != nil {
			logger.Fatal("failed to initialize RabbitMQ client", zap.Error(err))
		}
		deps.Publisher = mqClient
		if err := mqClient.ConsumeOrderEvents(logOrderEvent(logger.Named("consumer"))); err != nil {
			logger.Error("failed to start RabbitMQ consumer", zap.Error(err))
		}
	} else {
		logger.Info("RABBITMQ_URL not set, order events disabled")
	}

	// --- Payments ---
	if cfg.StripeSecretKey != "" {
		provider, err := payments.NewStripeProvider(payments.StripeConfig{APIKey: cfg.StripeSecretKey, Logger: logger})
		if err != nil {
			logger.Fatal("failed to initialize Stripe", zap.Error(err))
		}
		deps.Payments = provider
	} else {
		logger.Info("STRIPE_SECRET_KEY not set, payment intents disabled")
	}

	app := NewApp(cfg, deps)

	// --- Start HTTP Server ---
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.AppPort))
		if err := app.Listen(cfg.AppPort); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-ctx.Done()
	logger.Info("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("error during Fiber shutdown", zap.Error(err))
	}
	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			logger.Error("error closing RabbitMQ client", zap.Error(err))
		}
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownMetrics(flushCtx); err != nil {
		logger.Error("error flushing metrics", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("server gracefully stopped")
}
