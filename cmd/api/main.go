package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-warehouse-ms/internal/auth"
	"go-warehouse-ms/internal/handler"
	"go-warehouse-ms/internal/middleware"
	"go-warehouse-ms/internal/service"
	"go-warehouse-ms/internal/store"
	"go-warehouse-ms/internal/ws"
	"go-warehouse-ms/pkg/config"
	"go-warehouse-ms/pkg/database"
	"go-warehouse-ms/pkg/logger"
	"go-warehouse-ms/pkg/metrics"
	"go-warehouse-ms/pkg/migrate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "warehouse-ms:", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load Env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logg := logger.New(logger.Options{
		ServiceName: cfg.App.Name,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if envErr != nil {
		logg.Debug(ctx, ".env file not found, using process environment")
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DB, logger.ParseLevel(cfg.App.LogLevel))
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := migrate.MaybeRun(ctx, cfg.App.AutoMigrate, logg, db); err != nil {
		return err
	}

	// 3. Setup WebSocket Hub
	hub := ws.NewHub(logg)
	go hub.Run(ctx)

	// 4. Dependency Injection (Wiring Layers)
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ruleMetrics := metrics.NewRuleMetrics(registry)

	acc := store.NewAccessor(db)
	gate, err := auth.NewGate(acc, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("building credential gate: %w", err)
	}

	authService := service.NewAuthService(gate, acc, cfg.JWT, cfg.Auth.BcryptCost, logg)
	userService := service.NewUserService(acc, logg, cfg.Auth.BcryptCost)

	// 5. Seed the bootstrap admin
	seeded, err := userService.EnsureAdmin(ctx, cfg.Admin)
	if err != nil {
		return fmt.Errorf("seeding admin user: %w", err)
	}
	if seeded {
		logg.Info(logg.WithField(ctx, "username", cfg.Admin.Username), "bootstrap admin created")
	}

	handlers := handler.Handlers{
		Auth:      handler.NewAuthHandler(authService, logg),
		Inventory: handler.NewInventoryHandler(service.NewInventoryService(acc, hub, logg, ruleMetrics), logg),
		Product:   handler.NewProductHandler(service.NewProductService(acc, hub, logg), logg),
		Warehouse: handler.NewWarehouseHandler(service.NewWarehouseService(acc, logg), logg),
		Supplier:  handler.NewSupplierHandler(service.NewSupplierService(acc, logg), logg),
		Order:     handler.NewOrderHandler(service.NewOrderService(acc, hub, logg, ruleMetrics), logg),
		Payment:   handler.NewPaymentHandler(service.NewPaymentService(acc, hub, logg, ruleMetrics), logg),
		User:      handler.NewUserHandler(userService, logg),
		Report:    handler.NewReportHandler(service.NewReportService(acc, logg), logg),
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ErrorHandler:          handler.ErrorHandler(logg),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestID(logg))
	app.Use(middleware.AccessLog(logg))

	// 7. Routes
	handlers.Register(app.Group("/api/v1"), middleware.RequireAuth(authService, logg))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", middleware.RequireWebSocketAuth(authService, logg), hub.Handler())

	// 8. Graceful Shutdown
	listenErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "http server listening")
		listenErr <- app.Listen(":" + cfg.App.Port)
	}()

	select {
	case err := <-listenErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logg.Info(context.Background(), "shutting down server")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logg.Info(context.Background(), "server exited")
	return nil
}
