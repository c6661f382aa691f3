package main

import (
	"fmt"

	"crudapi/internal/auth"
	"crudapi/internal/config"
	"crudapi/internal/handlers"
	"crudapi/internal/middleware"
	"crudapi/internal/services"
	"crudapi/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// App is the wired HTTP application together with the resources it owns.
type App struct {
	Fiber       *fiber.App
	Storage     *storage.Storage
	AuthService *services.AuthService
}

// NewApp opens storage and wires repositories, services and handlers into
// a Fiber app. publisher may be nil to disable domain events.
func NewApp(cfg *config.Config, log *logrus.Logger, publisher services.EventPublisher) (*App, error) {
	store, err := storage.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return nil, err
	}

	app, authService := newFiberApp(cfg, log, store, publisher)
	return &App{
		Fiber:       app,
		Storage:     store,
		AuthService: authService,
	}, nil
}

func newFiberApp(cfg *config.Config, log *logrus.Logger, store *storage.Storage, publisher services.EventPublisher) (*fiber.App, *services.AuthService) {
	// --- Services ---
	userService := services.NewUserService(store.Users, publisher, log)
	addressService := services.NewAddressService(store.Addresses, userService, publisher, log)
	authService := services.NewAuthService(
		userService,
		auth.NewPasswordHasher(cfg.BcryptCost),
		auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn),
	)

	// --- Handlers ---
	healthHandler := handlers.NewHealthHandler()
	userHandler := handlers.NewUserHandler(userService, log)
	addressHandler := handlers.NewAddressHandler(addressService, log)
	authHandler := handlers.NewAuthHandler(authService, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.RequestLogger(log))
	app.Use(metrics.Handler())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowedOrigins()}))

	app.Get("/", healthHandler.HandleWelcome)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// --- API Routes ---
	api := app.Group("/api")
	if cfg.RateLimitMax > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitMax,
			Expiration: cfg.RateLimitWindow,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(handlers.Response{
					Success: false,
					Message: "Too many requests from this IP, please try again later.",
				})
			},
		}))
	}

	healthHandler.RegisterRoutes(api)
	userHandler.RegisterRoutes(api)
	addressHandler.RegisterRoutes(api)
	authHandler.RegisterRoutes(api)

	app.Use(handlers.NotFound)

	return app, authService
}

// Close releases the storage connection.
func (a *App) Close() error {
	if err := a.Storage.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}
