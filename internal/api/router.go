// Package api wires the HTTP surface: middleware, routes and docs.
package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/veridion-labs/facegate/internal/api/docs"
	"github.com/veridion-labs/facegate/internal/api/handler"
	"github.com/veridion-labs/facegate/internal/api/middleware"
	"github.com/veridion-labs/facegate/internal/database"
)

// Dependencies carries the assembled services. DB and Attempts may be
// nil when the audit trail is disabled.
type Dependencies struct {
	Liveness handler.LivenessService
	Auth     handler.AuthService
	Attempts handler.AttemptLister
	DB       *pgxpool.Pool
}

type Router struct {
	app     *fiber.App
	logger  *slog.Logger
	deps    *Dependencies
	limiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Facegate API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health probes; readiness covers the database when one is wired
	var checks []handler.ReadinessCheck
	if r.deps != nil && r.deps.DB != nil {
		db := r.deps.DB
		checks = append(checks, func(ctx context.Context) error {
			return database.HealthCheck(ctx, db)
		})
	}
	healthHandler := handler.NewHealthHandler(checks...)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	// Biometric endpoints are the brute-force surface; cap attempts per
	// client IP.
	r.limiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	v1 := r.app.Group("/v1", r.limiter.Handler())

	livenessHandler := handler.NewLivenessHandler(r.deps.Liveness, r.logger)
	v1.Get("/liveness/challenge", livenessHandler.Challenge)
	v1.Post("/liveness/verify", livenessHandler.Verify)
	v1.Post("/liveness/emotion", livenessHandler.Emotion)

	authHandler := handler.NewAuthHandler(r.deps.Auth, r.logger)
	v1.Post("/auth/register", authHandler.Register)
	v1.Post("/auth/login", authHandler.Login)
	v1.Get("/auth/users", authHandler.Users)

	if r.deps.Attempts != nil {
		attemptsHandler := handler.NewAttemptsHandler(r.deps.Attempts)
		v1.Get("/attempts", attemptsHandler.List)
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	if r.limiter != nil {
		r.limiter.Stop()
	}
	return r.app.Shutdown()
}
