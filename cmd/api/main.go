package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veridion-labs/facegate/internal/api"
	"github.com/veridion-labs/facegate/internal/challenge"
	"github.com/veridion-labs/facegate/internal/config"
	"github.com/veridion-labs/facegate/internal/database"
	"github.com/veridion-labs/facegate/internal/face"
	"github.com/veridion-labs/facegate/internal/liveness"
	"github.com/veridion-labs/facegate/internal/provider/pgmatch"
	"github.com/veridion-labs/facegate/internal/repository"
	"github.com/veridion-labs/facegate/internal/service"
	"github.com/veridion-labs/facegate/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if cfg.AuditEnabled() {
		pool, err = database.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		logger.Info("attempt auditing enabled")
	} else {
		logger.Info("DATABASE_URL not set, attempt auditing disabled")
	}

	stack, err := face.NewStack(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build face provider stack: %w", err)
	}

	var matcherPool pgmatch.PgxPool
	if pool != nil {
		matcherPool = pool
	}
	matcher, index, err := face.NewMatcher(cfg, matcherPool, logger)
	if err != nil {
		return fmt.Errorf("build face matcher: %w", err)
	}

	identityStore, err := store.New(cfg.FaceDBPath, stack.Detector, index, logger)
	if err != nil {
		return fmt.Errorf("open identity store: %w", err)
	}

	verifier := liveness.NewVerifier(stack.Classifier, liveness.Config{
		EARThreshold: cfg.EARThreshold,
		TurnLeftMax:  cfg.TurnLeftMax,
		TurnRightMin: cfg.TurnRightMin,
		SmileScale:   cfg.SmileScale,
	}, logger)

	livenessService := service.NewLivenessService(
		challenge.NewIssuer(),
		stack.Detector,
		stack.Landmarks,
		stack.Classifier,
		verifier,
		logger,
	).WithAnalysisScale(cfg.AnalysisScale)

	authService := service.NewAuthService(identityStore, matcher, logger)

	deps := &api.Dependencies{
		Liveness: livenessService,
		Auth:     authService,
		DB:       pool,
	}
	if pool != nil {
		attempts := repository.NewAttemptRepository(pool)
		livenessService.WithAttemptRecorder(attempts)
		authService.WithAttemptRecorder(attempts)
		deps.Attempts = attempts
	}

	router := api.NewRouter(logger, deps)
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("starting server", "addr", addr, "environment", cfg.Environment)
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- router.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
	case <-shutdownCtx.Done():
		return fmt.Errorf("shutdown timed out")
	}

	logger.Info("server stopped")
	return nil
}
