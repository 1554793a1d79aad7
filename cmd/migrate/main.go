package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/veridion-labs/facegate/internal/config"
	"github.com/veridion-labs/facegate/internal/database"
)

func main() {
	action := flag.String("action", "up", "migration action: up, down, version, force")
	flag.Parse()

	if err := run(*action, flag.Args()); err != nil {
		slog.Error("migration failed", "action", *action, "error", err)
		os.Exit(1)
	}
}

func run(action string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	db, err := database.NewPool(database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db, "facegate")
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer migrator.Close()

	switch action {
	case "up":
		if err := migrator.Up(); err != nil {
			return err
		}
		logger.Info("migrations applied")
	case "down":
		if err := migrator.Down(); err != nil {
			return err
		}
		logger.Info("last migration rolled back")
	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		logger.Info("migration state", "version", version, "dirty", dirty)
	case "force":
		if len(args) != 1 {
			return fmt.Errorf("force requires a version argument")
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("parse version: %w", err)
		}
		if err := migrator.Force(version); err != nil {
			return err
		}
		logger.Info("version forced", "version", version)
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	return nil
}
