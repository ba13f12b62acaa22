package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finagent/internal/config"
	applog "finagent/internal/log"
	"finagent/internal/services"
	"finagent/internal/storage"
	"finagent/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.DefaultConfig().Level,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting tick-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	scheduler := services.NewRecurringScheduler(repo)
	goals := services.NewSavingsGoalManager(repo)
	tick := worker.NewTickWorker(scheduler, goals, cfg.TickInterval)

	logger.Info("Tick worker configured",
		"interval", cfg.TickInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tick.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("Tick worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Tick worker stopped gracefully")
}
