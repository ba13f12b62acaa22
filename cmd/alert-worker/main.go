package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	appamqp "finagent/internal/amqp"
	"finagent/internal/config"
	"finagent/internal/ledger"
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

	logger.Info("Starting alert-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err, "url", cfg.AMQPURL)
		os.Exit(1)
	}
	defer amqpClient.Close()

	led := ledger.New(repo)
	tracker := services.NewBudgetTracker(led, repo)
	goals := services.NewSavingsGoalManager(repo)
	reports := services.NewReportAggregator(led)
	insights := services.NewInsightService(led, reports, tracker, goals, repo)
	alerts := worker.NewAlertWorker(insights)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Consuming transaction events",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	err = amqpClient.ConsumeTransactionEvents(ctx, func(msg *appamqp.TransactionEventMessage) error {
		return alerts.HandleTransactionEvent(ctx, msg)
	})
	if err != nil && err != context.Canceled {
		logger.Error("Alert worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Alert worker stopped gracefully")
}
