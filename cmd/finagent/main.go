package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finagent/internal/amqp"
	"finagent/internal/assistant"
	"finagent/internal/config"
	apphttp "finagent/internal/http"
	"finagent/internal/ledger"
	applog "finagent/internal/log"
	"finagent/internal/nlg"
	nlggoogle "finagent/internal/nlg/google"
	"finagent/internal/services"
	"finagent/internal/storage"
)

func main() {
	// Load .env for local development; absence is fine in production.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting finagent server")

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

	// AMQP is optional: without a broker the API still works, only the
	// alert worker goes quiet.
	var publisher apphttp.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, events disabled", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	// The generator is optional too; the assistant falls back to canned
	// responses without it.
	var generator nlg.Generator
	if cfg.GeminiAPIKey != "" {
		generator, err = nlggoogle.New(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("Failed to initialize generation client, using fallbacks", "error", err)
			generator = nil
		} else {
			logger.Info("Generation client initialized", "model", cfg.GeminiModel)
		}
	}

	led := ledger.New(repo)
	tracker := services.NewBudgetTracker(led, repo)
	goals := services.NewSavingsGoalManager(repo)
	scheduler := services.NewRecurringScheduler(repo)
	reports := services.NewReportAggregator(led)
	insights := services.NewInsightService(led, reports, tracker, goals, repo)
	chat := assistant.New(led, tracker, goals, repo, generator, cfg.NLGTimeout)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:    led,
		Tracker:   tracker,
		Goals:     goals,
		Scheduler: scheduler,
		Reports:   reports,
		Insights:  insights,
		Assistant: chat,
		Purger:    repo,
		Publisher: publisher,
	})
	srv.Handler = applog.Middleware(logger)(srv.Handler)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
