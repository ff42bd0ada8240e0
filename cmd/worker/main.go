package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/resume-analyzer/internal/analysis"
	"github.com/joseph-ayodele/resume-analyzer/internal/artifact"
	"github.com/joseph-ayodele/resume-analyzer/internal/common"
	"github.com/joseph-ayodele/resume-analyzer/internal/extract"
	"github.com/joseph-ayodele/resume-analyzer/internal/llm/provider"
	"github.com/joseph-ayodele/resume-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/resume-analyzer/internal/queue"
	"github.com/joseph-ayodele/resume-analyzer/internal/retry"
	"github.com/joseph-ayodele/resume-analyzer/internal/status"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := artifact.NewRedisStore(ctx, cfg.Store.RedisURL, logger)
	if err != nil {
		logger.Error("connecting to artifact store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	records, err := status.NewRedisRecordStore(ctx, cfg.Store.RedisURL)
	if err != nil {
		logger.Error("connecting to status store", "error", err)
		os.Exit(1)
	}
	defer records.Close()

	broker, err := queue.NewRabbitMQ(cfg.Broker.URL)
	if err != nil {
		logger.Error("connecting to broker", "error", err)
		os.Exit(1)
	}
	defer broker.Close()

	client, err := provider.New(ctx, cfg.Provider, logger)
	if err != nil {
		logger.Error("building model provider client", "error", err)
		os.Exit(1)
	}

	ttl := cfg.Store.DefaultTTL
	worker := &pipeline.Worker{
		Extract: &pipeline.ExtractStage{
			Store:     store,
			Extractor: extract.NewPDFExtractor(logger),
			TTL:       ttl,
			Logger:    logger,
		},
		Analyze: &pipeline.AnalyzeStage{
			Store:       store,
			Service:     analysis.NewService(logger),
			Client:      client,
			Model:       cfg.Provider.Model,
			Temperature: cfg.Provider.Temperature,
			TTL:         ttl,
			Logger:      logger,
		},
		Report:    &pipeline.ReportStage{Store: store, TTL: ttl, Logger: logger},
		Records:   records,
		Publisher: broker,
		Retry: retry.Policy{
			MaxRetries: cfg.Retry.MaxRetries,
			BaseDelay:  cfg.Retry.BaseDelay,
			MaxDelay:   cfg.Retry.MaxDelay,
		},
		Concurrency: cfg.Broker.Concurrency,
		Logger:      logger,
	}

	if err := worker.Run(ctx, broker, cfg.Broker.VisibilityTimeout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("worker.stopped")
}
