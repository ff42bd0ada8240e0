package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/resume-analyzer/constants"
	"github.com/joseph-ayodele/resume-analyzer/internal/analysis"
	"github.com/joseph-ayodele/resume-analyzer/internal/artifact"
	"github.com/joseph-ayodele/resume-analyzer/internal/common"
	"github.com/joseph-ayodele/resume-analyzer/internal/llm/provider"
	"github.com/joseph-ayodele/resume-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/resume-analyzer/internal/queue"
	"github.com/joseph-ayodele/resume-analyzer/internal/server"
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
	if err := broker.DeclareQueue(constants.QueueExtraction, cfg.Broker.VisibilityTimeout); err != nil {
		logger.Error("declaring queue", "error", err)
		os.Exit(1)
	}

	client, err := provider.New(ctx, cfg.Provider, logger)
	if err != nil {
		logger.Error("building model provider client", "error", err)
		os.Exit(1)
	}

	srv := &server.Server{
		Analysis:    analysis.NewService(logger),
		Client:      client,
		Model:       cfg.Provider.Model,
		Temperature: cfg.Provider.Temperature,
		Orchestrator: &pipeline.Orchestrator{
			Store:     store,
			Records:   records,
			Publisher: broker,
			TTL:       cfg.Store.DefaultTTL,
			Logger:    logger,
		},
		Records: records,
		Logger:  logger,
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router(cfg.Server.AllowOrigin),
	}

	go func() {
		logger.Info("api.listening", "addr", cfg.Server.Addr, "provider", cfg.Provider.Provider)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("api.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
}
