package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/resume-analyzer/internal/analysis"
	"github.com/joseph-ayodele/resume-analyzer/internal/common"
	"github.com/joseph-ayodele/resume-analyzer/internal/llm/provider"
)

// One-shot debug binary: read resume text from a file and print the full
// analysis result as JSON.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: analyze <resume.txt>")
		os.Exit(2)
	}
	text, err := os.ReadFile(os.Args[1])
	if err != nil {
		logger.Error("reading input file", "path", os.Args[1], "error", err)
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if cfg.Provider.APIKey == "" {
		logger.Error("no provider credential found, set GROQ_API_KEY or GEMINI_API_KEY")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := provider.New(ctx, cfg.Provider, logger)
	if err != nil {
		logger.Error("building model provider client", "error", err)
		os.Exit(1)
	}

	result, err := analysis.NewService(logger).RunFullAnalysis(ctx, analysis.Request{
		Text: string(text),
		Model: analysis.ModelConfig{
			Client:      client,
			Model:       cfg.Provider.Model,
			Temperature: cfg.Provider.Temperature,
		},
	})
	if err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("encoding result", "error", err)
		os.Exit(1)
	}
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
}
