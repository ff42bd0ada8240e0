package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/resume-analyzer/internal/common"
	"github.com/joseph-ayodele/resume-analyzer/internal/llm"
	"github.com/joseph-ayodele/resume-analyzer/internal/llm/gemini"
	"github.com/joseph-ayodele/resume-analyzer/internal/llm/groq"
)

// New constructs the provider client the process was configured with. The
// provider decision already happened in common.LoadConfig (first available
// credential wins, groq before gemini); this only materializes it.
func New(ctx context.Context, cfg common.ProviderConfig, logger *slog.Logger) (llm.Client, error) {
	switch cfg.Provider {
	case common.ProviderGroq:
		return groq.NewClient(groq.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}, logger), nil
	case common.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.APIKey, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
