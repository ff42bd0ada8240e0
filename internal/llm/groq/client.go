package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/resume-analyzer/internal/common"
	"github.com/joseph-ayodele/resume-analyzer/internal/llm"
)

// Config for the Groq client. Groq exposes an OpenAI-compatible
// chat/completions endpoint, so this is a native implementation of
// llm.Client with no reshaping.
type Config struct {
	APIKey  string
	BaseURL string        // default https://api.groq.com/openai/v1
	Timeout time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// CreateCompletion implements llm.Client over POST /chat/completions.
func (c *Client) CreateCompletion(ctx context.Context, model string, temperature float32, messages []llm.Message) (string, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	body := map[string]any{
		"model":       model,
		"temperature": temperature,
		"messages":    messages,
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	c.logger.Info("llm.groq.request", "req_id", rid, "model", model, "temp", temperature, "messages", len(messages))

	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if status == http.StatusTooManyRequests {
		c.logger.Warn("llm.groq.rate_limited", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("groq: %w", common.ErrRateLimited)
	}
	if err != nil {
		c.logger.Error("llm.groq.http_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("groq completion: %w", err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.groq.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return "", fmt.Errorf("decode groq response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.groq.no_choices", "req_id", rid, "raw", string(raw))
		return "", fmt.Errorf("no choices in groq response")
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.logger.Info("llm.groq.ok", "req_id", rid, "content_len", len(content), "elapsed_ms", time.Since(start).Milliseconds())
	return content, nil
}
