package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/joseph-ayodele/resume-analyzer/internal/common"
	"github.com/joseph-ayodele/resume-analyzer/internal/llm"
)

// Client adapts the Gemini generation API to the chat-completion shape of
// llm.Client. Gemini takes a single prompt string, so the role-tagged
// messages are concatenated into one prompt before the call.
type Client struct {
	client *genai.Client
	logger *slog.Logger
}

func NewClient(ctx context.Context, apiKey string, logger *slog.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: client, logger: logger}, nil
}

// CreateCompletion implements llm.Client.
func (c *Client) CreateCompletion(ctx context.Context, model string, temperature float32, messages []llm.Message) (string, error) {
	prompt := CombineMessages(messages)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	start := time.Now()
	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(temperature)}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			c.logger.Warn("llm.gemini.rate_limited", "model", model, "elapsed_ms", time.Since(start).Milliseconds())
			return "", fmt.Errorf("gemini: %w", common.ErrRateLimited)
		}
		c.logger.Error("llm.gemini.error", "model", model, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	c.logger.Info("llm.gemini.ok", "model", model, "content_len", len(output), "elapsed_ms", time.Since(start).Milliseconds())
	return output, nil
}

// CombineMessages flattens role-tagged messages into one prompt string,
// uppercasing each role as a section header.
func CombineMessages(messages []llm.Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		role := msg.Role
		if role == "" {
			role = llm.RoleUser
		}
		parts = append(parts, strings.ToUpper(role)+":\n"+msg.Content)
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}
