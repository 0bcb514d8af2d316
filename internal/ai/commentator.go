package ai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/camuig/krx-stock-report/internal/config"
	"github.com/camuig/krx-stock-report/internal/logger"
	"github.com/camuig/krx-stock-report/internal/market"
)

// Commentator asks a chat completion model for a short analyst note on a
// price history. Without an API key it is disabled and Comment returns "".
type Commentator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	enabled bool
	logger  *logger.Logger
}

func NewCommentator(cfg *config.Config, log *logger.Logger) *Commentator {
	if !cfg.CommentaryEnabled() {
		return &Commentator{logger: log}
	}

	ocfg := openai.DefaultConfig(cfg.Commentary.APIKey)
	ocfg.BaseURL = cfg.Commentary.BaseURL

	return &Commentator{
		client:  openai.NewClientWithConfig(ocfg),
		model:   cfg.Commentary.Model,
		timeout: cfg.CommentaryTimeout(),
		enabled: true,
		logger:  log,
	}
}

func (c *Commentator) Enabled() bool { return c.enabled }

// Comment returns the model's note for company, given its summary and the
// most recent records (newest first).
func (c *Commentator) Comment(ctx context.Context, company string, summary market.Summary, recent market.History) (string, error) {
	if !c.enabled {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Info("requesting commentary", "company", company, "model", c.model, "rows", len(recent))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildUserPrompt(company, summary, recent)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("commentary API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("commentary API returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	c.logger.Debug("commentary raw response", "content", raw)

	return CleanResponse(raw), nil
}
