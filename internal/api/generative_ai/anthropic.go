package generativeAI

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicModel     = string(anthropic.ModelClaude3_5Sonnet20241022)
	defaultAnthropicMaxTokens = 2048
)

// NewAnthropicProvider returns a Provider backed by the Anthropic Messages API.
func NewAnthropicProvider(cfg ProviderConfig, bc BreakerConfig, logger *slog.Logger) *Client {
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	if !cfg.hasKey() {
		return newClient(ProviderAnthropic, model, false, nil, bc, logger)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	client := anthropic.NewClient(opts...)

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	temperature := cfg.temperature()

	send := func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:       anthropic.Model(model),
			MaxTokens:   maxTokens,
			System:      []anthropic.TextBlockParam{{Text: SystemInstruction}},
			Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
			Temperature: anthropic.Float(temperature),
		})
		if err != nil {
			var apiErr *anthropic.Error
			if errors.As(err, &apiErr) {
				return "", &ProviderError{Provider: ProviderAnthropic, Status: apiErr.StatusCode, Err: err}
			}
			return "", &ProviderError{Provider: ProviderAnthropic, Err: err}
		}
		for _, block := range resp.Content {
			if block.Type == "text" && block.Text != "" {
				return block.Text, nil
			}
		}
		return "", nil
	}

	return newClient(ProviderAnthropic, model, true, send, bc, logger)
}
