package generativeAI

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = openai.ChatModelGPT4oMini

// NewOpenAIProvider returns a Provider backed by the OpenAI chat completions
// API. SDK retries are disabled so one Generate call is one POST.
func NewOpenAIProvider(cfg ProviderConfig, bc BreakerConfig, logger *slog.Logger) *Client {
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	if !cfg.hasKey() {
		return newClient(ProviderOpenAI, model, false, nil, bc, logger)
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
	client := openai.NewClient(opts...)
	temperature := cfg.temperature()

	send := func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(SystemInstruction),
				openai.UserMessage(prompt),
			},
			Temperature: openai.Float(temperature),
		})
		if err != nil {
			var apiErr *openai.Error
			if errors.As(err, &apiErr) {
				return "", &ProviderError{Provider: ProviderOpenAI, Status: apiErr.StatusCode, Err: err}
			}
			return "", &ProviderError{Provider: ProviderOpenAI, Err: err}
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}
		return resp.Choices[0].Message.Content, nil
	}

	return newClient(ProviderOpenAI, model, true, send, bc, logger)
}
