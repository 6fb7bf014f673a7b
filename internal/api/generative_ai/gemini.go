package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-1.5-flash-latest"

// NewGeminiProvider returns a Provider backed by the Gemini generateContent
// API. The genai client is only built when a key is configured, since it
// would otherwise fall back to ambient credentials.
func NewGeminiProvider(ctx context.Context, cfg ProviderConfig, bc BreakerConfig, logger *slog.Logger) (*Client, error) {
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	if !cfg.hasKey() {
		return newClient(ProviderGemini, model, false, nil, bc, logger), nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     strings.TrimSpace(cfg.APIKey),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](float32(cfg.temperature())),
		ResponseMIMEType: "application/json",
	}

	send := func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), genCfg)
		if err != nil {
			var apiErr genai.APIError
			if errors.As(err, &apiErr) {
				return "", &ProviderError{Provider: ProviderGemini, Status: apiErr.Code, Err: err}
			}
			return "", &ProviderError{Provider: ProviderGemini, Err: err}
		}
		return firstCandidateText(resp), nil
	}

	return newClient(ProviderGemini, model, true, send, bc, logger), nil
}

func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return ""
	}
	for _, part := range content.Parts {
		if part != nil && part.Text != "" {
			return part.Text
		}
	}
	return ""
}
