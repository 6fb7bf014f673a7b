//go:build integration

package generativeAI

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const livePrompt = `Return ONLY JSON: {"morning":["Coffee"],"midday":[],"afternoon":[],"evening":[],"transportNotes":"walk","costEstimate":{"low":10,"high":20,"currency":"USD"},"picks":[]}`

func TestLiveProviders_Integration(t *testing.T) {
	logger := slog.Default()
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	gemini, err := NewGeminiProvider(ctx, ProviderConfig{APIKey: os.Getenv("GEMINI_API_KEY")}, DefaultBreakerConfig, logger)
	require.NoError(t, err)

	providers := []Provider{
		NewOpenAIProvider(ProviderConfig{APIKey: os.Getenv("OPENAI_API_KEY")}, DefaultBreakerConfig, logger),
		gemini,
		NewAnthropicProvider(ProviderConfig{APIKey: os.Getenv("ANTHROPIC_API_KEY")}, DefaultBreakerConfig, logger),
	}

	for _, p := range providers {
		t.Run(p.Name(), func(t *testing.T) {
			if !p.Configured() {
				t.Skipf("Skipping integration test: no credential for %s", p.Name())
			}
			raw, err := p.Generate(ctx, livePrompt)
			require.NoError(t, err)
			assert.Contains(t, string(raw), "morning")
		})
	}
}
