package generativeAI

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/wahkip/internal/types"
)

// Settings selects and configures the text-generation providers.
type Settings struct {
	Primary   string
	Secondary string
	OpenAI    ProviderConfig
	Gemini    ProviderConfig
	Anthropic ProviderConfig
	Breaker   BreakerConfig
}

// Registry holds every constructed provider and the configured attempt order.
type Registry struct {
	providers map[string]Provider
	primary   string
	secondary string
}

// NewRegistry builds all three providers. Providers without a key are still
// registered so that attempts against them report ErrMissingCredential.
func NewRegistry(ctx context.Context, s Settings, logger *slog.Logger) (*Registry, error) {
	gemini, err := NewGeminiProvider(ctx, s.Gemini, s.Breaker, logger)
	if err != nil {
		return nil, err
	}
	return newRegistry(s.Primary, s.Secondary,
		NewOpenAIProvider(s.OpenAI, s.Breaker, logger),
		gemini,
		NewAnthropicProvider(s.Anthropic, s.Breaker, logger),
	)
}

func newRegistry(primary, secondary string, providers ...Provider) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	if primary == "" {
		primary = ProviderOpenAI
	}
	if _, ok := r.providers[primary]; !ok {
		return nil, fmt.Errorf("unknown primary provider %q", primary)
	}
	if secondary != "" {
		if _, ok := r.providers[secondary]; !ok {
			return nil, fmt.Errorf("unknown secondary provider %q", secondary)
		}
	}
	r.primary = primary
	r.secondary = secondary
	return r, nil
}

// Chain returns the providers in attempt order: the primary, then the
// secondary when it is set and differs from the primary.
func (r *Registry) Chain() []Provider {
	chain := []Provider{r.providers[r.primary]}
	if r.secondary != "" && r.secondary != r.primary {
		chain = append(chain, r.providers[r.secondary])
	}
	return chain
}

// Status reports credential presence and role for each provider.
func (r *Registry) Status() []types.ProviderStatus {
	out := make([]types.ProviderStatus, 0, len(r.providers))
	for _, name := range []string{ProviderOpenAI, ProviderGemini, ProviderAnthropic} {
		p, ok := r.providers[name]
		if !ok {
			continue
		}
		role := "unused"
		switch name {
		case r.primary:
			role = "primary"
		case r.secondary:
			role = "secondary"
		}
		out = append(out, types.ProviderStatus{Name: name, Configured: p.Configured(), Role: role})
	}
	return out
}
