package generativeAI

import (
	"net/http"
	"strings"
)

// Provider names as used in configuration and warning codes.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// SystemInstruction is sent alongside every prompt where the API supports a
// separate system role.
const SystemInstruction = "Return only valid JSON. No markdown."

const defaultTemperature = 0.3

// ProviderConfig holds the settings shared by all provider adapters.
type ProviderConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int64
	HTTPClient  *http.Client
}

func (pc ProviderConfig) hasKey() bool {
	return strings.TrimSpace(pc.APIKey) != ""
}

func (pc ProviderConfig) temperature() float64 {
	if pc.Temperature <= 0 {
		return defaultTemperature
	}
	return pc.Temperature
}
