package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type ProviderConfig struct {
	APIKey string `mapstructure:"apiKey"`
	Model  string `mapstructure:"model"`
}

type Config struct {
	Mode         string `mapstructure:"mode"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	AI struct {
		// Mode is "live" or "canned".
		Mode      string         `mapstructure:"mode"`
		Primary   string         `mapstructure:"primary"`
		Secondary string         `mapstructure:"secondary"`
		Timeout   time.Duration  `mapstructure:"timeout"`
		OpenAI    ProviderConfig `mapstructure:"openai"`
		Gemini    ProviderConfig `mapstructure:"gemini"`
		Anthropic ProviderConfig `mapstructure:"anthropic"`
		Breaker   struct {
			MaxFailures uint32        `mapstructure:"maxFailures"`
			OpenTimeout time.Duration `mapstructure:"openTimeout"`
		} `mapstructure:"breaker"`
	} `mapstructure:"ai"`
	Cache struct {
		EventsTTL time.Duration `mapstructure:"eventsTTL"`
		Cleanup   time.Duration `mapstructure:"cleanup"`
	} `mapstructure:"cache"`
	RateLimit struct {
		ItineraryPerMinute int `mapstructure:"itineraryPerMinute"`
	} `mapstructure:"rateLimit"`
	Observability struct {
		ServiceName string `mapstructure:"serviceName"`
	} `mapstructure:"observability"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Provider credentials come from the conventional variable names.
	for key, env := range map[string]string{
		"ai.openai.apiKey":    "OPENAI_API_KEY",
		"ai.gemini.apiKey":    "GEMINI_API_KEY",
		"ai.anthropic.apiKey": "ANTHROPIC_API_KEY",
		"ai.mode":             "AI_MODE",
		"ai.primary":          "AI_PRIMARY",
		"ai.secondary":        "AI_SECONDARY",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return config, nil
}
