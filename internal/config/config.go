package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar names an optional YAML file layered between defaults and env.
const PathEnvVar = "CONFIG_PATH"

var ErrMissingAPIKey = errors.New("MISTRAL_API_KEY is not set")

type Config struct {
	APIKey  string `koanf:"mistral_api_key"`
	ModelID string `koanf:"mistral_model_id"`
	BaseURL string `koanf:"mistral_base_url"`

	Port               string   `koanf:"port"`
	HTTPTimeoutSeconds int      `koanf:"http_timeout_seconds"`
	LogLevelName       string   `koanf:"log_level"`
	CORSOrigins        []string `koanf:"cors_origins"`
	RateLimitPerMinute int      `koanf:"rate_limit_per_minute"`

	DatasetPath        string `koanf:"dataset_path"`
	AnalysisPromptPath string `koanf:"analysis_prompt_path"`
	ChatPromptPath     string `koanf:"chat_prompt_path"`
}

func defaults() Config {
	return Config{
		ModelID:            "mistral-medium-3.1",
		BaseURL:            "https://api.mistral.ai/v1",
		Port:               "8080",
		HTTPTimeoutSeconds: 30,
		LogLevelName:       "info",
		CORSOrigins:        []string{"http://localhost:3000"},
		DatasetPath:        "datasets/online_shoppers_intention.csv",
		AnalysisPromptPath: "prompts/ux_analysis_prompt.md",
		ChatPromptPath:     "prompts/ux_chat_prompt.md",
	}
}

// Load layers struct defaults, the optional CONFIG_PATH file and the process
// environment (highest priority), then validates the result.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if p := os.Getenv(PathEnvVar); p != "" {
		if err := k.Load(file.Provider(p), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", p, err)
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	// env values arrive as strings
	if v, ok := k.Get("cors_origins").(string); ok {
		if err := k.Set("cors_origins", splitCSV(v)); err != nil {
			return Config{}, fmt.Errorf("set cors_origins: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate is the single startup check; request handlers never look at the
// environment.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.BaseURL == "" {
		return errors.New("MISTRAL_BASE_URL is empty")
	}
	if c.ModelID == "" {
		return errors.New("MISTRAL_MODEL_ID is empty")
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive, got %d", c.HTTPTimeoutSeconds)
	}
	return nil
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.LogLevelName) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func splitCSV(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
