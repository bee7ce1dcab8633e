package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// ConfigurationError reports a missing or unusable setting. It is fatal at startup.
type ConfigurationError struct {
	Var    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Var, e.Reason)
}

// Config is read once at startup and injected into the components that need it.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"production"`
	Port string `env:"PORT" envDefault:"8081"`

	// API_KEY is the name the web tool always used; GEMINI_API_KEY wins when both are set.
	APIKey       string `env:"API_KEY"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	GeminiBaseURL     string        `env:"GEMINI_BASE_URL"`
	Model             string        `env:"GEMINI_MODEL"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"90s"`
	ProfilePath       string        `env:"PROMPT_PROFILE" envDefault:"config/profile.yaml"`
	CORSOrigins       []string      `env:"CORS_ORIGINS" envSeparator:","`

	Profile Profile
}

// Development reports whether verbose logging should be enabled.
func (c *Config) Development() bool {
	return strings.EqualFold(c.Env, "development")
}

// Credential returns the API key to use for the generative model.
func (c *Config) Credential() string {
	if k := strings.TrimSpace(c.GeminiAPIKey); k != "" {
		return k
	}
	return strings.TrimSpace(c.APIKey)
}

// Load reads the given .env files (default ".env") when present, then the process
// environment, then the prompt profile. A missing credential is a ConfigurationError.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Credential() == "" {
		return nil, &ConfigurationError{Var: "API_KEY", Reason: "is not set"}
	}
	if cfg.GenerationTimeout <= 0 {
		return nil, &ConfigurationError{Var: "GENERATION_TIMEOUT", Reason: "must be positive"}
	}

	profile, err := LoadProfile(cfg.ProfilePath)
	if err != nil {
		return nil, err
	}
	if cfg.Model != "" {
		profile.Model = cfg.Model
	}
	cfg.Profile = profile

	return cfg, nil
}
