// Package config provides configuration loading and validation for the server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults used when the corresponding environment variable is unset.
const (
	DefaultPort             = 8080
	DefaultGeminiModel      = "gemini-2.5-flash"
	DefaultGroqModel        = "llama-3.3-70b-versatile"
	DefaultProviderTimeout  = 120 * time.Second
	DefaultJobSearchTimeout = 30 * time.Second
)

// Config holds the runtime configuration loaded from the environment.
// A missing API key disables that provider; it is not an error here.
type Config struct {
	Port int

	// Provider secrets and model overrides
	GeminiAPIKey string
	GroqAPIKey   string
	GeminiModel  string
	GroqModel    string

	// ProviderTimeout bounds each LLM call issued by the pipeline.
	ProviderTimeout time.Duration

	// AllowedOrigins are the origins accepted by the CORS middleware.
	// Empty means allow any origin.
	AllowedOrigins []string

	// Job-search proxy upstream. Empty disables the endpoint.
	JobSearchURL     string
	JobSearchAPIKey  string
	JobSearchTimeout time.Duration
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             DefaultPort,
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GroqAPIKey:       os.Getenv("GROQ_API_KEY"),
		GeminiModel:      DefaultGeminiModel,
		GroqModel:        DefaultGroqModel,
		ProviderTimeout:  DefaultProviderTimeout,
		JobSearchURL:     os.Getenv("JOB_SEARCH_URL"),
		JobSearchAPIKey:  os.Getenv("JOB_SEARCH_API_KEY"),
		JobSearchTimeout: DefaultJobSearchTimeout,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	if v := os.Getenv("GROQ_MODEL"); v != "" {
		cfg.GroqModel = v
	}

	if v := os.Getenv("PROVIDER_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT_SECONDS %q: %w", v, err)
		}
		cfg.ProviderTimeout = time.Duration(secs) * time.Second
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("config error: provider timeout must be positive")
	}
	return nil
}
