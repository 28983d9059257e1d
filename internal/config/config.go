package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration, read from the environment.
type Config struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	Model        string `env:"BLUEPRINCE_MODEL" envDefault:"gemini-2.5-flash"`
	SaveDir      string `env:"BLUEPRINCE_SAVE_DIR" envDefault:".saves"`
	MemoryPath   string `env:"BLUEPRINCE_MEMORY_DB" envDefault:".saves/memory.db"`
	MCPToken     string `env:"BLUEPRINCE_MCP_TOKEN"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	return &cfg, nil
}
