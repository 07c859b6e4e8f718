package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable this app reads.
const EnvPrefix = "shoplist"

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	DBPath   string `envconfig:"DB_PATH" default:"shoplist.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Seed     bool   `envconfig:"SEED" default:"true"`
}

// Load reads configuration from SHOPLIST_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
