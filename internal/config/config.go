package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	AdminPort       string        `env:"ADMIN_PORT" envDefault:"9090"`
	DBPath          string        `env:"DB_PATH" envDefault:"/data/invitations.db"`
	ViewLogPath     string        `env:"VIEWLOG_PATH" envDefault:"/data/views.db"`
	SeedFile        string        `env:"SEED_FILE"`
	PublicBaseURL   string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	RateLimitRPS    float64       `env:"RATE_LIMIT_RPS" envDefault:"1"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
	GinMode         string        `env:"GIN_MODE" envDefault:"release"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load reads the configuration from the environment. Variables from a .env
// file in the working directory are applied first when the file exists;
// variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
