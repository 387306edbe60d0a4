// Package config loads server settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogDevelopment switches to zap's console encoder for local runs.
	LogDevelopment bool `env:"LOG_DEVELOPMENT" envDefault:"false"`

	PhaseTimerDuration time.Duration `env:"PHASE_TIMER_DURATION" envDefault:"30s"`
	SwapPhaseSeconds   int           `env:"SWAP_PHASE_SECONDS" envDefault:"60"`
	SwapLockSeconds    int           `env:"SWAP_LOCK_SECONDS" envDefault:"20"`
	SwapTickInterval   time.Duration `env:"SWAP_TICK_INTERVAL" envDefault:"1s"`

	SessionExpiry        time.Duration `env:"SESSION_EXPIRY" envDefault:"1h"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`

	// DatabaseURL enables the match archive when set.
	DatabaseURL string `env:"DATABASE_URL"`

	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load reads .env if present, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	for name, d := range map[string]time.Duration{
		"PHASE_TIMER_DURATION":   c.PhaseTimerDuration,
		"SWAP_TICK_INTERVAL":     c.SwapTickInterval,
		"SESSION_EXPIRY":         c.SessionExpiry,
		"SESSION_SWEEP_INTERVAL": c.SessionSweepInterval,
		"SHUTDOWN_TIMEOUT":       c.ShutdownTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.SwapPhaseSeconds <= 0 {
		errs = append(errs, fmt.Errorf("SWAP_PHASE_SECONDS must be positive, got %d", c.SwapPhaseSeconds))
	}
	if c.SwapLockSeconds < 0 || c.SwapLockSeconds >= c.SwapPhaseSeconds {
		errs = append(errs, fmt.Errorf("SWAP_LOCK_SECONDS must be in [0, %d), got %d", c.SwapPhaseSeconds, c.SwapLockSeconds))
	}
	return errors.Join(errs...)
}

func (c Config) Addr() string { return ":" + c.Port }
