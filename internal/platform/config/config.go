package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv        string `env:"APP_ENV" default:"development"`
	Port          string `env:"PORT" default:"8080"`
	LogLevel      string `env:"LOG_LEVEL" default:"info"`
	LogFormat     string `env:"LOG_FORMAT" default:"text"`
	AdvertiseAddr string `env:"ADVERTISE_ADDR"` // overrides the detected local IP

	RequestTimeout        time.Duration `env:"REQUEST_TIMEOUT" default:"10s"`
	MaxConcurrentRequests int           `env:"MAX_CONCURRENT_REQUESTS" default:"1024"`
	RateLimitRPS          float64       `env:"RATE_LIMIT_RPS" default:"0"` // 0 disables rate limiting
	RateLimitBurst        int           `env:"RATE_LIMIT_BURST" default:"50"`

	SessionMailboxCapacity int           `env:"SESSION_MAILBOX_CAPACITY" default:"100"`
	SessionStopTimeout     time.Duration `env:"SESSION_STOP_TIMEOUT" default:"5s"`
	ShutdownGracePeriod    time.Duration `env:"SHUTDOWN_GRACE_PERIOD" default:"1s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535, got %q", cfg.Port)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	durations := map[string]time.Duration{
		"REQUEST_TIMEOUT":      cfg.RequestTimeout,
		"SESSION_STOP_TIMEOUT": cfg.SessionStopTimeout,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, d)
		}
	}
	if cfg.ShutdownGracePeriod < 0 {
		return errors.New("SHUTDOWN_GRACE_PERIOD must not be negative")
	}

	positive := map[string]int{
		"MAX_CONCURRENT_REQUESTS":  cfg.MaxConcurrentRequests,
		"SESSION_MAILBOX_CAPACITY": cfg.SessionMailboxCapacity,
		"RATE_LIMIT_BURST":         cfg.RateLimitBurst,
	}
	for name, v := range positive {
		if v < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", name, v)
		}
	}
	if cfg.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_RPS must not be negative")
	}

	return nil
}
