package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string `env:"ENV"          envDefault:"local" validate:"required,oneof=local staging production"`
	Port        string `env:"PORT"         envDefault:"8080"  validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"  validate:"oneof=debug info warn error"`

	PublicBaseURL     string `env:"PUBLIC_BASE_URL"      envDefault:"http://localhost:8080" validate:"required,url"`
	BackendBaseURL    string `env:"BACKEND_BASE_URL,required"                                validate:"required,url"`
	BackendTimeoutSec int    `env:"BACKEND_TIMEOUT_SEC"  envDefault:"30"                    validate:"min=1,max=120"`

	// Empty DatabaseURL keeps sessions in memory.
	DatabaseURL string `env:"DATABASE_URL"`

	SessionSecret       string `env:"SESSION_SECRET,required" validate:"required,min=32"`
	SessionTTLHours     int    `env:"SESSION_TTL_HOURS"       envDefault:"720"        validate:"min=1,max=8760"`
	SessionCookieSecure bool   `env:"SESSION_COOKIE_SECURE"   envDefault:"false"`
	SessionSweepCron    string `env:"SESSION_SWEEP_CRON"      envDefault:"@every 15m" validate:"required"`

	PaddleEnv         string `env:"PADDLE_ENV"                 envDefault:"sandbox" validate:"required,oneof=sandbox production"`
	PaddleClientToken string `env:"PADDLE_CLIENT_TOKEN,required"                      validate:"required"`
	PaddleAPIKey      string `env:"PADDLE_API_KEY,required"                           validate:"required"`
	PaddleAPIBase     string `env:"PADDLE_API_BASE"                                   validate:"omitempty,url"`
	PaddleScriptURL   string `env:"PADDLE_SCRIPT_URL"          envDefault:"https://cdn.paddle.com/paddle/v2/paddle.js" validate:"required,url"`

	CheckoutRedirectDelayMS int `env:"CHECKOUT_REDIRECT_DELAY_MS" envDefault:"2000" validate:"min=0,max=30000"`
	ConfirmMaxRetries       int `env:"CONFIRM_MAX_RETRIES"        envDefault:"5"    validate:"min=0,max=20"`
	ConfirmRetryDelayMS     int `env:"CONFIRM_RETRY_DELAY_MS"     envDefault:"2000" validate:"min=0,max=30000"`
	ConfirmRedirectDelayMS  int `env:"CONFIRM_REDIRECT_DELAY_MS"  envDefault:"2000" validate:"min=0,max=30000"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
	SupportEmail string `env:"SUPPORT_EMAIL"  envDefault:"support@dailyquote.app" validate:"required,email"`
}

func Load() (*Config, error) {
	// .env is a local convenience; real environments set variables directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.PaddleAPIBase == "" {
		cfg.PaddleAPIBase = defaultPaddleAPIBase(cfg.PaddleEnv)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSec) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) CheckoutRedirectDelay() time.Duration {
	return time.Duration(c.CheckoutRedirectDelayMS) * time.Millisecond
}

func (c *Config) ConfirmRetryDelay() time.Duration {
	return time.Duration(c.ConfirmRetryDelayMS) * time.Millisecond
}

func (c *Config) ConfirmRedirectDelay() time.Duration {
	return time.Duration(c.ConfirmRedirectDelayMS) * time.Millisecond
}

func defaultPaddleAPIBase(paddleEnv string) string {
	if paddleEnv == "production" {
		return "https://api.paddle.com"
	}
	return "https://sandbox-api.paddle.com"
}

// CLI is the subset of settings paymentctl needs; it does not require the
// session secret or the public URL of the web server.
type CLI struct {
	BackendBaseURL    string `env:"BACKEND_BASE_URL,required" validate:"required,url"`
	BackendTimeoutSec int    `env:"BACKEND_TIMEOUT_SEC" envDefault:"30" validate:"min=1,max=120"`
	PaddleEnv         string `env:"PADDLE_ENV" envDefault:"sandbox" validate:"required,oneof=sandbox production"`
	PaddleAPIKey      string `env:"PADDLE_API_KEY,required" validate:"required"`
	PaddleAPIBase     string `env:"PADDLE_API_BASE" validate:"omitempty,url"`

	ConfirmMaxRetries   int `env:"CONFIRM_MAX_RETRIES"    envDefault:"5"    validate:"min=0,max=20"`
	ConfirmRetryDelayMS int `env:"CONFIRM_RETRY_DELAY_MS" envDefault:"2000" validate:"min=0,max=30000"`
}

func (c *CLI) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSec) * time.Second
}

func (c *CLI) ConfirmRetryDelay() time.Duration {
	return time.Duration(c.ConfirmRetryDelayMS) * time.Millisecond
}

func LoadCLI() (*CLI, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &CLI{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.PaddleAPIBase == "" {
		cfg.PaddleAPIBase = defaultPaddleAPIBase(cfg.PaddleEnv)
	}
	return cfg, nil
}
