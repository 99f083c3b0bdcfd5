package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv         string        `env:"APP_ENV" envDefault:"development"`
	Port           string        `env:"PORT" envDefault:"8080"`
	DBPath         string        `env:"DB_PATH" envDefault:"./dev.db"`
	SessionSecret  string        `env:"SESSION_SECRET"`
	JWTSecret      string        `env:"JWT_SECRET"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"jobmargin"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST" envDefault:"20"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	SeedOwnerID    string        `env:"SEED_OWNER_ID"`
	// TrustProxy makes client addresses come from X-Forwarded-For / X-Real-IP.
	TrustProxy     bool          `env:"TRUST_PROXY" envDefault:"false"`
}

// Load reads the given dotenv files (".env" when none are named) and the process
// environment. Variables already set in the environment win over file values.
// Missing files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	vars := map[string]string{}
	for _, f := range files {
		fileVars, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
		for k, v := range fileVars {
			if _, ok := vars[k]; !ok {
				vars[k] = v
			}
		}
	}
	for k, v := range env.ToMap(os.Environ()) {
		vars[k] = v
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	return cfg, nil
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.AppEnv == EnvDevelopment
}

// Addr is the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.AppEnv != EnvDevelopment && c.AppEnv != EnvProduction {
		errs = append(errs, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.AppEnv))
	}
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a number between 1 and 65535, got %q", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH must not be empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.RateLimitRPS <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be positive"))
	}
	if c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be at least 1"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.AppEnv == EnvProduction {
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
		if c.SeedOwnerID != "" {
			errs = append(errs, errors.New("SEED_OWNER_ID is only allowed in development"))
		}
	}

	return errors.Join(errs...)
}

// Warnings lists settings that are allowed but probably unintended.
func (c Config) Warnings() []string {
	var out []string
	if c.SessionSecret == "" {
		out = append(out, "SESSION_SECRET is not set; session cookies are disabled")
	}
	if c.JWTSecret == "" {
		out = append(out, "JWT_SECRET is not set; bearer tokens are disabled")
	}
	return out
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
