// Package config reads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"scicalc/internal/evaluator"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds the settings of the calculator service.
type Config struct {
	Addr            string
	ServiceName     string
	OTLPEnabled     bool
	Store           string
	SQLitePath      string
	DefaultAngle    evaluator.AngleMode
	ShutdownTimeout time.Duration
}

// LoadDotEnv loads environment variables from .env when present.
// Existing process environment variables are not overridden.
func LoadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load .env: %w", err)
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Config{
		Addr:        stringOr(getenv("CALC_ADDR"), ":8080"),
		ServiceName: stringOr(getenv("OTEL_SERVICE_NAME"), "scicalc-api"),
		Store:       stringOr(getenv("CALC_STORE"), StoreMemory),
		SQLitePath:  stringOr(getenv("CALC_SQLITE_PATH"), "scicalc.db"),
	}

	var err error

	cfg.OTLPEnabled, err = boolOr(getenv("CALC_OTLP_ENABLED"), true)
	if err != nil {
		return Config{}, fmt.Errorf("CALC_OTLP_ENABLED: %w", err)
	}

	cfg.DefaultAngle, err = evaluator.ParseAngleMode(getenv("CALC_DEFAULT_ANGLE"))
	if err != nil {
		return Config{}, fmt.Errorf("CALC_DEFAULT_ANGLE: %w", err)
	}

	cfg.ShutdownTimeout, err = durationOr(getenv("CALC_SHUTDOWN_TIMEOUT"), 5*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("CALC_SHUTDOWN_TIMEOUT: %w", err)
	}

	switch cfg.Store {
	case StoreMemory, StoreSQLite:
	default:
		return Config{}, fmt.Errorf("CALC_STORE: unknown store %q", cfg.Store)
	}

	return cfg, nil
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func boolOr(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

func durationOr(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}
