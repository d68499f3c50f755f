package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBaseURL     = "http://localhost:8080"
	defaultRequestTimeout = 15 * time.Second
	defaultProjectionDays = 7
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
)

// Config holds runtime configuration for the viewer CLI.
type Config struct {
	APIBaseURL     string
	BearerToken    string
	RequestTimeout time.Duration
	ProjectionDays float64
	LogLevel       string
	LogFormat      string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{
		APIBaseURL:     defaultAPIBaseURL,
		RequestTimeout: defaultRequestTimeout,
		ProjectionDays: defaultProjectionDays,
		LogLevel:       defaultLogLevel,
		LogFormat:      defaultLogFormat,
	}

	if v := env("API_BASE_URL"); v != "" {
		if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			return cfg, fmt.Errorf("invalid API_BASE_URL: %s", v)
		}
		cfg.APIBaseURL = strings.TrimRight(v, "/")
	}

	cfg.BearerToken = env("API_BEARER_TOKEN")

	if v := env("VIEWER_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid VIEWER_REQUEST_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return cfg, fmt.Errorf("invalid VIEWER_REQUEST_TIMEOUT: %s", v)
		}
		cfg.RequestTimeout = d
	}

	if v := env("VIEWER_PROJECTION_DAYS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !ValidHorizon(f) {
			return cfg, fmt.Errorf("invalid VIEWER_PROJECTION_DAYS: %s", v)
		}
		cfg.ProjectionDays = f
	}

	if v := env("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg, nil
}

// ValidHorizon reports whether days is a usable projection horizon.
func ValidHorizon(days float64) bool {
	return !math.IsNaN(days) && !math.IsInf(days, 0) && days >= 0
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
