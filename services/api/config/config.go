package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort            = 8080
	defaultUploadDir       = "uploads"
	defaultMaxUploadBytes  = 16 << 20
	defaultMinioBucket     = "plant-images"
	defaultPlantCacheTTL   = time.Minute
	defaultAnalyzerTimeout = 30 * time.Second
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
)

// Config holds environment-driven settings for the REST API.
type Config struct {
	DatabaseURL    string
	Port           int
	BearerToken    string
	UploadDir      string
	MaxUploadBytes int64

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSecure    bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PlantCacheTTL time.Duration

	AnalyzerURL     string
	AnalyzerTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:            defaultPort,
		UploadDir:       defaultUploadDir,
		MaxUploadBytes:  defaultMaxUploadBytes,
		MinioBucket:     defaultMinioBucket,
		PlantCacheTTL:   defaultPlantCacheTTL,
		AnalyzerTimeout: defaultAnalyzerTimeout,
		LogLevel:        defaultLogLevel,
		LogFormat:       defaultLogFormat,
	}

	cfg.DatabaseURL = env("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	if portStr := env("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := env("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	cfg.BearerToken = env("API_BEARER_TOKEN")

	if dir := env("UPLOAD_DIR"); dir != "" {
		cfg.UploadDir = dir
	}

	if v := env("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %s", v)
		}
		cfg.MaxUploadBytes = n
	}

	cfg.MinioEndpoint = env("MINIO_ENDPOINT")
	cfg.MinioAccessKey = env("MINIO_ACCESS_KEY")
	cfg.MinioSecretKey = env("MINIO_SECRET_KEY")
	if bucket := env("MINIO_BUCKET"); bucket != "" {
		cfg.MinioBucket = bucket
	}
	if v := env("MINIO_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid MINIO_SECURE: %w", err)
		}
		cfg.MinioSecure = secure
	}
	if cfg.MinioEndpoint != "" && (cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "") {
		return cfg, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set")
	}

	cfg.RedisAddr = env("REDIS_ADDR")
	cfg.RedisPassword = env("REDIS_PASSWORD")
	if v := env("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid REDIS_DB: %s", v)
		}
		cfg.RedisDB = n
	}
	if v := env("PLANT_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid PLANT_CACHE_TTL: %w", err)
		}
		cfg.PlantCacheTTL = d
	}

	cfg.AnalyzerURL = env("DENSITY_ANALYZER_URL")
	if v := env("DENSITY_ANALYZER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid DENSITY_ANALYZER_TIMEOUT: %w", err)
		}
		cfg.AnalyzerTimeout = d
	}

	if v := env("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
