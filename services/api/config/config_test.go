package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var optionalKeys = []string{
	"PORT", "API_PORT", "API_BEARER_TOKEN", "UPLOAD_DIR", "MAX_UPLOAD_BYTES",
	"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_SECURE",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "PLANT_CACHE_TTL",
	"DENSITY_ANALYZER_URL", "DENSITY_ANALYZER_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
}

func setRequired(t *testing.T) {
	t.Helper()
	for _, key := range optionalKeys {
		t.Setenv(key, "")
	}
	t.Setenv("DATABASE_URL", "sqlite://plants.db")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "plant-images", cfg.MinioBucket)
	assert.Equal(t, time.Minute, cfg.PlantCacheTTL)
	assert.Equal(t, 30*time.Second, cfg.AnalyzerTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()

	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("UPLOAD_DIR", "/var/lib/plants")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_ACCESS_KEY", "minio")
	t.Setenv("MINIO_SECRET_KEY", "minio123")
	t.Setenv("MINIO_SECURE", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("PLANT_CACHE_TTL", "30s")
	t.Setenv("DENSITY_ANALYZER_URL", "http://analyzer:5000/analyze")
	t.Setenv("DENSITY_ANALYZER_TIMEOUT", "5s")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/var/lib/plants", cfg.UploadDir)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.True(t, cfg.MinioSecure)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.PlantCacheTTL)
	assert.Equal(t, "http://analyzer:5000/analyze", cfg.AnalyzerURL)
	assert.Equal(t, 5*time.Second, cfg.AnalyzerTimeout)
}

func TestLoad_PortTakesPrecedence(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "7000")
	t.Setenv("API_PORT", "9090")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "abc"},
		{"PORT", "-1"},
		{"MAX_UPLOAD_BYTES", "0"},
		{"MINIO_SECURE", "maybe"},
		{"REDIS_DB", "-3"},
		{"PLANT_CACHE_TTL", "soon"},
		{"DENSITY_ANALYZER_TIMEOUT", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()

			assert.Error(t, err)
		})
	}
}

func TestLoad_MinioRequiresCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_ACCESS_KEY", "")
	t.Setenv("MINIO_SECRET_KEY", "")

	_, err := Load()

	assert.Error(t, err)
}
