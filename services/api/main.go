package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/02loveslollipop/plant-growth-tracker/internal/logging"
	"github.com/02loveslollipop/plant-growth-tracker/services/api/cache"
	"github.com/02loveslollipop/plant-growth-tracker/services/api/config"
	"github.com/02loveslollipop/plant-growth-tracker/services/api/db"
	"github.com/02loveslollipop/plant-growth-tracker/services/api/density"
	httpserver "github.com/02loveslollipop/plant-growth-tracker/services/api/http"
	"github.com/02loveslollipop/plant-growth-tracker/services/api/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("config error", "error", err)
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logging.SetGlobal(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connection error", "error", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Fatal("db migration error", "error", err)
	}

	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		logger.Fatal("blob store error", "error", err)
	}

	var plants cache.PlantCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.PlantCacheTTL)
		if err != nil {
			logger.Fatal("redis connection error", "error", err)
		}
		plants = rc
		logger.Info("plant cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.PlantCacheTTL.String())
	}
	defer plants.Close()

	deps := httpserver.Deps{Store: store, Blobs: blobs, Plants: plants, Logger: logger}
	if cfg.AnalyzerURL != "" {
		deps.Analyzer = density.NewClient(&http.Client{Timeout: cfg.AnalyzerTimeout}, cfg.AnalyzerURL)
		logger.Info("density analyzer configured", "url", cfg.AnalyzerURL)
	}

	srv := httpserver.New(cfg, deps)
	logger.Info("REST API listening", "addr", cfg.ListenAddr())

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server error", "error", err)
	}
	logger.Info("REST API stopped")
}

func openBlobStore(ctx context.Context, cfg config.Config) (storage.BlobStore, error) {
	if cfg.MinioEndpoint == "" {
		return storage.NewLocal(cfg.UploadDir)
	}
	return storage.NewMinio(ctx, storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		Secure:    cfg.MinioSecure,
	})
}
