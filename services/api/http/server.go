package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/plant-growth-tracker/internal/logging"
	"github.com/02loveslollipop/plant-growth-tracker/services/api/cache"
	"github.com/02loveslollipop/plant-growth-tracker/services/api/config"
	"github.com/02loveslollipop/plant-growth-tracker/services/api/db"
	"github.com/02loveslollipop/plant-growth-tracker/services/api/density"
	"github.com/02loveslollipop/plant-growth-tracker/services/api/storage"
)

// Deps are the collaborators the server needs.
type Deps struct {
	Store  db.Store
	Blobs  storage.BlobStore
	Plants cache.PlantCache
	// Analyzer may be nil; uploads must then carry green_density.
	Analyzer density.Analyzer
	Logger   *logging.Logger
}

// Server bundles router and dependencies for the REST API.
type Server struct {
	cfg      config.Config
	store    db.Store
	blobs    storage.BlobStore
	plants   cache.PlantCache
	analyzer density.Analyzer
	log      *logging.Logger
	engine   *gin.Engine
}

// New constructs a server with routes and middleware.
func New(cfg config.Config, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.MaxMultipartMemory = cfg.MaxUploadBytes

	logger := deps.Logger
	if logger == nil {
		logger = logging.Global()
	}
	plants := deps.Plants
	if plants == nil {
		plants = cache.Noop{}
	}

	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.Use(corsMiddleware())

	if cfg.BearerToken != "" {
		engine.Use(bearerAuthMiddleware(cfg.BearerToken))
	}

	server := &Server{
		cfg:      cfg,
		store:    deps.Store,
		blobs:    deps.Blobs,
		plants:   plants,
		analyzer: deps.Analyzer,
		log:      logger,
		engine:   engine,
	}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/uploads/:key", s.handleServeUpload)

	api := s.engine.Group("/api")
	{
		api.GET("/plants", s.handleListPlants)
		api.POST("/plants", s.handleCreatePlant)
		api.GET("/plants/:id/images", s.handleListImages)
		api.POST("/plants/:id/images", s.handleUploadImage)
		api.GET("/plants/:id/growth", s.handleGrowth)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// errorJSON answers with the API's error body and records err for the
// request log.
func errorJSON(c *gin.Context, status int, msg string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
