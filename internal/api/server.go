// Package api exposes the tracker over HTTP for the local browser UI.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/thyrotrack-server/internal/domain"
	"github.com/thyrotrack-server/internal/middleware"
	"github.com/thyrotrack-server/internal/store"
	"github.com/thyrotrack-server/internal/summary"
	"github.com/thyrotrack-server/internal/views"
)

// Server represents the HTTP server
type Server struct {
	cfg       *domain.Config
	log       *logrus.Logger
	store     *store.RecordStore
	viewCache *views.Cache
	summaries *summary.Service
	router    *gin.Engine
	server    *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *domain.Config, logger *logrus.Logger, recordStore *store.RecordStore, viewCache *views.Cache, summaries *summary.Service) *Server {
	// Set Gin mode based on log level
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	server := &Server{
		cfg:       cfg,
		log:       logger,
		store:     recordStore,
		viewCache: viewCache,
		summaries: summaries,
		router:    router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.cfg.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Handler exposes the router, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/records", s.handleListRecords)
		v1.POST("/records", s.handleSaveRecord)
		v1.PUT("/records/:id", s.handleUpdateRecord)
		v1.DELETE("/records/:id", s.handleDeleteRecord)

		v1.GET("/stats", s.handleStats)
		v1.GET("/markers", s.handleMarkers)
		v1.GET("/labs/table", s.handleLabTable)
		v1.GET("/labs/series/:marker", s.handleLabSeries)

		v1.GET("/profile", s.handleGetProfile)
		v1.PUT("/profile", s.handleSetProfile)

		v1.POST("/summary", s.handleGenerateSummary)
		v1.GET("/summary", s.handleSummaryStatus)
		v1.DELETE("/summary", s.handleResetSummary)

		v1.POST("/labreport/parse", s.handleParseLabReport)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"records":   len(s.store.Records()),
		"cache":     s.viewCache.Stats(),
	})
}
