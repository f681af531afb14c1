package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/thyrotrack-server/internal/api"
	"github.com/thyrotrack-server/internal/config"
	"github.com/thyrotrack-server/internal/database"
	"github.com/thyrotrack-server/internal/domain"
	"github.com/thyrotrack-server/internal/storage"
	"github.com/thyrotrack-server/internal/store"
	"github.com/thyrotrack-server/internal/summary"
	"github.com/thyrotrack-server/internal/views"
	"github.com/thyrotrack-server/pkg/genai"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation failed: %v\n", err)
		os.Exit(1)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Open the persistence backend
	kv, err := openStorage(ctx, configManager, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open storage backend")
	}
	defer kv.Close()

	// Load state: missing or malformed persisted data degrades to seed data
	recordStore := store.New(kv, logger)
	recordStore.Load(ctx)
	logger.WithFields(logrus.Fields{
		"backend": cfg.Storage.Backend,
		"records": len(recordStore.Records()),
	}).Info("Record store loaded")

	// Derived-view cache
	viewCache, err := views.NewCache(cfg.Cache.MaxItems, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create view cache")
	}

	// External generative-AI collaborator
	genClient := genai.NewResilientClient(genai.Config{
		BaseURL:   cfg.GenAI.BaseURL,
		APIKey:    cfg.GenAI.APIKey,
		Timeout:   cfg.GenAI.Timeout,
		RateLimit: cfg.GenAI.RateLimit,
	})
	summaries := summary.NewService(genClient, cfg.GenAI.SummaryModel, cfg.GenAI.ExtractModel, cfg.GenAI.Timeout, logger)

	// Start HTTP server
	server := api.NewServer(cfg, logger, recordStore, viewCache, summaries)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting ThyroTrack server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// newLogger builds the process logger from the logging configuration.
func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// openStorage opens the configured key-value backend. The postgres backend
// runs its schema migrations and verifies connectivity first.
func openStorage(ctx context.Context, cm *config.Manager, logger *logrus.Logger) (storage.KV, error) {
	cfg := cm.GetStorageConfig()

	switch cfg.Backend {
	case "sqlite":
		return storage.NewSQLiteKV(cm.SQLitePath())

	case "postgres":
		runner, err := database.NewMigrationRunner(cm.PostgresURL(), cfg.Postgres.MigrationsPath, logger)
		if err != nil {
			return nil, err
		}
		defer runner.Close()
		if err := runner.Up(); err != nil {
			return nil, err
		}

		db, err := database.NewConnection(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if err := db.HealthCheck(ctx); err != nil {
			db.Close()
			return nil, err
		}
		db.Close()

		return storage.NewPostgresKVFromURL(cm.PostgresURL())

	case "memory":
		logger.Warn("Using in-memory storage; records will not survive a restart")
		return storage.NewMemoryKV(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
