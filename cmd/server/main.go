package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/alerts"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/alvys"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/api"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/config"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/exporter"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/loader"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/logger"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/orchestrator"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/repository"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/storage"
)

func main() {
	// Initialize logger from environment (rotation, multi-output)
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	ctx := context.Background()

	// Initialize database
	db, err := repository.InitDB(ctx, &cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	clientRepo := repository.NewClientRepository(db)
	failureRepo := repository.NewFailureRepository(db)
	bulkRepo := repository.NewBulkRepository(db)

	// Initialize S3-compatible blob storage
	objectStorage, err := storage.NewS3Storage(&storage.S3Config{
		Endpoint:  cfg.Blob.Endpoint,
		AccessKey: cfg.Blob.AccessKey,
		SecretKey: cfg.Blob.SecretKey,
		UseSSL:    cfg.Blob.UseSSL,
		Bucket:    cfg.Blob.Bucket,
		Region:    cfg.Blob.Region,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize blob storage")
	}
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure blob bucket")
	}

	// Initialize pipeline components
	apiClient := alvys.New(&alvys.Config{
		APIBase:    cfg.Alvys.APIBase,
		APIVersion: cfg.Alvys.APIVersion,
		PageSize:   cfg.Alvys.PageSize,
		Timeout:    cfg.Alvys.Timeout,
	})
	sink := &exporter.FileSink{BaseDir: cfg.Export.DataDir}

	orch := orchestrator.New(
		clientRepo,
		failureRepo,
		bulkRepo,
		alerts.New(cfg.Alerts.Endpoint, cfg.Alerts.Timeout),
		exporter.New(apiClient, sink),
		loader.New(bulkRepo),
		storage.NewArchiver(objectStorage),
		sink,
		orchestrator.Options{
			WeeksAgo: cfg.Export.WeeksAgo,
		},
	)

	// Setup router
	router := api.SetupRouter(orch, failureRepo, cfg.Server.Mode)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
