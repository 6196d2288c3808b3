package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/alerts"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/alvys"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/config"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/exporter"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/loader"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/logger"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/orchestrator"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/repository"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/storage"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "alvys-ingest",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	scac := flag.String("scac", "", "Ingest a single client by SCAC instead of all clients")
	entityList := flag.String("entities", "all", "Comma-separated entities to ingest, or 'all'")
	weeksAgo := flag.Int("weeks-ago", 0, "Reporting window offset: 0 is the last completed week")
	dryRun := flag.Bool("dry-run", false, "Export only, skip database load and blob archive")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	entities, err := domain.ParseEntities(strings.Split(*entityList, ","))
	if err != nil {
		appLogger.WithError(err).Fatal("Invalid -entities value")
	}
	if *weeksAgo < 0 {
		appLogger.Fatal("-weeks-ago must be non-negative")
	}

	appLogger.WithFields(logger.Fields{
		"scac":      *scac,
		"entities":  *entityList,
		"weeks_ago": *weeksAgo,
		"dry_run":   *dryRun,
	}).Info("Starting weekly ingest")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel the run on SIGINT/SIGTERM so partial work stops cleanly
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		appLogger.Warn("Shutdown signal received, cancelling run")
		cancel()
	}()

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
	if !*dryRun {
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure blob bucket")
		}
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
			WeeksAgo: *weeksAgo,
			Entities: entities,
			DryRun:   *dryRun,
		},
	)

	if *scac != "" {
		if err := orch.RunClient(ctx, *scac); err != nil {
			appLogger.WithError(err).Fatal("Client ingest failed")
		}
		appLogger.WithField(logger.FieldSCAC, domain.NormalizeSCAC(*scac)).
			Info("Client ingest completed")
		return
	}

	runID, err := orch.RunAll(ctx)
	if err != nil {
		appLogger.WithField(logger.FieldRunID, runID).WithError(err).
			Fatal("Weekly ingest aborted")
	}
	appLogger.WithField(logger.FieldRunID, runID).Info("Weekly ingest completed")
}
