package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/config"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/logger"
)

// InitDB opens the database connection per configuration, with retry and
// backoff on transient connect failures, and runs migrations for the tables
// this service owns. ALVYS_CLIENTS is managed externally but included so
// local and test databases are self-contained.
func InitDB(ctx context.Context, cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB

	backoff := retry.WithMaxRetries(4, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var openErr error
		switch cfg.Driver {
		case "sqlite":
			db, openErr = gorm.Open(sqlite.Open(cfg.Path), gormConfig)
		default:
			db, openErr = gorm.Open(postgres.New(postgres.Config{
				DSN:                  cfg.DSN(),
				PreferSimpleProtocol: true,
			}), gormConfig)
		}
		if openErr != nil {
			logger.FromContext(ctx).WithError(openErr).Warn("Database connect failed, retrying")
			return retry.RetryableError(openErr)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(
			&domain.Client{},
			&domain.FailedClient{},
			&domain.UploadRun{},
		); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return db, nil
}
