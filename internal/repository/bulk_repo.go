package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/flatten"
)

// insertBatchSize caps how many rows go into one INSERT statement.
const insertBatchSize = 500

// BulkRepository appends flattened rows into per-client schema tables. Each
// batch is a complete snapshot for its window tagged with a run FILE_ID, so
// downstream can tell runs apart; replace-vs-append is a schema concern.
type BulkRepository struct {
	db *gorm.DB
}

// NewBulkRepository creates a new BulkRepository.
func NewBulkRepository(db *gorm.DB) *BulkRepository {
	return &BulkRepository{db: db}
}

// Write bulk-inserts rows into schema.table and returns the row count.
// An empty schema targets the unqualified table (sqlite has no schemas).
func (r *BulkRepository) Write(ctx context.Context, schema, table string, rows []flatten.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	qualified := table
	if schema != "" {
		qualified = schema + "." + table
	}

	// gorm inserts []map values directly; convert from the Row alias.
	values := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		values[i] = map[string]interface{}(row)
	}

	tx := r.db.WithContext(ctx).Table(qualified).CreateInBatches(values, insertBatchSize)
	if tx.Error != nil {
		return 0, fmt.Errorf("bulk insert into %s failed: %w", qualified, tx.Error)
	}
	return int64(len(rows)), nil
}

// RecordUpload registers one completed client load so downstream consumers
// can pick up the new batch.
func (r *BulkRepository) RecordUpload(ctx context.Context, scac, fileIDs string, rowCount int64) error {
	run := domain.UploadRun{
		SCAC:     domain.NormalizeSCAC(scac),
		FileID:   fileIDs,
		RowCount: rowCount,
	}
	if err := r.db.WithContext(ctx).Create(&run).Error; err != nil {
		return fmt.Errorf("failed to record upload for %q: %w", scac, err)
	}
	return nil
}
