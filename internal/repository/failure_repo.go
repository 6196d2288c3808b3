package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
)

// FailureRepository is the durable ledger of clients whose ingest failed.
// Appends are at-least-once: a client that fails across repeated runs shows
// up repeatedly, and consumers must expect duplicates. Each Add is a single
// insert, so the ledger stays safe if runs are ever parallelized.
type FailureRepository struct {
	db *gorm.DB
}

// NewFailureRepository creates a new FailureRepository.
func NewFailureRepository(db *gorm.DB) *FailureRepository {
	return &FailureRepository{db: db}
}

// Add appends one failure entry for a client.
func (r *FailureRepository) Add(ctx context.Context, scac, runID, reason string) error {
	entry := domain.FailedClient{
		SCAC:   domain.NormalizeSCAC(scac),
		RunID:  runID,
		Reason: reason,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record failed SCAC %q: %w", scac, err)
	}
	return nil
}

// List returns every ledger entry, oldest first.
func (r *FailureRepository) List(ctx context.Context) ([]domain.FailedClient, error) {
	var entries []domain.FailedClient
	if err := r.db.WithContext(ctx).Order("id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list failed SCACs: %w", err)
	}
	return entries, nil
}

// SCACs returns just the failed client codes, oldest first, duplicates
// preserved.
func (r *FailureRepository) SCACs(ctx context.Context) ([]string, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	scacs := make([]string, 0, len(entries))
	for _, e := range entries {
		scacs = append(scacs, e.SCAC)
	}
	return scacs, nil
}
