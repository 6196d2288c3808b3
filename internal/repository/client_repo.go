package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
)

// ErrClientNotFound is returned when a SCAC has no credential record.
var ErrClientNotFound = errors.New("client not found")

// ClientRepository resolves SCAC codes to tenant credentials from the
// ALVYS_CLIENTS table. Lookups are cached for the duration of the process:
// credentials are read-mostly and each run re-resolves before use anyway.
type ClientRepository struct {
	db *gorm.DB

	mu    sync.RWMutex
	cache map[string]domain.Credentials
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{
		db:    db,
		cache: make(map[string]domain.Credentials),
	}
}

// GetCredentials looks up one client's credentials by SCAC.
func (r *ClientRepository) GetCredentials(ctx context.Context, scac string) (domain.Credentials, error) {
	scac = domain.NormalizeSCAC(scac)

	r.mu.RLock()
	creds, ok := r.cache[scac]
	r.mu.RUnlock()
	if ok {
		return creds, nil
	}

	var client domain.Client
	err := r.db.WithContext(ctx).Where(`"SCAC" = ?`, scac).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Credentials{}, fmt.Errorf("SCAC %q: %w", scac, ErrClientNotFound)
		}
		return domain.Credentials{}, fmt.Errorf("failed to look up SCAC %q: %w", scac, err)
	}

	r.mu.Lock()
	r.cache[scac] = client.Credentials
	r.mu.Unlock()

	return client.Credentials, nil
}

// ListClients returns every known client with its credentials, ordered by
// SCAC so fan-out runs process clients in a stable order.
func (r *ClientRepository) ListClients(ctx context.Context) ([]domain.Client, error) {
	var clients []domain.Client
	if err := r.db.WithContext(ctx).Order(`"SCAC"`).Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}
