package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/alvys"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/dates"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/logger"
)

// BatchSink receives one entity's complete export batch. Implemented by
// FileSink; tests substitute in-memory fakes.
type BatchSink interface {
	WriteBatch(ctx context.Context, scac, name string, records []alvys.Record) error
}

// ArtifactName returns the file name for one entity's batch. Range-filtered
// entities carry the window label so consecutive weeks produce distinct
// artifacts; static entities are a full snapshot and keep a fixed name.
func ArtifactName(entity domain.Entity, window dates.Window) string {
	upper := strings.ToUpper(entity.String())
	if entity.RangeFiltered() {
		return fmt.Sprintf("%s_API_%s.json", upper, window.Label())
	}
	return upper + ".json"
}

// FileSink writes export batches as indented JSON files under a per-client
// directory. The files are both the loader's input and the archive payload.
type FileSink struct {
	BaseDir string
}

// Dir returns the data directory for one client.
func (s *FileSink) Dir(scac string) string {
	return filepath.Join(s.BaseDir, domain.NormalizeSCAC(scac))
}

// Clean removes stale JSON artifacts from a previous run for this client.
func (s *FileSink) Clean(ctx context.Context, scac string) error {
	matches, err := filepath.Glob(filepath.Join(s.Dir(scac), "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list stale artifacts: %w", err)
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.FromContext(ctx).WithError(err).Warnf("Could not remove %s", path)
		}
	}
	if len(matches) > 0 {
		logger.FromContext(ctx).WithField(logger.FieldCount, len(matches)).
			Infof("Removed stale JSON artifacts from %s", s.Dir(scac))
	}
	return nil
}

// WriteBatch writes one batch to <base>/<SCAC>/<name>.
func (s *FileSink) WriteBatch(ctx context.Context, scac, name string, records []alvys.Record) error {
	dir := s.Dir(scac)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	if records == nil {
		records = []alvys.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}

	logger.FromContext(ctx).WithField(logger.FieldCount, len(records)).
		Infof("Wrote batch to %s", path)
	return nil
}
