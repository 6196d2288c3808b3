// Package loader turns a client's exported JSON artifacts into relational
// rows and bulk-inserts them into the client's schema.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/alvys"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/flatten"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/logger"
)

// RowWriter receives flattened rows for one table. Implemented by
// repository.BulkRepository.
type RowWriter interface {
	Write(ctx context.Context, schema, table string, rows []flatten.Row) (int64, error)
}

// Loader loads exported artifacts for one client at a time.
type Loader struct {
	writer RowWriter
}

// New creates a new Loader.
func New(writer RowWriter) *Loader {
	return &Loader{writer: writer}
}

// Result summarizes one client's load.
type Result struct {
	Rows   int64
	FileID string
}

// LoadDir parses each entity's artifact in dir and inserts its rows into the
// client's schema (the SCAC). Unlike the export step, a load error aborts
// the client: a partially loaded week is worse than a failed one, and the
// caller's failure boundary records it.
func (l *Loader) LoadDir(ctx context.Context, scac, dir string, entities []domain.Entity) (Result, error) {
	scac = domain.NormalizeSCAC(scac)
	insertedAt := time.Now().UTC()

	var result Result
	fileIDs := make(map[string]bool)

	for _, entity := range entities {
		paths, err := artifactPaths(dir, entity)
		if err != nil {
			return result, err
		}
		if len(paths) == 0 {
			logger.CtxWarn(ctx, "No artifact for %s in %s", entity, dir)
			continue
		}

		for _, path := range paths {
			records, err := readArtifact(path)
			if err != nil {
				return result, err
			}
			if len(records) == 0 {
				logger.CtxInfo(ctx, "No records in %s", filepath.Base(path))
				continue
			}
			if id, ok := records[0]["FILE_ID"].(string); ok {
				fileIDs[id] = true
			}

			outputs, err := flatten.Flatten(entity, records, insertedAt)
			if err != nil {
				return result, err
			}
			for _, out := range outputs {
				n, err := l.writer.Write(ctx, scac, out.Table, out.Rows)
				if err != nil {
					return result, err
				}
				result.Rows += n
				logger.FromContext(ctx).WithFields(logger.Fields{
					logger.FieldEntity: entity.String(),
					logger.FieldCount:  n,
				}).Infof("Inserted rows into %s.%s", scac, out.Table)
			}
		}
	}

	result.FileID = joinIDs(fileIDs)
	return result, nil
}

// artifactPaths lists the exported files belonging to one entity: either the
// window-labelled form (TRIPS_API_<range>.json) or the snapshot form
// (DRIVERS.json).
func artifactPaths(dir string, entity domain.Entity) ([]string, error) {
	upper := strings.ToUpper(entity.String())

	matches, err := filepath.Glob(filepath.Join(dir, upper+"_API_*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts for %s: %w", entity, err)
	}

	snapshot := filepath.Join(dir, upper+".json")
	if _, err := os.Stat(snapshot); err == nil {
		matches = append(matches, snapshot)
	}
	return matches, nil
}

func readArtifact(path string) ([]alvys.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var records []alvys.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

func joinIDs(ids map[string]bool) string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	// Typically a single id per run; sort only matters for the rare
	// multi-artifact case.
	if len(out) > 1 {
		for i := 0; i < len(out); i++ {
			for j := i + 1; j < len(out); j++ {
				if out[j] < out[i] {
					out[i], out[j] = out[j], out[i]
				}
			}
		}
	}
	return strings.Join(out, ",")
}
