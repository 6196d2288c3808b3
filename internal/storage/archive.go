package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/logger"
)

const archiveFolder = "Archive"

// Archiver keeps one week of raw JSON per client at the top of the client's
// prefix and shifts the previous week into <SCAC>/Archive/ before each
// upload. Older archived copies are overwritten by name, so the bucket holds
// at most the current and the prior snapshot of each artifact.
type Archiver struct {
	store ObjectStorage
}

// NewArchiver creates a new Archiver.
func NewArchiver(store ObjectStorage) *Archiver {
	return &Archiver{store: store}
}

// UploadWeekly rotates the client's previous blobs into Archive/ and then
// uploads every JSON artifact from dir under the client's prefix.
func (a *Archiver) UploadWeekly(ctx context.Context, scac, dir string) error {
	scac = domain.NormalizeSCAC(scac)

	if err := a.rotate(ctx, scac); err != nil {
		return err
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list artifacts in %s: %w", dir, err)
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		key := path.Join(scac, filepath.Base(file))
		if err := a.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
			return err
		}
	}

	logger.CtxInfo(ctx, "Archived %d artifacts for %s", len(files), scac)
	return nil
}

// rotate moves the client's current top-level blobs into the Archive/
// folder, replacing whatever was archived there before.
func (a *Archiver) rotate(ctx context.Context, scac string) error {
	keys, err := a.store.List(ctx, scac+"/")
	if err != nil {
		return err
	}

	archivePrefix := path.Join(scac, archiveFolder) + "/"
	for _, key := range keys {
		if strings.HasPrefix(key, archivePrefix) {
			continue
		}
		dst := path.Join(scac, archiveFolder, path.Base(key))
		if err := a.store.Move(ctx, key, dst); err != nil {
			return err
		}
	}

	return nil
}
