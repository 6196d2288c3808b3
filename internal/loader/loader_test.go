package loader

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/alvys"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/flatten"
)

type fakeWriter struct {
	tables    []string
	rowCounts map[string]int
	failTable string
}

func (w *fakeWriter) Write(ctx context.Context, schema, table string, rows []flatten.Row) (int64, error) {
	if table == w.failTable {
		return 0, errors.New("insert failed")
	}
	w.tables = append(w.tables, schema+"."+table)
	if w.rowCounts == nil {
		w.rowCounts = make(map[string]int)
	}
	w.rowCounts[table] += len(rows)
	return int64(len(rows)), nil
}

func writeArtifact(t *testing.T, dir, name string, records []alvys.Record) {
	t.Helper()
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "TRIPS_API_20240602-20240608.json", []alvys.Record{
		{"Id": "T1", "FILE_ID": "20240610080000000"},
		{"Id": "T2", "FILE_ID": "20240610080000000"},
	})
	writeArtifact(t, dir, "DRIVERS.json", []alvys.Record{
		{"Id": "D1", "FILE_ID": "20240610080000000"},
	})

	writer := &fakeWriter{}
	result, err := New(writer).LoadDir(context.Background(), "aaaa", dir,
		[]domain.Entity{domain.EntityTrips, domain.EntityDrivers})
	require.NoError(t, err)

	// Two trip rows, one driver row; the trips artifact also yields a
	// (possibly empty) stop table write.
	assert.Equal(t, int64(3), result.Rows)
	assert.Equal(t, "20240610080000000", result.FileID)
	assert.Contains(t, writer.tables, "AAAA.TRIPS")
	assert.Contains(t, writer.tables, "AAAA.DRIVERS")
	assert.Equal(t, 2, writer.rowCounts["TRIPS"])
	assert.Equal(t, 1, writer.rowCounts["DRIVERS"])
}

func TestLoadDirSkipsMissingArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "DRIVERS.json", []alvys.Record{
		{"Id": "D1", "FILE_ID": "20240610080000000"},
	})

	writer := &fakeWriter{}
	result, err := New(writer).LoadDir(context.Background(), "AAAA", dir, domain.AllEntities)
	require.NoError(t, err, "entities without an artifact are skipped, not fatal")
	assert.Equal(t, int64(1), result.Rows)
}

func TestLoadDirEmptyArtifact(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "DRIVERS.json", []alvys.Record{})

	writer := &fakeWriter{}
	result, err := New(writer).LoadDir(context.Background(), "AAAA", dir,
		[]domain.Entity{domain.EntityDrivers})
	require.NoError(t, err)
	assert.Zero(t, result.Rows)
	assert.Empty(t, writer.tables)
}

func TestLoadDirWriteFailureAborts(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "TRIPS_API_20240602-20240608.json", []alvys.Record{
		{"Id": "T1", "FILE_ID": "20240610080000000"},
	})

	writer := &fakeWriter{failTable: flatten.TripsTable}
	_, err := New(writer).LoadDir(context.Background(), "AAAA", dir,
		[]domain.Entity{domain.EntityTrips})
	require.Error(t, err, "load errors fail the client")
}

func TestLoadDirMalformedArtifact(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DRIVERS.json"), []byte("{not json"), 0o644))

	_, err := New(&fakeWriter{}).LoadDir(context.Background(), "AAAA", dir,
		[]domain.Entity{domain.EntityDrivers})
	require.Error(t, err)
}
