package exporter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/alvys"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/dates"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
)

// memorySink captures batches in memory in write order.
type memorySink struct {
	mu      sync.Mutex
	names   []string
	batches map[string][]alvys.Record
}

func newMemorySink() *memorySink {
	return &memorySink{batches: make(map[string][]alvys.Record)}
}

func (s *memorySink) WriteBatch(ctx context.Context, scac, name string, records []alvys.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, name)
	s.batches[name] = records
	return nil
}

// fakeAlvys simulates the tenant token endpoint plus per-entity search
// endpoints with scripted responses.
type fakeAlvys struct {
	t *testing.T

	mu            sync.Mutex
	searchBodies  map[string][]map[string]interface{}
	failEntities  map[string]int // entity -> status to return
	denyAuth      bool
	entityRecords map[string][]alvys.Record
}

func (f *fakeAlvys) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/authentication/", func(w http.ResponseWriter, r *http.Request) {
		if f.denyAuth {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !assert.NoError(f.t, r.ParseForm()) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(f.t, "client_credentials", r.FormValue("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/p/v1/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		entity := parts[2]

		var body map[string]interface{}
		if !assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&body)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.searchBodies[entity] = append(f.searchBodies[entity], body)
		status := f.failEntities[entity]
		records := f.entityRecords[entity]
		f.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}

		page := int(body["page"].(float64))
		if page > 0 {
			// Single short page per entity; further pages do not exist.
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"Items": records})
	})
	return mux
}

func newFakeAlvys(t *testing.T) *fakeAlvys {
	return &fakeAlvys{
		t:            t,
		searchBodies: make(map[string][]map[string]interface{}),
		failEntities: make(map[string]int),
		entityRecords: map[string][]alvys.Record{
			"loads":    {{"Id": "L1"}, {"Id": "L2"}},
			"trips":    {{"Id": "T1"}},
			"invoices": {{"Id": "I1"}},
		},
	}
}

func testCreds() domain.Credentials {
	return domain.Credentials{
		TenantID:     "tenant-1",
		ClientID:     "client-1",
		ClientSecret: "secret",
	}
}

func runWindow(t *testing.T) dates.Window {
	t.Helper()
	window, err := dates.LastWeekRangeAt(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), 0)
	require.NoError(t, err)
	return window
}

func TestRunExportsEntitiesInCanonicalOrder(t *testing.T) {
	fake := newFakeAlvys(t)
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	api := alvys.New(&alvys.Config{APIBase: srv.URL, PageSize: 200})
	sink := newMemorySink()
	window := runWindow(t)

	// Request out of canonical order on purpose.
	err := New(api, sink).Run(context.Background(), "abcd", testCreds(), window,
		[]domain.Entity{domain.EntityInvoices, domain.EntityLoads, domain.EntityTrips})
	require.NoError(t, err)

	want := []string{
		ArtifactName(domain.EntityLoads, window),
		ArtifactName(domain.EntityTrips, window),
		ArtifactName(domain.EntityInvoices, window),
	}
	assert.Equal(t, want, sink.names)
}

func TestRunStampsFileID(t *testing.T) {
	fake := newFakeAlvys(t)
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	api := alvys.New(&alvys.Config{APIBase: srv.URL, PageSize: 200})
	sink := newMemorySink()
	window := runWindow(t)

	err := New(api, sink).Run(context.Background(), "ABCD", testCreds(), window,
		[]domain.Entity{domain.EntityLoads})
	require.NoError(t, err)

	records := sink.batches[ArtifactName(domain.EntityLoads, window)]
	require.Len(t, records, 2)
	for _, rec := range records {
		id, ok := rec["FILE_ID"].(string)
		require.True(t, ok, "every record carries FILE_ID")
		assert.Len(t, id, 17)
	}
	// One export run shares a single FILE_ID per entity batch.
	assert.Equal(t, records[0]["FILE_ID"], records[1]["FILE_ID"])
}

func TestRunSearchBodyShape(t *testing.T) {
	fake := newFakeAlvys(t)
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	api := alvys.New(&alvys.Config{APIBase: srv.URL, PageSize: 200})
	window := runWindow(t)

	err := New(api, newMemorySink()).Run(context.Background(), "ABCD", testCreds(), window,
		[]domain.Entity{domain.EntityTrips})
	require.NoError(t, err)

	bodies := fake.searchBodies["trips"]
	require.NotEmpty(t, bodies)
	body := bodies[0]

	assert.Equal(t, float64(0), body["page"])
	assert.Equal(t, float64(200), body["pageSize"])
	assert.Equal(t, true, body["IncludeDeleted"])

	updatedRange, ok := body["updatedAtRange"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, window.StartISO(), updatedRange["start"])
	assert.Equal(t, window.EndISO(), updatedRange["end"])
}

func TestRunIsolatesEntityFailures(t *testing.T) {
	fake := newFakeAlvys(t)
	fake.failEntities["invoices"] = http.StatusInternalServerError
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	api := alvys.New(&alvys.Config{APIBase: srv.URL, PageSize: 200})
	sink := newMemorySink()
	window := runWindow(t)

	err := New(api, sink).Run(context.Background(), "ABCD", testCreds(), window,
		[]domain.Entity{domain.EntityLoads, domain.EntityTrips, domain.EntityInvoices})
	require.NoError(t, err, "entity failures are absorbed")

	assert.Contains(t, sink.batches, ArtifactName(domain.EntityLoads, window))
	assert.Contains(t, sink.batches, ArtifactName(domain.EntityTrips, window))
	assert.NotContains(t, sink.batches, ArtifactName(domain.EntityInvoices, window))
}

func TestRunAuthFailureIsFatal(t *testing.T) {
	fake := newFakeAlvys(t)
	fake.denyAuth = true
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	api := alvys.New(&alvys.Config{APIBase: srv.URL, PageSize: 200})
	sink := newMemorySink()

	err := New(api, sink).Run(context.Background(), "ABCD", testCreds(), runWindow(t),
		[]domain.Entity{domain.EntityLoads})
	require.Error(t, err)
	assert.Empty(t, sink.names, "nothing is exported when authentication fails")
}

func TestArtifactName(t *testing.T) {
	window := runWindow(t)

	assert.Equal(t, "TRIPS_API_20240602-20240608.json", ArtifactName(domain.EntityTrips, window))
	assert.Equal(t, "DRIVERS.json", ArtifactName(domain.EntityDrivers, window))
}
