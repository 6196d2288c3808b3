package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
)

type fakeRunner struct {
	startedAll bool
	ranSCAC    string
	clientErr  error
}

func (r *fakeRunner) StartAll(ctx context.Context) string {
	r.startedAll = true
	return "run-123"
}

func (r *fakeRunner) RunClient(ctx context.Context, scac string) error {
	r.ranSCAC = scac
	return r.clientErr
}

type fakeFailures struct {
	entries []domain.FailedClient
	err     error
}

func (f *fakeFailures) List(ctx context.Context) ([]domain.FailedClient, error) {
	return f.entries, f.err
}

func testRouter(runner Runner, failures FailureLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewRunsHandler(runner, failures)
	r.POST("/api/v1/runs", h.StartRun)
	r.GET("/api/v1/runs/failed", h.ListFailed)
	return r
}

func TestStartRunAll(t *testing.T) {
	runner := &fakeRunner{}
	router := testRouter(runner, &fakeFailures{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, runner.startedAll)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "run-123", body["run_id"])
	assert.Equal(t, "started", body["status"])
}

func TestStartRunSingleClient(t *testing.T) {
	runner := &fakeRunner{}
	router := testRouter(runner, &fakeFailures{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs",
		strings.NewReader(`{"scac":"aaaa"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "aaaa", runner.ranSCAC)
	assert.False(t, runner.startedAll)
}

func TestStartRunSingleClientFailure(t *testing.T) {
	runner := &fakeRunner{clientErr: errors.New("authentication failed")}
	router := testRouter(runner, &fakeFailures{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs",
		strings.NewReader(`{"scac":"AAAA"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "authentication failed")
}

func TestListFailed(t *testing.T) {
	failures := &fakeFailures{entries: []domain.FailedClient{
		{SCAC: "AAAA", RunID: "run-1", Reason: "auth failed"},
		{SCAC: "BBBB", RunID: "run-1", Reason: "export failed"},
	}}
	router := testRouter(&fakeRunner{}, failures)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/failed", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count  int `json:"count"`
		Failed []struct {
			SCAC   string `json:"scac"`
			Reason string `json:"reason"`
		} `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "AAAA", body.Failed[0].SCAC)
	assert.Equal(t, "export failed", body.Failed[1].Reason)
}

func TestListFailedError(t *testing.T) {
	router := testRouter(&fakeRunner{}, &fakeFailures{err: errors.New("database down")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/failed", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}
