package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
)

// Runner starts ingest runs. Implemented by orchestrator.Orchestrator.
type Runner interface {
	StartAll(ctx context.Context) string
	RunClient(ctx context.Context, scac string) error
}

// FailureLister reads the failure ledger. Implemented by
// repository.FailureRepository.
type FailureLister interface {
	List(ctx context.Context) ([]domain.FailedClient, error)
}

// RunsHandler exposes the ingest pipeline over HTTP.
type RunsHandler struct {
	runner   Runner
	failures FailureLister
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(runner Runner, failures FailureLister) *RunsHandler {
	return &RunsHandler{runner: runner, failures: failures}
}

type startRunRequest struct {
	// SCAC limits the run to one client; empty runs every client.
	SCAC string `json:"scac"`
}

// StartRun kicks off an ingest run. A full run is started in the background
// and acknowledged with its run id; a single-client run executes inline so
// the caller sees the outcome.
func (h *RunsHandler) StartRun(c *gin.Context) {
	var req startRunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	if req.SCAC != "" {
		if err := h.runner.RunClient(c.Request.Context(), req.SCAC); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"scac":  domain.NormalizeSCAC(req.SCAC),
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"scac":   domain.NormalizeSCAC(req.SCAC),
			"status": "completed",
		})
		return
	}

	runID := h.runner.StartAll(c.Request.Context())
	c.JSON(http.StatusAccepted, gin.H{
		"run_id": runID,
		"status": "started",
	})
}

// ListFailed returns the failure ledger, oldest entry first.
func (h *RunsHandler) ListFailed(c *gin.Context) {
	entries, err := h.failures.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"scac":        e.SCAC,
			"run_id":      e.RunID,
			"reason":      e.Reason,
			"recorded_at": e.RecordedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(out),
		"failed": out,
	})
}
