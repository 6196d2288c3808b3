// Package orchestrator fans the weekly ingest out across every configured
// client, isolating failures so one broken tenant cannot sink the run.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/dates"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/loader"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/logger"
)

// ClientStore resolves clients and their credentials. Implemented by
// repository.ClientRepository.
type ClientStore interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
	GetCredentials(ctx context.Context, scac string) (domain.Credentials, error)
}

// FailureLedger records clients whose ingest failed. Implemented by
// repository.FailureRepository.
type FailureLedger interface {
	Add(ctx context.Context, scac, runID, reason string) error
}

// UploadRecorder registers a completed client load. Implemented by
// repository.BulkRepository.
type UploadRecorder interface {
	RecordUpload(ctx context.Context, scac, fileIDs string, rowCount int64) error
}

// Alerter delivers failure notifications. Implemented by alerts.Notifier.
type Alerter interface {
	Notify(ctx context.Context, source, message, correlationID string)
}

// EntityExporter runs one client's export. Implemented by exporter.Exporter.
type EntityExporter interface {
	Run(ctx context.Context, scac string, creds domain.Credentials, window dates.Window, entities []domain.Entity) error
}

// ArtifactLoader loads one client's exported artifacts into the database.
// Implemented by loader.Loader.
type ArtifactLoader interface {
	LoadDir(ctx context.Context, scac, dir string, entities []domain.Entity) (loader.Result, error)
}

// ArtifactArchiver pushes one client's artifacts to blob storage.
// Implemented by storage.Archiver.
type ArtifactArchiver interface {
	UploadWeekly(ctx context.Context, scac, dir string) error
}

// Workspace manages the per-client artifact directory. Implemented by
// exporter.FileSink.
type Workspace interface {
	Dir(scac string) string
	Clean(ctx context.Context, scac string) error
}

// Options control what a run covers.
type Options struct {
	// WeeksAgo selects the reporting window: 0 is the last completed week.
	WeeksAgo int
	// Entities limits the run; empty means all entities.
	Entities []domain.Entity
	// DryRun stops after the export step: nothing is loaded, recorded, or
	// archived.
	DryRun bool
}

// Orchestrator runs the weekly ingest across clients sequentially. Clients
// are independent tenants, so any one client's failure is recorded and the
// run moves on.
type Orchestrator struct {
	clients  ClientStore
	ledger   FailureLedger
	uploads  UploadRecorder
	alerter  Alerter
	exporter EntityExporter
	loader   ArtifactLoader
	archiver ArtifactArchiver
	work     Workspace
	opts     Options
}

// New creates a new Orchestrator.
func New(
	clients ClientStore,
	ledger FailureLedger,
	uploads UploadRecorder,
	alerter Alerter,
	exporter EntityExporter,
	artifacts ArtifactLoader,
	archiver ArtifactArchiver,
	work Workspace,
	opts Options,
) *Orchestrator {
	if len(opts.Entities) == 0 {
		opts.Entities = domain.AllEntities
	}
	return &Orchestrator{
		clients:  clients,
		ledger:   ledger,
		uploads:  uploads,
		alerter:  alerter,
		exporter: exporter,
		loader:   artifacts,
		archiver: archiver,
		work:     work,
		opts:     opts,
	}
}

// RunAll ingests every configured client for the selected window and returns
// the run id. Failing to enumerate clients aborts the run with an alert;
// individual client failures go to the ledger and the run continues.
func (o *Orchestrator) RunAll(ctx context.Context) (string, error) {
	runID := uuid.New().String()
	return runID, o.runAll(ctx, runID)
}

// StartAll launches a full run in the background, detached from the caller's
// context, and returns the run id immediately.
func (o *Orchestrator) StartAll(ctx context.Context) string {
	runID := uuid.New().String()
	bg := logger.FromContext(ctx).WithContext(context.Background())
	go func() {
		if err := o.runAll(bg, runID); err != nil {
			logger.FromContext(bg).WithField(logger.FieldRunID, runID).
				WithError(err).Error("Background run failed")
		}
	}()
	return runID
}

func (o *Orchestrator) runAll(ctx context.Context, runID string) error {
	ctx = logger.WithField(ctx, logger.FieldRunID, runID)

	window, err := dates.LastWeekRange(o.opts.WeeksAgo)
	if err != nil {
		return err
	}
	logger.CtxInfo(ctx, "Starting weekly ingest for window %s", window.Label())

	clients, err := o.clients.ListClients(ctx)
	if err != nil {
		o.alerter.Notify(ctx, "list-clients", err.Error(), runID)
		return fmt.Errorf("failed to enumerate clients: %w", err)
	}
	if len(clients) == 0 {
		logger.CtxWarn(ctx, "No clients configured, nothing to ingest")
		return nil
	}

	failed := 0
	for _, client := range clients {
		if err := ctx.Err(); err != nil {
			return err
		}
		clientCtx := logger.WithField(ctx, logger.FieldSCAC, client.SCAC)

		if err := o.ingestClient(clientCtx, client.SCAC, client.Credentials, window); err != nil {
			failed++
			logger.CtxError(clientCtx, "Client ingest failed: %v", err)
			if addErr := o.ledger.Add(clientCtx, client.SCAC, runID, err.Error()); addErr != nil {
				// The ledger itself failing is as loud as we can get
				// without stopping the run.
				logger.CtxError(clientCtx, "Could not record failure: %v", addErr)
				o.alerter.Notify(clientCtx, "failure-ledger", addErr.Error(), runID)
			}
		}
	}

	logger.CtxInfo(ctx, "Weekly ingest finished: %d clients, %d failed",
		len(clients), failed)
	return nil
}

// RunClient ingests a single client, resolving its credentials first. Used
// by the CLI for targeted reruns; failures are returned, not ledgered.
func (o *Orchestrator) RunClient(ctx context.Context, scac string) error {
	scac = domain.NormalizeSCAC(scac)
	runID := uuid.New().String()
	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldRunID: runID,
		logger.FieldSCAC:  scac,
	})

	window, err := dates.LastWeekRange(o.opts.WeeksAgo)
	if err != nil {
		return err
	}

	creds, err := o.clients.GetCredentials(ctx, scac)
	if err != nil {
		return err
	}

	return o.ingestClient(ctx, scac, creds, window)
}

// ingestClient runs the full per-client sequence: clean the workspace,
// export, load, record the upload, archive. Any step failing fails the
// client.
func (o *Orchestrator) ingestClient(ctx context.Context, scac string, creds domain.Credentials, window dates.Window) error {
	if !creds.Complete() {
		return fmt.Errorf("incomplete credentials for %s", scac)
	}

	if err := o.work.Clean(ctx, scac); err != nil {
		return err
	}

	if err := o.exporter.Run(ctx, scac, creds, window, o.opts.Entities); err != nil {
		return err
	}

	if o.opts.DryRun {
		logger.CtxInfo(ctx, "Dry run, skipping load and archive for %s", scac)
		return nil
	}

	dir := o.work.Dir(scac)
	result, err := o.loader.LoadDir(ctx, scac, dir, o.opts.Entities)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).WithField(logger.FieldCount, result.Rows).
		Infof("Loaded %s", scac)

	if err := o.uploads.RecordUpload(ctx, scac, result.FileID, result.Rows); err != nil {
		return err
	}

	if err := o.archiver.UploadWeekly(ctx, scac, dir); err != nil {
		return err
	}

	return nil
}
