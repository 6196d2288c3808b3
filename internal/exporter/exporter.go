// Package exporter drives one client's weekly export: authenticate the
// tenant, then fetch and persist each requested entity in canonical order.
package exporter

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/alvys"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/dates"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/logger"
)

// Exporter exports entity batches for one client at a time.
type Exporter struct {
	api  *alvys.Client
	sink BatchSink
}

// New creates a new Exporter.
func New(api *alvys.Client, sink BatchSink) *Exporter {
	return &Exporter{api: api, sink: sink}
}

// Run authenticates one client and exports the requested entities for the
// window. Authentication failure is fatal and returned; per-entity failures
// are logged and absorbed so one drifting endpoint cannot block the rest of
// the client's weekly export. Credentials are passed explicitly — never
// through process environment.
func (e *Exporter) Run(ctx context.Context, scac string, creds domain.Credentials, window dates.Window, entities []domain.Entity) error {
	scac = domain.NormalizeSCAC(scac)
	ctx = logger.WithField(ctx, logger.FieldSCAC, scac)

	logger.CtxInfo(ctx, "Authenticating tenant %s", creds.TenantID)
	session, err := e.api.Authenticate(ctx, creds)
	if err != nil {
		return fmt.Errorf("export aborted for %s: %w", scac, err)
	}
	logger.CtxInfo(ctx, "Token acquired")

	var failed *multierror.Error
	for _, entity := range canonicalOrder(entities) {
		entityCtx := logger.WithField(ctx, logger.FieldEntity, entity.String())

		count, err := e.exportEntity(entityCtx, session, scac, entity, window)
		if err != nil {
			// Deliberate isolation: schema drift or a transient failure on
			// one endpoint must not block the client's other entities.
			logger.CtxError(entityCtx, "Failed to export %s: %v", entity, err)
			failed = multierror.Append(failed, fmt.Errorf("%s: %w", entity, err))
			continue
		}
		logger.FromContext(entityCtx).WithField(logger.FieldCount, count).
			Infof("Exported %s", entity)
	}

	if failed != nil {
		logger.CtxWarn(ctx, "Export finished with %d failed entities: %v",
			len(failed.Errors), failed)
	}
	return nil
}

// exportEntity fetches every page for one entity, stamps the run id onto
// each record, and writes the batch to the sink.
func (e *Exporter) exportEntity(ctx context.Context, session *alvys.Session, scac string, entity domain.Entity, window dates.Window) (int, error) {
	filter := alvys.SearchFilter(entity, window)
	endpoint := e.api.SearchEndpoint(entity)

	records, err := alvys.FetchAllPages(ctx, session, endpoint, filter, alvys.FetchOptions{
		PageSize: e.api.PageSize(),
	})
	if err != nil {
		return 0, err
	}

	fileID := dates.FileID(time.Now())
	for _, rec := range records {
		rec["FILE_ID"] = fileID
	}

	name := ArtifactName(entity, window)
	if err := e.sink.WriteBatch(ctx, scac, name, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// canonicalOrder reorders the requested entities into the fixed export
// order so sequencing and logs are deterministic regardless of input order.
func canonicalOrder(entities []domain.Entity) []domain.Entity {
	requested := make(map[domain.Entity]bool, len(entities))
	for _, e := range entities {
		requested[e] = true
	}
	ordered := make([]domain.Entity, 0, len(requested))
	for _, e := range domain.AllEntities {
		if requested[e] {
			ordered = append(ordered, e)
		}
	}
	return ordered
}
