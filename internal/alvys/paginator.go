package alvys

import (
	"context"
	"errors"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/logger"
)

// PageFetcher fetches one page of a search endpoint. Implemented by Session;
// tests substitute fakes.
type PageFetcher interface {
	SearchPage(ctx context.Context, endpoint string, filter map[string]interface{}, page, pageSize int) ([]Record, error)
}

// FetchOptions tunes one pagination run.
type FetchOptions struct {
	// PageSize defaults to DefaultPageSize when zero.
	PageSize int
	// MaxItems caps the accumulated result when positive; the result is
	// truncated to exactly this many records.
	MaxItems int
}

// FetchAllPages drains a paginated search endpoint and returns the
// concatenation of every page's records.
//
// Alvys returns 404 when a page past the last valid page is requested, which
// happens legitimately whenever the total count is an exact multiple of the
// page size. A not-found status on any page therefore stops the loop and
// returns whatever accumulated so far; every other error propagates
// unmodified. No retries happen here — retry policy belongs to the transport.
func FetchAllPages(ctx context.Context, fetcher PageFetcher, endpoint string, filter map[string]interface{}, opts FetchOptions) ([]Record, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var items []Record
	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := fetcher.SearchPage(ctx, endpoint, filter, page, pageSize)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.NotFound() {
				logger.FromContext(ctx).WithField(logger.FieldPage, page).
					Infof("Page returned %d, assuming no more pages", apiErr.StatusCode)
				break
			}
			return nil, err
		}

		logger.FromContext(ctx).WithFields(logger.Fields{
			logger.FieldPage:  page,
			logger.FieldCount: len(batch),
		}).Debugf("Received page")

		if len(batch) == 0 {
			break
		}
		items = append(items, batch...)

		if len(batch) < pageSize {
			break
		}
		if opts.MaxItems > 0 && len(items) >= opts.MaxItems {
			break
		}
	}

	if opts.MaxItems > 0 && len(items) > opts.MaxItems {
		items = items[:opts.MaxItems]
	}
	return items, nil
}
