package alvys

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeFetcher serves a scripted sequence of pages and records every request.
type fakeFetcher struct {
	pages    [][]Record
	notFound map[int]bool
	failPage int
	failErr  error
	requests []int
}

func (f *fakeFetcher) SearchPage(ctx context.Context, endpoint string, filter map[string]interface{}, page, pageSize int) ([]Record, error) {
	f.requests = append(f.requests, page)
	if f.failErr != nil && page == f.failPage {
		return nil, f.failErr
	}
	if f.notFound[page] || page >= len(f.pages) {
		return nil, &APIError{StatusCode: 404, Endpoint: endpoint}
	}
	return f.pages[page], nil
}

func makePage(n int) []Record {
	page := make([]Record, n)
	for i := range page {
		page[i] = Record{"Id": fmt.Sprintf("rec-%d", i)}
	}
	return page
}

func TestFetchAllPagesExhaustsShortFinalPage(t *testing.T) {
	// 200 + 200 + 47: the short page signals the end without a 404 probe.
	fetcher := &fakeFetcher{
		pages: [][]Record{makePage(200), makePage(200), makePage(47)},
	}

	items, err := FetchAllPages(context.Background(), fetcher, "/drivers/search", nil, FetchOptions{PageSize: 200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 447 {
		t.Errorf("got %d items, want 447", len(items))
	}
	if len(fetcher.requests) != 3 {
		t.Errorf("got %d requests, want 3", len(fetcher.requests))
	}
}

func TestFetchAllPagesExactMultipleStopsOn404(t *testing.T) {
	// Exactly 400 records at page size 200: the loop cannot tell page 1 is
	// the last, so it probes page 2 and treats the 404 as end of data.
	fetcher := &fakeFetcher{
		pages: [][]Record{makePage(200), makePage(200)},
	}

	items, err := FetchAllPages(context.Background(), fetcher, "/trips/search", nil, FetchOptions{PageSize: 200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 400 {
		t.Errorf("got %d items, want 400", len(items))
	}
	if len(fetcher.requests) != 3 {
		t.Errorf("got %d requests, want 3 (two data pages plus the 404 probe)", len(fetcher.requests))
	}
}

func TestFetchAllPagesNotFoundOnFirstPage(t *testing.T) {
	// A tenant with no data at all 404s immediately: empty result, no error.
	fetcher := &fakeFetcher{notFound: map[int]bool{0: true}}

	items, err := FetchAllPages(context.Background(), fetcher, "/invoices/search", nil, FetchOptions{PageSize: 200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want 0", len(items))
	}
}

func TestFetchAllPagesPropagatesOtherErrors(t *testing.T) {
	serverErr := &APIError{StatusCode: 500, Endpoint: "/loads/search"}
	fetcher := &fakeFetcher{
		pages:    [][]Record{makePage(200), makePage(200)},
		failPage: 1,
		failErr:  serverErr,
	}

	_, err := FetchAllPages(context.Background(), fetcher, "/loads/search", nil, FetchOptions{PageSize: 200})
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 500 {
		t.Errorf("got %v, want the 500 APIError", err)
	}
}

func TestFetchAllPagesMaxItemsTruncates(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: [][]Record{makePage(200), makePage(200), makePage(200)},
	}

	items, err := FetchAllPages(context.Background(), fetcher, "/loads/search", nil, FetchOptions{PageSize: 200, MaxItems: 250})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 250 {
		t.Errorf("got %d items, want 250", len(items))
	}
	if len(fetcher.requests) != 2 {
		t.Errorf("got %d requests, want 2 (cap reached after second page)", len(fetcher.requests))
	}
}

func TestFetchAllPagesHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{pages: [][]Record{makePage(10)}}
	_, err := FetchAllPages(ctx, fetcher, "/trips/search", nil, FetchOptions{PageSize: 200})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if len(fetcher.requests) != 0 {
		t.Errorf("no request should be issued after cancellation")
	}
}
