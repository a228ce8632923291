package notion

import (
	"context"
	"sync"

	"github.com/jomei/notionapi"
)

// PageGetter fetches a single page. Satisfied by *Client; tests substitute
// fakes to simulate upstream failures.
type PageGetter interface {
	GetPage(ctx context.Context, id string) (*notionapi.Page, error)
}

// WorkerPool fans out page lookups across a bounded number of goroutines.
// It uses a semaphore pattern to limit concurrency while sharing a
// rate-limited client across all workers. Box and room name resolution
// issues many small page fetches, which is where this pays off.
type WorkerPool struct {
	client      PageGetter
	concurrency int
	semaphore   chan struct{}
}

// NewWorkerPool creates a worker pool with the specified concurrency limit.
// Recommended concurrency is 5-10 for the Notion API, balancing speed
// against rate limits.
func NewWorkerPool(client PageGetter, concurrency int) *WorkerPool {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 20 {
		concurrency = 20 // Cap to prevent excessive parallelism
	}
	return &WorkerPool{
		client:      client,
		concurrency: concurrency,
		semaphore:   make(chan struct{}, concurrency),
	}
}

// DefaultWorkerPool creates a worker pool with default concurrency (5).
func DefaultWorkerPool(client PageGetter) *WorkerPool {
	return NewWorkerPool(client, 5)
}

// PageFetchResult contains the result of fetching one page.
type PageFetchResult struct {
	PageID string
	Page   *notionapi.Page
	Err    error
}

// FetchPagesParallel fetches metadata for multiple pages in parallel.
// Results are delivered on the returned channel in completion order.
// Cancellation stops dispatching new fetches; workers already in flight
// still deliver their results, and the channel closes once they finish.
// A failed fetch yields a result with Err set; it never cancels siblings.
func (p *WorkerPool) FetchPagesParallel(ctx context.Context, pageIDs []string) <-chan PageFetchResult {
	results := make(chan PageFetchResult, len(pageIDs))

	go func() {
		// Close only after every started worker has finished: the channel
		// is buffered to len(pageIDs), so sends never block and never race
		// the close.
		var wg sync.WaitGroup
		defer func() {
			wg.Wait()
			close(results)
		}()

	dispatch:
		for _, pageID := range pageIDs {
			// Check context before starting new work
			select {
			case <-ctx.Done():
				break dispatch
			default:
			}

			// Acquire semaphore slot
			select {
			case p.semaphore <- struct{}{}:
			case <-ctx.Done():
				break dispatch
			}

			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				defer func() { <-p.semaphore }() // Release semaphore slot

				page, err := p.client.GetPage(ctx, id)
				results <- PageFetchResult{PageID: id, Page: page, Err: err}
			}(pageID)
		}
	}()

	return results
}

// FetchPages fetches the given pages in parallel and returns them keyed by
// page ID. Failed lookups are reported in the second map; successful pages
// are still returned, so callers can degrade per entry instead of failing
// the batch. Duplicate IDs are fetched once.
func (p *WorkerPool) FetchPages(ctx context.Context, pageIDs []string) (map[string]*notionapi.Page, map[string]error) {
	unique := make([]string, 0, len(pageIDs))
	seen := make(map[string]struct{}, len(pageIDs))
	for _, id := range pageIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	pages := make(map[string]*notionapi.Page, len(unique))
	failures := make(map[string]error)

	for res := range p.FetchPagesParallel(ctx, unique) {
		if res.Err != nil {
			failures[res.PageID] = res.Err
			continue
		}
		pages[res.PageID] = res.Page
	}

	return pages, failures
}
