package notion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jomei/notionapi"
)

// fakePageGetter serves canned pages and records how often each ID was fetched.
type fakePageGetter struct {
	mu      sync.Mutex
	pages   map[string]*notionapi.Page
	failing map[string]error
	calls   map[string]int
}

func newFakePageGetter() *fakePageGetter {
	return &fakePageGetter{
		pages:   make(map[string]*notionapi.Page),
		failing: make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (f *fakePageGetter) GetPage(_ context.Context, id string) (*notionapi.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	if err, ok := f.failing[id]; ok {
		return nil, err
	}
	if page, ok := f.pages[id]; ok {
		return page, nil
	}
	return nil, errors.New("page not found")
}

func TestNewWorkerPool_ConcurrencyBounds(t *testing.T) {
	tests := []struct {
		name  string
		given int
		want  int
	}{
		{name: "zero clamps to one", given: 0, want: 1},
		{name: "negative clamps to one", given: -3, want: 1},
		{name: "within range", given: 7, want: 7},
		{name: "above cap clamps to twenty", given: 50, want: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewWorkerPool(newFakePageGetter(), tt.given)
			if pool.concurrency != tt.want {
				t.Errorf("concurrency = %d, want %d", pool.concurrency, tt.want)
			}
		})
	}
}

func TestFetchPagesParallel(t *testing.T) {
	fake := newFakePageGetter()
	var ids []string
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("page-%d", i)
		ids = append(ids, id)
		fake.pages[id] = &notionapi.Page{ID: notionapi.ObjectID(id)}
	}

	pool := NewWorkerPool(fake, 4)

	var got atomic.Int32
	for res := range pool.FetchPagesParallel(context.Background(), ids) {
		if res.Err != nil {
			t.Errorf("unexpected error for %s: %v", res.PageID, res.Err)
		}
		got.Add(1)
	}

	if got.Load() != 10 {
		t.Errorf("got %d results, want 10", got.Load())
	}
}

func TestFetchPages_FailureDoesNotAbortBatch(t *testing.T) {
	fake := newFakePageGetter()
	fake.pages["ok-1"] = &notionapi.Page{ID: "ok-1"}
	fake.pages["ok-2"] = &notionapi.Page{ID: "ok-2"}
	fake.failing["bad"] = errors.New("simulated network error")

	pool := DefaultWorkerPool(fake)
	pages, failures := pool.FetchPages(context.Background(), []string{"ok-1", "bad", "ok-2"})

	if len(pages) != 2 {
		t.Errorf("got %d pages, want 2", len(pages))
	}
	if len(failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(failures))
	}
	if _, ok := failures["bad"]; !ok {
		t.Error("expected failure entry for \"bad\"")
	}
}

func TestFetchPages_DeduplicatesIDs(t *testing.T) {
	fake := newFakePageGetter()
	fake.pages["box-1"] = &notionapi.Page{ID: "box-1"}

	pool := DefaultWorkerPool(fake)
	pages, failures := pool.FetchPages(context.Background(), []string{"box-1", "box-1", "box-1"})

	if len(pages) != 1 || len(failures) != 0 {
		t.Fatalf("got %d pages, %d failures; want 1, 0", len(pages), len(failures))
	}
	if fake.calls["box-1"] != 1 {
		t.Errorf("box-1 fetched %d times, want 1", fake.calls["box-1"])
	}
}

// blockingPageGetter parks each GetPage call until released, so tests can
// cancel the batch while a worker is in flight.
type blockingPageGetter struct {
	started chan string
	release chan struct{}
}

func (b *blockingPageGetter) GetPage(_ context.Context, id string) (*notionapi.Page, error) {
	b.started <- id
	<-b.release
	return &notionapi.Page{ID: notionapi.ObjectID(id)}, nil
}

func TestFetchPagesParallel_CancelMidFlight(t *testing.T) {
	fake := &blockingPageGetter{
		started: make(chan string, 2),
		release: make(chan struct{}),
	}
	pool := NewWorkerPool(fake, 1)

	ctx, cancel := context.WithCancel(context.Background())
	results := pool.FetchPagesParallel(ctx, []string{"page-1", "page-2"})

	// First worker is in flight; the dispatcher is parked on the semaphore.
	first := <-fake.started
	cancel()
	close(fake.release)

	// The channel must drain and close cleanly; in-flight workers still
	// deliver their results after cancellation.
	var got []PageFetchResult
	for res := range results {
		if res.Err != nil {
			t.Errorf("unexpected error for %s: %v", res.PageID, res.Err)
		}
		got = append(got, res)
	}

	if len(got) == 0 {
		t.Fatal("expected the in-flight fetch to deliver a result")
	}
	if got[0].PageID != first {
		t.Errorf("first result = %s, want in-flight page %s", got[0].PageID, first)
	}
}

func TestFetchPagesParallel_ContextCancellation(t *testing.T) {
	fake := newFakePageGetter()
	for i := 0; i < 100; i++ {
		id := fmt.Sprintf("page-%d", i)
		fake.pages[id] = &notionapi.Page{ID: notionapi.ObjectID(id)}
	}
	var ids []string
	for id := range fake.pages {
		ids = append(ids, id)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewWorkerPool(fake, 2)
	count := 0
	for range pool.FetchPagesParallel(ctx, ids) {
		count++
	}

	// A canceled context stops new work; far fewer than all pages complete.
	if count == len(ids) {
		t.Errorf("expected cancellation to cut the batch short, got all %d results", count)
	}
}
