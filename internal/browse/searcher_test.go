package browse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dusk-indust/lendit/internal/catalog"
	"github.com/dusk-indust/lendit/internal/catalog/catalogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 30 * time.Millisecond

// waitResult blocks until the searcher commits a result or the test times out.
func waitResult(t *testing.T, ch <-chan SearchResult) SearchResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for search result")
		return SearchResult{}
	}
}

func newTestSearcher(t *testing.T, cat catalog.Catalog, opts ...SearcherOption) (*Searcher, <-chan SearchResult) {
	t.Helper()
	results := make(chan SearchResult, 8)
	opts = append([]SearcherOption{
		WithDebounce(testDebounce),
		WithOnResult(func(r SearchResult) { results <- r }),
	}, opts...)
	s := NewSearcher(context.Background(), cat, opts...)
	t.Cleanup(s.Close)
	return s, results
}

func TestSearcher_OnlyLastQueryAfterQuiescence(t *testing.T) {
	stub := newStub()
	var mu sync.Mutex
	var queries []string
	stub.searchItems = func(ctx context.Context, text string) ([]catalog.Item, error) {
		mu.Lock()
		queries = append(queries, text)
		mu.Unlock()
		return stub.Catalog.SearchItems(ctx, text)
	}

	s, results := newTestSearcher(t, stub)
	for _, q := range []string{"п", "па", "пал", "палатка"} {
		s.SetQuery(q)
		time.Sleep(testDebounce / 5)
	}

	r := waitResult(t, results)
	assert.Equal(t, "палатка", r.Query)
	assert.Equal(t, []int64{2}, catalogtest.ItemIDs(r.Items))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"палатка"}, queries)
}

func TestSearcher_DiscardsSupersededResponse(t *testing.T) {
	stub := newStub()
	release := make(chan struct{})
	stub.searchItems = func(ctx context.Context, text string) ([]catalog.Item, error) {
		if text == "slow" {
			// Ignore cancellation to model a response that still arrives.
			<-release
			return []catalog.Item{catalog.SeedItems[0]}, nil
		}
		return stub.Catalog.SearchItems(ctx, text)
	}

	s, results := newTestSearcher(t, stub)

	s.SetQuery("slow")
	time.Sleep(3 * testDebounce) // let "slow" go in flight

	s.SetQuery("дрель")
	r := waitResult(t, results)
	assert.Equal(t, "дрель", r.Query)

	close(release)
	select {
	case stale := <-results:
		t.Fatalf("stale result committed: %+v", stale)
	case <-time.After(3 * testDebounce):
	}

	assert.Equal(t, []int64{6}, catalogtest.ItemIDs(s.Results()))
}

func TestSearcher_CancelsSupersededContext(t *testing.T) {
	stub := newStub()
	cancelled := make(chan struct{})
	started := make(chan struct{})
	stub.searchItems = func(ctx context.Context, text string) ([]catalog.Item, error) {
		if text == "first" {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return stub.Catalog.SearchItems(ctx, text)
	}

	s, _ := newTestSearcher(t, stub)
	s.SetQuery("first")
	<-started
	s.SetQuery("second")

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("superseded search context was not cancelled")
	}
}

func TestSearcher_FailureKeepsResults(t *testing.T) {
	stub := newStub()
	fail := false
	var mu sync.Mutex
	stub.searchItems = func(ctx context.Context, text string) ([]catalog.Item, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, &catalog.StatusError{Code: 503, Status: "Service Unavailable"}
		}
		return stub.Catalog.SearchItems(ctx, text)
	}

	rec := &recorder{}
	s, results := newTestSearcher(t, stub, WithNotifier(rec))

	s.SetQuery("ная")
	waitResult(t, results)
	require.Equal(t, []int64{2, 3, 5, 6}, catalogtest.ItemIDs(s.Results()))

	mu.Lock()
	fail = true
	mu.Unlock()

	s.SetQuery("ная ")
	require.Eventually(t, func() bool { return len(rec.errors()) == 1 }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []int64{2, 3, 5, 6}, catalogtest.ItemIDs(s.Results()))
	assert.Contains(t, rec.errors()[0].Message, "Search failed")
}

func TestSearcher_BlankQueryClearsWithoutCallingStore(t *testing.T) {
	stub := newStub()
	var calls int
	var mu sync.Mutex
	stub.searchItems = func(ctx context.Context, text string) ([]catalog.Item, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return stub.Catalog.SearchItems(ctx, text)
	}

	s, results := newTestSearcher(t, stub)
	s.SetItems(catalog.SeedItems)

	s.SetQuery("canon")
	waitResult(t, results)
	require.Len(t, s.Results(), 1)

	s.SetQuery("   ")
	time.Sleep(3 * testDebounce)

	assert.Empty(t, s.Results())
	assert.Len(t, s.Visible(), 6)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestSearcher_VisibleIsIntersection(t *testing.T) {
	stub := newStub()
	s, results := newTestSearcher(t, stub, WithDebounce(time.Hour))
	s.SetItems(catalog.SeedItems)

	// Before any result: local filter of the held collection.
	s.SetQuery("ная")
	assert.Equal(t, []int64{2, 3, 5, 6}, catalogtest.ItemIDs(s.Visible()))

	// Commit a result for "ная" directly.
	s.mu.Lock()
	seq := s.seq
	s.mu.Unlock()
	s.run(seq, "ная", "ная")
	waitResult(t, results)

	// Typing narrows what is shown before the next search fires.
	s.SetQuery("ная камера")
	assert.Empty(t, s.Visible())

	s.SetQuery("зеркальная")
	assert.Equal(t, []int64{3}, catalogtest.ItemIDs(s.Visible()))

	// Only ids from the committed result can be visible.
	s.SetQuery("велосипед")
	assert.Empty(t, s.Visible())
}

func TestSearcher_TrimsQueryLikeLocalFilter(t *testing.T) {
	stub := newStub()
	var mu sync.Mutex
	var sent []string
	stub.searchItems = func(ctx context.Context, text string) ([]catalog.Item, error) {
		mu.Lock()
		sent = append(sent, text)
		mu.Unlock()
		return stub.Catalog.SearchItems(ctx, text)
	}

	s, results := newTestSearcher(t, stub)
	s.SetItems(catalog.SeedItems)

	s.SetQuery("canon ")
	assert.Equal(t, []int64{3}, catalogtest.ItemIDs(s.Visible()))

	r := waitResult(t, results)
	assert.Equal(t, "canon ", r.Query)
	assert.Equal(t, []int64{3}, catalogtest.ItemIDs(r.Items))
	assert.Equal(t, []int64{3}, catalogtest.ItemIDs(s.Visible()), "no change once the store result lands")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"canon"}, sent)
}

func TestSearcher_CloseStopsPending(t *testing.T) {
	stub := newStub()
	stub.searchItems = func(ctx context.Context, text string) ([]catalog.Item, error) {
		return nil, errors.New("must not be called")
	}

	rec := &recorder{}
	s, _ := newTestSearcher(t, stub, WithNotifier(rec))
	s.SetQuery("палатка")
	s.Close()

	time.Sleep(3 * testDebounce)
	assert.Empty(t, rec.all())

	s.SetQuery("ignored")
	assert.Equal(t, "палатка", s.Query())
}
