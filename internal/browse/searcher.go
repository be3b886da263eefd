package browse

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dusk-indust/lendit/internal/catalog"
)

// DefaultDebounce is the quiescence window before a query is sent.
const DefaultDebounce = 500 * time.Millisecond

// SearchResult is delivered to the OnResult callback each time a query's
// store result is committed.
type SearchResult struct {
	Query string
	Items []catalog.Item
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithDebounce sets the quiescence window.
func WithDebounce(d time.Duration) SearcherOption {
	return func(s *Searcher) { s.debounce = d }
}

// WithNotifier sets where search failures are reported.
func WithNotifier(n Notifier) SearcherOption {
	return func(s *Searcher) { s.notify = n }
}

// WithOnResult registers a callback run after each committed result.
// It is called without the Searcher's lock held.
func WithOnResult(fn func(SearchResult)) SearcherOption {
	return func(s *Searcher) { s.onResult = fn }
}

// Searcher debounces query text and runs the store search for the last
// query issued after a pause. Every scheduled query carries a sequence
// number; responses to anything but the latest are discarded and the
// superseded request's context is cancelled.
type Searcher struct {
	cat      catalog.Catalog
	debounce time.Duration
	notify   Notifier
	onResult func(SearchResult)

	base       context.Context
	stopSearch context.CancelFunc

	mu        sync.Mutex
	query     string
	seq       uint64
	timer     *time.Timer
	inflight  context.CancelFunc
	all       []catalog.Item
	results   []catalog.Item
	committed bool
	closed    bool
}

// NewSearcher returns a Searcher over cat. Searches run under ctx; Close or
// cancelling ctx stops all pending work.
func NewSearcher(ctx context.Context, cat catalog.Catalog, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		cat:      cat,
		debounce: DefaultDebounce,
		notify:   Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.base, s.stopSearch = context.WithCancel(ctx)
	return s
}

// SetItems replaces the collection shown while the query is blank and used
// for local filtering before the first result arrives.
func (s *Searcher) SetItems(items []catalog.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = append([]catalog.Item(nil), items...)
}

// SetQuery records the on-screen query text. The pending search, if any, is
// cancelled and a new one scheduled after the debounce window. The store sees
// the trimmed text, the same text Filter matches on. A blank query clears the
// store result without calling the store.
func (s *Searcher) SetQuery(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.query = text
	s.seq++
	s.cancelPendingLocked()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		s.results = nil
		s.committed = false
		return
	}

	seq := s.seq
	s.timer = time.AfterFunc(s.debounce, func() { s.run(seq, text, trimmed) })
}

// Query returns the current on-screen query text.
func (s *Searcher) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Results returns the last committed store result.
func (s *Searcher) Results() []catalog.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Item(nil), s.results...)
}

// Visible returns what should be displayed now: the intersection of the
// last committed store result and the local filter of the current query.
// With a blank query it is the whole collection; before any result has been
// committed it is the local filter of the collection.
func (s *Searcher) Visible() []catalog.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(s.query) == "" {
		return append([]catalog.Item(nil), s.all...)
	}
	if !s.committed {
		return Filter(s.all, s.query)
	}
	return Filter(s.results, s.query)
}

// Close cancels the pending timer and any in-flight search.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cancelPendingLocked()
	s.stopSearch()
}

func (s *Searcher) cancelPendingLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
}

func (s *Searcher) run(seq uint64, text, trimmed string) {
	s.mu.Lock()
	if seq != s.seq || s.closed {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.base)
	s.inflight = cancel
	s.timer = nil
	s.mu.Unlock()

	items, err := s.cat.SearchItems(ctx, trimmed)
	cancel()

	s.mu.Lock()
	if seq != s.seq || s.closed {
		s.mu.Unlock()
		return
	}
	s.inflight = nil
	if err != nil {
		s.mu.Unlock()
		if !errors.Is(err, context.Canceled) {
			notifyError(s.notify, "Search failed: %v", err)
		}
		return
	}
	s.results = items
	s.committed = true
	s.mu.Unlock()

	if s.onResult != nil {
		s.onResult(SearchResult{Query: text, Items: append([]catalog.Item(nil), items...)})
	}
}
