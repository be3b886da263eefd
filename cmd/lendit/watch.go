package main

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/dusk-indust/lendit/internal/browse"
	"github.com/dusk-indust/lendit/internal/catalog"
)

// runWatch treats every stdin line as the current contents of a search box.
// Each line immediately prints the locally filtered view; the debounced
// store search prints when it settles. On EOF it waits for the last query's
// result before returning.
func (a *app) runWatch(ctx context.Context) error {
	listings, err := a.session().Catalog(ctx)
	if err != nil {
		return err
	}
	all := make([]catalog.Item, 0, len(listings))
	for _, l := range listings {
		all = append(all, l.Item)
	}

	results := make(chan browse.SearchResult, 16)
	s := browse.NewSearcher(ctx, a.cat,
		browse.WithDebounce(a.cfg.Debounce),
		browse.WithNotifier(a.notifier()),
		browse.WithOnResult(func(r browse.SearchResult) {
			select {
			case results <- r:
			default:
			}
		}),
	)
	defer s.Close()
	s.SetItems(all)

	var settled string
	lines := bufio.NewScanner(a.term.in)
	for lines.Scan() {
		s.SetQuery(lines.Text())
		a.printVisible(s)
		if q, ok := a.drain(results); ok {
			settled = q
		}
	}
	if err := lines.Err(); err != nil {
		return err
	}

	if catalog.ValidateQuery(s.Query()) != nil || settled == s.Query() {
		return nil
	}

	// Wait for the final query to settle. A zero timeout means the store call
	// has no deadline of its own, so only ctx bounds the wait.
	var deadline <-chan time.Time
	if a.cfg.Timeout > 0 {
		deadline = time.After(a.cfg.Debounce + a.cfg.Timeout)
	}
	for {
		select {
		case r := <-results:
			a.printResult(r)
			if r.Query == s.Query() {
				return nil
			}
		case <-deadline:
			return fmt.Errorf("search for %q did not complete", s.Query())
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// drain prints every result already delivered and reports the last query.
func (a *app) drain(results <-chan browse.SearchResult) (last string, ok bool) {
	for {
		select {
		case r := <-results:
			a.printResult(r)
			last, ok = r.Query, true
		default:
			return last, ok
		}
	}
}

func (a *app) printVisible(s *browse.Searcher) {
	visible := s.Visible()
	fmt.Fprintf(a.term.out, "> %s: %d shown\n", s.Query(), len(visible))
}

func (a *app) printResult(r browse.SearchResult) {
	fmt.Fprintf(a.term.out, "= %s: %d found\n", r.Query, len(r.Items))
	for _, it := range r.Items {
		fmt.Fprintf(a.term.out, "  %d  %s\n", it.ID, it.Name)
	}
}
