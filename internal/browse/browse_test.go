package browse

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dusk-indust/lendit/internal/catalog"
	"github.com/dusk-indust/lendit/internal/catalog/catalogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

// stubCatalog wraps a seeded MemStore. Any non-nil hook replaces the
// corresponding method.
type stubCatalog struct {
	catalog.Catalog
	listUsers   func(ctx context.Context) ([]catalog.User, error)
	listItems   func(ctx context.Context, owner catalog.OwnerFilter) ([]catalog.Item, error)
	searchItems func(ctx context.Context, text string) ([]catalog.Item, error)
	deleteItem  func(ctx context.Context, id int64) error
}

func newStub() *stubCatalog {
	return &stubCatalog{Catalog: catalog.NewSeededMemStore(catalog.WithoutLatency())}
}

func (s *stubCatalog) ListUsers(ctx context.Context) ([]catalog.User, error) {
	if s.listUsers != nil {
		return s.listUsers(ctx)
	}
	return s.Catalog.ListUsers(ctx)
}

func (s *stubCatalog) ListItems(ctx context.Context, owner catalog.OwnerFilter) ([]catalog.Item, error) {
	if s.listItems != nil {
		return s.listItems(ctx, owner)
	}
	return s.Catalog.ListItems(ctx, owner)
}

func (s *stubCatalog) SearchItems(ctx context.Context, text string) ([]catalog.Item, error) {
	if s.searchItems != nil {
		return s.searchItems(ctx, text)
	}
	return s.Catalog.SearchItems(ctx, text)
}

func (s *stubCatalog) DeleteItem(ctx context.Context, id int64) error {
	if s.deleteItem != nil {
		return s.deleteItem(ctx, id)
	}
	return s.Catalog.DeleteItem(ctx, id)
}

// recorder collects notifications.
type recorder struct {
	mu   sync.Mutex
	seen []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
}

func (r *recorder) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.seen...)
}

func (r *recorder) errors() []Notification {
	var out []Notification
	for _, n := range r.all() {
		if n.Level == LevelError {
			out = append(out, n)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// LoadCatalog / LoadProfile
// ---------------------------------------------------------------------------

func TestLoadCatalog_JoinsOwners(t *testing.T) {
	listings, err := LoadCatalog(context.Background(), newStub())
	require.NoError(t, err)
	require.Len(t, listings, 6)

	for _, l := range listings {
		require.NotNil(t, l.Owner, "item %d", l.Item.ID)
		assert.Equal(t, l.Item.OwnerID, l.Owner.ID)
	}
	assert.Equal(t, "Иван Петров", listings[0].OwnerName())
	assert.Equal(t, "Алексей Козлов", listings[2].OwnerName())
}

func TestLoadCatalog_FailureReturnsNothing(t *testing.T) {
	stub := newStub()
	stub.listUsers = func(ctx context.Context) ([]catalog.User, error) {
		return nil, &catalog.StatusError{Code: 500, Status: "Internal Server Error"}
	}

	listings, err := LoadCatalog(context.Background(), stub)
	require.Error(t, err)
	assert.Nil(t, listings)
	assert.Contains(t, err.Error(), "load catalog")
}

func TestLoadCatalog_FailureCancelsSibling(t *testing.T) {
	stub := newStub()
	stub.listUsers = func(ctx context.Context) ([]catalog.User, error) {
		return nil, errors.New("boom")
	}
	var sawCancel atomic.Bool
	stub.listItems = func(ctx context.Context, _ catalog.OwnerFilter) ([]catalog.Item, error) {
		select {
		case <-ctx.Done():
			sawCancel.Store(true)
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
			return nil, nil
		}
	}

	_, err := LoadCatalog(context.Background(), stub)
	require.Error(t, err)
	assert.True(t, sawCancel.Load())
}

func TestJoin_UnknownOwner(t *testing.T) {
	listings := Join([]catalog.Item{{ID: 1, OwnerID: 9}}, catalog.SeedUsers)
	require.Len(t, listings, 1)
	assert.Nil(t, listings[0].Owner)
	assert.Equal(t, "unknown", listings[0].OwnerName())
}

func TestLoadProfile(t *testing.T) {
	p, err := LoadProfile(context.Background(), newStub(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Мария Смирнова", p.User.Name)
	assert.Equal(t, []int64{2, 5}, catalogtest.ItemIDs(p.Items))

	_, err = LoadProfile(context.Background(), newStub(), 99)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Filter
// ---------------------------------------------------------------------------

func TestFilter(t *testing.T) {
	assert.Len(t, Filter(catalog.SeedItems, ""), 6)
	assert.Len(t, Filter(catalog.SeedItems, "   "), 6)
	assert.Equal(t, []int64{2}, catalogtest.ItemIDs(Filter(catalog.SeedItems, "ПАЛАТКА")))
	assert.Equal(t, []int64{2, 3, 5, 6}, catalogtest.ItemIDs(Filter(catalog.SeedItems, "ная")))
	assert.Empty(t, Filter(catalog.SeedItems, "вертолёт"))
}

func TestFilter_AgreesWithStoreSearch(t *testing.T) {
	store := catalog.NewSeededMemStore(catalog.WithoutLatency())
	for _, q := range []string{"велосипед", "КАМЕРА", "canon", "сверл", "ная", "zzz"} {
		remote, err := store.SearchItems(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, catalogtest.ItemIDs(remote), catalogtest.ItemIDs(Filter(catalog.SeedItems, q)), q)
	}
}

func TestFilterListings(t *testing.T) {
	listings := Join(catalog.SeedItems, catalog.SeedUsers)
	got := FilterListings(listings, "дрель")
	require.Len(t, got, 1)
	assert.Equal(t, int64(6), got[0].Item.ID)
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

func TestToasts_DropsWhenFull(t *testing.T) {
	toasts := NewToasts()
	for i := 0; i < 100; i++ {
		toasts.Notify(Notification{Message: "x"})
	}
	toasts.Close()

	n := 0
	for range toasts.Subscribe() {
		n++
	}
	assert.Equal(t, 64, n)
}

func TestFormatNotification(t *testing.T) {
	assert.Equal(t, "  ✓ saved", FormatNotification(Notification{Level: LevelSuccess, Message: "saved"}))
	assert.Equal(t, "  ✗ failed", FormatNotification(Notification{Level: LevelError, Message: "failed"}))
	assert.Equal(t, "  ● hi", FormatNotification(Notification{Level: LevelInfo, Message: "hi"}))
	assert.Equal(t, "error", LevelError.String())
}
