package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/dusk-indust/lendit/internal/catalog"
	"github.com/dusk-indust/lendit/internal/catalog/catalogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededMem(t *testing.T) catalog.Catalog {
	t.Helper()
	return catalog.NewSeededMemStore(catalog.WithoutLatency())
}

func TestMemStore_Contract(t *testing.T) {
	catalogtest.Run(t, newSeededMem)
}

func TestMemStore_InstancesAreIsolated(t *testing.T) {
	ctx := context.Background()
	a := catalog.NewSeededMemStore(catalog.WithoutLatency())
	b := catalog.NewSeededMemStore(catalog.WithoutLatency())

	require.NoError(t, a.DeleteUser(ctx, 1))
	_, err := a.UpdateItem(ctx, 2, 2, catalog.ItemPatch{Name: catalog.String("changed")})
	require.NoError(t, err)

	users, err := b.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	it, err := b.GetItem(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Палатка туристическая", it.Name)
	assert.Equal(t, "Палатка туристическая", catalog.SeedItems[1].Name, "seed data must not be mutated")
}

func TestMemStore_EmptyStoreAssignsFromOne(t *testing.T) {
	ctx := context.Background()
	m := catalog.NewMemStore(catalog.WithoutLatency())

	users, err := m.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	u, err := m.CreateUser(ctx, catalog.NewUser{Name: "a", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	it, err := m.CreateItem(ctx, u.ID, catalog.NewItem{Name: "n", Description: "d", Available: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), it.ID)
	assert.Equal(t, u.ID, it.OwnerID)
}

func TestMemStore_IDsAreNotReused(t *testing.T) {
	ctx := context.Background()
	m := catalog.NewSeededMemStore(catalog.WithoutLatency())

	require.NoError(t, m.DeleteItem(ctx, 6))
	it, err := m.CreateItem(ctx, 1, catalog.NewItem{Name: "Гамак", Description: "Хлопковый"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), it.ID)
}

func TestMemStore_DeleteUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	m := catalog.NewSeededMemStore(catalog.WithoutLatency())

	require.NoError(t, m.DeleteUser(ctx, 99))
	require.NoError(t, m.DeleteItem(ctx, 99))

	items, err := m.ListItems(ctx, catalog.AllOwners())
	require.NoError(t, err)
	assert.Len(t, items, 6)
}

func TestMemStore_UpdateItemTransfersOwner(t *testing.T) {
	ctx := context.Background()
	m := catalog.NewSeededMemStore(catalog.WithoutLatency())

	it, err := m.UpdateItem(ctx, 1, 1, catalog.ItemPatch{OwnerID: catalog.ID(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), it.OwnerID)

	mine, err := m.ListItems(ctx, catalog.OwnedBy(1))
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, catalogtest.ItemIDs(mine))

	_, err = m.UpdateItem(ctx, 2, 1, catalog.ItemPatch{OwnerID: catalog.ID(77)})
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestMemStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := catalog.NewSeededMemStore(catalog.WithoutLatency())

	items, err := m.ListItems(ctx, catalog.AllOwners())
	require.NoError(t, err)
	items[0].Name = "mutated"

	got, err := m.GetItem(ctx, items[0].ID)
	require.NoError(t, err)
	got.Description = "mutated too"

	again, err := m.GetItem(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, catalog.SeedItems[0], *again)
}

func TestMemStore_LatencyIsApplied(t *testing.T) {
	m := catalog.NewSeededMemStore(catalog.WithLatency(catalog.Latency{Search: 30 * time.Millisecond}))

	start := time.Now()
	_, err := m.SearchItems(context.Background(), "палатка")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestMemStore_LatencyHonoursCancellation(t *testing.T) {
	m := catalog.NewSeededMemStore(catalog.WithLatency(catalog.Latency{Write: time.Hour}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.CreateUser(ctx, catalog.NewUser{Name: "late", Email: "late@example.com"})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	users, err := m.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestMemStore_DefaultLatency(t *testing.T) {
	assert.Equal(t, 300*time.Millisecond, catalog.DefaultLatency.List)
	assert.Equal(t, 200*time.Millisecond, catalog.DefaultLatency.Get)
	assert.Equal(t, 300*time.Millisecond, catalog.DefaultLatency.Write)
	assert.Equal(t, 200*time.Millisecond, catalog.DefaultLatency.Delete)
	assert.Equal(t, 400*time.Millisecond, catalog.DefaultLatency.Search)
}
