// Package catalogtest holds the behavioural contract every catalog.Catalog
// implementation must satisfy, runnable from each implementation's tests.
package catalogtest

import (
	"context"
	"testing"

	"github.com/dusk-indust/lendit/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh Catalog holding exactly catalog.SeedUsers and
// catalog.SeedItems, with next ids 4 (users) and 7 (items).
type Factory func(t *testing.T) catalog.Catalog

// Run executes the contract against catalogs produced by newSeeded.
// Each subtest gets its own instance.
func Run(t *testing.T, newSeeded Factory) {
	t.Helper()

	t.Run("GetUser_ReturnsRequestedID", func(t *testing.T) {
		c := newSeeded(t)
		for _, want := range catalog.SeedUsers {
			got, err := c.GetUser(context.Background(), want.ID)
			require.NoError(t, err)
			assert.Equal(t, want, *got)
		}
	})

	t.Run("GetUser_NotFound", func(t *testing.T) {
		c := newSeeded(t)
		got, err := c.GetUser(context.Background(), 999)
		require.ErrorIs(t, err, catalog.ErrNotFound)
		assert.Nil(t, got)
	})

	t.Run("GetItem_ReturnsRequestedID", func(t *testing.T) {
		c := newSeeded(t)
		for _, want := range catalog.SeedItems {
			got, err := c.GetItem(context.Background(), want.ID)
			require.NoError(t, err)
			assert.Equal(t, want, *got)
		}
	})

	t.Run("GetItem_NotFound", func(t *testing.T) {
		c := newSeeded(t)
		_, err := c.GetItem(context.Background(), 999)
		require.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("CreateUser_ThenGetAndList", func(t *testing.T) {
		c := newSeeded(t)
		ctx := context.Background()

		created, err := c.CreateUser(ctx, catalog.NewUser{Name: "Ольга Миронова", Email: "olga@example.com"})
		require.NoError(t, err)
		assert.Equal(t, int64(4), created.ID)

		got, err := c.GetUser(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, catalog.User{ID: 4, Name: "Ольга Миронова", Email: "olga@example.com"}, *got)

		users, err := c.ListUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, countUser(users, created.ID), "new user listed exactly once")
		assert.Len(t, users, len(catalog.SeedUsers)+1)
	})

	t.Run("UpdateUser_OnlyGivenFields", func(t *testing.T) {
		c := newSeeded(t)
		ctx := context.Background()

		got, err := c.UpdateUser(ctx, 2, catalog.UserPatch{Email: catalog.String("m.smirnova@example.com")})
		require.NoError(t, err)
		assert.Equal(t, "Мария Смирнова", got.Name)
		assert.Equal(t, "m.smirnova@example.com", got.Email)

		stored, err := c.GetUser(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, *got, *stored)
	})

	t.Run("UpdateUser_NotFound", func(t *testing.T) {
		c := newSeeded(t)
		_, err := c.UpdateUser(context.Background(), 999, catalog.UserPatch{Name: catalog.String("x")})
		require.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("DeleteUser_CascadesToItems", func(t *testing.T) {
		c := newSeeded(t)
		ctx := context.Background()

		require.NoError(t, c.DeleteUser(ctx, 1))

		users, err := c.ListUsers(ctx)
		require.NoError(t, err)
		assert.Zero(t, countUser(users, 1))

		items, err := c.ListItems(ctx, catalog.AllOwners())
		require.NoError(t, err)
		for _, it := range items {
			assert.NotEqual(t, int64(1), it.OwnerID, "item %d survived its owner", it.ID)
		}
		assert.Equal(t, []int64{2, 3, 5, 6}, ItemIDs(items))

		_, err = c.GetItem(ctx, 4)
		require.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("ListItems_Seeded", func(t *testing.T) {
		c := newSeeded(t)
		ctx := context.Background()

		all, err := c.ListItems(ctx, catalog.AllOwners())
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, ItemIDs(all))

		mine, err := c.ListItems(ctx, catalog.OwnedBy(1))
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 4}, ItemIDs(mine))
	})

	t.Run("CreateItem_RoundTrip", func(t *testing.T) {
		c := newSeeded(t)
		ctx := context.Background()

		created, err := c.CreateItem(ctx, 3, catalog.NewItem{
			Name:        "Палатка двухместная",
			Description: "Лёгкая",
			Available:   false,
		})
		require.NoError(t, err)
		assert.Equal(t, catalog.Item{ID: 7, Name: "Палатка двухместная", Description: "Лёгкая", Available: false, OwnerID: 3}, *created)

		owned, err := c.ListItems(ctx, catalog.OwnedBy(3))
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 6, 7}, ItemIDs(owned))

		all, err := c.ListItems(ctx, catalog.AllOwners())
		require.NoError(t, err)
		assert.Contains(t, ItemIDs(all), created.ID)
	})

	t.Run("CreateItem_UnknownOwner", func(t *testing.T) {
		c := newSeeded(t)
		_, err := c.CreateItem(context.Background(), 42, catalog.NewItem{Name: "a", Description: "b"})
		require.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("UpdateItem_PartialAndIdempotent", func(t *testing.T) {
		c := newSeeded(t)
		ctx := context.Background()
		patch := catalog.ItemPatch{Name: catalog.String("X")}

		first, err := c.UpdateItem(ctx, 1, 4, patch)
		require.NoError(t, err)
		want := catalog.SeedItems[3]
		want.Name = "X"
		assert.Equal(t, want, *first)

		second, err := c.UpdateItem(ctx, 1, 4, patch)
		require.NoError(t, err)
		assert.Equal(t, *first, *second)

		stored, err := c.GetItem(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, want, *stored)
	})

	t.Run("UpdateItem_AppliesFalseAndEmpty", func(t *testing.T) {
		c := newSeeded(t)
		ctx := context.Background()

		got, err := c.UpdateItem(ctx, 2, 2, catalog.ItemPatch{
			Description: catalog.String(""),
			Available:   catalog.Bool(false),
		})
		require.NoError(t, err)
		assert.Equal(t, "Палатка туристическая", got.Name)
		assert.Empty(t, got.Description)
		assert.False(t, got.Available)

		stored, err := c.GetItem(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, *got, *stored)
	})

	t.Run("UpdateItem_NotOwner", func(t *testing.T) {
		c := newSeeded(t)
		ctx := context.Background()

		_, err := c.UpdateItem(ctx, 2, 1, catalog.ItemPatch{Name: catalog.String("Чужой велосипед")})
		require.ErrorIs(t, err, catalog.ErrForbidden)

		stored, err := c.GetItem(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, catalog.SeedItems[0], *stored)
	})

	t.Run("UpdateItem_NotFound", func(t *testing.T) {
		c := newSeeded(t)
		_, err := c.UpdateItem(context.Background(), 1, 999, catalog.ItemPatch{Name: catalog.String("x")})
		require.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("DeleteItem", func(t *testing.T) {
		c := newSeeded(t)
		ctx := context.Background()

		require.NoError(t, c.DeleteItem(ctx, 3))
		_, err := c.GetItem(ctx, 3)
		require.ErrorIs(t, err, catalog.ErrNotFound)

		all, err := c.ListItems(ctx, catalog.AllOwners())
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 4, 5, 6}, ItemIDs(all))
	})

	t.Run("SearchItems", func(t *testing.T) {
		c := newSeeded(t)
		ctx := context.Background()

		cases := []struct {
			query string
			want  []int64
		}{
			{"палатка", []int64{2}},
			{"велосипед", []int64{1}},
			{"ВЕЛОСИПЕД", []int64{1}},
			{"сверл", []int64{6}},  // description only
			{"КАМЕРА", []int64{3}}, // description, folded
			{"canon", []int64{3}},  // ASCII, mixed case in data
			{"ная", []int64{2, 3, 5, 6}},
			{"вертолёт", nil},
		}
		for _, tc := range cases {
			got, err := c.SearchItems(ctx, tc.query)
			require.NoError(t, err, tc.query)
			if tc.want == nil {
				assert.Empty(t, got, tc.query)
				continue
			}
			assert.Equal(t, tc.want, ItemIDs(got), tc.query)
			for _, it := range got {
				assert.True(t, catalog.Matches(it, tc.query), "item %d should match %q", it.ID, tc.query)
			}
		}
	})
}

// ItemIDs returns the ids of items in order.
func ItemIDs(items []catalog.Item) []int64 {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func countUser(users []catalog.User, id int64) int {
	n := 0
	for _, u := range users {
		if u.ID == id {
			n++
		}
	}
	return n
}
