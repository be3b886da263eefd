// Package browse holds the consumer-side flows of the marketplace: loading
// pages of listings, filtering and debounced search, and the acting user's
// edits with their confirmation and notification surfaces.
package browse

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dusk-indust/lendit/internal/catalog"
	"golang.org/x/sync/errgroup"
)

// Listing is an item joined to its owner for display. Owner is nil when the
// owner id does not resolve to a loaded user.
type Listing struct {
	Item  catalog.Item
	Owner *catalog.User
}

// OwnerName returns the owner's display name, or "unknown".
func (l Listing) OwnerName() string {
	if l.Owner == nil {
		return "unknown"
	}
	return l.Owner.Name
}

// Profile is one user with the items they own.
type Profile struct {
	User  catalog.User
	Items []catalog.Item
}

// LoadCatalog fetches users and all items concurrently and joins them.
// If either call fails no listings are returned, so a page never renders
// half-loaded data.
func LoadCatalog(ctx context.Context, cat catalog.Catalog) ([]Listing, error) {
	var (
		users []catalog.User
		items []catalog.Item
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = cat.ListUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = cat.ListItems(gctx, catalog.AllOwners())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	return Join(items, users), nil
}

// LoadProfile fetches a user and the items they own concurrently.
func LoadProfile(ctx context.Context, cat catalog.Catalog, userID int64) (*Profile, error) {
	var (
		user  *catalog.User
		items []catalog.Item
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = cat.GetUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = cat.ListItems(gctx, catalog.OwnedBy(userID))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load profile %d: %w", userID, err)
	}

	return &Profile{User: *user, Items: items}, nil
}

// Join pairs each item with its owner from users, preserving item order.
func Join(items []catalog.Item, users []catalog.User) []Listing {
	byID := make(map[int64]*catalog.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	listings := make([]Listing, 0, len(items))
	for _, it := range items {
		owner := byID[it.OwnerID]
		if owner == nil {
			log.Printf("browse: item %d references unknown owner %d", it.ID, it.OwnerID)
		}
		listings = append(listings, Listing{Item: it, Owner: owner})
	}
	return listings
}

// Filter re-filters items locally with the same rule the store's search
// uses. A blank query keeps everything.
func Filter(items []catalog.Item, query string) []catalog.Item {
	query = strings.TrimSpace(query)
	out := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if query == "" || catalog.Matches(it, query) {
			out = append(out, it)
		}
	}
	return out
}

// FilterListings is Filter over joined listings.
func FilterListings(listings []Listing, query string) []Listing {
	query = strings.TrimSpace(query)
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if query == "" || catalog.Matches(l.Item, query) {
			out = append(out, l)
		}
	}
	return out
}
