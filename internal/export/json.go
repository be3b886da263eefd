package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/lendit/internal/catalog"
	"golang.org/x/sync/errgroup"
)

// Snapshot is the top-level JSON export structure.
type Snapshot struct {
	ExportedAt string         `json:"exportedAt"`
	Users      []UserExport   `json:"users"`
	Items      []catalog.Item `json:"items"`
}

// UserExport is a user with the number of items they own.
type UserExport struct {
	catalog.User
	ItemCount int `json:"itemCount"`
}

// BuildSnapshot reads every user and item from cat.
func BuildSnapshot(ctx context.Context, cat catalog.Catalog) (*Snapshot, error) {
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
		return nil, fmt.Errorf("export: %w", err)
	}

	counts := make(map[int64]int, len(users))
	for _, it := range items {
		counts[it.OwnerID]++
	}

	snap := &Snapshot{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Users:      make([]UserExport, 0, len(users)),
		Items:      items,
	}
	if snap.Items == nil {
		snap.Items = []catalog.Item{}
	}
	for _, u := range users {
		snap.Users = append(snap.Users, UserExport{User: u, ItemCount: counts[u.ID]})
	}
	return snap, nil
}

// WriteJSON writes s as indented JSON.
func (s *Snapshot) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// ReadSnapshot decodes a snapshot written by WriteJSON.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("export: decode snapshot: %w", err)
	}
	return &s, nil
}

// CatalogUsers returns the snapshot's users without item counts, ready to
// load into a store.
func (s *Snapshot) CatalogUsers() []catalog.User {
	users := make([]catalog.User, 0, len(s.Users))
	for _, u := range s.Users {
		users = append(users, u.User)
	}
	return users
}
