//go:build cgo

package main

import (
	"context"
	"fmt"

	"github.com/dusk-indust/lendit/internal/catalog"
	"github.com/dusk-indust/lendit/internal/config"
)

// openKuzu opens the graph-backed store, seeding it when it is empty.
func openKuzu(ctx context.Context, cfg *config.ProjectConfig) (catalog.Catalog, func(), error) {
	store, err := catalog.NewKuzuStore(cfg.KuzuPath)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open kuzu: %w", err)
	}
	closeFn := func() { _ = store.Close() }

	if cfg.SeedData() {
		users, err := store.ListUsers(ctx)
		if err != nil {
			closeFn()
			return nil, func() {}, err
		}
		if len(users) == 0 {
			if err := store.Load(ctx, catalog.SeedUsers, catalog.SeedItems); err != nil {
				closeFn()
				return nil, func() {}, fmt.Errorf("seed kuzu: %w", err)
			}
		}
	}
	return store, closeFn, nil
}
