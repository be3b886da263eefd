package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dusk-indust/lendit/internal/catalog"
	"github.com/dusk-indust/lendit/internal/config"
	"github.com/dusk-indust/lendit/internal/export"
)

// openCatalog builds the configured backend. The returned close function is
// always safe to call.
func openCatalog(ctx context.Context, cfg *config.ProjectConfig, dataFile string) (catalog.Catalog, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.BackendRemote:
		c := catalog.NewHTTPClient(cfg.BaseURL, catalog.WithTimeout(cfg.Timeout))
		log.Printf("lendit: using remote catalog at %s", c.BaseURL())
		return c, noop, nil

	case config.BackendMemory:
		opts := []catalog.MemOption{catalog.WithoutLatency()}
		if cfg.Latency {
			opts = []catalog.MemOption{catalog.WithLatency(catalog.DefaultLatency)}
		}
		switch {
		case dataFile != "":
			users, items, err := readSnapshot(dataFile)
			if err != nil {
				return nil, noop, err
			}
			opts = append(opts, catalog.WithData(users, items))
		case cfg.SeedData():
			opts = append(opts, catalog.WithSeed())
		}
		return catalog.NewMemStore(opts...), noop, nil

	case config.BackendKuzu:
		return openKuzu(ctx, cfg)

	default:
		return nil, noop, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func readSnapshot(path string) ([]catalog.User, []catalog.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	snap, err := export.ReadSnapshot(f)
	if err != nil {
		return nil, nil, err
	}
	return snap.CatalogUsers(), snap.Items, nil
}
