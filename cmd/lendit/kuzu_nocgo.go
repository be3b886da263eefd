//go:build !cgo

package main

import (
	"context"
	"errors"

	"github.com/dusk-indust/lendit/internal/catalog"
	"github.com/dusk-indust/lendit/internal/config"
)

func openKuzu(context.Context, *config.ProjectConfig) (catalog.Catalog, func(), error) {
	return nil, func() {}, errors.New("the kuzu backend requires a cgo build")
}
