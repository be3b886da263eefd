package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/dusk-indust/lendit/internal/config"
	"github.com/dusk-indust/lendit/internal/mcptools"
	"github.com/dusk-indust/lendit/internal/restapi"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// runServe serves the REST API over the configured backend until ctx ends.
// Over the remote backend it is a pass-through proxy.
func (a *app) runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(a.term.err)
	mcpAddr := fs.String("mcp", "", "also serve MCP over streamable HTTP on this address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if a.cfg.Backend == config.BackendRemote {
		log.Printf("lendit: proxying to %s", a.cfg.BaseURL)
	}

	srv := restapi.NewServer(a.cat)
	if err := srv.Start(ctx, a.cfg.Listen); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Wait)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	if *mcpAddr != "" {
		g.Go(func() error {
			return mcptools.RunMCPServer(gctx, mcptools.NewCatalogService(a.cat), *mcpAddr)
		})
	}

	return g.Wait()
}

// runMCP serves the catalog tools on stdio, or on HTTP with -http.
func (a *app) runMCP(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.SetOutput(a.term.err)
	httpAddr := fs.String("http", "", "serve streamable HTTP on this address instead of stdio")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc := mcptools.NewCatalogService(a.cat)
	if *httpAddr != "" {
		return mcptools.RunMCPServer(ctx, svc, *httpAddr)
	}
	return mcptools.RunMCPServerStdio(ctx, mcptools.NewCatalogMCPServer(svc))
}
