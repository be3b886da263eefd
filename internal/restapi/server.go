package restapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/dusk-indust/lendit/internal/catalog"
)

// Server serves a catalog over HTTP.
type Server struct {
	cat  catalog.Catalog
	http *http.Server
	ln   net.Listener
	done chan error
}

// NewServer returns a server for cat. Call Start to begin serving.
func NewServer(cat catalog.Catalog) *Server {
	return &Server{cat: cat}
}

// Start binds addr and begins serving in a background goroutine. An addr
// with port 0 picks a free port; Addr reports the bound address.
func (s *Server) Start(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("restapi: listen %s: %w", addr, err)
	}

	s.ln = ln
	s.done = make(chan error, 1)
	s.http = &http.Server{
		Handler:           NewHandler(s.cat),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := s.http.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()

	log.Printf("restapi: listening on http://%s", ln.Addr())
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Wait blocks until the server stops and returns its serve error, if any.
func (s *Server) Wait() error {
	if s.done == nil {
		return nil
	}
	return <-s.done
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
