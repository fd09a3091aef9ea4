package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/petasbytes/go-builder/internal/server"
)

// ServeCmd starts the HTTP server.
// Usage: agent serve --addr :8080
type ServeCmd struct {
	Addr string `short:"a" long:"addr" description:"listen address (defaults to the config addr)"`

	root *Options
}

func (s *ServeCmd) Execute(_ []string) error {
	a, err := newApp(context.Background(), s.root.Config)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := s.Addr
	if addr == "" {
		addr = a.cfg.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(a.ctx, a.runner, a.tracker, a.codes, a.cfg.HistoryPath),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("agent listening on %s (model %s)", addr, a.cfg.Model)
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	// Wait for termination signal or server error.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Printf("received %s, shutting down", sig)
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
