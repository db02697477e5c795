package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"compliance-panel/internal/platform/config"
	"compliance-panel/internal/platform/httpserver"
	"compliance-panel/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

// main loads configuration, wires dependencies and runs the HTTP server until
// SIGINT or SIGTERM. Business logic lives in the internal module packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise dependencies", "error", err)
		os.Exit(1)
	}
	defer a.close()

	srv := httpserver.New(cfg.Addr, newRouter(cfg, log, a))
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting compliance panel", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error("server error", "error", err)
		return
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
