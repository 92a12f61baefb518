package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirasaad/fxwidget/infra/initializer"
	"github.com/amirasaad/fxwidget/pkg/app"
	"github.com/amirasaad/fxwidget/pkg/config"
	"github.com/amirasaad/fxwidget/webapi"
	log "github.com/charmbracelet/log"
)

const (
	startupResolveTimeout = 30 * time.Second
	shutdownTimeout       = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	// Initialize all dependencies
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			deps.Logger.Warn("Failed to close store", "error", err)
		}
	}()
	logger := deps.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Rates are resolved before the listener starts so no request sees an
	// empty selector.
	resolveCtx, cancel := context.WithTimeout(ctx, startupResolveTimeout)
	res := deps.State.Resolve(resolveCtx)
	cancel()
	logger.Info(res.Status, "source", res.Source, "currencies", len(res.Rates))

	fiberApp := webapi.SetupApp(app.New(deps, cfg))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- fiberApp.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server")
		if err := fiberApp.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		slog.Info("Server stopped")
		return nil
	}
}
