//	@title			Media Relay API
//	@version		1.0
//	@description	Relays file uploads and deletions to a hosted media store.
//	@BasePath		/

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"mediarelay/internal/config"
	"mediarelay/internal/handler"
	"mediarelay/internal/logger"
	"mediarelay/internal/router"
	"mediarelay/internal/service"
	"mediarelay/internal/staging"
	"mediarelay/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Initialize storage
	store, err := storage.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize media store: %w", err)
	}

	stager, err := staging.NewStager(cfg.Upload.StagingDir, cfg.Upload.MaxFileBytes())
	if err != nil {
		return fmt.Errorf("failed to prepare staging dir: %w", err)
	}

	// Initialize services and handlers
	relaySvc := service.NewRelayService(store, stager, &cfg.Upload, zlog)
	relayH := handler.NewRelayHandler(relaySvc, &cfg.Upload, zlog)
	healthH := handler.NewHealthHandler(store)

	r := router.Setup(cfg, zlog, relayH, healthH)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Provider),
			zap.String("staging_dir", stager.Dir()),
			zap.String("env", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zlog.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	zlog.Info("server stopped")
	return nil
}
