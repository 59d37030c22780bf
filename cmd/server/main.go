// Package main is the entry point for the idforge API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"idforge/internal/config"
	v1 "idforge/internal/infrastructure/http/v1"
	"idforge/internal/infrastructure/numerator"
	"idforge/internal/infrastructure/storage"
	"idforge/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Fields:      map[string]any{"service": "idforge", "version": version},
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting idforge server", "version", version, "storage", cfg.Storage.Driver)

	// --- History store ---
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalw("failed to open identifier history", "driver", cfg.Storage.Driver, "error", err)
	}
	defer store.Close()
	log.Infow("identifier history ready", "driver", store.Driver)

	// --- Numerator Service ---
	specs, err := cfg.Specs()
	if err != nil {
		log.Fatalw("invalid identifier types", "error", err)
	}

	opts := []numerator.Option{numerator.WithDuplicateRetries(cfg.Numerator.DuplicateRetries)}
	if store.TxManager != nil {
		opts = append(opts, numerator.WithTxManager(store.TxManager))
	}
	for typeName, value := range cfg.SeedOverrides() {
		log.Warnw("seed override configured", "type", typeName, "value", value)
		opts = append(opts, numerator.WithSeedOverride(typeName, value))
	}

	numeratorService, err := numerator.New(store.History, specs, opts...)
	if err != nil {
		log.Fatalw("failed to create numerator service", "error", err)
	}
	if err := numeratorService.Warm(ctx); err != nil {
		log.Fatalw("failed to resume identifier sequences", "error", err)
	}
	for _, typeName := range numeratorService.Types() {
		current, _ := numeratorService.Current(ctx, typeName)
		log.Infow("identifier type loaded", "type", typeName, "current", current)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:    log,
		Numerator: numeratorService,
		History:   store.History,
		Driver:    store.Driver,
		Version:   version,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	_ = log.Sync()
	log.Info("server stopped")
}
