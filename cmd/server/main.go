// Package main provides the entry point for the hostdrop server.
// It wires together all components using dependency injection and manages
// the server lifecycle with graceful shutdown.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hostdrop/hostdrop/internal/auth"
	"github.com/hostdrop/hostdrop/internal/config"
	"github.com/hostdrop/hostdrop/internal/identity"
	"github.com/hostdrop/hostdrop/internal/service"
	"github.com/hostdrop/hostdrop/internal/settings"
	"github.com/hostdrop/hostdrop/internal/storage"
	"github.com/hostdrop/hostdrop/internal/transport"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Set up structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("server configuration loaded",
		"addr", cfg.Addr,
		"data_dir", cfg.DataDir,
		"settings_path", cfg.SettingsPath,
	)

	// Load the persisted settings document and watch it for external edits
	store := settings.NewStore(cfg.SettingsPath, cfg.DataDir, logger)
	if err := store.Load(); err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.Watch(ctx); err != nil {
		log.Fatalf("failed to watch settings: %v", err)
	}

	// Wire storage
	resolver, err := storage.NewResolver(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to create resolver: %v", err)
	}
	writer := storage.NewWriter(logger)

	// Wire identity and scoped tokens
	validator := identity.NewHTTPValidator(cfg.IdentityTimeout, logger)

	secret := []byte(cfg.TokenSecret)
	if len(secret) == 0 {
		secret, err = auth.NewRandomSecret()
		if err != nil {
			log.Fatalf("failed to generate token secret: %v", err)
		}
		slog.Info("generated ephemeral token secret; scoped tokens will not survive a restart")
	}
	issuer := auth.NewTokenIssuer(secret, cfg.TokenTTL)

	// Wire the write pipeline
	orchestrator := service.NewOrchestrator(store, validator, issuer, resolver, writer, logger)

	// Wire transport layer
	server, _, err := transport.NewTransportServices(&transport.Config{
		ServerConfig: cfg,
		Store:        store,
		Validator:    validator,
		Issuer:       issuer,
		Resolver:     resolver,
		Orchestrator: orchestrator,
		Logger:       logger,
	})
	if err != nil {
		log.Fatalf("failed to create transport services: %v", err)
	}

	// Start server in background goroutine
	serverErrCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Addr)
		if err := server.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping server gracefully...")
	case err := <-serverErrCh:
		slog.Error("server error", "error", err)
		stop()
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped successfully")
}

// logLevel maps the configured level name onto a slog.Level.
func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
