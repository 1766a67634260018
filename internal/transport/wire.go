package transport

import (
	"fmt"
	"log/slog"

	"github.com/hostdrop/hostdrop/internal/auth"
	"github.com/hostdrop/hostdrop/internal/config"
	"github.com/hostdrop/hostdrop/internal/identity"
	"github.com/hostdrop/hostdrop/internal/service"
	"github.com/hostdrop/hostdrop/internal/settings"
	"github.com/hostdrop/hostdrop/internal/storage"
	"github.com/hostdrop/hostdrop/internal/transport/handlers"
	"github.com/hostdrop/hostdrop/pkg/hostdrop"
)

// Config holds everything the transport layer needs.
type Config struct {
	// ServerConfig is the bootstrap configuration.
	ServerConfig *config.Config

	// Store holds the operational settings snapshot.
	Store *settings.Store

	// Validator checks bearer credentials against the host.
	Validator identity.Validator

	// Issuer mints and verifies scoped write tokens.
	Issuer *auth.TokenIssuer

	// Resolver maps folder names to sandboxed directories.
	Resolver *storage.Resolver

	// Orchestrator runs the write pipeline.
	Orchestrator *service.Orchestrator

	// Logger is optional; nil falls back to slog.Default().
	Logger *slog.Logger
}

// NewTransportServices wires the complete HTTP layer: router, middleware,
// handlers, and server.
func NewTransportServices(cfg *Config) (*Server, *Router, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.ServerConfig == nil {
		return nil, nil, fmt.Errorf("server config cannot be nil")
	}
	if cfg.Store == nil {
		return nil, nil, fmt.Errorf("store cannot be nil")
	}
	if cfg.Validator == nil {
		return nil, nil, fmt.Errorf("validator cannot be nil")
	}
	if cfg.Issuer == nil {
		return nil, nil, fmt.Errorf("issuer cannot be nil")
	}
	if cfg.Resolver == nil {
		return nil, nil, fmt.Errorf("resolver cannot be nil")
	}
	if cfg.Orchestrator == nil {
		return nil, nil, fmt.Errorf("orchestrator cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	guard := handlers.NewGuard(cfg.Store, cfg.Validator, logger)

	router := NewRouter()
	router.Use(
		NewRecoveryMiddleware(logger),
		NewLoggingMiddleware(logger),
	)

	router.Handle(hostdrop.RouteHealth, handlers.NewHealthHandler(logger))
	router.Handle(hostdrop.RouteConfig, handlers.NewConfigHandler(cfg.Store, guard, logger))
	router.Handle(hostdrop.RouteWrite, handlers.NewWriteHandler(cfg.Store, cfg.Orchestrator, logger))
	router.Handle(hostdrop.RouteFolder, handlers.NewFolderHandler(cfg.Store, cfg.Resolver, cfg.Orchestrator, logger))
	router.Handle(hostdrop.RouteResolvePath, handlers.NewResolvePathHandler(cfg.Resolver, guard, logger))
	router.Handle(hostdrop.RouteCreateFolder, handlers.NewCreateFolderHandler(cfg.Store, cfg.Resolver, guard, logger))
	router.Handle(hostdrop.RouteToken, handlers.NewTokenHandler(cfg.Store, cfg.Issuer, guard, logger))

	server := NewServer(cfg.ServerConfig, router)

	return server, router, nil
}
