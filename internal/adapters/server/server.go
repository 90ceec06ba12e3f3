// Package server wires the HTTP and MCP adapters into one serve surface.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hylla/prioritas/internal/adapters/server/common"
	"github.com/hylla/prioritas/internal/adapters/server/httpapi"
	"github.com/hylla/prioritas/internal/adapters/server/mcpapi"
)

// Config captures bind and mount configuration for the serve surface.
type Config struct {
	HTTPBind      string
	APIEndpoint   string
	MCPEndpoint   string
	ServerName    string
	ServerVersion string
}

// Dependencies carries the services the serve surface exposes.
type Dependencies struct {
	Ideas common.IdeaService
}

// NewHandler composes health, MCP, and REST API routes into one handler.
func NewHandler(cfg Config, deps Dependencies) (http.Handler, error) {
	cfg = normalizeConfig(cfg)
	if deps.Ideas == nil {
		return nil, fmt.Errorf("idea service is required")
	}

	mcpHandler, err := mcpapi.NewHandler(mcpapi.Config{
		ServerName:    cfg.ServerName,
		ServerVersion: cfg.ServerVersion,
		EndpointPath:  cfg.MCPEndpoint,
	}, deps.Ideas)
	if err != nil {
		return nil, fmt.Errorf("build mcp handler: %w", err)
	}

	apiHandler := httpapi.NewHandler(deps.Ideas)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", writeHealthStatus)
	mux.HandleFunc("/readyz", writeHealthStatus)
	mux.Handle(cfg.MCPEndpoint, mcpHandler)
	mux.Handle(cfg.APIEndpoint, http.StripPrefix(cfg.APIEndpoint, apiHandler))
	mux.Handle(cfg.APIEndpoint+"/", http.StripPrefix(cfg.APIEndpoint, apiHandler))
	return mux, nil
}

// Run serves the composed handler until ctx is canceled.
func Run(ctx context.Context, cfg Config, deps Dependencies) error {
	cfg = normalizeConfig(cfg)
	handler, err := NewHandler(cfg, deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPBind,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
			return
		}
		serveErrCh <- nil
	}()

	select {
	case err := <-serveErrCh:
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-serveErrCh; err != nil {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

// normalizeConfig applies deterministic defaults to serve configuration.
func normalizeConfig(cfg Config) Config {
	cfg.HTTPBind = strings.TrimSpace(cfg.HTTPBind)
	if cfg.HTTPBind == "" {
		cfg.HTTPBind = "127.0.0.1:7420"
	}
	cfg.APIEndpoint = normalizeEndpoint(cfg.APIEndpoint, "/api")
	cfg.MCPEndpoint = normalizeEndpoint(cfg.MCPEndpoint, "/mcp")
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "prioritas"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	return cfg
}

// normalizeEndpoint canonicalizes one mount path, falling back when empty.
func normalizeEndpoint(endpoint, fallback string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = fallback
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return "/" + strings.Trim(endpoint, "/")
}

// writeHealthStatus reports process liveness for health probes.
func writeHealthStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
