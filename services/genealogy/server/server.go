// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package server exposes a genealogy tree over a read-only HTTP API.
//
// The served tree lives in a Snapshot. Handlers only read it; a Reloader
// replaces it wholesale when the tree file changes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/AleutianAI/genealogy/services/genealogy/config"
	"github.com/AleutianAI/genealogy/services/genealogy/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Server is the HTTP front end for a Snapshot.
type Server struct {
	cfg        config.ServerConfig
	logger     *slog.Logger
	router     *gin.Engine
	httpServer *http.Server
}

// New builds the router and HTTP server. It does not start listening.
func New(snapshot *Snapshot, cfg config.ServerConfig, serviceName string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	router := NewRouter(snapshot, cfg, serviceName, logger)
	return &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		httpServer: &http.Server{
			Addr:    cfg.Addr,
			Handler: router,
		},
	}
}

// NewRouter returns the configured gin engine.
//
// Middleware runs in order: panic recovery, tracing, request ID and
// access log, rate limiting. /metrics is registered outside /v1.
func NewRouter(snapshot *Snapshot, cfg config.ServerConfig, serviceName string, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(serviceName),
		RequestLogger(logger),
		RateLimit(cfg.RateLimit, cfg.Burst),
	)

	RegisterRoutes(router.Group("/v1"), NewHandlers(snapshot, logger))
	router.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))
	return router
}

// Router returns the gin engine, for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
//
// Outputs:
//
//	error - nil after a clean shutdown; the listen error otherwise.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting genealogy server", "addr", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down genealogy server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
