// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"strings"

	"github.com/AleutianAI/genealogy/services/genealogy/loader"
	"github.com/AleutianAI/genealogy/services/genealogy/server"
	"github.com/AleutianAI/genealogy/services/genealogy/tree"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve [file.csv]",
		Short: "Serve the genealogy over a read-only HTTP API",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.Server.Watch = watch
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.serve(cmd.Context(), a.treeLocation(args))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the tree when the file changes")
	return cmd
}

// serve runs the HTTP server, and the reloader when watching, until ctx is
// cancelled or either fails.
func (a *app) serve(ctx context.Context, location string) error {
	t, err := a.loadTree(ctx, location)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	snapshot := server.NewSnapshot(t)
	srv := server.New(snapshot, a.cfg.Server, a.cfg.Telemetry.ServiceName, a.logger)

	var reloader *server.Reloader
	if a.cfg.Server.Watch {
		if strings.HasPrefix(location, "gs://") {
			a.logger.Warn("watch is not supported for remote trees, serving a fixed snapshot", "tree_file", location)
		} else {
			load := func(ctx context.Context) (*tree.Tree, error) {
				return loader.LoadLocation(ctx, location, a.cfg.GCS, loader.WithLogger(a.logger))
			}
			reloader, err = server.NewReloader(location, snapshot, load, server.ReloaderOptions{
				Debounce: a.cfg.Server.Debounce,
				Logger:   a.logger,
			})
			if err != nil {
				return err
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if reloader != nil {
		g.Go(func() error {
			return reloader.Run(gctx)
		})
	}
	return g.Wait()
}
