// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/AleutianAI/genealogy/services/genealogy/tree"
	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "genealogy_reloads_total",
	Help: "Tree reloads by result",
}, []string{"result"})

// ErrNoTree is returned by Reload when the LoadFunc succeeds without a tree.
var ErrNoTree = errors.New("load returned no tree")

// LoadFunc builds a fresh tree from the watched source.
type LoadFunc func(ctx context.Context) (*tree.Tree, error)

// ReloaderOptions configures a Reloader.
type ReloaderOptions struct {
	// Debounce is how long the file must be quiet before reloading.
	// Default: 250ms
	Debounce time.Duration

	// Logger receives reload results. Default: slog.Default().
	Logger *slog.Logger
}

// Reloader republishes the tree when its file changes.
//
// # Description
//
// Watches the directory containing the tree file, so editors that write a
// temporary file and rename it over the original are seen too. Create and
// write events for the tree file are batched with a debounce window; when
// the window expires the file is loaded into a brand-new tree and published
// to the Snapshot. A load that fails leaves the current tree in place.
//
// # Thread Safety
//
// Run must be called at most once. Reload is safe for concurrent use; calls
// are serialized so the last one to start publishes last.
type Reloader struct {
	mu       sync.Mutex
	path     string
	snapshot *Snapshot
	load     LoadFunc
	debounce time.Duration
	logger   *slog.Logger
}

// NewReloader creates a reloader for the local file at path.
func NewReloader(path string, snapshot *Snapshot, load LoadFunc, opts ReloaderOptions) (*Reloader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 250 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Reloader{
		path:     abs,
		snapshot: snapshot,
		load:     load,
		debounce: opts.Debounce,
		logger:   opts.Logger.With("tree_file", abs),
	}, nil
}

// Run watches until ctx is cancelled.
//
// Outputs:
//
//	error - Non-nil only if the watch could not be set up.
func (r *Reloader) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(r.path), err)
	}
	r.logger.Info("watching tree file", "debounce", r.debounce)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !r.relevant(event) {
				continue
			}
			r.logger.Debug("tree file changed", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(r.debounce)
				timerC = timer.C
			} else {
				timer.Reset(r.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("file watcher error", "error", err)

		case <-timerC:
			timer, timerC = nil, nil
			_ = r.Reload(ctx)
		}
	}
}

// relevant reports whether event changed the contents of the tree file.
func (r *Reloader) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != r.path {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write)
}

// Reload loads the tree now and publishes it on success.
func (r *Reloader) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	t, err := r.load(ctx)
	if err == nil && t == nil {
		err = ErrNoTree
	}
	if err != nil {
		reloadsTotal.WithLabelValues("failed").Inc()
		r.logger.Warn("tree reload failed, keeping current tree", "error", err)
		return err
	}
	r.snapshot.Replace(t)
	reloadsTotal.WithLabelValues("ok").Inc()
	r.logger.Info("tree reloaded",
		"professors", t.Size(),
		"generation", r.snapshot.Version(),
		"duration", time.Since(start),
	)
	return nil
}
