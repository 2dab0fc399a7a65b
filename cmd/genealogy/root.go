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
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/AleutianAI/genealogy/services/genealogy/config"
	"github.com/AleutianAI/genealogy/services/genealogy/interpreter"
	"github.com/AleutianAI/genealogy/services/genealogy/loader"
	"github.com/AleutianAI/genealogy/services/genealogy/telemetry"
	"github.com/AleutianAI/genealogy/services/genealogy/tree"
	"github.com/spf13/cobra"
)

// app holds state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string
	scriptPath string

	cfg      config.Config
	logger   *slog.Logger
	shutdown func(context.Context) error
}

// userError carries a message that is printed verbatim.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "genealogy [-i script] [file.csv]",
		Short: "Query an academic PhD genealogy",
		Long: `Loads an academic genealogy from a CSV file (default: professors.csv)
and answers commands about it, one per line, from standard input or a script.
Enter the command "help" for the list of commands.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runInterpreter,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	root.Flags().StringVarP(&a.scriptPath, "input", "i", "", "read commands from this file instead of standard input")

	root.AddCommand(
		a.validateCmd(),
		a.renderCmd(),
		a.serveCmd(),
	)
	return root
}

// setup loads configuration and initialises logging and telemetry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	// Arguments are valid by now; later failures are not usage errors.
	cmd.SilenceUsage = true

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if cmd.Name() == "serve" && cfg.Telemetry.MetricExporter == telemetry.ExporterNone {
		cfg.Telemetry.MetricExporter = telemetry.ExporterPrometheus
	}
	a.cfg = cfg

	logger, err := telemetry.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger)

	shutdown, err := telemetry.Init(cmd.Context(), cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	a.shutdown = shutdown
	return nil
}

// close flushes telemetry. Safe to call when setup never ran.
func (a *app) close() error {
	if a.shutdown == nil {
		return nil
	}
	return a.shutdown(context.Background())
}

func (a *app) treeLocation(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.TreeFile
}

// loadTree loads and freezes the tree at location.
func (a *app) loadTree(ctx context.Context, location string) (*tree.Tree, error) {
	t, err := loader.LoadLocation(ctx, location, a.cfg.GCS, loader.WithLogger(a.logger))
	if err == nil {
		return t, nil
	}
	if errors.Is(err, loader.ErrInvalidFormat) {
		return nil, &userError{msg: "Invalid file format: " + err.Error(), err: err}
	}
	return nil, &userError{msg: "Could not read tree file: " + err.Error(), err: err}
}

func (a *app) runInterpreter(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	t, err := a.loadTree(ctx, a.treeLocation(args))
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	opts := []interpreter.Option{interpreter.WithLogger(a.logger)}
	if a.scriptPath != "" {
		f, err := os.Open(a.scriptPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	} else if isTerminal(in) {
		opts = append(opts, interpreter.WithPrompt(promptStyle(cmd.OutOrStdout()).Render(promptText)))
	}

	return interpreter.New(t, cmd.OutOrStdout(), opts...).Run(ctx, in)
}
