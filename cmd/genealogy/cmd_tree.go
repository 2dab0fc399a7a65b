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
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file.csv]",
		Short: "Check that a genealogy file is well formed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.loadTree(cmd.Context(), a.treeLocation(args))
			if err != nil {
				return err
			}
			if err := t.Validate(); err != nil {
				return err
			}
			stats := t.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d professors, depth %d\n", stats.Size, stats.MaxDepth)
			return nil
		},
	}
}

func (a *app) renderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <file.csv> [name]",
		Short: "Print a genealogy on one line, e.g. root[child1, child2[grandchild]]",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.loadTree(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			node := t.Root()
			if len(args) == 2 {
				if node, err = t.FindSubtree(args[1]); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), node.String())
			return nil
		},
	}
}
