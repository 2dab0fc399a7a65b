// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package loader builds genealogy trees from comma-separated input.
//
// # Format
//
// The first line is exactly the header "advisee,year,advisor". The next line
// is the root professor; its advisor column is ignored. Every further line
// is "<advisee>,<year>,<advisor>" where the advisor has already appeared.
// Fields are split on literal commas with empty fields preserved; there is
// no quoting and no whitespace trimming.
//
//	advisee,year,advisor
//	Maya Leong,2005,
//	Matthew Hui,2005,Maya Leong
//	Amy Huang,2023,Matthew Hui
package loader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/genealogy/services/genealogy/telemetry"
	"github.com/AleutianAI/genealogy/services/genealogy/tree"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	header     = "advisee,year,advisor"
	numColumns = 3
	tracerName = "genealogy.loader"

	// maxLineBytes bounds a single row.
	maxLineBytes = 1 << 20
)

// Option configures Load.
type Option func(*options)

type options struct {
	logger          *slog.Logger
	invariantChecks bool
	mutable         bool
}

// WithLogger sets the logger for load progress. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithInvariantChecks validates the tree after every insertion.
func WithInvariantChecks() Option {
	return func(o *options) {
		o.invariantChecks = true
	}
}

// WithMutable returns the tree unfrozen so callers can keep inserting.
func WithMutable() Option {
	return func(o *options) {
		o.mutable = true
	}
}

// Load reads a genealogy from r and builds its tree.
//
// Description:
//
//	Validates the header, creates the tree from the root row, then inserts
//	each following row under its advisor. Rows are checked in file order and
//	the first violation stops the load. For each non-root row the checks run
//	as: column count, duplicate advisee, integer year, known advisor.
//	Trailing blank lines are ignored; "\r\n" line endings are accepted.
//
// Inputs:
//
//	ctx - Context for cancellation and tracing. Checked between rows.
//	r - The comma-separated input.
//	opts - Optional settings.
//
// Outputs:
//
//	*tree.Tree - The genealogy, frozen unless WithMutable was given.
//	error - A *FormatError (errors.Is ErrInvalidFormat) for bad input, the
//	        read error if r fails, or ctx.Err() if cancelled.
//
// Example:
//
//	f, err := os.Open("professors.csv")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//	t, err := loader.Load(ctx, f)
//
// Thread Safety: Safe for concurrent use with different readers.
func Load(ctx context.Context, r io.Reader, opts ...Option) (*tree.Tree, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := telemetry.StartSpan(ctx, tracerName, "loader.Load")
	defer span.End()
	start := time.Now()

	t, rows, err := load(ctx, r, o)
	recordLoad(ctx, time.Since(start), rows, err == nil)
	span.SetAttributes(attribute.Int("loader.rows", rows))
	if err != nil {
		telemetry.RecordError(span, err)
		o.logger.Debug("tree load failed", slog.Int("rows", rows), slog.String("error", err.Error()))
		return nil, err
	}

	if !o.mutable {
		t.Freeze()
	}
	span.SetAttributes(attribute.Int("tree.size", t.Size()))
	telemetry.SetSpanOK(span)
	o.logger.Debug("tree loaded",
		slog.Int("rows", rows),
		slog.String("root", t.Professor().Name),
		slog.Duration("duration", time.Since(start)),
	)
	return t, nil
}

// load does the parsing and returns the number of data rows accepted.
func load(ctx context.Context, r io.Reader, o options) (*tree.Tree, int, error) {
	lines, err := readLines(r)
	var fe *FormatError
	if errors.As(err, &fe) {
		return nil, 0, fe
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read tree input: %w", err)
	}

	if len(lines) == 0 {
		return nil, 0, &FormatError{Rule: RuleMissingRow, Value: "missing header"}
	}
	if lines[0] != header {
		return nil, 0, &FormatError{Line: 1, Rule: RuleHeader, Value: lines[0]}
	}
	if len(lines) == 1 {
		return nil, 0, &FormatError{Rule: RuleMissingRow, Value: "missing root row"}
	}

	root, err := parseRoot(lines[1])
	if err != nil {
		return nil, 0, withLine(err, 2)
	}
	t := tree.New(root, tree.WithInvariantChecks(o.invariantChecks))
	trace.SpanFromContext(ctx).AddEvent("root_parsed", trace.WithAttributes(attribute.String("root", root.Name)))

	rows := 1
	for i, line := range lines[2:] {
		if err := ctx.Err(); err != nil {
			return nil, rows, err
		}
		if err := insertRow(t, line); err != nil {
			return nil, rows, withLine(err, i+3)
		}
		rows++
	}
	return t, rows, nil
}

// readLines returns all lines with "\r" endings removed and trailing blank
// lines dropped.
func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &FormatError{Line: len(lines) + 1, Rule: RuleLineLength, Err: err}
		}
		return nil, err
	}

	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

func splitRow(line string) ([]string, error) {
	fields := strings.Split(line, ",")
	if len(fields) != numColumns {
		return nil, &FormatError{Rule: RuleColumnCount, Value: line}
	}
	return fields, nil
}

func parseYear(field string) (int, error) {
	year, err := strconv.Atoi(field)
	if err != nil {
		return 0, &FormatError{Rule: RuleYear, Value: field, Err: err}
	}
	return year, nil
}

func parseRoot(line string) (tree.Professor, error) {
	fields, err := splitRow(line)
	if err != nil {
		return tree.Professor{}, err
	}
	year, err := parseYear(fields[1])
	if err != nil {
		return tree.Professor{}, err
	}
	return tree.NewProfessor(fields[0], year), nil
}

func insertRow(t *tree.Tree, line string) error {
	fields, err := splitRow(line)
	if err != nil {
		return err
	}
	advisee, yearField, advisor := fields[0], fields[1], fields[2]

	if t.Contains(advisee) {
		return &FormatError{Rule: RuleDuplicate, Value: advisee}
	}
	year, err := parseYear(yearField)
	if err != nil {
		return err
	}
	if err := t.Insert(advisor, tree.NewProfessor(advisee, year)); err != nil {
		if errors.Is(err, tree.ErrNotFound) {
			return &FormatError{Rule: RuleUnknownAdvisor, Value: advisor, Err: err}
		}
		return err
	}
	return nil
}

func withLine(err error, line int) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		fe.Line = line
	}
	return err
}
