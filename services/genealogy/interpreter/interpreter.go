// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package interpreter answers line-oriented queries about a genealogy tree.
//
// Each input line is one command: a keyword, optionally followed by
// whitespace and an argument string. Keywords are case-insensitive. Every
// command writes its answer as one or more complete lines; lookups that
// fail are answered with a message, never with an error.
//
//	print [<name>]
//	contains <name>
//	size [<name>]
//	advisor <name>
//	ancestor <name 1>, <name 2>
//	lineage <name>
//	exit
package interpreter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/AleutianAI/genealogy/services/genealogy/telemetry"
	"github.com/AleutianAI/genealogy/services/genealogy/tree"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "genealogy.interpreter"

	// maxLineBytes bounds a single command line. Longer lines are
	// rejected and the rest of the line is discarded.
	maxLineBytes = 64 * 1024

	lineTooLong = "Command line too long"

	helpHint       = `Enter the command "help" for information about that command.`
	unknownCommand = `This is not a valid command. For help, enter the command "help"`
)

// Interpreter runs commands against one tree.
//
// Description:
//
//	An Interpreter reads commands from an io.Reader, executes them against
//	its tree, and writes the answers to its output. It never mutates the
//	tree.
//
// Thread Safety:
//
//	Not safe for concurrent use. Run one Interpreter per session.
type Interpreter struct {
	tree      *tree.Tree
	out       *bufio.Writer
	prompt    string
	logger    *slog.Logger
	sessionID string
	commands  []command
	byName    map[string]*command
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithPrompt writes prompt before every command is read. Empty disables
// the prompt, which is the default.
func WithPrompt(prompt string) Option {
	return func(i *Interpreter) {
		i.prompt = prompt
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithSessionID sets the session ID attached to logs and spans. Default: a
// random UUID.
func WithSessionID(id string) Option {
	return func(i *Interpreter) {
		if id != "" {
			i.sessionID = id
		}
	}
}

// New creates an interpreter over t that writes answers to out.
//
// Inputs:
//
//	t - The tree to query. Should be frozen; the interpreter only reads it.
//	out - Destination for command output and the prompt.
//	opts - Optional settings.
//
// Outputs:
//
//	*Interpreter - Ready to Run.
func New(t *tree.Tree, out io.Writer, opts ...Option) *Interpreter {
	i := &Interpreter{
		tree:      t,
		out:       bufio.NewWriter(out),
		logger:    slog.Default(),
		sessionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = i.logger.With(slog.String("session_id", i.sessionID))

	i.commands = i.commandTable()
	i.byName = make(map[string]*command, len(i.commands))
	for idx := range i.commands {
		i.byName[i.commands[idx].name] = &i.commands[idx]
	}
	return i
}

// SessionID returns the ID attached to this interpreter's logs and spans.
func (i *Interpreter) SessionID() string {
	return i.sessionID
}

// Run reads and executes commands from in until "exit" or end of input.
//
// Description:
//
//	Each line is trimmed and split at the first run of whitespace into a
//	keyword and an argument. A line longer than maxLineBytes is answered
//	as an invalid command and the session continues. The prompt, when
//	configured, is written and flushed before each read. Output is flushed
//	after every command so an interactive user sees the answer before the
//	next prompt.
//
// Inputs:
//
//	ctx - Cancellation is checked before each command.
//	in - Command source.
//
// Outputs:
//
//	error - nil on "exit" or end of input. Otherwise the read or write
//	        error, or ctx.Err().
func (i *Interpreter) Run(ctx context.Context, in io.Reader) error {
	reader := bufio.NewReader(in)

	i.logger.Debug("interpreter session started")
	commands := 0
	defer func() {
		i.logger.Debug("interpreter session ended", slog.Int("commands", commands))
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i.prompt != "" {
			i.out.WriteString(i.prompt)
			if err := i.out.Flush(); err != nil {
				return fmt.Errorf("write prompt: %w", err)
			}
		}
		line, tooLong, err := readLine(reader)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}

		commands++
		done := i.execute(ctx, line, tooLong)
		if err := i.out.Flush(); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if done {
			return nil
		}
	}
}

// Execute runs a single command line and reports whether it was "exit".
// Output is buffered until the next Run iteration or Flush.
func (i *Interpreter) Execute(ctx context.Context, line string) (exit bool) {
	return i.execute(ctx, line, false)
}

// execute runs line. A truncated line is still dispatched on its keyword
// but rejected as an invalid command.
func (i *Interpreter) execute(ctx context.Context, line string, truncated bool) bool {
	keyword, arg := splitCommand(line)

	cmd, known := i.byName[keyword]
	spanName := "interpreter.unknown"
	if known {
		spanName = "interpreter." + cmd.name
	}
	ctx, span := telemetry.StartSpan(ctx, tracerName, spanName,
		trace.WithAttributes(
			attribute.String("session.id", i.sessionID),
			attribute.String("command.arg", arg),
		),
	)
	defer span.End()
	start := time.Now()
	logger := telemetry.LoggerWithTrace(ctx, i.logger)

	if !known {
		fmt.Fprintln(i.out, unknownCommand)
		recordCommand(labelUnknown, outcomeUnknown, time.Since(start))
		span.SetAttributes(attribute.String("command.outcome", string(outcomeUnknown)))
		logger.Debug("unknown command", slog.String("keyword", keyword))
		return false
	}

	var (
		result outcome
		err    error
	)
	if truncated {
		err = &ArgumentError{Reason: lineTooLong}
	} else {
		result, err = cmd.run(ctx, arg)
	}
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		fmt.Fprintf(i.out, "Invalid %s command: %s\n", cmd.name, argErr.Reason)
		fmt.Fprintln(i.out, helpHint)
		result = outcomeInvalid
		telemetry.RecordError(span, err)
	} else if err != nil {
		result = outcomeError
		telemetry.RecordError(span, err)
		logger.Error("command failed", slog.String("command", cmd.name), slog.String("error", err.Error()))
	} else {
		telemetry.SetSpanOK(span)
	}

	recordCommand(cmd.name, result, time.Since(start))
	span.SetAttributes(attribute.String("command.outcome", string(result)))
	logger.Debug("command executed",
		slog.String("command", cmd.name),
		slog.String("outcome", string(result)),
		slog.Duration("duration", time.Since(start)),
	)
	return cmd.name == "exit"
}

// Flush writes any buffered output.
func (i *Interpreter) Flush() error {
	return i.out.Flush()
}

// readLine reads one line without its "\n" or "\r\n" ending. A line longer
// than maxLineBytes is cut to that length, tooLong is set, and the remainder
// is consumed. err is io.EOF only when no more input remains.
func readLine(r *bufio.Reader) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		frag, readErr := r.ReadSlice('\n')
		if !tooLong {
			buf = append(buf, frag...)
			if len(trimLineEnding(buf)) > maxLineBytes {
				tooLong = true
				buf = buf[:maxLineBytes]
			}
		}

		switch {
		case readErr == nil:
			return string(trimLineEnding(buf)), tooLong, nil
		case errors.Is(readErr, bufio.ErrBufferFull):
			continue
		case errors.Is(readErr, io.EOF):
			if len(buf) == 0 && !tooLong {
				return "", false, io.EOF
			}
			return string(trimLineEnding(buf)), tooLong, nil
		default:
			return "", false, readErr
		}
	}
}

func trimLineEnding(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte("\n"))
	return bytes.TrimSuffix(b, []byte("\r"))
}

// splitCommand trims line and splits it at the first run of whitespace.
// The keyword is lowercased; the argument keeps its case.
func splitCommand(line string) (keyword, arg string) {
	line = strings.TrimSpace(line)
	idx := strings.IndexFunc(line, unicode.IsSpace)
	if idx < 0 {
		return strings.ToLower(line), ""
	}
	return strings.ToLower(line[:idx]), strings.TrimLeftFunc(line[idx:], unicode.IsSpace)
}
