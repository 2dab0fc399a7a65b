// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package interpreter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AleutianAI/genealogy/services/genealogy/tree"
)

// ArgumentError reports a missing or malformed command argument.
type ArgumentError struct {
	Reason string
}

func (e *ArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}

var (
	errMissingArgument  = &ArgumentError{Reason: "Missing argument"}
	errMissingArguments = &ArgumentError{Reason: "Missing arguments"}
)

// outcome classifies a command result for metrics and spans.
type outcome string

const (
	outcomeOK       outcome = "ok"
	outcomeNotFound outcome = "not_found"
	outcomeInvalid  outcome = "invalid"
	outcomeUnknown  outcome = "unknown"
	outcomeError    outcome = "error"
)

const (
	msgPersonAbsent    = "This person does not exist in the tree."
	msgProfessorAbsent = "This professor does not exist in the tree."
	msgNoAncestor      = "These professors do not have a common ancestor in the tree."
	msgRootNoAdvisor   = "This professor does not have an advisor in the tree."
	msgContained       = "This professor is contained in the tree."
	msgNotContained    = "This professor is not contained in the tree."
)

// command is one interpreter keyword.
type command struct {
	name  string
	usage string
	run   func(ctx context.Context, arg string) (outcome, error)
}

// commandTable lists the commands in the order help prints them.
func (i *Interpreter) commandTable() []command {
	return []command{
		{name: "help", usage: "help", run: i.doHelp},
		{name: "print", usage: "print [<advisor name>]: print every professor in the academic genealogy of the given professor (default: root) with their degree year", run: i.doPrint},
		{name: "contains", usage: "contains <prof name> : whether this professor is in the PhD tree", run: i.doContains},
		{name: "size", usage: "size [<advisor name>] : the number of academic descendants of the given professor (default: root), including themselves", run: i.doSize},
		{name: "advisor", usage: "advisor <advisee name> : the direct advisor of the given professor", run: i.doAdvisor},
		{name: "ancestor", usage: "ancestor <prof 1>, <prof 2> : the common ancestor between the two given professors", run: i.doAncestor},
		{name: "lineage", usage: "lineage <prof name> : the sequence of advisors from the root to the given professor", run: i.doLineage},
		{name: "leaves", usage: "leaves [<advisor name>] : the number of professors without advisees in the genealogy of the given professor (default: root)", run: i.doLeaves},
		{name: "depth", usage: "depth [<advisor name>] : the number of generations in the genealogy of the given professor (default: root), including themselves", run: i.doDepth},
		{name: "mentor", usage: "mentor <count> : the first professor, in print order, with at least count direct advisees", run: i.doMentor},
		{name: "tree", usage: "tree [<advisor name>] : the genealogy of the given professor (default: root) on one line", run: i.doTree},
		{name: "exit", usage: "exit : exit the program", run: i.doExit},
	}
}

func (i *Interpreter) doHelp(_ context.Context, _ string) (outcome, error) {
	for _, cmd := range i.commands {
		fmt.Fprintln(i.out, cmd.usage)
	}
	return outcomeOK, nil
}

func (i *Interpreter) doExit(_ context.Context, _ string) (outcome, error) {
	return outcomeOK, nil
}

// subtree resolves an optional name argument; empty means the whole tree.
func (i *Interpreter) subtree(arg string) (*tree.Node, bool) {
	if arg == "" {
		return i.tree.Root(), true
	}
	node, err := i.tree.FindSubtree(arg)
	if err != nil {
		return nil, false
	}
	return node, true
}

func (i *Interpreter) doPrint(_ context.Context, arg string) (outcome, error) {
	node, ok := i.subtree(arg)
	if !ok {
		fmt.Fprintln(i.out, msgPersonAbsent)
		return outcomeNotFound, nil
	}
	if err := node.WriteProfessors(i.out); err != nil {
		return outcomeError, fmt.Errorf("print professors: %w", err)
	}
	return outcomeOK, nil
}

func (i *Interpreter) doContains(_ context.Context, arg string) (outcome, error) {
	if arg == "" {
		return outcomeInvalid, errMissingArgument
	}
	if i.tree.Contains(arg) {
		fmt.Fprintln(i.out, msgContained)
		return outcomeOK, nil
	}
	fmt.Fprintln(i.out, msgNotContained)
	return outcomeNotFound, nil
}

// count answers size, leaves and depth, which share their lookup rules.
func (i *Interpreter) count(arg, label string, measure func(*tree.Node) int) (outcome, error) {
	node, ok := i.subtree(arg)
	if !ok {
		fmt.Fprintln(i.out, msgProfessorAbsent)
		return outcomeNotFound, nil
	}
	fmt.Fprintf(i.out, "The %s: %d.\n", label, measure(node))
	return outcomeOK, nil
}

func (i *Interpreter) doSize(_ context.Context, arg string) (outcome, error) {
	return i.count(arg, "number of nodes in this tree is", (*tree.Node).Size)
}

func (i *Interpreter) doLeaves(_ context.Context, arg string) (outcome, error) {
	return i.count(arg, "number of leaves in this tree is", (*tree.Node).NumLeaves)
}

func (i *Interpreter) doDepth(_ context.Context, arg string) (outcome, error) {
	return i.count(arg, "maximum depth of this tree is", (*tree.Node).MaxDepth)
}

func (i *Interpreter) doAdvisor(_ context.Context, arg string) (outcome, error) {
	if arg == "" {
		return outcomeInvalid, errMissingArgument
	}
	if i.tree.Professor().Name == arg {
		fmt.Fprintln(i.out, msgRootNoAdvisor)
		return outcomeNotFound, nil
	}
	advisor, err := i.tree.FindAdvisor(arg)
	if errors.Is(err, tree.ErrNotFound) {
		fmt.Fprintln(i.out, msgProfessorAbsent)
		return outcomeNotFound, nil
	}
	if err != nil {
		return outcomeError, err
	}
	fmt.Fprintf(i.out, "The advisor of this advisee is: %s.\n", advisor.Label())
	return outcomeOK, nil
}

func (i *Interpreter) doAncestor(_ context.Context, arg string) (outcome, error) {
	names := splitNames(arg)
	if len(names) != 2 {
		return outcomeInvalid, errMissingArguments
	}
	ancestor, err := i.tree.CommonAncestor(names[0], names[1])
	if errors.Is(err, tree.ErrNotFound) {
		fmt.Fprintln(i.out, msgNoAncestor)
		return outcomeNotFound, nil
	}
	if err != nil {
		return outcomeError, err
	}
	fmt.Fprintf(i.out, "The common ancestor of these professors is: %s.\n", ancestor)
	return outcomeOK, nil
}

func (i *Interpreter) doLineage(_ context.Context, arg string) (outcome, error) {
	if arg == "" {
		return outcomeInvalid, errMissingArgument
	}
	lineage, err := i.tree.FindAcademicLineage(arg)
	if errors.Is(err, tree.ErrNotFound) {
		fmt.Fprintln(i.out, msgProfessorAbsent)
		return outcomeNotFound, nil
	}
	if err != nil {
		return outcomeError, err
	}
	labels := make([]string, len(lineage))
	for idx, p := range lineage {
		labels[idx] = p.Label()
	}
	fmt.Fprintf(i.out, "The lineage is: %s.\n", strings.Join(labels, "--"))
	return outcomeOK, nil
}

func (i *Interpreter) doMentor(_ context.Context, arg string) (outcome, error) {
	if arg == "" {
		return outcomeInvalid, errMissingArgument
	}
	minAdvisees, err := strconv.Atoi(arg)
	if err != nil || minAdvisees < 0 {
		return outcomeInvalid, &ArgumentError{Reason: "Advisee count must be a non-negative integer"}
	}
	mentor, err := i.tree.FindProlificMentor(minAdvisees)
	if errors.Is(err, tree.ErrNotFound) {
		fmt.Fprintf(i.out, "No professor has at least %d advisees.\n", minAdvisees)
		return outcomeNotFound, nil
	}
	if err != nil {
		return outcomeError, err
	}
	fmt.Fprintf(i.out, "A professor with at least %d advisees is: %s.\n", minAdvisees, mentor.Label())
	return outcomeOK, nil
}

func (i *Interpreter) doTree(_ context.Context, arg string) (outcome, error) {
	node, ok := i.subtree(arg)
	if !ok {
		fmt.Fprintln(i.out, msgProfessorAbsent)
		return outcomeNotFound, nil
	}
	fmt.Fprintln(i.out, node.String())
	return outcomeOK, nil
}

// splitNames splits "a, b" at commas, trims each name, and drops trailing
// empty names. A blank argument yields no names.
func splitNames(arg string) []string {
	names := strings.Split(strings.TrimSpace(arg), ",")
	for idx := range names {
		names[idx] = strings.TrimSpace(names[idx])
	}
	for len(names) > 0 && names[len(names)-1] == "" {
		names = names[:len(names)-1]
	}
	return names
}
