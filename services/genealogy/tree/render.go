// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tree

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// String renders this subtree on a single line.
//
// A leaf renders as its name. Any other node renders as
// "name[child1, child2, ...]" with children in name order, recursively:
//
//	Maya Leong[Curran Muhlberger[Andrew Myers, Tomer Shamir], Matthew Hui[Amy Huang[David Gries]]]
func (n *Node) String() string {
	var sb strings.Builder
	n.render(&sb)
	return sb.String()
}

func (n *Node) render(sb *strings.Builder) {
	sb.WriteString(n.professor.Name)
	if len(n.advisees) == 0 {
		return
	}
	sb.WriteByte('[')
	for i, advisee := range n.advisees {
		if i > 0 {
			sb.WriteString(", ")
		}
		advisee.render(sb)
	}
	sb.WriteByte(']')
}

// WriteProfessors writes one "NAME - YEAR" line per professor in this
// subtree, depth-first with advisees in name order.
func (n *Node) WriteProfessors(w io.Writer) error {
	bw := bufio.NewWriter(w)
	n.Walk(func(node *Node, _ int) bool {
		bw.WriteString(node.professor.Name)
		bw.WriteString(" - ")
		bw.WriteString(strconv.Itoa(node.professor.PhDYear))
		bw.WriteByte('\n')
		return true
	})
	return bw.Flush()
}

// ProfessorLines returns the lines WriteProfessors would write, without
// trailing newlines.
func (n *Node) ProfessorLines() []string {
	lines := make([]string, 0, n.Size())
	n.Walk(func(node *Node, _ int) bool {
		lines = append(lines, node.professor.Name+" - "+strconv.Itoa(node.professor.PhDYear))
		return true
	})
	return lines
}
