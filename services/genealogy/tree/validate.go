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
	"fmt"
)

// Validate checks the tree invariants with a full traversal.
//
// Description:
//
//	Walks the tree from the root, accumulating every professor name and
//	every node seen. A repeated name or a node reached twice fails. Also
//	checks that each advisees slice is strictly sorted by name and that the
//	name index holds exactly the nodes found by the traversal.
//
// Outputs:
//   - error: Wraps ErrInvariantViolated describing the first violation, or
//     nil if the tree is well formed.
//
// Thread Safety: Safe for concurrent use on a frozen tree.
func (t *Tree) Validate() error {
	seenNames := make(map[string]struct{}, len(t.index))
	seenNodes := make(map[*Node]struct{}, len(t.index))
	if err := t.root.validate(seenNames, seenNodes); err != nil {
		return err
	}

	if len(t.index) != len(seenNodes) {
		return fmt.Errorf("%w: index holds %d professors, traversal found %d",
			ErrInvariantViolated, len(t.index), len(seenNodes))
	}
	for name, node := range t.index {
		if _, ok := seenNodes[node]; !ok {
			return fmt.Errorf("%w: indexed professor %q is not reachable from the root", ErrInvariantViolated, name)
		}
		if node.professor.Name != name {
			return fmt.Errorf("%w: index key %q points at %q", ErrInvariantViolated, name, node.professor.Name)
		}
	}
	return nil
}

func (n *Node) validate(seenNames map[string]struct{}, seenNodes map[*Node]struct{}) error {
	name := n.professor.Name
	if _, dup := seenNodes[n]; dup {
		return fmt.Errorf("%w: node %q is reachable by more than one path", ErrInvariantViolated, name)
	}
	if _, dup := seenNames[name]; dup {
		return fmt.Errorf("%w: professor %q appears more than once", ErrInvariantViolated, name)
	}
	seenNodes[n] = struct{}{}
	seenNames[name] = struct{}{}

	for i, advisee := range n.advisees {
		if i > 0 && n.advisees[i-1].professor.Compare(advisee.professor) >= 0 {
			return fmt.Errorf("%w: advisees of %q out of order at %q", ErrInvariantViolated, name, advisee.professor.Name)
		}
		if err := advisee.validate(seenNames, seenNodes); err != nil {
			return err
		}
	}
	return nil
}
