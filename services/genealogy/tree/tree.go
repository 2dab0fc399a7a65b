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
	"io"
)

// Tree is a complete academic genealogy.
//
// Description:
//
//	Tree owns the root Node and a name index covering every professor in
//	the tree. Tree forwards the Node queries to its root; FindSubtree and
//	Contains are answered from the index instead of a walk. The zero value
//	is not usable: construct trees with New.
//
// Invariants:
//   - index has exactly one entry per professor in the tree
//   - index[name].Professor().Name == name
//
// Thread Safety:
//
//	Not safe for concurrent use until Freeze() has been called. Freeze must
//	happen before the tree is shared with other goroutines.
type Tree struct {
	root            *Node
	index           map[string]*Node
	frozen          bool
	checkInvariants bool
}

// Option configures a Tree.
type Option func(*Tree)

// WithInvariantChecks enables a full Validate pass after every Insert.
//
// A failed check panics: it means the tree code itself is broken, not that
// the caller supplied bad input. Intended for tests.
func WithInvariantChecks(enabled bool) Option {
	return func(t *Tree) {
		t.checkInvariants = enabled
	}
}

// New creates a tree holding only the root professor.
//
// Example:
//
//	t := tree.New(tree.NewProfessor("David Gries", 1966))
//	if err := t.Insert("David Gries", tree.NewProfessor("Andrew Myers", 1999)); err != nil {
//	    return err
//	}
//	t.Freeze()
func New(root Professor, opts ...Option) *Tree {
	rootNode := newNode(root)
	t := &Tree{
		root:  rootNode,
		index: map[string]*Node{root.Name: rootNode},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.assertInvariants()
	return t
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Professor returns the root professor.
func (t *Tree) Professor() Professor { return t.root.Professor() }

// NumAdvisees returns the number of the root's direct advisees.
func (t *Tree) NumAdvisees() int { return t.root.NumAdvisees() }

// Advisees returns the root's direct advisees in name order.
func (t *Tree) Advisees() []*Node { return t.root.Advisees() }

// Size returns the number of professors in the tree.
func (t *Tree) Size() int { return t.root.Size() }

// NumLeaves returns the number of professors with no advisees.
func (t *Tree) NumLeaves() int { return t.root.NumLeaves() }

// MaxDepth returns the number of professors on the longest root-to-leaf path.
func (t *Tree) MaxDepth() int { return t.root.MaxDepth() }

// FindProlificMentor is Node.FindProlificMentor on the root.
func (t *Tree) FindProlificMentor(minAdvisees int) (Professor, error) {
	return t.root.FindProlificMentor(minAdvisees)
}

// FindAdvisor is Node.FindAdvisor on the root.
func (t *Tree) FindAdvisor(adviseeName string) (Professor, error) {
	return t.root.FindAdvisor(adviseeName)
}

// FindAcademicLineage is Node.FindAcademicLineage on the root.
func (t *Tree) FindAcademicLineage(targetName string) ([]Professor, error) {
	return t.root.FindAcademicLineage(targetName)
}

// CommonAncestor is Node.CommonAncestor on the root.
func (t *Tree) CommonAncestor(name1, name2 string) (Professor, error) {
	return t.root.CommonAncestor(name1, name2)
}

// Walk is Node.Walk on the root.
func (t *Tree) Walk(fn func(node *Node, depth int) bool) bool {
	return t.root.Walk(fn)
}

// String renders the whole tree on one line.
func (t *Tree) String() string { return t.root.String() }

// WriteProfessors is Node.WriteProfessors on the root.
func (t *Tree) WriteProfessors(w io.Writer) error {
	return t.root.WriteProfessors(w)
}

// ProfessorLines is Node.ProfessorLines on the root.
func (t *Tree) ProfessorLines() []string { return t.root.ProfessorLines() }

// FindSubtree returns the node for targetName using the name index.
//
// Outputs:
//   - *Node: The matching node. Never nil on success.
//   - error: Wraps ErrNotFound if the name is not in the tree.
func (t *Tree) FindSubtree(targetName string) (*Node, error) {
	if node, ok := t.index[targetName]; ok {
		return node, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, targetName)
}

// Contains reports whether targetName is anywhere in the tree.
func (t *Tree) Contains(targetName string) bool {
	_, ok := t.index[targetName]
	return ok
}

// Insert adds newProfessor as a direct advisee of the professor named
// advisorName.
//
// Description:
//
//	The new professor becomes a childless node placed in name order among
//	the advisor's existing advisees. The name must not already appear
//	anywhere in the tree, not only among the advisor's advisees.
//
// Inputs:
//   - advisorName: Name of an existing professor in the tree.
//   - newProfessor: The professor to add. Name must be new to the tree.
//
// Outputs:
//   - error: Wraps ErrTreeFrozen after Freeze, ErrDuplicateProfessor if the
//     name is taken, or ErrNotFound if advisorName is not in the tree. The
//     tree is unchanged on error.
//
// Thread Safety: Not safe for concurrent use.
func (t *Tree) Insert(advisorName string, newProfessor Professor) error {
	if t.frozen {
		recordInsert(insertResultFrozen)
		return fmt.Errorf("%w: cannot insert %q", ErrTreeFrozen, newProfessor.Name)
	}
	if _, exists := t.index[newProfessor.Name]; exists {
		recordInsert(insertResultDuplicate)
		return fmt.Errorf("%w: %q", ErrDuplicateProfessor, newProfessor.Name)
	}
	advisor, ok := t.index[advisorName]
	if !ok {
		recordInsert(insertResultAdvisorNotFound)
		return fmt.Errorf("%w: advisor %q", ErrNotFound, advisorName)
	}

	child := newNode(newProfessor)
	advisor.addAdvisee(child)
	t.index[newProfessor.Name] = child
	recordInsert(insertResultOK)

	t.assertInvariants()
	return nil
}

// Freeze makes the tree read-only. Subsequent Insert calls fail with
// ErrTreeFrozen. Calling Freeze more than once is harmless.
func (t *Tree) Freeze() {
	if t.frozen {
		return
	}
	t.frozen = true
	recordFrozen(t.Stats())
}

// Frozen reports whether Freeze has been called.
func (t *Tree) Frozen() bool {
	return t.frozen
}

// Stats summarises the shape of a tree.
type Stats struct {
	Size         int `json:"size"`
	Leaves       int `json:"leaves"`
	MaxDepth     int `json:"max_depth"`
	RootAdvisees int `json:"root_advisees"`
}

// Stats computes size, leaf count, depth and root fan-out in one walk.
func (t *Tree) Stats() Stats {
	var s Stats
	t.Walk(func(n *Node, depth int) bool {
		s.Size++
		if n.NumAdvisees() == 0 {
			s.Leaves++
		}
		s.MaxDepth = max(s.MaxDepth, depth)
		return true
	})
	s.RootAdvisees = t.NumAdvisees()
	return s
}

// assertInvariants panics if invariant checks are enabled and Validate fails.
func (t *Tree) assertInvariants() {
	if !t.checkInvariants {
		return
	}
	if err := t.Validate(); err != nil {
		panic(err)
	}
}
