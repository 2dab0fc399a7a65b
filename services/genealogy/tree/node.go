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
	"slices"
	"strings"
)

// Node is one professor in a genealogy together with their advising
// descendants.
//
// Description:
//
//	Every query on a Node treats that node as the root of its own subtree.
//	A Node obtained from FindSubtree can therefore be queried exactly like
//	the whole tree, restricted to that professor's descendants.
//
// Invariants:
//   - advisees is sorted ascending by professor name
//   - advisees holds no two nodes with the same professor name
//   - a node appears in at most one advisees slice
//
// Thread Safety:
//
//	Read methods are safe for concurrent use once the owning Tree is frozen.
type Node struct {
	professor Professor
	advisees  []*Node
}

func newNode(p Professor) *Node {
	return &Node{professor: p}
}

// Professor returns the professor at this node.
func (n *Node) Professor() Professor {
	return n.professor
}

// NumAdvisees returns the number of direct advisees.
func (n *Node) NumAdvisees() int {
	return len(n.advisees)
}

// Advisees returns the direct advisees in name order.
//
// The returned slice is a copy; reordering it does not affect the tree.
func (n *Node) Advisees() []*Node {
	return slices.Clone(n.advisees)
}

// Size returns the number of professors in this subtree, including this one.
func (n *Node) Size() int {
	size := 1
	for _, advisee := range n.advisees {
		size += advisee.Size()
	}
	return size
}

// NumLeaves returns the number of professors in this subtree with no
// advisees of their own. A childless node counts itself.
func (n *Node) NumLeaves() int {
	if len(n.advisees) == 0 {
		return 1
	}
	leaves := 0
	for _, advisee := range n.advisees {
		leaves += advisee.NumLeaves()
	}
	return leaves
}

// MaxDepth returns the number of professors on the longest path from this
// node down to a leaf. A childless node has depth 1.
func (n *Node) MaxDepth() int {
	deepest := 0
	for _, advisee := range n.advisees {
		deepest = max(deepest, advisee.MaxDepth())
	}
	return deepest + 1
}

// FindProlificMentor returns a professor in this subtree with at least
// minAdvisees direct advisees.
//
// Description:
//
//	Searches pre-order: this node first, then each advisee subtree in name
//	order. The first match wins, which is not necessarily the professor
//	with the most advisees.
//
// Outputs:
//   - Professor: The first qualifying professor.
//   - error: Wraps ErrNotFound if no professor qualifies.
func (n *Node) FindProlificMentor(minAdvisees int) (Professor, error) {
	if p, ok := n.findProlificMentor(minAdvisees); ok {
		return p, nil
	}
	return Professor{}, fmt.Errorf("%w: no professor with at least %d advisees", ErrNotFound, minAdvisees)
}

func (n *Node) findProlificMentor(minAdvisees int) (Professor, bool) {
	if len(n.advisees) >= minAdvisees {
		return n.professor, true
	}
	for _, advisee := range n.advisees {
		if p, ok := advisee.findProlificMentor(minAdvisees); ok {
			return p, true
		}
	}
	return Professor{}, false
}

// FindSubtree returns the node whose professor is named targetName.
//
// Description:
//
//	Pre-order search of this subtree. Because names are unique the first
//	hit is the only hit.
//
// Outputs:
//   - *Node: The matching node. Never nil on success.
//   - error: Wraps ErrNotFound if no professor in this subtree has the name.
func (n *Node) FindSubtree(targetName string) (*Node, error) {
	if found, ok := n.findSubtree(targetName); ok {
		return found, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, targetName)
}

func (n *Node) findSubtree(targetName string) (*Node, bool) {
	if n.professor.Name == targetName {
		return n, true
	}
	for _, advisee := range n.advisees {
		if found, ok := advisee.findSubtree(targetName); ok {
			return found, true
		}
	}
	return nil, false
}

// Contains reports whether a professor named targetName is in this subtree.
func (n *Node) Contains(targetName string) bool {
	_, ok := n.findSubtree(targetName)
	return ok
}

// FindAdvisor returns the direct advisor of the professor named adviseeName.
//
// Description:
//
//	Only descendants of this node have an advisor representable within the
//	subtree. Asking for the advisor of this node's own professor fails the
//	same way as asking for an absent name.
//
// Outputs:
//   - Professor: The advisor.
//   - error: Wraps ErrNotFound if adviseeName is not a descendant.
func (n *Node) FindAdvisor(adviseeName string) (Professor, error) {
	if p, ok := n.findAdvisor(adviseeName); ok {
		return p, nil
	}
	return Professor{}, fmt.Errorf("%w: no advisor for %q", ErrNotFound, adviseeName)
}

func (n *Node) findAdvisor(adviseeName string) (Professor, bool) {
	if _, ok := n.advisee(adviseeName); ok {
		return n.professor, true
	}
	for _, advisee := range n.advisees {
		if p, ok := advisee.findAdvisor(adviseeName); ok {
			return p, true
		}
	}
	return Professor{}, false
}

// advisee looks up a direct advisee by name.
func (n *Node) advisee(name string) (*Node, bool) {
	i, found := n.search(name)
	if !found {
		return nil, false
	}
	return n.advisees[i], true
}

// search returns the position of name among the advisees, or the position
// where it would be inserted.
func (n *Node) search(name string) (int, bool) {
	return slices.BinarySearchFunc(n.advisees, name, func(e *Node, target string) int {
		return strings.Compare(e.professor.Name, target)
	})
}

// addAdvisee inserts child keeping advisees sorted. The caller guarantees
// the name is not already present.
func (n *Node) addAdvisee(child *Node) {
	i, _ := n.search(child.professor.Name)
	n.advisees = slices.Insert(n.advisees, i, child)
}

// FindAcademicLineage returns the professors on the path from this node down
// to the professor named targetName.
//
// Description:
//
//	The path starts with this node's professor and ends with the target;
//	each element after the first is a direct advisee of the one before it.
//	Looking up this node's own professor yields a single-element path.
//
// Outputs:
//   - []Professor: Root-first lineage. Never empty on success.
//   - error: Wraps ErrNotFound if targetName is not in this subtree.
func (n *Node) FindAcademicLineage(targetName string) ([]Professor, error) {
	path, ok := n.lineage(targetName, nil)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, targetName)
	}
	return slices.Clone(path), nil
}

// lineage extends path with this node and descends until the target is
// found. Failed branches are discarded, so siblings may reuse path's
// backing array.
func (n *Node) lineage(targetName string, path []Professor) ([]Professor, bool) {
	path = append(path, n.professor)
	if n.professor.Name == targetName {
		return path, true
	}
	for _, advisee := range n.advisees {
		if found, ok := advisee.lineage(targetName, path); ok {
			return found, true
		}
	}
	return nil, false
}

// CommonAncestor returns the deepest professor whose subtree contains both
// named professors.
//
// Description:
//
//	Computes both lineages from this node and walks them together from the
//	root while they agree. Both lineages start at this node, so the last
//	agreeing entry is the deepest shared ancestor. If one name is an
//	ancestor of the other (or both names are equal) that professor is
//	returned.
//
// Algorithm:
//
//	Time:  O(n) for the two lineage searches plus O(depth) for the walk.
//
// Outputs:
//   - Professor: The deepest common ancestor.
//   - error: Wraps ErrNotFound if either name is not in this subtree.
func (n *Node) CommonAncestor(name1, name2 string) (Professor, error) {
	lineage1, err := n.FindAcademicLineage(name1)
	if err != nil {
		return Professor{}, err
	}
	lineage2, err := n.FindAcademicLineage(name2)
	if err != nil {
		return Professor{}, err
	}

	var (
		common Professor
		found  bool
	)
	for i := 0; i < len(lineage1) && i < len(lineage2); i++ {
		if !lineage1[i].Equal(lineage2[i]) {
			break
		}
		common, found = lineage1[i], true
	}
	if !found {
		return Professor{}, fmt.Errorf("%w: no common ancestor of %q and %q", ErrNotFound, name1, name2)
	}
	return common, nil
}

// Walk visits every node of this subtree in pre-order, advisees in name
// order. depth is 1 for this node. Walk stops as soon as fn returns false
// and reports whether the walk completed.
func (n *Node) Walk(fn func(node *Node, depth int) bool) bool {
	return n.walk(fn, 1)
}

func (n *Node) walk(fn func(node *Node, depth int) bool, depth int) bool {
	if !fn(n, depth) {
		return false
	}
	for _, advisee := range n.advisees {
		if !advisee.walk(fn, depth+1) {
			return false
		}
	}
	return true
}
