// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tree provides the academic genealogy tree and its queries.
//
// A genealogy is a rooted tree where each node is a professor who earned a
// PhD and each edge is an advisor-advisee relationship. Professor names are
// unique across the whole tree, not just among siblings.
//
// # Ownership Model
//
// Each Node exclusively owns its advisees. There are no parent pointers;
// advisor lookups walk down from the node being queried. The Tree owns the
// root node plus a name index that is updated on every insertion.
//
// # Ordering
//
// Advisees are always stored and iterated in ascending order by professor
// name, never by insertion order. Every traversal-based result (first-hit
// searches, rendering, printing) is therefore deterministic regardless of
// the order rows were loaded in.
//
// # Thread Safety
//
// Tree is NOT safe for concurrent use while it is being built. After Freeze()
// it is read-only and can be queried from multiple goroutines.
//
// # Lifecycle
//
//  1. Create with New(rootProfessor)
//  2. Grow with Insert(advisorName, professor)
//  3. Call Freeze() to finalize
//  4. Query with FindSubtree(), FindAcademicLineage(), CommonAncestor(), etc.
package tree

import "errors"

// Sentinel errors for tree operations.
var (
	// ErrNotFound is returned when a named professor, or a professor matching
	// a search condition, is not present in the searched subtree.
	ErrNotFound = errors.New("professor not found")

	// ErrDuplicateProfessor is returned when inserting a professor whose name
	// already appears somewhere in the tree. This indicates a caller bug; the
	// loader rejects duplicates before inserting.
	ErrDuplicateProfessor = errors.New("duplicate professor name")

	// ErrTreeFrozen is returned when attempting to insert into a frozen tree.
	ErrTreeFrozen = errors.New("tree is frozen and cannot be modified")

	// ErrInvariantViolated is returned by Validate when names repeat or a node
	// is reachable by more than one path.
	ErrInvariantViolated = errors.New("tree invariant violated")
)
