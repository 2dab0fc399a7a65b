// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/AleutianAI/genealogy/services/genealogy/tree"
)

// Snapshot holds the tree currently being served.
//
// Description:
//
//	Readers take the current publication with Current() and query its tree
//	without locks. Replace publishes a new tree; requests already holding
//	the old publication finish against it. Published trees are always
//	frozen, so no tree is mutated once a reader can see it.
//
// Thread Safety: Safe for concurrent use. Replace calls are serialized, so
// versions are published in increasing order.
type Snapshot struct {
	mu      sync.Mutex
	current atomic.Pointer[Publication]
}

// Publication is one published tree. It is never modified after Replace
// stores it.
type Publication struct {
	Tree     *tree.Tree
	LoadedAt time.Time

	// Version counts publications, starting at 1.
	Version uint64
}

// NewSnapshot creates a snapshot serving t.
func NewSnapshot(t *tree.Tree) *Snapshot {
	s := &Snapshot{}
	s.Replace(t)
	return s
}

// Replace publishes t, freezing it first if needed. t must not be nil.
func (s *Snapshot) Replace(t *tree.Tree) {
	t.Freeze()

	s.mu.Lock()
	defer s.mu.Unlock()
	version := uint64(1)
	if prev := s.current.Load(); prev != nil {
		version = prev.Version + 1
	}
	s.current.Store(&Publication{
		Tree:     t,
		LoadedAt: time.Now(),
		Version:  version,
	})
}

// Current returns the latest publication. Use it when a request needs more
// than one field, so they all come from the same tree.
func (s *Snapshot) Current() *Publication {
	return s.current.Load()
}

// Tree returns the tree currently being served.
func (s *Snapshot) Tree() *tree.Tree {
	return s.current.Load().Tree
}

// LoadedAt returns when the current tree was published.
func (s *Snapshot) LoadedAt() time.Time {
	return s.current.Load().LoadedAt
}

// Version returns the version of the current publication.
func (s *Snapshot) Version() uint64 {
	return s.current.Load().Version
}
