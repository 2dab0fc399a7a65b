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
	"testing"

	"github.com/AleutianAI/genealogy/services/genealogy/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Replace(t *testing.T) {
	first := tree.New(tree.NewProfessor("root", 2000))
	snapshot := NewSnapshot(first)

	pub := snapshot.Current()
	assert.Same(t, first, pub.Tree)
	assert.Equal(t, uint64(1), pub.Version)
	assert.True(t, first.Frozen())

	second := tree.New(tree.NewProfessor("other", 2001))
	snapshot.Replace(second)
	assert.Same(t, second, snapshot.Tree())
	assert.Equal(t, uint64(2), snapshot.Version())
	assert.False(t, snapshot.LoadedAt().Before(pub.LoadedAt))

	// The earlier publication is unchanged.
	assert.Same(t, first, pub.Tree)
	assert.Equal(t, uint64(1), pub.Version)
}

func TestSnapshot_ConcurrentReplace(t *testing.T) {
	snapshot := NewSnapshot(tree.New(tree.NewProfessor("root", 2000)))

	const writers = 32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snapshot.Replace(tree.New(tree.NewProfessor("root", 2000)))
		}()
	}

	// Readers only ever see increasing versions.
	done := make(chan struct{})
	var readerErr error
	go func() {
		defer close(done)
		var last uint64
		for last < writers+1 {
			v := snapshot.Current().Version
			if v < last {
				readerErr = assert.AnError
				return
			}
			last = v
		}
	}()

	wg.Wait()
	<-done
	require.NoError(t, readerErr)
	assert.Equal(t, uint64(writers+1), snapshot.Version())
}
