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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSampleTree builds:
//
//	Maya Leong
//	├── Curran Muhlberger
//	│   ├── Andrew Myers
//	│   └── Tomer Shamir
//	└── Matthew Hui
//	    └── Amy Huang
//	        └── David Gries
func buildSampleTree(t *testing.T) *Tree {
	t.Helper()
	tr := New(NewProfessor("Maya Leong", 2005), WithInvariantChecks(true))
	require.NoError(t, tr.Insert("Maya Leong", NewProfessor("Matthew Hui", 2005)))
	require.NoError(t, tr.Insert("Matthew Hui", NewProfessor("Amy Huang", 2023)))
	require.NoError(t, tr.Insert("Amy Huang", NewProfessor("David Gries", 1966)))
	require.NoError(t, tr.Insert("Maya Leong", NewProfessor("Curran Muhlberger", 2014)))
	require.NoError(t, tr.Insert("Curran Muhlberger", NewProfessor("Tomer Shamir", 2023)))
	require.NoError(t, tr.Insert("Curran Muhlberger", NewProfessor("Andrew Myers", 1999)))
	return tr
}

var sampleNames = []string{
	"Maya Leong", "Curran Muhlberger", "Andrew Myers", "Tomer Shamir",
	"Matthew Hui", "Amy Huang", "David Gries",
}

func names(ps []Professor) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestNew_SingleRoot(t *testing.T) {
	tr := New(NewProfessor("Root", 2000), WithInvariantChecks(true))

	assert.Equal(t, "Root", tr.Professor().Name)
	assert.Equal(t, 2000, tr.Professor().PhDYear)
	assert.Equal(t, 0, tr.NumAdvisees())
	assert.Equal(t, 1, tr.Size())
	assert.Equal(t, 1, tr.NumLeaves())
	assert.Equal(t, 1, tr.MaxDepth())
	assert.Same(t, tr.root, tr.Root())
	assert.False(t, tr.Frozen())
	assert.NoError(t, tr.Validate())
}

func TestTree_Counts(t *testing.T) {
	tr := buildSampleTree(t)

	assert.Equal(t, 2, tr.NumAdvisees())
	assert.Equal(t, 7, tr.Size())
	assert.Equal(t, 3, tr.NumLeaves())
	assert.Equal(t, 4, tr.MaxDepth())

	curran, err := tr.FindSubtree("Curran Muhlberger")
	require.NoError(t, err)
	assert.Equal(t, 3, curran.Size())
	assert.Equal(t, 2, curran.NumLeaves())
	assert.Equal(t, 2, curran.MaxDepth())

	assert.Equal(t, Stats{Size: 7, Leaves: 3, MaxDepth: 4, RootAdvisees: 2}, tr.Stats())
}

func TestTree_QueriesMatchRoot(t *testing.T) {
	tr := buildSampleTree(t)
	root := tr.Root()

	assert.Equal(t, root.Professor(), tr.Professor())
	assert.Equal(t, root.Advisees(), tr.Advisees())
	assert.Equal(t, root.Size(), tr.Size())
	assert.Equal(t, root.NumLeaves(), tr.NumLeaves())
	assert.Equal(t, root.MaxDepth(), tr.MaxDepth())
	assert.Equal(t, root.String(), tr.String())
	assert.Equal(t, root.ProfessorLines(), tr.ProfessorLines())

	wantLineage, err := root.FindAcademicLineage("Amy Huang")
	require.NoError(t, err)
	lineage, err := tr.FindAcademicLineage("Amy Huang")
	require.NoError(t, err)
	assert.Equal(t, wantLineage, lineage)

	// Inserts through the tree are visible from the root and the index.
	require.NoError(t, tr.Insert("Amy Huang", NewProfessor("New Student", 2030)))
	assert.True(t, root.Contains("New Student"))
	assert.True(t, tr.Contains("New Student"))
	assert.Equal(t, root.Size(), tr.Size())
}

func TestTree_FindSubtree(t *testing.T) {
	tr := buildSampleTree(t)

	t.Run("every name resolves", func(t *testing.T) {
		for _, name := range sampleNames {
			node, err := tr.FindSubtree(name)
			require.NoError(t, err, name)
			assert.Equal(t, name, node.Professor().Name)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := tr.FindSubtree("Nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("subtree search is restricted to descendants", func(t *testing.T) {
		matthew, err := tr.FindSubtree("Matthew Hui")
		require.NoError(t, err)

		_, err = matthew.FindSubtree("Andrew Myers")
		assert.ErrorIs(t, err, ErrNotFound)

		david, err := matthew.FindSubtree("David Gries")
		require.NoError(t, err)
		assert.Equal(t, 1966, david.Professor().PhDYear)
	})

	t.Run("index and walk agree", func(t *testing.T) {
		for _, name := range append(sampleNames, "Nobody", "") {
			indexed, indexErr := tr.FindSubtree(name)
			walked, walkErr := tr.root.FindSubtree(name)
			require.Equal(t, indexErr == nil, walkErr == nil, name)
			if indexErr == nil {
				assert.Same(t, indexed, walked, name)
			}
		}
	})
}

func TestTree_ContainsMatchesFindSubtree(t *testing.T) {
	tr := buildSampleTree(t)
	amy, err := tr.FindSubtree("Amy Huang")
	require.NoError(t, err)

	for _, name := range append(sampleNames, "Nobody", "maya leong") {
		_, err := tr.FindSubtree(name)
		assert.Equal(t, err == nil, tr.Contains(name), name)

		_, err = amy.FindSubtree(name)
		assert.Equal(t, err == nil, amy.Contains(name), name)
	}
}

func TestTree_Insert(t *testing.T) {
	t.Run("size grows by one", func(t *testing.T) {
		tr := buildSampleTree(t)
		before := tr.Size()

		require.NoError(t, tr.Insert("Andrew Myers", NewProfessor("New Student", 2024)))

		assert.Equal(t, before+1, tr.Size())
		assert.True(t, tr.Contains("New Student"))
		advisor, err := tr.FindAdvisor("New Student")
		require.NoError(t, err)
		assert.Equal(t, "Andrew Myers", advisor.Name)
	})

	t.Run("duplicate name anywhere is rejected", func(t *testing.T) {
		tr := buildSampleTree(t)
		err := tr.Insert("Maya Leong", NewProfessor("David Gries", 1970))
		assert.ErrorIs(t, err, ErrDuplicateProfessor)
		assert.Equal(t, 7, tr.Size())

		err = tr.Insert("Amy Huang", NewProfessor("Maya Leong", 1970))
		assert.ErrorIs(t, err, ErrDuplicateProfessor)
	})

	t.Run("unknown advisor", func(t *testing.T) {
		tr := buildSampleTree(t)
		err := tr.Insert("Nobody", NewProfessor("Orphan", 2020))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, tr.Contains("Orphan"))
	})

	t.Run("frozen tree rejects inserts", func(t *testing.T) {
		tr := buildSampleTree(t)
		tr.Freeze()
		tr.Freeze()
		assert.True(t, tr.Frozen())

		err := tr.Insert("Maya Leong", NewProfessor("Late", 2024))
		assert.ErrorIs(t, err, ErrTreeFrozen)
		assert.False(t, tr.Contains("Late"))
	})
}

func TestTree_SiblingOrderIndependentOfInsertOrder(t *testing.T) {
	orders := [][]string{
		{"Carol", "Alice", "Bob", "Dave"},
		{"Dave", "Carol", "Bob", "Alice"},
		{"Alice", "Bob", "Carol", "Dave"},
		{"Bob", "Dave", "Alice", "Carol"},
	}
	want := "Root[Alice, Bob, Carol, Dave]"

	for _, order := range orders {
		t.Run(strings.Join(order, ","), func(t *testing.T) {
			tr := New(NewProfessor("Root", 1990), WithInvariantChecks(true))
			for _, name := range order {
				require.NoError(t, tr.Insert("Root", NewProfessor(name, 2000)))
			}
			assert.Equal(t, want, tr.String())

			var buf bytes.Buffer
			require.NoError(t, tr.WriteProfessors(&buf))
			assert.Equal(t, "Root - 1990\nAlice - 2000\nBob - 2000\nCarol - 2000\nDave - 2000\n", buf.String())
		})
	}
}

func TestNode_FindProlificMentor(t *testing.T) {
	tr := buildSampleTree(t)

	tests := []struct {
		name    string
		from    string
		min     int
		want    string
		wantErr bool
	}{
		{name: "root qualifies first", from: "Maya Leong", min: 2, want: "Maya Leong"},
		{name: "zero matches root", from: "Maya Leong", min: 0, want: "Maya Leong"},
		{name: "nobody has three", from: "Maya Leong", min: 3, wantErr: true},
		{name: "pre-order within subtree", from: "Matthew Hui", min: 1, want: "Matthew Hui"},
		{name: "single advisee qualifies for one", from: "Amy Huang", min: 1, want: "Amy Huang"},
		{name: "leaf subtree", from: "David Gries", min: 1, wantErr: true},
		{name: "curran has two", from: "Curran Muhlberger", min: 2, want: "Curran Muhlberger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := tr.FindSubtree(tt.from)
			require.NoError(t, err)

			got, err := node.FindProlificMentor(tt.min)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}

	t.Run("first hit in name order wins", func(t *testing.T) {
		tr := New(NewProfessor("Root", 1950), WithInvariantChecks(true))
		require.NoError(t, tr.Insert("Root", NewProfessor("Zed", 1960)))
		require.NoError(t, tr.Insert("Root", NewProfessor("Abe", 1960)))
		require.NoError(t, tr.Insert("Zed", NewProfessor("Z1", 1970)))
		require.NoError(t, tr.Insert("Zed", NewProfessor("Z2", 1970)))
		require.NoError(t, tr.Insert("Zed", NewProfessor("Z3", 1970)))
		require.NoError(t, tr.Insert("Abe", NewProfessor("A1", 1970)))
		require.NoError(t, tr.Insert("Abe", NewProfessor("A2", 1970)))

		got, err := tr.FindProlificMentor(2)
		require.NoError(t, err)
		assert.Equal(t, "Root", got.Name)

		got, err = tr.FindProlificMentor(3)
		require.NoError(t, err)
		assert.Equal(t, "Zed", got.Name)
	})
}

func TestNode_FindAdvisor(t *testing.T) {
	tr := buildSampleTree(t)

	tests := []struct {
		advisee string
		want    string
	}{
		{"David Gries", "Amy Huang"},
		{"Amy Huang", "Matthew Hui"},
		{"Matthew Hui", "Maya Leong"},
		{"Curran Muhlberger", "Maya Leong"},
		{"Tomer Shamir", "Curran Muhlberger"},
	}
	for _, tt := range tests {
		t.Run(tt.advisee, func(t *testing.T) {
			got, err := tr.FindAdvisor(tt.advisee)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}

	t.Run("root has no advisor", func(t *testing.T) {
		_, err := tr.FindAdvisor("Maya Leong")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("subtree root has no advisor within the subtree", func(t *testing.T) {
		amy, err := tr.FindSubtree("Amy Huang")
		require.NoError(t, err)
		_, err = amy.FindAdvisor("Amy Huang")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := tr.FindAdvisor("Nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestNode_FindAcademicLineage(t *testing.T) {
	tr := buildSampleTree(t)

	t.Run("root lineage is the root alone", func(t *testing.T) {
		got, err := tr.FindAcademicLineage("Maya Leong")
		require.NoError(t, err)
		assert.Equal(t, []string{"Maya Leong"}, names(got))
	})

	t.Run("deep lineage", func(t *testing.T) {
		got, err := tr.FindAcademicLineage("David Gries")
		require.NoError(t, err)
		assert.Equal(t, []string{"Maya Leong", "Matthew Hui", "Amy Huang", "David Gries"}, names(got))
		assert.Equal(t, 1966, got[3].PhDYear)
	})

	t.Run("every lineage ends at target and follows advisor links", func(t *testing.T) {
		for _, name := range sampleNames {
			lineage, err := tr.FindAcademicLineage(name)
			require.NoError(t, err, name)
			require.NotEmpty(t, lineage)
			assert.Equal(t, name, lineage[len(lineage)-1].Name)
			assert.Equal(t, "Maya Leong", lineage[0].Name)
			for i := 1; i < len(lineage); i++ {
				advisor, err := tr.FindAdvisor(lineage[i].Name)
				require.NoError(t, err)
				assert.True(t, advisor.Equal(lineage[i-1]), "%s should advise %s", lineage[i-1], lineage[i])
			}
		}
	})

	t.Run("relative to subtree", func(t *testing.T) {
		matthew, err := tr.FindSubtree("Matthew Hui")
		require.NoError(t, err)
		got, err := matthew.FindAcademicLineage("David Gries")
		require.NoError(t, err)
		assert.Equal(t, []string{"Matthew Hui", "Amy Huang", "David Gries"}, names(got))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := tr.FindAcademicLineage("Nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("returned slice is independent", func(t *testing.T) {
		first, err := tr.FindAcademicLineage("Andrew Myers")
		require.NoError(t, err)
		first[0] = NewProfessor("Mutated", 0)
		second, err := tr.FindAcademicLineage("Andrew Myers")
		require.NoError(t, err)
		assert.Equal(t, "Maya Leong", second[0].Name)
	})
}

func TestNode_CommonAncestor(t *testing.T) {
	tr := buildSampleTree(t)

	tests := []struct {
		a, b string
		want string
	}{
		{"Andrew Myers", "Tomer Shamir", "Curran Muhlberger"},
		{"Tomer Shamir", "Andrew Myers", "Curran Muhlberger"},
		{"Andrew Myers", "David Gries", "Maya Leong"},
		{"Matthew Hui", "David Gries", "Matthew Hui"},
		{"David Gries", "Matthew Hui", "Matthew Hui"},
		{"David Gries", "David Gries", "David Gries"},
		{"Maya Leong", "Tomer Shamir", "Maya Leong"},
		{"Amy Huang", "Curran Muhlberger", "Maya Leong"},
	}
	for _, tt := range tests {
		t.Run(tt.a+"+"+tt.b, func(t *testing.T) {
			got, err := tr.CommonAncestor(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}

	t.Run("ancestor of itself", func(t *testing.T) {
		for _, name := range sampleNames {
			got, err := tr.CommonAncestor(name, name)
			require.NoError(t, err)
			assert.Equal(t, name, got.Name)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := tr.CommonAncestor("Andrew Myers", "Nobody")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = tr.CommonAncestor("Nobody", "Andrew Myers")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("name outside subtree", func(t *testing.T) {
		curran, err := tr.FindSubtree("Curran Muhlberger")
		require.NoError(t, err)
		_, err = curran.CommonAncestor("Andrew Myers", "David Gries")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestNode_Walk(t *testing.T) {
	tr := buildSampleTree(t)

	t.Run("pre-order with depth", func(t *testing.T) {
		var visited []string
		var depths []int
		completed := tr.Walk(func(n *Node, depth int) bool {
			visited = append(visited, n.Professor().Name)
			depths = append(depths, depth)
			return true
		})
		assert.True(t, completed)
		assert.Equal(t, sampleNames, visited)
		assert.Equal(t, []int{1, 2, 3, 3, 2, 3, 4}, depths)
	})

	t.Run("stops early", func(t *testing.T) {
		count := 0
		completed := tr.Walk(func(n *Node, _ int) bool {
			count++
			return n.Professor().Name != "Tomer Shamir"
		})
		assert.False(t, completed)
		assert.Equal(t, 4, count)
	})
}

func TestNode_AdviseesIsCopy(t *testing.T) {
	tr := buildSampleTree(t)
	advisees := tr.Advisees()
	require.Len(t, advisees, 2)
	assert.Equal(t, "Curran Muhlberger", advisees[0].Professor().Name)

	advisees[0], advisees[1] = advisees[1], advisees[0]
	assert.Equal(t, "Curran Muhlberger", tr.Advisees()[0].Professor().Name)
}

func TestValidate_DetectsCorruption(t *testing.T) {
	t.Run("shared node", func(t *testing.T) {
		tr := buildSampleTree(t)
		amy, err := tr.FindSubtree("Amy Huang")
		require.NoError(t, err)
		andrew, err := tr.FindSubtree("Andrew Myers")
		require.NoError(t, err)
		andrew.advisees = append(andrew.advisees, amy)

		err = tr.Validate()
		assert.ErrorIs(t, err, ErrInvariantViolated)
		assert.Contains(t, err.Error(), "Amy Huang")
	})

	t.Run("duplicate name in distinct nodes", func(t *testing.T) {
		tr := buildSampleTree(t)
		andrew, err := tr.FindSubtree("Andrew Myers")
		require.NoError(t, err)
		andrew.advisees = append(andrew.advisees, newNode(NewProfessor("David Gries", 1900)))

		err = tr.Validate()
		assert.ErrorIs(t, err, ErrInvariantViolated)
	})

	t.Run("unsorted advisees", func(t *testing.T) {
		tr := buildSampleTree(t)
		tr.root.advisees[0], tr.root.advisees[1] = tr.root.advisees[1], tr.root.advisees[0]

		err := tr.Validate()
		assert.ErrorIs(t, err, ErrInvariantViolated)
		assert.Contains(t, err.Error(), "out of order")
	})

	t.Run("index out of sync", func(t *testing.T) {
		tr := buildSampleTree(t)
		tr.index["Ghost"] = newNode(NewProfessor("Ghost", 2000))

		err := tr.Validate()
		assert.ErrorIs(t, err, ErrInvariantViolated)
	})

	t.Run("insert with checks panics on a corrupt tree", func(t *testing.T) {
		tr := buildSampleTree(t)
		tr.root.advisees[0], tr.root.advisees[1] = tr.root.advisees[1], tr.root.advisees[0]

		assert.Panics(t, func() {
			_ = tr.Insert("David Gries", NewProfessor("Trigger", 2024))
		})
	})
}

func TestProfessor(t *testing.T) {
	a := NewProfessor("Ada", 1840)
	b := NewProfessor("Ada", 1999)
	c := NewProfessor("Bob", 1840)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, 0, a.Compare(b))
	assert.Negative(t, a.Compare(c))
	assert.Equal(t, "Ada", a.String())
	assert.Equal(t, "Ada (1840)", a.Label())
}

func TestErrorsWrapSentinels(t *testing.T) {
	tr := buildSampleTree(t)
	_, err := tr.FindSubtree("Nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), `"Nobody"`)
}
