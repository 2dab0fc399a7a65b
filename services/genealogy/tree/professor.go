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
	"strings"
)

// Professor is a person who earned a PhD.
//
// Professor is an immutable value. Equality and ordering consider the name
// only; two professors with the same name are the same professor.
type Professor struct {
	Name    string `json:"name"`
	PhDYear int    `json:"phd_year"`
}

// NewProfessor creates a Professor.
func NewProfessor(name string, phdYear int) Professor {
	return Professor{Name: name, PhDYear: phdYear}
}

// String returns the professor's name.
func (p Professor) String() string {
	return p.Name
}

// Label returns "NAME (YEAR)".
func (p Professor) Label() string {
	return fmt.Sprintf("%s (%d)", p.Name, p.PhDYear)
}

// Compare orders professors by name.
func (p Professor) Compare(other Professor) int {
	return strings.Compare(p.Name, other.Name)
}

// Equal reports whether both professors have the same name.
func (p Professor) Equal(other Professor) bool {
	return p.Name == other.Name
}
