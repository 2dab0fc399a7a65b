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
	"time"

	"github.com/AleutianAI/genealogy/services/genealogy/tree"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeProfessorNotFound = "PROFESSOR_NOT_FOUND"
	CodeNoAdvisor         = "NO_ADVISOR"
	CodeMentorNotFound    = "MENTOR_NOT_FOUND"
	CodeMissingParameter  = "MISSING_PARAMETER"
	CodeInvalidParameter  = "INVALID_PARAMETER"
	CodeRateLimited       = "RATE_LIMITED"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a stable machine-readable error code.
	Code string `json:"code,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status     string    `json:"status"`
	Version    string    `json:"version"`
	Root       string    `json:"root"`
	Professors int       `json:"professors"`
	LoadedAt   time.Time `json:"loaded_at"`
	Generation uint64    `json:"generation"`
}

// StatsResponse is returned by GET /stats.
type StatsResponse struct {
	Root tree.Professor `json:"root"`
	tree.Stats
}

// ProfessorResponse describes one professor and their genealogy.
type ProfessorResponse struct {
	Professor tree.Professor   `json:"professor"`
	Size      int              `json:"size"`
	Leaves    int              `json:"leaves"`
	MaxDepth  int              `json:"max_depth"`
	Advisees  []tree.Professor `json:"advisees"`
}

// AdvisorResponse is returned by GET /professors/:name/advisor.
type AdvisorResponse struct {
	Professor string         `json:"professor"`
	Advisor   tree.Professor `json:"advisor"`
}

// LineageResponse is returned by GET /professors/:name/lineage.
type LineageResponse struct {
	Professor string           `json:"professor"`
	Lineage   []tree.Professor `json:"lineage"`
}

// SubtreeResponse is returned by GET /professors/:name/subtree.
type SubtreeResponse struct {
	Root     tree.Professor `json:"root"`
	Rendered string         `json:"rendered"`
	Lines    []string       `json:"lines"`
}

// AncestorResponse is returned by GET /ancestor.
type AncestorResponse struct {
	A        string         `json:"a"`
	B        string         `json:"b"`
	Ancestor tree.Professor `json:"ancestor"`
}

// MentorResponse is returned by GET /mentor.
type MentorResponse struct {
	MinAdvisees int            `json:"min_advisees"`
	Mentor      tree.Professor `json:"mentor"`
}
