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
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AleutianAI/genealogy/services/genealogy/tree"
	"github.com/gin-gonic/gin"
)

// ServiceVersion is reported by the health endpoint.
const ServiceVersion = "1.0.0"

// Handlers contains the HTTP handlers for the genealogy API.
type Handlers struct {
	snapshot *Snapshot
	logger   *slog.Logger
}

// NewHandlers creates handlers serving the trees published to snapshot.
func NewHandlers(snapshot *Snapshot, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{snapshot: snapshot, logger: logger}
}

func (h *Handlers) requestLogger(c *gin.Context, handler string) *slog.Logger {
	return h.logger.With("request_id", requestID(c), "handler", handler)
}

func notFound(c *gin.Context, code string, err error) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: code})
}

// HandleHealth handles GET /v1/genealogy/health.
//
// Response:
//
//	200 OK: HealthResponse
func (h *Handlers) HandleHealth(c *gin.Context) {
	pub := h.snapshot.Current()
	c.JSON(http.StatusOK, HealthResponse{
		Status:     "healthy",
		Version:    ServiceVersion,
		Root:       pub.Tree.Professor().Name,
		Professors: pub.Tree.Size(),
		LoadedAt:   pub.LoadedAt,
		Generation: pub.Version,
	})
}

// HandleStats handles GET /v1/genealogy/stats.
func (h *Handlers) HandleStats(c *gin.Context) {
	t := h.snapshot.Tree()
	c.JSON(http.StatusOK, StatsResponse{Root: t.Professor(), Stats: t.Stats()})
}

// HandleProfessor handles GET /v1/genealogy/professors/:name.
//
// Response:
//
//	200 OK: ProfessorResponse
//	404 Not Found: Professor not in the tree
func (h *Handlers) HandleProfessor(c *gin.Context) {
	name := c.Param("name")
	node, err := h.snapshot.Tree().FindSubtree(name)
	if err != nil {
		h.requestLogger(c, "HandleProfessor").Debug("professor not found", "name", name)
		notFound(c, CodeProfessorNotFound, err)
		return
	}

	advisees := node.Advisees()
	resp := ProfessorResponse{
		Professor: node.Professor(),
		Size:      node.Size(),
		Leaves:    node.NumLeaves(),
		MaxDepth:  node.MaxDepth(),
		Advisees:  make([]tree.Professor, len(advisees)),
	}
	for i, a := range advisees {
		resp.Advisees[i] = a.Professor()
	}
	c.JSON(http.StatusOK, resp)
}

// HandleAdvisor handles GET /v1/genealogy/professors/:name/advisor.
//
// Response:
//
//	200 OK: AdvisorResponse
//	404 Not Found: PROFESSOR_NOT_FOUND, or NO_ADVISOR for the root
func (h *Handlers) HandleAdvisor(c *gin.Context) {
	name := c.Param("name")
	t := h.snapshot.Tree()

	if !t.Contains(name) {
		notFound(c, CodeProfessorNotFound, fmt.Errorf("%w: %q", tree.ErrNotFound, name))
		return
	}
	advisor, err := t.FindAdvisor(name)
	if err != nil {
		notFound(c, CodeNoAdvisor, err)
		return
	}
	c.JSON(http.StatusOK, AdvisorResponse{Professor: name, Advisor: advisor})
}

// HandleLineage handles GET /v1/genealogy/professors/:name/lineage.
func (h *Handlers) HandleLineage(c *gin.Context) {
	name := c.Param("name")
	lineage, err := h.snapshot.Tree().FindAcademicLineage(name)
	if err != nil {
		notFound(c, CodeProfessorNotFound, err)
		return
	}
	c.JSON(http.StatusOK, LineageResponse{Professor: name, Lineage: lineage})
}

// HandleSubtree handles GET /v1/genealogy/professors/:name/subtree.
func (h *Handlers) HandleSubtree(c *gin.Context) {
	node, err := h.snapshot.Tree().FindSubtree(c.Param("name"))
	if err != nil {
		notFound(c, CodeProfessorNotFound, err)
		return
	}
	c.JSON(http.StatusOK, SubtreeResponse{
		Root:     node.Professor(),
		Rendered: node.String(),
		Lines:    node.ProfessorLines(),
	})
}

// HandleAncestor handles GET /v1/genealogy/ancestor?a=&b=.
//
// Response:
//
//	200 OK: AncestorResponse
//	400 Bad Request: a or b missing
//	404 Not Found: Either professor not in the tree
func (h *Handlers) HandleAncestor(c *gin.Context) {
	a, b := c.Query("a"), c.Query("b")
	if a == "" || b == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "query parameters a and b are required",
			Code:  CodeMissingParameter,
		})
		return
	}

	ancestor, err := h.snapshot.Tree().CommonAncestor(a, b)
	if err != nil {
		h.requestLogger(c, "HandleAncestor").Debug("no common ancestor", "a", a, "b", b)
		notFound(c, CodeProfessorNotFound, err)
		return
	}
	c.JSON(http.StatusOK, AncestorResponse{A: a, B: b, Ancestor: ancestor})
}

// HandleMentor handles GET /v1/genealogy/mentor?min=N.
//
// Response:
//
//	200 OK: MentorResponse
//	400 Bad Request: min missing or not a non-negative integer
//	404 Not Found: No professor has that many advisees
func (h *Handlers) HandleMentor(c *gin.Context) {
	raw := c.Query("min")
	if raw == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "query parameter min is required",
			Code:  CodeMissingParameter,
		})
		return
	}
	minAdvisees, err := strconv.Atoi(raw)
	if err != nil || minAdvisees < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "min must be a non-negative integer",
			Code:  CodeInvalidParameter,
		})
		return
	}

	mentor, err := h.snapshot.Tree().FindProlificMentor(minAdvisees)
	if err != nil {
		notFound(c, CodeMentorNotFound, err)
		return
	}
	c.JSON(http.StatusOK, MentorResponse{MinAdvisees: minAdvisees, Mentor: mentor})
}
