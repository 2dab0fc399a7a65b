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
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/AleutianAI/genealogy/services/genealogy/config"
	"github.com/AleutianAI/genealogy/services/genealogy/tree"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Set Gin to test mode to reduce noise
	gin.SetMode(gin.TestMode)
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newSampleTree(t *testing.T) *tree.Tree {
	t.Helper()
	tr := tree.New(tree.NewProfessor("Maya Leong", 2005))
	rows := []struct {
		advisor string
		name    string
		year    int
	}{
		{"Maya Leong", "Matthew Hui", 2005},
		{"Matthew Hui", "Amy Huang", 2023},
		{"Amy Huang", "David Gries", 1966},
		{"Maya Leong", "Curran Muhlberger", 2014},
		{"Curran Muhlberger", "Tomer Shamir", 2023},
		{"Curran Muhlberger", "Andrew Myers", 1999},
	}
	for _, r := range rows {
		require.NoError(t, tr.Insert(r.advisor, tree.NewProfessor(r.name, r.year)))
	}
	return tr
}

func testServerConfig() config.ServerConfig {
	cfg := config.Default().Server
	cfg.RateLimit = 0
	return cfg
}

func setupTestRouter(t *testing.T) (*gin.Engine, *Snapshot) {
	t.Helper()
	snapshot := NewSnapshot(newSampleTree(t))
	return NewRouter(snapshot, testServerConfig(), "genealogy-test", discardLogger), snapshot
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func professorPath(name, suffix string) string {
	return "/v1/genealogy/professors/" + url.PathEscape(name) + suffix
}

func TestHandlers_HandleHealth(t *testing.T) {
	router, snapshot := setupTestRouter(t)

	w := get(t, router, "/v1/genealogy/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, ServiceVersion, resp.Version)
	assert.Equal(t, "Maya Leong", resp.Root)
	assert.Equal(t, 7, resp.Professors)
	assert.Equal(t, uint64(1), resp.Generation)
	assert.True(t, snapshot.Tree().Frozen())
}

func TestHandlers_RequestIDPassthrough(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/genealogy/health", nil)
	req.Header.Set(requestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))
}

func TestHandlers_HandleStats(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := get(t, router, "/v1/genealogy/stats")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[StatsResponse](t, w)
	assert.Equal(t, "Maya Leong", resp.Root.Name)
	assert.Equal(t, tree.Stats{Size: 7, Leaves: 3, MaxDepth: 4, RootAdvisees: 2}, resp.Stats)
}

func TestHandlers_HandleProfessor(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := get(t, router, professorPath("Matthew Hui", ""))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[ProfessorResponse](t, w)
	assert.Equal(t, tree.NewProfessor("Matthew Hui", 2005), resp.Professor)
	assert.Equal(t, 3, resp.Size)
	assert.Equal(t, 1, resp.Leaves)
	assert.Equal(t, 3, resp.MaxDepth)
	assert.Equal(t, []tree.Professor{tree.NewProfessor("Amy Huang", 2023)}, resp.Advisees)

	w = get(t, router, professorPath("Andrew Myers", ""))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[ProfessorResponse](t, w).Advisees)
}

func TestHandlers_HandleAdvisor(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := get(t, router, professorPath("David Gries", "/advisor"))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[AdvisorResponse](t, w)
	assert.Equal(t, "David Gries", resp.Professor)
	assert.Equal(t, tree.NewProfessor("Amy Huang", 2023), resp.Advisor)
}

func TestHandlers_HandleLineage(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := get(t, router, professorPath("David Gries", "/lineage"))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[LineageResponse](t, w)
	assert.Equal(t, []tree.Professor{
		tree.NewProfessor("Maya Leong", 2005),
		tree.NewProfessor("Matthew Hui", 2005),
		tree.NewProfessor("Amy Huang", 2023),
		tree.NewProfessor("David Gries", 1966),
	}, resp.Lineage)
}

func TestHandlers_HandleSubtree(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := get(t, router, professorPath("Curran Muhlberger", "/subtree"))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[SubtreeResponse](t, w)
	assert.Equal(t, "Curran Muhlberger[Andrew Myers, Tomer Shamir]", resp.Rendered)
	assert.Equal(t, []string{
		"Curran Muhlberger - 2014",
		"Andrew Myers - 1999",
		"Tomer Shamir - 2023",
	}, resp.Lines)
}

func TestHandlers_HandleAncestor(t *testing.T) {
	router, _ := setupTestRouter(t)

	q := url.Values{"a": {"Andrew Myers"}, "b": {"Tomer Shamir"}}
	w := get(t, router, "/v1/genealogy/ancestor?"+q.Encode())
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[AncestorResponse](t, w)
	assert.Equal(t, "Curran Muhlberger", resp.Ancestor.Name)

	q = url.Values{"a": {"Andrew Myers"}, "b": {"David Gries"}}
	w = get(t, router, "/v1/genealogy/ancestor?"+q.Encode())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Maya Leong", decode[AncestorResponse](t, w).Ancestor.Name)
}

func TestHandlers_HandleMentor(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := get(t, router, "/v1/genealogy/mentor?min=2")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[MentorResponse](t, w)
	assert.Equal(t, 2, resp.MinAdvisees)
	assert.Equal(t, "Maya Leong", resp.Mentor.Name)
}

func TestHandlers_Errors(t *testing.T) {
	router, _ := setupTestRouter(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
	}{
		{"unknown professor", professorPath("Nobody", ""), http.StatusNotFound, CodeProfessorNotFound},
		{"advisor of unknown professor", professorPath("Nobody", "/advisor"), http.StatusNotFound, CodeProfessorNotFound},
		{"advisor of root", professorPath("Maya Leong", "/advisor"), http.StatusNotFound, CodeNoAdvisor},
		{"lineage of unknown professor", professorPath("Nobody", "/lineage"), http.StatusNotFound, CodeProfessorNotFound},
		{"subtree of unknown professor", professorPath("Nobody", "/subtree"), http.StatusNotFound, CodeProfessorNotFound},
		{"ancestor missing b", "/v1/genealogy/ancestor?a=Amy+Huang", http.StatusBadRequest, CodeMissingParameter},
		{"ancestor unknown professor", "/v1/genealogy/ancestor?a=Amy+Huang&b=Nobody", http.StatusNotFound, CodeProfessorNotFound},
		{"mentor missing min", "/v1/genealogy/mentor", http.StatusBadRequest, CodeMissingParameter},
		{"mentor non-numeric min", "/v1/genealogy/mentor?min=lots", http.StatusBadRequest, CodeInvalidParameter},
		{"mentor negative min", "/v1/genealogy/mentor?min=-2", http.StatusBadRequest, CodeInvalidParameter},
		{"mentor none qualifies", "/v1/genealogy/mentor?min=5", http.StatusNotFound, CodeMentorNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, router, tt.target)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			resp := decode[ErrorResponse](t, w)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandlers_ServeReplacedTree(t *testing.T) {
	router, snapshot := setupTestRouter(t)

	next := tree.New(tree.NewProfessor("David Gries", 1966))
	require.NoError(t, next.Insert("David Gries", tree.NewProfessor("Andrew Myers", 1999)))
	snapshot.Replace(next)

	w := get(t, router, "/v1/genealogy/health")
	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "David Gries", resp.Root)
	assert.Equal(t, 2, resp.Professors)
	assert.Equal(t, uint64(2), resp.Generation)

	w = get(t, router, professorPath("Maya Leong", ""))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testServerConfig()
	cfg.RateLimit = 0.001
	cfg.Burst = 1
	router := NewRouter(NewSnapshot(newSampleTree(t)), cfg, "genealogy-test", discardLogger)

	w := get(t, router, "/v1/genealogy/health")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(t, router, "/v1/genealogy/health")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, CodeRateLimited, decode[ErrorResponse](t, w).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := get(t, router, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "genealogy_tree_insert_total")
}
