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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all genealogy routes with the router.
//
// Description:
//
//	Registers all /v1/genealogy/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	GET /v1/genealogy/health - Service health and current tree summary
//	GET /v1/genealogy/stats - Size, leaves, depth of the whole tree
//	GET /v1/genealogy/professors/:name - One professor and their genealogy
//	GET /v1/genealogy/professors/:name/advisor - Direct advisor
//	GET /v1/genealogy/professors/:name/lineage - Root-first lineage
//	GET /v1/genealogy/professors/:name/subtree - Rendered subtree
//	GET /v1/genealogy/ancestor?a=&b= - Deepest common ancestor
//	GET /v1/genealogy/mentor?min=N - First professor with N advisees
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	g := rg.Group("/genealogy")

	g.GET("/health", handlers.HandleHealth)
	g.GET("/stats", handlers.HandleStats)

	professors := g.Group("/professors/:name")
	professors.GET("", handlers.HandleProfessor)
	professors.GET("/advisor", handlers.HandleAdvisor)
	professors.GET("/lineage", handlers.HandleLineage)
	professors.GET("/subtree", handlers.HandleSubtree)

	g.GET("/ancestor", handlers.HandleAncestor)
	g.GET("/mentor", handlers.HandleMentor)
}
