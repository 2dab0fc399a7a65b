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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	insertResultOK              = "ok"
	insertResultDuplicate       = "duplicate"
	insertResultAdvisorNotFound = "advisor_not_found"
	insertResultFrozen          = "frozen"
)

var (
	insertTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genealogy_tree_insert_total",
		Help: "Insert attempts by result",
	}, []string{"result"})

	frozenTreeSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "genealogy_tree_professors",
		Help: "Professors in the most recently frozen tree",
	})

	frozenTreeDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "genealogy_tree_max_depth",
		Help: "Maximum depth of the most recently frozen tree",
	})
)

func recordInsert(result string) {
	insertTotal.WithLabelValues(result).Inc()
}

func recordFrozen(s Stats) {
	frozenTreeSize.Set(float64(s.Size))
	frozenTreeDepth.Set(float64(s.MaxDepth))
}
