// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package interpreter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// labelUnknown is the command label for unrecognised keywords.
const labelUnknown = "unknown"

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genealogy_commands_total",
		Help: "Interpreter commands by command and outcome",
	}, []string{"command", "outcome"})

	commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "genealogy_command_duration_seconds",
		Help:    "Interpreter command latency",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"command"})
)

func recordCommand(command string, result outcome, duration time.Duration) {
	commandsTotal.WithLabelValues(command, string(result)).Inc()
	commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}
