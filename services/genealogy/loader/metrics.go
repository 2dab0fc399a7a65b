// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package loader

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("genealogy.loader")

var (
	loadLatency metric.Float64Histogram
	loadTotal   metric.Int64Counter
	loadRows    metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		loadLatency, err = meter.Float64Histogram(
			"genealogy_load_duration_seconds",
			metric.WithDescription("Duration of tree load operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		loadTotal, err = meter.Int64Counter(
			"genealogy_load_total",
			metric.WithDescription("Total number of tree load operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		loadRows, err = meter.Int64Histogram(
			"genealogy_load_rows",
			metric.WithDescription("Data rows accepted per load"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordLoad(ctx context.Context, duration time.Duration, rows int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	loadLatency.Record(ctx, duration.Seconds(), attrs)
	loadTotal.Add(ctx, 1, attrs)
	if success {
		loadRows.Record(ctx, int64(rows))
	}
}
