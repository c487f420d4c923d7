// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package locator

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for locator extraction.
var (
	tracer = otel.Tracer("beacon.locator")
	meter  = otel.Meter("beacon.locator")
)

// Metrics for extraction operations.
var (
	extractLatency   metric.Float64Histogram
	extractTotal     metric.Int64Counter
	recordsExtracted metric.Int64Histogram
	recordsDropped   metric.Int64Counter
	extractErrors    metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		extractLatency, err = meter.Float64Histogram(
			"locator_extract_duration_seconds",
			metric.WithDescription("Duration of locator extraction operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		extractTotal, err = meter.Int64Counter(
			"locator_extract_total",
			metric.WithDescription("Total number of extraction operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		recordsExtracted, err = meter.Int64Histogram(
			"locator_records_extracted",
			metric.WithDescription("Number of locator records extracted per file"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		recordsDropped, err = meter.Int64Counter(
			"locator_records_dropped_total",
			metric.WithDescription("Total number of low-relevance records dropped"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		extractErrors, err = meter.Int64Counter(
			"locator_extract_errors_total",
			metric.WithDescription("Total number of extraction errors"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordExtractMetrics records metrics for an extraction operation.
//
// Parameters:
//   - ctx: Context for metric recording
//   - duration: How long the extraction took
//   - recordCount: Number of locator records extracted
//   - droppedCount: Number of low-relevance records dropped
//   - success: Whether the extraction succeeded
func recordExtractMetrics(ctx context.Context, duration time.Duration, recordCount, droppedCount int, success bool) {
	if err := initMetrics(); err != nil {
		return // Silently skip if metrics init failed
	}

	attrs := metric.WithAttributes(
		attribute.Bool("success", success),
	)

	extractLatency.Record(ctx, duration.Seconds(), attrs)
	extractTotal.Add(ctx, 1, attrs)

	if success {
		recordsExtracted.Record(ctx, int64(recordCount))
		recordsDropped.Add(ctx, int64(droppedCount))
	} else {
		extractErrors.Add(ctx, 1)
	}
}

// startExtractSpan creates a span for an extraction operation.
//
// Parameters:
//   - ctx: Parent context
//   - filePath: Path to the file being extracted
//   - contentSize: Size of the content in bytes
//
// Returns:
//   - ctx: Context with span
//   - span: The created span (caller must call span.End())
func startExtractSpan(ctx context.Context, filePath string, contentSize int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Extractor.Extract",
		trace.WithAttributes(
			attribute.String("locator.file", filePath),
			attribute.Int("locator.content_size", contentSize),
		),
	)
}

// setExtractSpanResult sets the result attributes on an extraction span.
func setExtractSpanResult(span trace.Span, recordCount int, warningCount int) {
	span.SetAttributes(
		attribute.Int("locator.record_count", recordCount),
		attribute.Int("locator.warning_count", warningCount),
	)
}
