package scanner

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("mcheck.scanner")
	meter  = otel.Meter("mcheck.scanner")
)

var (
	scanLatency     metric.Float64Histogram
	filesScanned    metric.Int64Counter
	violationsFound metric.Int64Counter
	checkFailures   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		scanLatency, err = meter.Float64Histogram(
			"mcheck_scan_duration_seconds",
			metric.WithDescription("Duration of single file scans"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		filesScanned, err = meter.Int64Counter(
			"mcheck_files_scanned_total",
			metric.WithDescription("Files scanned, by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		violationsFound, err = meter.Int64Counter(
			"mcheck_violations_total",
			metric.WithDescription("Violations reported"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		checkFailures, err = meter.Int64Counter(
			"mcheck_check_failures_total",
			metric.WithDescription("Checks that panicked on a file"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

func startFileSpan(ctx context.Context, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Scanner.ScanSource",
		trace.WithAttributes(attribute.String("scan.file_path", path)),
	)
}

func setFileSpanResult(span trace.Span, violations int, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "file skipped")
		return
	}
	span.SetAttributes(attribute.Int("scan.violation_count", violations))
}

func startBatchSpan(ctx context.Context, files, workers int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Scanner.Run",
		trace.WithAttributes(
			attribute.Int("scan.file_count", files),
			attribute.Int("scan.workers", workers),
		),
	)
}

func recordFileMetrics(ctx context.Context, duration time.Duration, violations, failures int, parsed bool) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("parsed", parsed))
	scanLatency.Record(ctx, duration.Seconds(), attrs)
	filesScanned.Add(ctx, 1, attrs)
	if violations > 0 {
		violationsFound.Add(ctx, int64(violations))
	}
	if failures > 0 {
		checkFailures.Add(ctx, int64(failures))
	}
}
