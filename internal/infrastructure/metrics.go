package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the counters and histograms recorded by a run.
type PipelineMetrics struct {
	RowsLoaded       metric.Int64Counter
	ParseWarnings    metric.Int64Counter
	RowsDropped      metric.Int64Counter
	ValuesSuppressed metric.Int64Counter
	ValuesClamped    metric.Int64Counter
	RiskRows         metric.Int64Counter

	StepsTotal   metric.Int64Counter
	StepErrors   metric.Int64Counter
	StepDuration metric.Float64Histogram
	RunDuration  metric.Float64Histogram

	HeapAlloc metric.Int64Gauge
}

// CreatePipelineMetrics registers the run instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	var (
		m   PipelineMetrics
		err error
	)

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.RowsLoaded, "occ_rows_loaded_total", "Balance-sheet rows read from input"},
		{&m.ParseWarnings, "occ_parse_warnings_total", "Malformed cells read as missing"},
		{&m.RowsDropped, "occ_rows_dropped_total", "Rows removed by cleaning, by reason"},
		{&m.ValuesSuppressed, "occ_ratio_values_suppressed_total", "Ratio values set to missing, by ratio and reason"},
		{&m.ValuesClamped, "occ_ratio_values_clamped_total", "Ratio values clamped to their bounds, by ratio"},
		{&m.RiskRows, "occ_risk_rows_total", "Rows placed in the risk cross-tab"},
		{&m.StepsTotal, "occ_pipeline_steps_total", "Pipeline steps executed"},
		{&m.StepErrors, "occ_pipeline_step_errors_total", "Pipeline steps that failed"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
	}

	m.StepDuration, err = meter.Float64Histogram(
		"occ_pipeline_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.RunDuration, err = meter.Float64Histogram(
		"occ_pipeline_run_duration_seconds",
		metric.WithDescription("Whole run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.HeapAlloc, err = meter.Int64Gauge(
		"occ_heap_alloc_bytes",
		metric.WithDescription("Go heap allocation sampled after each step"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordStep records one step execution. A nil receiver is a no-op.
func (m *PipelineMetrics) RecordStep(ctx context.Context, stepID string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("step.id", stepID),
		attribute.String("status", status),
	)

	m.StepsTotal.Add(ctx, 1, attrs)
	m.StepDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		m.StepErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("step.id", stepID)))
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.HeapAlloc.Record(ctx, int64(ms.HeapAlloc), metric.WithAttributes(attribute.String("step.id", stepID)))
}

// RecordRun records the total run duration
func (m *PipelineMetrics) RecordRun(ctx context.Context, pipeline string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.RunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("status", status),
	))
}

// RecordRowsLoaded counts input rows
func (m *PipelineMetrics) RecordRowsLoaded(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsLoaded.Add(ctx, int64(n))
}

// RecordParseWarnings counts malformed cells in one column
func (m *PipelineMetrics) RecordParseWarnings(ctx context.Context, column string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ParseWarnings.Add(ctx, int64(n), metric.WithAttributes(attribute.String("column", column)))
}

// RecordRowsDropped counts rows removed for reason
func (m *PipelineMetrics) RecordRowsDropped(ctx context.Context, reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsDropped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordSuppressed counts ratio values turned missing
func (m *PipelineMetrics) RecordSuppressed(ctx context.Context, ratio, reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ValuesSuppressed.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("ratio", ratio),
		attribute.String("reason", reason),
	))
}

// RecordClamped counts ratio values moved onto a bound
func (m *PipelineMetrics) RecordClamped(ctx context.Context, ratio string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ValuesClamped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("ratio", ratio)))
}

// RecordRiskRows counts rows that received both risk categories
func (m *PipelineMetrics) RecordRiskRows(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RiskRows.Add(ctx, int64(n))
}
