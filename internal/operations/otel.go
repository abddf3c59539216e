package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"occratios/internal/infrastructure"
)

const (
	TracerName = "occratios.operation"
)

// OperationTracer provides OpenTelemetry instrumentation for runs and steps
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer backed by the run's providers. A nil
// providers value yields a tracer that records nothing.
func NewOperationTracer(providers *infrastructure.OTelProviders, metrics *infrastructure.PipelineMetrics) *OperationTracer {
	var tracer trace.Tracer = tracenoop.NewTracerProvider().Tracer(TracerName)
	if providers != nil && providers.TracerProvider != nil {
		tracer = providers.TracerProvider.Tracer(TracerName)
	}
	return &OperationTracer{tracer: tracer, metrics: metrics}
}

// Metrics returns the run metrics, possibly nil
func (pt *OperationTracer) Metrics() *infrastructure.PipelineMetrics {
	return pt.metrics
}

// TraceOperationExecution creates the root span for a run
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, runID, pipeline string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("operation.execute.%s", pipeline),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", runID),
			attribute.String("operation.pipeline", pipeline),
		),
	)
}

// TraceStageExecution creates a span for one step
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, runID, stepID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("operation.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", runID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStageCompletion closes out a step span and records step metrics
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, metadata map[string]interface{}, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	span.SetAttributes(
		attribute.String("step.status", status),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)
	infrastructure.SetSpanAttributes(ctx, metadata)

	pt.metrics.RecordStep(ctx, stepID, duration, err)

	if err != nil {
		infrastructure.RecordError(ctx, err,
			trace.WithAttributes(
				attribute.String("step.id", stepID),
				attribute.String("error.type", string(GetErrorType(err))),
			),
		)
		return
	}

	infrastructure.AddSpanEvent(ctx, "step.completed", map[string]interface{}{
		"step_id":  stepID,
		"duration": duration.Seconds(),
	})
	span.SetStatus(codes.Ok, "step completed successfully")
}

// RecordOperationCompletion closes out the run span and records the run
// duration
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, pipeline string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	span.SetAttributes(
		attribute.String("operation.status", status),
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
	)

	pt.metrics.RecordRun(ctx, pipeline, duration, err)

	if err != nil {
		infrastructure.RecordError(ctx, err,
			trace.WithAttributes(attribute.String("error.type", "operation_execution_error")))
		return
	}
	span.SetStatus(codes.Ok, "operation completed successfully")
}
