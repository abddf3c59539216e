package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestInitializeOTel_Defaults(t *testing.T) {
	providers, err := InitializeOTel(nil, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	// default config keeps metrics and disables tracing
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Registry)

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_AllDisabled(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: ServiceName, TraceExporter: "none"}, quietLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.Registry)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	// no-op when metrics are off
	assert.NoError(t, providers.WriteMetrics(filepath.Join(t.TempDir(), "m.prom")))
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{EnableTracing: true, TraceExporter: "zipkin"}, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestTracing_FileExporterUsesRunID(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "traces.json")
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "file"
	cfg.TraceFile = traceFile

	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)

	runID := GenerateTraceID()
	ctx := WithTraceID(context.Background(), runID)
	ctx, span := providers.Tracer.Start(ctx, "run")
	_, child := providers.Tracer.Start(ctx, "step")
	child.End()
	span.End()

	want := strings.ReplaceAll(runID, "-", "")
	assert.Equal(t, want, TraceIDFromContext(ctx))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, providers.Shutdown(shutdownCtx))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), want)
	assert.Contains(t, string(content), `"step"`)
}

func TestSpanHelpers_NoRecordingSpan(t *testing.T) {
	ctx := context.Background()
	// all helpers must tolerate a context without a span
	AddSpanEvent(ctx, "event", map[string]interface{}{"rows": 3})
	SetSpanAttributes(ctx, map[string]interface{}{"ok": true})
	RecordError(ctx, errors.New("boom"))
	assert.Empty(t, TraceIDFromContext(ctx))
}

func TestToAttributes(t *testing.T) {
	attrs := toAttributes(map[string]interface{}{
		"s": "x", "i": 1, "i64": int64(2), "f": 1.5, "b": true, "other": []int{1},
	})
	assert.Len(t, attrs, 6)
}

func TestPipelineMetrics_WriteTextfile(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	m, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordRowsLoaded(ctx, 10)
	m.RecordParseWarnings(ctx, "assets", 2)
	m.RecordRowsDropped(ctx, "non_positive_assets", 1)
	m.RecordSuppressed(ctx, "loan_to_deposit", "deposit_cutoff", 3)
	m.RecordClamped(ctx, "equity_to_asset", 4)
	m.RecordRiskRows(ctx, 5)
	m.RecordStep(ctx, "load", 20*time.Millisecond, nil)
	m.RecordStep(ctx, "export", time.Millisecond, errors.New("disk full"))
	m.RecordRun(ctx, "ratio-report", time.Second, nil)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, providers.WriteMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "occ_rows_loaded_total")
	assert.Contains(t, text, `ratio="loan_to_deposit"`)
	assert.Contains(t, text, "occ_pipeline_step_errors_total")
	assert.Contains(t, text, "occ_pipeline_step_duration_seconds_bucket")
}

func TestPipelineMetrics_NilReceiver(t *testing.T) {
	var m *PipelineMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordRowsLoaded(ctx, 1)
		m.RecordStep(ctx, "load", time.Millisecond, nil)
		m.RecordRun(ctx, "risk-report", time.Millisecond, nil)
		m.RecordClamped(ctx, "x", 1)
	})
}
