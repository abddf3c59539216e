package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occratios/internal/config"
	apperrors "occratios/internal/errors"
	"occratios/internal/infrastructure"
	"occratios/internal/operations"
	"occratios/internal/operations/testutil"
)

func writeConfig(t *testing.T, baseDir, input string) string {
	t.Helper()
	content := fmt.Sprintf(`
paths:
  base_dir: %s
  input_file: %s
  output_dir: reports
  logs_dir: logs
telemetry:
  tracing: false
  trace_exporter: none
  metrics: true
`, baseDir, input)

	path := filepath.Join(baseDir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestApplication(t *testing.T, apply func(*config.Config)) (*Application, *bytes.Buffer) {
	t.Helper()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	dir := t.TempDir()
	input := testutil.WriteBalanceSheetCSV(t, dir, testutil.SampleBalanceSheets())

	var out bytes.Buffer
	application, err := NewApplication(Options{
		ConfigFile: writeConfig(t, dir, input),
		Apply:      apply,
		Stdout:     &out,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Stop(context.Background()) })
	return application, &out
}

func TestNewApplication(t *testing.T) {
	application, _ := newTestApplication(t, func(cfg *config.Config) {
		cfg.Analysis.ClipRatios = false
	})

	assert.False(t, application.Config.Analysis.ClipRatios)
	assert.True(t, filepath.IsAbs(application.Paths.OutputDir))
	assert.Equal(t, "reports", filepath.Base(application.Paths.OutputDir))
	require.NotNil(t, application.OTelProviders)
	assert.NotNil(t, application.OTelProviders.Registry)
}

func TestNewApplication_InvalidOverride(t *testing.T) {
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	dir := t.TempDir()

	_, err := NewApplication(Options{
		ConfigFile: writeConfig(t, dir, "in.csv"),
		Apply: func(cfg *config.Config) {
			cfg.Analysis.DepositCutoff = -1
		},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestNewApplication_MissingConfigFile(t *testing.T) {
	_, err := NewApplication(Options{ConfigFile: filepath.Join(t.TempDir(), "absent.yaml")})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestApplication_RunRatioReport(t *testing.T) {
	application, out := newTestApplication(t, nil)

	result, err := application.Run(context.Background(), operations.PipelineRatios)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Contains(t, out.String(), "deposit_to_asset")
	assert.Contains(t, out.String(), "90th percentile")
	assert.FileExists(t, application.Paths.GetReportPath(config.RatioSummaryCSV))
	assert.FileExists(t, application.Paths.GetReportPath(config.MetricsTextfile))
}

func TestApplication_RunRiskReport(t *testing.T) {
	application, out := newTestApplication(t, nil)

	_, err := application.Run(context.Background(), operations.PipelineRisk)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Probability of Failure by Solvency and Funding Vulnerability Categories:")
	assert.FileExists(t, application.Paths.GetReportPath(config.RiskHeatmapXLSX))
}

func TestApplication_RunCancelled(t *testing.T) {
	application, out := newTestApplication(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := application.Run(ctx, operations.PipelineRatios)
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeCancellation, operations.GetErrorType(err))
	assert.Empty(t, out.String())
}
