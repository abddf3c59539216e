package operations_test

import (
	"context"
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
	"occratios/internal/ratios"
	"occratios/internal/risk"
)

func newRequest(t *testing.T, pipeline, input string, mutate func(*config.Config)) operations.Request {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Paths.InputFile = input
	if mutate != nil {
		mutate(cfg)
	}

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)
	return operations.Request{Pipeline: pipeline, Config: cfg, Paths: paths}
}

func newProviders(t *testing.T) *infrastructure.OTelProviders {
	t.Helper()
	cfg := infrastructure.DefaultOTelConfig()
	cfg.TraceExporter = "none"
	providers, err := infrastructure.InitializeOTel(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })
	return providers
}

func TestRun_RatioReport(t *testing.T) {
	input := testutil.WriteBalanceSheetCSV(t, t.TempDir(), testutil.SampleBalanceSheets())
	req := newRequest(t, operations.PipelineRatios, input, nil)

	result, err := operations.Run(context.Background(), req, newProviders(t), nil)
	require.NoError(t, err)

	testutil.AssertOperationStatus(t, result.State, operations.OperationStatusCompleted)
	for _, id := range []string{operations.StepIDLoad, operations.StepIDRatios, operations.StepIDSummary, operations.StepIDExport} {
		testutil.AssertStageCompleted(t, result.State, id)
	}
	assert.Nil(t, result.State.GetStage(operations.StepIDClean), "clean step is off by default")

	summary, ok := result.Summary()
	require.True(t, ok)
	require.Len(t, summary.Columns, len(ratios.RatioNames))

	dta, _ := summary.Column(ratios.DepositToAsset)
	assert.Equal(t, 6, dta.Count)

	growth, _ := summary.Column(ratios.NominalAssetGrowth)
	assert.Equal(t, 3, growth.Count)
	assert.InDelta(t, 0.0667, growth.Mean.Value, 1e-9)
	assert.InDelta(t, 0.1, growth.Median.Value, 1e-9)

	_, ok = result.CrossTab()
	assert.False(t, ok)

	assert.Len(t, result.Artifacts(), 2)
	for _, name := range []string{config.RatioSummaryCSV, config.RatioSummaryXLSX, config.RunManifestJSON, config.MetricsTextfile} {
		assert.FileExists(t, req.Paths.GetReportPath(name))
	}

	manifest, err := operations.LoadManifestFromFile(req.Paths.GetReportPath(config.RunManifestJSON))
	require.NoError(t, err)
	assert.Equal(t, result.RunID, manifest.RunID)
	assert.Equal(t, "completed", manifest.Status)
	require.NotNil(t, manifest.Input)
	assert.Equal(t, 6, manifest.Input.Rows)
	assert.Len(t, manifest.Input.Blake2b256, 64)
	assert.Len(t, manifest.Artifacts, 2)
	assert.Equal(t, true, manifest.Options["clip_ratios"])

	metrics, err := os.ReadFile(req.Paths.GetReportPath(config.MetricsTextfile))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "rows_loaded")
}

func TestRun_RatioReportWithInputCleaning(t *testing.T) {
	rows := testutil.SampleBalanceSheets()
	rows = append(rows, testutil.BalanceSheetRow{BankID: "4", Year: "1900", Assets: "0", UndividedProfits: "1"})
	input := testutil.WriteBalanceSheetCSV(t, t.TempDir(), rows)

	req := newRequest(t, operations.PipelineRatios, input, func(cfg *config.Config) {
		cfg.Analysis.CleanInput = true
	})

	result, err := operations.Run(context.Background(), req, nil, nil)
	require.NoError(t, err)

	testutil.AssertStageCompleted(t, result.State, operations.StepIDClean)
	clean := result.State.GetStage(operations.StepIDClean)
	assert.Equal(t, 1, clean.Metadata["dropped_non_positive_assets"])
	assert.Equal(t, 6, clean.Metadata["rows_out"])
}

func TestRun_RiskReport(t *testing.T) {
	input := testutil.WriteBalanceSheetCSV(t, t.TempDir(), testutil.SampleBalanceSheets())
	req := newRequest(t, operations.PipelineRisk, input, nil)

	result, err := operations.Run(context.Background(), req, nil, nil)
	require.NoError(t, err)

	tab, ok := result.CrossTab()
	require.True(t, ok)
	assert.Equal(t, 6, tab.Total)
	assert.Equal(t, risk.SolvencyOrder, tab.Rows)
	assert.Equal(t, risk.FundingOrder, tab.Columns)

	for _, name := range []string{config.RiskCrossTabCSV, config.RiskHeatmapXLSX, config.RunManifestJSON} {
		assert.FileExists(t, req.Paths.GetReportPath(name))
	}
	assert.NoFileExists(t, req.Paths.GetReportPath(config.MetricsTextfile))
}

func TestRun_MissingColumns(t *testing.T) {
	input := filepath.Join(t.TempDir(), "short.csv")
	require.NoError(t, os.WriteFile(input, []byte("bank_id,year,assets\n1,1900,100\n"), 0644))
	req := newRequest(t, operations.PipelineRatios, input, nil)

	result, err := operations.Run(context.Background(), req, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")

	testutil.AssertStageFailed(t, result.State, operations.StepIDLoad)
	testutil.AssertStageSkipped(t, result.State, operations.StepIDExport)

	manifest, err := operations.LoadManifestFromFile(req.Paths.GetReportPath(config.RunManifestJSON))
	require.NoError(t, err)
	assert.Equal(t, "failed", manifest.Status)
	assert.NoFileExists(t, req.Paths.GetReportPath(config.RatioSummaryCSV))
}

func TestRun_MissingInput(t *testing.T) {
	req := newRequest(t, operations.PipelineRisk, filepath.Join(t.TempDir(), "absent.csv"), nil)

	result, err := operations.Run(context.Background(), req, nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeLoad))
	assert.Contains(t, err.Error(), "absent.csv")
	testutil.AssertStageFailed(t, result.State, operations.StepIDLoad)
	testutil.AssertStageSkipped(t, result.State, operations.StepIDExport)

	manifest, err := operations.LoadManifestFromFile(req.Paths.GetReportPath(config.RunManifestJSON))
	require.NoError(t, err)
	assert.Equal(t, "failed", manifest.Status)
}

func TestRun_DelimitedInputWithOtherExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := testutil.WriteBalanceSheetCSV(t, dir, testutil.SampleBalanceSheets())
	input := filepath.Join(dir, "balance_sheets.dat")
	require.NoError(t, os.Rename(csvPath, input))
	req := newRequest(t, operations.PipelineRisk, input, nil)

	_, err := operations.Run(context.Background(), req, nil, nil)
	require.NoError(t, err)
	assert.FileExists(t, req.Paths.GetReportPath(config.RiskCrossTabCSV))
}

func TestRun_UnknownPipeline(t *testing.T) {
	req := newRequest(t, "balance-report", "in.csv", nil)

	_, err := operations.Run(context.Background(), req, nil, nil)
	assert.Error(t, err)
}

func TestRun_KeepsRunIDFromContext(t *testing.T) {
	input := testutil.WriteBalanceSheetCSV(t, t.TempDir(), testutil.SampleBalanceSheets())
	req := newRequest(t, operations.PipelineRisk, input, nil)

	runID := infrastructure.GenerateTraceID()
	result, err := operations.Run(infrastructure.WithTraceID(context.Background(), runID), req, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, runID, result.RunID)
	assert.Equal(t, runID, result.Manifest.RunID)
}
