package operations

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"occratios/internal/dataprocessing"
	apperrors "occratios/internal/errors"
	"occratios/internal/exporter"
	"occratios/internal/infrastructure"
	"occratios/internal/ratios"
	"occratios/internal/risk"
	"occratios/internal/validation"
	"occratios/pkg/contracts/domain"
)

// LoadStage reads the input table and records its identity in the manifest
type LoadStage struct {
	BaseStage
	path      string
	opts      dataprocessing.LoadOptions
	loader    *dataprocessing.Loader
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewLoadStage creates the load step
func NewLoadStage(path string, opts dataprocessing.LoadOptions, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *LoadStage {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("step", StepIDLoad))
	return &LoadStage{
		BaseStage: NewBaseStage(StepIDLoad, StepNameLoad, nil),
		path:      path,
		opts:      opts,
		loader:    dataprocessing.NewLoader(logger, metrics),
		validator: validation.NewFileValidator(logger),
		logger:    logger,
	}
}

// Execute checks the input file, then loads the table. An unreadable input
// fails the step with a LOAD error.
func (s *LoadStage) Execute(ctx context.Context, state *OperationState) error {
	if err := s.validator.ValidateInputTable(s.path); err != nil {
		return err
	}

	digest, size, err := DigestFile(s.path)
	if err != nil {
		return apperrors.NewLoadError(s.path, fmt.Errorf("digest input: %w", err))
	}

	table, report, err := s.loader.LoadWithReport(ctx, s.path, s.opts)
	if err != nil {
		return err
	}

	state.SetContext(ContextKeyTable, table)
	state.SetContext(ContextKeyLoadReport, report)
	state.Manifest.SetInput(&InputInfo{
		Path:          s.path,
		Format:        report.Format,
		Bytes:         size,
		Blake2b256:    digest,
		Rows:          report.Rows,
		ParseWarnings: report.ParseWarnings,
	})

	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("rows", report.Rows)
	stepState.SetMetadata("parse_warnings", report.TotalWarnings())
	stepState.SetMetadata("format", report.Format)

	if report.Rows == 0 {
		s.logger.WarnContext(ctx, "Input table has no rows", slog.String("path", s.path))
	}
	return nil
}

// CleanStage drops incomplete rows and winsorizes the essential fields
type CleanStage struct {
	BaseStage
	opts    dataprocessing.CleanOptions
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// NewCleanStage creates the input cleaning step
func NewCleanStage(opts dataprocessing.CleanOptions, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *CleanStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanStage{
		BaseStage: NewBaseStage(StepIDClean, StepNameClean, []string{StepIDLoad}),
		opts:      opts,
		metrics:   metrics,
		logger:    logger.With(slog.String("step", StepIDClean)),
	}
}

// Execute replaces the loaded table with its cleaned copy
func (s *CleanStage) Execute(ctx context.Context, state *OperationState) error {
	table, err := contextValue[*domain.Table](state, ContextKeyTable)
	if err != nil {
		return err
	}

	cleaned, report := dataprocessing.Clean(table, s.opts)
	state.SetContext(ContextKeyTable, cleaned)
	state.SetContext(ContextKeyCleanReport, report)

	s.metrics.RecordRowsDropped(ctx, "missing_essential", report.DroppedMissing)
	s.metrics.RecordRowsDropped(ctx, "non_positive_assets", report.DroppedNonPositiveAssets)

	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("rows_in", report.RowsIn)
	stepState.SetMetadata("rows_out", report.RowsOut)
	stepState.SetMetadata("dropped_missing", report.DroppedMissing)
	stepState.SetMetadata("dropped_non_positive_assets", report.DroppedNonPositiveAssets)

	s.logger.InfoContext(ctx, "Cleaned input table",
		slog.Int("rows_in", report.RowsIn),
		slog.Int("rows_out", report.RowsOut),
		slog.Any("winsorized", report.Clamped))
	return nil
}

// RatioStage derives the ratio frame and, when bounds are set, clamps it
type RatioStage struct {
	BaseStage
	calculator *ratios.Calculator
	cleaner    *ratios.Cleaner
}

// NewRatioStage creates the ratio step. dependsOn names the step that
// produces the table.
func NewRatioStage(calculator *ratios.Calculator, metrics *infrastructure.PipelineMetrics, dependsOn string) *RatioStage {
	s := &RatioStage{
		BaseStage:  NewBaseStage(StepIDRatios, StepNameRatios, []string{dependsOn}),
		calculator: calculator,
	}
	if bounds := calculator.Options().Bounds; bounds != nil {
		s.cleaner = ratios.NewCleaner(bounds).WithMetrics(metrics)
	}
	return s
}

// Execute calculates and cleans the ratios
func (s *RatioStage) Execute(ctx context.Context, state *OperationState) error {
	table, err := contextValue[*domain.Table](state, ContextKeyTable)
	if err != nil {
		return err
	}

	raw, calc, err := s.calculator.Calculate(ctx, table)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyRawFrame, raw)
	state.SetContext(ContextKeyCalcReport, calc)

	stepState := state.GetStage(s.ID())
	for _, name := range ratios.RatioNames {
		stepState.SetMetadata("suppressed."+name, calc.Total(name))
	}

	frame := raw
	if s.cleaner != nil {
		var report ratios.CleanReport
		frame, report = s.cleaner.CleanContext(ctx, raw)
		if err := ratios.ValidateCleaned(frame, s.calculator.Options().Bounds); err != nil {
			return err
		}
		state.SetContext(ContextKeyRatioClean, report)
		for name, n := range report.Clamped {
			stepState.SetMetadata("clamped."+name, n)
		}
	}
	state.SetContext(ContextKeyFrame, frame)
	return nil
}

// SummaryStage computes the statistics table
type SummaryStage struct {
	BaseStage
}

// NewSummaryStage creates the summary step
func NewSummaryStage() *SummaryStage {
	return &SummaryStage{BaseStage: NewBaseStage(StepIDSummary, StepNameSummary, []string{StepIDRatios})}
}

// Execute summarizes the ratio frame
func (s *SummaryStage) Execute(ctx context.Context, state *OperationState) error {
	frame, err := contextValue[*ratios.Frame](state, ContextKeyFrame)
	if err != nil {
		return err
	}

	summary := ratios.Summarize(frame)
	state.SetContext(ContextKeySummary, summary)

	stepState := state.GetStage(s.ID())
	for _, c := range summary.Columns {
		stepState.SetMetadata("count."+c.Name, c.Count)
	}
	return nil
}

// RiskStage builds the solvency × funding cross-tab
type RiskStage struct {
	BaseStage
	categorizer *risk.Categorizer
}

// NewRiskStage creates the risk step. dependsOn names the step that
// produces the table.
func NewRiskStage(categorizer *risk.Categorizer, dependsOn string) *RiskStage {
	return &RiskStage{
		BaseStage:   NewBaseStage(StepIDRisk, StepNameRisk, []string{dependsOn}),
		categorizer: categorizer,
	}
}

// Execute builds the cross-tab
func (s *RiskStage) Execute(ctx context.Context, state *OperationState) error {
	table, err := contextValue[*domain.Table](state, ContextKeyTable)
	if err != nil {
		return err
	}

	tab, err := s.categorizer.Build(ctx, table)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyCrossTab, tab)

	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("categorized", tab.Categorized)
	stepState.SetMetadata("rows", tab.Total)
	return nil
}

// ExportStage writes the artifacts chosen by jobs
type ExportStage struct {
	BaseStage
	exporter *exporter.Exporter
	jobs     func(state *OperationState, e *exporter.Exporter) ([]exporter.Job, error)
}

// NewExportStage creates the export step
func NewExportStage(e *exporter.Exporter, dependsOn string, jobs func(*OperationState, *exporter.Exporter) ([]exporter.Job, error)) *ExportStage {
	return &ExportStage{
		BaseStage: NewBaseStage(StepIDExport, StepNameExport, []string{dependsOn}),
		exporter:  e,
		jobs:      jobs,
	}
}

// Execute writes every artifact concurrently
func (s *ExportStage) Execute(ctx context.Context, state *OperationState) error {
	jobs, err := s.jobs(state, s.exporter)
	if err != nil {
		return err
	}

	artifacts, err := s.exporter.WriteAll(ctx, jobs...)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyArtifacts, artifacts)
	state.Manifest.AddArtifacts(artifacts...)

	names := make([]string, len(artifacts))
	for i, a := range artifacts {
		names[i] = filepath.Base(a.Path)
	}
	state.GetStage(s.ID()).SetMetadata("artifacts", names)
	return nil
}

// summaryJobs writes the summary CSV and workbook
func summaryJobs(state *OperationState, e *exporter.Exporter) ([]exporter.Job, error) {
	summary, err := contextValue[ratios.Summary](state, ContextKeySummary)
	if err != nil {
		return nil, err
	}
	return []exporter.Job{e.SummaryCSV(summary), e.SummaryXLSX(summary)}, nil
}

// riskJobs writes the cross-tab CSV and heatmap workbook
func riskJobs(state *OperationState, e *exporter.Exporter) ([]exporter.Job, error) {
	tab, err := contextValue[risk.CrossTab](state, ContextKeyCrossTab)
	if err != nil {
		return nil, err
	}
	return []exporter.Job{e.RiskCSV(tab), e.RiskHeatmap(tab)}, nil
}
