package operations

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"occratios/internal/config"
	"occratios/internal/dataprocessing"
	"occratios/internal/exporter"
	"occratios/internal/infrastructure"
	"occratios/internal/ratios"
	"occratios/internal/risk"
)

// Request selects a pipeline and the settings it runs with
type Request struct {
	Pipeline string
	Config   *config.Config
	Paths    *config.Paths
}

// Result is what a run leaves behind
type Result struct {
	RunID    string
	State    *OperationState
	Manifest *RunManifest
}

// Summary returns the ratio summary when the run produced one
func (r *Result) Summary() (ratios.Summary, bool) {
	s, err := contextValue[ratios.Summary](r.State, ContextKeySummary)
	return s, err == nil
}

// CrossTab returns the risk cross-tab when the run produced one
func (r *Result) CrossTab() (risk.CrossTab, bool) {
	tab, err := contextValue[risk.CrossTab](r.State, ContextKeyCrossTab)
	return tab, err == nil
}

// Artifacts lists the files the run wrote
func (r *Result) Artifacts() []exporter.Artifact {
	artifacts, _ := contextValue[[]exporter.Artifact](r.State, ContextKeyArtifacts)
	return artifacts
}

// RatioOptions maps the analysis config onto calculator options
func RatioOptions(cfg config.AnalysisConfig) ratios.Options {
	opts := ratios.Options{
		ApplyDepositCutoff: cfg.ApplyDepositCutoff,
		DepositCutoff:      cfg.DepositCutoff,
	}
	if cfg.ClipRatios {
		opts.Bounds = ratios.DefaultBounds()
	}
	return opts
}

// CleanOptions maps the analysis config onto input cleaning options
func CleanOptions(cfg config.AnalysisConfig) dataprocessing.CleanOptions {
	opts := dataprocessing.DefaultCleanOptions()
	opts.WinsorLower = cfg.WinsorLower
	opts.WinsorUpper = cfg.WinsorUpper
	return opts
}

// loadOptions returns the columns the pipeline needs from the input
func loadOptions(req Request) dataprocessing.LoadOptions {
	opts := dataprocessing.LoadOptions{}
	if r, _ := utf8.DecodeRuneInString(req.Config.Analysis.Delimiter); r != utf8.RuneError {
		opts.Delimiter = r
	}

	required := dataprocessing.RatioColumns
	if req.Pipeline == PipelineRisk {
		required = dataprocessing.RiskColumns
	}
	if req.Config.Analysis.CleanInput {
		required = union(required, dataprocessing.EssentialColumns)
	}
	opts.Required = required
	return opts
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// NewPipelineRegistry builds the steps for req
func NewPipelineRegistry(req Request, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) (*Registry, error) {
	if req.Config == nil || req.Paths == nil {
		return nil, fmt.Errorf("pipeline %q: config and paths are required", req.Pipeline)
	}
	analysis := req.Config.Analysis

	registry := NewRegistry()
	register := registry.Register

	if err := register(NewLoadStage(req.Paths.InputFile, loadOptions(req), logger, metrics)); err != nil {
		return nil, err
	}
	tableStep := StepIDLoad
	if analysis.CleanInput {
		if err := register(NewCleanStage(CleanOptions(analysis), logger, metrics)); err != nil {
			return nil, err
		}
		tableStep = StepIDClean
	}

	exp := exporter.New(req.Paths, logger)

	switch req.Pipeline {
	case PipelineRatios:
		calculator, err := ratios.NewCalculator(RatioOptions(analysis), logger, metrics)
		if err != nil {
			return nil, NewValidationError(StepIDRatios, err)
		}
		steps := []Step{
			NewRatioStage(calculator, metrics, tableStep),
			NewSummaryStage(),
			NewExportStage(exp, StepIDSummary, summaryJobs),
		}
		for _, s := range steps {
			if err := register(s); err != nil {
				return nil, err
			}
		}
	case PipelineRisk:
		steps := []Step{
			NewRiskStage(risk.NewCategorizer(logger, metrics), tableStep),
			NewExportStage(exp, StepIDRisk, riskJobs),
		}
		for _, s := range steps {
			if err := register(s); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unknown pipeline %q", req.Pipeline)
	}

	return registry, nil
}

// Run executes one pipeline end to end and writes its manifest and metrics
// into the output directory. The run ID is taken from ctx when present.
func Run(ctx context.Context, req Request, providers *infrastructure.OTelProviders, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)
	logger = logger.With(slog.String("pipeline", req.Pipeline))

	var metrics *infrastructure.PipelineMetrics
	if providers != nil && providers.Registry != nil {
		m, err := infrastructure.CreatePipelineMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
		}
		metrics = m
	}

	registry, err := NewPipelineRegistry(req, logger, metrics)
	if err != nil {
		return nil, err
	}

	if err := req.Paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	state := NewOperationState(runID, req.Pipeline)
	recordOptions(state.Manifest, req)

	manager := NewManager(registry, NewOperationTracer(providers, metrics), logger)
	runErr := manager.Execute(ctx, state)

	result := &Result{RunID: runID, State: state, Manifest: state.Manifest}

	manifestPath := req.Paths.GetReportPath(config.RunManifestJSON)
	if err := state.Manifest.SaveToFile(manifestPath); err != nil {
		logger.ErrorContext(ctx, "Failed to write run manifest",
			slog.String("path", manifestPath),
			slog.String("error", err.Error()))
	}
	if providers != nil {
		metricsPath := req.Paths.GetReportPath(config.MetricsTextfile)
		if err := providers.WriteMetrics(metricsPath); err != nil {
			logger.ErrorContext(ctx, "Failed to write metrics",
				slog.String("path", metricsPath),
				slog.String("error", err.Error()))
		}
	}

	return result, runErr
}

func recordOptions(m *RunManifest, req Request) {
	a := req.Config.Analysis
	m.SetOption("clean_input", a.CleanInput)
	if a.CleanInput {
		m.SetOption("winsor_limits", []float64{a.WinsorLower, a.WinsorUpper})
	}
	if req.Pipeline == PipelineRatios {
		m.SetOption("apply_deposit_cutoff", a.ApplyDepositCutoff)
		m.SetOption("deposit_cutoff", a.DepositCutoff)
		m.SetOption("clip_ratios", a.ClipRatios)
	}
	m.SetOption("delimiter", a.Delimiter)
}
