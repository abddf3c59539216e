package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"occratios/internal/config"
	apperrors "occratios/internal/errors"
	"occratios/internal/ratios"
	"occratios/internal/risk"
	"occratios/internal/validation"
)

// Artifact describes one file written by a run.
type Artifact struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

// Job writes one artifact and returns its full path.
type Job struct {
	Name  string
	Write func(ctx context.Context) (string, error)
}

// Exporter writes run artifacts into the output directory.
type Exporter struct {
	paths     *config.Paths
	csv       *CSVWriter
	validator *validation.FileValidator
	logger    *slog.Logger
}

// New creates an exporter rooted at paths.OutputDir.
func New(paths *config.Paths, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "exporter"))
	return &Exporter{
		paths:     paths,
		csv:       NewCSVWriter(paths, logger),
		validator: validation.NewFileValidator(logger),
		logger:    logger,
	}
}

// SummaryCSV writes the statistics table as ratio_summary.csv.
func (e *Exporter) SummaryCSV(s ratios.Summary) Job {
	return Job{Name: config.RatioSummaryCSV, Write: func(context.Context) (string, error) {
		return e.csv.WriteSummaryCSV(config.RatioSummaryCSV, s)
	}}
}

// SummaryXLSX writes the statistics workbook.
func (e *Exporter) SummaryXLSX(s ratios.Summary) Job {
	return Job{Name: config.RatioSummaryXLSX, Write: func(context.Context) (string, error) {
		path := e.paths.GetReportPath(config.RatioSummaryXLSX)
		return path, WriteSummaryXLSX(path, s)
	}}
}

// RiskCSV writes the receivership-rate table.
func (e *Exporter) RiskCSV(tab risk.CrossTab) Job {
	return Job{Name: config.RiskCrossTabCSV, Write: func(context.Context) (string, error) {
		return e.csv.WriteRiskCSV(config.RiskCrossTabCSV, tab)
	}}
}

// RiskHeatmap writes the colour-scaled workbook.
func (e *Exporter) RiskHeatmap(tab risk.CrossTab) Job {
	return Job{Name: config.RiskHeatmapXLSX, Write: func(context.Context) (string, error) {
		path := e.paths.GetReportPath(config.RiskHeatmapXLSX)
		return path, WriteRiskHeatmap(path, tab)
	}}
}

// WriteAll runs jobs concurrently and returns their artifacts in job order.
// The first failure cancels the rest and is returned as a STORAGE error.
func (e *Exporter) WriteAll(ctx context.Context, jobs ...Job) ([]Artifact, error) {
	if err := e.validator.ValidateOutputDirectory(e.paths.OutputDir); err != nil {
		return nil, err
	}

	artifacts := make([]Artifact, len(jobs))
	g, gctx := errgroup.WithContext(ctx)

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			path, err := job.Write(gctx)
			if err != nil {
				return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", job.Name), err).
					WithContext("artifact", job.Name)
			}

			a := Artifact{Name: job.Name, Path: path}
			if info, err := os.Stat(path); err == nil {
				a.Bytes = info.Size()
			}
			artifacts[i] = a

			e.logger.DebugContext(gctx, "Wrote artifact",
				slog.String("artifact", job.Name),
				slog.String("path", filepath.Base(path)),
				slog.Int64("bytes", a.Bytes),
				slog.Duration("duration", time.Since(start)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Wrote artifacts",
		slog.Int("count", len(artifacts)),
		slog.String("output_dir", e.paths.OutputDir))
	return artifacts, nil
}
