package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"occratios/internal/config"
	apperrors "occratios/internal/errors"
	"occratios/internal/exporter"
	"occratios/internal/infrastructure"
	"occratios/internal/operations"
	"occratios/pkg/contracts"
)

// shutdownTimeout bounds the final trace flush
const shutdownTimeout = 10 * time.Second

// Options configures NewApplication
type Options struct {
	// ConfigFile overrides the config file search; empty searches the
	// well-known locations.
	ConfigFile string
	// Apply runs after config loading so command-line flags win over file
	// and environment values.
	Apply func(*config.Config)
	// Stdout receives the printed tables; nil means os.Stdout.
	Stdout io.Writer
}

// Application holds everything one command invocation needs
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Stdout        io.Writer
}

// NewApplication loads configuration and sets up logging and telemetry
func NewApplication(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if opts.Apply != nil {
		opts.Apply(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, apperrors.NewConfigError("failed to resolve paths", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(otelConfig(cfg, paths), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	return &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Stdout:        stdout,
	}, nil
}

func otelConfig(cfg *config.Config, paths *config.Paths) *infrastructure.OTelConfig {
	oc := infrastructure.DefaultOTelConfig()
	oc.EnableTracing = cfg.Telemetry.Tracing
	oc.EnableMetrics = cfg.Telemetry.Metrics
	oc.TraceExporter = cfg.Telemetry.TraceExporter
	if oc.TraceExporter == "file" {
		oc.TraceFile = paths.GetLogPath(config.TraceFile)
	}
	return oc
}

// Run executes pipeline, prints its table and returns the run result.
// SIGINT and SIGTERM cancel the run between rows and steps.
func (a *Application) Run(ctx context.Context, pipeline string) (*operations.Result, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = infrastructure.ContextWithTraceID(ctx)
	a.Logger.InfoContext(ctx, "Run starting",
		slog.String("pipeline", pipeline),
		slog.String("version", contracts.Version),
		slog.String("input", a.Paths.InputFile),
		slog.String("output", a.Paths.OutputDir))

	result, err := operations.Run(ctx, operations.Request{
		Pipeline: pipeline,
		Config:   a.Config,
		Paths:    a.Paths,
	}, a.OTelProviders, a.Logger)
	if err != nil {
		return result, err
	}

	if err := a.print(result); err != nil {
		return result, fmt.Errorf("failed to print results: %w", err)
	}

	for _, artifact := range result.Artifacts() {
		a.Logger.InfoContext(ctx, "Wrote artifact",
			slog.String("name", artifact.Name),
			slog.String("path", artifact.Path),
			slog.Int64("bytes", artifact.Bytes))
	}
	return result, nil
}

func (a *Application) print(result *operations.Result) error {
	if s, ok := result.Summary(); ok {
		if err := exporter.PrintSummary(a.Stdout, s); err != nil {
			return err
		}
	}
	if tab, ok := result.CrossTab(); ok {
		if err := exporter.PrintCrossTab(a.Stdout, tab); err != nil {
			return err
		}
	}
	return nil
}

// Stop flushes telemetry and closes the log file
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var firstErr error
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
			firstErr = err
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Main is the shared body of the command entry points. It returns the
// process exit code.
func Main(pipeline string, opts Options) int {
	application, err := NewApplication(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", pipeline, err)
		return 1
	}

	ctx := context.Background()
	_, runErr := application.Run(ctx, pipeline)
	if runErr != nil {
		application.Logger.ErrorContext(ctx, "Run failed",
			slog.String("pipeline", pipeline),
			slog.String("error", runErr.Error()))
	}

	if err := application.Stop(ctx); err != nil && runErr == nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", pipeline, err)
		return 1
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", pipeline, runErr)
		return 1
	}
	return 0
}
