package operations

import (
	"context"
	"log/slog"
	"time"
)

// Manager runs the steps of a registry in dependency order
type Manager struct {
	registry *Registry
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a new operation manager. tracer and logger may be nil.
func NewManager(registry *Registry, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if tracer == nil {
		tracer = NewOperationTracer(nil, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		tracer:   tracer,
		logger:   logger.With(slog.String("component", "operation_manager")),
	}
}

// Execute runs every registered step in order against state. The first
// failing step aborts the run; its error is returned as an *OperationError
// and recorded on the state and manifest.
func (m *Manager) Execute(ctx context.Context, state *OperationState) error {
	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		state.Fail(err)
		state.Manifest.Finish(err)
		return err
	}

	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, state.ID, state.Pipeline)
	defer span.End()

	state.Start()
	m.logger.InfoContext(ctx, "Operation started",
		slog.String("operation_id", state.ID),
		slog.String("pipeline", state.Pipeline),
		slog.Int("steps", len(steps)))

	runErr := m.executeSteps(ctx, state, steps)

	switch {
	case runErr == nil:
		state.Complete()
	case GetErrorType(runErr) == ErrorTypeCancellation:
		state.Cancel(runErr)
	default:
		state.Fail(runErr)
	}
	state.Manifest.Finish(runErr)

	duration := state.Duration()
	m.tracer.RecordOperationCompletion(ctx, span, state.Pipeline, duration, runErr)

	if runErr != nil {
		m.logger.ErrorContext(ctx, "Operation failed",
			slog.String("operation_id", state.ID),
			slog.String("status", string(state.GetStatus())),
			slog.Duration("duration", duration),
			slog.String("error", runErr.Error()))
		return runErr
	}

	m.logger.InfoContext(ctx, "Operation completed",
		slog.String("operation_id", state.ID),
		slog.Duration("duration", duration))
	return nil
}

func (m *Manager) executeSteps(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			for _, rest := range steps[i:] {
				state.GetStage(rest.ID()).Skip("operation cancelled")
			}
			return NewCancellationError(step.ID(), err)
		}

		if err := m.executeStep(ctx, state, step); err != nil {
			for _, rest := range steps[i+1:] {
				state.GetStage(rest.ID()).Skip("previous step failed")
			}
			return err
		}
	}
	return nil
}

func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	logger := m.logger.With(slog.String("step", step.ID()))

	for _, dep := range step.GetDependencies() {
		if s := state.GetStage(dep); s == nil || s.GetStatus() != StepStatusCompleted {
			err := NewDependencyError(step.ID(), dep, "dependency has not completed")
			stepState.Fail(err)
			return err
		}
	}

	ctx, span := m.tracer.TraceStageExecution(ctx, state.ID, step.ID())
	defer span.End()

	stepState.Start()
	state.Manifest.RecordStageStart(step.ID(), step.Name())
	start := time.Now()

	err := step.Validate(state)
	if err != nil {
		err = NewValidationError(step.ID(), err)
	} else {
		logger.DebugContext(ctx, "Step started", slog.String("name", step.Name()))
		err = WrapError(step.Execute(ctx, state), step.ID())
	}

	duration := time.Since(start)
	metadata := stepState.snapshotMetadata()
	m.tracer.RecordStageCompletion(ctx, span, step.ID(), duration, metadata, err)

	if err != nil {
		stepState.Fail(err)
		state.Manifest.RecordStageFailure(step.ID(), err)
		logger.ErrorContext(ctx, "Step failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return err
	}

	stepState.Complete()
	state.Manifest.RecordStageCompletion(step.ID(), metadata)
	logger.InfoContext(ctx, "Step completed",
		slog.String("name", step.Name()),
		slog.Duration("duration", duration))
	return nil
}
