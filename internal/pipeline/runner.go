package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/workflow"
)

// Runner executes pipeline definitions with modules from a registry.
type Runner struct {
	registry *module.Registry
	clock    func() time.Time
	newID    func() string
}

// Option customizes the runner.
type Option func(*Runner)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(r *Runner) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithRunIDs overrides run id generation.
func WithRunIDs(gen func() string) Option {
	return func(r *Runner) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// New wires a runner to the module registry.
func New(registry *module.Registry, opts ...Option) (*Runner, error) {
	if registry == nil {
		return nil, fmt.Errorf("pipeline: module registry is required")
	}
	r := &Runner{
		registry: registry,
		clock:    time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RunOptions tunes a single run.
type RunOptions struct {
	// Skip names optional stages to leave out.
	Skip []string
	// Store receives the state after every stage. Nil means the job's
	// run.json repository.
	Store StateStore
}

// Run executes def against the job in ctx. The returned state is valid even
// when an error is returned.
func (r *Runner) Run(ctx *module.ModuleContext, def workflow.PipelineDefinition, opts RunOptions) (State, error) {
	if ctx == nil || ctx.Job == nil {
		return State{}, fmt.Errorf("pipeline: module context with a job is required")
	}
	normalized, err := def.Normalized()
	if err != nil {
		return State{}, err
	}
	if _, err := normalized.Without(opts.Skip...); err != nil {
		return State{}, err
	}
	modules, err := r.resolve(normalized)
	if err != nil {
		return State{}, err
	}
	store := opts.Store
	if store == nil {
		store = NewRepository(ctx.Job)
	}
	if err := ctx.Job.Initialize(); err != nil {
		return State{}, fmt.Errorf("pipeline: prepare job %s: %w", ctx.Job.ID(), err)
	}

	skip := map[string]bool{}
	for _, id := range opts.Skip {
		skip[strings.TrimSpace(id)] = true
	}
	runID := r.newID()
	ctx = ctx.WithRunID(runID)
	if ctx.Logger == nil {
		ctx.Logger = zap.NewNop()
	}
	state := State{
		RunID:      runID,
		PipelineID: normalized.ID,
		Job:        ctx.Job.ID(),
		Status:     RunStatusRunning,
		StartedAt:  r.clock(),
	}
	for _, ref := range normalized.Stages {
		state.Stages = append(state.Stages, StageRun{
			ID:       ref.InstanceID(),
			Module:   ref.Module,
			Name:     stageName(ref, modules[ref.InstanceID()]),
			Optional: ref.Optional,
			Status:   StageNotRun,
		})
	}
	ctx.Logger.Info("pipeline started",
		zap.String("pipeline", normalized.ID),
		zap.String("job", ctx.Job.ID()),
		zap.Int("stages", len(state.Stages)))
	if ctx.Logbook != nil {
		ctx.Logbook.Info("pipeline %s started (run %s)", normalized.ID, runID)
	}
	if err := store.Save(state); err != nil {
		return state, fmt.Errorf("pipeline: save state: %w", err)
	}

	var runErr error
	for i := range state.Stages {
		run := &state.Stages[i]
		if skip[run.ID] {
			run.Status = StageSkipped
			ctx.Logger.Info("stage skipped", zap.String("stage", run.ID))
			continue
		}
		run.StartedAt = r.clock()
		result, err := modules[run.ID].Run(ctx)
		run.FinishedAt = r.clock()
		run.Message = result.Message
		run.Rows = result.Rows
		run.Warnings = append([]string(nil), result.Warnings...)
		if err == nil && result.Status == module.StatusFailed {
			err = errors.New(result.Message)
		}
		if err != nil {
			run.Status = StageFailed
			run.Error = err.Error()
			runErr = fmt.Errorf("pipeline: stage %s: %w", run.ID, err)
			ctx.Logger.Error("stage failed", zap.String("stage", run.ID), zap.Error(err))
		} else {
			run.Status = StageCompleted
			ctx.Logger.Debug("stage completed",
				zap.String("stage", run.ID),
				zap.Duration("elapsed", run.Duration()),
				zap.Int("warnings", len(run.Warnings)))
		}
		if saveErr := store.Save(state); saveErr != nil && runErr == nil {
			runErr = fmt.Errorf("pipeline: save state: %w", saveErr)
		}
		if runErr != nil {
			break
		}
	}

	state.FinishedAt = r.clock()
	if runErr != nil {
		state.Status = RunStatusFailed
		state.Reason = runErr.Error()
		if ctx.Logbook != nil {
			ctx.Logbook.Error("pipeline %s stopped: %v", normalized.ID, runErr)
		}
	} else {
		state.Status = RunStatusComplete
		if ctx.Logbook != nil {
			ctx.Logbook.Info("pipeline %s complete (%d warnings)", normalized.ID, state.WarningCount())
		}
	}
	if err := store.Save(state); err != nil && runErr == nil {
		runErr = fmt.Errorf("pipeline: save state: %w", err)
	}
	return state, runErr
}

// RunStage executes a single stage outside of a pipeline.
func (r *Runner) RunStage(ctx *module.ModuleContext, id string) (module.Result, error) {
	mod, err := r.registry.Resolve(id, nil)
	if err != nil {
		return module.Result{Status: module.StatusFailed}, err
	}
	if err := ctx.Job.Initialize(); err != nil {
		return module.Result{Status: module.StatusFailed}, fmt.Errorf("pipeline: prepare job %s: %w", ctx.Job.ID(), err)
	}
	return mod.Run(ctx)
}

func (r *Runner) resolve(def workflow.PipelineDefinition) (map[string]module.Module, error) {
	modules := make(map[string]module.Module, len(def.Stages))
	for _, ref := range def.Stages {
		mod, err := r.registry.Resolve(ref.Module, module.Config(ref.Config))
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: stage %s: %w", def.ID, ref.InstanceID(), err)
		}
		modules[ref.InstanceID()] = mod
	}
	return modules, nil
}

func stageName(ref workflow.StageRef, mod module.Module) string {
	if ref.Name != "" {
		return ref.Name
	}
	if mod != nil {
		return mod.Info().Name
	}
	return ref.Module
}
