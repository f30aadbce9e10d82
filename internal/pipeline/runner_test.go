package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/config"
	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/modules"
	"github.com/kingrea/claimflow/internal/modules/moduletest"
	"github.com/kingrea/claimflow/internal/workflow"
)

type stubModule struct {
	*module.Base
	result module.Result
	err    error
	calls  *[]string
}

func (s *stubModule) Run(*module.ModuleContext) (module.Result, error) {
	*s.calls = append(*s.calls, s.Info().ID)
	return s.result, s.err
}

func stubRegistry(calls *[]string, failing string) *module.Registry {
	reg := module.NewRegistry()
	for _, id := range []string{"first", "second", "third"} {
		id := id
		reg.MustRegister(id, func(module.Config) (module.Module, error) {
			base := module.NewBase(module.Info{ID: id, Name: "Stage " + id, Version: "1.0.0"})
			stub := &stubModule{Base: &base, calls: calls, result: module.Result{Status: module.StatusCompleted, Message: id + " ok", Rows: 1}}
			if id == failing {
				stub.result = module.Result{Status: module.StatusFailed, Message: "boom"}
				stub.err = errors.New("boom")
			}
			return stub, nil
		})
	}
	return reg
}

func stubDefinition() workflow.PipelineDefinition {
	return workflow.PipelineDefinition{
		ID: "stub",
		Stages: []workflow.StageRef{
			{Module: "first"},
			{Module: "second", Optional: true},
			{Module: "third", Name: "Last"},
		},
	}
}

func newRunner(t *testing.T, reg *module.Registry) *Runner {
	t.Helper()
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	runner, err := New(reg,
		WithClock(func() time.Time { return clock }),
		WithRunIDs(func() string { return "run-1" }))
	require.NoError(t, err)
	return runner
}

func TestRunExecutesStagesInOrderAndPersists(t *testing.T) {
	var calls []string
	ctx := moduletest.NewContext(t)
	state, err := newRunner(t, stubRegistry(&calls, "")).Run(ctx, stubDefinition(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "third"}, calls)
	assert.Equal(t, RunStatusComplete, state.Status)
	assert.Equal(t, "run-1", state.RunID)
	last, ok := state.Stage("third")
	require.True(t, ok)
	assert.Equal(t, "Last", last.Name)
	assert.Equal(t, StageCompleted, last.Status)

	stored, err := NewRepository(ctx.Job).Load()
	require.NoError(t, err)
	assert.Equal(t, state.Stages, stored.Stages)
	assert.Equal(t, RunStatusComplete, stored.Status)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	var calls []string
	ctx := moduletest.NewContext(t)
	state, err := newRunner(t, stubRegistry(&calls, "second")).Run(ctx, stubDefinition(), RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage second")

	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, RunStatusFailed, state.Status)
	second, _ := state.Stage("second")
	assert.Equal(t, StageFailed, second.Status)
	assert.Equal(t, "boom", second.Error)
	third, _ := state.Stage("third")
	assert.Equal(t, StageNotRun, third.Status)
}

func TestRunSkipsOptionalStages(t *testing.T) {
	var calls []string
	ctx := moduletest.NewContext(t)
	runner := newRunner(t, stubRegistry(&calls, ""))

	state, err := runner.Run(ctx, stubDefinition(), RunOptions{Skip: []string{"second"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "third"}, calls)
	second, _ := state.Stage("second")
	assert.Equal(t, StageSkipped, second.Status)

	_, err = runner.Run(ctx, stubDefinition(), RunOptions{Skip: []string{"first"}})
	assert.Error(t, err, "required stages cannot be skipped")
}

func TestRunRejectsUnknownModules(t *testing.T) {
	var calls []string
	def := stubDefinition()
	def.Stages = append(def.Stages, workflow.StageRef{Module: "missing"})
	_, err := newRunner(t, stubRegistry(&calls, "")).Run(moduletest.NewContext(t), def, RunOptions{})
	require.Error(t, err)
	assert.Empty(t, calls)
}

func TestLoadWithoutRunReturnsNotFound(t *testing.T) {
	job := workflow.New(config.DefaultJobID, t.TempDir(), t.TempDir())
	_, err := NewRepository(job).Load()
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestDefaultPipelineRunsEndToEnd(t *testing.T) {
	ctx := moduletest.NewContext(t)
	moduletest.WriteJSON(t, ctx, artifact.JobMetadata, map[string]any{"cause": "fire"})

	runner, err := New(modules.NewRegistry())
	require.NoError(t, err)
	state, err := runner.Run(ctx, workflow.DefaultDefinition(), RunOptions{Skip: []string{"collect"}})
	require.NoError(t, err)

	assert.Equal(t, RunStatusComplete, state.Status)
	assert.NotEmpty(t, state.RunID)
	exported, ok := state.Stage("export")
	require.True(t, ok)
	assert.Equal(t, 2, exported.Rows)
	assert.Positive(t, state.WarningCount())
}
