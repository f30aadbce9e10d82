package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kingrea/claimflow/internal/pipeline"
)

func TestRenderSummaryListsStages(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	state := pipeline.State{
		RunID:      "run-1",
		PipelineID: "claim-estimate",
		Job:        "JOB-1",
		Status:     pipeline.RunStatusFailed,
		Reason:     "stage merge failed",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Stages: []pipeline.StageRun{
			{ID: "estimate", Name: "Generate estimate", Status: pipeline.StageCompleted, Rows: 3, Warnings: []string{"no rooms"}},
			{ID: "merge", Status: pipeline.StageFailed, Error: "missing estimate"},
			{ID: "preview", Name: "Preview", Optional: true, Status: pipeline.StageNotRun},
		},
	}

	out := RenderSummary(state, SummaryOptions{ShowWarnings: true, Journal: []string{"INFO estimate done"}})

	assert.Contains(t, out, "Job JOB-1")
	assert.Contains(t, out, "Generate estimate")
	assert.Contains(t, out, "3 row(s)")
	assert.Contains(t, out, "! no rooms")
	assert.Contains(t, out, "Merge")
	assert.Contains(t, out, "missing estimate")
	assert.Contains(t, out, "Not Run")
	assert.Contains(t, out, "optional")
	assert.Contains(t, out, "1 warning(s)")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "LOG · JOB-1")
}

func TestFriendlyLabel(t *testing.T) {
	assert.Equal(t, "Not Run", friendlyLabel("not-run"))
	assert.Equal(t, "Room Data", friendlyLabel(" room_data "))
	assert.Equal(t, "", friendlyLabel("  "))
}
