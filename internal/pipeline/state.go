package pipeline

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kingrea/claimflow/internal/workflow"
)

// ErrStateNotFound is returned when no run has been persisted for the job.
var ErrStateNotFound = errors.New("pipeline: state not found")

// RunStatus enumerates coarse pipeline run phases.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// StageStatus is the outcome of one stage within a run.
type StageStatus string

const (
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
	StageNotRun    StageStatus = "not-run"
)

// State captures the persisted snapshot of a pipeline run.
type State struct {
	RunID      string     `json:"run_id"`
	PipelineID string     `json:"pipeline_id"`
	Job        string     `json:"job"`
	Status     RunStatus  `json:"status"`
	Reason     string     `json:"reason,omitempty"`
	Stages     []StageRun `json:"stages"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at,omitempty"`
}

// StageRun records a single stage execution.
type StageRun struct {
	ID         string      `json:"id"`
	Module     string      `json:"module"`
	Name       string      `json:"name"`
	Optional   bool        `json:"optional,omitempty"`
	Status     StageStatus `json:"status"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Rows       int         `json:"rows"`
	Warnings   []string    `json:"warnings,omitempty"`
	StartedAt  time.Time   `json:"started_at,omitempty"`
	FinishedAt time.Time   `json:"finished_at,omitempty"`
}

// Duration is how long the stage ran.
func (r StageRun) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Stage returns the recorded run for id.
func (s State) Stage(id string) (StageRun, bool) {
	for _, run := range s.Stages {
		if run.ID == id {
			return run, true
		}
	}
	return StageRun{}, false
}

// WarningCount totals the warnings of every stage.
func (s State) WarningCount() int {
	total := 0
	for _, run := range s.Stages {
		total += len(run.Warnings)
	}
	return total
}

// StateStore persists run snapshots.
type StateStore interface {
	Load() (State, error)
	Save(State) error
}

// Repository stores run state inside the job's output folder.
type Repository struct {
	path string
}

// NewRepository creates a repository for the job's run.json.
func NewRepository(job *workflow.Job) *Repository {
	return &Repository{path: job.RunStatePath()}
}

// Path returns the state file location.
func (r *Repository) Path() string {
	return r.path
}

// Load reads the persisted state if present.
func (r *Repository) Load() (State, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return State{}, ErrStateNotFound
		}
		return State{}, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, err
	}
	return state, nil
}

// Save writes the run state to disk.
func (r *Repository) Save(state State) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, append(encoded, '\n'), 0o644)
}
