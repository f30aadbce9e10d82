package module

import (
	"fmt"

	"github.com/kingrea/claimflow/internal/artifact"
)

// Info describes a stage's identity and intent.
type Info struct {
	ID          string
	Name        string
	Description string
	Version     string
}

// Validate ensures the info block is well-formed.
func (i Info) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("module: id is required")
	}
	if i.Name == "" {
		return fmt.Errorf("module: name is required for %s", i.ID)
	}
	if i.Version == "" {
		return fmt.Errorf("module: version is required for %s", i.ID)
	}
	return nil
}

// Result captures the outcome of a stage run. Warnings carry the
// recoverable problems the stage worked around (unmatched rooms, skipped
// rows, defaulted documents) so callers can assert on them.
type Result struct {
	Status   Status
	Message  string
	Rows     int
	Warnings []string
}

// Status enumerates stage run outcomes.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusNoOp      Status = "no-op"
	StatusFailed    Status = "failed"
)

// Failed wraps err into a failed result.
func Failed(err error) (Result, error) {
	return Result{Status: StatusFailed, Message: err.Error()}, err
}

// Module is implemented by every pipeline stage.
type Module interface {
	Info() Info
	Inputs() []artifact.ArtifactRef
	Outputs() []artifact.ArtifactRef
	IsComplete(ctx *ModuleContext) (bool, error)
	Run(ctx *ModuleContext) (Result, error)
}
