package module

import (
	"fmt"

	"github.com/kingrea/claimflow/internal/artifact"
)

// Base provides common plumbing for stages (identity + IO contracts).
type Base struct {
	info    Info
	inputs  []artifact.ArtifactRef
	outputs []artifact.ArtifactRef
}

// NewBase seeds the helper with module info.
func NewBase(info Info) Base {
	return Base{info: info}
}

// SetInputs declares the consumed artifacts.
func (b *Base) SetInputs(refs ...artifact.ArtifactRef) {
	b.inputs = append([]artifact.ArtifactRef{}, refs...)
}

// SetOutputs declares the produced artifacts.
func (b *Base) SetOutputs(refs ...artifact.ArtifactRef) {
	b.outputs = append([]artifact.ArtifactRef{}, refs...)
}

// Info implements Module.Info.
func (b *Base) Info() Info {
	return b.info
}

// Inputs implements Module.Inputs.
func (b *Base) Inputs() []artifact.ArtifactRef {
	return append([]artifact.ArtifactRef{}, b.inputs...)
}

// Outputs implements Module.Outputs.
func (b *Base) Outputs() []artifact.ArtifactRef {
	return append([]artifact.ArtifactRef{}, b.outputs...)
}

// MissingInputs lists the required inputs that are not on disk.
func (b *Base) MissingInputs(ctx *ModuleContext) []artifact.ArtifactRef {
	var missing []artifact.ArtifactRef
	for _, ref := range b.inputs {
		if ref.Optional {
			continue
		}
		if !ctx.Artifacts.Exists(ref) {
			missing = append(missing, ref)
		}
	}
	return missing
}

// IsComplete reports whether every required output exists. Stages are pure
// transforms so the pipeline always reruns them; this only answers "has this
// stage produced its files for the job".
func (b *Base) IsComplete(ctx *ModuleContext) (bool, error) {
	if ctx == nil || ctx.Artifacts == nil {
		return false, fmt.Errorf("%s: artifact store is required", b.info.ID)
	}
	for _, ref := range b.outputs {
		if ref.Optional {
			continue
		}
		result, err := ctx.Artifacts.Check(ref)
		if result.State == artifact.StateError {
			return false, fmt.Errorf("%s: check %s: %w", b.info.ID, ref.ID, err)
		}
		if result.State != artifact.StateReady {
			return false, nil
		}
	}
	return true, nil
}
