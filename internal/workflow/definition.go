package workflow

import (
	"fmt"
	"strings"
)

// PipelineDefinition declares the ordered list of stages a pipeline run
// executes. Stages always run in declaration order.
type PipelineDefinition struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Stages      []StageRef        `json:"stages" yaml:"stages"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Clone returns a deep copy of the pipeline definition.
func (def PipelineDefinition) Clone() PipelineDefinition {
	clone := PipelineDefinition{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Metadata:    cloneStringMap(def.Metadata),
	}
	if len(def.Stages) > 0 {
		clone.Stages = make([]StageRef, len(def.Stages))
		for i, ref := range def.Stages {
			clone.Stages[i] = ref.Clone()
		}
	}
	return clone
}

// Validate ensures the pipeline definition is self-consistent.
func (def PipelineDefinition) Validate() error {
	if def.ID == "" {
		return fmt.Errorf("pipeline: id is required")
	}
	if len(def.Stages) == 0 {
		return fmt.Errorf("pipeline %s: at least one stage is required", def.ID)
	}
	seen := map[string]struct{}{}
	for idx, ref := range def.Stages {
		if err := ref.Validate(); err != nil {
			return fmt.Errorf("pipeline %s stage[%d]: %w", def.ID, idx, err)
		}
		instanceID := ref.InstanceID()
		if _, exists := seen[instanceID]; exists {
			return fmt.Errorf("pipeline %s: duplicate stage instance id %s", def.ID, instanceID)
		}
		seen[instanceID] = struct{}{}
	}
	return nil
}

// Normalized clones the definition, trims identifiers, and validates the result.
func (def PipelineDefinition) Normalized() (PipelineDefinition, error) {
	clone := def.Clone()
	clone.ID = strings.TrimSpace(clone.ID)
	clone.Name = strings.TrimSpace(clone.Name)
	for i := range clone.Stages {
		clone.Stages[i].ID = strings.TrimSpace(clone.Stages[i].ID)
		clone.Stages[i].Module = strings.TrimSpace(clone.Stages[i].Module)
	}
	if err := clone.Validate(); err != nil {
		return PipelineDefinition{}, err
	}
	return clone, nil
}

// StageIDs returns the pipeline-scoped identifiers in declaration order.
func (def PipelineDefinition) StageIDs() []string {
	ids := make([]string, 0, len(def.Stages))
	for _, ref := range def.Stages {
		ids = append(ids, ref.InstanceID())
	}
	return ids
}

// Without returns a copy of the definition minus the named optional stages.
// Skipping a required stage is an error.
func (def PipelineDefinition) Without(skip ...string) (PipelineDefinition, error) {
	if len(skip) == 0 {
		return def.Clone(), nil
	}
	drop := map[string]bool{}
	for _, id := range skip {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			drop[trimmed] = true
		}
	}
	clone := def.Clone()
	clone.Stages = clone.Stages[:0]
	for _, ref := range def.Stages {
		id := ref.InstanceID()
		if !drop[id] {
			clone.Stages = append(clone.Stages, ref.Clone())
			continue
		}
		if !ref.Optional {
			return PipelineDefinition{}, fmt.Errorf("pipeline %s: stage %s is required and cannot be skipped", def.ID, id)
		}
		delete(drop, id)
	}
	for _, id := range skip {
		if drop[strings.TrimSpace(id)] {
			return PipelineDefinition{}, fmt.Errorf("pipeline %s: unknown stage %s", def.ID, strings.TrimSpace(id))
		}
	}
	return clone, nil
}

// StageRef describes how a pipeline composes and configures a stage module.
type StageRef struct {
	ID          string      `json:"id,omitempty" yaml:"id,omitempty"`
	Module      string      `json:"module" yaml:"module"`
	Name        string      `json:"name,omitempty" yaml:"name,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Config      StageConfig `json:"config,omitempty" yaml:"config,omitempty"`
	Optional    bool        `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Clone returns a deep copy of the stage reference.
func (ref StageRef) Clone() StageRef {
	clone := ref
	if len(ref.Config) > 0 {
		clone.Config = ref.Config.Clone()
	}
	return clone
}

// StageConfig carries stage-specific overrides (opaque to the runner).
type StageConfig map[string]any

// Clone returns a shallow copy of the config map.
func (cfg StageConfig) Clone() StageConfig {
	if len(cfg) == 0 {
		return nil
	}
	clone := make(StageConfig, len(cfg))
	for key, value := range cfg {
		clone[key] = value
	}
	return clone
}

// InstanceID returns the pipeline-local identifier.
func (ref StageRef) InstanceID() string {
	if ref.ID != "" {
		return ref.ID
	}
	return ref.Module
}

// Validate ensures the reference is usable.
func (ref StageRef) Validate() error {
	if ref.Module == "" {
		return fmt.Errorf("pipeline: module id is required")
	}
	return nil
}

func cloneStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	clone := make(map[string]string, len(values))
	for key, value := range values {
		clone[key] = value
	}
	return clone
}
