package workflow

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed pipeline.yaml
var defaultPipelineYAML []byte

// DefaultPipelineID identifies the built-in claim pipeline.
const DefaultPipelineID = "claim-estimate"

// ParseDefinitionYAML decodes a pipeline definition from YAML/JSON bytes.
func ParseDefinitionYAML(data []byte) (PipelineDefinition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return PipelineDefinition{}, fmt.Errorf("pipeline: definition payload is empty")
	}
	var def PipelineDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return PipelineDefinition{}, fmt.Errorf("pipeline: decode definition: %w", err)
	}
	return def.Normalized()
}

// LoadDefinitionReader reads pipeline definition data from an io.Reader.
func LoadDefinitionReader(r io.Reader) (PipelineDefinition, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return PipelineDefinition{}, fmt.Errorf("pipeline: read definition: %w", err)
	}
	return ParseDefinitionYAML(content)
}

// LoadDefinitionFile loads a pipeline definition from an explicit file path.
func LoadDefinitionFile(path string) (PipelineDefinition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return PipelineDefinition{}, fmt.Errorf("pipeline: read %s: %w", path, err)
	}
	def, parseErr := ParseDefinitionYAML(content)
	if parseErr != nil {
		return PipelineDefinition{}, fmt.Errorf("pipeline: %s: %w", path, parseErr)
	}
	return def, nil
}

// DefaultDefinition returns the built-in stage ordering.
func DefaultDefinition() PipelineDefinition {
	def, err := ParseDefinitionYAML(defaultPipelineYAML)
	if err != nil {
		panic(fmt.Sprintf("pipeline: embedded definition invalid: %v", err))
	}
	return def
}

// LoadDefinition loads path when set, otherwise the built-in pipeline.
func LoadDefinition(path string) (PipelineDefinition, error) {
	if path == "" {
		return DefaultDefinition(), nil
	}
	return LoadDefinitionFile(path)
}
