// internal/config/config.go
//
// This package handles configuration and the .claimflow directory structure.
// Every project that runs claimflow gets a .claimflow/ folder in its root
// holding config.yaml and the process logs. Job inputs live under data/<job>
// and stage outputs under out/<job> unless config.yaml says otherwise.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ClaimflowDir is the name of the directory we create in each project
	ClaimflowDir = ".claimflow"

	// DefaultJobID is used when a command is invoked without a job identifier.
	DefaultJobID = "job-0001"

	defaultDataDir = "data"
	defaultOutDir  = "out"
)

// Environment overrides, applied after config.yaml is read.
const (
	EnvLogLevel   = "CLAIMFLOW_LOG_LEVEL"
	EnvDefaultJob = "CLAIMFLOW_DEFAULT_JOB"
)

const defaultProjectConfigYAML = `# claimflow project configuration
version: 1

# Job used when no job id is passed on the command line.
default_job: job-0001

# Where job inputs (job_metadata.json, policy_summary.json, ...) and stage
# outputs are stored. Relative paths resolve against the project root.
data_dir: data
out_dir: out

# Optional overrides for the built-in line-item templates and pipeline.
# templates: config/templates.yaml
# pipeline: config/pipeline.yaml

log:
  level: info
  format: console

export:
  xlsx: true
`

// LogConfig controls the zap logger built by the CLI.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ExportConfig toggles the optional export targets.
type ExportConfig struct {
	XLSX bool `yaml:"xlsx"`
}

// ProjectConfig models .claimflow/config.yaml.
type ProjectConfig struct {
	Version    int          `yaml:"version"`
	DefaultJob string       `yaml:"default_job"`
	DataDir    string       `yaml:"data_dir"`
	OutDir     string       `yaml:"out_dir"`
	Templates  string       `yaml:"templates,omitempty"`
	Pipeline   string       `yaml:"pipeline,omitempty"`
	Log        LogConfig    `yaml:"log"`
	Export     ExportConfig `yaml:"export"`
}

// Config holds the runtime configuration for claimflow.
type Config struct {
	// ProjectDir is the directory claimflow was pointed at (--root or cwd)
	ProjectDir string

	// ClaimflowProjectDir is ProjectDir/.claimflow
	ClaimflowProjectDir string

	Project ProjectConfig
}

// InitProjectDir creates the .claimflow directory structure in the given
// project directory and seeds config.yaml when it does not exist yet.
//
// Structure created:
// .claimflow/
// ├── config.yaml
// └── logs/         <- process logs (claimflow.log)
func InitProjectDir(projectDir string) error {
	root := filepath.Join(projectDir, ClaimflowDir)
	if err := os.MkdirAll(filepath.Join(root, "logs"), 0o755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(root, "config.yaml"))
}

// NewConfig creates a new Config instance populated with project settings.
func NewConfig(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve project dir: %w", err)
	}
	cfg := &Config{
		ProjectDir:          abs,
		ClaimflowProjectDir: filepath.Join(abs, ClaimflowDir),
		Project:             defaultProjectConfig(),
	}
	cfg.Project.normalize(abs)
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.ClaimflowProjectDir, "logs")
}

// LogFilePath returns the process log written by the zap file core.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.LogsDir(), "claimflow.log")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.ClaimflowProjectDir, "config.yaml")
}

// DataRoot returns the directory holding per-job input folders.
func (c *Config) DataRoot() string {
	return c.Project.DataDir
}

// OutRoot returns the directory holding per-job output folders.
func (c *Config) OutRoot() string {
	return c.Project.OutDir
}

// TemplatesPath returns the custom line-item template file, or "" for the built-in set.
func (c *Config) TemplatesPath() string {
	return c.Project.Templates
}

// PipelinePath returns the custom pipeline definition, or "" for the built-in pipeline.
func (c *Config) PipelinePath() string {
	return c.Project.Pipeline
}

// DefaultJob returns the configured default job identifier.
func (c *Config) DefaultJob() string {
	return c.Project.DefaultJob
}

// ResolveJob picks the job identifier from positional args, falling back to
// the configured default.
func (c *Config) ResolveJob(args []string) string {
	if len(args) > 0 {
		if id := strings.TrimSpace(args[0]); id != "" {
			return filepath.Base(id)
		}
	}
	return c.DefaultJob()
}

// SetDefaultJob updates the default job and persists it to config.yaml.
func (c *Config) SetDefaultJob(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("config: job id is required")
	}
	c.Project.DefaultJob = id
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func (c *Config) applyEnv() {
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		c.Project.Log.Level = strings.ToLower(level)
	}
	if job := strings.TrimSpace(os.Getenv(EnvDefaultJob)); job != "" {
		c.Project.DefaultJob = job
	}
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:    1,
		DefaultJob: DefaultJobID,
		DataDir:    defaultDataDir,
		OutDir:     defaultOutDir,
		Log:        LogConfig{Level: "info", Format: "console"},
		Export:     ExportConfig{XLSX: true},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.DefaultJob) == "" {
		pc.DefaultJob = DefaultJobID
	}
	if strings.TrimSpace(pc.DataDir) == "" {
		pc.DataDir = defaultDataDir
	}
	if strings.TrimSpace(pc.OutDir) == "" {
		pc.OutDir = defaultOutDir
	}
	if strings.TrimSpace(pc.Log.Level) == "" {
		pc.Log.Level = "info"
	}
	if strings.TrimSpace(pc.Log.Format) == "" {
		pc.Log.Format = "console"
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.DefaultJob = strings.TrimSpace(pc.DefaultJob)
	pc.DataDir = resolvePath(base, pc.DataDir)
	pc.OutDir = resolvePath(base, pc.OutDir)
	pc.Templates = resolvePath(base, pc.Templates)
	pc.Pipeline = resolvePath(base, pc.Pipeline)
	pc.Log.Level = strings.ToLower(strings.TrimSpace(pc.Log.Level))
	pc.Log.Format = strings.ToLower(strings.TrimSpace(pc.Log.Format))
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.DefaultJob == "" {
		return fmt.Errorf("default_job is required")
	}
	if strings.ContainsAny(pc.DefaultJob, `/\`) {
		return fmt.Errorf("default_job must be a bare job id, got %q", pc.DefaultJob)
	}
	switch pc.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	switch pc.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be 'console' or 'json'")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize(c.ProjectDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.ClaimflowProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure claimflow dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
