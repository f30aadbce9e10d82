package collect

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/claim"
	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/modules/runtime"
)

const (
	moduleID      = "collect"
	moduleVersion = "1.0.0"

	// ManifestName is the manifest written into each archive folder.
	ManifestName = "manifest.json"
)

// Archived lists the artifacts copied into an archive folder, in order.
func Archived() []artifact.ArtifactRef {
	return []artifact.ArtifactRef{
		artifact.JobMetadata,
		artifact.PolicySummary,
		artifact.ClaimAssumptions,
		artifact.RoomData,
		artifact.RoomDataMerged,
		artifact.RoomDataValidated,
		artifact.Estimate,
		artifact.EstimateMerged,
		artifact.EstimateFinal,
		artifact.PolicyQA,
		artifact.EstimateWithNotes,
		artifact.ImportCSV,
		artifact.ImportXLSX,
		artifact.Preview,
	}
}

// Option customizes the collect module.
type Option func(*Module)

// Module copies the job outputs into a per-run archive folder.
type Module struct {
	*module.Base
	now func() time.Time
}

// Register installs the module factory into the provided registry.
func Register(reg *module.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(moduleID, func(module.Config) (module.Module, error) {
		return New(), nil
	})
}

// New constructs the module with optional overrides.
func New(opts ...Option) *Module {
	info := module.Info{
		ID:          moduleID,
		Name:        "Collect Outputs",
		Description: "Archives the job's tables and pages under archive/<run-id>.",
		Version:     moduleVersion,
	}
	base := module.NewBase(info)
	base.SetInputs(Archived()...)
	base.SetOutputs(artifact.Archive)
	mod := &Module{Base: &base, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(mod)
		}
	}
	return mod
}

// WithClock overrides the timestamp source (tests).
func WithClock(clock func() time.Time) Option {
	return func(m *Module) {
		if clock != nil {
			m.now = clock
		}
	}
}

// Manifest describes one archive folder.
type Manifest struct {
	RunID     string  `json:"run_id"`
	Job       string  `json:"job"`
	CreatedAt string  `json:"created_at"`
	Files     []Entry `json:"files"`
}

// Entry is one archived file.
type Entry struct {
	Artifact string `json:"artifact"`
	Name     string `json:"name"`
	SHA256   string `json:"sha256"`
}

// Run copies every existing artifact into a fresh archive folder.
func (m *Module) Run(ctx *module.ModuleContext) (module.Result, error) {
	if err := runtime.ValidateContext(moduleID, ctx); err != nil {
		return module.Failed(err)
	}
	now := m.now().UTC()
	runID := ctx.RunID
	if runID == "" {
		runID = now.Format("20060102-150405")
	}
	dest := filepath.Join(ctx.Artifacts.Path(artifact.Archive), runID)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return runtime.Fail(ctx, moduleID, fmt.Errorf("%s: create archive dir: %w", moduleID, err))
	}

	manifest := Manifest{RunID: runID, Job: ctx.Job.ID(), CreatedAt: now.Format(time.RFC3339)}
	var warnings claim.Warnings
	for _, ref := range Archived() {
		src := ctx.Artifacts.Path(ref)
		name := filepath.Base(src)
		sum, err := copyFile(src, filepath.Join(dest, name))
		if errors.Is(err, os.ErrNotExist) {
			if !ref.Optional && ref.Kind == artifact.KindTable {
				warnings.Addf("%s not produced; nothing to archive", name)
			}
			continue
		}
		if err != nil {
			return runtime.Fail(ctx, moduleID, fmt.Errorf("%s: %w", moduleID, err))
		}
		manifest.Files = append(manifest.Files, Entry{Artifact: ref.ID, Name: name, SHA256: sum})
	}
	if err := writeManifest(filepath.Join(dest, ManifestName), manifest); err != nil {
		return runtime.Fail(ctx, moduleID, fmt.Errorf("%s: %w", moduleID, err))
	}
	return runtime.Complete(ctx, moduleID, len(manifest.Files), warnings,
		"archived %d files into %s", len(manifest.Files), filepath.Join(artifact.Archive.Path(ctx.Job), runID)), nil
}

// copyFile copies src to dst and returns the hex SHA-256 of the content.
// A missing src returns an error wrapping os.ErrNotExist.
func copyFile(src, dst string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", src, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", src)
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, hash), in); err != nil {
		out.Close()
		return "", fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", dst, err)
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
