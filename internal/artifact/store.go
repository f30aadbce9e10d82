package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kingrea/claimflow/internal/claim"
	"github.com/kingrea/claimflow/internal/table"
	"github.com/kingrea/claimflow/internal/workflow"
)

// Store manages artifact IO for one job.
type Store struct {
	job *workflow.Job
}

// NewStore builds a store for a job.
func NewStore(job *workflow.Job) *Store {
	return &Store{job: job}
}

// Job returns the job the store is bound to.
func (s *Store) Job() *workflow.Job {
	return s.job
}

// Path resolves ref for the store's job.
func (s *Store) Path(ref ArtifactRef) string {
	return ref.Path(s.job)
}

// Exists reports whether the artifact is present and ready.
func (s *Store) Exists(ref ArtifactRef) bool {
	result, err := s.Check(ref)
	return err == nil && result.State == StateReady
}

// Check inspects the artifact on disk and returns its state.
func (s *Store) Check(ref ArtifactRef) (CheckResult, error) {
	path := ref.Path(s.job)
	if path == "" {
		err := fmt.Errorf("artifact: %s path could not be resolved", ref.ID)
		return CheckResult{Ref: ref, Path: path, State: StateError, Err: err}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CheckResult{Ref: ref, Path: path, State: StateMissing}, nil
		}
		return CheckResult{Ref: ref, Path: path, State: StateError, Err: err}, err
	}
	switch ref.Kind {
	case KindDirectory:
		if !info.IsDir() {
			return invalidResult(ref, path, fmt.Errorf("artifact: expected directory"))
		}
	case KindTable:
		if info.IsDir() {
			return invalidResult(ref, path, fmt.Errorf("artifact: expected file got directory"))
		}
		if _, err := table.ReadFile(path); err != nil {
			return invalidResult(ref, path, err)
		}
	case KindJSON:
		if info.IsDir() {
			return invalidResult(ref, path, fmt.Errorf("artifact: expected file got directory"))
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return CheckResult{Ref: ref, Path: path, State: StateError, Err: readErr}, readErr
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return invalidResult(ref, path, err)
		}
	default:
		if info.IsDir() {
			return invalidResult(ref, path, fmt.Errorf("artifact: expected file got directory"))
		}
	}
	return CheckResult{Ref: ref, Path: path, State: StateReady}, nil
}

// ReadTable loads a table artifact. A missing file wraps
// claim.ErrMissingInput and an undecodable one claim.ErrMalformedInput.
func (s *Store) ReadTable(ref ArtifactRef) (*table.Table, error) {
	path := ref.Path(s.job)
	if path == "" {
		return nil, fmt.Errorf("artifact: %s path could not be resolved", ref.ID)
	}
	t, err := table.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("artifact: %s (%s): %w", ref.Name, path, claim.ErrMissingInput)
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, fmt.Errorf("artifact: %s: %w", ref.Name, err)
		}
		return nil, fmt.Errorf("artifact: %s: %w: %v", ref.Name, claim.ErrMalformedInput, err)
	}
	return t, nil
}

// WriteTable replaces the table artifact atomically.
func (s *Store) WriteTable(ref ArtifactRef, t *table.Table) error {
	path := ref.Path(s.job)
	if path == "" {
		return fmt.Errorf("artifact: %s path could not be resolved", ref.ID)
	}
	if err := t.WriteFile(path); err != nil {
		return fmt.Errorf("artifact: write %s: %w", ref.ID, err)
	}
	return nil
}

// ReadDocument loads a JSON document. A missing or unparseable document is
// not an error: it yields an empty document and a warning so callers can
// continue with defaults.
func (s *Store) ReadDocument(ref ArtifactRef) (claim.Document, claim.Warnings, error) {
	var warnings claim.Warnings
	path := ref.Path(s.job)
	if path == "" {
		return nil, nil, fmt.Errorf("artifact: %s path could not be resolved", ref.ID)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			warnings.Addf("missing %s (%s), using defaults", ref.Name, path)
			return claim.Document{}, warnings, nil
		}
		return nil, nil, fmt.Errorf("artifact: read %s: %w", ref.ID, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var doc claim.Document
	if err := decoder.Decode(&doc); err != nil {
		warnings.Addf("could not parse %s (%s): %v", ref.Name, path, err)
		return claim.Document{}, warnings, nil
	}
	if doc == nil {
		doc = claim.Document{}
	}
	return doc, warnings, nil
}

// WriteDocument encodes value as indented JSON and replaces the artifact.
func (s *Store) WriteDocument(ref ArtifactRef, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: encode json for %s: %w", ref.ID, err)
	}
	return s.WriteBytes(ref, append(encoded, '\n'))
}

// WriteBytes replaces a file artifact with data.
func (s *Store) WriteBytes(ref ArtifactRef, data []byte) error {
	path := ref.Path(s.job)
	if path == "" {
		return fmt.Errorf("artifact: %s path could not be resolved", ref.ID)
	}
	if err := table.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("artifact: write %s: %w", ref.ID, err)
	}
	return nil
}

// EnsureDir creates a directory artifact.
func (s *Store) EnsureDir(ref ArtifactRef) error {
	path := ref.Path(s.job)
	if path == "" {
		return fmt.Errorf("artifact: %s path could not be resolved", ref.ID)
	}
	return os.MkdirAll(path, 0o755)
}

func invalidResult(ref ArtifactRef, path string, err error) (CheckResult, error) {
	return CheckResult{Ref: ref, Path: path, State: StateInvalid, Err: err}, err
}
