// Package artifact defines the files stages exchange. Each artifact has a
// stable identifier, a kind, and a resolver that maps it onto the job's
// data/ or out/ folder.

package artifact

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/kingrea/claimflow/internal/workflow"
)

// Kind captures the storage shape of an artifact.
type Kind string

const (
	// KindTable is a header-first CSV table.
	KindTable Kind = "table"
	// KindJSON is a JSON object document.
	KindJSON Kind = "json"
	// KindWorkbook is an .xlsx workbook.
	KindWorkbook Kind = "workbook"
	// KindHTML is a rendered HTML page.
	KindHTML Kind = "html"
	// KindDirectory is a directory that must exist.
	KindDirectory Kind = "directory"
)

// PathResolver returns the fully-qualified path to an artifact for a job.
type PathResolver func(*workflow.Job) string

// ArtifactRef declares a stable identifier and metadata for an artifact.
type ArtifactRef struct {
	ID          string
	Name        string
	Description string
	Kind        Kind
	Optional    bool
	path        PathResolver
}

// Path resolves the artifact path for the provided job.
func (r ArtifactRef) Path(job *workflow.Job) string {
	if job == nil || r.path == nil {
		return ""
	}
	return filepath.Clean(r.path(job))
}

// Validate ensures the reference is well-formed.
func (r ArtifactRef) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("artifact: id is required")
	}
	if r.Kind == "" {
		return fmt.Errorf("artifact: kind is required for %s", r.ID)
	}
	if r.path == nil {
		return fmt.Errorf("artifact: path resolver missing for %s", r.ID)
	}
	return nil
}

// State captures the readiness of an artifact on disk.
type State string

const (
	StateMissing State = "missing"
	StateReady   State = "ready"
	StateInvalid State = "invalid"
	StateError   State = "error"
)

// CheckResult captures Store.Check results.
type CheckResult struct {
	Ref   ArtifactRef
	Path  string
	State State
	Err   error
}

// helper to register global references
func register(ref ArtifactRef) ArtifactRef {
	if refs == nil {
		refs = map[string]ArtifactRef{}
	}
	refs[ref.ID] = ref
	return ref
}

var refs map[string]ArtifactRef

// Lookup returns a registered artifact reference by ID.
func Lookup(id string) (ArtifactRef, bool) {
	ref, ok := refs[id]
	return ref, ok
}

// All returns every registered reference sorted by ID.
func All() []ArtifactRef {
	out := make([]ArtifactRef, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func newRef(kind Kind, id, name, desc string, resolver PathResolver) ArtifactRef {
	return ArtifactRef{
		ID:          id,
		Name:        name,
		Description: desc,
		Kind:        kind,
		path:        resolver,
	}
}

func optional(ref ArtifactRef) ArtifactRef {
	ref.Optional = true
	return ref
}

// Claim context documents.
var (
	JobMetadata      = register(newRef(KindJSON, "job-metadata", "Job Metadata", "job_metadata.json written by intake", (*workflow.Job).JobMetadataPath))
	PolicySummary    = register(newRef(KindJSON, "policy-summary", "Policy Summary", "policy_summary.json with parsed coverage flags", (*workflow.Job).PolicySummaryPath))
	ClaimAssumptions = register(newRef(KindJSON, "claim-assumptions", "Claim Assumptions", "claim_assumptions.json with peril-derived booleans", (*workflow.Job).ClaimAssumptionsPath))
)

// Room data.
var (
	ManualRoomDims    = register(optional(newRef(KindTable, "manual-room-dims", "Manual Room Dimensions", "Hand-entered Room Name, Width (ft), Length (ft)", (*workflow.Job).ManualRoomDimsPath)))
	OCRRooms          = register(optional(newRef(KindTable, "ocr-rooms", "OCR Room Names", "Room names read off the floorplan image", (*workflow.Job).OCRRoomsPath)))
	RoomData          = register(newRef(KindTable, "room-data", "Floorplan Room Data", "Room Name, Room ID, Ceiling Height (mm), Wall IDs", (*workflow.Job).RoomDataPath))
	RoomDataMerged    = register(optional(newRef(KindTable, "room-data-merged", "Dimensioned Room Data", "Room, Width (ft), Length (ft), Area (ft²)", (*workflow.Job).RoomDataMergedPath)))
	RoomDataValidated = register(optional(newRef(KindTable, "room-data-validated", "Room Validation Report", "Floorplan rooms checked against OCR names", (*workflow.Job).RoomDataValidatedPath)))
)

// Estimate tables.
var (
	Estimate          = register(newRef(KindTable, "estimate", "Initial Estimate", "estimate_xact.csv from the generator", (*workflow.Job).EstimatePath))
	EstimateMerged    = register(newRef(KindTable, "estimate-merged", "Merged Estimate", "estimate_xact_merged.csv with room attributes", (*workflow.Job).MergedPath))
	EstimateFinal     = register(newRef(KindTable, "estimate-final", "Policy-Final Estimate", "estimate_xact_final.csv with policy notes", (*workflow.Job).FinalPath))
	PolicyQA          = register(newRef(KindTable, "policy-qa", "Policy QA", "estimate_policy_QA.csv with removed items", (*workflow.Job).QAPath))
	EstimateWithNotes = register(newRef(KindTable, "estimate-with-notes", "Justified Estimate", "estimate_xact_with_notes.csv with units and justifications", (*workflow.Job).WithNotesPath))
	ImportCSV         = register(newRef(KindTable, "import-csv", "Import CSV", "estimate_xact_import.csv for the estimating tool", (*workflow.Job).ImportCSVPath))
	ImportXLSX        = register(optional(newRef(KindWorkbook, "import-xlsx", "Import Workbook", "estimate_xact_import.xlsx mirroring the import CSV", (*workflow.Job).ImportXLSXPath)))
	Preview           = register(newRef(KindHTML, "preview", "Estimate Preview", "estimate_preview.html", (*workflow.Job).PreviewPath))
	Archive           = register(newRef(KindDirectory, "archive", "Output Archive", "out/<job>/archive with one folder per run", (*workflow.Job).ArchiveDir))
)
