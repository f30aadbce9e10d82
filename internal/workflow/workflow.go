// internal/workflow/workflow.go
//
// Defines the per-job directory structure and file constants.
// Inputs produced by intake and upstream collaborators live in data/<job>/,
// every stage writes its tables into out/<job>/.

package workflow

import (
	"os"
	"path/filepath"
	"strings"
)

// Claim context documents (in data/<job>/)
const (
	FileJobMetadata      = "job_metadata.json"
	FilePolicySummary    = "policy_summary.json"
	FileClaimAssumptions = "claim_assumptions.json"
)

// Room data sources and products (in out/<job>/, prefixed with the job id)
const (
	suffixRoomData          = "_room_data.csv"
	suffixRoomDataMerged    = "_room_data_merged.csv"
	suffixRoomDataValidated = "_room_data_validated.csv"
	suffixManualRoomDims    = "_manual_room_dims.csv"
	suffixOCRRooms          = "_ocr_rooms.csv"
)

// Estimate tables (in out/<job>/)
const (
	FileEstimate          = "estimate_xact.csv"
	FileEstimateMerged    = "estimate_xact_merged.csv"
	FileEstimateFinal     = "estimate_xact_final.csv"
	FilePolicyQA          = "estimate_policy_QA.csv"
	FileEstimateWithNotes = "estimate_xact_with_notes.csv"
	FileImportCSV         = "estimate_xact_import.csv"
	FileImportXLSX        = "estimate_xact_import.xlsx"
	FilePreview           = "estimate_preview.html"
)

// Bookkeeping (in out/<job>/)
const (
	FileRunLog   = "run.log"
	ArchiveDir   = "archive"
	StateDir     = ".state"
	FileRunState = "run.json"
)

// Job manages the directory structure of a single claim job
type Job struct {
	id      string
	dataDir string
	outDir  string
}

// New creates a job layout rooted at the given data and output roots.
func New(id, dataRoot, outRoot string) *Job {
	id = strings.TrimSpace(id)
	return &Job{
		id:      id,
		dataDir: filepath.Join(dataRoot, id),
		outDir:  filepath.Join(outRoot, id),
	}
}

// ID returns the job identifier (e.g. job-0001).
func (j *Job) ID() string {
	return j.id
}

// DataDir returns data/<job>/
func (j *Job) DataDir() string {
	return j.dataDir
}

// OutDir returns out/<job>/
func (j *Job) OutDir() string {
	return j.outDir
}

// JobMetadataPath returns the intake document path
func (j *Job) JobMetadataPath() string {
	return filepath.Join(j.dataDir, FileJobMetadata)
}

// PolicySummaryPath returns the parsed policy summary path
func (j *Job) PolicySummaryPath() string {
	return filepath.Join(j.dataDir, FilePolicySummary)
}

// ClaimAssumptionsPath returns the peril assumptions path
func (j *Job) ClaimAssumptionsPath() string {
	return filepath.Join(j.dataDir, FileClaimAssumptions)
}

// RoomDataPath returns the floorplan room export (<job>_room_data.csv)
func (j *Job) RoomDataPath() string {
	return filepath.Join(j.outDir, j.id+suffixRoomData)
}

// RoomDataMergedPath returns the dimensioned room table (<job>_room_data_merged.csv)
func (j *Job) RoomDataMergedPath() string {
	return filepath.Join(j.outDir, j.id+suffixRoomDataMerged)
}

// RoomDataValidatedPath returns the OCR validation report
func (j *Job) RoomDataValidatedPath() string {
	return filepath.Join(j.outDir, j.id+suffixRoomDataValidated)
}

// ManualRoomDimsPath returns the hand-entered room dimensions
func (j *Job) ManualRoomDimsPath() string {
	return filepath.Join(j.outDir, j.id+suffixManualRoomDims)
}

// OCRRoomsPath returns the OCR room-name table
func (j *Job) OCRRoomsPath() string {
	return filepath.Join(j.outDir, j.id+suffixOCRRooms)
}

// EstimatePath returns estimate_xact.csv
func (j *Job) EstimatePath() string {
	return filepath.Join(j.outDir, FileEstimate)
}

// MergedPath returns estimate_xact_merged.csv
func (j *Job) MergedPath() string {
	return filepath.Join(j.outDir, FileEstimateMerged)
}

// FinalPath returns estimate_xact_final.csv
func (j *Job) FinalPath() string {
	return filepath.Join(j.outDir, FileEstimateFinal)
}

// QAPath returns estimate_policy_QA.csv
func (j *Job) QAPath() string {
	return filepath.Join(j.outDir, FilePolicyQA)
}

// WithNotesPath returns estimate_xact_with_notes.csv
func (j *Job) WithNotesPath() string {
	return filepath.Join(j.outDir, FileEstimateWithNotes)
}

// ImportCSVPath returns estimate_xact_import.csv
func (j *Job) ImportCSVPath() string {
	return filepath.Join(j.outDir, FileImportCSV)
}

// ImportXLSXPath returns estimate_xact_import.xlsx
func (j *Job) ImportXLSXPath() string {
	return filepath.Join(j.outDir, FileImportXLSX)
}

// PreviewPath returns estimate_preview.html
func (j *Job) PreviewPath() string {
	return filepath.Join(j.outDir, FilePreview)
}

// ArchiveDir returns out/<job>/archive
func (j *Job) ArchiveDir() string {
	return filepath.Join(j.outDir, ArchiveDir)
}

// RunLogPath returns the per-job journal
func (j *Job) RunLogPath() string {
	return filepath.Join(j.outDir, FileRunLog)
}

// RunStatePath returns the persisted state of the last pipeline run
func (j *Job) RunStatePath() string {
	return filepath.Join(j.outDir, StateDir, FileRunState)
}

// Initialize creates the job directory structure
func (j *Job) Initialize() error {
	for _, dir := range []string{j.dataDir, j.outDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether the job's data directory is present.
func (j *Job) Exists() bool {
	info, err := os.Stat(j.dataDir)
	return err == nil && info.IsDir()
}
