package room_data

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/claim"
	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/modules/runtime"
	"github.com/kingrea/claimflow/internal/table"
)

const (
	moduleID      = "room-data"
	moduleVersion = "1.0.0"

	validatedMark   = "✅"
	unvalidatedMark = "❌"
)

// Module prepares the job's room tables.
type Module struct {
	*module.Base
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

// New constructs the module with its IO contracts declared.
func New() *Module {
	info := module.Info{
		ID:          moduleID,
		Name:        "Room Data",
		Description: "Imports manual room dimensions, keeps the floorplan export and validates it against OCR names.",
		Version:     moduleVersion,
	}
	base := module.NewBase(info)
	base.SetInputs(artifact.ManualRoomDims, artifact.OCRRooms)
	base.SetOutputs(artifact.RoomData, artifact.RoomDataMerged, artifact.RoomDataValidated)
	return &Module{Base: &base}
}

// Run prepares every room table the job's sources allow.
func (m *Module) Run(ctx *module.ModuleContext) (module.Result, error) {
	if err := runtime.ValidateContext(moduleID, ctx); err != nil {
		return module.Failed(err)
	}
	var warnings claim.Warnings
	rooms := 0

	if fileExists(ctx, artifact.ManualRoomDims) {
		manual, err := runtime.ReadTable(moduleID, ctx, artifact.ManualRoomDims)
		if err != nil {
			return runtime.Fail(ctx, moduleID, err)
		}
		imported, importWarnings, err := ImportDimensions(manual)
		warnings.Extend(importWarnings)
		if err != nil {
			runtime.Report(ctx, moduleID, warnings)
			return runtime.Fail(ctx, moduleID, fmt.Errorf("%s: %w", moduleID, err))
		}
		if err := runtime.WriteTable(moduleID, ctx, artifact.RoomDataMerged, DimensionsTable(imported)); err != nil {
			return runtime.Fail(ctx, moduleID, err)
		}
		rooms = len(imported)
	}

	var floorplan *table.Table
	if fileExists(ctx, artifact.RoomData) {
		loaded, err := runtime.ReadTable(moduleID, ctx, artifact.RoomData)
		if err != nil {
			return runtime.Fail(ctx, moduleID, err)
		}
		if !loaded.HasColumn(claim.ColRoomName) && !loaded.HasColumn(claim.ColRoom) {
			warnings.Addf("floorplan room data has neither %q nor %q column", claim.ColRoomName, claim.ColRoom)
		}
		floorplan = loaded
	} else {
		floorplan = table.New(claim.FloorplanHeader()...)
		if err := runtime.WriteTable(moduleID, ctx, artifact.RoomData, floorplan); err != nil {
			return runtime.Fail(ctx, moduleID, err)
		}
		warnings.Addf("no floorplan room data; wrote an empty room table")
	}
	if rooms == 0 {
		rooms = len(claim.RoomNames(floorplan))
	}

	if fileExists(ctx, artifact.OCRRooms) {
		ocr, err := runtime.ReadTable(moduleID, ctx, artifact.OCRRooms)
		if err != nil {
			return runtime.Fail(ctx, moduleID, err)
		}
		report, validateWarnings := Validate(floorplan, ocr)
		warnings.Extend(validateWarnings)
		if err := runtime.WriteTable(moduleID, ctx, artifact.RoomDataValidated, report); err != nil {
			return runtime.Fail(ctx, moduleID, err)
		}
	}

	return runtime.Complete(ctx, moduleID, rooms, warnings, "%d rooms available", rooms), nil
}

func fileExists(ctx *module.ModuleContext, ref artifact.ArtifactRef) bool {
	result, _ := ctx.Artifacts.Check(ref)
	return result.State == artifact.StateReady || result.State == artifact.StateInvalid
}

// ImportDimensions turns manual dimension rows into rooms. Rows with a blank
// name or unparseable dimensions are skipped with a warning. No usable row
// at all is an error.
func ImportDimensions(t *table.Table) ([]claim.Room, claim.Warnings, error) {
	var warnings claim.Warnings
	var rooms []claim.Room
	for i, row := range t.Rows {
		name := row.Get(claim.ColRoomName, claim.ColRoom)
		width, err := parseFeet(row[claim.ColWidth])
		if err != nil {
			warnings.Addf("skipping manual row %d (%s): width: %v", i+1, strings.TrimSpace(name), err)
			continue
		}
		length, err := parseFeet(row[claim.ColLength])
		if err != nil {
			warnings.Addf("skipping manual row %d (%s): length: %v", i+1, strings.TrimSpace(name), err)
			continue
		}
		room, err := claim.NewRoom(name, width, length)
		if err != nil {
			warnings.Addf("skipping manual row %d: %v", i+1, err)
			continue
		}
		rooms = append(rooms, room)
	}
	if len(rooms) == 0 {
		return nil, warnings, fmt.Errorf("no valid rows in manual room dimensions: %w", claim.ErrMalformedInput)
	}
	return rooms, warnings, nil
}

func parseFeet(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("missing")
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", trimmed)
	}
	return v, nil
}

// DimensionsTable renders rooms as the dimensioned room table.
func DimensionsTable(rooms []claim.Room) *table.Table {
	t := table.New(claim.DimensionsHeader()...)
	for _, room := range rooms {
		t.Append(room.DimensionsRow())
	}
	return t
}

// Validate marks each floorplan room ✅ when an OCR name matches it exactly
// (case-insensitive) and ❌ otherwise, suggesting the closest OCR name for
// misses. OCR entries without any letter are ignored.
func Validate(floorplan, ocr *table.Table) (*table.Table, claim.Warnings) {
	var warnings claim.Warnings
	names := ocrNames(ocr)
	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[name] = true
	}

	report := table.New(floorplan.Header...)
	report.EnsureColumns(claim.ColValidated, claim.ColSuggestedMatch)
	for _, row := range floorplan.Rows {
		out := row.Clone()
		key := claim.RoomKey(row.Get(claim.ColRoomName, claim.ColRoom))
		if known[key] {
			out[claim.ColValidated] = validatedMark
			out[claim.ColSuggestedMatch] = ""
		} else {
			out[claim.ColValidated] = unvalidatedMark
			out[claim.ColSuggestedMatch] = suggest(key, names)
			warnings.Addf("room %s not found in OCR names", key)
		}
		report.Append(out)
	}
	return report, warnings
}

func ocrNames(ocr *table.Table) []string {
	seen := map[string]bool{}
	var names []string
	for _, row := range ocr.Rows {
		name := claim.RoomKey(row.Get(claim.ColRoomName, claim.ColRoom))
		if name == "" || strings.IndexFunc(name, unicode.IsLetter) < 0 || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// suggest returns the best fuzzy match for name among candidates, trying
// name as an abbreviation of a candidate first ("LIV RM" -> "LIVING ROOM")
// and then each candidate as an abbreviation of name.
func suggest(name string, candidates []string) string {
	if name == "" || len(candidates) == 0 {
		return ""
	}
	if matches := fuzzy.Find(name, candidates); len(matches) > 0 {
		return matches[0].Str
	}
	best, bestScore := "", 0
	for _, candidate := range candidates {
		matches := fuzzy.Find(candidate, []string{name})
		if len(matches) > 0 && (best == "" || matches[0].Score > bestScore) {
			best, bestScore = candidate, matches[0].Score
		}
	}
	return best
}
