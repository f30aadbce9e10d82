package merge

import (
	"sort"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/claim"
	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/modules/runtime"
)

const (
	moduleID      = "merge"
	moduleVersion = "1.0.0"
)

// Module writes estimate_xact_merged.csv.
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
		Name:        "Room Merge",
		Description: "Adds room attributes to every line item by room name.",
		Version:     moduleVersion,
	}
	base := module.NewBase(info)
	base.SetInputs(artifact.Estimate, artifact.RoomDataMerged, artifact.RoomData)
	base.SetOutputs(artifact.EstimateMerged)
	return &Module{Base: &base}
}

// Report summarizes a merge.
type Report struct {
	Matched   int
	Unmatched []string
}

// Run merges the estimate with the room table. Both inputs are required.
func (m *Module) Run(ctx *module.ModuleContext) (module.Result, error) {
	if err := runtime.ValidateContext(moduleID, ctx); err != nil {
		return module.Failed(err)
	}
	estimate, err := runtime.ReadTable(moduleID, ctx, artifact.Estimate)
	if err != nil {
		return runtime.Fail(ctx, moduleID, err)
	}
	roomRef := artifact.RoomData
	if ctx.Artifacts.Exists(artifact.RoomDataMerged) {
		roomRef = artifact.RoomDataMerged
	}
	rooms, err := runtime.ReadTable(moduleID, ctx, roomRef)
	if err != nil {
		return runtime.Fail(ctx, moduleID, err)
	}

	idx, warnings := claim.IndexRooms(rooms)
	items, report := Merge(claim.ItemsFromTable(estimate), idx)
	for _, name := range report.Unmatched {
		warnings.Addf("room %q not found in %s", name, roomRef.ID)
	}
	if len(items) == 0 {
		warnings.Addf("estimate has no line items")
	}

	out := claim.ItemsToTable(Header(estimate.Header, idx), items)
	if err := runtime.WriteTable(moduleID, ctx, artifact.EstimateMerged, out); err != nil {
		return runtime.Fail(ctx, moduleID, err)
	}
	return runtime.Complete(ctx, moduleID, len(items), warnings,
		"merged %d line items (%d matched a room)", len(items), report.Matched), nil
}

// Header is the estimate header followed by the room columns it lacks.
func Header(estimate []string, idx *claim.RoomIndex) []string {
	header := append([]string{}, estimate...)
	seen := map[string]bool{}
	for _, col := range header {
		seen[col] = true
	}
	for _, col := range idx.Columns() {
		if !seen[col] {
			header = append(header, col)
			seen[col] = true
		}
	}
	return header
}

// Merge copies matched room columns into each item. Output order and length
// equal the input; unmatched room names are reported once each, sorted.
func Merge(items []claim.LineItem, idx *claim.RoomIndex) ([]claim.LineItem, Report) {
	var report Report
	unmatched := map[string]bool{}
	out := make([]claim.LineItem, 0, len(items))
	for _, item := range items {
		merged := item
		merged.Attrs = item.Attrs.Clone()
		room, ok := idx.Lookup(item.Room)
		if !ok {
			if key := claim.RoomKey(item.Room); key != "" {
				unmatched[key] = true
			}
			out = append(out, merged)
			continue
		}
		report.Matched++
		existing := item.Row()
		for col, value := range room {
			if _, taken := existing[col]; taken {
				continue
			}
			merged.Attrs[col] = value
		}
		out = append(out, merged)
	}
	for name := range unmatched {
		report.Unmatched = append(report.Unmatched, name)
	}
	sort.Strings(report.Unmatched)
	return out, report
}
