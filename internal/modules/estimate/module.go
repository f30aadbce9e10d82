package estimate

import (
	"fmt"
	"strings"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/catalog"
	"github.com/kingrea/claimflow/internal/claim"
	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/modules/runtime"
)

const (
	moduleID      = "estimate"
	moduleVersion = "1.0.0"
)

// Module generates estimate_xact.csv.
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
		Name:        "Scope Estimate",
		Description: "Generates the initial line items from the claim context and room list.",
		Version:     moduleVersion,
	}
	base := module.NewBase(info)
	base.SetInputs(artifact.JobMetadata, artifact.PolicySummary, artifact.ClaimAssumptions, artifact.RoomDataMerged, artifact.RoomData)
	base.SetOutputs(artifact.Estimate)
	return &Module{Base: &base}
}

// Run writes the initial estimate.
func (m *Module) Run(ctx *module.ModuleContext) (module.Result, error) {
	if err := runtime.ValidateContext(moduleID, ctx); err != nil {
		return module.Failed(err)
	}
	claimCtx, warnings, err := runtime.LoadClaimContext(ctx)
	if err != nil {
		return runtime.Fail(ctx, moduleID, fmt.Errorf("%s: %w", moduleID, err))
	}
	rooms, roomWarnings, err := loadRooms(ctx)
	if err != nil {
		return runtime.Fail(ctx, moduleID, err)
	}
	warnings.Extend(roomWarnings)

	items := Generate(claimCtx, rooms, ctx.Catalog)
	if len(items) == 0 {
		warnings.Addf("no line items generated for cause %q", claimCtx.CauseOfLoss)
	}
	out := claim.ItemsToTable(claim.EstimateHeader(), items)
	if err := runtime.WriteTable(moduleID, ctx, artifact.Estimate, out); err != nil {
		return runtime.Fail(ctx, moduleID, err)
	}
	return runtime.Complete(ctx, moduleID, len(items), warnings, "generated %d line items for %d rooms", len(items), len(rooms)), nil
}

func loadRooms(ctx *module.ModuleContext) ([]string, claim.Warnings, error) {
	var warnings claim.Warnings
	for _, ref := range []artifact.ArtifactRef{artifact.RoomDataMerged, artifact.RoomData} {
		result, _ := ctx.Artifacts.Check(ref)
		if result.State == artifact.StateMissing {
			continue
		}
		t, err := runtime.ReadTable(moduleID, ctx, ref)
		if err != nil {
			return nil, warnings, err
		}
		return claim.RoomNames(t), warnings, nil
	}
	warnings.Addf("no room data found; only cause and coverage items generated")
	return nil, warnings, nil
}

// Generate composes the line items for a claim. Cause items come first,
// then coverage items, then the per-room items in room order.
func Generate(ctx claim.Context, rooms []string, cat *catalog.Catalog) []claim.LineItem {
	var items []claim.LineItem
	if tmpl, ok := cat.Cause(string(ctx.CauseOfLoss)); ok && causeApplies(tmpl, ctx) {
		items = appendTemplates(items, tmpl.Items, "")
	}
	if ctx.MoldRemediationNeeded {
		items = appendTemplates(items, cat.Coverage.MoldRemediation, "")
	}
	if ctx.Policy.ALECoverage {
		items = appendTemplates(items, cat.Coverage.ALE, "")
	}
	if ctx.Policy.OrdinanceAndLaw {
		items = appendTemplates(items, cat.Coverage.OrdinanceAndLaw, "")
	}
	for _, room := range rooms {
		items = appendTemplates(items, cat.PerRoom, room)
	}
	return items
}

func causeApplies(tmpl catalog.CauseTemplate, ctx claim.Context) bool {
	if tmpl.RequireWaterHeight && ctx.WaterHeightIn() <= 0 {
		return false
	}
	if tmpl.RequireNote != "" && !strings.Contains(strings.ToLower(ctx.AssumptionNotes), strings.ToLower(tmpl.RequireNote)) {
		return false
	}
	return true
}

func appendTemplates(items []claim.LineItem, templates []catalog.ItemTemplate, room string) []claim.LineItem {
	for _, tmpl := range templates {
		itemRoom := tmpl.Room
		if room != "" {
			itemRoom = room
		}
		items = append(items, claim.LineItem{
			Room:        itemRoom,
			Code:        tmpl.Code,
			Description: tmpl.Description,
			Quantity:    claim.FormatQuantity(tmpl.Quantity),
		})
	}
	return items
}
