package justify

import (
	"fmt"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/claim"
	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/modules/runtime"
	"github.com/kingrea/claimflow/internal/units"
)

const (
	moduleID      = "justify"
	moduleVersion = "1.0.0"
)

// Module writes estimate_xact_with_notes.csv.
type Module struct {
	*module.Base
	policy units.Policy
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
		Name:        "Justifications",
		Description: "Appends units and a justification sentence to every kept line item.",
		Version:     moduleVersion,
	}
	base := module.NewBase(info)
	base.SetInputs(artifact.EstimateFinal)
	base.SetOutputs(artifact.EstimateWithNotes)
	return &Module{Base: &base, policy: units.Justification}
}

// Run annotates the final estimate.
func (m *Module) Run(ctx *module.ModuleContext) (module.Result, error) {
	if err := runtime.ValidateContext(moduleID, ctx); err != nil {
		return module.Failed(err)
	}
	final, err := runtime.ReadTable(moduleID, ctx, artifact.EstimateFinal)
	if err != nil {
		return runtime.Fail(ctx, moduleID, err)
	}
	var warnings claim.Warnings
	if final.Len() == 0 {
		warnings.Addf("final estimate is empty")
	}
	items := Annotate(claim.ItemsFromTable(final), m.policy)

	out := claim.ItemsToTable(final.Header, items)
	out.EnsureColumns(claim.ColJustification)
	if err := runtime.WriteTable(moduleID, ctx, artifact.EstimateWithNotes, out); err != nil {
		return runtime.Fail(ctx, moduleID, err)
	}
	return runtime.Complete(ctx, moduleID, len(items), warnings, "justified %d line items", len(items)), nil
}

// Annotate returns copies of items with the unit appended to the quantity
// and the justification filled in.
func Annotate(items []claim.LineItem, policy units.Policy) []claim.LineItem {
	out := make([]claim.LineItem, 0, len(items))
	for _, item := range items {
		unit := policy.Infer(item.Code, item.Description)
		item.Quantity = units.Append(item.Quantity, unit)
		item.Justification = Sentence(unit)
		out = append(out, item)
	}
	return out
}

// Sentence is the justification text for a unit.
func Sentence(unit units.Unit) string {
	return fmt.Sprintf("Added based on room dimensions and scope. Unit: %s.", unit)
}
