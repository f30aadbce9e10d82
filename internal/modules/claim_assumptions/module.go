package claim_assumptions

import (
	"fmt"
	"sort"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/claim"
	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/modules/runtime"
)

const (
	moduleID      = "claim-assumptions"
	moduleVersion = "1.0.0"
)

// Module derives claim_assumptions.json from job metadata.
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
		Name:        "Claim Assumptions",
		Description: "Derives peril assumptions from the job's intake answers.",
		Version:     moduleVersion,
	}
	base := module.NewBase(info)
	base.SetInputs(artifact.JobMetadata)
	base.SetOutputs(artifact.ClaimAssumptions)
	return &Module{Base: &base}
}

// Run rewrites the assumptions document.
func (m *Module) Run(ctx *module.ModuleContext) (module.Result, error) {
	if err := runtime.ValidateContext(moduleID, ctx); err != nil {
		return module.Failed(err)
	}
	var warnings claim.Warnings
	meta, metaWarnings, err := ctx.Artifacts.ReadDocument(artifact.JobMetadata)
	if err != nil {
		return runtime.Fail(ctx, moduleID, fmt.Errorf("%s: %w", moduleID, err))
	}
	warnings.Extend(metaWarnings)
	existing, existingWarnings, err := ctx.Artifacts.ReadDocument(artifact.ClaimAssumptions)
	if err != nil {
		return runtime.Fail(ctx, moduleID, fmt.Errorf("%s: %w", moduleID, err))
	}
	if ctx.Artifacts.Exists(artifact.ClaimAssumptions) {
		warnings.Extend(existingWarnings)
	}

	cause, derived := Derive(meta)
	if cause == "" {
		warnings.Addf("job metadata has no cause of loss; no peril assumptions derived")
	} else if len(derived) == 0 {
		warnings.Addf("no assumption rules for cause %q", cause)
	}
	merged := Merge(existing, derived)
	if err := ctx.Artifacts.WriteDocument(artifact.ClaimAssumptions, merged); err != nil {
		return runtime.Fail(ctx, moduleID, fmt.Errorf("%s: %w", moduleID, err))
	}
	return runtime.Complete(ctx, moduleID, len(derived), warnings, "derived %d assumptions for %s", len(derived), displayCause(cause)), nil
}

func displayCause(cause claim.Peril) string {
	if cause == "" {
		return "unknown cause"
	}
	return string(cause)
}

// Derive applies the peril rules to job metadata.
func Derive(meta claim.Document) (claim.Peril, map[string]any) {
	cause := claim.ParsePeril(stringField(meta, "cause", "cause_of_loss"))
	out := map[string]any{}
	switch cause {
	case claim.PerilFlood:
		height := numberField(meta, "flood_water_height_in", "water_height_in")
		out["flood_covered_height_ft"] = 2
		out["drywall_replacement_needed"] = height >= 24
		out["tile_can_be_cleaned_only"] = true
		out["cabinet_base_covered"] = height >= 6
		out["full_kitchen_replace"] = height >= 36
	case claim.PerilFire:
		smokeAll := claim.Flag(meta["smoke_whole_home"], false)
		out["smoke_damage_contents"] = smokeAll
		if smokeAll {
			out["clean_vs_replace"] = "replace"
		} else {
			out["clean_vs_replace"] = "clean"
		}
		out["structure_damaged"] = true
		out["possible_code_upgrades"] = true
	case claim.PerilWind:
		out["tree_on_house"] = true
		out["roof_replacement_needed"] = claim.Flag(meta["roof_damage"], false)
		out["interior_ceiling_affected"] = claim.Flag(meta["interior_damage"], false)
		out["tarp_charge_applicable"] = true
	case claim.PerilStorm:
		out["shingle_loss_expected"] = true
		out["roof_damaged"] = claim.Flag(meta["roof_damage"], false)
		out["interior_ceiling_damage"] = claim.Flag(meta["interior_damage"], false)
	case claim.PerilWater:
		out["category_3_water"] = true
		out["remove_all_affected_materials"] = true
		out["drying_equipment_needed"] = true
	}
	return cause, out
}

// derivedKeys is every key some peril rule owns. Stale keys from a previous
// cause are dropped on merge.
var derivedKeys = map[string]bool{
	"flood_covered_height_ft":       true,
	"drywall_replacement_needed":    true,
	"tile_can_be_cleaned_only":      true,
	"cabinet_base_covered":          true,
	"full_kitchen_replace":          true,
	"smoke_damage_contents":         true,
	"clean_vs_replace":              true,
	"structure_damaged":             true,
	"possible_code_upgrades":        true,
	"tree_on_house":                 true,
	"roof_replacement_needed":       true,
	"interior_ceiling_affected":     true,
	"tarp_charge_applicable":        true,
	"shingle_loss_expected":         true,
	"roof_damaged":                  true,
	"interior_ceiling_damage":       true,
	"category_3_water":              true,
	"remove_all_affected_materials": true,
	"drying_equipment_needed":       true,
}

// Merge keeps the hand-entered keys of existing and replaces every derived key.
func Merge(existing claim.Document, derived map[string]any) map[string]any {
	out := make(map[string]any, len(existing)+len(derived))
	for key, value := range existing {
		if !derivedKeys[key] {
			out[key] = value
		}
	}
	for key, value := range derived {
		out[key] = value
	}
	return out
}

// DerivedKeys lists the keys the rules own, sorted.
func DerivedKeys() []string {
	keys := make([]string, 0, len(derivedKeys))
	for key := range derivedKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func stringField(doc claim.Document, keys ...string) string {
	for _, key := range keys {
		if s, ok := doc[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func numberField(doc claim.Document, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := claim.Number(doc[key]); ok {
			return v
		}
	}
	return 0
}
