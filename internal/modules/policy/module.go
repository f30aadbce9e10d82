package policy

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/claim"
	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/modules/runtime"
)

const (
	moduleID      = "policy"
	moduleVersion = "1.0.0"
)

// Notes and reasons written by the rules.
const (
	TileNote       = "Flood: tile replacement often excluded; adjust to clean/regrout if salvageable."
	CabinetNote    = "Flood: lower cabinets impacted by rising water commonly non-salvageable."
	ALERemovedNote = "ALE removed (no ALE coverage)"
)

const (
	minDrywallTargetIn = 12.0
	maxDrywallTargetIn = 24.0
	drywallMarginIn    = 12.0
)

var amounts = message.NewPrinter(language.English)

// Module writes estimate_xact_final.csv and estimate_policy_QA.csv.
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
		Name:        "Policy Rules",
		Description: "Annotates line items with peril and sublimit notes and removes uncovered items.",
		Version:     moduleVersion,
	}
	base := module.NewBase(info)
	base.SetInputs(artifact.EstimateMerged, artifact.JobMetadata, artifact.PolicySummary)
	base.SetOutputs(artifact.EstimateFinal, artifact.PolicyQA)
	return &Module{Base: &base}
}

// Run applies the rules. A missing merged estimate aborts before anything
// is written.
func (m *Module) Run(ctx *module.ModuleContext) (module.Result, error) {
	if err := runtime.ValidateContext(moduleID, ctx); err != nil {
		return module.Failed(err)
	}
	merged, err := runtime.ReadTable(moduleID, ctx, artifact.EstimateMerged)
	if err != nil {
		return runtime.Fail(ctx, moduleID, err)
	}
	claimCtx, warnings, err := runtime.LoadClaimContext(ctx)
	if err != nil {
		return runtime.Fail(ctx, moduleID, fmt.Errorf("%s: %w", moduleID, err))
	}

	kept, removed := Adjust(claim.ItemsFromTable(merged), claimCtx)
	if merged.Len() == 0 {
		warnings.Addf("merged estimate is empty")
	} else if len(kept) == 0 {
		warnings.Addf("no line items kept; check the policy summary")
	}

	finalHeader := append([]string{}, merged.Header...)
	final := claim.ItemsToTable(finalHeader, kept)
	final.EnsureColumns(claim.ColNotes)
	qa := claim.ItemsToTable(final.Header, removed)
	qa.EnsureColumns(claim.ColRemovedReason)

	if err := runtime.WriteTable(moduleID, ctx, artifact.EstimateFinal, final); err != nil {
		return runtime.Fail(ctx, moduleID, err)
	}
	if err := runtime.WriteTable(moduleID, ctx, artifact.PolicyQA, qa); err != nil {
		return runtime.Fail(ctx, moduleID, err)
	}
	return runtime.Complete(ctx, moduleID, len(kept), warnings,
		"kept %d line items, removed %d", len(kept), len(removed)), nil
}

// Adjust runs every rule over items and partitions them. Items are copied;
// the input slice is left untouched.
func Adjust(items []claim.LineItem, ctx claim.Context) (kept, removed []claim.LineItem) {
	for _, item := range items {
		AdjustForPeril(&item, ctx)
		AnnotateMold(&item, ctx.Policy)
		if ok, reason := Covered(item, ctx.Policy); !ok {
			item.RemovedReason = reason
			removed = append(removed, item)
			continue
		}
		kept = append(kept, item)
	}
	return kept, removed
}

// AdjustForPeril appends the flood advisories. Other perils pass through.
func AdjustForPeril(item *claim.LineItem, ctx claim.Context) {
	if !ctx.CauseOfLoss.IsFlood() {
		return
	}
	desc := strings.ToLower(item.Description)
	if strings.Contains(desc, "drywall") && containsAny(desc, "remov", "replace") {
		if h := ctx.WaterHeightIn(); h > 0 {
			item.AppendNote(DrywallNote(DrywallTargetHeight(h)))
		}
	}
	if strings.Contains(desc, "tile") && containsAny(desc, "replace", "new") {
		item.AppendNote(TileNote)
	}
	if strings.Contains(desc, "cabinet") && containsAny(desc, "base", "lower") {
		item.AppendNote(CabinetNote)
	}
}

// DrywallTargetHeight is the height in inches drywall is addressed to for a
// given water height: 12 in above the waterline, clamped to [12, 24].
func DrywallTargetHeight(waterHeightIn float64) float64 {
	return math.Max(minDrywallTargetIn, math.Min(maxDrywallTargetIn, waterHeightIn+drywallMarginIn))
}

// DrywallNote renders the drywall advisory for a target height.
func DrywallNote(targetIn float64) string {
	return fmt.Sprintf("Flood: drywall addressed to ~%d\" above waterline.", int(targetIn))
}

// AnnotateMold cites the mold sublimit on mold items when the policy has one.
func AnnotateMold(item *claim.LineItem, p claim.Policy) {
	if p.MoldLimit == nil {
		return
	}
	if strings.Contains(strings.ToLower(item.Description), "mold") {
		item.AppendNote(MoldNote(*p.MoldLimit))
	}
}

// MoldNote renders the sublimit note with thousands separators.
func MoldNote(limit float64) string {
	return amounts.Sprintf("Subject to mold sublimit ($%d).", int64(limit))
}

// Covered reports whether the policy covers item, with the removal reason
// when it does not.
func Covered(item claim.LineItem, p claim.Policy) (bool, string) {
	if strings.EqualFold(strings.TrimSpace(item.Code), "ALE") && !p.ALE {
		return false, ALERemovedNote
	}
	return true, ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
