package policy

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/claim"
	"github.com/kingrea/claimflow/internal/modules/moduletest"
)

func height(h float64) *float64 { return &h }

func TestDrywallTargetHeightClamps(t *testing.T) {
	cases := map[float64]float64{
		-5:  12,
		0:   12,
		0.5: 12.5,
		3:   15,
		12:  24,
		18:  24,
		40:  24,
	}
	for water, want := range cases {
		assert.Equal(t, want, DrywallTargetHeight(water), "water height %v", water)
	}
	assert.Equal(t, `Flood: drywall addressed to ~12" above waterline.`, DrywallNote(12.5))
}

func TestAdjustForPerilFloodNotes(t *testing.T) {
	ctx := claim.Context{CauseOfLoss: claim.ParsePeril("Flash Flood"), FloodWaterHeightIn: height(6)}
	items := []claim.LineItem{
		{Code: "DRYRM2", Description: "Drywall removal up to 2ft"},
		{Code: "TILE", Description: "Replace ceramic tile"},
		{Code: "CABLOW", Description: "Clean and regrout lower cabinets"},
		{Code: "PNTINT", Description: "Paint interior walls (SF)"},
	}
	kept, removed := Adjust(items, ctx)
	require.Len(t, kept, 4)
	assert.Empty(t, removed)
	assert.Equal(t, `Flood: drywall addressed to ~18" above waterline.`, kept[0].Notes)
	assert.Equal(t, TileNote, kept[1].Notes)
	assert.Equal(t, CabinetNote, kept[2].Notes)
	assert.Empty(t, kept[3].Notes)
	assert.Empty(t, items[0].Notes, "input items are not modified")
}

func TestAdjustSkipsDrywallWithoutHeight(t *testing.T) {
	ctx := claim.Context{CauseOfLoss: claim.PerilFlood}
	kept, _ := Adjust([]claim.LineItem{{Description: "Drywall replace"}}, ctx)
	assert.Empty(t, kept[0].Notes)
}

func TestAdjustIgnoresOtherPerils(t *testing.T) {
	ctx := claim.Context{CauseOfLoss: claim.PerilFire, FloodWaterHeightIn: height(18), Policy: claim.Policy{ALE: true}}
	kept, _ := Adjust([]claim.LineItem{{Description: "Drywall removal"}, {Description: "base cabinet"}}, ctx)
	assert.Empty(t, kept[0].Notes)
	assert.Empty(t, kept[1].Notes)
}

func TestMoldNoteUsesThousandsSeparators(t *testing.T) {
	assert.Equal(t, "Subject to mold sublimit ($10,000).", MoldNote(10000))
	assert.Equal(t, "Subject to mold sublimit ($2,500).", MoldNote(2500.75))
}

func TestAnnotateMoldNeedsLimit(t *testing.T) {
	item := claim.LineItem{Description: "Mold remediation", Notes: "existing"}
	AnnotateMold(&item, claim.Policy{})
	assert.Equal(t, "existing", item.Notes)

	limit := 10000.0
	AnnotateMold(&item, claim.Policy{MoldLimit: &limit})
	assert.Equal(t, "existing | Subject to mold sublimit ($10,000).", item.Notes)
}

func TestCoveredRemovesALEOnlyWithoutCoverage(t *testing.T) {
	ok, reason := Covered(claim.LineItem{Code: " ale "}, claim.Policy{ALE: false})
	assert.False(t, ok)
	assert.Equal(t, ALERemovedNote, reason)

	ok, _ = Covered(claim.LineItem{Code: "ALE"}, claim.Policy{ALE: true})
	assert.True(t, ok)

	ok, _ = Covered(claim.LineItem{Code: "ALEX"}, claim.Policy{ALE: false})
	assert.True(t, ok)
}

func TestRulesApplyInOrder(t *testing.T) {
	limit := 5000.0
	ctx := claim.Context{CauseOfLoss: claim.PerilFlood, FloodWaterHeightIn: height(2), Policy: claim.Policy{MoldLimit: &limit}}
	kept, removed := Adjust([]claim.LineItem{
		{Code: "ALE", Description: "Drywall removal with mold"},
	}, ctx)
	assert.Empty(t, kept)
	require.Len(t, removed, 1)
	assert.Equal(t, `Flood: drywall addressed to ~14" above waterline. | Subject to mold sublimit ($5,000).`, removed[0].Notes)
	assert.Equal(t, ALERemovedNote, removed[0].RemovedReason)
}

func TestRunWritesFinalAndQA(t *testing.T) {
	ctx := moduletest.NewContext(t)
	moduletest.WriteJSON(t, ctx, artifact.JobMetadata, map[string]any{"cause": "flood", "flood_water_height_in": 18})
	moduletest.WriteJSON(t, ctx, artifact.PolicySummary, map[string]any{"ALE": false, "MoldLimit": 10000})
	header := append(claim.EstimateHeader(), claim.ColArea)
	moduletest.WriteCSV(t, ctx, artifact.EstimateMerged, header,
		[]string{"Living Room", "DRYRM2", "Drywall removal up to 2ft", "120", ""},
		[]string{"N/A", "ALE", "Temporary housing allowance (7 days)", "7", ""},
		[]string{"Bathroom", "MOLDCLN", "Mold remediation", "100", "40.0"},
	)

	result, err := New().Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)

	final := moduletest.ReadCSV(t, ctx, artifact.EstimateFinal)
	assert.Equal(t, append(header, claim.ColNotes), final.Header)
	assert.Equal(t, []string{
		`Flood: drywall addressed to ~24" above waterline.`,
		"Subject to mold sublimit ($10,000).",
	}, moduletest.Column(final, claim.ColNotes))
	assert.Equal(t, []string{"", "40.0"}, moduletest.Column(final, claim.ColArea))

	qa := moduletest.ReadCSV(t, ctx, artifact.PolicyQA)
	assert.Equal(t, append(header, claim.ColNotes, claim.ColRemovedReason), qa.Header)
	assert.Equal(t, []string{"ALE"}, moduletest.Column(qa, claim.ColCode))
	assert.Equal(t, []string{ALERemovedNote}, moduletest.Column(qa, claim.ColRemovedReason))
}

func TestRunEmptyEstimateWritesHeaders(t *testing.T) {
	ctx := moduletest.NewContext(t)
	moduletest.WriteCSV(t, ctx, artifact.EstimateMerged, claim.EstimateHeader())

	result, err := New().Run(ctx)
	require.NoError(t, err)
	assert.Contains(t, result.Warnings, "merged estimate is empty")
	assert.Zero(t, moduletest.ReadCSV(t, ctx, artifact.EstimateFinal).Len())
	assert.Zero(t, moduletest.ReadCSV(t, ctx, artifact.PolicyQA).Len())
}

func TestRunWithoutMergedEstimateWritesNothing(t *testing.T) {
	ctx := moduletest.NewContext(t)

	result, err := New().Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, claim.ErrMissingInput))
	assert.Equal(t, "failed", string(result.Status))

	for _, ref := range []artifact.ArtifactRef{artifact.EstimateFinal, artifact.PolicyQA} {
		_, statErr := os.Stat(ctx.Artifacts.Path(ref))
		assert.True(t, os.IsNotExist(statErr), "%s should not exist", ref.ID)
	}
}
