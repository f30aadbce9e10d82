package justify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/claim"
	"github.com/kingrea/claimflow/internal/modules/moduletest"
	"github.com/kingrea/claimflow/internal/units"
)

func TestAnnotateAppendsUnits(t *testing.T) {
	items := []claim.LineItem{
		{Code: "FLRPLS", Description: "Flooring - replace (SF)", Quantity: "50"},
		{Code: "DRYRM2", Description: "Drywall removal up to 2ft", Quantity: "120"},
		{Code: "LIGHT", Description: "Detach & reset fixture", Quantity: "2"},
		{Code: "PNTINT", Description: "Paint interior walls (SF)", Quantity: "50"},
		{Code: "ALE", Description: "Temporary housing allowance (7 days)", Quantity: "7"},
	}
	out := Annotate(items, units.Justification)

	want := []string{"50 SQFT", "120 LF", "2 EA", "50 SQFT", "7 EA"}
	for i, item := range out {
		assert.Equal(t, want[i], item.Quantity, item.Code)
	}
	assert.Equal(t, "Added based on room dimensions and scope. Unit: LF.", out[1].Justification)
	assert.Equal(t, "50", items[0].Quantity)
}

func TestRunWritesJustifiedEstimate(t *testing.T) {
	ctx := moduletest.NewContext(t)
	header := append(claim.EstimateHeader(), claim.ColNotes)
	moduletest.WriteCSV(t, ctx, artifact.EstimateFinal, header,
		[]string{"Hallway", "BSBRD", "Baseboard removal & replacement", "40", ""},
	)

	result, err := New().Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows)

	out := moduletest.ReadCSV(t, ctx, artifact.EstimateWithNotes)
	assert.Equal(t, append(header, claim.ColJustification), out.Header)
	assert.Equal(t, []string{"40 LF"}, moduletest.Column(out, claim.ColQuantity))
}

func TestRunRequiresFinalEstimate(t *testing.T) {
	ctx := moduletest.NewContext(t)
	_, err := New().Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, claim.ErrMissingInput))
}
