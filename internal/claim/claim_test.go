package claim

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/claimflow/internal/table"
)

func TestNewRoomComputesArea(t *testing.T) {
	room, err := NewRoom("  living room ", 10, 12)
	require.NoError(t, err)
	assert.Equal(t, "LIVING ROOM", room.Name)
	require.NotNil(t, room.AreaSqFt)
	assert.Equal(t, 120.0, *room.AreaSqFt)
	assert.Equal(t, table.Row{
		ColRoom:   "LIVING ROOM",
		ColWidth:  "10.0",
		ColLength: "12.0",
		ColArea:   "120.0",
	}, room.DimensionsRow())
}

func TestNewRoomRoundsToTwoDecimals(t *testing.T) {
	room, err := NewRoom("Bath", 7.333, 9.1)
	require.NoError(t, err)
	assert.Equal(t, 66.73, *room.AreaSqFt)
	assert.Equal(t, "66.73", room.DimensionsRow()[ColArea])
}

func TestNewRoomRejectsBlankName(t *testing.T) {
	_, err := NewRoom("   ", 1, 1)
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestIndexRoomsIsCaseInsensitive(t *testing.T) {
	rooms := table.New(ColRoomName, ColRoomID)
	rooms.Append(
		table.Row{ColRoomName: "KITCHEN", ColRoomID: "r1"},
		table.Row{ColRoomName: "", ColRoomID: "r2"},
		table.Row{ColRoomName: "kitchen ", ColRoomID: "r3"},
	)
	idx, warnings := IndexRooms(rooms)
	assert.Len(t, warnings, 2)
	assert.Equal(t, 1, idx.Len())
	row, ok := idx.Lookup(" Kitchen")
	require.True(t, ok)
	assert.Equal(t, "r3", row[ColRoomID])
	_, ok = idx.Lookup("Hallway")
	assert.False(t, ok)
}

func TestRoomNamesAcceptsEitherColumn(t *testing.T) {
	floorplan := table.New(ColRoomName)
	floorplan.Append(table.Row{ColRoomName: "KITCHEN"}, table.Row{ColRoomName: " "})
	assert.Equal(t, []string{"KITCHEN"}, RoomNames(floorplan))

	dims := table.New(ColRoom)
	dims.Append(table.Row{ColRoom: "BATH"})
	assert.Equal(t, []string{"BATH"}, RoomNames(dims))
}

func TestLineItemRoundTripKeepsExtraColumns(t *testing.T) {
	row := table.Row{ColRoom: "Kitchen", ColCode: "CABLOW", ColQuantity: "10", ColArea: "120.0"}
	item := ItemFromRow(row)
	assert.Equal(t, "120.0", item.Attrs[ColArea])
	_, hasCode := item.Attrs[ColCode]
	assert.False(t, hasCode)

	item.AppendNote("first")
	item.AppendNote("")
	item.AppendNote("second")
	assert.Equal(t, "first | second", item.Notes)

	out := item.Row()
	assert.Equal(t, "120.0", out[ColArea])
	assert.Equal(t, "first | second", out[ColNotes])
}

func TestNewContextDefaults(t *testing.T) {
	ctx, warnings := NewContext(nil, nil, nil)
	assert.Empty(t, warnings)
	assert.Equal(t, Peril(""), ctx.CauseOfLoss)
	assert.True(t, ctx.Policy.ALE, "ALE defaults to covered")
	assert.False(t, ctx.Policy.ALECoverage)
	assert.Nil(t, ctx.Policy.MoldLimit)
	assert.Nil(t, ctx.FloodWaterHeightIn)
	assert.Equal(t, 0.0, ctx.WaterHeightIn())
}

func TestNewContextReadsDocuments(t *testing.T) {
	job := Document{"cause": "Flood", "flood_water_height_in": float64(18)}
	policy := Document{
		"ALE":               false,
		"ALE_coverage":      "yes",
		"ordinance_and_law": "unknown",
		"MoldLimit":         "10000",
		"exclusions":        []any{"earthquake", " "},
	}
	assumptions := Document{"mold_remediation_needed": true, "notes": "Tree on house"}

	ctx, warnings := NewContext(job, policy, assumptions)
	assert.Empty(t, warnings)
	assert.Equal(t, PerilFlood, ctx.CauseOfLoss)
	assert.True(t, ctx.CauseOfLoss.IsFlood())
	assert.Equal(t, 18.0, ctx.WaterHeightIn())
	assert.False(t, ctx.Policy.ALE)
	assert.True(t, ctx.Policy.ALECoverage)
	assert.False(t, ctx.Policy.OrdinanceAndLaw)
	require.NotNil(t, ctx.Policy.MoldLimit)
	assert.Equal(t, 10000.0, *ctx.Policy.MoldLimit)
	assert.Equal(t, []string{"earthquake"}, ctx.Policy.Exclusions)
	assert.True(t, ctx.MoldRemediationNeeded)
	assert.Equal(t, "Tree on house", ctx.AssumptionNotes)
}

func TestNewContextFallsBackToLegacyKeys(t *testing.T) {
	ctx, warnings := NewContext(Document{"cause_of_loss": "FLOOD ", "water_height_in": "3"}, nil, nil)
	assert.Empty(t, warnings)
	assert.Equal(t, PerilFlood, ctx.CauseOfLoss)
	assert.Equal(t, 3.0, ctx.WaterHeightIn())
}

func TestNewContextWarnsOnUnusableValues(t *testing.T) {
	ctx, warnings := NewContext(
		Document{"flood_water_height_in": "knee deep"},
		Document{"MoldLimit": "ten grand"},
		nil,
	)
	assert.Len(t, warnings, 2)
	assert.Nil(t, ctx.FloodWaterHeightIn)
	assert.Nil(t, ctx.Policy.MoldLimit)
}

func TestNewContextRejectsUnprintableMoldLimits(t *testing.T) {
	for _, raw := range []any{"NaN", "Inf", "-Infinity", "1e30", -500.0} {
		ctx, warnings := NewContext(nil, Document{"MoldLimit": raw}, nil)
		assert.Len(t, warnings, 1, "limit %v", raw)
		assert.Nil(t, ctx.Policy.MoldLimit, "limit %v", raw)
	}

	ctx, warnings := NewContext(nil, Document{"mold_limit": json.Number("2500000")}, nil)
	assert.Empty(t, warnings)
	require.NotNil(t, ctx.Policy.MoldLimit)
	assert.Equal(t, 2500000.0, *ctx.Policy.MoldLimit)
}

func TestNumberRejectsNonFinite(t *testing.T) {
	_, ok := Number("NaN")
	assert.False(t, ok)
	_, ok = Number(math.Inf(1))
	assert.False(t, ok)
	f, ok := Number(" 12.5 ")
	assert.True(t, ok)
	assert.Equal(t, 12.5, f)
}

func TestFlag(t *testing.T) {
	cases := []struct {
		in   any
		def  bool
		want bool
	}{
		{true, false, true},
		{"no", true, false},
		{"Yes", false, true},
		{float64(0), true, false},
		{float64(1), false, true},
		{nil, true, true},
		{"unknown", true, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Flag(tc.in, tc.def), "Flag(%v, %v)", tc.in, tc.def)
	}
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "120.0", FormatFloat(120))
	assert.Equal(t, "12.25", FormatFloat(12.25))
	assert.Equal(t, "120", FormatQuantity(120))
	assert.Equal(t, "2.5", FormatQuantity(2.5))
}
