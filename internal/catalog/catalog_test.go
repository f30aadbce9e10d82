package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	cat := Default()
	assert.Equal(t, []string{"fire", "flood", "wind"}, cat.CauseNames())

	flood, ok := cat.Cause(" Flood ")
	require.True(t, ok)
	assert.True(t, flood.RequireWaterHeight)
	require.Len(t, flood.Items, 3)
	assert.Equal(t, ItemTemplate{Room: "Living Room", Code: "DRYRM2", Description: "Drywall removal up to 2ft", Quantity: 120}, flood.Items[0])

	wind, _ := cat.Cause("wind")
	assert.Equal(t, "tree on house", wind.RequireNote)

	require.Len(t, cat.Coverage.ALE, 1)
	assert.Equal(t, "Temporary housing allowance (7 days)", cat.Coverage.ALE[0].Description)
	require.Len(t, cat.PerRoom, 3)
	assert.Equal(t, "PNTINT", cat.PerRoom[2].Code)
}

func TestParseRejectsItemsWithoutRoom(t *testing.T) {
	_, err := Parse([]byte(`
causes:
  fire:
    items:
      - {code: FIRCLN, quantity: 1}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "room is required")
}

func TestParseRejectsEmptyPayload(t *testing.T) {
	_, err := Parse([]byte("  \n"))
	require.Error(t, err)
}

func TestLoadFallsBackToDefault(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)
	assert.Len(t, cat.Causes, 3)
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
causes:
  Water:
    items:
      - {room: Basement, code: WTREXT, description: Water extraction, quantity: 300}
per_room:
  - {code: PNTINT, description: Paint interior walls (SF), quantity: 80}
`), 0o644))
	cat, err := LoadFile(path)
	require.NoError(t, err)
	water, ok := cat.Cause("water")
	require.True(t, ok)
	assert.Equal(t, 300.0, water.Items[0].Quantity)
	_, ok = cat.Cause("flood")
	assert.False(t, ok)
	assert.Equal(t, 80.0, cat.PerRoom[0].Quantity)
}
