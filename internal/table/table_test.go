package table

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPadsShortRowsAndStripsBOM(t *testing.T) {
	input := "\xEF\xBB\xBFRoom,Line Item Code,Quantity/Length\r\nKitchen,CABLOW\r\nHallway,BSBRD,40,extra\r\n"
	tbl, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	want := &Table{
		Header: []string{"Room", "Line Item Code", "Quantity/Length"},
		Rows: []Row{
			{"Room": "Kitchen", "Line Item Code": "CABLOW", "Quantity/Length": ""},
			{"Room": "Hallway", "Line Item Code": "BSBRD", "Quantity/Length": "40"},
		},
	}
	if diff := cmp.Diff(want, tbl); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestReadEmptyInputHasNoHeader(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	require.ErrorIs(t, err, ErrNoHeader)
}

func TestWriteUsesHeaderOrder(t *testing.T) {
	tbl := New("Line Item Code", "Room", "Quantity/Length")
	tbl.Append(Row{"Room": "Kitchen", "Line Item Code": "CABLOW", "Quantity/Length": "10 QTY", "Ignored": "x"})

	var buf bytes.Buffer
	require.NoError(t, tbl.Write(&buf))
	assert.Equal(t, "Line Item Code,Room,Quantity/Length\r\nCABLOW,Kitchen,10 QTY\r\n", buf.String())
}

func TestWriteQuotesEmbeddedSeparators(t *testing.T) {
	tbl := New("Description", "Notes")
	tbl.Append(Row{"Description": "Odor removal, ozone", "Notes": `Flood: drywall addressed to ~24" above waterline.`})

	var buf bytes.Buffer
	require.NoError(t, tbl.Write(&buf))
	roundTrip, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, tbl.Rows, roundTrip.Rows)
}

func TestWriteFileReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	first := New("Room")
	first.Append(Row{"Room": "Kitchen"}, Row{"Room": "Bathroom"})
	require.NoError(t, first.WriteFile(path))

	second := New("Room")
	require.NoError(t, second.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Room\r\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestRowGetFallsBackAcrossKeys(t *testing.T) {
	row := Row{"Room": "  ", "Room Name": "KITCHEN"}
	assert.Equal(t, "KITCHEN", row.Get("Room", "Room Name"))
	assert.Equal(t, "", row.Get("Missing"))
}

func TestEnsureColumnsKeepsOrder(t *testing.T) {
	tbl := New("Room", "Notes")
	tbl.EnsureColumns("Notes", "_RemovedReason", "Justification")
	assert.Equal(t, []string{"Room", "Notes", "_RemovedReason", "Justification"}, tbl.Header)
}
