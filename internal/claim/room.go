package claim

import (
	"fmt"
	"strings"

	"github.com/kingrea/claimflow/internal/table"
)

// Room is one space on the floorplan. Dimensions are optional because the
// floorplan export carries names and ceiling heights only.
type Room struct {
	Name          string
	WidthFt       *float64
	LengthFt      *float64
	AreaSqFt      *float64
	CeilingHeight string
}

// RoomKey normalizes a room name into its identity: trimmed and upper-cased.
func RoomKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// NewRoom builds a dimensioned room. The name is stored by identity and the
// area is width × length rounded to two decimals.
func NewRoom(name string, widthFt, lengthFt float64) (Room, error) {
	key := RoomKey(name)
	if key == "" {
		return Room{}, fmt.Errorf("room name is required: %w", ErrMalformedInput)
	}
	if widthFt < 0 || lengthFt < 0 {
		return Room{}, fmt.Errorf("room %s: negative dimension: %w", key, ErrMalformedInput)
	}
	area := Round2(widthFt * lengthFt)
	return Room{
		Name:     key,
		WidthFt:  &widthFt,
		LengthFt: &lengthFt,
		AreaSqFt: &area,
	}, nil
}

// Key returns the room identity.
func (r Room) Key() string {
	return RoomKey(r.Name)
}

// DimensionsRow renders the room in the dimensioned room table layout.
func (r Room) DimensionsRow() table.Row {
	row := table.Row{ColRoom: r.Name}
	if r.WidthFt != nil {
		row[ColWidth] = FormatFloat(*r.WidthFt)
	}
	if r.LengthFt != nil {
		row[ColLength] = FormatFloat(*r.LengthFt)
	}
	if r.AreaSqFt != nil {
		row[ColArea] = FormatFloat(*r.AreaSqFt)
	}
	return row
}

// RoomNames lists the room names of a room table in row order, taken from
// the Room column or the floorplan's Room Name column. Blank names are skipped.
func RoomNames(t *table.Table) []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, t.Len())
	for _, row := range t.Rows {
		if name := strings.TrimSpace(row.Get(ColRoom, ColRoomName)); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// RoomIndex looks up room rows by case-insensitive trimmed name.
type RoomIndex struct {
	columns []string
	rows    map[string]table.Row
}

// IndexRooms indexes a room table. Rows without a name are skipped; when two
// rows share a name the later one wins. Both cases are reported as warnings.
func IndexRooms(t *table.Table) (*RoomIndex, Warnings) {
	var warnings Warnings
	idx := &RoomIndex{rows: map[string]table.Row{}}
	if t == nil {
		return idx, warnings
	}
	idx.columns = append(idx.columns, t.Header...)
	for i, row := range t.Rows {
		key := RoomKey(row.Get(ColRoomName, ColRoom))
		if key == "" {
			warnings.Addf("room data row %d has no room name", i+1)
			continue
		}
		if _, exists := idx.rows[key]; exists {
			warnings.Addf("room %s appears more than once; using the last row", key)
		}
		idx.rows[key] = row
	}
	return idx, warnings
}

// Columns returns the room table header.
func (idx *RoomIndex) Columns() []string {
	return append([]string{}, idx.columns...)
}

// Len returns the number of distinct rooms.
func (idx *RoomIndex) Len() int {
	return len(idx.rows)
}

// Lookup finds the room row for name.
func (idx *RoomIndex) Lookup(name string) (table.Row, bool) {
	row, ok := idx.rows[RoomKey(name)]
	return row, ok
}
