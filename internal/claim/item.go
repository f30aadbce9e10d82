package claim

import (
	"strings"

	"github.com/kingrea/claimflow/internal/table"
)

// NoteSeparator joins accumulated notes.
const NoteSeparator = " | "

// LineItem is one row of a repair estimate. Quantity stays textual because
// later stages append units to it. Attrs carries every other column the row
// picked up on the way (room dimensions, floorplan ids).
type LineItem struct {
	Room          string
	Code          string
	Description   string
	Quantity      string
	Notes         string
	RemovedReason string
	Justification string
	Attrs         table.Row
}

var coreColumns = map[string]bool{
	ColRoom:          true,
	ColCode:          true,
	ColDescription:   true,
	ColQuantity:      true,
	ColNotes:         true,
	ColRemovedReason: true,
	ColJustification: true,
}

// ItemFromRow lifts a table row into a line item.
func ItemFromRow(row table.Row) LineItem {
	item := LineItem{
		Room:          row[ColRoom],
		Code:          row[ColCode],
		Description:   row[ColDescription],
		Quantity:      row[ColQuantity],
		Notes:         row[ColNotes],
		RemovedReason: row[ColRemovedReason],
		Justification: row[ColJustification],
		Attrs:         table.Row{},
	}
	for key, value := range row {
		if !coreColumns[key] {
			item.Attrs[key] = value
		}
	}
	return item
}

// Row flattens the item back into a table row.
func (it LineItem) Row() table.Row {
	row := make(table.Row, len(it.Attrs)+len(coreColumns))
	for key, value := range it.Attrs {
		row[key] = value
	}
	row[ColRoom] = it.Room
	row[ColCode] = it.Code
	row[ColDescription] = it.Description
	row[ColQuantity] = it.Quantity
	row[ColNotes] = it.Notes
	row[ColRemovedReason] = it.RemovedReason
	row[ColJustification] = it.Justification
	return row
}

// AppendNote accumulates a note; existing notes are never overwritten.
func (it *LineItem) AppendNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if strings.TrimSpace(it.Notes) == "" {
		it.Notes = note
		return
	}
	it.Notes = it.Notes + NoteSeparator + note
}

// ItemsFromTable converts every row of t.
func ItemsFromTable(t *table.Table) []LineItem {
	if t == nil {
		return nil
	}
	items := make([]LineItem, 0, t.Len())
	for _, row := range t.Rows {
		items = append(items, ItemFromRow(row))
	}
	return items
}

// ItemsToTable renders items under header.
func ItemsToTable(header []string, items []LineItem) *table.Table {
	t := table.New(header...)
	for _, item := range items {
		t.Append(item.Row())
	}
	return t
}
