package claim

// Estimate columns.
const (
	ColRoom          = "Room"
	ColCode          = "Line Item Code"
	ColDescription   = "Description"
	ColQuantity      = "Quantity/Length"
	ColNotes         = "Notes"
	ColRemovedReason = "_RemovedReason"
	ColJustification = "Justification"
)

// Room data columns.
const (
	ColRoomName       = "Room Name"
	ColRoomID         = "Room ID"
	ColCeilingHeight  = "Ceiling Height (mm)"
	ColWallIDs        = "Wall IDs"
	ColWidth          = "Width (ft)"
	ColLength         = "Length (ft)"
	ColArea           = "Area (ft²)"
	ColValidated      = "Validated"
	ColSuggestedMatch = "Suggested Match"
)

// EstimateHeader is the header of the initial estimate table.
func EstimateHeader() []string {
	return []string{ColRoom, ColCode, ColDescription, ColQuantity}
}

// ImportHeader is the exact header of the estimating-tool import file.
func ImportHeader() []string {
	return []string{ColCode, ColRoom, ColQuantity}
}

// FloorplanHeader is the header of the floorplan room export.
func FloorplanHeader() []string {
	return []string{ColRoomName, ColRoomID, ColCeilingHeight, ColWallIDs}
}

// DimensionsHeader is the header of the dimensioned room table.
func DimensionsHeader() []string {
	return []string{ColRoom, ColWidth, ColLength, ColArea}
}
