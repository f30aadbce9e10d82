package merge

// Package merge joins the initial estimate with the job's room table. Each
// line item is matched to a room by trimmed, case-insensitive name and picks
// up that room's columns (dimensions, floorplan ids, ceiling height). Columns
// the item already carries are left alone. Items whose room is not in the
// table pass through unchanged and are reported as warnings; the merged table
// has exactly one row per estimate row, in the same order.
