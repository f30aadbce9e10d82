package export

// Package export writes the estimating-tool import files: a three-column CSV
// (Line Item Code, Room, Quantity/Length) and, unless disabled in
// config.yaml, an .xlsx workbook with the same rows.
//
// Quantities are normalized and suffixed with a unit from the export unit
// policy. Rows missing a code, room or quantity are skipped. A missing final
// estimate still produces a header-only CSV so downstream tooling never sees
// a missing file.
