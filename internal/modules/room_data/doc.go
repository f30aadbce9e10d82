package room_data

// Package room_data normalizes the room sources a job may carry into the
// tables the estimate and merge stages read. Three sources are recognised,
// all under out/<job>/:
//
//   - <job>_manual_room_dims.csv: hand-entered Room Name, Width (ft),
//     Length (ft). Imported into <job>_room_data_merged.csv with upper-cased
//     names and the area rounded to two decimals. Unusable rows are skipped
//     with a warning; a file with no usable row fails the stage.
//   - <job>_room_data.csv: the floorplan export (Room Name, Room ID, Ceiling
//     Height (mm), Wall IDs). Kept as is; when absent a header-only table is
//     written so downstream stages see an empty room list rather than a
//     missing file.
//   - <job>_ocr_rooms.csv: room names read off the floorplan image. When
//     present every floorplan room is checked against it and the result is
//     written to <job>_room_data_validated.csv with a ✅/❌ Validated column
//     and, for misses, the closest OCR name.
