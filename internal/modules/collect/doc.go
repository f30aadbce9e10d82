package collect

// Package collect archives a finished run. Every job artifact that exists is
// copied into out/<job>/archive/<run-id>/ alongside a manifest.json listing
// each file with its SHA-256, so earlier runs can be compared after the live
// tables are overwritten. The run id is the pipeline run id when one is set,
// otherwise a UTC timestamp.
