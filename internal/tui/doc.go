package tui

// Package tui holds the terminal surfaces of claimflow: the intake form that
// writes job_metadata.json and the run summary printed after a pipeline run.
