package claim_assumptions

// Package claim_assumptions derives the peril assumptions for a job. It reads
// job_metadata.json (cause of loss plus the cause-specific intake answers)
// and rewrites claim_assumptions.json with the booleans the adjuster would
// otherwise fill in by hand: flood heights crossing the 6/24/36 inch
// thresholds, smoke spread for fires, roof and ceiling damage for wind and
// storm, category 3 handling for water. Keys in an existing assumptions file
// that no rule derives (free-form `notes`, `mold_remediation_needed`) are
// carried over so hand-entered facts survive a rerun.
