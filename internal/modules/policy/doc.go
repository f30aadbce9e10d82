package policy

// Package policy applies the coverage rules to the merged estimate.
//
// Rules run per item in a fixed order: peril adjustments (flood only), then
// the mold sublimit annotation, then the coverage check. Notes accumulate and
// are never overwritten. Items failing the coverage check are moved to the QA
// table with a reason and never return to the kept set.
