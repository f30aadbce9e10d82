package justify

// Package justify annotates the policy-final estimate with a unit of measure
// and a one-line rationale per item. Units come from the justification unit
// policy in internal/units and are appended to the quantity as text.
