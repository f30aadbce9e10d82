package preview

// Package preview renders the policy-final estimate as a standalone HTML
// page (estimate_preview.html) for a quick visual check. Ceiling heights
// carried over from the floorplan in millimetres are shown in feet and
// inches.
