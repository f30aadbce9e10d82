package estimate

// Package estimate composes the initial line-item estimate (estimate_xact.csv)
// from the claim context and the job's rooms. Items come from the template
// catalog: the cause-of-loss group first (gated on flood water height or on
// a phrase in the assumption notes), then the coverage groups for mold
// remediation, ALE and ordinance-and-law, then the per-room triple for every
// room in <job>_room_data_merged.csv, or <job>_room_data.csv when no
// dimensioned table exists. Nothing here can fail on content: absent context
// simply yields fewer items, and zero items still produce a header-only table.
