package modules

import (
	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/modules/claim_assumptions"
	"github.com/kingrea/claimflow/internal/modules/collect"
	"github.com/kingrea/claimflow/internal/modules/estimate"
	"github.com/kingrea/claimflow/internal/modules/export"
	"github.com/kingrea/claimflow/internal/modules/justify"
	"github.com/kingrea/claimflow/internal/modules/merge"
	"github.com/kingrea/claimflow/internal/modules/policy"
	"github.com/kingrea/claimflow/internal/modules/preview"
	"github.com/kingrea/claimflow/internal/modules/room_data"
)

// RegisterBuiltins installs all of the built-in stage factories into the
// provided registry.
func RegisterBuiltins(reg *module.Registry) {
	if reg == nil {
		return
	}
	claim_assumptions.Register(reg)
	room_data.Register(reg)
	estimate.Register(reg)
	merge.Register(reg)
	policy.Register(reg)
	justify.Register(reg)
	export.Register(reg)
	preview.Register(reg)
	collect.Register(reg)
}

// NewRegistry returns a registry holding the built-in stages.
func NewRegistry() *module.Registry {
	reg := module.NewRegistry()
	RegisterBuiltins(reg)
	return reg
}
