package module

import (
	"go.uber.org/zap"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/catalog"
	"github.com/kingrea/claimflow/internal/config"
	"github.com/kingrea/claimflow/internal/logbook"
	"github.com/kingrea/claimflow/internal/workflow"
)

// ModuleContext carries shared runtime dependencies into every stage.
type ModuleContext struct {
	Config    *config.Config
	Job       *workflow.Job
	Artifacts *artifact.Store
	Catalog   *catalog.Catalog
	Logger    *zap.Logger
	Logbook   *logbook.Logbook
	RunID     string
}

// NewContext builds a ModuleContext with a fresh artifact store. A nil
// catalog means the built-in templates; a nil logger discards output.
func NewContext(cfg *config.Config, job *workflow.Job, cat *catalog.Catalog, logger *zap.Logger, lb *logbook.Logbook) *ModuleContext {
	if cat == nil {
		cat = catalog.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModuleContext{
		Config:    cfg,
		Job:       job,
		Artifacts: artifact.NewStore(job),
		Catalog:   cat,
		Logger:    logger,
		Logbook:   lb,
	}
}

// WithArtifacts allows dependency injection of a pre-built store.
func (ctx *ModuleContext) WithArtifacts(store *artifact.Store) *ModuleContext {
	clone := *ctx
	clone.Artifacts = store
	return &clone
}

// WithRunID tags the context with the pipeline run identifier.
func (ctx *ModuleContext) WithRunID(id string) *ModuleContext {
	clone := *ctx
	clone.RunID = id
	if clone.Logger != nil && id != "" {
		clone.Logger = clone.Logger.With(zap.String("run_id", id))
	}
	return &clone
}
