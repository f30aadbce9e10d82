// Package runtime holds the plumbing every stage shares: context checks,
// claim context loading and warning reporting.
package runtime

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/claim"
	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/table"
)

// ValidateContext ensures stages receive a usable context.
func ValidateContext(moduleID string, ctx *module.ModuleContext) error {
	if ctx == nil {
		return fmt.Errorf("%s: context is nil", moduleID)
	}
	if ctx.Job == nil {
		return fmt.Errorf("%s: job is required", moduleID)
	}
	if ctx.Artifacts == nil {
		return fmt.Errorf("%s: artifact store is required", moduleID)
	}
	if ctx.Catalog == nil {
		return fmt.Errorf("%s: item catalog is required", moduleID)
	}
	if ctx.Logger == nil {
		ctx.Logger = zap.NewNop()
	}
	return nil
}

// LoadClaimContext reads the job's JSON documents and assembles the claim
// context. Missing or unparseable documents degrade to defaults and are
// reported in the returned warnings.
func LoadClaimContext(ctx *module.ModuleContext) (claim.Context, claim.Warnings, error) {
	var warnings claim.Warnings
	docs := make([]claim.Document, 0, 3)
	for _, ref := range []artifact.ArtifactRef{artifact.JobMetadata, artifact.PolicySummary, artifact.ClaimAssumptions} {
		doc, docWarnings, err := ctx.Artifacts.ReadDocument(ref)
		if err != nil {
			return claim.Context{}, warnings, err
		}
		warnings.Extend(docWarnings)
		docs = append(docs, doc)
	}
	claimCtx, ctxWarnings := claim.NewContext(docs[0], docs[1], docs[2])
	warnings.Extend(ctxWarnings)
	return claimCtx, warnings, nil
}

// ReadTable loads a table input, wrapping errors with the stage id.
func ReadTable(moduleID string, ctx *module.ModuleContext, ref artifact.ArtifactRef) (*table.Table, error) {
	t, err := ctx.Artifacts.ReadTable(ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", moduleID, err)
	}
	return t, nil
}

// WriteTable persists a table output, wrapping errors with the stage id.
func WriteTable(moduleID string, ctx *module.ModuleContext, ref artifact.ArtifactRef, t *table.Table) error {
	if err := ctx.Artifacts.WriteTable(ref, t); err != nil {
		return fmt.Errorf("%s: %w", moduleID, err)
	}
	return nil
}

// Report logs warnings to the process log and the job journal.
func Report(ctx *module.ModuleContext, moduleID string, warnings claim.Warnings) {
	for _, w := range warnings {
		ctx.Logger.Warn(w, zap.String("stage", moduleID), zap.String("job", ctx.Job.ID()))
		if ctx.Logbook != nil {
			ctx.Logbook.Warn("%s: %s", moduleID, w)
		}
	}
}

// Complete reports warnings and builds the completed result.
func Complete(ctx *module.ModuleContext, moduleID string, rows int, warnings claim.Warnings, format string, args ...any) module.Result {
	Report(ctx, moduleID, warnings)
	message := fmt.Sprintf(format, args...)
	if len(warnings) > 0 {
		message = fmt.Sprintf("%s (%d %s)", message, len(warnings), plural(len(warnings), "warning"))
	}
	ctx.Logger.Info(message, zap.String("stage", moduleID), zap.String("job", ctx.Job.ID()), zap.Int("rows", rows))
	if ctx.Logbook != nil {
		ctx.Logbook.Info("%s: %s", moduleID, message)
	}
	return module.Result{
		Status:   module.StatusCompleted,
		Message:  message,
		Rows:     rows,
		Warnings: append([]string{}, warnings...),
	}
}

// Fail records the error in the journal and returns the failed result.
func Fail(ctx *module.ModuleContext, moduleID string, err error) (module.Result, error) {
	if ctx != nil && ctx.Logbook != nil {
		ctx.Logbook.Error("%s: %v", moduleID, err)
	}
	return module.Failed(err)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
