// Package moduletest builds throwaway job contexts for stage tests.
package moduletest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/config"
	"github.com/kingrea/claimflow/internal/logbook"
	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/table"
	"github.com/kingrea/claimflow/internal/workflow"
)

// NewContext creates a project in a temp dir with an initialized job-0001.
func NewContext(t *testing.T) *module.ModuleContext {
	t.Helper()
	projectDir := t.TempDir()
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	job := workflow.New(config.DefaultJobID, cfg.DataRoot(), cfg.OutRoot())
	if err := job.Initialize(); err != nil {
		t.Fatalf("init job: %v", err)
	}
	lb, err := logbook.New(job.RunLogPath())
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	return module.NewContext(cfg, job, nil, nil, lb)
}

// WriteJSON stores a JSON document artifact.
func WriteJSON(t *testing.T, ctx *module.ModuleContext, ref artifact.ArtifactRef, value any) {
	t.Helper()
	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("encode %s: %v", ref.ID, err)
	}
	WriteRaw(t, ctx, ref, string(data))
}

// WriteRaw stores raw bytes at the artifact path.
func WriteRaw(t *testing.T, ctx *module.ModuleContext, ref artifact.ArtifactRef, body string) {
	t.Helper()
	path := ctx.Artifacts.Path(ref)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", ref.ID, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", ref.ID, err)
	}
}

// WriteCSV stores a CSV table given as header + rows of cells.
func WriteCSV(t *testing.T, ctx *module.ModuleContext, ref artifact.ArtifactRef, header []string, rows ...[]string) {
	t.Helper()
	tbl := table.New(header...)
	for _, cells := range rows {
		row := table.Row{}
		for i, col := range header {
			if i < len(cells) {
				row[col] = cells[i]
			}
		}
		tbl.Append(row)
	}
	if err := ctx.Artifacts.WriteTable(ref, tbl); err != nil {
		t.Fatalf("write %s: %v", ref.ID, err)
	}
}

// ReadCSV loads a table artifact or fails the test.
func ReadCSV(t *testing.T, ctx *module.ModuleContext, ref artifact.ArtifactRef) *table.Table {
	t.Helper()
	tbl, err := ctx.Artifacts.ReadTable(ref)
	if err != nil {
		t.Fatalf("read %s: %v", ref.ID, err)
	}
	return tbl
}

// Column returns one column of a table, in row order.
func Column(tbl *table.Table, name string) []string {
	out := make([]string, 0, tbl.Len())
	for _, row := range tbl.Rows {
		out = append(out, row[name])
	}
	return out
}

// JournalContains reports whether the job journal mentions text.
func JournalContains(ctx *module.ModuleContext, text string) bool {
	lines, _ := ctx.Logbook.Tail(1000)
	for _, line := range lines {
		if strings.Contains(line, text) {
			return true
		}
	}
	return false
}
