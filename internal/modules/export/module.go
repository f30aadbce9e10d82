package export

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/claim"
	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/modules/runtime"
	"github.com/kingrea/claimflow/internal/table"
	"github.com/kingrea/claimflow/internal/units"
)

const (
	moduleID      = "export"
	moduleVersion = "1.0.0"

	sheetName = "Import"
)

var columnWidths = []float64{18, 28, 18}

// Module writes estimate_xact_import.csv and .xlsx.
type Module struct {
	*module.Base
	policy units.Policy
}

// Register installs the module factory into the provided registry.
func Register(reg *module.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(moduleID, func(module.Config) (module.Module, error) {
		return New(), nil
	})
}

// New constructs the module with its IO contracts declared.
func New() *Module {
	info := module.Info{
		ID:          moduleID,
		Name:        "Import Export",
		Description: "Formats the final estimate into the three-column import file.",
		Version:     moduleVersion,
	}
	base := module.NewBase(info)
	base.SetInputs(artifact.EstimateFinal)
	base.SetOutputs(artifact.ImportCSV, artifact.ImportXLSX)
	return &Module{Base: &base, policy: units.Export}
}

// Run writes the import files.
func (m *Module) Run(ctx *module.ModuleContext) (module.Result, error) {
	if err := runtime.ValidateContext(moduleID, ctx); err != nil {
		return module.Failed(err)
	}
	var warnings claim.Warnings
	final, err := ctx.Artifacts.ReadTable(artifact.EstimateFinal)
	missing := errors.Is(err, claim.ErrMissingInput)
	switch {
	case missing:
		warnings.Addf("final estimate missing; writing an empty import file and no workbook")
		final = table.New(claim.EstimateHeader()...)
	case err != nil:
		return runtime.Fail(ctx, moduleID, fmt.Errorf("%s: %w", moduleID, err))
	}

	out, skipped := Rows(final, m.policy)
	if skipped > 0 {
		warnings.Addf("skipped %d incomplete rows", skipped)
	}
	if err := runtime.WriteTable(moduleID, ctx, artifact.ImportCSV, out); err != nil {
		return runtime.Fail(ctx, moduleID, err)
	}
	if missing {
		if err := os.Remove(ctx.Artifacts.Path(artifact.ImportXLSX)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return runtime.Fail(ctx, moduleID, fmt.Errorf("%s: remove stale workbook: %w", moduleID, err))
		}
	} else if ctx.Config == nil || ctx.Config.Project.Export.XLSX {
		data, err := Workbook(out)
		if err != nil {
			return runtime.Fail(ctx, moduleID, fmt.Errorf("%s: %w", moduleID, err))
		}
		if err := ctx.Artifacts.WriteBytes(artifact.ImportXLSX, data); err != nil {
			return runtime.Fail(ctx, moduleID, fmt.Errorf("%s: %w", moduleID, err))
		}
	}
	return runtime.Complete(ctx, moduleID, out.Len(), warnings, "exported %d import rows", out.Len()), nil
}

// Rows builds the import table from the final estimate and reports how many
// rows were skipped for missing a code, room or quantity.
func Rows(final *table.Table, policy units.Policy) (*table.Table, int) {
	out := table.New(claim.ImportHeader()...)
	skipped := 0
	for _, row := range final.Rows {
		code := strings.TrimSpace(row[claim.ColCode])
		room := strings.TrimSpace(row.Get(claim.ColRoom, claim.ColRoomName))
		desc := strings.TrimSpace(row[claim.ColDescription])
		qty := strings.TrimSpace(row[claim.ColQuantity])
		if code == "" || room == "" || qty == "" {
			skipped++
			continue
		}
		unit := policy.Infer(code, desc)
		out.Append(table.Row{
			claim.ColCode:     code,
			claim.ColRoom:     room,
			claim.ColQuantity: units.NormalizeQuantity(qty, unit),
		})
	}
	return out, skipped
}

// Workbook renders the import table as a single-sheet .xlsx with a styled
// header row.
func Workbook(t *table.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for col, name := range t.Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return nil, fmt.Errorf("header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("header style %s: %w", cell, err)
		}
		if col < len(columnWidths) {
			letter, err := excelize.ColumnNumberToName(col + 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetColWidth(sheetName, letter, letter, columnWidths[col]); err != nil {
				return nil, fmt.Errorf("column width %s: %w", letter, err)
			}
		}
	}

	for r, row := range t.Rows {
		for col, name := range t.Header {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellStr(sheetName, cell, row[name]); err != nil {
				return nil, fmt.Errorf("cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
