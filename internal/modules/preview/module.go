package preview

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/modules/runtime"
	"github.com/kingrea/claimflow/internal/table"
)

const (
	moduleID      = "preview"
	moduleVersion = "1.0.0"

	// CeilingHeightFtIn replaces the millimetre ceiling column in the page.
	CeilingHeightFtIn = "Ceiling Height (ft/in)"

	mmPerInch = 25.4
)

//go:embed preview.html.tmpl
var pageSource string

var page = template.Must(template.New("preview").Parse(pageSource))

// Module writes estimate_preview.html.
type Module struct {
	*module.Base
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
		Name:        "HTML Preview",
		Description: "Renders the final estimate as an HTML table.",
		Version:     moduleVersion,
	}
	base := module.NewBase(info)
	base.SetInputs(artifact.EstimateFinal)
	base.SetOutputs(artifact.Preview)
	return &Module{Base: &base}
}

// Run renders the preview page.
func (m *Module) Run(ctx *module.ModuleContext) (module.Result, error) {
	if err := runtime.ValidateContext(moduleID, ctx); err != nil {
		return module.Failed(err)
	}
	final, err := runtime.ReadTable(moduleID, ctx, artifact.EstimateFinal)
	if err != nil {
		return runtime.Fail(ctx, moduleID, err)
	}
	body, err := Render(ctx.Job.ID(), final)
	if err != nil {
		return runtime.Fail(ctx, moduleID, fmt.Errorf("%s: %w", moduleID, err))
	}
	if err := ctx.Artifacts.WriteBytes(artifact.Preview, body); err != nil {
		return runtime.Fail(ctx, moduleID, fmt.Errorf("%s: %w", moduleID, err))
	}
	return runtime.Complete(ctx, moduleID, final.Len(), nil, "rendered %d line items", final.Len()), nil
}

type pageData struct {
	Job    string
	Header []string
	Rows   [][]string
}

// Render produces the HTML page for t. Cell values are escaped.
func Render(jobID string, t *table.Table) ([]byte, error) {
	data := pageData{Job: jobID, Header: append([]string{}, t.Header...)}
	ceiling := -1
	for i, col := range data.Header {
		if strings.Contains(col, "Ceiling Height") {
			ceiling = i
			data.Header[i] = CeilingHeightFtIn
			break
		}
	}
	for _, row := range t.Rows {
		cells := make([]string, len(t.Header))
		for i, col := range t.Header {
			cells[i] = row[col]
		}
		if ceiling >= 0 {
			cells[ceiling] = MillimetresToFeetInches(cells[ceiling])
		}
		data.Rows = append(data.Rows, cells)
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return buf.Bytes(), nil
}

// MillimetresToFeetInches formats a millimetre value as 8′ 0″. Values that
// are not numbers are returned unchanged.
func MillimetresToFeetInches(value string) string {
	mm, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return value
	}
	inches := math.RoundToEven(mm / mmPerInch)
	feet := int(inches) / 12
	rem := int(inches) % 12
	if rem < 0 {
		rem = -rem
	}
	return fmt.Sprintf("%d′ %d″", feet, rem)
}
