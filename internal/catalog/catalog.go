// Package catalog loads the line-item templates the estimate stage draws
// from. The built-in set is embedded; projects can point config.yaml at their
// own file.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// ItemTemplate is one canned line item. Room is empty for per-room templates.
type ItemTemplate struct {
	Room        string  `yaml:"room,omitempty"`
	Code        string  `yaml:"code"`
	Description string  `yaml:"description"`
	Quantity    float64 `yaml:"quantity"`
}

// CauseTemplate lists the items for one cause of loss.
type CauseTemplate struct {
	// RequireWaterHeight emits the items only when the flood water height is
	// known and positive.
	RequireWaterHeight bool `yaml:"require_water_height,omitempty"`
	// RequireNote emits the items only when the assumption notes contain the
	// phrase (case-insensitive).
	RequireNote string         `yaml:"require_note,omitempty"`
	Items       []ItemTemplate `yaml:"items"`
}

// CoverageTemplates lists the items gated on claim and policy flags.
type CoverageTemplates struct {
	MoldRemediation []ItemTemplate `yaml:"mold_remediation"`
	ALE             []ItemTemplate `yaml:"ale"`
	OrdinanceAndLaw []ItemTemplate `yaml:"ordinance_and_law"`
}

// Catalog is the full template set.
type Catalog struct {
	Version  int                      `yaml:"version"`
	Causes   map[string]CauseTemplate `yaml:"causes"`
	Coverage CoverageTemplates        `yaml:"coverage"`
	PerRoom  []ItemTemplate           `yaml:"per_room"`
}

// Default returns the embedded template set.
func Default() *Catalog {
	cat, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded templates invalid: %v", err))
	}
	return cat
}

// Parse decodes and validates a template file.
func Parse(data []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("catalog: template payload is empty")
	}
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("catalog: decode templates: %w", err)
	}
	cat.normalize()
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// LoadFile reads templates from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return cat, nil
}

// Load reads path when set, otherwise returns the built-in templates.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Cause returns the template for a normalized cause of loss.
func (c *Catalog) Cause(cause string) (CauseTemplate, bool) {
	tmpl, ok := c.Causes[strings.ToLower(strings.TrimSpace(cause))]
	return tmpl, ok
}

// CauseNames lists the configured causes, sorted.
func (c *Catalog) CauseNames() []string {
	names := make([]string, 0, len(c.Causes))
	for name := range c.Causes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every template carries a code and, outside per_room, a room.
func (c *Catalog) Validate() error {
	for _, name := range c.CauseNames() {
		if err := validateItems("causes."+name, c.Causes[name].Items, true); err != nil {
			return err
		}
	}
	groups := []struct {
		name  string
		items []ItemTemplate
	}{
		{"coverage.mold_remediation", c.Coverage.MoldRemediation},
		{"coverage.ale", c.Coverage.ALE},
		{"coverage.ordinance_and_law", c.Coverage.OrdinanceAndLaw},
	}
	for _, group := range groups {
		if err := validateItems(group.name, group.items, true); err != nil {
			return err
		}
	}
	return validateItems("per_room", c.PerRoom, false)
}

func validateItems(where string, items []ItemTemplate, needRoom bool) error {
	for i, item := range items {
		if item.Code == "" {
			return fmt.Errorf("catalog: %s[%d]: code is required", where, i)
		}
		if needRoom && item.Room == "" {
			return fmt.Errorf("catalog: %s[%d] (%s): room is required", where, i, item.Code)
		}
		if item.Quantity < 0 {
			return fmt.Errorf("catalog: %s[%d] (%s): quantity must be >= 0", where, i, item.Code)
		}
	}
	return nil
}

func (c *Catalog) normalize() {
	if c.Version == 0 {
		c.Version = 1
	}
	if len(c.Causes) > 0 {
		normalized := make(map[string]CauseTemplate, len(c.Causes))
		for name, tmpl := range c.Causes {
			tmpl.RequireNote = strings.TrimSpace(tmpl.RequireNote)
			tmpl.Items = trimItems(tmpl.Items)
			normalized[strings.ToLower(strings.TrimSpace(name))] = tmpl
		}
		c.Causes = normalized
	}
	c.Coverage.MoldRemediation = trimItems(c.Coverage.MoldRemediation)
	c.Coverage.ALE = trimItems(c.Coverage.ALE)
	c.Coverage.OrdinanceAndLaw = trimItems(c.Coverage.OrdinanceAndLaw)
	c.PerRoom = trimItems(c.PerRoom)
}

func trimItems(items []ItemTemplate) []ItemTemplate {
	for i := range items {
		items[i].Room = strings.TrimSpace(items[i].Room)
		items[i].Code = strings.TrimSpace(items[i].Code)
		items[i].Description = strings.TrimSpace(items[i].Description)
	}
	return items
}
