// Package units holds the two unit-of-measure policies used by the pipeline.
//
// The justification annotator and the export formatter infer units from
// different keyword sets and they do not agree (flooring is SQFT for one and
// QTY for the other, for instance). Both are kept here side by side as named
// policies so the divergence is visible in one place.
package units

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Unit is a unit-of-measure suffix.
type Unit string

const (
	SQFT Unit = "SQFT"
	SF   Unit = "SF"
	LF   Unit = "LF"
	EA   Unit = "EA"
	QTY  Unit = "QTY"
)

// Policy infers a unit for a line item.
type Policy interface {
	Name() string
	Infer(code, description string) Unit
}

type keywordRule struct {
	unit     Unit
	codes    map[string]bool
	keywords []string
}

func (r keywordRule) matches(code, desc string) bool {
	if r.codes[code] {
		return true
	}
	for _, kw := range r.keywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

type keywordPolicy struct {
	name     string
	rules    []keywordRule
	fallback Unit
}

func (p keywordPolicy) Name() string { return p.name }

func (p keywordPolicy) Infer(code, description string) Unit {
	c := strings.ToUpper(strings.TrimSpace(code))
	d := strings.ToLower(description)
	for _, rule := range p.rules {
		if rule.matches(c, d) {
			return rule.unit
		}
	}
	return p.fallback
}

func codeSet(codes ...string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, code := range codes {
		set[code] = true
	}
	return set
}

// Justification matches description keywords only: area words, then length
// words, then count words, then paint. Unmatched items count as EA.
var Justification Policy = keywordPolicy{
	name: "justification",
	rules: []keywordRule{
		{unit: SQFT, keywords: []string{"sqft", "square foot", "per sf", "flooring"}},
		{unit: LF, keywords: []string{"lf", "linear", "baseboard", "drywall removal up to"}},
		{unit: EA, keywords: []string{"ea", "each", "fixture", "appliance"}},
		{unit: SQFT, keywords: []string{"paint"}},
	},
	fallback: EA,
}

// Export checks two fixed code sets plus a few description keywords.
// Unmatched items are QTY.
var Export Policy = keywordPolicy{
	name: "export",
	rules: []keywordRule{
		{unit: LF, codes: codeSet("DRYBD", "DRYRM2", "BASEDEM", "BASEINST"), keywords: []string{"lf", "linear"}},
		{unit: SF, codes: codeSet("FLRPLS", "PNTINT", "PNTWALL", "PAINT"), keywords: []string{"sf", "per sf", "square"}},
	},
	fallback: QTY,
}

// Append suffixes a quantity with its unit as "<qty> <unit>" without looking
// at the quantity.
func Append(quantity string, unit Unit) string {
	return quantity + " " + string(unit)
}

// NormalizeQuantity prepares a quantity for import. Blank input stays blank.
// Anything already containing a letter ("25 SF") passes through untouched.
// Numbers print as integers when integral and otherwise with at most two
// decimals, trailing zeros trimmed. Non-numeric text is kept as is. The
// unit is then appended.
func NormalizeQuantity(quantity string, unit Unit) string {
	s := strings.TrimSpace(quantity)
	if s == "" {
		return ""
	}
	if strings.IndexFunc(s, unicode.IsLetter) >= 0 {
		return s
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(v, 0) {
		s = formatNumber(v)
	}
	return Append(s, unit)
}

func formatNumber(v float64) string {
	if math.Abs(v-math.Trunc(v)) < 1e-9 {
		return strconv.FormatFloat(math.Trunc(v), 'f', 0, 64)
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
