package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJustificationPolicy(t *testing.T) {
	cases := map[string]Unit{
		"Flooring - replace (SF)":          SQFT,
		"Cost per SF":                      SQFT,
		"Drywall removal up to 2ft":        LF,
		"Baseboard removal & replacement":  LF,
		"Drywall base prep (LF)":           LF,
		"Light fixture":                    EA,
		"Clean and regrout lower cabinets": EA,
		"Paint interior walls (SF)":        SQFT,
		"Paint":                            SQFT,
		"Mold remediation":                 EA,
	}
	for desc, want := range cases {
		assert.Equal(t, want, Justification.Infer("", desc), desc)
	}
}

func TestExportPolicy(t *testing.T) {
	cases := []struct {
		code, desc string
		want       Unit
	}{
		{"DRYRM2", "Drywall removal up to 2ft", LF},
		{"dryrm2", "", LF},
		{"CABLOW", "Clean and regrout lower cabinets", QTY},
		{"BSBRD", "Baseboard removal & replacement", QTY},
		{"FLRPLS", "Flooring - replace (SF)", SF},
		{"XYZ", "Linear trim", LF},
		{"XYZ", "Square footage", SF},
		{"ALE", "Temporary housing allowance (7 days)", QTY},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Export.Infer(tc.code, tc.desc), "%s %s", tc.code, tc.desc)
	}
}

func TestPoliciesDisagreeOnFlooring(t *testing.T) {
	assert.Equal(t, SQFT, Justification.Infer("FLRPLS", "Flooring - replace"))
	assert.Equal(t, SF, Export.Infer("FLRPLS", "Flooring - replace"))
	assert.Equal(t, QTY, Export.Infer("FLR", "Flooring - replace"))
}

func TestNormalizeQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"25", "25 SF"},
		{"25.0", "25 SF"},
		{"25 SF", "25 SF"},
		{" 12.50 ", "12.5 SF"},
		{"3.14159", "3.14 SF"},
		{"0.004", "0 SF"},
		{"", ""},
		{"1/2", "1/2 SF"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeQuantity(tc.in, SF), "input %q", tc.in)
	}
}

func TestAppend(t *testing.T) {
	assert.Equal(t, "120 LF", Append("120", LF))
}
