package claim

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Peril is the normalized cause of loss.
type Peril string

const (
	PerilFlood Peril = "flood"
	PerilFire  Peril = "fire"
	PerilWind  Peril = "wind"
	PerilStorm Peril = "storm"
	PerilWater Peril = "water"
)

// Perils lists the causes of loss intake offers, in display order.
func Perils() []Peril {
	return []Peril{PerilFlood, PerilFire, PerilStorm, PerilWater, PerilWind}
}

// ParsePeril lower-cases and trims a cause of loss.
func ParsePeril(value string) Peril {
	return Peril(strings.ToLower(strings.TrimSpace(value)))
}

// IsFlood reports whether the cause mentions flooding ("flood", "Flash Flood").
func (p Peril) IsFlood() bool {
	return strings.Contains(string(p), string(PerilFlood))
}

// Policy holds the coverage flags parsed from the policy summary.
type Policy struct {
	// ALE is the coverage check applied by the policy stage; true unless the
	// summary says otherwise.
	ALE bool
	// ALECoverage gates whether the generator adds the ALE item at all.
	ALECoverage     bool
	MoldLimit       *float64
	OrdinanceAndLaw bool
	Exclusions      []string
}

// Context is the read-only claim context assembled from the job's JSON
// documents.
type Context struct {
	CauseOfLoss           Peril
	FloodWaterHeightIn    *float64
	MoldRemediationNeeded bool
	AssumptionNotes       string
	Policy                Policy
}

// WaterHeightIn returns the flood water height, or 0 when unknown.
func (c Context) WaterHeightIn() float64 {
	if c.FloodWaterHeightIn == nil {
		return 0
	}
	return *c.FloodWaterHeightIn
}

// Document is a decoded JSON object.
type Document map[string]any

// NewContext assembles a context from the job metadata, policy summary and
// claim assumptions documents. Any of them may be nil. Fields that are
// absent fall back to their defaults; values present but unusable are
// reported as warnings.
func NewContext(job, policy, assumptions Document) (Context, Warnings) {
	var warnings Warnings
	ctx := Context{
		CauseOfLoss: ParsePeril(firstString(job, "cause", "cause_of_loss")),
		Policy:      Policy{ALE: true},
	}

	if raw, key, ok := firstValue(job, "flood_water_height_in", "water_height_in"); ok {
		if height, ok := Number(raw); ok {
			ctx.FloodWaterHeightIn = &height
		} else {
			warnings.Addf("job_metadata: %s %v is not a number", key, raw)
		}
	}

	ctx.MoldRemediationNeeded = Flag(assumptions["mold_remediation_needed"], false)
	ctx.AssumptionNotes = stringValue(assumptions["notes"])

	if raw, ok := policy["ALE"]; ok {
		ctx.Policy.ALE = Flag(raw, true)
	}
	ctx.Policy.ALECoverage = isYes(policy["ALE_coverage"])
	ctx.Policy.OrdinanceAndLaw = isYes(policy["ordinance_and_law"])
	if raw, key, ok := firstValue(policy, "MoldLimit", "mold_limit"); ok && raw != nil {
		if limit, ok := Number(raw); ok && (limit < 0 || limit >= math.MaxInt64) {
			warnings.Addf("policy_summary: %s %v is out of range", key, raw)
		} else if ok {
			ctx.Policy.MoldLimit = &limit
		} else {
			warnings.Addf("policy_summary: %s %v is not a number", key, raw)
		}
	}
	if list, ok := policy["exclusions"].([]any); ok {
		for _, entry := range list {
			if s := strings.TrimSpace(stringValue(entry)); s != "" {
				ctx.Policy.Exclusions = append(ctx.Policy.Exclusions, s)
			}
		}
	}
	return ctx, warnings
}

// Number coerces JSON numbers and numeric strings. NaN and infinities are
// rejected.
func Number(value any) (float64, bool) {
	f, ok := number(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Flag interprets booleans, numbers and yes/no strings. Anything else,
// including nil, yields def.
func Flag(value any, def bool) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "y", "true", "1", "on":
			return true
		case "no", "n", "false", "0", "off", "":
			return false
		}
		return def
	default:
		if n, ok := Number(value); ok {
			return n != 0
		}
		return def
	}
}

func isYes(value any) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	return strings.EqualFold(strings.TrimSpace(stringValue(value)), "yes")
}

func firstValue(doc Document, keys ...string) (any, string, bool) {
	for _, key := range keys {
		if value, ok := doc[key]; ok {
			return value, key, true
		}
	}
	return nil, "", false
}

func firstString(doc Document, keys ...string) string {
	for _, key := range keys {
		if s := strings.TrimSpace(stringValue(doc[key])); s != "" {
			return s
		}
	}
	return ""
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
