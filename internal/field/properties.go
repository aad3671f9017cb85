// Package field merges layered field configuration and resolves the
// final displayable values for each column of a table: one value per
// requested reducer, or one per raw row in values mode, each carrying
// formatted text, a title, and a threshold-derived color.
package field

import (
	"math"
	"sort"
)

// Threshold is one classification boundary. Value is the inclusive
// lower bound; NaN marks an absent boundary on the wire, which
// normalization turns into -Inf for the base entry. Color is an
// abstract token resolved by the Theme collaborator.
type Threshold struct {
	Value float64 `yaml:"value"`
	Color string  `yaml:"color"`
}

// ValueMapping rewrites a specific raw value to display text.
type ValueMapping struct {
	From string `yaml:"from"`
	Text string `yaml:"text"`
}

// Properties holds per-field display configuration. Scalar attributes
// are optional: a nil pointer means "not supplied", which is how an
// override says "keep the lower layer's value". The wire-level unset
// sentinels (unit "none", NaN decimals, empty date format) are mapped
// to nil pointers at the config boundary.
type Properties struct {
	Min        *float64
	Max        *float64
	Unit       *string
	Decimals   *int
	DateFormat *string
	Title      *string
	Mappings   []ValueMapping
	Thresholds []Threshold
}

// unitIsSet reports whether a unit override should apply. The literal
// "none" is the wire-level unset sentinel and never overrides.
func unitIsSet(u *string) bool {
	return u != nil && *u != "" && *u != "none"
}

// MergeProperties folds overrides left to right over base. Each scalar
// attribute applies only when the override actually supplies it;
// threshold and mapping lists are wholesale-replaced by the last
// override with a non-empty list. The merged result always satisfies
// min <= max and has a normalized threshold list.
func MergeProperties(base Properties, overrides ...Properties) Properties {
	merged := base
	for _, o := range overrides {
		if o.Min != nil && !math.IsNaN(*o.Min) {
			merged.Min = o.Min
		}
		if o.Max != nil && !math.IsNaN(*o.Max) {
			merged.Max = o.Max
		}
		if unitIsSet(o.Unit) {
			merged.Unit = o.Unit
		}
		if o.Decimals != nil {
			merged.Decimals = o.Decimals
		}
		if o.DateFormat != nil && *o.DateFormat != "" {
			merged.DateFormat = o.DateFormat
		}
		if o.Title != nil && *o.Title != "" {
			merged.Title = o.Title
		}
		if len(o.Mappings) > 0 {
			merged.Mappings = o.Mappings
		}
		if len(o.Thresholds) > 0 {
			merged.Thresholds = o.Thresholds
		}
	}

	if merged.Min != nil && merged.Max != nil && *merged.Max < *merged.Min {
		merged.Min, merged.Max = merged.Max, merged.Min
	}
	merged.Thresholds = NormalizeThresholds(merged.Thresholds)
	return merged
}

// NormalizeThresholds orders thresholds by ascending boundary and
// anchors the lowest entry: an absent (NaN) boundary becomes -Inf, so
// a color scan always has a base entry to fall back to. The list
// length is preserved.
func NormalizeThresholds(steps []Threshold) []Threshold {
	if len(steps) == 0 {
		return steps
	}
	out := make([]Threshold, len(steps))
	copy(out, steps)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Value, out[j].Value
		if math.IsNaN(a) {
			return !math.IsNaN(b)
		}
		if math.IsNaN(b) {
			return false
		}
		return a < b
	})
	if math.IsNaN(out[0].Value) {
		out[0].Value = math.Inf(-1)
	}
	return out
}

// ActiveThreshold returns the threshold entry with the highest
// boundary not exceeding v, falling back to the base entry. ok is
// false only for an empty list.
func ActiveThreshold(steps []Threshold, v float64) (Threshold, bool) {
	if len(steps) == 0 {
		return Threshold{}, false
	}
	if math.IsNaN(v) {
		return steps[0], true
	}
	active := steps[0]
	for _, s := range steps[1:] {
		if math.IsNaN(s.Value) || v < s.Value {
			break
		}
		active = s
	}
	return active, true
}

// FloatPtr, IntPtr and StringPtr are small helpers for building
// Properties literals.
func FloatPtr(f float64) *float64 { return &f }
func IntPtr(i int) *int           { return &i }
func StringPtr(s string) *string  { return &s }
