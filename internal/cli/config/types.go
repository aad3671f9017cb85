// Package config loads leapstat configuration from file, environment
// and flags, and converts the wire-level field configuration (with
// its unset sentinels) into the resolver's optional-field form.
package config

import (
	"math"

	"github.com/leapstack-labs/leapstat/internal/adapter"
	"github.com/leapstack-labs/leapstat/internal/field"
)

// Config is the full CLI configuration.
type Config struct {
	Verbose bool   `koanf:"verbose"`
	Output  string `koanf:"output"` // table, json, csv, markdown
	Locale  string `koanf:"locale"`
	Theme   string `koanf:"theme"` // auto, dark, light

	// Reduction settings.
	Calcs    []string `koanf:"calcs"`
	Values   bool     `koanf:"values"`
	Limit    int      `koanf:"limit"`
	NullMode string   `koanf:"null_mode"`

	// Target is the data source to query; optional when reading CSV.
	Target *adapter.Config `koanf:"target"`

	// Defaults are the base field properties; Overrides layer on top
	// of them per matching column. OverridesFile points at a separate
	// YAML document with additional overrides.
	Defaults      FieldConfig      `koanf:"defaults"`
	Overrides     []OverrideConfig `koanf:"overrides"`
	OverridesFile string           `koanf:"overrides_file"`
}

// FieldConfig is the wire-level form of field properties. For
// compatibility with existing config files it accepts the historical
// unset sentinels: unit "none", NaN decimals/min/max, empty date
// format. ToProperties converts them to unset optional fields.
type FieldConfig struct {
	Min        *float64             `koanf:"min" yaml:"min"`
	Max        *float64             `koanf:"max" yaml:"max"`
	Unit       string               `koanf:"unit" yaml:"unit"`
	Decimals   *float64             `koanf:"decimals" yaml:"decimals"`
	DateFormat string               `koanf:"date_format" yaml:"date_format"`
	Title      string               `koanf:"title" yaml:"title"`
	Mappings   []field.ValueMapping `koanf:"mappings" yaml:"mappings"`
	Thresholds []ThresholdConfig    `koanf:"thresholds" yaml:"thresholds"`
}

// ThresholdConfig is one wire-level threshold step. A nil Value marks
// the base step; normalization anchors it at -Inf.
type ThresholdConfig struct {
	Value *float64 `koanf:"value" yaml:"value"`
	Color string   `koanf:"color" yaml:"color"`
}

// MatcherConfig selects the columns an override applies to.
type MatcherConfig struct {
	Name        string `koanf:"name" yaml:"name"`
	NamePattern string `koanf:"name_pattern" yaml:"name_pattern"`
	Type        string `koanf:"type" yaml:"type"`
}

// OverrideConfig pairs a matcher with the field properties it layers.
type OverrideConfig struct {
	Matcher MatcherConfig `koanf:"matcher" yaml:"matcher"`
	Field   FieldConfig   `koanf:"field" yaml:"field"`
}

// ToProperties converts the wire form to resolver properties,
// dropping unset sentinels.
func (f FieldConfig) ToProperties() field.Properties {
	p := field.Properties{}
	if f.Min != nil && !math.IsNaN(*f.Min) {
		p.Min = f.Min
	}
	if f.Max != nil && !math.IsNaN(*f.Max) {
		p.Max = f.Max
	}
	if f.Unit != "" && f.Unit != "none" {
		p.Unit = field.StringPtr(f.Unit)
	}
	if f.Decimals != nil && !math.IsNaN(*f.Decimals) && *f.Decimals >= 0 {
		p.Decimals = field.IntPtr(int(*f.Decimals))
	}
	if f.DateFormat != "" {
		p.DateFormat = field.StringPtr(f.DateFormat)
	}
	if f.Title != "" {
		p.Title = field.StringPtr(f.Title)
	}
	p.Mappings = f.Mappings
	for _, t := range f.Thresholds {
		v := math.NaN()
		if t.Value != nil {
			v = *t.Value
		}
		p.Thresholds = append(p.Thresholds, field.Threshold{Value: v, Color: t.Color})
	}
	return p
}

// ToOverride converts the wire form to a resolver override.
func (o OverrideConfig) ToOverride() field.Override {
	return field.Override{
		Matcher: field.Matcher{
			Name:        o.Matcher.Name,
			NamePattern: o.Matcher.NamePattern,
			Type:        o.Matcher.Type,
		},
		Properties: o.Field.ToProperties(),
	}
}

// Overrides converts every configured override, including the ones
// loaded from the overrides file, in declaration order.
func (c *Config) FieldOverrides() []field.Override {
	out := make([]field.Override, 0, len(c.Overrides))
	for _, o := range c.Overrides {
		out = append(out, o.ToOverride())
	}
	return out
}
