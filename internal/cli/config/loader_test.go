package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapstat/internal/adapter"
	"github.com/leapstack-labs/leapstat/internal/field"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leapstat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
output: json
calcs: [mean, max]
null_mode: ignore
limit: 100
target:
  type: sqlite
  path: ":memory:"
defaults:
  unit: ms
  decimals: 1
  thresholds:
    - color: green
    - value: 80
      color: red
overrides:
  - matcher:
      name: cpu
    field:
      unit: percent
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, []string{"mean", "max"}, cfg.Calcs)
	assert.Equal(t, "ignore", cfg.NullMode)
	assert.Equal(t, 100, cfg.Limit)
	require.NotNil(t, cfg.Target)
	assert.Equal(t, "sqlite", cfg.Target.Type)

	props := cfg.Defaults.ToProperties()
	require.NotNil(t, props.Unit)
	assert.Equal(t, "ms", *props.Unit)
	require.NotNil(t, props.Decimals)
	assert.Equal(t, 1, *props.Decimals)
	require.Len(t, props.Thresholds, 2)
	assert.True(t, math.IsNaN(props.Thresholds[0].Value), "missing boundary carries the unset sentinel")
	assert.Equal(t, 80.0, props.Thresholds[1].Value)

	overrides := cfg.FieldOverrides()
	require.Len(t, overrides, 1)
	assert.Equal(t, "cpu", overrides[0].Matcher.Name)
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultLimit, cfg.Limit)
	assert.Equal(t, DefaultNullMode, cfg.NullMode)
	assert.Equal(t, DefaultTheme, cfg.Theme)
}

func TestLoadNaNSentinel(t *testing.T) {
	path := writeConfig(t, `
defaults:
  max: NaN
  min: 5
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	require.NotNil(t, cfg.Defaults.Max)
	assert.True(t, math.IsNaN(*cfg.Defaults.Max))

	props := cfg.Defaults.ToProperties()
	assert.Nil(t, props.Max, "NaN max is the unset sentinel")
	require.NotNil(t, props.Min)
	assert.Equal(t, 5.0, *props.Min)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEAPSTAT_OUTPUT", "csv")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Output)
}

func TestLoadOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
overrides:
  - matcher:
      name_pattern: "^mem"
    field:
      unit: bytes
      thresholds:
        - color: green
        - value: 1073741824
          color: red
`), 0o600))

	overrides, err := LoadOverridesFile(path)
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.Equal(t, "^mem", overrides[0].Matcher.NamePattern)
	assert.Equal(t, "bytes", overrides[0].Field.Unit)
	require.Len(t, overrides[0].Field.Thresholds, 2)
	assert.Nil(t, overrides[0].Field.Thresholds[0].Value)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Output:   "table",
			Theme:    "auto",
			NullMode: "null",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "bad output", mutate: func(c *Config) { c.Output = "xml" }, wantErr: "invalid output format"},
		{name: "bad theme", mutate: func(c *Config) { c.Theme = "sepia" }, wantErr: "invalid theme"},
		{name: "negative limit", mutate: func(c *Config) { c.Limit = -2 }, wantErr: "must not be negative"},
		{name: "bad null mode", mutate: func(c *Config) { c.NullMode = "maybe" }, wantErr: "unknown null mode"},
		{name: "unknown reducer", mutate: func(c *Config) { c.Calcs = []string{"median"} }, wantErr: "unknown reducer"},
		{name: "unknown adapter", mutate: func(c *Config) { c.Target = &adapter.Config{Type: "oracle"} }, wantErr: "unknown adapter"},
		{name: "bad override pattern", mutate: func(c *Config) {
			c.Overrides = []OverrideConfig{{Matcher: MatcherConfig{NamePattern: "("}}}
		}, wantErr: "invalid field matcher pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFieldConfigSentinels(t *testing.T) {
	fc := FieldConfig{
		Unit:       "none",
		DateFormat: "",
		Decimals:   floatPtr(math.NaN()),
		Min:        floatPtr(math.NaN()),
	}

	props := fc.ToProperties()
	assert.Equal(t, field.Properties{}, props)
}

func floatPtr(f float64) *float64 { return &f }
