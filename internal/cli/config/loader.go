package config

import (
	"fmt"
	"math"
	"os"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultOutput   = "table"
	DefaultLimit    = 25
	DefaultNullMode = "null"
	DefaultTheme    = "auto"
)

var configFileUsed string

// findConfigFile finds the config file to use.
// Priority: explicit path > leapstat.yaml > leapstat.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"leapstat.yaml", "leapstat.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from file, environment variables, and
// flags. Precedence (highest to lowest): flags > env vars > config
// file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults.
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"output":    DefaultOutput,
		"limit":     DefaultLimit,
		"null_mode": DefaultNullMode,
		"theme":     DefaultTheme,
		"verbose":   false,
		"values":    false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file.
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables: LEAPSTAT_NULL_MODE -> null_mode.
	if err := k.Load(env.Provider("LEAPSTAT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "LEAPSTAT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only the ones explicitly set.
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal. The decode hook accepts the literal "NaN" for
	// numeric field attributes so config files can carry the
	// historical unset sentinel.
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
			DecodeHook:       mapstructure.ComposeDecodeHookFunc(nanStringHook),
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Merge overrides file, appended after inline overrides so it
	// wins per-attribute.
	if cfg.OverridesFile != "" {
		fileOverrides, err := LoadOverridesFile(cfg.OverridesFile)
		if err != nil {
			return nil, err
		}
		cfg.Overrides = append(cfg.Overrides, fileOverrides...)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOverridesFile parses a standalone YAML document holding a list
// of field overrides.
func LoadOverridesFile(path string) ([]OverrideConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}
	var doc struct {
		Overrides []OverrideConfig `yaml:"overrides"`
	}
	if err := yamlv3.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse overrides file %s: %w", path, err)
	}
	return doc.Overrides, nil
}

// GetConfigFileUsed returns the path to the config file being used,
// if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// nanStringHook converts the string "NaN" to a float64 NaN when the
// destination is a float, so YAML config can express the unset
// sentinel for numeric attributes.
func nanStringHook(from reflect.Value, to reflect.Value) (interface{}, error) {
	if from.Kind() != reflect.String {
		return from.Interface(), nil
	}
	kind := to.Kind()
	if kind == reflect.Ptr {
		kind = to.Type().Elem().Kind()
	}
	if (kind == reflect.Float64 || kind == reflect.Float32) && strings.EqualFold(from.String(), "nan") {
		return math.NaN(), nil
	}
	return from.Interface(), nil
}
