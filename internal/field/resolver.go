package field

import (
	"fmt"
	"math"
	"strconv"

	"github.com/leapstack-labs/leapstat/internal/frame"
	"github.com/leapstack-labs/leapstat/internal/reduce"
)

// Collaborator interfaces. Formatting, variable substitution, and
// theme color resolution are consumed, not implemented, by the
// resolver; internal/format, internal/vars, and internal/theme carry
// the default implementations.
type (
	// Formatter renders a numeric value as localized display text.
	// decimals < 0 requests automatic precision.
	Formatter interface {
		Format(value float64, unit string, decimals int) string
	}

	// VariableReplacer substitutes recognized placeholders in title
	// templates. Unknown placeholders are left intact.
	VariableReplacer interface {
		Replace(template string, scope VarScope) string
	}

	// Theme resolves an abstract threshold color token to a
	// renderable color.
	Theme interface {
		ResolveColor(token string) string
	}
)

// VarScope is the substitution scope for one display value.
type VarScope struct {
	Cell       string
	FieldName  string
	SeriesName string
}

// DisplayValue is one resolved output: the numeric payload (NaN when
// the underlying value is not numeric), formatted text, a title, the
// threshold-derived color, and the field configuration it was
// resolved under. Immutable once produced.
type DisplayValue struct {
	Numeric float64
	Text    string
	Title   string
	Color   string
	Field   Properties
}

// Options configures one resolution run.
type Options struct {
	// Calcs are the reducers to compute per column. Ignored in
	// values mode.
	Calcs []reduce.ID

	// Values emits one display value per raw row instead of
	// reductions.
	Values bool

	// Limit bounds the total number of values emitted in values
	// mode, across all tables and columns. Zero means unlimited;
	// negative is a configuration error.
	Limit int

	NullPolicy reduce.NullPolicy
	Defaults   Properties
	Overrides  []Override

	Formatter Formatter
	Replacer  VariableReplacer
	Theme     Theme
}

const noDataText = "No data"

// ResolveDisplayValues walks every numeric column of every table in
// table-then-column order, merges the field configuration for it, and
// emits its display values: one per requested reducer, or one per row
// in values mode. A table without columns still yields one entry so
// the merged field configuration stays inspectable.
func ResolveDisplayValues(tables []*frame.Table, opts Options) ([]DisplayValue, error) {
	if opts.Values && opts.Limit < 0 {
		return nil, fmt.Errorf("negative value limit %d", opts.Limit)
	}
	if !opts.Values {
		for _, id := range opts.Calcs {
			if _, err := reduce.Get(id); err != nil {
				return nil, err
			}
		}
	}
	for i := range opts.Overrides {
		if err := opts.Overrides[i].Matcher.Compile(); err != nil {
			return nil, err
		}
	}

	var out []DisplayValue
	for _, t := range tables {
		if len(t.Columns) == 0 {
			merged := MergeProperties(opts.Defaults)
			out = append(out, DisplayValue{
				Numeric: math.NaN(),
				Text:    noDataText,
				Title:   t.Name,
				Color:   resolveColor(merged, math.NaN(), opts.Theme),
				Field:   merged,
			})
			continue
		}

		for colIdx, col := range t.Columns {
			if col.Type != frame.TypeNumber {
				continue
			}

			var layers []Properties
			for _, o := range opts.Overrides {
				if o.Matcher.Match(col) {
					layers = append(layers, o.Properties)
				}
			}
			merged := MergeProperties(opts.Defaults, layers...)
			title := titleTemplate(merged, len(tables) > 1)

			if opts.Values {
				for _, row := range t.Rows {
					if opts.Limit > 0 && len(out) >= opts.Limit {
						return out, nil
					}
					out = append(out, buildDisplay(row[colIdx], merged, title, t, col, opts))
				}
				continue
			}

			calcs, err := reduce.Reduce(t, colIdx, opts.Calcs, opts.NullPolicy)
			if err != nil {
				return nil, err
			}
			emitted := make(map[reduce.ID]struct{}, len(opts.Calcs))
			for _, id := range opts.Calcs {
				desc, err := reduce.Get(id)
				if err != nil {
					return nil, err
				}
				if _, dup := emitted[desc.ID]; dup {
					continue
				}
				emitted[desc.ID] = struct{}{}
				out = append(out, buildDisplay(calcs[desc.ID], merged, title, t, col, opts))
			}
		}
	}
	return out, nil
}

// titleTemplate picks the title template for a column: an explicit
// override wins, otherwise the field name, prefixed with the series
// name when more than one table is being resolved.
func titleTemplate(merged Properties, multiSeries bool) string {
	if merged.Title != nil && *merged.Title != "" {
		return *merged.Title
	}
	if multiSeries {
		return "${__series.name} ${__field.name}"
	}
	return "${__field.name}"
}

// buildDisplay resolves one value into its final display form.
func buildDisplay(v any, merged Properties, title string, t *frame.Table, col frame.Column, opts Options) DisplayValue {
	f, numeric := frame.ToFloat(v)
	if _, isBool := v.(bool); isBool {
		// Boolean results (allIsZero, allIsNull) stay textual.
		numeric = false
	}
	if !numeric {
		f = math.NaN()
	}

	text := displayText(v, f, numeric, merged, opts.Formatter)
	scope := VarScope{Cell: text, FieldName: col.Title(), SeriesName: t.Name}
	if opts.Replacer != nil {
		title = opts.Replacer.Replace(title, scope)
	}

	return DisplayValue{
		Numeric: f,
		Text:    text,
		Title:   title,
		Color:   resolveColor(merged, f, opts.Theme),
		Field:   merged,
	}
}

func displayText(v any, f float64, numeric bool, merged Properties, formatter Formatter) string {
	raw := ""
	if v != nil {
		raw = fmt.Sprint(v)
	}
	for _, m := range merged.Mappings {
		if m.From == raw {
			return m.Text
		}
	}
	switch {
	case v == nil:
		return ""
	case !numeric:
		return raw
	case formatter != nil:
		unit := ""
		if merged.Unit != nil {
			unit = *merged.Unit
		}
		decimals := -1
		if merged.Decimals != nil {
			decimals = *merged.Decimals
		}
		return formatter.Format(f, unit, decimals)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// resolveColor scans the merged thresholds for the value and resolves
// the winning token through the theme. NaN values fall back to the
// base threshold.
func resolveColor(merged Properties, v float64, theme Theme) string {
	step, ok := ActiveThreshold(merged.Thresholds, v)
	if !ok {
		return ""
	}
	if theme == nil {
		return step.Color
	}
	return theme.ResolveColor(step.Color)
}
