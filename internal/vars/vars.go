// Package vars substitutes recognized placeholders in title
// templates. Only the documented variables are replaced; anything
// else is left untouched so templates survive round trips.
package vars

import (
	"strings"

	"github.com/leapstack-labs/leapstat/internal/field"
)

// Recognized placeholders.
const (
	VarCell       = "${__cell}"
	VarFieldName  = "${__field.name}"
	VarSeriesName = "${__series.name}"
)

// Replacer is the default field.VariableReplacer implementation.
type Replacer struct{}

// New returns a Replacer.
func New() *Replacer { return &Replacer{} }

// Replace substitutes the recognized placeholders from the scope.
func (r *Replacer) Replace(template string, scope field.VarScope) string {
	if template == "" || !strings.Contains(template, "${") {
		return template
	}
	return strings.NewReplacer(
		VarCell, scope.Cell,
		VarFieldName, scope.FieldName,
		VarSeriesName, scope.SeriesName,
	).Replace(template)
}
