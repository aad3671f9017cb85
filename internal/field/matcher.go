package field

import (
	"fmt"
	"regexp"

	"github.com/leapstack-labs/leapstat/internal/frame"
)

// Matcher selects the columns an override applies to. Criteria are
// AND-ed; an empty matcher matches every column.
type Matcher struct {
	// Name matches the column name or display name exactly.
	Name string

	// NamePattern is a regular expression matched against the column
	// name. Compiled lazily on first use.
	NamePattern string

	// Type matches the declared column type when non-empty
	// ("number", "text", "time", "bool", "other").
	Type string

	re *regexp.Regexp
}

// Compile validates the matcher, compiling the name pattern if one is
// set. Must be called before Match.
func (m *Matcher) Compile() error {
	if m.NamePattern == "" {
		return nil
	}
	re, err := regexp.Compile(m.NamePattern)
	if err != nil {
		return fmt.Errorf("invalid field matcher pattern %q: %w", m.NamePattern, err)
	}
	m.re = re
	return nil
}

// Match reports whether the column satisfies every set criterion.
func (m *Matcher) Match(col frame.Column) bool {
	if m.Name != "" && m.Name != col.Name && m.Name != col.DisplayName {
		return false
	}
	if m.re != nil && !m.re.MatchString(col.Name) {
		return false
	}
	if m.Type != "" && m.Type != col.Type.String() {
		return false
	}
	return true
}

// Override pairs a matcher with the properties it layers on top of
// the defaults for matching columns.
type Override struct {
	Matcher    Matcher
	Properties Properties
}
