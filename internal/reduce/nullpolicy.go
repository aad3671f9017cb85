package reduce

import "fmt"

// NullPolicy controls how null (nil) cells are treated during
// reduction. The three modes are mutually exclusive per call.
type NullPolicy int

const (
	// NullDefault lets nulls propagate: they are excluded from numeric
	// accumulation but still terminate first/last semantics as the
	// literal null.
	NullDefault NullPolicy = iota

	// NullIgnore skips null cells entirely, as if the row did not
	// exist for this column.
	NullIgnore

	// NullAsZero substitutes numeric zero for null cells.
	NullAsZero
)

// ParseNullPolicy maps the wire-level mode names to a NullPolicy.
func ParseNullPolicy(s string) (NullPolicy, error) {
	switch s {
	case "", "null":
		return NullDefault, nil
	case "connected", "ignore":
		return NullIgnore, nil
	case "null as zero", "zero":
		return NullAsZero, nil
	default:
		return NullDefault, fmt.Errorf("unknown null mode %q", s)
	}
}

func (p NullPolicy) String() string {
	switch p {
	case NullIgnore:
		return "ignore"
	case NullAsZero:
		return "zero"
	default:
		return "null"
	}
}

// adjust applies the null policy to one cell. skip is true when the
// cell must be treated as if its row did not exist. Every reducer
// applies this before any of its own logic, so the three-way branch
// lives in exactly one place.
func adjust(v any, policy NullPolicy) (value any, skip bool) {
	if v != nil {
		return v, false
	}
	switch policy {
	case NullIgnore:
		return nil, true
	case NullAsZero:
		return float64(0), false
	default:
		return nil, false
	}
}
