// Package reduce implements the reducer registry and the reduction
// engine: summary statistics computed over one column of a frame.Table.
//
// The registry is a fixed catalog built at package init and read-only
// afterwards, so lookups are safe for unsynchronized concurrent use.
// Reducers marked standard are all produced by one combined pass over
// the rows; the rest carry dedicated functions.
package reduce

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapstat/internal/frame"
)

// ID identifies a reducer in the catalog.
type ID string

// Catalog of reducer ids. These strings are a stable contract surface:
// config files and external callers refer to reducers by them.
const (
	Sum           ID = "sum"
	Max           ID = "max"
	Min           ID = "min"
	Logmin        ID = "logmin"
	Mean          ID = "mean"
	Count         ID = "count"
	First         ID = "first"
	Last          ID = "last"
	FirstNotNull  ID = "firstNotNull"
	LastNotNull   ID = "lastNotNull"
	Range         ID = "range"
	Diff          ID = "diff"
	Delta         ID = "delta"
	Step          ID = "step"
	AllIsZero     ID = "allIsZero"
	AllIsNull     ID = "allIsNull"
	ChangeCount   ID = "changeCount"
	DistinctCount ID = "distinctCount"
)

// FieldCalcs maps reducer ids to their computed values for one column.
// Values are float64, int, bool, or nil depending on the reducer.
type FieldCalcs map[ID]any

// reduceFunc is a dedicated single-reducer implementation. It may
// assume the table has at least one row; the engine handles the
// zero-row case before dispatch.
type reduceFunc func(t *frame.Table, col int, policy NullPolicy) any

// Descriptor is an immutable registry entry for one reducer.
type Descriptor struct {
	ID          ID
	Name        string
	Description string
	Aliases     []string

	// Standard reducers are all computed by the combined single pass.
	Standard bool

	// EmptyInputResult is returned for zero-row tables instead of
	// running the reducer. Most reducers yield nil on empty input;
	// sum and count yield zero, allIsNull true, allIsZero false.
	EmptyInputResult any

	fn reduceFunc
}

// UnknownReducerError is returned when a reducer id does not resolve
// to a catalog entry.
type UnknownReducerError struct {
	ID        string
	Available []string
}

func (e *UnknownReducerError) Error() string {
	return fmt.Sprintf("unknown reducer %q (available: %s)", e.ID, strings.Join(e.Available, ", "))
}

var (
	catalog []Descriptor
	byID    map[ID]*Descriptor
)

func init() {
	catalog = []Descriptor{
		{ID: Sum, Name: "Total", Description: "Sum of all non-null numeric values", Aliases: []string{"total"}, Standard: true, EmptyInputResult: float64(0)},
		{ID: Max, Name: "Max", Description: "Maximum numeric value", Standard: true},
		{ID: Min, Name: "Min", Description: "Minimum numeric value", Standard: true},
		{ID: Logmin, Name: "Min (above zero)", Description: "Smallest strictly positive numeric value, for log scales", Standard: true},
		{ID: Mean, Name: "Mean", Description: "Average of non-null numeric values", Aliases: []string{"avg"}, Standard: true},
		{ID: Count, Name: "Count", Description: "Number of non-null values", Standard: true, EmptyInputResult: 0},
		{ID: First, Name: "First", Description: "First value", Standard: true, fn: calcFirst},
		{ID: Last, Name: "Last", Description: "Last value", Standard: true, fn: calcLast},
		{ID: FirstNotNull, Name: "First *", Description: "First non-null value", Standard: true, fn: calcFirstNotNull},
		{ID: LastNotNull, Name: "Last *", Description: "Last non-null value", Aliases: []string{"current"}, Standard: true, fn: calcLastNotNull},
		{ID: Range, Name: "Range", Description: "Difference between max and min", Standard: true},
		{ID: Diff, Name: "Difference", Description: "Difference between last and first non-null value", Standard: true},
		{ID: Delta, Name: "Delta", Description: "Cumulative change, treating decreases as counter resets", Standard: true},
		{ID: Step, Name: "Step", Description: "Smallest interval between consecutive numeric values", Standard: true},
		{ID: AllIsZero, Name: "All zeros", Description: "True when every value is zero", Standard: true, EmptyInputResult: false},
		{ID: AllIsNull, Name: "All nulls", Description: "True when no numeric value is present", Standard: true, EmptyInputResult: true},
		{ID: ChangeCount, Name: "Change count", Description: "Number of times the value changed between adjacent rows", fn: calcChangeCount},
		{ID: DistinctCount, Name: "Distinct count", Description: "Number of distinct values", fn: calcDistinctCount},
	}

	byID = make(map[ID]*Descriptor, len(catalog)*2)
	for i := range catalog {
		d := &catalog[i]
		byID[d.ID] = d
		for _, alias := range d.Aliases {
			byID[ID(alias)] = d
		}
	}
}

// Get resolves a reducer id or alias to its descriptor.
func Get(id ID) (*Descriptor, error) {
	if d, ok := byID[id]; ok {
		return d, nil
	}
	return nil, &UnknownReducerError{ID: string(id), Available: IDs()}
}

// All returns the catalog in id order.
func All() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns all canonical reducer ids in sorted order.
func IDs() []string {
	ids := make([]string, 0, len(catalog))
	for _, d := range catalog {
		ids = append(ids, string(d.ID))
	}
	sort.Strings(ids)
	return ids
}
