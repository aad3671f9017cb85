package reduce

import (
	"fmt"
	"math"

	"github.com/leapstack-labs/leapstat/internal/frame"
)

// Reduce computes the requested reducers over one column of a table.
//
// Duplicate and aliased ids are tolerated; output keys are always
// canonical ids. An empty id list is a no-op. For zero-row tables each
// reducer reports its registry-declared empty-input result, so the
// concrete implementations may assume at least one row. When a single
// reducer with a dedicated function is requested it runs directly;
// otherwise one combined pass produces every standard statistic and
// the non-standard reducers are computed separately and merged in.
func Reduce(t *frame.Table, col int, ids []ID, policy NullPolicy) (FieldCalcs, error) {
	if col < 0 || col >= len(t.Columns) {
		return nil, fmt.Errorf("column index %d out of range [0,%d) in table %q", col, len(t.Columns), t.Name)
	}

	calcs := make(FieldCalcs, len(ids))
	if len(ids) == 0 {
		return calcs, nil
	}

	// Resolve ids up front so an unknown reducer fails before any work.
	descs := make([]*Descriptor, 0, len(ids))
	seen := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		d, err := Get(id)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		descs = append(descs, d)
	}

	if t.RowCount() == 0 {
		for _, d := range descs {
			calcs[d.ID] = d.EmptyInputResult
		}
		return calcs, nil
	}

	if len(descs) == 1 && descs[0].fn != nil {
		calcs[descs[0].ID] = descs[0].fn(t, col, policy)
		return calcs, nil
	}

	var std FieldCalcs
	for _, d := range descs {
		switch {
		case d.Standard:
			if std == nil {
				std = standardCalcs(t, col, policy)
			}
			calcs[d.ID] = std[d.ID]
		default:
			calcs[d.ID] = d.fn(t, col, policy)
		}
	}
	return calcs, nil
}

// accumulator holds the combined-pass state. Exposed statistics are
// converted to a FieldCalcs at the end; prev/hasPrev/prevIsUp and the
// first/last bookkeeping are internal only.
type accumulator struct {
	sum    float64
	count  int
	min    float64
	max    float64
	logmin float64
	step   float64
	delta  float64

	first        any
	hasFirst     bool
	last         any
	firstNotNull any
	lastNotNull  any
	hasFirstNN   bool
	hasLastNN    bool

	allIsNull bool
	allIsZero bool

	prev     float64
	hasPrev  bool
	prevIsUp bool
}

// standardCalcs runs the combined single pass and returns every
// standard statistic for the column.
func standardCalcs(t *frame.Table, col int, policy NullPolicy) FieldCalcs {
	acc := accumulator{
		min:       math.Inf(1),
		max:       math.Inf(-1),
		logmin:    math.Inf(1),
		step:      math.Inf(1),
		allIsNull: true,
		allIsZero: true,
		prevIsUp:  true,
	}

	lastIdx := len(t.Rows) - 1
	for i, row := range t.Rows {
		v, skip := adjust(row[col], policy)
		if skip {
			continue
		}

		if !acc.hasFirst {
			acc.first = v
			acc.hasFirst = true
		}
		acc.last = v

		if v == nil {
			continue
		}

		if !acc.hasFirstNN {
			acc.firstNotNull = v
			acc.hasFirstNN = true
		}
		acc.lastNotNull = v
		acc.hasLastNN = true

		f, numeric := frame.ToFloat(v)
		if !numeric || f != 0 {
			acc.allIsZero = false
		}
		if !numeric {
			continue
		}

		acc.sum += f
		acc.count++
		acc.allIsNull = false
		if f > acc.max {
			acc.max = f
		}
		if f < acc.min {
			acc.min = f
		}
		if f > 0 && f < acc.logmin {
			acc.logmin = f
		}

		if acc.hasPrev {
			step := f - acc.prev
			if step < acc.step {
				acc.step = step
			}
			if acc.prev > f {
				// Decrease: a monotonic counter reset. The partial
				// value after a reset on the very last row would
				// otherwise be lost, so it is added directly.
				acc.prevIsUp = false
				if i == lastIdx {
					acc.delta += f
				}
			} else {
				if acc.prevIsUp {
					acc.delta += step
				} else {
					// First value after a reset starts a new baseline.
					acc.delta += f
				}
				acc.prevIsUp = true
			}
		}
		acc.prev = f
		acc.hasPrev = true
	}

	return acc.calcs()
}

// calcs converts the accumulator to the public result mapping,
// normalizing sentinel extremes that never updated to nil.
func (acc *accumulator) calcs() FieldCalcs {
	out := FieldCalcs{
		Sum:       acc.sum,
		Count:     acc.count,
		Delta:     acc.delta,
		AllIsNull: acc.allIsNull,
		Max:       nil,
		Min:       nil,
		Logmin:    nil,
		Mean:      nil,
		Range:     nil,
		Diff:      nil,
		Step:      nil,
		First:     nil,
		Last:      nil,
	}

	if acc.hasFirst {
		out[First] = acc.first
		out[Last] = acc.last
	}
	if acc.hasFirstNN {
		out[FirstNotNull] = acc.firstNotNull
	}
	if acc.hasLastNN {
		out[LastNotNull] = acc.lastNotNull
	}
	if !math.IsInf(acc.max, -1) {
		out[Max] = acc.max
	}
	if !math.IsInf(acc.min, 1) {
		out[Min] = acc.min
	}
	if !math.IsInf(acc.logmin, 1) {
		out[Logmin] = acc.logmin
	}
	if !math.IsInf(acc.step, 1) {
		out[Step] = acc.step
	}
	if acc.count > 0 {
		out[Mean] = acc.sum / float64(acc.count)
	}
	if out[Max] != nil && out[Min] != nil {
		out[Range] = acc.max - acc.min
	}
	if first, ok := frame.ToFloat(acc.firstNotNull); ok && acc.hasFirstNN {
		if last, ok := frame.ToFloat(acc.lastNotNull); ok && acc.hasLastNN {
			out[Diff] = last - first
		}
	}

	// An all-null column is vacuously not "all zero".
	if acc.allIsNull {
		out[AllIsZero] = false
	} else {
		out[AllIsZero] = acc.allIsZero
	}
	return out
}

func calcFirst(t *frame.Table, col int, policy NullPolicy) any {
	for _, row := range t.Rows {
		v, skip := adjust(row[col], policy)
		if skip {
			continue
		}
		return v
	}
	return nil
}

func calcLast(t *frame.Table, col int, policy NullPolicy) any {
	for i := len(t.Rows) - 1; i >= 0; i-- {
		v, skip := adjust(t.Rows[i][col], policy)
		if skip {
			continue
		}
		return v
	}
	return nil
}

// calcFirstNotNull scans forward for the first non-null value. The
// policy is applied before the null check, so treat-as-zero cells
// count as not null.
func calcFirstNotNull(t *frame.Table, col int, policy NullPolicy) any {
	for _, row := range t.Rows {
		v, skip := adjust(row[col], policy)
		if skip || v == nil {
			continue
		}
		return v
	}
	return nil
}

func calcLastNotNull(t *frame.Table, col int, policy NullPolicy) any {
	for i := len(t.Rows) - 1; i >= 0; i-- {
		v, skip := adjust(t.Rows[i][col], policy)
		if skip || v == nil {
			continue
		}
		return v
	}
	return nil
}

// calcChangeCount counts adjacent-row value changes after policy
// substitution. The first visited row is never a change.
func calcChangeCount(t *frame.Table, col int, policy NullPolicy) any {
	var (
		count   int
		prev    any
		hasPrev bool
	)
	for _, row := range t.Rows {
		v, skip := adjust(row[col], policy)
		if skip {
			continue
		}
		if hasPrev && !cellsEqual(prev, v) {
			count++
		}
		prev = v
		hasPrev = true
	}
	return count
}

// calcDistinctCount returns the cardinality of the set of
// post-policy values.
func calcDistinctCount(t *frame.Table, col int, policy NullPolicy) any {
	seen := make(map[any]struct{})
	for _, row := range t.Rows {
		v, skip := adjust(row[col], policy)
		if skip {
			continue
		}
		seen[cellKey(v)] = struct{}{}
	}
	return len(seen)
}

// cellsEqual compares two cells, treating numerically equal values of
// different widths as equal.
func cellsEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	fa, oka := frame.ToFloat(a)
	fb, okb := frame.ToFloat(b)
	if oka && okb {
		return fa == fb
	}
	if oka != okb {
		return false
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// cellKey normalizes a cell to a comparable map key.
func cellKey(v any) any {
	if v == nil {
		return nil
	}
	if f, ok := frame.ToFloat(v); ok {
		return f
	}
	return fmt.Sprint(v)
}
