package reduce

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapstat/internal/frame"
)

func numberTable(t *testing.T, values ...any) *frame.Table {
	t.Helper()
	tbl := frame.New("test", frame.Column{Name: "value", Type: frame.TypeNumber})
	for _, v := range values {
		require.NoError(t, tbl.AppendRow(v))
	}
	return tbl
}

func TestReduce_EmptyIDs(t *testing.T) {
	calcs, err := Reduce(numberTable(t, 1.0), 0, nil, NullDefault)
	require.NoError(t, err)
	assert.Empty(t, calcs)
}

func TestReduce_ColumnOutOfRange(t *testing.T) {
	_, err := Reduce(numberTable(t, 1.0), 3, []ID{Sum}, NullDefault)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReduce_UnknownReducer(t *testing.T) {
	_, err := Reduce(numberTable(t, 1.0), 0, []ID{"bogus"}, NullDefault)
	require.Error(t, err)

	var unknownErr *UnknownReducerError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "bogus", unknownErr.ID)
}

func TestReduce_EmptyTable(t *testing.T) {
	tbl := frame.New("empty", frame.Column{Name: "value", Type: frame.TypeNumber})

	calcs, err := Reduce(tbl, 0, []ID{Sum, Count, AllIsZero, AllIsNull, Mean, Max, First}, NullDefault)
	require.NoError(t, err)

	assert.Equal(t, float64(0), calcs[Sum])
	assert.Equal(t, 0, calcs[Count])
	assert.Equal(t, false, calcs[AllIsZero])
	assert.Equal(t, true, calcs[AllIsNull])
	assert.Nil(t, calcs[Mean])
	assert.Nil(t, calcs[Max])
	assert.Nil(t, calcs[First])
}

func TestReduce_FirstLast(t *testing.T) {
	tbl := numberTable(t, 1.0, 3.0, 5.0)

	calcs, err := Reduce(tbl, 0, []ID{First}, NullDefault)
	require.NoError(t, err)
	assert.Equal(t, FieldCalcs{First: 1.0}, calcs)

	calcs, err = Reduce(tbl, 0, []ID{Last}, NullDefault)
	require.NoError(t, err)
	assert.Equal(t, FieldCalcs{Last: 5.0}, calcs)
}

func TestReduce_StandardCalcs(t *testing.T) {
	tbl := numberTable(t, 2.0, 4.0, 9.0)

	calcs, err := Reduce(tbl, 0, []ID{Sum, Count, Min, Max, Mean, Range, Diff, Logmin}, NullDefault)
	require.NoError(t, err)

	assert.Equal(t, 15.0, calcs[Sum])
	assert.Equal(t, 3, calcs[Count])
	assert.Equal(t, 2.0, calcs[Min])
	assert.Equal(t, 9.0, calcs[Max])
	assert.Equal(t, 5.0, calcs[Mean])
	assert.Equal(t, 7.0, calcs[Range])
	assert.Equal(t, 7.0, calcs[Diff])
	assert.Equal(t, 2.0, calcs[Logmin])
}

func TestReduce_MeanEqualsSumOverCount(t *testing.T) {
	tbl := numberTable(t, 1.5, nil, 2.5, "oops", 5.0)

	calcs, err := Reduce(tbl, 0, []ID{Sum, Count, Mean}, NullDefault)
	require.NoError(t, err)

	count := calcs[Count].(int)
	assert.Equal(t, 3, count, "strings and nulls are not counted")
	assert.Equal(t, calcs[Sum].(float64)/float64(count), calcs[Mean])
}

func TestReduce_NullPolicies(t *testing.T) {
	tests := []struct {
		name   string
		policy NullPolicy
		first  any
		count  int
		sum    float64
	}{
		{name: "default keeps null first", policy: NullDefault, first: nil, count: 2, sum: 4},
		{name: "ignore skips null rows", policy: NullIgnore, first: 1.0, count: 2, sum: 4},
		{name: "zero substitutes", policy: NullAsZero, first: 0.0, count: 4, sum: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := numberTable(t, nil, 1.0, nil, 3.0)

			calcs, err := Reduce(tbl, 0, []ID{First, Count, Sum}, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.first, calcs[First])
			assert.Equal(t, tt.count, calcs[Count])
			assert.Equal(t, tt.sum, calcs[Sum])
		})
	}
}

func TestReduce_FirstNotNullHonorsZeroPolicy(t *testing.T) {
	tbl := numberTable(t, nil, 7.0)

	// Dedicated fast path: single reducer with its own function.
	calcs, err := Reduce(tbl, 0, []ID{FirstNotNull}, NullDefault)
	require.NoError(t, err)
	assert.Equal(t, 7.0, calcs[FirstNotNull])

	// Treat-as-zero still counts as not null.
	calcs, err = Reduce(tbl, 0, []ID{FirstNotNull}, NullAsZero)
	require.NoError(t, err)
	assert.Equal(t, 0.0, calcs[FirstNotNull])
}

func TestReduce_AllIsZeroAllIsNull(t *testing.T) {
	tests := []struct {
		name      string
		values    []any
		allIsZero bool
		allIsNull bool
	}{
		{name: "zeros", values: []any{0.0, 0.0}, allIsZero: true, allIsNull: false},
		{name: "mixed", values: []any{0.0, 1.0}, allIsZero: false, allIsNull: false},
		{name: "all null is not all zero", values: []any{nil, nil}, allIsZero: false, allIsNull: true},
		{name: "strings clear all zero", values: []any{"x", 0.0}, allIsZero: false, allIsNull: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := numberTable(t, tt.values...)

			calcs, err := Reduce(tbl, 0, []ID{AllIsZero, AllIsNull}, NullDefault)
			require.NoError(t, err)
			assert.Equal(t, tt.allIsZero, calcs[AllIsZero])
			assert.Equal(t, tt.allIsNull, calcs[AllIsNull])
		})
	}
}

func TestReduce_Step(t *testing.T) {
	tbl := numberTable(t, 10.0, 12.0, 13.0, 9.0)

	calcs, err := Reduce(tbl, 0, []ID{Step}, NullDefault)
	require.NoError(t, err)

	// Smallest observed interval, which may be negative.
	assert.Equal(t, -4.0, calcs[Step])
}

func TestReduce_Delta(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		delta  float64
	}{
		{name: "monotonic", values: []any{1.0, 3.0, 5.0}, delta: 4},
		{name: "reset mid-series starts new baseline", values: []any{1.0, 5.0, 2.0, 8.0}, delta: 12},
		{name: "reset at last row adds raw value", values: []any{5.0, 2.0}, delta: 2},
		{name: "reset then flat", values: []any{4.0, 1.0, 1.0}, delta: 1},
		{name: "nulls are skipped", values: []any{1.0, nil, 4.0}, delta: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := numberTable(t, tt.values...)

			calcs, err := Reduce(tbl, 0, []ID{Delta}, NullDefault)
			require.NoError(t, err)
			assert.Equal(t, tt.delta, calcs[Delta])
		})
	}
}

func TestReduce_ChangeCount(t *testing.T) {
	tbl := numberTable(t, 1.0, 1.0, 2.0, 2.0, 3.0)

	calcs, err := Reduce(tbl, 0, []ID{ChangeCount}, NullDefault)
	require.NoError(t, err)
	assert.Equal(t, 2, calcs[ChangeCount])

	// Null substitution happens before change detection.
	tbl = numberTable(t, 0.0, nil, 1.0)
	calcs, err = Reduce(tbl, 0, []ID{ChangeCount}, NullAsZero)
	require.NoError(t, err)
	assert.Equal(t, 1, calcs[ChangeCount])
}

func TestReduce_DistinctCount(t *testing.T) {
	tbl := numberTable(t, 1.0, 2.0, 1.0, nil, "a")

	calcs, err := Reduce(tbl, 0, []ID{DistinctCount}, NullDefault)
	require.NoError(t, err)
	assert.Equal(t, 4, calcs[DistinctCount])

	calcs, err = Reduce(tbl, 0, []ID{DistinctCount}, NullIgnore)
	require.NoError(t, err)
	assert.Equal(t, 3, calcs[DistinctCount])
}

func TestReduce_AllNullSentinelsReportNil(t *testing.T) {
	tbl := numberTable(t, nil, nil)

	calcs, err := Reduce(tbl, 0, []ID{Min, Max, Step, Logmin, Mean, Range, Diff}, NullDefault)
	require.NoError(t, err)

	for id, v := range calcs {
		assert.Nil(t, v, "expected nil for %s on all-null column", id)
	}
}

func TestReduce_CombinedAndDedicatedMerge(t *testing.T) {
	tbl := numberTable(t, 1.0, 1.0, 2.0)

	// distinctCount is not covered by the combined pass; it must be
	// computed separately and merged with the standard stats.
	calcs, err := Reduce(tbl, 0, []ID{Sum, DistinctCount}, NullDefault)
	require.NoError(t, err)
	assert.Equal(t, 4.0, calcs[Sum])
	assert.Equal(t, 2, calcs[DistinctCount])
}

func TestReduce_AliasesAndDuplicates(t *testing.T) {
	tbl := numberTable(t, 2.0, 3.0)

	calcs, err := Reduce(tbl, 0, []ID{"total", Sum, "avg"}, NullDefault)
	require.NoError(t, err)

	// Output keys are canonical; duplicates collapse.
	assert.Len(t, calcs, 2)
	assert.Equal(t, 5.0, calcs[Sum])
	assert.Equal(t, 2.5, calcs[Mean])
}

func TestReduce_Idempotent(t *testing.T) {
	tbl := numberTable(t, 1.0, nil, 4.0, 2.0)
	ids := []ID{Sum, Mean, Delta, Step, ChangeCount, DistinctCount}

	first, err := Reduce(tbl, 0, ids, NullDefault)
	require.NoError(t, err)
	second, err := Reduce(tbl, 0, ids, NullDefault)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReduce_LogminPositiveOnly(t *testing.T) {
	tbl := numberTable(t, -5.0, 0.0, 3.0, 8.0)

	calcs, err := Reduce(tbl, 0, []ID{Logmin, Min}, NullDefault)
	require.NoError(t, err)
	assert.Equal(t, 3.0, calcs[Logmin])
	assert.Equal(t, -5.0, calcs[Min])

	tbl = numberTable(t, -5.0, 0.0)
	calcs, err = Reduce(tbl, 0, []ID{Logmin}, NullDefault)
	require.NoError(t, err)
	assert.Nil(t, calcs[Logmin])
}

func TestReduce_TimeValuesAreNumeric(t *testing.T) {
	tbl := numberTable(t, int64(100), int64(250))

	calcs, err := Reduce(tbl, 0, []ID{Range}, NullDefault)
	require.NoError(t, err)
	assert.Equal(t, 150.0, calcs[Range])
}

func TestReduce_NoHiddenNaN(t *testing.T) {
	tbl := numberTable(t, 1.0)

	calcs, err := Reduce(tbl, 0, []ID{Step, Range, Diff}, NullDefault)
	require.NoError(t, err)

	// A single value has no consecutive pair: step stays unset.
	assert.Nil(t, calcs[Step])
	assert.Equal(t, 0.0, calcs[Range])
	assert.Equal(t, 0.0, calcs[Diff])

	for id, v := range calcs {
		if f, ok := v.(float64); ok {
			assert.False(t, math.IsNaN(f), "NaN leaked from %s", id)
		}
	}
}
