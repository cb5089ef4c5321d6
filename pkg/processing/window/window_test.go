//nolint:thelper,whitespace,lll,funlen,gocritic,dupl // ok for tests
package window

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func seq(n int) []int {
	ret := make([]int, n)
	for i := range ret {
		ret[i] = i
	}
	return ret
}

func TestSelect(t *testing.T) {
	type args struct {
		order     []int
		activePos int
		rows      int
	}
	tests := []struct {
		name string
		args args
		want []int
	}{
		{name: "empty order", args: args{order: []int{}, activePos: 0, rows: 4}, want: []int{}},
		{name: "single row shows goal", args: args{order: seq(10), activePos: 3, rows: 1}, want: []int{9}},
		{name: "rows below one", args: args{order: seq(10), activePos: 3, rows: 0}, want: []int{9}},
		{name: "at beginning", args: args{order: seq(10), activePos: 0, rows: 4}, want: []int{0, 1, 2, 9}},
		{name: "active kept second to last", args: args{order: seq(10), activePos: 5, rows: 4}, want: []int{3, 4, 5, 9}},
		{name: "active at goal", args: args{order: seq(10), activePos: 9, rows: 4}, want: []int{6, 7, 8, 9}},
		{name: "finished", args: args{order: seq(10), activePos: -1, rows: 4}, want: []int{6, 7, 8, 9}},
		{name: "past end", args: args{order: seq(10), activePos: 42, rows: 4}, want: []int{6, 7, 8, 9}},
		{name: "more rows than entries", args: args{order: seq(3), activePos: 1, rows: 8}, want: []int{0, 1, 2}},
		{name: "two rows", args: args{order: seq(5), activePos: 2, rows: 2}, want: []int{2, 4}},
		{name: "two rows at goal", args: args{order: seq(5), activePos: 4, rows: 2}, want: []int{3, 4}},
		{name: "sparse indices", args: args{order: []int{1, 2, 5}, activePos: 0, rows: 2}, want: []int{1, 5}},
		{name: "single entry", args: args{order: []int{7}, activePos: 0, rows: 4}, want: []int{7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.args.order, tt.args.activePos, tt.args.rows)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Select() not correct: %s", diff)
			}
		})
	}
}

func TestSelect_GoalAlwaysLast(t *testing.T) {
	order := seq(12)
	for rows := 1; rows < 15; rows++ {
		for pos := -1; pos < 13; pos++ {
			got := Select(order, pos, rows)
			if got[len(got)-1] != 11 {
				t.Errorf("rows=%d pos=%d: goal not last: %v", rows, pos, got)
			}
			if len(got) > rows {
				t.Errorf("rows=%d pos=%d: too many rows: %v", rows, pos, got)
			}
		}
	}
}

// positions selects on an order of n entries, so the result holds positions.
func positions(n, activePos, rows int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return Select(order, activePos, rows)
}

func TestSelectPositions(t *testing.T) {
	if diff := cmp.Diff([]int{0, 1, 4}, positions(5, 0, 3)); diff != "" {
		t.Errorf("Select() not correct: %s", diff)
	}
}
