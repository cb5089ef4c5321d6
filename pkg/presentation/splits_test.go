//nolint:thelper,whitespace,lll,funlen,gocritic,dupl // ok for tests
package presentation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/processing/timer"
)

func fiveRecords() model.Records {
	return model.Records{
		AttemptCount:     1,
		PersonalBest:     model.PersonalBest{TotalTicks: model.TicksOf(50), SegmentTicks: ticks(10, 10, 10, 10, 10)},
		BestSegmentTicks: ticks(8, 9, 10, 11, 12),
		BestSplitTicks:   ticks(9, 19, 29, 39, 49),
	}
}

func ticksSettings(rows int) Settings {
	return DefaultSettings().WithTimeFormat(FormatTicks).WithSplitRows(rows)
}

func TestBuildSplitRows(t *testing.T) {
	c := lineCourse(0, 1, 2, 3, 4, 5)
	tests := []struct {
		name     string
		settings Settings
		n        int
		hits     map[int]int
		want     []SplitRow
	}{
		{
			name:     "just started",
			settings: ticksSettings(3),
			n:        3,
			want: []SplitRow{
				{Index: 1, Name: "#1", State: RowActive, Base: model.TicksOf(10), Secondary: "10t"},
				{Index: 2, Name: "#2", State: RowFuture, Base: model.TicksOf(20), Secondary: "20t"},
				{Index: 5, Name: "#5", State: RowFuture, Base: model.TicksOf(50), Secondary: "50t"},
			},
		},
		{
			name:     "behind pb after first split",
			settings: ticksSettings(3),
			n:        13,
			hits:     map[int]int{12: 1},
			want: []SplitRow{
				{Index: 1, Name: "#1", State: RowPast, Base: model.TicksOf(10), Actual: model.TicksOf(12), Delta: model.TicksOf(2), Primary: "+2t", Secondary: "12t"},
				{Index: 2, Name: "#2", State: RowActive, Base: model.TicksOf(20), Secondary: "20t"},
				{Index: 5, Name: "#5", State: RowFuture, Base: model.TicksOf(50), Secondary: "50t"},
			},
		},
		{
			name:     "best segment comparison tie is not gold",
			settings: ticksSettings(3).WithComparison(CompareBest, UnitSegment),
			n:        9,
			hits:     map[int]int{8: 1},
			want: []SplitRow{
				{Index: 1, Name: "#1", State: RowPast, Base: model.TicksOf(8), Actual: model.TicksOf(8), Delta: model.TicksOf(0), Primary: "+0t", Secondary: "8t"},
				{Index: 2, Name: "#2", State: RowActive, Base: model.TicksOf(9), Secondary: "9t"},
				{Index: 5, Name: "#5", State: RowFuture, Base: model.TicksOf(12), Secondary: "12t"},
			},
		},
		{
			name:     "finished ahead",
			settings: ticksSettings(3),
			n:        41,
			hits:     map[int]int{8: 1, 16: 2, 24: 3, 32: 4, 40: 5},
			want: []SplitRow{
				{Index: 3, Name: "#3", State: RowPast, Base: model.TicksOf(30), Actual: model.TicksOf(24), Delta: model.TicksOf(-6), Gold: true, Primary: "-6t", Secondary: "24t"},
				{Index: 4, Name: "#4", State: RowPast, Base: model.TicksOf(40), Actual: model.TicksOf(32), Delta: model.TicksOf(-8), Gold: true, Primary: "-8t", Secondary: "32t"},
				{Index: 5, Name: "#5", State: RowPast, Base: model.TicksOf(50), Actual: model.TicksOf(40), Delta: model.TicksOf(-10), Gold: true, Highlight: true, Primary: "-10t", Secondary: "40t"},
			},
		},
		{
			name:     "skipped row has no actual",
			settings: ticksSettings(4),
			n:        21,
			hits:     map[int]int{20: 2},
			want: []SplitRow{
				{Index: 1, Name: "#1", State: RowPast, Base: model.TicksOf(10), Secondary: "--"},
				{Index: 2, Name: "#2", State: RowPast, Base: model.TicksOf(20), Actual: model.TicksOf(20), Delta: model.TicksOf(0), Primary: "+0t", Secondary: "20t"},
				{Index: 3, Name: "#3", State: RowActive, Base: model.TicksOf(30), Secondary: "30t"},
				{Index: 5, Name: "#5", State: RowFuture, Base: model.TicksOf(50), Secondary: "50t"},
			},
		},
		{
			name:     "no rows",
			settings: ticksSettings(0),
			n:        3,
			want:     []SplitRow{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, records := play(c, fiveRecords(), tt.n, tt.hits)
			got := BuildSplitRows(c, records, state, tt.settings)
			if diff := cmp.Diff(tt.want, got, cmpTicks); diff != "" {
				t.Errorf("BuildSplitRows() not correct: %s", diff)
			}
		})
	}
}

func TestBuildSplitRows_IdleUsesRecords(t *testing.T) {
	c := lineCourse(0, 1, 2, 3, 4, 5)
	records := fiveRecords()
	records.PersonalBest.SegmentTicks[1] = model.Ticks{}
	got := BuildSplitRows(c, records, timer.NewRunState(), ticksSettings(2))
	want := []SplitRow{
		{Index: 4, Name: "#4", State: RowFuture, Secondary: "--"},
		{Index: 5, Name: "#5", State: RowFuture, Secondary: "--"},
	}
	if diff := cmp.Diff(want, got, cmpTicks); diff != "" {
		t.Errorf("BuildSplitRows() not correct: %s", diff)
	}
}

func TestActivePosition(t *testing.T) {
	order := []int{1, 2, 5}
	s := timer.NewRunState()
	assert.Equal(t, -1, ActivePosition(order, s))
	s.Phase = timer.PhaseRunning
	s.Cursor = 2
	assert.Equal(t, 1, ActivePosition(order, s))
	s.Phase = timer.PhaseFinished
	assert.Equal(t, 2, ActivePosition(order, s))
}
