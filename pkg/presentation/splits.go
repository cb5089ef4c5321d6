package presentation

import (
	"fmt"

	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/processing/timer"
	"github.com/mpapenbr/course-split-timer/pkg/processing/window"
)

type RowState string

const (
	RowFuture RowState = "FUTURE"
	RowActive RowState = "ACTIVE"
	RowPast   RowState = "PAST"
)

type SplitRow struct {
	Index int      `json:"index"`
	Name  string   `json:"name"`
	State RowState `json:"state"`
	// Base is the comparison value of the row
	Base model.Ticks `json:"base"`
	// Actual is the run value, only for passed rows
	Actual model.Ticks `json:"actual"`
	Delta  model.Ticks `json:"delta"`
	// Gold is set if Actual is strictly below Base
	Gold bool `json:"gold"`
	// Highlight marks the goal row of a finished run
	Highlight bool   `json:"highlight"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

func displayName(seg model.Segment) string {
	if seg.Name == "" {
		return fmt.Sprintf("#%d", seg.Index)
	}
	return seg.Name
}

// comparisonValues returns the baseline values for the configured
// comparison. Without baselines (idle) the current records are used.
//
//nolint:whitespace // can't make the linters happy
func comparisonValues(
	records model.Records,
	state timer.RunState,
	s Settings,
) []model.Ticks {
	b := state.Baselines
	if b == nil {
		pbSeg := records.PersonalBest.SegmentTicks
		b = &timer.Baselines{
			PbSegment:   pbSeg,
			PbSplit:     model.PrefixSums(pbSeg),
			BestSegment: records.BestSegmentTicks,
			BestSplit:   records.BestSplitTicks,
		}
	}
	switch {
	case s.Comparison == CompareBest && s.Unit == UnitSegment:
		return b.BestSegment
	case s.Comparison == CompareBest:
		return b.BestSplit
	case s.Unit == UnitSegment:
		return b.PbSegment
	default:
		return b.PbSplit
	}
}

// ActivePosition is the window position for the current state.
func ActivePosition(order []int, state timer.RunState) int {
	if state.IsFinished() {
		return len(order) - 1
	}
	return model.Position(order, state.Cursor)
}

func rowState(state timer.RunState, idx, pos, cursorPos int) RowState {
	switch {
	case state.IsFinished():
		return RowPast
	case !state.IsRunning():
		return RowFuture
	case idx == state.Cursor:
		return RowActive
	case pos >= 0 && cursorPos >= 0 && pos < cursorPos:
		return RowPast
	}
	return RowFuture
}

// BuildSplitRows returns the visible rows of the split list.
//
//nolint:whitespace // can't make the linters happy
func BuildSplitRows(
	course *model.Course,
	records model.Records,
	state timer.RunState,
	s Settings,
) []SplitRow {
	order := course.TrackableOrder()
	if s.SplitRows <= 0 || len(order) == 0 {
		return []SplitRow{}
	}
	goal := order[len(order)-1]
	base := comparisonValues(records, state, s)
	cursorPos := model.Position(order, state.Cursor)

	show := window.Select(order, ActivePosition(order, state), s.SplitRows)
	ret := make([]SplitRow, 0, len(show))
	for _, idx := range show {
		pos := model.Position(order, idx)
		seg, _ := course.Find(idx)
		row := SplitRow{
			Index:     idx,
			Name:      displayName(seg),
			State:     rowState(state, idx, pos, cursorPos),
			Base:      model.At(base, pos),
			Highlight: state.IsFinished() && idx == goal,
		}
		if row.State == RowPast {
			var actual int
			var ok bool
			if s.Unit == UnitSegment {
				actual, ok = state.SegmentTicks[idx]
			} else {
				actual, ok = state.SplitCumulative[idx]
			}
			if ok {
				row.Actual = model.TicksOf(actual)
				if b, bok := row.Base.Get(); bok {
					row.Delta = model.TicksOf(actual - b)
					row.Gold = actual < b
					row.Primary = FormatDelta(actual-b, s.TimeFormat)
				}
			}
			row.Secondary = FormatOptional(row.Actual, s.TimeFormat)
		} else {
			row.Secondary = FormatOptional(row.Base, s.TimeFormat)
		}
		ret = append(ret, row)
	}
	return ret
}
