package presentation

import (
	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/processing/timer"
)

// DerivedStats are values computed from records and the current run.
type DerivedStats struct {
	PersonalBest model.Ticks
	// SumOfBest is the sum of all best segments
	SumOfBest model.Ticks
	// BestPossible is the best time still reachable in the current run
	BestPossible model.Ticks
	// BestSegment is the best time of the segment awaiting entry
	BestSegment model.Ticks
	// BestSplit is the best split of the last completed position
	BestSplit model.Ticks
}

//nolint:whitespace // can't make the linters happy
func ComputeStats(
	course *model.Course,
	records model.Records,
	state timer.RunState,
) DerivedStats {
	order := course.TrackableOrder()
	best := records.BestSegmentTicks
	pos := model.Position(order, state.Cursor)
	ret := DerivedStats{
		PersonalBest: records.PersonalBest.TotalTicks,
		SumOfBest:    model.SumComplete(best),
	}
	if len(order) > 0 && len(best) > 0 {
		ret.BestPossible = bestPossible(best, pos, state)
	}
	if pos >= 0 {
		ret.BestSegment = model.At(best, pos)
		ret.BestSplit = model.At(records.BestSplitTicks, pos-1)
	}
	return ret
}

// bestPossible is the elapsed time plus what is left of the current segment
// in its best time plus all future best segments.
func bestPossible(best []model.Ticks, pos int, state timer.RunState) model.Ticks {
	if pos < 0 {
		return model.SumComplete(best)
	}
	bestCur, ok := model.At(best, pos).Get()
	if !ok {
		return model.Ticks{}
	}
	elapsed := state.Elapsed()
	curSoFar := max(0, elapsed-state.LastSplitCumulative)
	sum := elapsed + max(0, bestCur-curSoFar)
	for _, t := range best[pos+1:] {
		v, ok := t.Get()
		if !ok {
			return model.Ticks{}
		}
		sum += v
	}
	return model.TicksOf(sum)
}

// CurrentSegmentTicks is the time spent in the segment awaiting entry.
// When finished it is the last completed segment.
func CurrentSegmentTicks(state timer.RunState) int {
	if state.IsFinished() {
		v, _ := state.LastCompletedSegment.Get()
		return v
	}
	return max(0, state.Elapsed()-state.LastSplitCumulative)
}

type HistoryLine struct {
	Index        int    `json:"index"`
	Name         string `json:"name"`
	SegmentTicks int    `json:"segmentTicks"`
	Gold         bool   `json:"gold"`
}

// SplitHistory returns the last maxCount recorded segments of the run in
// course order. Skipped segments are not included.
func SplitHistory(course *model.Course, state timer.RunState, maxCount int) []HistoryLine {
	ret := make([]HistoryLine, 0)
	for _, idx := range course.TrackableOrder() {
		if idx >= state.Cursor {
			break
		}
		segTicks, ok := state.SegmentTicks[idx]
		if !ok {
			continue
		}
		seg, ok := course.Find(idx)
		if !ok {
			continue
		}
		ret = append(ret, HistoryLine{
			Index:        idx,
			Name:         seg.Name,
			SegmentTicks: segTicks,
			Gold:         state.GoldSegments[idx],
		})
	}
	if maxCount >= 0 && len(ret) > maxCount {
		ret = ret[len(ret)-maxCount:]
	}
	return ret
}
