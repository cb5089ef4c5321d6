package timer

import (
	"slices"

	"github.com/samber/lo"

	"github.com/mpapenbr/course-split-timer/pkg/model"
)

// Outcome is the result of a single Step.
type Outcome struct {
	State   RunState
	Records model.Records
	Effects []Effect
}

// Step computes the next state for one tick. The given state and records are
// not modified. Records in the outcome are always sized to the trackable count
// of the course.
//
//nolint:whitespace // can't make the linters happy
func Step(
	state RunState,
	course *model.Course,
	records model.Records,
	sample model.PositionSample,
) Outcome {
	s := &stepper{
		state:   state.Clone(),
		records: records.Clone(),
	}
	switch {
	case sample.Paused:
		return s.outcome()
	case sample.Unavailable || course == nil:
		s.worldReset()
		return s.outcome()
	case len(course.Segments) == 0:
		return s.outcome()
	}
	s.course = course
	s.order = course.TrackableOrder()
	s.records.Resize(len(s.order))
	s.tick(sample.Pos)
	return s.outcome()
}

// ForceResetToIdle returns the idle state with start latched, so standing
// in the start region does not immediately start a new attempt.
func ForceResetToIdle(state RunState) RunState {
	ret := state.Clone()
	resetToIdle(&ret)
	ret.StartLatched = true
	return ret
}

func resetToIdle(s *RunState) {
	s.resetRun()
	s.Inside = map[int]bool{}
	s.Baselines = nil
	s.Cursor = model.PastEnd
	s.Phase = PhaseIdle
}

type stepper struct {
	state   RunState
	records model.Records
	course  *model.Course
	order   []int
	effects []Effect
}

func (s *stepper) outcome() Outcome {
	return Outcome{State: s.state, Records: s.records, Effects: s.effects}
}

func (s *stepper) emit(e Effect) {
	s.effects = append(s.effects, e)
}

func (s *stepper) worldReset() {
	wasActive := s.state.Phase != PhaseIdle
	resetToIdle(&s.state)
	s.state.StartLatched = false
	if wasActive {
		s.emit(RunReset{Reason: ResetWorldUnavailable})
	}
}

//nolint:cyclop // by design
func (s *stepper) tick(pos model.Vec3) {
	st := &s.state
	startInside := false
	if start, ok := s.course.Start(); ok {
		startInside = start.Region.Contains(pos)
	}
	if !startInside {
		st.StartLatched = false
	}

	entered := make([]int, 0)
	for _, idx := range s.order {
		seg, _ := s.course.Find(idx)
		now := seg.Region.Contains(pos)
		if now && !st.Inside[idx] {
			entered = append(entered, idx)
		}
		if now {
			st.Inside[idx] = true
		} else {
			delete(st.Inside, idx)
		}
	}

	if startInside && !st.StartLatched {
		st.StartLatched = true
		s.startAttempt()
		return
	}

	if len(entered) > 0 {
		// the furthest segment wins if several are entered in the same tick
		hit := lo.Max(entered)
		if st.Phase == PhaseRunning && hit >= st.Cursor {
			s.recordSplit(hit)
			st.Cursor = model.NextIndex(s.order, hit)
			if hit == s.order[len(s.order)-1] {
				s.finishAttempt()
			}
		}
	}

	if st.Phase == PhaseRunning {
		st.ElapsedTicks++
	}
}

func (s *stepper) startAttempt() {
	st := &s.state
	s.records.AttemptCount++

	n := len(s.order)
	pbSeg := model.ResizeTicks(s.records.PersonalBest.SegmentTicks, n)
	st.Baselines = &Baselines{
		PbSegment:   pbSeg,
		PbSplit:     model.PrefixSums(pbSeg),
		BestSegment: model.ResizeTicks(s.records.BestSegmentTicks, n),
		BestSplit:   model.ResizeTicks(s.records.BestSplitTicks, n),
	}
	st.resetRun()
	// a region the player already stands in counts as entered on the next tick
	st.Inside = map[int]bool{}
	st.Phase = PhaseRunning
	st.Cursor = model.NextIndex(s.order, model.StartIndex)

	s.emit(AttemptStarted{AttemptCount: s.records.AttemptCount})
	s.emit(RecordsChanged{Reason: "attempt-started"})
}

func (s *stepper) recordSplit(idx int) {
	st := &s.state
	if st.Used[idx] {
		return
	}
	cumulative := st.Elapsed()
	segTicks := cumulative - st.LastSplitCumulative

	st.Used[idx] = true
	st.SegmentTicks[idx] = segTicks
	st.SplitCumulative[idx] = cumulative
	st.LastSplitCumulative = cumulative
	st.LastCompletedSegment = model.TicksOf(segTicks)

	pos := model.Position(s.order, idx)
	ev := SplitRecorded{
		Index:           idx,
		Position:        pos,
		SegmentTicks:    segTicks,
		CumulativeTicks: cumulative,
	}
	if pos >= 0 && st.Baselines != nil {
		if model.Beats(segTicks, model.At(st.Baselines.BestSegment, pos)) {
			st.GoldSegments[idx] = true
			ev.GoldSegment = true
		}
		if model.Beats(cumulative, model.At(st.Baselines.BestSplit, pos)) {
			st.GoldSplits[idx] = true
			ev.GoldSplit = true
		}
	}
	s.emit(ev)
}

func (s *stepper) finishAttempt() {
	st := &s.state
	total := st.Elapsed()
	st.ElapsedTicks = total
	st.Phase = PhaseFinished

	n := len(s.order)
	segTicks := make([]model.Ticks, n)
	splitTicks := make([]model.Ticks, n)
	for i, idx := range s.order {
		if v, ok := st.SegmentTicks[idx]; ok {
			segTicks[i] = model.TicksOf(v)
		}
		if v, ok := st.SplitCumulative[idx]; ok {
			splitTicks[i] = model.TicksOf(v)
		}
	}

	rec := &s.records
	ev := AttemptFinished{TotalTicks: total}
	if model.ImprovesOn(total, rec.PersonalBest.TotalTicks) {
		rec.PersonalBest = model.PersonalBest{
			TotalTicks:   model.TicksOf(total),
			SegmentTicks: segTicks,
		}
		ev.NewPersonalBest = true
	}
	for i, idx := range s.order {
		if v, ok := segTicks[i].Get(); ok && model.ImprovesOn(v, rec.BestSegmentTicks[i]) {
			rec.BestSegmentTicks[i] = model.TicksOf(v)
			st.GoldSegments[idx] = true
		}
		if v, ok := splitTicks[i].Get(); ok && model.ImprovesOn(v, rec.BestSplitTicks[i]) {
			rec.BestSplitTicks[i] = model.TicksOf(v)
			st.GoldSplits[idx] = true
		}
	}
	ev.GoldSegments = sortedKeys(st.GoldSegments)
	ev.GoldSplits = sortedKeys(st.GoldSplits)

	s.emit(ev)
	s.emit(RecordsChanged{Reason: "attempt-finished"})
}

func sortedKeys(m map[int]bool) []int {
	ret := lo.Keys(m)
	slices.Sort(ret)
	return ret
}
