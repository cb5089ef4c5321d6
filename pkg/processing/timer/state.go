package timer

import (
	"maps"

	"github.com/mpapenbr/course-split-timer/pkg/model"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseRunning:
		return "RUNNING"
	case PhaseFinished:
		return "FINISHED"
	}
	return "UNKNOWN"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Baselines are copies of the records taken at attempt start.
// Deltas and gold previews of the running attempt compare against them.
type Baselines struct {
	PbSegment   []model.Ticks `json:"pbSegment"`
	PbSplit     []model.Ticks `json:"pbSplit"`
	BestSegment []model.Ticks `json:"bestSegment"`
	BestSplit   []model.Ticks `json:"bestSplit"`
}

func (b *Baselines) clone() *Baselines {
	if b == nil {
		return nil
	}
	return &Baselines{
		PbSegment:   model.CloneTicks(b.PbSegment),
		PbSplit:     model.CloneTicks(b.PbSplit),
		BestSegment: model.CloneTicks(b.BestSegment),
		BestSplit:   model.CloneTicks(b.BestSplit),
	}
}

// RunState is the complete state of the timer.
// Map keys are segment indices.
type RunState struct {
	Phase                Phase        `json:"phase"`
	ElapsedTicks         int          `json:"elapsedTicks"`
	Cursor               int          `json:"cursor"`
	LastSplitCumulative  int          `json:"lastSplitCumulative"`
	LastCompletedSegment model.Ticks  `json:"lastCompletedSegment"`
	StartLatched         bool         `json:"startLatched"`
	Inside               map[int]bool `json:"inside"`
	Used                 map[int]bool `json:"used"`
	SegmentTicks         map[int]int  `json:"segmentTicks"`
	SplitCumulative      map[int]int  `json:"splitCumulative"`
	GoldSegments         map[int]bool `json:"goldSegments"`
	GoldSplits           map[int]bool `json:"goldSplits"`
	// nil if there are no baselines (idle after reset)
	Baselines *Baselines `json:"baselines"`
}

func NewRunState() RunState {
	return RunState{
		Phase:           PhaseIdle,
		Cursor:          model.PastEnd,
		Inside:          map[int]bool{},
		Used:            map[int]bool{},
		SegmentTicks:    map[int]int{},
		SplitCumulative: map[int]int{},
		GoldSegments:    map[int]bool{},
		GoldSplits:      map[int]bool{},
	}
}

// Clone returns a deep copy.
func (s RunState) Clone() RunState {
	ret := s
	ret.Inside = cloneMap(s.Inside)
	ret.Used = cloneMap(s.Used)
	ret.SegmentTicks = cloneMap(s.SegmentTicks)
	ret.SplitCumulative = cloneMap(s.SplitCumulative)
	ret.GoldSegments = cloneMap(s.GoldSegments)
	ret.GoldSplits = cloneMap(s.GoldSplits)
	ret.Baselines = s.Baselines.clone()
	return ret
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return maps.Clone(m)
}

// Elapsed is the externally visible elapsed time. While running the current
// tick is counted already.
func (s RunState) Elapsed() int {
	if s.Phase == PhaseRunning {
		return s.ElapsedTicks + 1
	}
	return s.ElapsedTicks
}

func (s RunState) IsRunning() bool  { return s.Phase == PhaseRunning }
func (s RunState) IsFinished() bool { return s.Phase == PhaseFinished }

// resetRun clears the per attempt fields
func (s *RunState) resetRun() {
	s.ElapsedTicks = 0
	s.LastSplitCumulative = 0
	s.LastCompletedSegment = model.Ticks{}
	s.Used = map[int]bool{}
	s.SegmentTicks = map[int]int{}
	s.SplitCumulative = map[int]int{}
	s.GoldSegments = map[int]bool{}
	s.GoldSplits = map[int]bool{}
}
