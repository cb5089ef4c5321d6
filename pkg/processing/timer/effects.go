package timer

// Effect describes something that happened during a step. Effects are
// returned as data and applied by the Engine.
type Effect interface {
	Kind() string
}

type ResetReason string

const (
	ResetForced           ResetReason = "forced"
	ResetWorldUnavailable ResetReason = "world-unavailable"
)

type (
	AttemptStarted struct {
		AttemptCount int `json:"attemptCount"`
	}

	SplitRecorded struct {
		Index           int  `json:"index"`
		Position        int  `json:"position"`
		SegmentTicks    int  `json:"segmentTicks"`
		CumulativeTicks int  `json:"cumulativeTicks"`
		GoldSegment     bool `json:"goldSegment"`
		GoldSplit       bool `json:"goldSplit"`
	}

	AttemptFinished struct {
		TotalTicks      int   `json:"totalTicks"`
		NewPersonalBest bool  `json:"newPersonalBest"`
		GoldSegments    []int `json:"goldSegments"`
		GoldSplits      []int `json:"goldSplits"`
	}

	// RecordsChanged requests persistence of the records
	RecordsChanged struct {
		Reason string `json:"reason"`
	}

	RunReset struct {
		Reason ResetReason `json:"reason"`
	}
)

func (AttemptStarted) Kind() string  { return "attempt-started" }
func (SplitRecorded) Kind() string   { return "split" }
func (AttemptFinished) Kind() string { return "attempt-finished" }
func (RecordsChanged) Kind() string  { return "records-changed" }
func (RunReset) Kind() string        { return "run-reset" }
