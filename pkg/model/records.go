package model

import (
	"errors"
	"fmt"

	"github.com/aarondl/opt/null"
)

// Ticks is an optional tick count. The zero value is absent, which is
// different from a measured value of 0.
type Ticks = null.Val[int]

func TicksOf(v int) Ticks {
	return null.From(v)
}

func TicksEqual(a, b Ticks) bool {
	av, aok := a.Get()
	bv, bok := b.Get()
	return aok == bok && av == bv
}

// ImprovesOn reports whether v replaces base as a record: base is absent or
// v is strictly less.
func ImprovesOn(v int, base Ticks) bool {
	b, ok := base.Get()
	return !ok || v < b
}

// Beats reports whether base is present and v is strictly less.
func Beats(v int, base Ticks) bool {
	b, ok := base.Get()
	return ok && v < b
}

type PersonalBest struct {
	TotalTicks   Ticks   `json:"totalTicks"`
	SegmentTicks []Ticks `json:"segmentTicks"`
}

// Records holds the historical statistics of a course.
// All arrays are indexed by the position in the trackable order.
type Records struct {
	AttemptCount     int          `json:"attemptCount"`
	PersonalBest     PersonalBest `json:"pb"`
	BestSegmentTicks []Ticks      `json:"bestSegmentTicks"`
	BestSplitTicks   []Ticks      `json:"bestSplitTicks"`
}

func NewRecords(n int) Records {
	r := Records{}
	r.Resize(n)
	return r
}

func (r Records) Clone() Records {
	return Records{
		AttemptCount: r.AttemptCount,
		PersonalBest: PersonalBest{
			TotalTicks:   r.PersonalBest.TotalTicks,
			SegmentTicks: CloneTicks(r.PersonalBest.SegmentTicks),
		},
		BestSegmentTicks: CloneTicks(r.BestSegmentTicks),
		BestSplitTicks:   CloneTicks(r.BestSplitTicks),
	}
}

func (r Records) HasPersonalBest() bool {
	return r.PersonalBest.TotalTicks.IsValue()
}

// Resize adjusts all arrays to n entries (truncate or pad with absent).
func (r *Records) Resize(n int) {
	if r.AttemptCount < 0 {
		r.AttemptCount = 0
	}
	r.PersonalBest.SegmentTicks = ResizeTicks(r.PersonalBest.SegmentTicks, n)
	r.BestSegmentTicks = ResizeTicks(r.BestSegmentTicks, n)
	r.BestSplitTicks = ResizeTicks(r.BestSplitTicks, n)
}

func ResizeTicks(in []Ticks, n int) []Ticks {
	if n < 0 {
		n = 0
	}
	ret := make([]Ticks, n)
	copy(ret, in)
	return ret
}

func CloneTicks(in []Ticks) []Ticks {
	if in == nil {
		return nil
	}
	ret := make([]Ticks, len(in))
	copy(ret, in)
	return ret
}

// At returns the entry at pos or absent if pos is out of range
func At(ticks []Ticks, pos int) Ticks {
	if pos < 0 || pos >= len(ticks) {
		return Ticks{}
	}
	return ticks[pos]
}

// SumComplete returns the sum of all entries. The result is absent if the
// slice is empty or any entry is absent.
func SumComplete(ticks []Ticks) Ticks {
	if len(ticks) == 0 {
		return Ticks{}
	}
	sum := 0
	for _, t := range ticks {
		v, ok := t.Get()
		if !ok {
			return Ticks{}
		}
		sum += v
	}
	return TicksOf(sum)
}

// PrefixSums returns the running totals of ticks. Summation stops at the
// first absent entry, all following entries are absent as well.
func PrefixSums(ticks []Ticks) []Ticks {
	ret := make([]Ticks, len(ticks))
	sum := 0
	for i, t := range ticks {
		v, ok := t.Get()
		if !ok {
			break
		}
		sum += v
		ret[i] = TicksOf(sum)
	}
	return ret
}

type ClearTarget string

const (
	ClearPB          ClearTarget = "pb"
	ClearBestSegment ClearTarget = "bestseg"
	ClearBestSplit   ClearTarget = "bestsplit"
	ClearAll         ClearTarget = "all"
	// ClearStats resets everything including the attempt counter
	ClearStats ClearTarget = "stats"
)

var ClearTargets = []ClearTarget{ClearPB, ClearBestSegment, ClearBestSplit, ClearAll, ClearStats}

var ErrUnknownClearTarget = errors.New("unknown clear target")

func ParseClearTarget(s string) (ClearTarget, error) {
	for _, t := range ClearTargets {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownClearTarget, s)
}

// Clear removes the selected records. Array sizes are kept.
func (r *Records) Clear(target ClearTarget) error {
	n := len(r.BestSegmentTicks)
	switch target {
	case ClearPB:
		r.PersonalBest = PersonalBest{SegmentTicks: make([]Ticks, n)}
	case ClearBestSegment:
		r.BestSegmentTicks = make([]Ticks, n)
	case ClearBestSplit:
		r.BestSplitTicks = make([]Ticks, n)
	case ClearAll:
		r.PersonalBest = PersonalBest{SegmentTicks: make([]Ticks, n)}
		r.BestSegmentTicks = make([]Ticks, n)
		r.BestSplitTicks = make([]Ticks, n)
	case ClearStats:
		*r = NewRecords(n)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownClearTarget, target)
	}
	return nil
}

// CourseData is the persisted unit: a course with its records.
type CourseData struct {
	Version int     `json:"version"`
	Course  Course  `json:"course"`
	Records Records `json:"records"`
}

const DataVersion = 1

func NewCourseData(name string) *CourseData {
	return &CourseData{
		Version: DataVersion,
		Course:  Course{Name: name, Segments: []Segment{}},
		Records: NewRecords(0),
	}
}

// Normalize repairs course and records so that the record arrays match the
// trackable segment count.
func (d *CourseData) Normalize() {
	if d.Version <= 0 {
		d.Version = DataVersion
	}
	if d.Course.Segments == nil {
		d.Course.Segments = []Segment{}
	}
	d.Course.Normalize()
	d.Records.Resize(len(d.Course.TrackableOrder()))
}
