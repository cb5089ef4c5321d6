package model

import (
	"math"
	"slices"

	"github.com/samber/lo"
)

const (
	StartIndex = 0
	// MinHeight is the smallest accepted segment height
	MinHeight = 1e-5
	// PastEnd marks a cursor beyond the last trackable segment
	PastEnd = math.MaxInt
)

type Segment struct {
	Index  int     `json:"index"`
	Name   string  `json:"name"`
	Region Box     `json:"region"`
	Height float64 `json:"height"`
}

func (s Segment) IsStart() bool {
	return s.Index == StartIndex
}

// SegmentAt creates a 1 x height x 1 segment at the block below pos.
// X and Z are snapped to the block grid, Y is taken as is.
func SegmentAt(index int, name string, height float64, pos Vec3) Segment {
	h := math.Max(MinHeight, height)
	minCorner := Vec3{X: math.Floor(pos.X), Y: pos.Y, Z: math.Floor(pos.Z)}
	return Segment{
		Index: index,
		Name:  name,
		Region: Box{
			Min: minCorner,
			Max: Vec3{X: minCorner.X + 1, Y: minCorner.Y + h, Z: minCorner.Z + 1},
		},
		Height: h,
	}
}

type Course struct {
	Name     string    `json:"name"`
	Segments []Segment `json:"segments"`
}

func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	return &Course{Name: c.Name, Segments: slices.Clone(c.Segments)}
}

func (c *Course) Find(index int) (Segment, bool) {
	if c == nil {
		return Segment{}, false
	}
	// last one wins for duplicates which are not yet normalized
	for i := len(c.Segments) - 1; i >= 0; i-- {
		if c.Segments[i].Index == index {
			return c.Segments[i], true
		}
	}
	return Segment{}, false
}

func (c *Course) Start() (Segment, bool) {
	return c.Find(StartIndex)
}

// TrackableOrder returns the distinct indices > 0 in ascending order.
func (c *Course) TrackableOrder() []int {
	if c == nil {
		return []int{}
	}
	ret := lo.Uniq(lo.FilterMap(c.Segments, func(s Segment, _ int) (int, bool) {
		return s.Index, s.Index > StartIndex
	}))
	slices.Sort(ret)
	return ret
}

// Goal returns the last trackable index
func (c *Course) Goal() (int, bool) {
	order := c.TrackableOrder()
	if len(order) == 0 {
		return 0, false
	}
	return order[len(order)-1], true
}

// FirstTrackable returns the smallest trackable index or PastEnd
func (c *Course) FirstTrackable() int {
	return NextIndex(c.TrackableOrder(), StartIndex)
}

// NextIndex returns the smallest entry of order greater than index or PastEnd.
// order must be sorted ascending.
func NextIndex(order []int, index int) int {
	for _, idx := range order {
		if idx > index {
			return idx
		}
	}
	return PastEnd
}

// Position returns the position of index within order or -1
func Position(order []int, index int) int {
	return slices.Index(order, index)
}

// Upsert replaces the segment with the same index or adds it.
func (c *Course) Upsert(seg Segment) {
	c.Segments = append(c.Segments, seg)
	c.Normalize()
}

// Remove deletes the segment with the given index. Returns false if not found.
func (c *Course) Remove(index int) bool {
	before := len(c.Segments)
	c.Segments = lo.Reject(c.Segments, func(s Segment, _ int) bool {
		return s.Index == index
	})
	return len(c.Segments) != before
}

func (c *Course) Rename(index int, name string) bool {
	found := false
	for i := range c.Segments {
		if c.Segments[i].Index == index {
			c.Segments[i].Name = name
			found = true
		}
	}
	return found
}

// Normalize repairs segment data.
// Invalid indices are dropped, duplicates resolved (last one wins),
// segments sorted by index, heights are clamped to MinHeight (derived from the
// region if missing) and the region top is aligned to the height.
func (c *Course) Normalize() {
	byIndex := make(map[int]Segment)
	for _, s := range c.Segments {
		if s.Index < 0 {
			continue
		}
		byIndex[s.Index] = s
	}
	segs := lo.Values(byIndex)
	slices.SortFunc(segs, func(a, b Segment) int { return a.Index - b.Index })
	for i := range segs {
		segs[i] = normalizeSegment(segs[i])
	}
	c.Segments = segs
}

func normalizeSegment(s Segment) Segment {
	s.Region = NewBox(s.Region.Min, s.Region.Max)
	h := s.Height
	if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		h = s.Region.Height()
	}
	s.Height = math.Max(MinHeight, h)
	s.Region.Max.Y = s.Region.Min.Y + s.Height
	return s
}
