//nolint:thelper,whitespace,lll,funlen,gocritic,dupl // ok for tests
package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func unitSegment(idx int, name string, x float64) Segment {
	return Segment{
		Index:  idx,
		Name:   name,
		Region: Box{Min: Vec3{x, 0, 0}, Max: Vec3{x + 1, 1, 1}},
		Height: 1,
	}
}

func TestCourse_TrackableOrder(t *testing.T) {
	tests := []struct {
		name string
		c    *Course
		want []int
	}{
		{name: "nil course", c: nil, want: []int{}},
		{name: "start only", c: &Course{Segments: []Segment{unitSegment(0, "s", 0)}}, want: []int{}},
		{
			name: "unsorted with duplicates",
			c: &Course{Segments: []Segment{
				unitSegment(5, "", 5), unitSegment(0, "", 0), unitSegment(2, "", 2),
				unitSegment(1, "", 1), unitSegment(2, "dup", 3),
			}},
			want: []int{1, 2, 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.c.TrackableOrder()); diff != "" {
				t.Errorf("TrackableOrder() not correct: %s", diff)
			}
		})
	}
}

func TestCourse_Navigation(t *testing.T) {
	c := &Course{Segments: []Segment{
		unitSegment(0, "start", 0), unitSegment(1, "", 1),
		unitSegment(2, "", 2), unitSegment(5, "goal", 5),
	}}
	goal, ok := c.Goal()
	assert.True(t, ok)
	assert.Equal(t, 5, goal)
	assert.Equal(t, 1, c.FirstTrackable())

	order := c.TrackableOrder()
	assert.Equal(t, 2, NextIndex(order, 1))
	assert.Equal(t, 5, NextIndex(order, 2))
	assert.Equal(t, 5, NextIndex(order, 3))
	assert.Equal(t, PastEnd, NextIndex(order, 5))
	assert.Equal(t, 2, Position(order, 5))
	assert.Equal(t, -1, Position(order, 3))

	s, ok := c.Start()
	assert.True(t, ok)
	assert.Equal(t, "start", s.Name)

	empty := &Course{}
	_, ok = empty.Goal()
	assert.False(t, ok)
	assert.Equal(t, PastEnd, empty.FirstTrackable())
}

func TestCourse_Find_LastWins(t *testing.T) {
	c := &Course{Segments: []Segment{unitSegment(2, "first", 0), unitSegment(2, "second", 4)}}
	s, ok := c.Find(2)
	assert.True(t, ok)
	assert.Equal(t, "second", s.Name)
	_, ok = c.Find(3)
	assert.False(t, ok)
}

func TestCourse_Normalize(t *testing.T) {
	c := &Course{Segments: []Segment{
		{Index: 3, Name: "three", Region: Box{Min: Vec3{0, 10, 0}, Max: Vec3{1, 12, 1}}, Height: 0},
		{Index: -1, Name: "invalid"},
		{Index: 1, Name: "old", Region: Box{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}, Height: 1},
		{Index: 1, Name: "new", Region: Box{Min: Vec3{1, 0, 1}, Max: Vec3{0, 5, 0}}, Height: 2},
		{Index: 2, Name: "flat", Region: Box{Min: Vec3{0, 3, 0}, Max: Vec3{1, 3, 1}}, Height: -4},
	}}
	c.Normalize()

	want := []Segment{
		{Index: 1, Name: "new", Region: Box{Min: Vec3{0, 0, 0}, Max: Vec3{1, 2, 1}}, Height: 2},
		{Index: 2, Name: "flat", Region: Box{Min: Vec3{0, 3, 0}, Max: Vec3{1, 3 + MinHeight, 1}}, Height: MinHeight},
		{Index: 3, Name: "three", Region: Box{Min: Vec3{0, 10, 0}, Max: Vec3{1, 12, 1}}, Height: 2},
	}
	if diff := cmp.Diff(want, c.Segments); diff != "" {
		t.Errorf("Normalize() not correct: %s", diff)
	}
}

func TestCourse_Edit(t *testing.T) {
	c := &Course{Segments: []Segment{unitSegment(0, "start", 0), unitSegment(1, "a", 1)}}
	c.Upsert(unitSegment(1, "b", 7))
	assert.Len(t, c.Segments, 2)
	s, _ := c.Find(1)
	assert.Equal(t, "b", s.Name)

	assert.True(t, c.Rename(1, "renamed"))
	assert.False(t, c.Rename(9, "x"))
	s, _ = c.Find(1)
	assert.Equal(t, "renamed", s.Name)

	assert.True(t, c.Remove(1))
	assert.False(t, c.Remove(1))
	assert.Len(t, c.Segments, 1)
}

func TestSegmentAt(t *testing.T) {
	s := SegmentAt(4, "ledge", 2.5, Vec3{X: -1.3, Y: 64.25, Z: 10.9})
	want := Segment{
		Index:  4,
		Name:   "ledge",
		Region: Box{Min: Vec3{-2, 64.25, 10}, Max: Vec3{-1, 66.75, 11}},
		Height: 2.5,
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("SegmentAt() not correct: %s", diff)
	}
	assert.Equal(t, MinHeight, SegmentAt(1, "", 0, Vec3{}).Height)
}
