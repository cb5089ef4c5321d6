//nolint:thelper,whitespace,lll,funlen,gocritic,dupl // ok for tests
package presentation

import (
	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/processing/timer"
)

func lineCourse(indices ...int) *model.Course {
	c := &model.Course{Name: "line"}
	for _, idx := range indices {
		x := float64(idx * 10)
		c.Segments = append(c.Segments, model.Segment{
			Index:  idx,
			Name:   "",
			Region: model.Box{Min: model.Vec3{X: x}, Max: model.Vec3{X: x + 1, Y: 1, Z: 1}},
			Height: 1,
		})
	}
	return c
}

func at(idx int) model.PositionSample {
	return model.SampleAt(float64(idx*10)+0.5, 0.5, 0.5)
}

// play starts an attempt and enters the segments at the given ticks.
// Returns state and records after n ticks (including the start tick).
func play(c *model.Course, records model.Records, n int, hits map[int]int) (timer.RunState, model.Records) {
	state := timer.NewRunState()
	for i := range n {
		s := model.SampleAt(-5, 0.5, 0.5)
		if i == 0 {
			s = at(0)
		} else if idx, ok := hits[i]; ok {
			s = at(idx)
		}
		out := timer.Step(state, c, records, s)
		state, records = out.State, out.Records
	}
	return state, records
}

func ticks(vals ...int) []model.Ticks {
	ret := make([]model.Ticks, len(vals))
	for i, v := range vals {
		if v >= 0 {
			ret[i] = model.TicksOf(v)
		}
	}
	return ret
}
