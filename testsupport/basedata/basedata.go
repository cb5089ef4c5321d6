package basedata

import (
	"github.com/mpapenbr/course-split-timer/pkg/model"
)

func ticks(vals ...int) []model.Ticks {
	ret := make([]model.Ticks, len(vals))
	for i, v := range vals {
		if v >= 0 {
			ret[i] = model.TicksOf(v)
		}
	}
	return ret
}

// SampleCourse is a start platform followed by three checkpoints.
func SampleCourse(name string) model.Course {
	c := model.Course{
		Name: name,
		Segments: []model.Segment{
			model.SegmentAt(0, "start", 2, model.Vec3{X: 0.5, Y: 64, Z: 0.5}),
			model.SegmentAt(1, "bridge", 2, model.Vec3{X: 10.2, Y: 65.5, Z: 3.9}),
			model.SegmentAt(2, "", 3, model.Vec3{X: 20, Y: 70, Z: -4.5}),
			model.SegmentAt(3, "goal", 1, model.Vec3{X: 30.7, Y: 72, Z: 8}),
		},
	}
	c.Normalize()
	return c
}

// SampleCourseData has a personal best and one missing best split.
func SampleCourseData(name string) *model.CourseData {
	ret := &model.CourseData{
		Version: model.DataVersion,
		Course:  SampleCourse(name),
		Records: model.Records{
			AttemptCount: 7,
			PersonalBest: model.PersonalBest{
				TotalTicks:   model.TicksOf(60),
				SegmentTicks: ticks(20, 25, 15),
			},
			BestSegmentTicks: ticks(18, 22, 14),
			BestSplitTicks:   ticks(18, -1, 56),
		},
	}
	ret.Normalize()
	return ret
}

// EmptyCourseData has no segments and no records.
func EmptyCourseData(name string) *model.CourseData {
	ret := model.NewCourseData(name)
	ret.Normalize()
	return ret
}
