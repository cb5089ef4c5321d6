//nolint:thelper // ok for tests
package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/repository/file"
)

func at(idx int) model.PositionSample {
	return model.SampleAt(float64(idx*10)+0.5, 0.5, 0.5)
}

func outside() model.PositionSample {
	return model.SampleAt(-5, 0.5, 0.5)
}

// walk leaves the start area first, then starts at tick 1 and enters
// the segments at the given ticks (counted from the start tick).
func walk(n int, hits map[int]int) []model.PositionSample {
	ret := []model.PositionSample{outside()}
	for i := range n {
		s := outside()
		if i == 0 {
			s = at(0)
		} else if idx, ok := hits[i]; ok {
			s = at(idx)
		}
		ret = append(ret, s)
	}
	return ret
}

func newTestManager(t *testing.T) (*CourseManager, *file.Repository) {
	repo := file.New(t.TempDir())
	return NewCourseManager(repo), repo
}

// lineCourse creates the active course with unit cubes at x=idx*10.
func lineCourse(t *testing.T, s *Session, name string, indices ...int) {
	ctx := context.Background()
	require.NoError(t, s.SetCourse(ctx, name))
	for _, idx := range indices {
		_, err := s.AddSegment(ctx, idx, "", 1, at(idx).Pos)
		require.NoError(t, err)
	}
}
