//nolint:funlen // ok for tests
package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/repository/api"
	"github.com/mpapenbr/course-split-timer/testsupport/basedata"
)

func TestCourseManager_SetCreatesCourse(t *testing.T) {
	ctx := context.Background()
	m, repo := newTestManager(t)

	require.NoError(t, m.Set(ctx, " hill "))
	assert.Equal(t, "hill", m.ActiveName())

	ok, err := repo.Exists(ctx, "hill")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, m.Set(ctx, "  "), ErrEmptyCourseName)
	assert.Equal(t, "hill", m.ActiveName())
}

func TestCourseManager_SetKeepsExisting(t *testing.T) {
	ctx := context.Background()
	m, repo := newTestManager(t)
	require.NoError(t, repo.Save(ctx, basedata.SampleCourseData("hill")))

	require.NoError(t, m.Set(ctx, "hill"))
	assert.Equal(t, 7, m.Records().AttemptCount)
	assert.Len(t, m.Course().Segments, 4)
}

func TestCourseManager_LoadUnknownKeepsActive(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	require.NoError(t, m.Set(ctx, "hill"))

	err := m.Load(ctx, "valley")
	require.ErrorIs(t, err, api.ErrCourseNotFound)
	assert.Equal(t, "hill", m.ActiveName())
}

func TestCourseManager_NoActiveCourse(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	_, err := m.Info()
	assert.ErrorIs(t, err, ErrNoActiveCourse)
	_, err = m.AddSegment(ctx, 1, "a", 1, model.Vec3{})
	assert.ErrorIs(t, err, ErrNoActiveCourse)
	assert.ErrorIs(t, m.DeleteSegment(ctx, 1), ErrNoActiveCourse)
	assert.ErrorIs(t, m.RenameSegment(ctx, 1, "x"), ErrNoActiveCourse)
	assert.ErrorIs(t, m.ClearRecords(ctx, "pb"), ErrNoActiveCourse)
	_, err = m.Segments()
	assert.ErrorIs(t, err, ErrNoActiveCourse)
	assert.Nil(t, m.Course())
	assert.Nil(t, m.Records())
}

func TestCourseManager_SegmentEditing(t *testing.T) {
	ctx := context.Background()
	m, repo := newTestManager(t)
	require.NoError(t, m.Set(ctx, "hill"))

	seg, err := m.AddSegment(ctx, 2, "top", 0, model.Vec3{X: 3.7, Y: 64.25, Z: -0.5})
	require.NoError(t, err)
	assert.Equal(t, model.Box{
		Min: model.Vec3{X: 3, Y: 64.25, Z: -1},
		Max: model.Vec3{X: 4, Y: 64.25 + model.MinHeight, Z: 0},
	}, seg.Region)

	_, err = m.AddSegment(ctx, 1, "mid", 2, model.Vec3{X: 1, Y: 64, Z: 1})
	require.NoError(t, err)
	_, err = m.AddSegment(ctx, -1, "bad", 2, model.Vec3{})
	require.ErrorIs(t, err, ErrInvalidIndex)

	require.NoError(t, m.RenameSegment(ctx, 2, "summit"))
	require.ErrorIs(t, m.RenameSegment(ctx, 5, "x"), ErrUnknownSegment)

	segs, err := m.Segments()
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, 1, segs[0].Index)
	assert.Equal(t, "summit", segs[1].Name)
	assert.Len(t, m.Records().BestSegmentTicks, 2)

	stored, err := repo.Load(ctx, "hill")
	require.NoError(t, err)
	assert.Equal(t, "summit", stored.Course.Segments[1].Name)

	require.NoError(t, m.DeleteSegment(ctx, 1))
	require.ErrorIs(t, m.DeleteSegment(ctx, 1), ErrUnknownSegment)
	assert.Len(t, m.Records().BestSegmentTicks, 1)

	info, err := m.Info()
	require.NoError(t, err)
	assert.Equal(t, CourseInfo{Name: "hill", Segments: 1, Trackable: 1, Goal: 2}, info)
}

func TestCourseManager_ClearRecords(t *testing.T) {
	ctx := context.Background()
	m, repo := newTestManager(t)
	require.NoError(t, repo.Save(ctx, basedata.SampleCourseData("hill")))
	require.NoError(t, m.Set(ctx, "hill"))

	require.ErrorIs(t, m.ClearRecords(ctx, "laps"), ErrUnknownTarget)

	require.NoError(t, m.ClearRecords(ctx, "PB"))
	assert.False(t, m.Records().HasPersonalBest())
	assert.Equal(t, 7, m.Records().AttemptCount)

	require.NoError(t, m.ClearRecords(ctx, "stats"))
	assert.Equal(t, 0, m.Records().AttemptCount)

	stored, err := repo.Load(ctx, "hill")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Records.AttemptCount)
	assert.Len(t, stored.Records.BestSegmentTicks, 3)
}

func TestCourseManager_ListDelete(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	require.NoError(t, m.Set(ctx, "b"))
	require.NoError(t, m.Set(ctx, "a"))

	names, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	require.NoError(t, m.Delete(ctx, "b"))
	assert.Equal(t, "a", m.ActiveName())
	require.NoError(t, m.Delete(ctx, "a"))
	assert.Empty(t, m.ActiveName())
	require.ErrorIs(t, m.Delete(ctx, "a"), api.ErrCourseNotFound)
}

func TestCourseManager_PersistRecords(t *testing.T) {
	ctx := context.Background()
	m, repo := newTestManager(t)
	require.NoError(t, m.Set(ctx, "hill"))

	records := model.NewRecords(0)
	records.AttemptCount = 3
	require.NoError(t, m.PersistRecords(ctx, m.Course(), records))
	stored, err := repo.Load(ctx, "hill")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Records.AttemptCount)

	other := &model.Course{Name: "other"}
	require.ErrorIs(t, m.PersistRecords(ctx, other, records), ErrNoActiveCourse)
}

func TestCourseManager_Reload(t *testing.T) {
	ctx := context.Background()
	m, repo := newTestManager(t)
	require.NoError(t, m.Set(ctx, "my hill"))

	ext := basedata.SampleCourseData("my hill")
	require.NoError(t, repo.Save(ctx, ext))

	replaced, err := m.Reload(ctx, "other")
	require.NoError(t, err)
	assert.False(t, replaced)

	replaced, err = m.Reload(ctx, "my_hill")
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, 7, m.Records().AttemptCount)

	// records only
	ext.Records.AttemptCount = 8
	require.NoError(t, repo.Save(ctx, ext))
	replaced, err = m.Reload(ctx, "my_hill")
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.Equal(t, 8, m.Records().AttemptCount)
}
