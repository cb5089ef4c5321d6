package util

import (
	"context"

	"github.com/mpapenbr/course-split-timer/log"
	"github.com/mpapenbr/course-split-timer/pkg/service"
)

// WithCourses runs fn with a course manager on the configured storage.
func WithCourses(ctx context.Context, fn func(m *service.CourseManager) error) error {
	store, err := OpenStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(service.NewCourseManager(store.Repo,
		service.WithCourseLogger(log.Default().Named("course"))))
}

// WithLoadedCourse is WithCourses with the named course loaded.
func WithLoadedCourse(
	ctx context.Context,
	name string,
	fn func(m *service.CourseManager) error,
) error {
	return WithCourses(ctx, func(m *service.CourseManager) error {
		if err := m.Load(ctx, name); err != nil {
			return err
		}
		return fn(m)
	})
}
