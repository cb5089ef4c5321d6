package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/mpapenbr/course-split-timer/pkg/model"
)

var ErrCourseNotFound = errors.New("course not found")

// CourseRepository stores one CourseData per course name.
type CourseRepository interface {
	Load(ctx context.Context, name string) (*model.CourseData, error)
	// Save replaces the stored course data. The write is atomic: readers see
	// either the previous or the new content.
	Save(ctx context.Context, data *model.CourseData) error
	Exists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// PersistError wraps storage failures with the operation and course.
type PersistError struct {
	Op     string
	Course string
	Err    error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s course %q: %v", e.Op, e.Course, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

func NewPersistError(op, course string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistError{Op: op, Course: course, Err: err}
}
