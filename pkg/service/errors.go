package service

import "errors"

var (
	ErrNoActiveCourse  = errors.New("no active course")
	ErrUnknownSegment  = errors.New("unknown segment")
	ErrUnknownTarget   = errors.New("unknown target")
	ErrInvalidIndex    = errors.New("invalid segment index")
	ErrEmptyCourseName = errors.New("course name must not be empty")
)
