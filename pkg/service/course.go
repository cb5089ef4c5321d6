//nolint:whitespace //can't make both the linter and editor happy :(
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mpapenbr/course-split-timer/log"
	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/processing/timer"
	"github.com/mpapenbr/course-split-timer/pkg/repository/api"
	"github.com/mpapenbr/course-split-timer/pkg/utils"
)

// CourseManager holds the active course and applies edits to it.
// Every edit is normalized and saved. It is not safe for concurrent use,
// the Session serializes access.
type CourseManager struct {
	repo   api.CourseRepository
	active *model.CourseData
	l      *log.Logger
}

var _ timer.Persister = (*CourseManager)(nil)

type CourseManagerOption func(m *CourseManager)

func WithCourseLogger(l *log.Logger) CourseManagerOption {
	return func(m *CourseManager) {
		m.l = l
	}
}

func NewCourseManager(repo api.CourseRepository, opts ...CourseManagerOption) *CourseManager {
	ret := &CourseManager{
		repo: repo,
		l:    log.Default().Named("course"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

type CourseInfo struct {
	Name         string      `json:"name"`
	Segments     int         `json:"segments"`
	Trackable    int         `json:"trackable"`
	HasStart     bool        `json:"hasStart"`
	Goal         int         `json:"goal"`
	AttemptCount int         `json:"attemptCount"`
	PersonalBest model.Ticks `json:"personalBest"`
	SumOfBest    model.Ticks `json:"sumOfBest"`
}

// Course returns the active course or nil.
func (m *CourseManager) Course() *model.Course {
	if m.active == nil {
		return nil
	}
	return &m.active.Course
}

// Records returns the records of the active course or nil.
func (m *CourseManager) Records() *model.Records {
	if m.active == nil {
		return nil
	}
	return &m.active.Records
}

func (m *CourseManager) ActiveName() string {
	if m.active == nil {
		return ""
	}
	return m.active.Course.Name
}

func (m *CourseManager) IsActive(name string) bool {
	return m.active != nil && m.active.Course.Name == name
}

// Set activates the named course. Unknown courses are created.
func (m *CourseManager) Set(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyCourseName
	}
	data, err := m.repo.Load(ctx, name)
	if errors.Is(err, api.ErrCourseNotFound) {
		data = model.NewCourseData(name)
		data.Normalize()
		if err := m.repo.Save(ctx, data); err != nil {
			return err
		}
		m.l.Info("course created", log.String("course", name))
	} else if err != nil {
		return err
	}
	m.active = data
	return nil
}

// Load activates an existing course. On error the active course is kept.
func (m *CourseManager) Load(ctx context.Context, name string) error {
	data, err := m.repo.Load(ctx, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	m.active = data
	m.l.Info("course loaded", log.String("course", data.Course.Name))
	return nil
}

func (m *CourseManager) Leave() {
	if m.active != nil {
		m.l.Info("course left", log.String("course", m.active.Course.Name))
	}
	m.active = nil
}

// Reload picks up the stored version of the active course if the changed
// file belongs to it. Returns true if the segment layout differs from the
// one in use. Writes of this process do not change anything.
func (m *CourseManager) Reload(ctx context.Context, stem string) (bool, error) {
	if m.active == nil || utils.SafeFileName(m.active.Course.Name) != stem {
		return false, nil
	}
	data, err := m.repo.Load(ctx, m.active.Course.Name)
	if err != nil {
		return false, err
	}
	layoutChanged := !slices.Equal(m.active.Course.Segments, data.Course.Segments)
	m.active = data
	return layoutChanged, nil
}

func (m *CourseManager) Info() (CourseInfo, error) {
	if m.active == nil {
		return CourseInfo{}, ErrNoActiveCourse
	}
	c := &m.active.Course
	_, hasStart := c.Start()
	goal, ok := c.Goal()
	if !ok {
		goal = -1
	}
	return CourseInfo{
		Name:         c.Name,
		Segments:     len(c.Segments),
		Trackable:    len(c.TrackableOrder()),
		HasStart:     hasStart,
		Goal:         goal,
		AttemptCount: m.active.Records.AttemptCount,
		PersonalBest: m.active.Records.PersonalBest.TotalTicks,
		SumOfBest:    model.SumComplete(m.active.Records.BestSegmentTicks),
	}, nil
}

func (m *CourseManager) List(ctx context.Context) ([]string, error) {
	return m.repo.List(ctx)
}

// Delete removes a stored course. Deleting the active course leaves it.
func (m *CourseManager) Delete(ctx context.Context, name string) error {
	if err := m.repo.Delete(ctx, name); err != nil {
		return err
	}
	if m.IsActive(name) {
		m.active = nil
	}
	m.l.Info("course deleted", log.String("course", name))
	return nil
}

// AddSegment places (or replaces) the segment with index at pos.
func (m *CourseManager) AddSegment(
	ctx context.Context,
	index int,
	name string,
	height float64,
	pos model.Vec3,
) (model.Segment, error) {
	if m.active == nil {
		return model.Segment{}, ErrNoActiveCourse
	}
	if index < 0 {
		return model.Segment{}, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	seg := model.SegmentAt(index, name, height, pos)
	m.active.Course.Upsert(seg)
	m.active.Normalize()
	added, _ := m.active.Course.Find(index)
	return added, m.save(ctx)
}

func (m *CourseManager) DeleteSegment(ctx context.Context, index int) error {
	if m.active == nil {
		return ErrNoActiveCourse
	}
	if !m.active.Course.Remove(index) {
		return fmt.Errorf("%w: %d", ErrUnknownSegment, index)
	}
	m.active.Normalize()
	return m.save(ctx)
}

func (m *CourseManager) RenameSegment(ctx context.Context, index int, name string) error {
	if m.active == nil {
		return ErrNoActiveCourse
	}
	if !m.active.Course.Rename(index, name) {
		return fmt.Errorf("%w: %d", ErrUnknownSegment, index)
	}
	return m.save(ctx)
}

func (m *CourseManager) Segments() ([]model.Segment, error) {
	if m.active == nil {
		return nil, ErrNoActiveCourse
	}
	return m.active.Course.Clone().Segments, nil
}

// ClearRecords clears the given record target (pb, bestseg, bestsplit,
// all, stats) of the active course.
func (m *CourseManager) ClearRecords(ctx context.Context, target string) error {
	if m.active == nil {
		return ErrNoActiveCourse
	}
	t, err := model.ParseClearTarget(strings.ToLower(strings.TrimSpace(target)))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}
	if err := m.active.Records.Clear(t); err != nil {
		return err
	}
	m.l.Info("records cleared",
		log.String("course", m.active.Course.Name), log.String("target", string(t)))
	return m.save(ctx)
}

// PersistRecords stores records for the course if it is the active one.
func (m *CourseManager) PersistRecords(
	ctx context.Context,
	course *model.Course,
	records model.Records,
) error {
	if course == nil || !m.IsActive(course.Name) {
		return ErrNoActiveCourse
	}
	m.active.Records = records.Clone()
	return m.save(ctx)
}

func (m *CourseManager) save(ctx context.Context) error {
	return m.repo.Save(ctx, m.active)
}
