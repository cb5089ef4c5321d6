//nolint:whitespace //can't make both the linter and editor happy :(
package service

import (
	"context"
	"sync/atomic"

	"github.com/mpapenbr/course-split-timer/log"
	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/processing/timer"
	"github.com/mpapenbr/course-split-timer/pkg/utils/broadcast"
)

// Snapshot is a consistent copy of everything a view needs.
type Snapshot struct {
	Course    *model.Course  `json:"course"`
	Records   model.Records  `json:"records"`
	State     timer.RunState `json:"state"`
	AttemptID string         `json:"attemptId,omitempty"`
}

type command struct {
	fn   func(ctx context.Context) error
	done chan error
}

// Session drives the timer engine for the active course. All state changes
// happen on the goroutine calling Run (or on the caller when the session is
// used without Run, like the replay command).
type Session struct {
	courses   *CourseManager
	engine    *timer.Engine
	commands  chan command
	snapshots chan Snapshot
	bc        broadcast.BroadcastServer[Snapshot]
	last      atomic.Pointer[Snapshot]
	handlers  []timer.EffectHandler
	l         *log.Logger
}

type SessionOption func(s *Session)

func WithEffectHandler(h timer.EffectHandler) SessionOption {
	return func(s *Session) {
		s.handlers = append(s.handlers, h)
	}
}

func WithSessionLogger(l *log.Logger) SessionOption {
	return func(s *Session) {
		s.l = l
	}
}

func NewSession(courses *CourseManager, opts ...SessionOption) *Session {
	ret := &Session{
		courses:   courses,
		commands:  make(chan command),
		snapshots: make(chan Snapshot, 1),
		l:         log.Default().Named("session"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	engineOpts := []timer.EngineOption{timer.WithPersister(courses)}
	for _, h := range ret.handlers {
		engineOpts = append(engineOpts, timer.WithEffectHandler(h))
	}
	ret.engine = timer.NewEngine(engineOpts...)
	ret.bc = broadcast.NewBroadcastServer("session", ret.snapshots)
	ret.publish()
	return ret
}

func (s *Session) Courses() *CourseManager {
	return s.courses
}

// Tick feeds one sample into the engine.
func (s *Session) Tick(ctx context.Context, sample model.PositionSample) []timer.Effect {
	records := s.courses.Records()
	if records == nil {
		records = &model.Records{}
	}
	effects := s.engine.Tick(ctx, s.courses.Course(), records, sample)
	s.publish()
	return effects
}

// Run processes samples and commands until ctx is done or samples is closed.
func (s *Session) Run(ctx context.Context, samples <-chan model.PositionSample) error {
	s.l.Info("session started", log.String("course", s.courses.ActiveName()))
	defer s.l.Info("session stopped")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sample, ok := <-samples:
			if !ok {
				return nil
			}
			s.Tick(ctx, sample)
		case cmd := <-s.commands:
			cmd.done <- cmd.fn(ctx)
			s.publish()
		}
	}
}

// Do executes fn on the Run goroutine and waits for its result.
// Blocks until ctx is done if Run is not active.
func (s *Session) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	cmd := command{fn: fn, done: make(chan error, 1)}
	select {
	case s.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ResetRun aborts the current attempt.
func (s *Session) ResetRun(ctx context.Context) {
	s.engine.ForceResetToIdle(ctx, s.courses.ActiveName())
	s.publish()
}

func (s *Session) SetCourse(ctx context.Context, name string) error {
	return s.withReset(ctx, func() error { return s.courses.Set(ctx, name) })
}

// LoadCourse activates an existing course. Unknown names leave the
// active course and the run untouched.
func (s *Session) LoadCourse(ctx context.Context, name string) error {
	return s.withReset(ctx, func() error { return s.courses.Load(ctx, name) })
}

func (s *Session) LeaveCourse(ctx context.Context) {
	_ = s.withReset(ctx, func() error {
		s.courses.Leave()
		return nil
	})
}

func (s *Session) DeleteCourse(ctx context.Context, name string) error {
	if !s.courses.IsActive(name) {
		return s.courses.Delete(ctx, name)
	}
	return s.withReset(ctx, func() error { return s.courses.Delete(ctx, name) })
}

// AddSegment changes the course layout, a running attempt is reset.
func (s *Session) AddSegment(
	ctx context.Context,
	index int,
	name string,
	height float64,
	pos model.Vec3,
) (seg model.Segment, err error) {
	err = s.withReset(ctx, func() error {
		seg, err = s.courses.AddSegment(ctx, index, name, height, pos)
		return err
	})
	return seg, err
}

// DeleteSegment changes the course layout, a running attempt is reset.
func (s *Session) DeleteSegment(ctx context.Context, index int) error {
	return s.withReset(ctx, func() error { return s.courses.DeleteSegment(ctx, index) })
}

func (s *Session) RenameSegment(ctx context.Context, index int, name string) error {
	defer s.publish()
	return s.courses.RenameSegment(ctx, index, name)
}

// ClearRecords keeps the running attempt. Its baselines were taken at start.
func (s *Session) ClearRecords(ctx context.Context, target string) error {
	defer s.publish()
	return s.courses.ClearRecords(ctx, target)
}

// ReloadCourse picks up external changes of the active course file.
// A changed layout resets the run, changed records are taken as they are.
func (s *Session) ReloadCourse(ctx context.Context, stem string) error {
	layoutChanged, err := s.courses.Reload(ctx, stem)
	if err != nil {
		return err
	}
	if layoutChanged {
		s.l.Info("active course layout changed", log.String("course", s.courses.ActiveName()))
		s.ResetRun(ctx)
		return nil
	}
	s.publish()
	return nil
}

// withReset resets the run only if fn succeeds.
func (s *Session) withReset(ctx context.Context, fn func() error) error {
	before := s.courses.ActiveName()
	if err := fn(); err != nil {
		return err
	}
	s.engine.ForceResetToIdle(ctx, before)
	s.publish()
	return nil
}

// Snapshot builds a snapshot of the current state. Must be called on the
// session goroutine, other goroutines use Latest.
func (s *Session) Snapshot() Snapshot {
	ret := Snapshot{
		Course:    s.courses.Course().Clone(),
		State:     s.engine.State(),
		AttemptID: s.engine.AttemptID(),
	}
	if r := s.courses.Records(); r != nil {
		ret.Records = r.Clone()
	}
	return ret
}

// Latest returns the last published snapshot. Safe for concurrent use.
func (s *Session) Latest() Snapshot {
	if p := s.last.Load(); p != nil {
		return *p
	}
	return Snapshot{State: timer.NewRunState()}
}

func (s *Session) Subscribe() <-chan Snapshot {
	return s.bc.Subscribe()
}

func (s *Session) CancelSubscription(ch <-chan Snapshot) {
	s.bc.CancelSubscription(ch)
}

func (s *Session) Close() {
	s.bc.Close()
}

func (s *Session) publish() {
	snap := s.Snapshot()
	s.last.Store(&snap)
	select {
	case s.snapshots <- snap:
	default:
		// drop the pending one, subscribers only need the newest
		select {
		case <-s.snapshots:
		default:
		}
		select {
		case s.snapshots <- snap:
		default:
		}
	}
}
