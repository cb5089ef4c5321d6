package timer

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mpapenbr/course-split-timer/log"
	"github.com/mpapenbr/course-split-timer/pkg/model"
)

// Persister stores the records of a course.
type Persister interface {
	PersistRecords(ctx context.Context, course *model.Course, records model.Records) error
}

// Event is an applied effect together with its context.
type Event struct {
	Course    string `json:"course"`
	AttemptID string `json:"attemptId,omitempty"`
	Effect    Effect `json:"effect"`
}

// EffectHandler receives the effects of a tick after they were applied.
// Handlers are called on the tick goroutine and must not block.
type EffectHandler func(ctx context.Context, ev Event)

// Engine owns the RunState. It is not safe for concurrent use, all calls
// are expected from the tick goroutine.
type Engine struct {
	state     RunState
	attemptID string
	persister Persister
	handlers  []EffectHandler
	l         *log.Logger
	metrics   *engineMetrics
}

type EngineOption func(e *Engine)

func WithPersister(p Persister) EngineOption {
	return func(e *Engine) {
		e.persister = p
	}
}

func WithEffectHandler(h EffectHandler) EngineOption {
	return func(e *Engine) {
		e.handlers = append(e.handlers, h)
	}
}

func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) {
		e.l = l
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	ret := &Engine{
		state: NewRunState(),
		l:     log.Default().Named("timer"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.metrics = newEngineMetrics(ret.l)
	return ret
}

// State returns a copy of the current state
func (e *Engine) State() RunState {
	return e.state.Clone()
}

func (e *Engine) AttemptID() string {
	return e.attemptID
}

// Tick processes one sample. Records are updated in place when the step
// changed them. Persistence failures are logged, the run continues.
//
//nolint:whitespace // can't make the linters happy
func (e *Engine) Tick(
	ctx context.Context,
	course *model.Course,
	records *model.Records,
	sample model.PositionSample,
) []Effect {
	out := Step(e.state, course, *records, sample)
	e.state = out.State
	*records = out.Records
	for _, eff := range out.Effects {
		e.apply(ctx, course, *records, eff)
	}
	return out.Effects
}

// ForceResetToIdle aborts the current attempt. Calling it repeatedly is safe.
func (e *Engine) ForceResetToIdle(ctx context.Context, courseName string) {
	wasActive := e.state.Phase != PhaseIdle
	e.state = ForceResetToIdle(e.state)
	if wasActive {
		e.l.Info("run reset to idle", log.String("course", courseName))
	}
	e.notify(ctx, courseName, RunReset{Reason: ResetForced})
	e.attemptID = ""
}

//nolint:whitespace,funlen // can't make the linters happy
func (e *Engine) apply(
	ctx context.Context,
	course *model.Course,
	records model.Records,
	eff Effect,
) {
	name := ""
	if course != nil {
		name = course.Name
	}
	courseAttr := attribute.String("course", name)
	switch ev := eff.(type) {
	case AttemptStarted:
		e.attemptID = newAttemptID()
		add(ctx, e.metrics.attemptsStarted, 1, courseAttr)
		e.l.Info("attempt started",
			log.String("course", name),
			log.Int("attempt", ev.AttemptCount),
			log.String("id", e.attemptID))
	case SplitRecorded:
		add(ctx, e.metrics.splits, 1, courseAttr)
		if ev.GoldSegment {
			add(ctx, e.metrics.golds, 1, courseAttr, attribute.String("kind", "segment"))
		}
		if ev.GoldSplit {
			add(ctx, e.metrics.golds, 1, courseAttr, attribute.String("kind", "split"))
		}
		e.l.Debug("split",
			log.Int("index", ev.Index),
			log.Int("segment", ev.SegmentTicks),
			log.Int("cumulative", ev.CumulativeTicks))
	case AttemptFinished:
		add(ctx, e.metrics.attemptsFinished, 1, courseAttr)
		if ev.NewPersonalBest {
			add(ctx, e.metrics.personalBests, 1, courseAttr)
		}
		e.l.Info("attempt finished",
			log.String("course", name),
			log.Int("total", ev.TotalTicks),
			log.Bool("pb", ev.NewPersonalBest))
	case RecordsChanged:
		if e.persister != nil {
			if err := e.persister.PersistRecords(ctx, course, records); err != nil {
				add(ctx, e.metrics.persistFailures, 1, courseAttr)
				e.l.Error("could not persist records",
					log.String("course", name),
					log.String("reason", ev.Reason),
					log.ErrorField(err))
			}
		}
	case RunReset:
		e.l.Info("run reset", log.String("reason", string(ev.Reason)))
	}
	e.notify(ctx, name, eff)
	if _, ok := eff.(RunReset); ok {
		e.attemptID = ""
	}
}

func (e *Engine) notify(ctx context.Context, courseName string, eff Effect) {
	ev := Event{Course: courseName, AttemptID: e.attemptID, Effect: eff}
	for _, h := range e.handlers {
		h(ctx, ev)
	}
}

func newAttemptID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}
