package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mpapenbr/course-split-timer/log"
	"github.com/mpapenbr/course-split-timer/pkg/processing/timer"
	"github.com/mpapenbr/course-split-timer/pkg/utils"
)

const DefaultPrefix = "cst"

type (
	// publisher is satisfied by *nats.Conn
	publisher interface {
		Publish(subj string, data []byte) error
	}
	// Publisher sends run events to <prefix>.<course>.<kind> and keeps the
	// last event per course in an optional key value bucket.
	Publisher struct {
		conn   publisher
		kv     jetstream.KeyValue
		prefix string
		l      *log.Logger
	}
	Option func(*Publisher)

	message struct {
		Kind      string       `json:"kind"`
		Course    string       `json:"course"`
		AttemptID string       `json:"attemptId,omitempty"`
		Timestamp time.Time    `json:"timestamp"`
		Data      timer.Effect `json:"data"`
	}
)

func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

func WithLogger(l *log.Logger) Option {
	return func(p *Publisher) {
		p.l = l
	}
}

func WithKeyValue(kv jetstream.KeyValue) Option {
	return func(p *Publisher) {
		p.kv = kv
	}
}

func NewPublisher(conn *nats.Conn, opts ...Option) *Publisher {
	return newPublisher(conn, opts...)
}

func newPublisher(conn publisher, opts ...Option) *Publisher {
	ret := &Publisher{
		conn:   conn,
		prefix: DefaultPrefix,
		l:      log.Default().Named("nats"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// SetupKeyValue creates (or binds) the bucket holding the last event per
// course.
func SetupKeyValue(ctx context.Context, conn *nats.Conn, bucket string) (
	jetstream.KeyValue, error,
) {
	js, err := jetstream.New(conn)
	if err != nil {
		return nil, err
	}
	return js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: bucket,
		TTL:    time.Hour * 24,
	})
}

// Handle publishes the event. Errors are logged, the tick loop continues.
func (p *Publisher) Handle(ctx context.Context, ev timer.Event) {
	subject := p.Subject(ev.Course, ev.Effect.Kind())
	data, err := json.Marshal(message{
		Kind:      ev.Effect.Kind(),
		Course:    ev.Course,
		AttemptID: ev.AttemptID,
		Timestamp: time.Now().UTC(),
		Data:      ev.Effect,
	})
	if err != nil {
		p.l.Error("could not marshal event", log.ErrorField(err))
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.l.Error("could not publish event",
			log.String("subject", subject), log.ErrorField(err))
		return
	}
	p.l.Debug("event published", log.String("subject", subject))
	if p.kv != nil {
		if _, err := p.kv.Put(ctx, token(ev.Course), data); err != nil {
			p.l.Warn("could not store last event",
				log.String("course", ev.Course), log.ErrorField(err))
		}
	}
}

func (p *Publisher) Subject(course, kind string) string {
	return fmt.Sprintf("%s.%s.%s", p.prefix, token(course), kind)
}

// token turns a course name into a single subject token.
func token(s string) string {
	if s == "" {
		return "_"
	}
	return strings.ReplaceAll(utils.SafeFileName(s), ".", "_")
}
