package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/course-split-timer/pkg/processing/timer"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	msgs []published
	err  error
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{subject: subj, data: data})
	return nil
}

func TestSubject(t *testing.T) {
	p := newPublisher(&fakeConn{})
	tests := []struct {
		course string
		want   string
	}{
		{"hill", "cst.hill.split"},
		{"my hill v1.2", "cst.my_hill_v1_2.split"},
		{"a/b*c>", "cst.a_b_c_.split"},
		{"", "cst._.split"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Subject(tt.course, "split"))
	}
	assert.Equal(t, "x.hill.run-reset",
		newPublisher(&fakeConn{}, WithPrefix("x")).Subject("hill", "run-reset"))
}

func TestHandle(t *testing.T) {
	conn := &fakeConn{}
	p := newPublisher(conn)
	p.Handle(context.Background(), timer.Event{
		Course:    "hill",
		AttemptID: "abc",
		Effect:    timer.SplitRecorded{Index: 2, Position: 1, SegmentTicks: 12, CumulativeTicks: 30},
	})
	require.Len(t, conn.msgs, 1)
	assert.Equal(t, "cst.hill.split", conn.msgs[0].subject)

	var got map[string]any
	require.NoError(t, json.Unmarshal(conn.msgs[0].data, &got))
	assert.Equal(t, "split", got["kind"])
	assert.Equal(t, "hill", got["course"])
	assert.Equal(t, "abc", got["attemptId"])
	data, ok := got["data"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 30, data["cumulativeTicks"], 0)
}

func TestHandlePublishErrorIsSwallowed(t *testing.T) {
	conn := &fakeConn{err: errors.New("no connection")}
	p := newPublisher(conn)
	assert.NotPanics(t, func() {
		p.Handle(context.Background(), timer.Event{Course: "hill", Effect: timer.RunReset{Reason: timer.ResetForced}})
	})
	assert.Empty(t, conn.msgs)
}
