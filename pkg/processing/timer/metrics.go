package timer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/course-split-timer/log"
)

type engineMetrics struct {
	attemptsStarted  metric.Int64Counter
	attemptsFinished metric.Int64Counter
	splits           metric.Int64Counter
	golds            metric.Int64Counter
	personalBests    metric.Int64Counter
	persistFailures  metric.Int64Counter
}

func newEngineMetrics(l *log.Logger) *engineMetrics {
	meter := otel.GetMeterProvider().Meter("cst.timer")
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name,
			metric.WithDescription(desc),
			metric.WithUnit("{count}"))
		if err != nil {
			l.Error("failed to register metric",
				log.String("metric", name), log.ErrorField(err))
		}
		return c
	}
	return &engineMetrics{
		attemptsStarted:  counter("cst.timer.attempts.started", "Number of started attempts"),
		attemptsFinished: counter("cst.timer.attempts.finished", "Number of finished attempts"),
		splits:           counter("cst.timer.splits", "Number of recorded splits"),
		golds:            counter("cst.timer.golds", "Number of gold segments and splits"),
		personalBests:    counter("cst.timer.pb", "Number of new personal bests"),
		persistFailures:  counter("cst.timer.persist.failures", "Number of failed record writes"),
	}
}

func add(ctx context.Context, c metric.Int64Counter, n int, attrs ...attribute.KeyValue) {
	if c == nil || n == 0 {
		return
	}
	c.Add(ctx, int64(n), metric.WithAttributes(attrs...))
}
