package jsonl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/mpapenbr/course-split-timer/log"
	"github.com/mpapenbr/course-split-timer/pkg/model"
)

var ErrMissingCoordinate = errors.New("missing coordinate")

// Paths are JSONPath expressions locating the sample values in a line.
type Paths struct {
	X           string `yaml:"x"`
	Y           string `yaml:"y"`
	Z           string `yaml:"z"`
	Unavailable string `yaml:"unavailable"`
	Paused      string `yaml:"paused"`
}

func DefaultPaths() Paths {
	return Paths{
		X:           "$.pos.x",
		Y:           "$.pos.y",
		Z:           "$.pos.z",
		Unavailable: "$.unavailable",
		Paused:      "$.paused",
	}
}

// Decoder turns json lines into position samples.
type Decoder struct {
	x, y, z     jp.Expr
	unavailable jp.Expr
	paused      jp.Expr
	l           *log.Logger
	skipped     int
}

type Option func(d *Decoder)

func WithLogger(l *log.Logger) Option {
	return func(d *Decoder) {
		d.l = l
	}
}

func NewDecoder(paths Paths, opts ...Option) (*Decoder, error) {
	ret := &Decoder{l: log.Default().Named("source")}
	for _, p := range []struct {
		expr *jp.Expr
		src  string
	}{
		{&ret.x, paths.X},
		{&ret.y, paths.Y},
		{&ret.z, paths.Z},
		{&ret.unavailable, paths.Unavailable},
		{&ret.paused, paths.Paused},
	} {
		if p.src == "" {
			continue
		}
		expr, err := jp.ParseString(p.src)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", p.src, err)
		}
		*p.expr = expr
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret, nil
}

// Decode parses a single line. Unavailable and paused samples need no
// coordinates.
func (d *Decoder) Decode(line string) (model.PositionSample, error) {
	obj, err := oj.ParseString(line)
	if err != nil {
		return model.PositionSample{}, err
	}
	ret := model.PositionSample{
		Unavailable: d.flag(d.unavailable, obj),
		Paused:      d.flag(d.paused, obj),
	}
	if ret.Unavailable || ret.Paused {
		return ret, nil
	}
	var ok bool
	if ret.Pos.X, ok = d.number(d.x, obj); !ok {
		return ret, fmt.Errorf("%w: x", ErrMissingCoordinate)
	}
	if ret.Pos.Y, ok = d.number(d.y, obj); !ok {
		return ret, fmt.Errorf("%w: y", ErrMissingCoordinate)
	}
	if ret.Pos.Z, ok = d.number(d.z, obj); !ok {
		return ret, fmt.Errorf("%w: z", ErrMissingCoordinate)
	}
	return ret, nil
}

func (d *Decoder) flag(expr jp.Expr, obj any) bool {
	if expr == nil {
		return false
	}
	b, ok := expr.First(obj).(bool)
	return ok && b
}

func (d *Decoder) number(expr jp.Expr, obj any) (float64, bool) {
	if expr == nil {
		return 0, false
	}
	switch v := expr.First(obj).(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Skipped returns the number of lines Read could not decode.
func (d *Decoder) Skipped() int {
	return d.skipped
}

// Read decodes r line by line and sends the samples to out until r is
// exhausted or ctx is done. Blank lines and lines starting with '#' are
// ignored, invalid lines are logged and skipped. out is not closed.
func (d *Decoder) Read(ctx context.Context, r io.Reader, out chan<- model.PositionSample) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sample, err := d.Decode(line)
		if err != nil {
			d.skipped++
			d.l.Warn("skipping invalid sample", log.Int("line", lineNo), log.ErrorField(err))
			continue
		}
		select {
		case out <- sample:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}
