package presentation

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mpapenbr/course-split-timer/pkg/model"
)

type TimeFormat string

const (
	// FormatMSS shows m:ss.cc
	FormatMSS     TimeFormat = "MSS"
	FormatTicks   TimeFormat = "TICKS"
	FormatSeconds TimeFormat = "SECONDS"
)

const (
	TicksPerSecond = 20
	// centiseconds per tick
	centisPerTick = 5
	absentText    = "--"
)

func ParseTimeFormat(s string) (TimeFormat, error) {
	switch f := TimeFormat(strings.ToUpper(strings.TrimSpace(s))); f {
	case FormatMSS, FormatTicks, FormatSeconds:
		return f, nil
	}
	return "", fmt.Errorf("unknown time format: %s", s)
}

// FormatTime renders a tick count. Unknown formats fall back to MSS.
func FormatTime(ticks int, f TimeFormat) string {
	if ticks < 0 {
		return "-" + FormatTime(-ticks, f)
	}
	switch TimeFormat(strings.ToUpper(string(f))) {
	case FormatTicks:
		return fmt.Sprintf("%dt", ticks)
	case FormatSeconds:
		return decimal.NewFromInt(int64(ticks)).
			Div(decimal.NewFromInt(TicksPerSecond)).
			StringFixed(2)
	default:
		totalCs := ticks * centisPerTick
		minutes := totalCs / 6000
		secCs := totalCs % 6000
		return fmt.Sprintf("%d:%02d.%02d", minutes, secCs/100, secCs%100)
	}
}

// FormatOptional renders absent values as "--"
func FormatOptional(t model.Ticks, f TimeFormat) string {
	if v, ok := t.Get(); ok {
		return FormatTime(v, f)
	}
	return absentText
}

// FormatDelta renders a signed difference, zero is shown as "+".
func FormatDelta(delta int, f TimeFormat) string {
	if delta < 0 {
		return "-" + FormatTime(-delta, f)
	}
	return "+" + FormatTime(delta, f)
}

// FormatDoubleTrunc5 renders v truncated (not rounded) to 5 decimals without
// trailing zeros and without exponent notation.
func FormatDoubleTrunc5(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	d := decimal.NewFromFloat(v).Truncate(5)
	if d.IsZero() {
		return "0"
	}
	return d.String()
}
