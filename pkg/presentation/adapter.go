package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/processing/timer"
)

// View is a read only snapshot handed to adapters.
type View struct {
	Course   *model.Course
	Records  model.Records
	State    timer.RunState
	Settings Settings
}

// Adapter renders views. Adapters must not modify the view.
type Adapter interface {
	Render(w io.Writer, v View) error
}

type Line struct {
	Item  string `json:"item"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Frame is the adapter independent content of a view.
type Frame struct {
	Course  string        `json:"course"`
	Phase   string        `json:"phase"`
	Elapsed int           `json:"elapsed"`
	Lines   []Line        `json:"lines"`
	Splits  []SplitRow    `json:"splits"`
	History []HistoryLine `json:"history"`
}

func segmentLabel(course *model.Course, state timer.RunState) string {
	if state.IsFinished() {
		return "Finished"
	}
	if !state.IsRunning() {
		return "Idle"
	}
	seg, ok := course.Find(state.Cursor)
	if !ok {
		return "(no segment)"
	}
	return displayName(seg)
}

//nolint:funlen,cyclop // by design
func BuildFrame(v View) Frame {
	s := v.Settings
	ds := ComputeStats(v.Course, v.Records, v.State)
	ret := Frame{
		Phase:   v.State.Phase.String(),
		Elapsed: v.State.Elapsed(),
		Lines:   []Line{},
		Splits:  []SplitRow{},
		History: SplitHistory(v.Course, v.State, max(0, s.SplitRows)),
	}
	if v.Course != nil {
		ret.Course = v.Course.Name
	}
	for _, item := range s.Items() {
		if !s.IsOn(item) {
			continue
		}
		var line Line
		switch item {
		case ItemCourseName:
			line = Line{Label: "Course", Value: ret.Course}
		case ItemTime:
			line = Line{Label: "Time", Value: FormatTime(v.State.Elapsed(), s.TimeFormat)}
		case ItemSegment:
			line = Line{Label: "Seg", Value: segmentLabel(v.Course, v.State)}
		case ItemSegmentTime:
			line = Line{Label: "SegTime", Value: FormatTime(CurrentSegmentTicks(v.State), s.TimeFormat)}
		case ItemPrevSeg:
			line = Line{Label: "Prev", Value: FormatOptional(v.State.LastCompletedSegment, s.TimeFormat)}
		case ItemSoB:
			line = Line{Label: "SoB", Value: FormatOptional(ds.SumOfBest, s.TimeFormat)}
		case ItemBPT:
			line = Line{Label: "BPT", Value: FormatOptional(ds.BestPossible, s.TimeFormat)}
		case ItemBestSeg:
			line = Line{Label: "BestSeg", Value: FormatOptional(ds.BestSegment, s.TimeFormat)}
		case ItemBestSplit:
			line = Line{Label: "BestSplit", Value: FormatOptional(ds.BestSplit, s.TimeFormat)}
		case ItemAttempt:
			line = Line{Label: "Attempts", Value: strconv.Itoa(v.Records.AttemptCount)}
		case ItemSplitList:
			ret.Splits = BuildSplitRows(v.Course, v.Records, v.State, s)
			line = Line{Label: "Splits"}
		default:
			continue
		}
		line.Item = item
		ret.Lines = append(ret.Lines, line)
	}
	return ret
}

// TextAdapter renders a plain text HUD. Gold rows are marked with '*'.
type TextAdapter struct{}

func (TextAdapter) Render(w io.Writer, v View) error {
	f := BuildFrame(v)
	var sb strings.Builder
	for _, line := range f.Lines {
		if line.Item == ItemSplitList {
			sb.WriteString("Splits:\n")
			if len(f.Splits) == 0 {
				sb.WriteString("  (none)\n")
			}
			for _, row := range f.Splits {
				sb.WriteString(formatRow(row))
			}
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", line.Label, line.Value)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func formatRow(row SplitRow) string {
	marker := " "
	switch {
	case row.Gold:
		marker = "*"
	case row.State == RowActive:
		marker = ">"
	}
	return fmt.Sprintf("%s %-16s %10s %10s\n", marker, row.Name, row.Primary, row.Secondary)
}

// JSONAdapter renders the frame as json.
type JSONAdapter struct{}

func (JSONAdapter) Render(w io.Writer, v View) error {
	return json.NewEncoder(w).Encode(BuildFrame(v))
}
