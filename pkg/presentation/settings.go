package presentation

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/samber/lo"
)

type Comparison string

const (
	ComparePB   Comparison = "pb"
	CompareBest Comparison = "best"
)

type Unit string

const (
	UnitSplit   Unit = "split"
	UnitSegment Unit = "seg"
)

// HUD items
const (
	ItemCourseName  = "courseName"
	ItemTime        = "time"
	ItemSegment     = "segment"
	ItemSegmentTime = "segmentTime"
	ItemPrevSeg     = "prevSeg"
	ItemSoB         = "sob"
	ItemBPT         = "bpt"
	ItemBestSeg     = "bestSeg"
	ItemBestSplit   = "bestSplit"
	ItemAttempt     = "attempt"
	ItemSplitList   = "splitList"
)

var DefaultItemOrder = []string{
	ItemCourseName, ItemTime, ItemSegment, ItemSegmentTime, ItemPrevSeg,
	ItemSoB, ItemBPT, ItemBestSeg, ItemBestSplit, ItemAttempt, ItemSplitList,
}

const (
	PresetStandard = "standard"
	PresetCompact  = "compact"
	PresetPractice = "practice"
	PresetMinimal  = "minimal"
	PresetOff      = "off"
)

var Presets = []string{PresetStandard, PresetCompact, PresetPractice, PresetMinimal, PresetOff}

// Settings controls what the adapters show. Settings are values: the With*
// methods return modified copies and never change the receiver.
type Settings struct {
	Preset     string          `yaml:"preset" json:"preset"`
	TimeFormat TimeFormat      `yaml:"timeFormat" json:"timeFormat"`
	Comparison Comparison      `yaml:"comparison" json:"comparison"`
	Unit       Unit            `yaml:"unit" json:"unit"`
	SplitRows  int             `yaml:"splitRows" json:"splitRows"`
	Toggles    map[string]bool `yaml:"toggles" json:"toggles"`
	ItemOrder  []string        `yaml:"itemOrder" json:"itemOrder"`
}

func DefaultSettings() Settings {
	s, _ := Settings{}.WithPreset(PresetStandard)
	return s
}

func (s Settings) clone() Settings {
	ret := s
	ret.Toggles = maps.Clone(s.Toggles)
	ret.ItemOrder = slices.Clone(s.ItemOrder)
	return ret
}

// IsOn reports whether an item is enabled. Items without toggle are on.
func (s Settings) IsOn(item string) bool {
	if s.Preset == PresetOff {
		return false
	}
	v, ok := s.Toggles[item]
	return !ok || v
}

func (s Settings) Items() []string {
	if len(s.ItemOrder) == 0 {
		return DefaultItemOrder
	}
	return s.ItemOrder
}

func (s Settings) WithTimeFormat(f TimeFormat) Settings {
	ret := s.clone()
	ret.TimeFormat = f
	return ret
}

func (s Settings) WithComparison(c Comparison, u Unit) Settings {
	ret := s.clone()
	ret.Comparison = c
	ret.Unit = u
	return ret
}

func (s Settings) WithSplitRows(rows int) Settings {
	ret := s.clone()
	ret.SplitRows = max(0, rows)
	return ret
}

func (s Settings) WithToggle(item string, on bool) (Settings, error) {
	if !lo.Contains(DefaultItemOrder, item) {
		return s, fmt.Errorf("unknown item: %s", item)
	}
	ret := s.clone()
	if ret.Toggles == nil {
		ret.Toggles = map[string]bool{}
	}
	ret.Toggles[item] = on
	return ret, nil
}

// WithPreset replaces everything by the preset values.
func (s Settings) WithPreset(name string) (Settings, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "splitlist" {
		name = PresetStandard
	}
	ret := Settings{
		Preset:     name,
		TimeFormat: FormatMSS,
		Comparison: ComparePB,
		Unit:       UnitSplit,
		SplitRows:  4,
		ItemOrder:  slices.Clone(DefaultItemOrder),
	}
	on := func(items ...string) map[string]bool {
		m := make(map[string]bool, len(DefaultItemOrder))
		for _, item := range DefaultItemOrder {
			m[item] = lo.Contains(items, item)
		}
		return m
	}
	switch name {
	case PresetStandard:
		ret.TimeFormat = FormatSeconds
		ret.ItemOrder = []string{
			ItemCourseName, ItemTime, ItemSegment, ItemSegmentTime, ItemBPT, ItemSoB,
			ItemSplitList, ItemPrevSeg, ItemAttempt, ItemBestSeg, ItemBestSplit,
		}
		ret.Toggles = on(ItemCourseName, ItemTime, ItemSegment, ItemSegmentTime,
			ItemBPT, ItemSoB, ItemSplitList)
	case PresetCompact:
		ret.TimeFormat = FormatSeconds
		ret.ItemOrder = []string{
			ItemTime, ItemSegment, ItemSegmentTime, ItemBPT, ItemSplitList,
			ItemCourseName, ItemPrevSeg, ItemSoB, ItemAttempt, ItemBestSeg, ItemBestSplit,
		}
		ret.Toggles = on(ItemTime, ItemSegment, ItemSegmentTime, ItemBPT, ItemSplitList)
	case PresetPractice:
		ret.ItemOrder = []string{
			ItemCourseName, ItemAttempt, ItemTime, ItemSegment, ItemSegmentTime, ItemPrevSeg,
			ItemBestSeg, ItemBestSplit, ItemBPT, ItemSoB, ItemSplitList,
		}
		ret.Toggles = on(DefaultItemOrder...)
	case PresetMinimal:
		ret.TimeFormat = FormatTicks
		ret.Toggles = on(ItemTime, ItemSegment, ItemSegmentTime)
	case PresetOff:
		ret.Toggles = on()
	default:
		return s, fmt.Errorf("unknown preset: %s", name)
	}
	return ret, nil
}

// Normalize replaces invalid values by defaults. Used for loaded layouts.
func (s Settings) Normalize() Settings {
	ret := s.clone()
	def := DefaultSettings()
	if f, err := ParseTimeFormat(string(ret.TimeFormat)); err == nil {
		ret.TimeFormat = f
	} else {
		ret.TimeFormat = def.TimeFormat
	}
	ret.Comparison = Comparison(strings.ToLower(string(ret.Comparison)))
	if ret.Comparison != ComparePB && ret.Comparison != CompareBest {
		ret.Comparison = ComparePB
	}
	ret.Unit = Unit(strings.ToLower(string(ret.Unit)))
	if ret.Unit != UnitSplit && ret.Unit != UnitSegment {
		ret.Unit = UnitSplit
	}
	ret.SplitRows = max(0, ret.SplitRows)
	if ret.Preset == "" {
		ret.Preset = def.Preset
	}
	// unknown items are dropped, missing ones appended
	order := lo.Filter(lo.Uniq(ret.ItemOrder), func(item string, _ int) bool {
		return lo.Contains(DefaultItemOrder, item)
	})
	for _, item := range DefaultItemOrder {
		if !lo.Contains(order, item) {
			order = append(order, item)
		}
	}
	ret.ItemOrder = order
	return ret
}
