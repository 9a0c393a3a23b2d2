package ranges

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type Kind string

const (
	KindRange          Kind = "range"
	KindLessThan       Kind = "lt"
	KindLessOrEqual    Kind = "lte"
	KindGreaterThan    Kind = "gt"
	KindGreaterOrEqual Kind = "gte"
)

// Status is the interpretation of a value against its reference range. It is the
// only status type in the module; every caller classifies through it.
type Status string

const (
	StatusNormal   Status = "NORMAL"
	StatusLow      Status = "LOW"
	StatusHigh     Status = "HIGH"
	StatusBoundary Status = "BOUNDARY"
)

// IsAbnormal reports whether the status should be highlighted.
func (s Status) IsAbnormal() bool {
	return s == StatusLow || s == StatusHigh
}

// Range is a parsed reference range. Min and Max are set for KindRange, Value
// for the single bound kinds. Text holds the source the range was parsed from.
type Range struct {
	Kind  Kind
	Min   float64
	Max   float64
	Value float64
	Text  string
}

func (r Range) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": r.Kind}
	if r.Kind == KindRange {
		out["min"] = r.Min
		out["max"] = r.Max
	} else {
		out["value"] = r.Value
	}
	if r.Text != "" {
		out["text"] = r.Text
	}
	return json.Marshal(out)
}

func NewRange(min, max float64) Range {
	if min > max {
		min, max = max, min
	}
	return Range{Kind: KindRange, Min: min, Max: max}
}

func NewBound(kind Kind, value float64) Range {
	return Range{Kind: kind, Value: value}
}

// Status classifies v against the range. Values lying exactly on either end of a
// two sided range are reported as StatusBoundary.
func (r Range) Status(v float64) Status {
	switch r.Kind {
	case KindRange:
		switch {
		case v < r.Min:
			return StatusLow
		case v > r.Max:
			return StatusHigh
		case v == r.Min || v == r.Max:
			return StatusBoundary
		default:
			return StatusNormal
		}
	case KindLessThan:
		if v < r.Value {
			return StatusNormal
		}
		return StatusHigh
	case KindLessOrEqual:
		if v <= r.Value {
			return StatusNormal
		}
		return StatusHigh
	case KindGreaterThan:
		if v > r.Value {
			return StatusNormal
		}
		return StatusLow
	case KindGreaterOrEqual:
		if v >= r.Value {
			return StatusNormal
		}
		return StatusLow
	default:
		return StatusNormal
	}
}

func (r Range) String() string {
	switch r.Kind {
	case KindRange:
		return formatNumber(r.Min) + " - " + formatNumber(r.Max)
	case KindLessThan:
		return "<" + formatNumber(r.Value)
	case KindLessOrEqual:
		return "<=" + formatNumber(r.Value)
	case KindGreaterThan:
		return ">" + formatNumber(r.Value)
	case KindGreaterOrEqual:
		return ">=" + formatNumber(r.Value)
	default:
		return fmt.Sprintf("unknown range kind %q", r.Kind)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
