package results

import (
	"math"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/cases"

	"github.com/tidepool-org/labreport/catalog"
	"github.com/tidepool-org/labreport/ranges"
)

type Config struct {
	// ReportBoundary keeps values equal to either end of a two sided range as
	// BOUNDARY. When false they are reported as NORMAL.
	ReportBoundary bool `envconfig:"LAB_RESULTS_REPORT_BOUNDARY" default:"true"`
}

func DefaultConfig() *Config {
	return &Config{ReportBoundary: true}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// ParseGender normalizes free text patient gender. Anything other than a male or
// female spelling is unknown.
func ParseGender(text string) Gender {
	switch cases.Fold().String(strings.TrimSpace(text)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// RangeSource identifies which part of a snapshot supplied the range used for
// classification.
type RangeSource string

const (
	RangeSourceNone     RangeSource = "none"
	RangeSourceExplicit RangeSource = "explicit"
	RangeSourceGender   RangeSource = "gender"
	RangeSourceText     RangeSource = "text"
)

type Evaluation struct {
	Status ranges.Status `json:"status"`
	Range  *ranges.Range `json:"range,omitempty"`
	Source RangeSource   `json:"source"`
	// Numeric is false when the value was not classified against a range
	// because of the input type or because it is not a finite number.
	Numeric bool `json:"numeric"`
}

type Classifier struct {
	parser         ranges.Parser
	reportBoundary bool
}

func NewClassifier(cfg *Config, rangesCfg *ranges.Config) *Classifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Classifier{
		parser:         ranges.NewParser(rangesCfg),
		reportBoundary: cfg.ReportBoundary,
	}
}

func (c *Classifier) Classify(snapshot Snapshot, gender string) ranges.Status {
	return c.Evaluate(snapshot, gender).Status
}

// ClassifyAll returns copies of the snapshots with their status populated.
func (c *Classifier) ClassifyAll(snapshots []Snapshot, gender string) []Snapshot {
	classified := make([]Snapshot, len(snapshots))
	for i, s := range snapshots {
		s.Status = c.Classify(s, gender)
		classified[i] = s
	}
	return classified
}

func (c *Classifier) Evaluate(snapshot Snapshot, gender string) Evaluation {
	rng, source := c.ResolveRange(snapshot, ParseGender(gender))
	evaluation := Evaluation{
		Status: ranges.StatusNormal,
		Range:  rng,
		Source: source,
	}

	if !snapshot.InputType.IsNumeric() || rng == nil {
		return evaluation
	}

	value, ok := parseValue(snapshot.Value)
	if !ok {
		return evaluation
	}

	evaluation.Numeric = true
	evaluation.Status = rng.Status(value)
	if evaluation.Status == ranges.StatusBoundary && !c.reportBoundary {
		evaluation.Status = ranges.StatusNormal
	}
	return evaluation
}

// ResolveRange picks the range a snapshot is classified against. Explicit bounds
// win over the gender table, which wins over the reference text.
func (c *Classifier) ResolveRange(snapshot Snapshot, gender Gender) (*ranges.Range, RangeSource) {
	if low, high, ok := snapshot.ExplicitBounds(); ok {
		r := ranges.NewRange(low, high)
		return &r, RangeSourceExplicit
	}

	if snapshot.GenderSpecific {
		if r := boundsRange(genderBounds(snapshot, gender)); r != nil {
			return r, RangeSourceGender
		}
	}

	if r := c.parser.Parse(snapshot.RefText); r != nil {
		return r, RangeSourceText
	}

	return nil, RangeSourceNone
}

func genderBounds(snapshot Snapshot, gender Gender) *catalog.Bounds {
	switch gender {
	case GenderMale:
		return snapshot.MaleRange
	case GenderFemale:
		return snapshot.FemaleRange
	default:
		return nil
	}
}

func boundsRange(b *catalog.Bounds) *ranges.Range {
	if b.IsEmpty() {
		return nil
	}

	var r ranges.Range
	switch {
	case b.Low != nil && b.High != nil:
		r = ranges.NewRange(*b.Low, *b.High)
	case b.Low != nil:
		r = ranges.NewBound(ranges.KindGreaterOrEqual, *b.Low)
	default:
		r = ranges.NewBound(ranges.KindLessOrEqual, *b.High)
	}
	return &r
}

func parseValue(value string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || !isFinite(v) {
		return 0, false
	}
	return v, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
