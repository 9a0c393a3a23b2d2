package ranges

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const DefaultMaxDepth = 3

type Config struct {
	MaxDepth int `envconfig:"LAB_RANGES_MAX_DEPTH" default:"3"`
}

func DefaultConfig() *Config {
	return &Config{MaxDepth: DefaultMaxDepth}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

const number = `-?(?:\d+(?:\.\d*)?|\.\d+)`

var (
	comparisonRegexp = regexp.MustCompile(`^(<=|>=|<|>)\s*(` + number + `)$`)
	intervalRegexp   = regexp.MustCompile(`^(` + number + `)\s*[-–—]\s*(` + number + `)$`)
	gluedUnitRegexp  = regexp.MustCompile(`^(.*\d)([A-Za-z%µμ/][^\s]*)$`)

	operatorReplacer = strings.NewReplacer("≤", "<=", "≥", ">=", "=<", "<=", "=>", ">=")
)

var defaultParser = NewParser(DefaultConfig())

// Parse parses text with the default configuration.
func Parse(text string) *Range {
	return defaultParser.Parse(text)
}

type Parser struct {
	maxDepth int
}

func NewParser(cfg *Config) Parser {
	maxDepth := DefaultMaxDepth
	if cfg != nil && cfg.MaxDepth > 0 {
		maxDepth = cfg.MaxDepth
	}
	return Parser{maxDepth: maxDepth}
}

// Parse extracts a numeric range from free form reference text. It returns nil
// when the text carries no numeric structure, which callers must treat as "not
// classifiable" rather than as an error.
func (p Parser) Parse(text string) *Range {
	r := p.parse(text, 0)
	if r != nil {
		r.Text = strings.TrimSpace(text)
	}
	return r
}

func (p Parser) parse(text string, depth int) *Range {
	if depth > p.maxDepth {
		return nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if lines := splitLines(text); len(lines) > 1 {
		for _, line := range lines {
			if r := p.parse(line, depth+1); r != nil {
				return r
			}
		}
		return nil
	}

	if r := parseExpression(text); r != nil {
		return r
	}

	// "Male: 13.0 - 17.0", "Adults: <200"
	if i := strings.LastIndex(text, ":"); i >= 0 {
		return p.parse(text[i+1:], depth+1)
	}

	return nil
}

func parseExpression(text string) *Range {
	text = stripUnits(operatorReplacer.Replace(text))
	if text == "" {
		return nil
	}

	if m := comparisonRegexp.FindStringSubmatch(text); m != nil {
		value, ok := parseNumber(m[2])
		if !ok {
			return nil
		}

		var kind Kind
		switch m[1] {
		case "<":
			kind = KindLessThan
		case "<=":
			kind = KindLessOrEqual
		case ">":
			kind = KindGreaterThan
		case ">=":
			kind = KindGreaterOrEqual
		}
		r := NewBound(kind, value)
		return &r
	}

	if m := intervalRegexp.FindStringSubmatch(text); m != nil {
		min, ok := parseNumber(m[1])
		if !ok {
			return nil
		}
		max, ok := parseNumber(m[2])
		if !ok {
			return nil
		}
		r := NewRange(min, max)
		return &r
	}

	return nil
}

// stripUnits removes unit tokens ("mg/dL", "%", "10^3/uL") from the end of text
// and unit suffixes glued to the last number ("5mg/dL").
func stripUnits(text string) string {
	fields := strings.Fields(text)
	for len(fields) > 0 && isUnitToken(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}
	if len(fields) == 0 {
		return ""
	}

	last := len(fields) - 1
	if m := gluedUnitRegexp.FindStringSubmatch(fields[last]); m != nil {
		fields[last] = m[1]
	}

	return strings.Join(fields, " ")
}

func isUnitToken(token string) bool {
	if strings.Contains(token, "^") {
		return true
	}

	first := []rune(token)[0]
	switch {
	case first >= '0' && first <= '9':
		return false
	case strings.ContainsRune("<>=-–—.", first):
		return false
	default:
		return true
	}
}

func splitLines(text string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
