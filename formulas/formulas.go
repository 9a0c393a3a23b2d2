package formulas

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/eapache/queue"
	"github.com/expr-lang/expr"
	"github.com/kelseyhightower/envconfig"

	"github.com/tidepool-org/labreport/catalog"
	"github.com/tidepool-org/labreport/results"
)

var (
	ErrInvalidFormula   = errors.New("invalid formula")
	ErrUnknownReference = errors.New("formula references a test that is not part of the visit")
	ErrMissingValue     = errors.New("formula references a test without a numeric value")
	ErrCycle            = errors.New("formula depends on itself")
	ErrDependencyFailed = errors.New("formula depends on a calculated test that could not be evaluated")
	ErrNotFinite        = errors.New("formula result is not a finite number")
)

type Config struct {
	Precision int `envconfig:"LAB_FORMULAS_PRECISION" default:"2"`
}

func DefaultConfig() *Config {
	return &Config{Precision: 2}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Issue describes why a calculated test kept its entered value.
type Issue struct {
	TestId string
	Err    error
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: %s", i.TestId, i.Err)
}

func (i Issue) Unwrap() error {
	return i.Err
}

var (
	identifierRegexp = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	keywords         = []string{"and", "or", "not", "in", "true", "false", "nil"}
)

// References returns the identifiers a formula reads, in order of first use.
// Function names such as abs or max are not references.
func References(formula string) []string {
	refs := make([]string, 0)
	for _, loc := range identifierRegexp.FindAllStringIndex(formula, -1) {
		name := formula[loc[0]:loc[1]]
		if loc[0] > 0 && isIdentifierByte(formula[loc[0]-1]) {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(formula[loc[1]:]), "(") {
			continue
		}
		if slices.Contains(keywords, name) || slices.Contains(refs, name) {
			continue
		}
		refs = append(refs, name)
	}
	return refs
}

func isIdentifierByte(b byte) bool {
	return b == '_' || b == '.' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

type Evaluator struct {
	precision int
}

func NewEvaluator(cfg *Config) *Evaluator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Evaluator{precision: cfg.Precision}
}

// Evaluate computes the value of every calculated snapshot from the values of the
// other snapshots of the same visit. Calculated tests may depend on each other;
// they are evaluated in dependency order. A calculated test whose formula cannot
// be evaluated keeps its entered value and is reported as an Issue. The input
// slice is not modified.
func (e *Evaluator) Evaluate(snapshots []results.Snapshot) ([]results.Snapshot, []Issue) {
	out := slices.Clone(snapshots)

	index := make(map[string]int, len(out))
	for i, s := range out {
		if _, exists := index[s.TestId]; !exists {
			index[s.TestId] = i
		}
	}

	g := graph.New(graph.StringHash, graph.Directed())
	vertices := make([]string, 0)
	addVertex := func(id string) {
		if err := g.AddVertex(id); err == nil {
			vertices = append(vertices, id)
		}
	}

	issues := make(map[string]error)
	calculated := make(map[string]int)
	for i, s := range out {
		if s.InputType != catalog.InputTypeCalculated || strings.TrimSpace(s.Formula) == "" {
			continue
		}
		if _, exists := calculated[s.TestId]; exists {
			continue
		}
		calculated[s.TestId] = i
		addVertex(s.TestId)

		for _, ref := range References(s.Formula) {
			if ref == s.TestId {
				issues[s.TestId] = ErrCycle
				continue
			}
			if _, ok := index[ref]; !ok {
				issues[s.TestId] = fmt.Errorf("%w: %s", ErrUnknownReference, ref)
				continue
			}
			addVertex(ref)
			if err := g.AddEdge(ref, s.TestId); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				issues[s.TestId] = fmt.Errorf("%w: %s", ErrInvalidFormula, err)
			}
		}
	}

	if len(calculated) == 0 {
		return out, nil
	}

	evaluated := e.evaluateInOrder(g, vertices, out, index, calculated, issues)
	for id := range calculated {
		if _, ok := evaluated[id]; !ok {
			if _, reported := issues[id]; !reported {
				issues[id] = ErrCycle
			}
		}
	}

	return out, sortedIssues(issues, index)
}

// evaluateInOrder walks the dependency graph in topological order. Tests that
// take part in, or depend on, a cycle never become ready and are left out.
func (e *Evaluator) evaluateInOrder(g graph.Graph[string, string], vertices []string, out []results.Snapshot, index map[string]int, calculated map[string]int, issues map[string]error) map[string]struct{} {
	evaluated := make(map[string]struct{})

	predecessors, err := g.PredecessorMap()
	if err != nil {
		return evaluated
	}
	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return evaluated
	}

	inDegree := make(map[string]int, len(vertices))
	q := queue.New()
	for _, id := range vertices {
		inDegree[id] = len(predecessors[id])
		if inDegree[id] == 0 {
			q.Add(id)
		}
	}

	for q.Length() != 0 {
		id := q.Remove().(string)
		evaluated[id] = struct{}{}

		if i, ok := calculated[id]; ok {
			if _, failed := issues[id]; !failed {
				if dependency, ok := failedDependency(predecessors[id], calculated, issues); ok {
					issues[id] = fmt.Errorf("%w: %s", ErrDependencyFailed, dependency)
				} else if value, err := e.evaluate(out[i].Formula, out, index); err != nil {
					issues[id] = err
				} else {
					out[i] = out[i].WithValue(value)
				}
			}
		}

		successors := make([]string, 0, len(adjacency[id]))
		for successor := range adjacency[id] {
			successors = append(successors, successor)
		}
		slices.Sort(successors)
		for _, successor := range successors {
			inDegree[successor]--
			if inDegree[successor] == 0 {
				q.Add(successor)
			}
		}
	}

	return evaluated
}

// failedDependency returns the first calculated dependency, in id order, that
// has an issue. Its entered value is stale and must not be used.
func failedDependency(dependencies map[string]graph.Edge[string], calculated map[string]int, issues map[string]error) (string, bool) {
	ids := make([]string, 0, len(dependencies))
	for id := range dependencies {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		if _, ok := calculated[id]; !ok {
			continue
		}
		if _, failed := issues[id]; failed {
			return id, true
		}
	}
	return "", false
}

func (e *Evaluator) evaluate(formula string, snapshots []results.Snapshot, index map[string]int) (string, error) {
	env := make(map[string]any)
	for _, ref := range References(formula) {
		value, err := strconv.ParseFloat(strings.TrimSpace(snapshots[index[ref]].Value), 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return "", fmt.Errorf("%w: %s", ErrMissingValue, ref)
		}
		env[ref] = value
	}

	program, err := expr.Compile(formula, expr.Env(env), expr.AsFloat64())
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidFormula, err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidFormula, err)
	}

	value, ok := result.(float64)
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return "", ErrNotFinite
	}

	return strconv.FormatFloat(value, 'f', e.precision, 64), nil
}

func sortedIssues(issues map[string]error, index map[string]int) []Issue {
	if len(issues) == 0 {
		return nil
	}

	sorted := make([]Issue, 0, len(issues))
	for id, err := range issues {
		sorted = append(sorted, Issue{TestId: id, Err: err})
	}
	slices.SortFunc(sorted, func(a, b Issue) int {
		return index[a.TestId] - index[b.TestId]
	})
	return sorted
}
