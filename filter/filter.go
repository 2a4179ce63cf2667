// Package filter compiles feature selection expressions such as
//
//	category == "Drainage" && severity >= high
//
// into predicates over survey features. Compilation validates field
// names and operand types up front so matching never fails mid-run.
package filter

import (
	"fmt"
	"strings"

	"github.com/fieldfolio/fieldfolio/survey"
)

// Filter is a compiled feature predicate.
type Filter struct {
	src  string
	eval matcher
}

type matcher func(f *survey.Feature) bool

// Compile parses and validates a filter expression. Fields are name,
// category, severity and observations; severity compares against the
// levels low, medium, high and critical, observations against its
// count.
func Compile(src string) (*Filter, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty filter expression")
	}
	ast, err := parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	eval, err := compileExpression(ast)
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}
	return &Filter{src: src, eval: eval}, nil
}

// Match reports whether a feature passes the filter. A nil filter
// matches everything.
func (f *Filter) Match(feat *survey.Feature) bool {
	if f == nil {
		return true
	}
	return f.eval(feat)
}

// Apply returns the features that pass the filter, preserving order.
func (f *Filter) Apply(features []survey.Feature) []survey.Feature {
	if f == nil {
		return features
	}
	out := make([]survey.Feature, 0, len(features))
	for i := range features {
		if f.Match(&features[i]) {
			out = append(out, features[i])
		}
	}
	return out
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.src
}

func compileExpression(e *expression) (matcher, error) {
	clauses := make([]matcher, 0, len(e.Clauses))
	for _, c := range e.Clauses {
		m, err := compileConjunction(c)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, m)
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	return func(f *survey.Feature) bool {
		for _, m := range clauses {
			if m(f) {
				return true
			}
		}
		return false
	}, nil
}

func compileConjunction(c *conjunction) (matcher, error) {
	terms := make([]matcher, 0, len(c.Terms))
	for _, t := range c.Terms {
		m, err := compileCondition(t)
		if err != nil {
			return nil, err
		}
		terms = append(terms, m)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return func(f *survey.Feature) bool {
		for _, m := range terms {
			if !m(f) {
				return false
			}
		}
		return true
	}, nil
}

func compileCondition(c *condition) (matcher, error) {
	switch {
	case c.Not != nil:
		inner, err := compileCondition(c.Not)
		if err != nil {
			return nil, err
		}
		return func(f *survey.Feature) bool { return !inner(f) }, nil
	case c.Group != nil:
		return compileExpression(c.Group)
	case c.Comparison != nil:
		return compileComparison(c.Comparison)
	}
	return nil, fmt.Errorf("empty condition")
}

func compileComparison(c *comparison) (matcher, error) {
	op := c.Op
	switch c.Field {
	case "name":
		return compileStringField(c, op, func(f *survey.Feature) string {
			return f.Properties.Name
		})
	case "category":
		return compileStringField(c, op, func(f *survey.Feature) string {
			return f.Properties.Category
		})
	case "severity":
		if c.Value.Ident == nil {
			return nil, fmt.Errorf("%s: severity compares against a level (low, medium, high, critical)", c.Pos)
		}
		want, ok := survey.ParseSeverity(*c.Value.Ident)
		if !ok {
			return nil, fmt.Errorf("%s: unknown severity level %q", c.Pos, *c.Value.Ident)
		}
		return func(f *survey.Feature) bool {
			return compareRank(op, int(f.MaxSeverity()), int(want))
		}, nil
	case "observations":
		if c.Value.Num == nil {
			return nil, fmt.Errorf("%s: observations compares against a count", c.Pos)
		}
		want := *c.Value.Num
		return func(f *survey.Feature) bool {
			return compareRank(op, len(f.Properties.Observations), want)
		}, nil
	}
	return nil, fmt.Errorf("%s: unknown field %q", c.Pos, c.Field)
}

func compileStringField(c *comparison, op string, get func(*survey.Feature) string) (matcher, error) {
	if c.Value.Str == nil {
		return nil, fmt.Errorf("%s: %s compares against a quoted string", c.Pos, c.Field)
	}
	if op != "==" && op != "!=" {
		return nil, fmt.Errorf("%s: %s supports == and != only", c.Pos, c.Field)
	}
	want := string(*c.Value.Str)
	if op == "==" {
		return func(f *survey.Feature) bool { return get(f) == want }, nil
	}
	return func(f *survey.Feature) bool { return get(f) != want }, nil
}

func compareRank(op string, a, b int) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}
