// Package filter selects tree nodes with CEL expressions such as
//
//	kind == "attribute" && size > 3
//	field == "left" || "assignment" in mates
//
// Expressions see the variables kind, field, start, end, size, depth,
// selected, attrs (map of label attributes) and mates (kinds of the nodes
// sharing the span). They must evaluate to a bool.
package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/shibukawa/spantree"
	"github.com/shibukawa/spantree/tree"
)

// Predicate is a compiled node filter
type Predicate struct {
	expr    string
	program cel.Program
}

var variables = []cel.EnvOption{
	cel.Variable("kind", cel.StringType),
	cel.Variable("field", cel.StringType),
	cel.Variable("start", cel.IntType),
	cel.Variable("end", cel.IntType),
	cel.Variable("size", cel.IntType),
	cel.Variable("depth", cel.IntType),
	cel.Variable("selected", cel.BoolType),
	cel.Variable("attrs", cel.MapType(cel.StringType, cel.DynType)),
	cel.Variable("mates", cel.ListType(cel.StringType)),
}

// Compile parses and type-checks expr
func Compile(expr string) (*Predicate, error) {
	env, err := cel.NewEnv(append([]cel.EnvOption{cel.EagerlyValidateDeclarations(true)}, variables...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	checked, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %s: %v", spantree.ErrInvalidFilter, expr, issues.Err())
	}

	if !checked.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w: %s: result type is %s, not bool", spantree.ErrInvalidFilter, expr, checked.OutputType())
	}

	program, err := env.Program(checked)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", spantree.ErrInvalidFilter, expr, err)
	}

	return &Predicate{expr: expr, program: program}, nil
}

// String returns the expression the predicate was compiled from
func (p *Predicate) String() string { return p.expr }

// Match evaluates the predicate against one node
func (p *Predicate) Match(n *tree.Node) (bool, error) {
	out, _, err := p.program.Eval(activation(n))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate %q on %s: %w", p.expr, n, err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s: evaluated to %v", spantree.ErrInvalidFilter, p.expr, out.Value())
	}

	return matched, nil
}

func activation(n *tree.Node) map[string]any {
	payload := n.Label()
	pos := n.Position()

	attrs := payload.Attrs
	if attrs == nil {
		attrs = map[string]any{}
	}

	mates := []string{}
	for _, m := range n.Mates() {
		mates = append(mates, m.Label().Kind)
	}

	return map[string]any{
		"kind":     payload.Kind,
		"field":    payload.Field,
		"start":    pos.Start,
		"end":      pos.End,
		"size":     pos.Size(),
		"depth":    n.Depth(),
		"selected": pos.Selected,
		"attrs":    attrs,
		"mates":    mates,
	}
}

// Select returns the matching nodes in pre-order, group members included
func Select(t *tree.Tree, p *Predicate) ([]*tree.Node, error) {
	var result []*tree.Node

	for n := range t.FlattenAll() {
		matched, err := p.Match(n)
		if err != nil {
			return nil, err
		}

		if matched {
			result = append(result, n)
		}
	}

	return result, nil
}
