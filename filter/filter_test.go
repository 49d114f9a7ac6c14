package filter

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/spantree"
	"github.com/shibukawa/spantree/label"
	"github.com/shibukawa/spantree/tree"
)

// x.y = foo(1)
func sample(t *testing.T) *tree.Tree {
	t.Helper()

	tr := tree.New()
	_, err := tr.InsertMany([]tree.Span{
		tree.NewSpan(0, 13, label.New("module")),
		tree.NewSpan(0, 12, label.New("expression_statement")),
		tree.NewSpan(0, 12, label.New("assignment")),
		tree.NewSpan(0, 3, label.New("attribute").WithField("left")),
		tree.NewSpan(0, 1, label.New("identifier").WithField("object").WithAttr("text", "x")),
		tree.NewSpan(2, 3, label.New("identifier").WithField("attribute").WithAttr("text", "y")),
		tree.NewSpan(6, 12, label.New("call").WithField("right")),
		tree.NewSpan(6, 9, label.New("identifier").WithField("function").WithAttr("text", "foo")),
		tree.NewSpan(10, 11, label.New("integer").WithAttr("text", "1")),
	})
	assert.NoError(t, err)

	tr.FindBestMatch(6, 12).SetSelected(true)

	return tr
}

func kinds(nodes []*tree.Node) []string {
	result := []string{}
	for _, n := range nodes {
		result = append(result, n.Label().String())
	}

	return result
}

func TestSelect(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{`kind == "identifier"`, []string{"identifier[object]", "identifier[attribute]", "identifier[function]"}},
		{`kind == "identifier" && size > 1`, []string{"identifier[function]"}},
		{`field == "left" || field == "right"`, []string{"attribute[left]", "call[right]"}},
		{`"expression_statement" in mates`, []string{"assignment"}},
		{`depth == 0`, []string{"module"}},
		{`selected`, []string{"call[right]"}},
		{`"text" in attrs && attrs.text == "y"`, []string{"identifier[attribute]"}},
		{`start >= 6 && end <= 12 && kind != "call"`, []string{"identifier[function]", "integer"}},
		{`false`, []string{}},
	}

	tr := sample(t)

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := Compile(tt.expr)
			assert.NoError(t, err)

			nodes, err := Select(tr, p)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, kinds(nodes))
		})
	}
}

func TestCompile_Invalid(t *testing.T) {
	for _, expr := range []string{
		`kind ==`,
		`unknown == 1`,
		`size + 1`,
		`kind`,
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := Compile(expr)
			assert.True(t, errors.Is(err, spantree.ErrInvalidFilter), "got %v", err)
		})
	}
}

func TestMatch_RuntimeError(t *testing.T) {
	p, err := Compile(`attrs.missing == "x"`)
	assert.NoError(t, err)

	_, err = p.Match(sample(t).Root())
	assert.Error(t, err)
}
