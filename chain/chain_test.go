package chain

import (
	"errors"
	"testing"

	"github.com/shibukawa/spantree"
	"github.com/shibukawa/spantree/label"
	"github.com/shibukawa/spantree/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// x = foo.bar.baz(1)
const assignSource = "x = foo.bar.baz(1)\n"

func field(start, end int, kind, field string) tree.Span {
	return tree.NewSpan(start, end, label.New(kind).WithField(field))
}

func build(t *testing.T, spans ...tree.Span) *tree.Tree {
	t.Helper()

	tr := tree.New()
	_, err := tr.InsertMany(spans)
	require.NoError(t, err)

	return tr
}

func schema(t *testing.T, name string) *label.Schema {
	t.Helper()

	s, err := label.LoadSchema(name)
	require.NoError(t, err)

	return s
}

func assignTree(t *testing.T) *tree.Tree {
	return build(t,
		field(0, 19, "Module", ""),
		field(0, 18, "Assign", "body"),
		field(0, 1, "Name", "targets"),
		field(4, 18, "Call", "value"),
		field(4, 15, "Attribute", "func"),
		field(4, 11, "Attribute", "value"),
		field(4, 7, "Name", "value"),
		field(16, 17, "Constant", "args"),
	)
}

func TestTopStatement(t *testing.T) {
	tr := assignTree(t)
	cls := schema(t, "python-ast")

	inner := tr.FindBestMatch(4, 11)
	require.Equal(t, "Attribute", inner.Label().Kind)

	top := TopStatement(inner, cls)
	require.NotNil(t, top)
	assert.Equal(t, "Assign", top.Label().Kind)

	assert.Equal(t, top, TopStatement(top, cls))
	assert.Nil(t, TopStatement(tr.Root(), cls))

	root := build(t, field(0, 5, "Expr", ""), field(0, 3, "Name", "value"))
	assert.Equal(t, root.Root(), TopStatement(root.Root(), cls))
	assert.Equal(t, root.Root(), TopStatement(root.FindBestMatch(0, 3), cls))
}

func TestAttributeChain(t *testing.T) {
	tr := assignTree(t)
	cls := schema(t, "python-ast")

	foo := tr.FindBestMatch(4, 7)
	fooBar := tr.FindBestMatch(4, 11)
	fooBarBaz := tr.FindBestMatch(4, 15)
	call := tr.FindBestMatch(4, 18)

	assert.Equal(t, fooBar, NextAttribute(foo, cls))
	assert.Equal(t, fooBarBaz, NextAttribute(fooBar, cls))
	assert.Nil(t, NextAttribute(fooBarBaz, cls))
	assert.Nil(t, NextAttribute(TopStatement(foo, cls), cls))

	assert.Equal(t, fooBar, PreviousAttribute(fooBarBaz, cls))
	assert.Nil(t, PreviousAttribute(fooBar, cls))
	assert.Equal(t, fooBarBaz, PreviousAttribute(call, cls))
	assert.Nil(t, PreviousAttribute(tr.Root(), cls))
}

func TestStatementText(t *testing.T) {
	tr := assignTree(t)
	cls := schema(t, "python-ast")

	tests := []struct {
		name        string
		start, end  int
		zones       [5]string
		wantMarkers string
	}{
		{"outer link", 4, 15, [5]string{"x = ", "foo.bar", ".baz", "", "(1)"}, "----~~~~~~~^^^^---"},
		{"inner link", 4, 11, [5]string{"x = ", "", "foo.bar", ".baz", "(1)"}, "----^^^^^^^~~~~---"},
		{"chain base", 4, 7, [5]string{"x = ", "", "foo", ".bar", ".baz(1)"}, "----^^^~~~~-------"},
		{"statement itself", 0, 18, [5]string{"", "", "x = foo.bar.baz(1)", "", ""}, "^^^^^^^^^^^^^^^^^^"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tr.FindBestMatch(tt.start, tt.end)

			r, err := StatementText(n, assignSource, cls)
			require.NoError(t, err)

			assert.Equal(t, tt.zones, [5]string{r.TopBefore, r.ChainBefore, r.Current, r.ChainAfter, r.TopAfter})
			assert.Equal(t, "x = foo.bar.baz(1)", r.Text())
			assert.Equal(t, tt.wantMarkers, r.Markers(DefaultMarkers))
			assert.Equal(t, len([]rune(r.Text())), len([]rune(r.Markers(DefaultMarkers))))
			assert.Equal(t, n, r.Node)
			assert.Equal(t, "Assign", r.Statement.Label().Kind)
		})
	}
}

func TestStatementText_Malformed(t *testing.T) {
	tr := assignTree(t)
	cls := schema(t, "python-ast")
	n := tr.FindBestMatch(4, 11)

	_, err := StatementText(n, "", cls)
	assert.True(t, errors.Is(err, spantree.ErrMalformedStatement))

	_, err = StatementText(n, "x = foo", cls)
	assert.True(t, errors.Is(err, spantree.ErrMalformedStatement))

	_, err = StatementText(tr.Root(), assignSource, cls)
	assert.True(t, errors.Is(err, spantree.ErrMalformedStatement))
}

func TestMarkers_KeepLineBreaks(t *testing.T) {
	r := Rendering{TopBefore: "f(\n\t", Current: "a.b", TopAfter: "\n)"}
	assert.Equal(t, "--\n\t^^^\n-", r.Markers(DefaultMarkers))
	assert.Equal(t, "..\n\t***\n.", r.Markers(MarkerSet{Top: '.', Chain: '~', Current: '*'}))
}

func TestIsAssignmentTarget(t *testing.T) {
	tr := assignTree(t)
	cls := schema(t, "python-ast")

	assert.True(t, IsAssignmentTarget(tr.FindBestMatch(0, 1), cls))
	assert.False(t, IsAssignmentTarget(tr.FindBestMatch(4, 11), cls))
	assert.False(t, IsAssignmentTarget(tr.FindBestMatch(4, 18), cls))
	assert.False(t, IsAssignmentTarget(tr.FindBestMatch(0, 18), cls))
	assert.False(t, IsAssignmentTarget(tr.Root(), cls))

	// a.b.c as an expression statement is never a target
	expr := build(t,
		field(0, 6, "Expr", ""),
		field(0, 5, "Attribute", "value"),
		field(0, 3, "Attribute", "value"),
	)
	assert.False(t, IsAssignmentTarget(expr.FindBestMatch(0, 3), cls))
}

// tree-sitter nests expressions in statements with the same span, which
// produces same-span groups
func TestChain_SameSpanGroups(t *testing.T) {
	cls := schema(t, "tree-sitter-python")

	// a.b.c
	tr := build(t,
		field(0, 6, "module", ""),
		field(0, 5, "expression_statement", ""),
		field(0, 5, "attribute", ""),
		field(0, 3, "attribute", "object"),
		field(0, 1, "identifier", "object"),
		field(2, 3, "identifier", "attribute"),
		field(4, 5, "identifier", "attribute"),
	)

	ab := tr.FindBestMatch(0, 3)
	top := TopStatement(ab, cls)
	require.NotNil(t, top)
	assert.Equal(t, "expression_statement", top.Label().Kind)

	next := NextAttribute(ab, cls)
	require.NotNil(t, next)
	assert.Equal(t, "attribute", next.Label().Kind)
	assert.True(t, top.IsGroupMember())
	assert.Equal(t, next, top.Head())

	r, err := StatementText(ab, "a.b.c\n", cls)
	require.NoError(t, err)
	assert.Equal(t, "a.b", r.Current)
	assert.Equal(t, ".c", r.ChainAfter)

	// x.y = 1
	assign := build(t,
		field(0, 8, "module", ""),
		field(0, 7, "expression_statement", ""),
		field(0, 7, "assignment", ""),
		field(0, 3, "attribute", "left"),
		field(0, 1, "identifier", "object"),
		field(2, 3, "identifier", "attribute"),
		field(6, 7, "integer", "right"),
	)
	assert.True(t, IsAssignmentTarget(assign.FindBestMatch(0, 3), cls))
	assert.True(t, IsAssignmentTarget(assign.FindBestMatch(0, 1), cls))
	assert.False(t, IsAssignmentTarget(assign.FindBestMatch(6, 7), cls))
}

func TestNavigator(t *testing.T) {
	tr := assignTree(t)
	nv := NewNavigator(schema(t, "python-ast"), assignSource)

	r, err := nv.Explain(tr, 8, 11)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "foo.bar", r.Current)

	r, err = nv.Explain(tr, 50, 60)
	require.NoError(t, err)
	assert.Nil(t, r)

	n := tr.FindBestMatch(4, 11)
	assert.Equal(t, "Assign", nv.TopStatement(n).Label().Kind)
	assert.Equal(t, 4, nv.NextAttribute(n).Start())
	assert.Nil(t, nv.PreviousAttribute(n))
	assert.False(t, nv.IsAssignmentTarget(n))
}
