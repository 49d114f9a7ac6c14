package render

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/fatih/color"
	"github.com/shibukawa/spantree/chain"
	"github.com/shibukawa/spantree/label"
	"github.com/shibukawa/spantree/tree"
)

func init() {
	color.NoColor = true
}

func sample(t *testing.T) *tree.Tree {
	t.Helper()

	src := "a.b = 1\n"
	tr := tree.New()
	_, err := tr.InsertMany([]tree.Span{
		tree.NewSpan(0, 8, label.New("module")),
		tree.NewSpan(0, 7, label.New("expression_statement")),
		tree.NewSpan(0, 7, label.New("assignment")),
		tree.NewSpan(0, 3, label.New("attribute").WithField("left")),
		tree.NewSpan(6, 7, label.New("integer").WithField("right")),
	})
	assert.NoError(t, err)

	tr.AnnotateLines(tree.NewLineIndex(src))
	tr.FindBestMatch(0, 3).SetSelected(true)

	return tr
}

func TestTreePrinter(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, NewTreePrinter(&buf).Print(sample(t)))

	assert.Equal(t, "module [0,8) 1:0\n"+
		"  assignment [0,7) 1:0 = expression_statement\n"+
		"    attribute[left] [0,3) 1:0 *\n"+
		"    integer[right] [6,7) 1:6\n", buf.String())
}

func TestTreePrinter_Nodes(t *testing.T) {
	tr := sample(t)

	var buf bytes.Buffer
	p := NewTreePrinter(&buf)
	p.Mates = false
	assert.NoError(t, p.PrintNodes([]*tree.Node{tr.FindBestMatch(0, 7), tr.FindBestMatch(6, 7)}))

	assert.Equal(t, "assignment [0,7) 1:0\ninteger[right] [6,7) 1:6\n", buf.String())
}

func TestStatement(t *testing.T) {
	r := chain.Rendering{TopBefore: "x = f(", ChainBefore: "a.", Current: "b", ChainAfter: ".c", TopAfter: ",\n  2)"}

	var buf bytes.Buffer
	assert.NoError(t, Statement(&buf, r, chain.DefaultMarkers))

	assert.Equal(t, "x = f(a.b.c,\n------~~^~~-\n  2)\n----\n", buf.String())
}
