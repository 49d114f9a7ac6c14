package chain

import (
	"fmt"
	"strings"

	"github.com/shibukawa/spantree"
	"github.com/shibukawa/spantree/label"
	"github.com/shibukawa/spantree/tree"
)

// MarkerSet holds the underline characters of the three zones
type MarkerSet struct {
	Top     rune
	Chain   rune
	Current rune
}

// DefaultMarkers underlines the statement with '-', the surrounding chain
// with '~' and the current node with '^'.
var DefaultMarkers = MarkerSet{Top: '-', Chain: '~', Current: '^'}

// Rendering is a statement split into five consecutive zones around a node
type Rendering struct {
	TopBefore   string
	ChainBefore string
	Current     string
	ChainAfter  string
	TopAfter    string

	// Statement is the top statement, Node the node the rendering is about
	Statement *tree.Node
	Node      *tree.Node
}

// Text returns the statement source
func (r Rendering) Text() string {
	return r.TopBefore + r.ChainBefore + r.Current + r.ChainAfter + r.TopAfter
}

// Markers returns a string parallel to Text, rune for rune, with each zone
// replaced by its marker. Line breaks and tabs are kept so that both strings
// stay aligned line by line.
func (r Rendering) Markers(set MarkerSet) string {
	var b strings.Builder

	zones := []struct {
		text   string
		marker rune
	}{
		{r.TopBefore, set.Top},
		{r.ChainBefore, set.Chain},
		{r.Current, set.Current},
		{r.ChainAfter, set.Chain},
		{r.TopAfter, set.Top},
	}

	for _, zone := range zones {
		for _, c := range zone.text {
			switch c {
			case '\n', '\r', '\t':
				b.WriteRune(c)
			default:
				b.WriteRune(zone.marker)
			}
		}
	}

	return b.String()
}

// StatementText slices the source of n's top statement into zones: the
// statement before and after the chain, the chain before and after the
// current part, and the current part itself. The current part starts after
// n's previous chain link; the chain extends to n's next chain link.
func StatementText(n *tree.Node, src string, cls label.Classifier) (Rendering, error) {
	if src == "" {
		return Rendering{}, fmt.Errorf("%w: source text is missing", spantree.ErrMalformedStatement)
	}

	top := TopStatement(n, cls)
	if top == nil {
		return Rendering{}, fmt.Errorf("%w: no statement encloses %s", spantree.ErrMalformedStatement, n)
	}

	outerStart, outerEnd := n.Start(), n.End()
	if next := NextAttribute(n, cls); next != nil {
		outerStart, outerEnd = next.Start(), next.End()
	}

	coreStart := n.Start()
	if prev := PreviousAttribute(n, cls); prev != nil {
		coreStart = prev.End()
	}

	bounds := []int{top.Start(), outerStart, coreStart, n.End(), outerEnd, top.End()}
	for i, b := range bounds {
		if b < 0 || b > len(src) || (i > 0 && b < bounds[i-1]) {
			return Rendering{}, fmt.Errorf("%w: offsets %v do not fit source of length %d", spantree.ErrMalformedStatement, bounds, len(src))
		}
	}

	return Rendering{
		TopBefore:   src[bounds[0]:bounds[1]],
		ChainBefore: src[bounds[1]:bounds[2]],
		Current:     src[bounds[2]:bounds[3]],
		ChainAfter:  src[bounds[3]:bounds[4]],
		TopAfter:    src[bounds[4]:bounds[5]],
		Statement:   top,
		Node:        n,
	}, nil
}
