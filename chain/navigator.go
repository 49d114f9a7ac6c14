package chain

import (
	"github.com/shibukawa/spantree/label"
	"github.com/shibukawa/spantree/tree"
)

// Navigator binds a classifier and the source text of one tree
type Navigator struct {
	cls label.Classifier
	src string
}

// NewNavigator creates a navigator
func NewNavigator(cls label.Classifier, src string) *Navigator {
	return &Navigator{cls: cls, src: src}
}

// TopStatement is TopStatement with the navigator's classifier
func (nv *Navigator) TopStatement(n *tree.Node) *tree.Node { return TopStatement(n, nv.cls) }

// NextAttribute is NextAttribute with the navigator's classifier
func (nv *Navigator) NextAttribute(n *tree.Node) *tree.Node { return NextAttribute(n, nv.cls) }

// PreviousAttribute is PreviousAttribute with the navigator's classifier
func (nv *Navigator) PreviousAttribute(n *tree.Node) *tree.Node { return PreviousAttribute(n, nv.cls) }

// IsAssignmentTarget is IsAssignmentTarget with the navigator's classifier
func (nv *Navigator) IsAssignmentTarget(n *tree.Node) bool { return IsAssignmentTarget(n, nv.cls) }

// StatementText renders n's statement from the navigator's source text
func (nv *Navigator) StatementText(n *tree.Node) (Rendering, error) {
	return StatementText(n, nv.src, nv.cls)
}

// Explain resolves [start, end) to its best matching node and renders the
// enclosing statement. It returns a nil rendering when nothing matches.
func (nv *Navigator) Explain(t *tree.Tree, start, end int) (*Rendering, error) {
	n := t.FindBestMatch(start, end)
	if n == nil {
		return nil, nil
	}

	r, err := nv.StatementText(n)
	if err != nil {
		return nil, err
	}

	return &r, nil
}
