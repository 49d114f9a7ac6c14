package tree

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/shibukawa/spantree"
	"github.com/shibukawa/spantree/label"
	"go.uber.org/zap"
)

// Span is one (start, end, label) triple produced by a position source
type Span struct {
	Position
	Label label.Payload
}

// NewSpan creates a span without shadow coordinates
func NewSpan(start, end int, payload label.Payload) Span {
	return Span{Position: Position{Start: start, End: end}, Label: payload}
}

// Insert places a span in the tree by containment and returns its node.
//
// The span is attached under the deepest node containing it. Existing children
// of that host which fit inside the span are moved below the new node. A span
// identical to an existing node's span joins that node's group instead of
// becoming its child. A span that partially overlaps a node on its path fails
// with ErrIntervalConflict and leaves the tree untouched.
func (t *Tree) Insert(span Span) (*Node, error) {
	if err := t.checkWritable(); err != nil {
		return nil, err
	}

	if err := span.Position.validate(); err != nil {
		return nil, err
	}

	if t.root == NoNode {
		n := t.newNode(span, NoNode)
		t.root = n.id

		return n, nil
	}

	root := t.nodes[t.root]

	switch {
	case root.pos.SameSpan(span.Position):
		return t.join(root, span), nil
	case span.Position.Contains(root.pos):
		n := t.newNode(span, NoNode)
		n.children = []NodeID{root.id}
		root.parent = n.id
		t.root = n.id
		t.liftTrailing(root, n)
		t.logger.Debug("span replaced root", zap.Stringer("span", span.Position), zap.Stringer("old_root", root.pos))

		return n, nil
	case !root.pos.Contains(span.Position):
		return nil, t.conflict(span, root)
	}

	host := root

descend:
	for {
		for _, id := range host.children {
			c := t.nodes[id]
			if c.pos.SameSpan(span.Position) {
				return t.join(c, span), nil
			}
		}

		for _, id := range host.children {
			c := t.nodes[id]
			if c.pos.Owns(span.Position) {
				host = c
				continue descend
			}
		}

		break
	}

	var moved, kept []NodeID

	for _, id := range host.children {
		c := t.nodes[id]

		switch {
		case span.Position.Owns(c.pos):
			moved = append(moved, id)
		case c.pos.Overlaps(span.Position):
			return nil, t.conflict(span, c)
		default:
			kept = append(kept, id)
		}
	}

	n := t.newNode(span, host.id)
	n.children = moved

	for _, id := range moved {
		t.nodes[id].parent = n.id
	}

	if len(moved) > 0 {
		t.logger.Debug("reparented children", zap.Stringer("span", span.Position), zap.Int("count", len(moved)))
	}

	at, _ := slices.BinarySearchFunc(kept, n.pos, func(id NodeID, p Position) int {
		return comparePositions(t.nodes[id].pos, p)
	})
	host.children = slices.Insert(kept, at, n.id)

	return n, nil
}

// liftTrailing moves an empty child sitting on the end of the old root up to
// the new root. Only the root keeps such a child; any other node hands it to
// its parent.
func (t *Tree) liftTrailing(old, root *Node) {
	if old.pos.Size() == 0 || len(old.children) == 0 {
		return
	}

	last := old.children[len(old.children)-1]
	if c := t.nodes[last]; c.pos.Size() == 0 && c.pos.Start == old.pos.End {
		old.children = old.children[:len(old.children)-1]
		c.parent = root.id
		root.children = append(root.children, last)
	}
}

// InsertMany inserts spans largest first, then by start offset, kind and
// field. The resulting tree does not depend on the input order, group heads
// included. Nodes are returned in input order. Insertion stops at the first
// error; spans inserted before it stay in the tree.
func (t *Tree) InsertMany(spans []Span) ([]*Node, error) {
	order := make([]int, len(spans))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Or(
			cmp.Compare(spans[b].Size(), spans[a].Size()),
			cmp.Compare(spans[a].Start, spans[b].Start),
			cmp.Compare(spans[a].Label.Kind, spans[b].Label.Kind),
			cmp.Compare(spans[a].Label.Field, spans[b].Label.Field),
		)
	})

	nodes := make([]*Node, len(spans))

	for _, i := range order {
		n, err := t.Insert(spans[i])
		if err != nil {
			return nodes, err
		}

		nodes[i] = n
	}

	return nodes, nil
}

// AppendChild attaches span as the last child of parent without searching or
// reparenting. A nil parent sets the root of an empty tree. It fails with
// ErrInvalidStructure when the span is not strictly inside parent or does not
// follow the previous child.
func (t *Tree) AppendChild(parent *Node, span Span) (*Node, error) {
	if err := t.checkWritable(); err != nil {
		return nil, err
	}

	if err := span.Position.validate(); err != nil {
		return nil, err
	}

	if parent == nil {
		if t.root != NoNode {
			return nil, fmt.Errorf("%w: tree already has a root", spantree.ErrInvalidStructure)
		}

		n := t.newNode(span, NoNode)
		t.root = n.id

		return n, nil
	}

	if parent.tree != t || parent.IsGroupMember() {
		return nil, fmt.Errorf("%w: %s is not a structural node of this tree", spantree.ErrInvalidStructure, parent)
	}

	if !t.encloses(parent, span.Position) {
		return nil, fmt.Errorf("%w: %s is not strictly inside %s", spantree.ErrInvalidStructure, span.Position, parent)
	}

	if len(parent.children) > 0 {
		last := t.nodes[parent.children[len(parent.children)-1]]
		if !ordered(last.pos, span.Position) {
			return nil, fmt.Errorf("%w: %s does not follow sibling %s", spantree.ErrInvalidStructure, span.Position, last)
		}
	}

	n := t.newNode(span, parent.id)
	parent.children = append(parent.children, n.id)

	return n, nil
}

// AddMate adds span to the group of n. The span must be identical to n's.
func (t *Tree) AddMate(n *Node, span Span) (*Node, error) {
	if err := t.checkWritable(); err != nil {
		return nil, err
	}

	if n.tree != t {
		return nil, fmt.Errorf("%w: %s belongs to another tree", spantree.ErrInvalidStructure, n)
	}

	if !n.pos.SameSpan(span.Position) {
		return nil, fmt.Errorf("%w: %s does not match group span %s", spantree.ErrInvalidStructure, span.Position, n.pos)
	}

	return t.join(n.Head(), span), nil
}

func (t *Tree) newNode(span Span, parent NodeID) *Node {
	id := NodeID(len(t.nodes))
	n := &Node{
		tree:   t,
		id:     id,
		pos:    span.Position,
		label:  span.Label,
		parent: parent,
		head:   id,
	}
	t.nodes = append(t.nodes, n)

	return n
}

func (t *Tree) join(head *Node, span Span) *Node {
	m := t.newNode(span, NoNode)
	m.head = head.id
	head.members = append(head.members, m.id)
	t.logger.Debug("grouped same span", zap.Stringer("span", span.Position), zap.String("head", head.label.Kind), zap.String("member", span.Label.Kind))

	return m
}

func (t *Tree) conflict(span Span, with *Node) error {
	t.logger.Debug("interval conflict", zap.Stringer("span", span.Position), zap.Stringer("existing", with))
	return fmt.Errorf("%w: %s %s crosses %s", spantree.ErrIntervalConflict, span.Label, span.Position, with)
}

// encloses reports whether pos may be a child of n. The root takes every
// span inside its bounds; other nodes follow Owns.
func (t *Tree) encloses(n *Node, pos Position) bool {
	if n.pos.SameSpan(pos) {
		return false
	}

	if n.id == t.root {
		return n.pos.Contains(pos)
	}

	return n.pos.Owns(pos)
}

func comparePositions(a, b Position) int {
	return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
}
