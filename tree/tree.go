// Package tree indexes syntax nodes by their textual span.
//
// A Tree keeps its nodes ordered strictly by interval containment: every node
// lies inside its parent and siblings never partially overlap. Spans can be
// inserted in any order; nodes are reparented as larger spans arrive. Nodes
// that share an identical span are grouped instead of nested.
//
// An empty span at offset p nests in the node covering byte p. On a boundary
// between two siblings that is the one starting at p; at the end of a node it
// is the node's parent, or the root itself.
//
// A Tree is not safe for concurrent mutation. Build it, call Freeze, and then
// share it with readers.
package tree

import (
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/shibukawa/spantree"
	"go.uber.org/zap"
)

// Tree owns the node arena and the root
type Tree struct {
	id      uuid.UUID
	caption string
	nodes   []*Node
	root    NodeID
	logger  *zap.Logger
	walkers int
	frozen  bool
}

// Option configures a Tree
type Option func(*Tree)

// WithCaption sets the caption describing the whole tree (a title or the source text)
func WithCaption(caption string) Option {
	return func(t *Tree) {
		t.caption = caption
	}
}

// WithID sets the snapshot id instead of a random one
func WithID(id uuid.UUID) Option {
	return func(t *Tree) {
		t.id = id
	}
}

// WithLogger sets the logger used to trace structural changes
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New creates an empty tree
func New(options ...Option) *Tree {
	t := &Tree{
		id:     uuid.New(),
		root:   NoNode,
		logger: zap.NewNop(),
	}

	for _, option := range options {
		option(t)
	}

	return t
}

// ID returns the snapshot id of the tree
func (t *Tree) ID() uuid.UUID { return t.id }

// Caption returns the tree caption
func (t *Tree) Caption() string { return t.caption }

// Root returns the root node, or nil when the tree is empty
func (t *Tree) Root() *Node {
	if t.root == NoNode {
		return nil
	}

	return t.nodes[t.root]
}

// Empty reports whether the tree has no root
func (t *Tree) Empty() bool {
	return t.root == NoNode
}

// Len returns the number of nodes including group members
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node with the given id, or nil
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}

	return t.nodes[id]
}

// Freeze publishes the tree as read-only. Later insertions fail.
func (t *Tree) Freeze() {
	t.frozen = true
}

// Frozen reports whether Freeze was called
func (t *Tree) Frozen() bool {
	return t.frozen
}

// Flatten yields every structural node in pre-order. A same-span group is
// yielded once, through its head. The tree must not be mutated while the
// sequence is being consumed; Insert fails with ErrTreeBusy in that case.
func (t *Tree) Flatten() iter.Seq[*Node] {
	if t.root == NoNode {
		return func(func(*Node) bool) {}
	}

	return t.walk(t.nodes[t.root], false)
}

// FlattenAll is Flatten with group members yielded right after their head
func (t *Tree) FlattenAll() iter.Seq[*Node] {
	if t.root == NoNode {
		return func(func(*Node) bool) {}
	}

	return t.walk(t.nodes[t.root], true)
}

func (t *Tree) walk(start *Node, members bool) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		t.walkers++
		defer func() { t.walkers-- }()

		var visit func(n *Node) bool

		visit = func(n *Node) bool {
			if !yield(n) {
				return false
			}

			if members {
				for _, id := range n.members {
					if !yield(t.nodes[id]) {
						return false
					}
				}
			}

			for _, id := range n.children {
				if !visit(t.nodes[id]) {
					return false
				}
			}

			return true
		}

		visit(start)
	}
}

func (t *Tree) checkWritable() error {
	if t.frozen {
		return spantree.ErrTreeFrozen
	}

	if t.walkers > 0 {
		return spantree.ErrTreeBusy
	}

	return nil
}

// Validate checks every structural invariant of the tree
func (t *Tree) Validate() error {
	if t.root == NoNode {
		if len(t.nodes) != 0 {
			return fmt.Errorf("%w: %d nodes without a root", spantree.ErrInvalidStructure, len(t.nodes))
		}

		return nil
	}

	seen := 0

	var check func(n *Node, parent NodeID) error

	check = func(n *Node, parent NodeID) error {
		seen++

		if err := n.pos.validate(); err != nil {
			return err
		}

		if n.parent != parent || n.head != n.id {
			return fmt.Errorf("%w: broken links at %s", spantree.ErrInvalidStructure, n)
		}

		for _, id := range n.members {
			seen++

			m := t.nodes[id]
			if m.head != n.id || !m.pos.SameSpan(n.pos) {
				return fmt.Errorf("%w: group member %s does not match %s", spantree.ErrInvalidStructure, m, n)
			}
		}

		var prev *Node

		for _, id := range n.children {
			c := t.nodes[id]
			if !t.encloses(n, c.pos) {
				return fmt.Errorf("%w: %s is not strictly inside %s", spantree.ErrInvalidStructure, c, n)
			}

			if prev != nil && !ordered(prev.pos, c.pos) {
				return fmt.Errorf("%w: siblings %s and %s are not disjoint and ordered", spantree.ErrInvalidStructure, prev, c)
			}

			if err := check(c, n.id); err != nil {
				return err
			}

			prev = c
		}

		return nil
	}

	if err := check(t.nodes[t.root], NoNode); err != nil {
		return err
	}

	if seen != len(t.nodes) {
		return fmt.Errorf("%w: %d of %d nodes are unreachable", spantree.ErrInvalidStructure, len(t.nodes)-seen, len(t.nodes))
	}

	return nil
}

// ordered reports whether a precedes b without overlap or nesting
func ordered(a, b Position) bool {
	return a.End <= b.Start && !a.Owns(b) && !b.Owns(a)
}
