package tree

import (
	"iter"

	"github.com/shibukawa/spantree/label"
)

// NodeID addresses a node inside its tree's arena
type NodeID int

// NoNode is the id of an absent node
const NoNode NodeID = -1

// Node is a tree element. Nodes are owned by their Tree; parent and child
// links are arena indexes, so a Node is only meaningful together with the tree
// that created it.
//
// Nodes sharing an identical span form a group: the first one inserted (the
// head) holds the structural position, the others are members that resolve
// parent and children through the head.
type Node struct {
	tree     *Tree
	id       NodeID
	pos      Position
	label    label.Payload
	parent   NodeID
	children []NodeID
	head     NodeID
	members  []NodeID
}

// ID returns the arena index of the node
func (n *Node) ID() NodeID { return n.id }

// Tree returns the owning tree
func (n *Node) Tree() *Tree { return n.tree }

// Position returns the node span
func (n *Node) Position() Position { return n.pos }

// Start returns the inclusive start offset
func (n *Node) Start() int { return n.pos.Start }

// End returns the exclusive end offset
func (n *Node) End() int { return n.pos.End }

// Size returns End - Start
func (n *Node) Size() int { return n.pos.Size() }

// Label returns the label payload
func (n *Node) Label() label.Payload { return n.label }

// SetSelected toggles the highlighting marker. It does not affect structure.
func (n *Node) SetSelected(selected bool) {
	n.pos.Selected = selected
}

// Head returns the structural node of the group n belongs to (n itself when
// it is not a group member).
func (n *Node) Head() *Node {
	return n.tree.nodes[n.head]
}

// IsGroupMember reports whether n shares its span with an earlier node
func (n *Node) IsGroupMember() bool {
	return n.head != n.id
}

// Mates returns the other nodes sharing n's span, in insertion order
func (n *Node) Mates() []*Node {
	head := n.Head()
	if len(head.members) == 0 {
		return nil
	}

	mates := make([]*Node, 0, len(head.members))
	if head != n {
		mates = append(mates, head)
	}

	for _, id := range head.members {
		if id != n.id {
			mates = append(mates, n.tree.nodes[id])
		}
	}

	return mates
}

// Group returns the head followed by all members
func (n *Node) Group() []*Node {
	head := n.Head()
	group := make([]*Node, 0, len(head.members)+1)
	group = append(group, head)

	for _, id := range head.members {
		group = append(group, n.tree.nodes[id])
	}

	return group
}

// Parent returns the parent node, or nil for the root
func (n *Node) Parent() *Node {
	head := n.Head()
	if head.parent == NoNode {
		return nil
	}

	return n.tree.nodes[head.parent]
}

// IsRoot reports whether n (or its group) is the tree root
func (n *Node) IsRoot() bool {
	return n.head == n.tree.root
}

// Children returns the children in source order
func (n *Node) Children() []*Node {
	head := n.Head()
	children := make([]*Node, len(head.children))

	for i, id := range head.children {
		children[i] = n.tree.nodes[id]
	}

	return children
}

// ChildCount returns the number of structural children
func (n *Node) ChildCount() int {
	return len(n.Head().children)
}

// Siblings returns the parent's children without n
func (n *Node) Siblings() []*Node {
	parent := n.Parent()
	if parent == nil {
		return nil
	}

	siblings := make([]*Node, 0, len(parent.Head().children))
	for _, id := range parent.Head().children {
		if id != n.head {
			siblings = append(siblings, n.tree.nodes[id])
		}
	}

	return siblings
}

// Next returns the following sibling in source order
func (n *Node) Next() *Node {
	return n.sibling(1)
}

// Previous returns the preceding sibling in source order
func (n *Node) Previous() *Node {
	return n.sibling(-1)
}

func (n *Node) sibling(step int) *Node {
	parent := n.Parent()
	if parent == nil {
		return nil
	}

	children := parent.Head().children
	for i, id := range children {
		if id == n.head {
			j := i + step
			if j < 0 || j >= len(children) {
				return nil
			}

			return n.tree.nodes[children[j]]
		}
	}

	return nil
}

// Depth returns the number of ancestors
func (n *Node) Depth() int {
	depth := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		depth++
	}

	return depth
}

// Ancestors yields the parent chain from the closest ancestor to the root
func (n *Node) Ancestors() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for p := n.Parent(); p != nil; p = p.Parent() {
			if !yield(p) {
				return
			}
		}
	}
}

// IsDescendantOf reports whether n lies strictly below ancestor
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	target := ancestor.Head()
	for p := range n.Ancestors() {
		if p == target {
			return true
		}
	}

	return false
}

// Flatten yields the subtree rooted at n in pre-order, one entry per group
func (n *Node) Flatten() iter.Seq[*Node] {
	return n.tree.walk(n.Head(), false)
}

func (n *Node) String() string {
	return n.label.String() + " " + n.pos.String()
}
