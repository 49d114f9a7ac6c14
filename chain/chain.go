// Package chain derives statement and attribute-chain relationships from an
// already built span tree. Nothing here mutates the tree.
package chain

import (
	"github.com/shibukawa/spantree/label"
	"github.com/shibukawa/spantree/tree"
)

// pick returns the first node of n's same-span group whose label matches
func pick(n *tree.Node, match func(label.Payload) bool) *tree.Node {
	if n == nil {
		return nil
	}

	if match(n.Label()) {
		return n
	}

	for _, m := range n.Mates() {
		if match(m.Label()) {
			return m
		}
	}

	return nil
}

func sameGroup(a, b *tree.Node) bool {
	return a.Head() == b.Head()
}

// within reports whether n is top or lies below it
func within(n, top *tree.Node) bool {
	return sameGroup(n, top) || n.IsDescendantOf(top)
}

// TopStatement returns the closest node at or above n classified as a
// statement. When several nodes share the statement's span, the statement
// member of the group is returned. It returns nil when no statement encloses n.
func TopStatement(n *tree.Node, cls label.Classifier) *tree.Node {
	for cur := n; cur != nil; cur = cur.Parent() {
		if stmt := pick(cur, cls.IsStatement); stmt != nil {
			return stmt
		}
	}

	return nil
}

// NextAttribute returns the next link outward in n's attribute chain: the
// parent of n when it is a chain link inside n's statement.
func NextAttribute(n *tree.Node, cls label.Classifier) *tree.Node {
	top := TopStatement(n, cls)
	if top == nil || sameGroup(n, top) {
		return nil
	}

	parent := n.Parent()
	if parent == nil || !within(parent, top) {
		return nil
	}

	return pick(parent, cls.IsChainLink)
}

// PreviousAttribute returns the next link inward in n's attribute chain: the
// first child of n that is a chain link.
func PreviousAttribute(n *tree.Node, cls label.Classifier) *tree.Node {
	if TopStatement(n, cls) == nil {
		return nil
	}

	for _, c := range n.Children() {
		if link := pick(c, cls.IsChainLink); link != nil {
			return link
		}
	}

	return nil
}

// IsAssignmentTarget reports whether n sits on the left-hand side of an
// assignment-like statement: inside the statement and entirely before the
// child that holds the assigned value.
func IsAssignmentTarget(n *tree.Node, cls label.Classifier) bool {
	top := TopStatement(n, cls)
	if top == nil || sameGroup(n, top) || !n.IsDescendantOf(top) {
		return false
	}

	stmt := pick(top, cls.IsAssignmentLike)
	if stmt == nil {
		return false
	}

	field := cls.ValueField(stmt.Label())
	if field == "" {
		return false
	}

	var value *tree.Node

	for _, c := range top.Children() {
		if pick(c, func(p label.Payload) bool { return p.Field == field }) != nil {
			value = c
			break
		}
	}

	if value == nil || sameGroup(n, value) || n.IsDescendantOf(value) {
		return false
	}

	return n.End() <= value.Start()
}
