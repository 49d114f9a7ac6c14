package tree

// FindBestMatch returns the node that most tightly encloses [start, end), or
// nil when the tree is empty or the target lies entirely outside the root.
func (t *Tree) FindBestMatch(start, end int) *Node {
	root := t.Root()
	if root == nil {
		return nil
	}

	return root.BestMatch(start, end)
}

// BestMatch searches the subtree rooted at n. Candidates are scored by the
// Manhattan distance between endpoints; the search only descends into
// children containing the target and keeps the shallower node on ties, so n
// itself is the fallback for any target intersecting it.
func (n *Node) BestMatch(start, end int) *Node {
	target := Position{Start: start, End: end}
	if target.validate() != nil {
		return nil
	}

	head := n.Head()
	if !head.pos.Intersects(target) {
		return nil
	}

	best, _ := head.bestMatch(target)

	return best
}

func (n *Node) bestMatch(target Position) (*Node, int) {
	best, bestDistance := n, distance(n.pos, target)

	for _, id := range n.children {
		c := n.tree.nodes[id]
		if !c.pos.Contains(target) {
			continue
		}

		candidate, d := c.bestMatch(target)
		if d < bestDistance {
			best, bestDistance = candidate, d
		}
	}

	return best, bestDistance
}

func distance(p, target Position) int {
	return abs(p.Start-target.Start) + abs(p.End-target.End)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
