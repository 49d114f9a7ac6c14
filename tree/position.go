package tree

import (
	"fmt"

	"github.com/shibukawa/spantree"
)

// Position is a half-open interval [Start, End) over source offsets.
// Line and column fields are shadow coordinates for display only; lines are
// 1-based and columns are 0-based byte offsets within the line. They never take
// part in containment.
type Position struct {
	Start int
	End   int

	LineStart int
	ColStart  int
	LineEnd   int
	ColEnd    int
	HasLines  bool

	// Selected marks the span for external highlighting
	Selected bool
}

// NewPosition creates a position, rejecting negative or inverted intervals
func NewPosition(start, end int) (Position, error) {
	p := Position{Start: start, End: end}
	if err := p.validate(); err != nil {
		return Position{}, err
	}

	return p, nil
}

func (p Position) validate() error {
	if p.Start < 0 || p.End < p.Start {
		return fmt.Errorf("%w: [%d,%d)", spantree.ErrInvalidPosition, p.Start, p.End)
	}

	return nil
}

// WithLines returns a copy of p with shadow coordinates set
func (p Position) WithLines(lineStart, colStart, lineEnd, colEnd int) Position {
	p.LineStart = lineStart
	p.ColStart = colStart
	p.LineEnd = lineEnd
	p.ColEnd = colEnd
	p.HasLines = true

	return p
}

// Size returns End - Start
func (p Position) Size() int {
	return p.End - p.Start
}

// Contains reports whether o lies inside p (bounds inclusive)
func (p Position) Contains(o Position) bool {
	return p.Start <= o.Start && o.End <= p.End
}

// Owns reports whether o nests below p in a tree. It is Contains, except that
// an empty o sitting on p's end offset belongs to whatever starts there, not
// to p.
func (p Position) Owns(o Position) bool {
	if o.Size() == 0 && p.Size() > 0 {
		return p.Start <= o.Start && o.Start < p.End
	}

	return p.Contains(o)
}

// SameSpan reports whether p and o cover exactly the same interval
func (p Position) SameSpan(o Position) bool {
	return p.Start == o.Start && p.End == o.End
}

// Intersects reports whether p and o share at least one offset, or one of
// them is an empty interval lying inside the other.
func (p Position) Intersects(o Position) bool {
	return (p.Start < o.End && o.Start < p.End) || p.Contains(o) || o.Contains(p)
}

// Overlaps reports a partial overlap: the intervals intersect but neither
// contains the other.
func (p Position) Overlaps(o Position) bool {
	return p.Start < o.End && o.Start < p.End && !p.Contains(o) && !o.Contains(p)
}

func (p Position) String() string {
	if p.HasLines {
		return fmt.Sprintf("[%d,%d) %d:%d-%d:%d", p.Start, p.End, p.LineStart, p.ColStart, p.LineEnd, p.ColEnd)
	}

	return fmt.Sprintf("[%d,%d)", p.Start, p.End)
}
