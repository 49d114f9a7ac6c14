package tree

import (
	"sort"
)

// LineIndex maps between byte offsets and line/column coordinates of one
// source text. It is built once per text from the cumulative line lengths.
type LineIndex struct {
	src    string
	starts []int
}

// NewLineIndex builds the index for src
func NewLineIndex(src string) *LineIndex {
	starts := make([]int, 1, 64)

	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}

	return &LineIndex{src: src, starts: starts}
}

// Lines returns the number of lines
func (idx *LineIndex) Lines() int {
	return len(idx.starts)
}

// lineBounds returns the offsets of the first byte of line and of its line
// break (or the end of text)
func (idx *LineIndex) lineBounds(line int) (int, int, bool) {
	if line < 1 || line > len(idx.starts) {
		return 0, 0, false
	}

	start := idx.starts[line-1]

	end := len(idx.src)
	if line < len(idx.starts) {
		end = idx.starts[line] - 1
	}

	if end > start && idx.src[end-1] == '\r' {
		end--
	}

	return start, end, true
}

// Offset converts a 1-based line and 0-based byte column to an offset
func (idx *LineIndex) Offset(line, col int) (int, bool) {
	start, end, ok := idx.lineBounds(line)
	if !ok || col < 0 || start+col > end {
		return 0, false
	}

	return start + col, true
}

// LineSpan returns the span of line without its indentation and line break
func (idx *LineIndex) LineSpan(line int) (int, int, bool) {
	start, end, ok := idx.lineBounds(line)
	if !ok {
		return 0, 0, false
	}

	for start < end && (idx.src[start] == ' ' || idx.src[start] == '\t') {
		start++
	}

	return start, end, true
}

// Location converts an offset to a 1-based line and 0-based column
func (idx *LineIndex) Location(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}

	if offset > len(idx.src) {
		offset = len(idx.src)
	}

	i := sort.Search(len(idx.starts), func(i int) bool { return idx.starts[i] > offset }) - 1

	return i + 1, offset - idx.starts[i]
}

// FindByLine returns the smallest node covering the given line of source,
// the way an executing frame's current line is resolved.
func (t *Tree) FindByLine(idx *LineIndex, line int) *Node {
	start, end, ok := idx.LineSpan(line)
	if !ok {
		return nil
	}

	return t.FindBestMatch(start, end)
}

// FindByLineColumn returns the most specific node at a cursor position. A
// cursor on the offset where one span ends and the next begins resolves to
// the earlier span, since FindBestMatch keeps the first of equally good
// candidates. An empty span at that offset wins over both.
func (t *Tree) FindByLineColumn(idx *LineIndex, line, col int) *Node {
	offset, ok := idx.Offset(line, col)
	if !ok {
		return nil
	}

	return t.FindBestMatch(offset, offset)
}

// AnnotateLines fills the shadow coordinates of every node from its offsets
func (t *Tree) AnnotateLines(idx *LineIndex) {
	for _, n := range t.nodes {
		lineStart, colStart := idx.Location(n.pos.Start)
		lineEnd, colEnd := idx.Location(n.pos.End)
		n.pos = n.pos.WithLines(lineStart, colStart, lineEnd, colEnd)
	}
}
