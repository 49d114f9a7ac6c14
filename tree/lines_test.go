package tree

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

const linesSource = "x = 1\n    y = foo.bar\r\nz\n"

func TestLineIndex(t *testing.T) {
	idx := NewLineIndex(linesSource)
	assert.Equal(t, 4, idx.Lines())

	offset, ok := idx.Offset(2, 8)
	assert.True(t, ok)
	assert.Equal(t, 14, offset)

	_, ok = idx.Offset(1, 6)
	assert.False(t, ok)
	_, ok = idx.Offset(9, 0)
	assert.False(t, ok)

	start, end, ok := idx.LineSpan(2)
	assert.True(t, ok)
	assert.Equal(t, "y = foo.bar", linesSource[start:end])

	start, end, ok = idx.LineSpan(4)
	assert.True(t, ok)
	assert.Equal(t, start, end)

	tests := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 0},
		{5, 1, 5},
		{6, 2, 0},
		{14, 2, 8},
		{23, 3, 0},
		{len(linesSource), 4, 0},
		{1000, 4, 0},
	}

	for _, tt := range tests {
		line, col := idx.Location(tt.offset)
		assert.Equal(t, tt.line, line, "offset %d", tt.offset)
		assert.Equal(t, tt.col, col, "offset %d", tt.offset)
	}
}

func TestFindByLine(t *testing.T) {
	tr := New()
	_, err := tr.InsertMany([]Span{
		span(0, 25, "Module"),
		span(0, 5, "Assign"),
		span(10, 21, "Assign"),
		span(14, 21, "Attribute"),
		span(14, 17, "Name"),
		span(23, 24, "Expr"),
	})
	assert.NoError(t, err)

	idx := NewLineIndex(linesSource)

	n := tr.FindByLine(idx, 2)
	assert.Equal(t, "Assign", n.Label().Kind)
	assert.Equal(t, 10, n.Start())

	n = tr.FindByLineColumn(idx, 2, 9)
	assert.Equal(t, "Name", n.Label().Kind)

	assert.Zero(t, tr.FindByLine(idx, 10))
	assert.Zero(t, tr.FindByLineColumn(idx, 1, 40))
}

func TestAnnotateLines(t *testing.T) {
	tr := New()
	_, err := tr.InsertMany([]Span{span(0, 25, "Module"), span(14, 21, "Attribute")})
	assert.NoError(t, err)

	tr.AnnotateLines(NewLineIndex(linesSource))

	attr := tr.FindBestMatch(14, 21)
	pos := attr.Position()
	assert.True(t, pos.HasLines)
	assert.Equal(t, 2, pos.LineStart)
	assert.Equal(t, 8, pos.ColStart)
	assert.Equal(t, 2, pos.LineEnd)
	assert.Equal(t, 15, pos.ColEnd)
	assert.Equal(t, "[14,21) 2:8-2:15", pos.String())
}
