// Package render prints span trees and statement diagnostics for terminals.
// Colors come from fatih/color and are disabled automatically when the
// output is not a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/shibukawa/spantree/chain"
	"github.com/shibukawa/spantree/tree"
)

var (
	kindColor     = color.New(color.FgCyan)
	fieldColor    = color.New(color.FgYellow)
	positionColor = color.New(color.FgHiBlack)
	selectedColor = color.New(color.Bold, color.FgGreen)

	topColor     = color.New(color.FgHiBlack)
	chainColor   = color.New(color.FgYellow)
	currentColor = color.New(color.Bold, color.FgRed)
)

// TreePrinter writes one line per node:
//
//	kind[field] [start,end) line:col = mate[field]
//
// indented by two spaces per depth level.
type TreePrinter struct {
	w io.Writer

	// Mates appends the other nodes of a same-span group to the line
	Mates bool
}

// NewTreePrinter creates a printer writing to w with group mates shown
func NewTreePrinter(w io.Writer) *TreePrinter {
	return &TreePrinter{w: w, Mates: true}
}

// Print writes the whole tree in pre-order
func (p *TreePrinter) Print(t *tree.Tree) error {
	for n := range t.Flatten() {
		if err := p.line(n, n.Depth()); err != nil {
			return err
		}
	}

	return nil
}

// PrintNodes writes the given nodes without indentation
func (p *TreePrinter) PrintNodes(nodes []*tree.Node) error {
	for _, n := range nodes {
		if err := p.line(n, 0); err != nil {
			return err
		}
	}

	return nil
}

func (p *TreePrinter) line(n *tree.Node, depth int) error {
	var b strings.Builder

	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(payload(n))
	b.WriteByte(' ')
	b.WriteString(positionColor.Sprint(location(n.Position())))

	if p.Mates {
		for _, m := range n.Mates() {
			b.WriteString(" = ")
			b.WriteString(payload(m))
		}
	}

	if n.Position().Selected {
		b.WriteString(selectedColor.Sprint(" *"))
	}

	_, err := fmt.Fprintln(p.w, b.String())

	return err
}

func payload(n *tree.Node) string {
	l := n.Label()

	kind := kindColor.Sprint(l.Kind)
	if n.Position().Selected {
		kind = selectedColor.Sprint(l.Kind)
	}

	if l.Field == "" {
		return kind
	}

	return kind + "[" + fieldColor.Sprint(l.Field) + "]"
}

func location(pos tree.Position) string {
	if !pos.HasLines {
		return fmt.Sprintf("[%d,%d)", pos.Start, pos.End)
	}

	return fmt.Sprintf("[%d,%d) %d:%d", pos.Start, pos.End, pos.LineStart, pos.ColStart)
}

// Statement writes the statement text of r with a marker line under every
// source line.
func Statement(w io.Writer, r chain.Rendering, set chain.MarkerSet) error {
	text := strings.Split(r.Text(), "\n")
	markers := strings.Split(r.Markers(set), "\n")

	for i, line := range text {
		if i == len(text)-1 && line == "" {
			break
		}

		if _, err := fmt.Fprintln(w, strings.TrimSuffix(line, "\r")); err != nil {
			return err
		}

		if _, err := fmt.Fprintln(w, colorMarkers(strings.TrimSuffix(markers[i], "\r"), set)); err != nil {
			return err
		}
	}

	return nil
}

// colorMarkers colors runs of equal marker runes
func colorMarkers(line string, set chain.MarkerSet) string {
	var (
		b   strings.Builder
		run []rune
	)

	flush := func() {
		if len(run) == 0 {
			return
		}

		b.WriteString(markerColor(run[0], set).Sprint(string(run)))
		run = run[:0]
	}

	for _, c := range line {
		if len(run) > 0 && run[0] != c {
			flush()
		}

		run = append(run, c)
	}

	flush()

	return b.String()
}

func markerColor(c rune, set chain.MarkerSet) *color.Color {
	switch c {
	case set.Current:
		return currentColor
	case set.Chain:
		return chainColor
	case set.Top:
		return topColor
	default:
		return color.New(color.Reset)
	}
}
