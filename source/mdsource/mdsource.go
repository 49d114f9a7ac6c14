// Package mdsource extracts Python code blocks from Markdown documents so
// that each of them can be turned into a span tree.
package mdsource

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/shibukawa/spantree/source/pysource"
)

// Block is one fenced code block
type Block struct {
	// Code is the block content, each line terminated by a line break
	Code string
	// Info is the full info string after the opening fence
	Info string
	// StartLine is the 1-based Markdown line of the first code line
	StartLine int
	// Offset is the byte offset of the first code line in the document
	Offset int
}

// Source returns a Python position source over the block code
func (b Block) Source(options ...pysource.Option) *pysource.Source {
	return pysource.New(b.Code, options...)
}

var pythonInfo = []string{"python", "py", "python3"}

// Blocks returns the fenced Python blocks of a Markdown document in document
// order. A block counts as Python when the first word of its info string is
// one of python, py or python3, compared case-insensitively.
func Blocks(markdown []byte) []Block {
	return BlocksFor(markdown, pythonInfo...)
}

// BlocksFor is Blocks for arbitrary fence languages. Without languages every
// fenced block is returned.
func BlocksFor(markdown []byte, languages ...string) []Block {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(markdown))

	var blocks []Block

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var info string
		if fenced.Info != nil {
			info = strings.TrimSpace(string(fenced.Info.Value(markdown)))
		}

		if !matches(info, languages) {
			return ast.WalkSkipChildren, nil
		}

		block := Block{Info: info}

		lines := fenced.Lines()
		if lines.Len() > 0 {
			var code strings.Builder
			for i := range lines.Len() {
				line := lines.At(i)
				code.Write(line.Value(markdown))
			}

			block.Code = code.String()
			block.Offset = lines.At(0).Start
		} else if fenced.Info != nil {
			// empty block: the code would start on the line after the fence
			block.Offset = fenced.Info.Segment.Stop
		}

		block.StartLine = lineOf(markdown, block.Offset)
		if lines.Len() == 0 {
			block.StartLine++
		}

		blocks = append(blocks, block)

		return ast.WalkSkipChildren, nil
	})

	return blocks
}

func matches(info string, languages []string) bool {
	if len(languages) == 0 {
		return true
	}

	lang, _, _ := strings.Cut(info, " ")
	for _, l := range languages {
		if strings.EqualFold(lang, l) {
			return true
		}
	}

	return false
}

func lineOf(content []byte, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}

	return bytes.Count(content[:offset], []byte("\n")) + 1
}
