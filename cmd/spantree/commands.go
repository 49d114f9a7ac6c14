package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/shibukawa/spantree/chain"
	"github.com/shibukawa/spantree/codec"
	"github.com/shibukawa/spantree/filter"
	"github.com/shibukawa/spantree/render"
	"github.com/shibukawa/spantree/source"
	"github.com/shibukawa/spantree/source/mdsource"
	"github.com/shibukawa/spantree/source/pysource"
	"github.com/shibukawa/spantree/tree"
)

// PositionFlags selects a node by line/column or by offsets
type PositionFlags struct {
	Line   int `help:"1-based line number" default:"0"`
	Column int `help:"0-based byte column within --line; the whole line when omitted" default:"-1"`
	Start  int `help:"Start byte offset" default:"-1"`
	End    int `help:"End byte offset (defaults to --start)" default:"-1"`
}

func (p PositionFlags) resolve(t *tree.Tree, text string) (*tree.Node, error) {
	byLine := p.Line > 0
	byOffset := p.Start >= 0

	switch {
	case byLine && byOffset:
		return nil, ErrPositionAmbiguous
	case byLine:
		idx := tree.NewLineIndex(text)
		if p.Column >= 0 {
			return t.FindByLineColumn(idx, p.Line, p.Column), nil
		}

		return t.FindByLine(idx, p.Line), nil
	case byOffset:
		end := p.End
		if end < 0 {
			end = p.Start
		}

		return t.FindBestMatch(p.Start, end), nil
	default:
		return nil, ErrPositionRequired
	}
}

// TreeCmd represents the tree command
type TreeCmd struct {
	File    string `arg:"" help:"Python source file" type:"existingfile"`
	NoMates bool   `help:"Do not show nodes sharing a span on the same line"`
}

func (cmd *TreeCmd) Run(ctx *Context) error {
	ws, err := ctx.workspace()
	if err != nil {
		return err
	}
	defer ws.close()

	t, _, err := ws.loadFile(context.Background(), cmd.File)
	if err != nil {
		return err
	}

	p := render.NewTreePrinter(ctx.Stdout)
	p.Mates = !cmd.NoMates

	return p.Print(t)
}

// ExportCmd represents the export command
type ExportCmd struct {
	File    string `arg:"" help:"Python source file" type:"existingfile"`
	Format  string `help:"Output format (json or yaml); defaults to the configured format" short:"f"`
	Compact bool   `help:"Disable indentation of JSON output"`
	Output  string `help:"Output file (default: stdout)" short:"o" type:"path"`
}

func (cmd *ExportCmd) Run(ctx *Context) error {
	ws, err := ctx.workspace()
	if err != nil {
		return err
	}
	defer ws.close()

	name := cmd.Format
	if name == "" {
		name = ws.config.Format
	}

	format, err := codec.ParseFormat(name)
	if err != nil {
		return err
	}

	t, _, err := ws.loadFile(context.Background(), cmd.File)
	if err != nil {
		return err
	}

	opts := codec.Options{Format: format, Pretty: ws.config.Pretty && !cmd.Compact}

	if cmd.Output == "" {
		return codec.Encode(ctx.Stdout, t, opts)
	}

	f, err := os.Create(cmd.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := codec.Encode(f, t, opts); err != nil {
		return err
	}

	if !ctx.Quiet {
		color.New(color.FgGreen).Fprintf(os.Stderr, "Exported: %s\n", cmd.Output)
	}

	return nil
}

// FindCmd represents the find command
type FindCmd struct {
	File     string        `arg:"" help:"Python source file" type:"existingfile"`
	Position PositionFlags `embed:""`
}

func (cmd *FindCmd) Run(ctx *Context) error {
	ws, err := ctx.workspace()
	if err != nil {
		return err
	}
	defer ws.close()

	t, text, err := ws.loadFile(context.Background(), cmd.File)
	if err != nil {
		return err
	}

	n, err := cmd.Position.resolve(t, text)
	if err != nil {
		return err
	}

	if n == nil {
		return ErrNoMatch
	}

	// print the path from the root down to the match
	path := slices.Collect(n.Ancestors())
	slices.Reverse(path)

	return render.NewTreePrinter(ctx.Stdout).PrintNodes(append(path, n))
}

// ExplainCmd represents the explain command
type ExplainCmd struct {
	File     string        `arg:"" help:"Python source file" type:"existingfile"`
	Position PositionFlags `embed:""`
}

func (cmd *ExplainCmd) Run(ctx *Context) error {
	ws, err := ctx.workspace()
	if err != nil {
		return err
	}
	defer ws.close()

	t, text, err := ws.loadFile(context.Background(), cmd.File)
	if err != nil {
		return err
	}

	n, err := cmd.Position.resolve(t, text)
	if err != nil {
		return err
	}

	if n == nil {
		return ErrNoMatch
	}

	nv := chain.NewNavigator(ws.schema, text)

	r, err := nv.StatementText(n)
	if err != nil {
		return err
	}

	pos := r.Statement.Position()
	header := color.New(color.Bold, color.FgCyan)
	header.Fprintf(ctx.Stdout, "%s at line %d, column %d\n", n.Label(), n.Position().LineStart, n.Position().ColStart)
	fmt.Fprintf(ctx.Stdout, "statement: %s %s\n", r.Statement.Label(), pos)

	if err := render.Statement(ctx.Stdout, r, ws.markers); err != nil {
		return err
	}

	if prev := nv.PreviousAttribute(n); prev != nil {
		fmt.Fprintf(ctx.Stdout, "previous link: %s\n", prev)
	}

	if next := nv.NextAttribute(n); next != nil {
		fmt.Fprintf(ctx.Stdout, "next link: %s\n", next)
	}

	if nv.IsAssignmentTarget(n) {
		color.New(color.FgYellow).Fprintln(ctx.Stdout, "assignment target")
	}

	return nil
}

// SelectCmd represents the select command
type SelectCmd struct {
	File string `arg:"" help:"Python source file" type:"existingfile"`
	Expr string `arg:"" help:"CEL expression, e.g. kind == \"attribute\" && size > 3"`
	Tree bool   `help:"Print the whole tree with matches marked instead of the matches alone"`
}

func (cmd *SelectCmd) Run(ctx *Context) error {
	ws, err := ctx.workspace()
	if err != nil {
		return err
	}
	defer ws.close()

	predicate, err := filter.Compile(cmd.Expr)
	if err != nil {
		return err
	}

	t, _, err := ws.loadFile(context.Background(), cmd.File)
	if err != nil {
		return err
	}

	nodes, err := filter.Select(t, predicate)
	if err != nil {
		return err
	}

	ws.logger.Debug("selected nodes", zap.String("expr", cmd.Expr), zap.Int("matches", len(nodes)))

	p := render.NewTreePrinter(ctx.Stdout)
	if !cmd.Tree {
		return p.PrintNodes(nodes)
	}

	for _, n := range nodes {
		n.SetSelected(true)
	}

	return p.Print(t)
}

// MarkdownCmd represents the markdown command
type MarkdownCmd struct {
	File   string `arg:"" help:"Markdown file" type:"existingfile"`
	Filter string `help:"Only print nodes matching this CEL expression"`
}

func (cmd *MarkdownCmd) Run(ctx *Context) error {
	ws, err := ctx.workspace()
	if err != nil {
		return err
	}
	defer ws.close()

	content, err := os.ReadFile(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.File, err)
	}

	var predicate *filter.Predicate
	if cmd.Filter != "" {
		predicate, err = filter.Compile(cmd.Filter)
		if err != nil {
			return err
		}
	}

	blocks := mdsource.Blocks(content)
	if len(blocks) == 0 && !ctx.Quiet {
		color.New(color.FgYellow).Fprintf(os.Stderr, "No python code blocks in %s\n", cmd.File)
	}

	p := render.NewTreePrinter(ctx.Stdout)
	header := color.New(color.Bold, color.FgBlue)

	for i, block := range blocks {
		src := block.Source(
			pysource.WithAllowErrors(ws.config.Parser.AllowErrors),
			pysource.WithLogger(ws.logger))

		t, err := source.Build(context.Background(), src, source.WithLogger(ws.logger))
		if err != nil {
			return fmt.Errorf("block %d at line %d: %w", i+1, block.StartLine, err)
		}

		header.Fprintf(ctx.Stdout, "# block %d (line %d)\n", i+1, block.StartLine)

		if predicate == nil {
			if err := p.Print(t); err != nil {
				return err
			}

			continue
		}

		nodes, err := filter.Select(t, predicate)
		if err != nil {
			return err
		}

		if err := p.PrintNodes(nodes); err != nil {
			return err
		}
	}

	return nil
}
