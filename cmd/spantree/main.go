package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
	Stdout  io.Writer
}

// CLI represents the command-line interface
var CLI struct {
	Config   string      `help:"Configuration file path" default:"spantree.yaml"`
	Verbose  bool        `help:"Enable verbose output" short:"v"`
	Quiet    bool        `help:"Suppress output" short:"q"`
	Tree     TreeCmd     `cmd:"" help:"Print the span tree of a Python file"`
	Export   ExportCmd   `cmd:"" help:"Serialize the span tree of a Python file"`
	Find     FindCmd     `cmd:"" help:"Find the node best matching a position"`
	Explain  ExplainCmd  `cmd:"" help:"Show the statement around a position with chain markers"`
	Select   SelectCmd   `cmd:"" help:"List nodes matching a CEL expression"`
	Markdown MarkdownCmd `cmd:"" help:"Print span trees of Python blocks in a Markdown file"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Stdout, "spantree v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("spantree"),
		kong.Description("Inspect source positions as a tree of nested spans"),
		kong.UsageOnError(),
	)

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
		Stdout:  os.Stdout,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
