// Package source defines where span trees get their positions from.
//
// A Source produces the text of a program together with the spans of its
// syntax nodes. Build turns any Source into a populated, line-annotated tree.
package source

import (
	"context"
	"fmt"

	"github.com/shibukawa/spantree/tree"
	"go.uber.org/zap"
)

// Source yields a text and the spans found in it
type Source interface {
	Text() string
	Spans(ctx context.Context) ([]tree.Span, error)
}

// Static is a Source over precomputed spans
type Static struct {
	text  string
	spans []tree.Span
}

// NewStatic creates a Source that returns the given spans as is
func NewStatic(text string, spans ...tree.Span) *Static {
	return &Static{text: text, spans: spans}
}

// Text returns the text given to NewStatic
func (s *Static) Text() string { return s.text }

// Spans returns a copy of the spans given to NewStatic
func (s *Static) Spans(ctx context.Context) ([]tree.Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]tree.Span, len(s.spans))
	copy(result, s.spans)

	return result, nil
}

// BuildOption configures Build
type BuildOption func(*buildOptions)

type buildOptions struct {
	logger *zap.Logger
	tree   []tree.Option
}

// WithLogger sets the logger used by Build and by the tree it builds
func WithLogger(logger *zap.Logger) BuildOption {
	return func(o *buildOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTreeOptions passes options through to tree.New
func WithTreeOptions(options ...tree.Option) BuildOption {
	return func(o *buildOptions) {
		o.tree = append(o.tree, options...)
	}
}

// Build collects the spans of src, inserts them largest first and annotates
// every node with line and column coordinates. The tree caption is the
// source text. The returned tree is frozen; only selection marks can change.
func Build(ctx context.Context, src Source, options ...BuildOption) (*tree.Tree, error) {
	opts := buildOptions{logger: zap.NewNop()}
	for _, opt := range options {
		opt(&opts)
	}

	spans, err := src.Spans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect spans: %w", err)
	}

	text := src.Text()
	treeOptions := append([]tree.Option{tree.WithCaption(text), tree.WithLogger(opts.logger)}, opts.tree...)
	t := tree.New(treeOptions...)

	if _, err := t.InsertMany(spans); err != nil {
		return nil, fmt.Errorf("failed to build tree: %w", err)
	}

	t.AnnotateLines(tree.NewLineIndex(text))
	t.Freeze()

	opts.logger.Debug("built span tree",
		zap.Stringer("tree", t.ID()),
		zap.Int("spans", len(spans)),
		zap.Int("nodes", t.Len()))

	return t, nil
}
