// Package pysource produces spans for Python source text using tree-sitter.
package pysource

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"go.uber.org/zap"

	"github.com/shibukawa/spantree"
	"github.com/shibukawa/spantree/label"
	"github.com/shibukawa/spantree/tree"
)

// SchemaName is the label schema matching the node kinds emitted here
const SchemaName = "tree-sitter-python"

// Source parses Python code into spans. Every named tree-sitter node becomes
// one span labelled with its node type and the field it occupies in its
// parent. Leaf nodes also carry their source text as the "text" attribute.
type Source struct {
	text        []byte
	allowErrors bool
	logger      *zap.Logger
}

// Option configures a Source
type Option func(*Source)

// WithAllowErrors keeps ERROR and missing nodes instead of failing
func WithAllowErrors(allow bool) Option {
	return func(s *Source) {
		s.allowErrors = allow
	}
}

// WithLogger sets the logger that reports parse statistics
func WithLogger(logger *zap.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Source for the given Python code
func New(text string, options ...Option) *Source {
	s := &Source{text: []byte(text), logger: zap.NewNop()}
	for _, opt := range options {
		opt(s)
	}

	return s
}

// Text returns the source code being parsed
func (s *Source) Text() string { return string(s.text) }

// Spans parses the code and returns the spans of all named nodes in
// pre-order. Syntax errors fail with spantree.ErrSyntax, reporting the first
// broken location, unless errors are allowed.
func (s *Source) Spans(ctx context.Context) ([]tree.Span, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(python.GetLanguage())

	parsed, err := parser.ParseCtx(ctx, nil, s.text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse python source: %w", err)
	}
	defer parsed.Close()

	w := walker{text: s.text}
	w.visit(parsed.RootNode(), "")

	if w.broken != nil && !s.allowErrors {
		point := w.broken.StartPoint()
		return nil, fmt.Errorf("%w: %s at line %d column %d", spantree.ErrSyntax, describe(w.broken), point.Row+1, point.Column)
	}

	s.logger.Debug("parsed python source",
		zap.Int("bytes", len(s.text)),
		zap.Int("spans", len(w.spans)),
		zap.Bool("has_errors", w.broken != nil))

	return w.spans, nil
}

type walker struct {
	text   []byte
	spans  []tree.Span
	broken *sitter.Node
}

func (w *walker) visit(n *sitter.Node, field string) {
	if w.broken == nil && (n.Type() == "ERROR" || n.IsMissing()) {
		w.broken = n
	}

	count := int(n.ChildCount())
	payload := label.New(n.Type()).WithField(field)

	if count == 0 {
		payload = payload.WithAttr("text", string(w.text[n.StartByte():n.EndByte()]))
	}

	start, end := int(n.StartByte()), int(n.EndByte())
	startPoint, endPoint := n.StartPoint(), n.EndPoint()

	span := tree.NewSpan(start, end, payload)
	span.Position = span.Position.WithLines(int(startPoint.Row)+1, int(startPoint.Column), int(endPoint.Row)+1, int(endPoint.Column))
	w.spans = append(w.spans, span)

	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}

		if child.IsNamed() {
			w.visit(child, n.FieldNameForChild(i))
		} else if w.broken == nil && child.IsMissing() {
			w.broken = child
		}
	}
}

func describe(n *sitter.Node) string {
	if n.IsMissing() {
		return fmt.Sprintf("missing %q", n.Type())
	}

	return "unexpected input"
}
