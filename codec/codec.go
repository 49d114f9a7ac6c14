// Package codec converts span trees to and from an external representation.
//
// The document nests nodes as {start, end, lines, label, mates, children}.
// Siblings, next/previous links, depth and node ids are derived data and are
// not written; they are recomputed from the structure after decoding.
//
// Attribute values keep their JSON or YAML shape, not their Go type. Integers
// come back as int64 from JSON and as uint64 or int64 from YAML, depending on
// sign; other numbers come back as float64. An attribute set to int(1) is
// therefore not equal to its decoded value.
//
// Decoding never trusts the document: every node is re-attached through the
// tree's strict constructors and the result is validated as a whole.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/shibukawa/spantree"
	"github.com/shibukawa/spantree/label"
	"github.com/shibukawa/spantree/tree"
)

// Format names an external representation
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat converts a format name
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case JSON, YAML:
		return Format(name), nil
	default:
		return "", fmt.Errorf("%w: %s", spantree.ErrUnsupportedFormat, name)
	}
}

// Document is the serialized form of a tree
type Document struct {
	ID      string    `json:"id,omitempty" yaml:"id,omitempty"`
	Caption string    `json:"caption,omitempty" yaml:"caption,omitempty"`
	Root    *NodeData `json:"root,omitempty" yaml:"root,omitempty"`
}

// NodeData is the serialized form of one node and its subtree
type NodeData struct {
	Start    int         `json:"start" yaml:"start"`
	End      int         `json:"end" yaml:"end"`
	Lines    []int       `json:"lines,omitempty" yaml:"lines,omitempty"`
	Selected bool        `json:"selected,omitempty" yaml:"selected,omitempty"`
	Label    LabelData   `json:"label" yaml:"label"`
	Mates    []MateData  `json:"mates,omitempty" yaml:"mates,omitempty"`
	Children []*NodeData `json:"children,omitempty" yaml:"children,omitempty"`
}

// MateData is a group member; it shares the span of its node
type MateData struct {
	Lines    []int     `json:"lines,omitempty" yaml:"lines,omitempty"`
	Selected bool      `json:"selected,omitempty" yaml:"selected,omitempty"`
	Label    LabelData `json:"label" yaml:"label"`
}

// LabelData is the serialized label payload
type LabelData struct {
	Kind  string         `json:"kind" yaml:"kind"`
	Field string         `json:"field,omitempty" yaml:"field,omitempty"`
	Attrs map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// Options controls encoding
type Options struct {
	Format Format
	Pretty bool
}

// ToDocument converts a tree to its document form
func ToDocument(t *tree.Tree) *Document {
	doc := &Document{
		ID:      t.ID().String(),
		Caption: t.Caption(),
	}

	if root := t.Root(); root != nil {
		doc.Root = toNodeData(root)
	}

	return doc
}

func toNodeData(n *tree.Node) *NodeData {
	pos := n.Position()
	data := &NodeData{
		Start:    pos.Start,
		End:      pos.End,
		Lines:    linesOf(pos),
		Selected: pos.Selected,
		Label:    toLabelData(n.Label()),
	}

	for _, m := range n.Mates() {
		mpos := m.Position()
		data.Mates = append(data.Mates, MateData{
			Lines:    linesOf(mpos),
			Selected: mpos.Selected,
			Label:    toLabelData(m.Label()),
		})
	}

	for _, c := range n.Children() {
		data.Children = append(data.Children, toNodeData(c))
	}

	return data
}

func linesOf(pos tree.Position) []int {
	if !pos.HasLines {
		return nil
	}

	return []int{pos.LineStart, pos.ColStart, pos.LineEnd, pos.ColEnd}
}

func toLabelData(p label.Payload) LabelData {
	return LabelData{Kind: p.Kind, Field: p.Field, Attrs: p.Attrs}
}

// FromDocument rebuilds and validates a tree
func FromDocument(doc *Document, options ...tree.Option) (*tree.Tree, error) {
	if doc.ID != "" {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad id: %v", spantree.ErrDeserialization, err)
		}

		options = append(options, tree.WithID(id))
	}

	options = append(options, tree.WithCaption(doc.Caption))
	t := tree.New(options...)

	if doc.Root != nil {
		if err := attach(t, nil, doc.Root); err != nil {
			return nil, fmt.Errorf("%w: %v", spantree.ErrDeserialization, err)
		}
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", spantree.ErrDeserialization, err)
	}

	return t, nil
}

func attach(t *tree.Tree, parent *tree.Node, data *NodeData) error {
	if data == nil {
		return fmt.Errorf("%w: null node", spantree.ErrInvalidStructure)
	}

	pos, err := position(data.Start, data.End, data.Lines, data.Selected)
	if err != nil {
		return err
	}

	n, err := t.AppendChild(parent, tree.Span{Position: pos, Label: fromLabelData(data.Label)})
	if err != nil {
		return err
	}

	for _, m := range data.Mates {
		mpos, err := position(data.Start, data.End, m.Lines, m.Selected)
		if err != nil {
			return err
		}

		if _, err := t.AddMate(n, tree.Span{Position: mpos, Label: fromLabelData(m.Label)}); err != nil {
			return err
		}
	}

	for _, c := range data.Children {
		if err := attach(t, n, c); err != nil {
			return err
		}
	}

	return nil
}

func position(start, end int, lines []int, selected bool) (tree.Position, error) {
	pos := tree.Position{Start: start, End: end, Selected: selected}

	switch len(lines) {
	case 0:
		return pos, nil
	case 4:
		return pos.WithLines(lines[0], lines[1], lines[2], lines[3]), nil
	default:
		return pos, fmt.Errorf("%w: lines of [%d,%d) must hold 4 values, got %d", spantree.ErrInvalidStructure, start, end, len(lines))
	}
}

func fromLabelData(data LabelData) label.Payload {
	return label.Payload{Kind: data.Kind, Field: data.Field, Attrs: data.Attrs}
}

// Marshal encodes a tree as compact JSON
func Marshal(t *tree.Tree) ([]byte, error) {
	return json.Marshal(ToDocument(t))
}

// Unmarshal decodes a JSON document
func Unmarshal(data []byte, options ...tree.Option) (*tree.Tree, error) {
	var doc Document

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	decoder.UseNumber()

	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", spantree.ErrDeserialization, err)
	}

	var extra json.RawMessage
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after the document", spantree.ErrDeserialization)
	}

	normalizeNumbers(doc.Root)

	return FromDocument(&doc, options...)
}

// MarshalYAML encodes a tree as YAML
func MarshalYAML(t *tree.Tree) ([]byte, error) {
	return yaml.Marshal(ToDocument(t))
}

// UnmarshalYAML decodes a YAML document
func UnmarshalYAML(data []byte, options ...tree.Option) (*tree.Tree, error) {
	var doc Document

	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", spantree.ErrDeserialization, err)
	}

	return FromDocument(&doc, options...)
}

// Encode writes a tree in the requested format
func Encode(w io.Writer, t *tree.Tree, opts Options) error {
	switch opts.Format {
	case JSON, "":
		encoder := json.NewEncoder(w)
		if opts.Pretty {
			encoder.SetIndent("", "  ")
		}

		return encoder.Encode(ToDocument(t))
	case YAML:
		data, err := MarshalYAML(t)
		if err != nil {
			return err
		}

		_, err = w.Write(data)

		return err
	default:
		return fmt.Errorf("%w: %s", spantree.ErrUnsupportedFormat, opts.Format)
	}
}

// Decode reads a tree in the given format
func Decode(r io.Reader, format Format, options ...tree.Option) (*tree.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	switch format {
	case JSON, "":
		return Unmarshal(data, options...)
	case YAML:
		return UnmarshalYAML(data, options...)
	default:
		return nil, fmt.Errorf("%w: %s", spantree.ErrUnsupportedFormat, format)
	}
}

// normalizeNumbers turns json.Number attribute values back into int64 or
// float64 so that integer attributes survive a round trip unchanged.
func normalizeNumbers(data *NodeData) {
	if data == nil {
		return
	}

	normalizeAttrs(data.Label.Attrs)

	for i := range data.Mates {
		normalizeAttrs(data.Mates[i].Label.Attrs)
	}

	for _, c := range data.Children {
		normalizeNumbers(c)
	}
}

func normalizeAttrs(attrs map[string]any) {
	for key, value := range attrs {
		attrs[key] = normalizeValue(value)
	}
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}

		if f, err := v.Float64(); err == nil {
			return f
		}

		return v.String()
	case map[string]any:
		normalizeAttrs(v)
		return v
	case []any:
		for i := range v {
			v[i] = normalizeValue(v[i])
		}

		return v
	default:
		return value
	}
}
