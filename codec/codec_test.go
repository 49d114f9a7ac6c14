package codec

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/spantree"
	"github.com/shibukawa/spantree/label"
	"github.com/shibukawa/spantree/tree"
)

func sampleTree(t *testing.T) *tree.Tree {
	t.Helper()

	src := "x = foo.bar(1)\n"
	tr := tree.New(tree.WithCaption(src))
	_, err := tr.InsertMany([]tree.Span{
		tree.NewSpan(0, 15, label.New("Module")),
		tree.NewSpan(0, 14, label.New("Assign").WithField("body")),
		tree.NewSpan(0, 14, label.New("Expr").WithAttr("synthetic", true)),
		tree.NewSpan(0, 1, label.New("Name").WithField("targets").WithAttr("id", "x")),
		tree.NewSpan(4, 14, label.New("Call").WithField("value")),
		tree.NewSpan(4, 11, label.New("Attribute").WithField("func").WithAttr("attr", "bar")),
		tree.NewSpan(12, 13, label.New("Constant").WithField("args").WithAttr("value", 1)),
	})
	assert.NoError(t, err)

	tr.AnnotateLines(tree.NewLineIndex(src))
	tr.FindBestMatch(4, 11).SetSelected(true)

	return tr
}

// flat renders every node, group members included, in pre-order
func flat(t *tree.Tree) []string {
	var result []string
	for n := range t.FlattenAll() {
		result = append(result, fmt.Sprintf("%s %s %v mate=%v", n.Label(), n.Position(), n.Position().Selected, n.IsGroupMember()))
	}

	return result
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		marshal   func(*tree.Tree) ([]byte, error)
		unmarshal func([]byte, ...tree.Option) (*tree.Tree, error)
	}{
		{"json", Marshal, Unmarshal},
		{"yaml", MarshalYAML, UnmarshalYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := sampleTree(t)

			data, err := tt.marshal(original)
			assert.NoError(t, err)

			decoded, err := tt.unmarshal(data)
			assert.NoError(t, err)

			assert.Equal(t, flat(original), flat(decoded))
			assert.Equal(t, original.ID(), decoded.ID())
			assert.Equal(t, original.Caption(), decoded.Caption())
			assert.NoError(t, decoded.Validate())
		})
	}
}

func TestRoundTrip_JSONAttributes(t *testing.T) {
	decoded, err := Unmarshal(must(Marshal(sampleTree(t))))
	assert.NoError(t, err)

	constant := decoded.FindBestMatch(12, 13)
	assert.Equal(t, map[string]any{"value": int64(1)}, constant.Label().Attrs)

	group := decoded.FindBestMatch(0, 14)
	assert.Equal(t, "Assign", group.Label().Kind)
	assert.Equal(t, map[string]any{"synthetic": true}, group.Mates()[0].Label().Attrs)
}

func TestRoundTrip_YAMLAttributes(t *testing.T) {
	decoded, err := UnmarshalYAML(must(MarshalYAML(sampleTree(t))))
	assert.NoError(t, err)

	// integers keep their YAML shape, not the Go type they were set with
	constant := decoded.FindBestMatch(12, 13)
	assert.Equal(t, map[string]any{"value": uint64(1)}, constant.Label().Attrs)
}

func TestRoundTrip_EmptyTree(t *testing.T) {
	decoded, err := Unmarshal(must(Marshal(tree.New())))
	assert.NoError(t, err)
	assert.True(t, decoded.Empty())
}

func TestEncodeDecode(t *testing.T) {
	for _, format := range []Format{JSON, YAML} {
		t.Run(string(format), func(t *testing.T) {
			original := sampleTree(t)

			var buf bytes.Buffer
			assert.NoError(t, Encode(&buf, original, Options{Format: format, Pretty: true}))

			decoded, err := Decode(&buf, format)
			assert.NoError(t, err)
			assert.Equal(t, flat(original), flat(decoded))
		})
	}

	var buf bytes.Buffer
	err := Encode(&buf, tree.New(), Options{Format: "xml"})
	assert.True(t, errors.Is(err, spantree.ErrUnsupportedFormat))

	_, err = Decode(&buf, "xml")
	assert.True(t, errors.Is(err, spantree.ErrUnsupportedFormat))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("yaml")
	assert.NoError(t, err)
	assert.Equal(t, YAML, f)

	_, err = ParseFormat("toml")
	assert.True(t, errors.Is(err, spantree.ErrUnsupportedFormat))
}

func TestUnmarshal_RejectsInvalidStructure(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"child outside parent", `{"root":{"start":0,"end":10,"label":{"kind":"M"},"children":[{"start":5,"end":15,"label":{"kind":"A"}}]}}`},
		{"child equals parent", `{"root":{"start":0,"end":10,"label":{"kind":"M"},"children":[{"start":0,"end":10,"label":{"kind":"A"}}]}}`},
		{"overlapping siblings", `{"root":{"start":0,"end":10,"label":{"kind":"M"},"children":[{"start":1,"end":5,"label":{"kind":"A"}},{"start":4,"end":8,"label":{"kind":"B"}}]}}`},
		{"unordered siblings", `{"root":{"start":0,"end":10,"label":{"kind":"M"},"children":[{"start":6,"end":8,"label":{"kind":"A"}},{"start":1,"end":2,"label":{"kind":"B"}}]}}`},
		{"nested siblings", `{"root":{"start":0,"end":10,"label":{"kind":"M"},"children":[{"start":1,"end":8,"label":{"kind":"A"}},{"start":2,"end":3,"label":{"kind":"B"}}]}}`},
		{"inverted span", `{"root":{"start":10,"end":0,"label":{"kind":"M"}}}`},
		{"null child", `{"root":{"start":0,"end":10,"label":{"kind":"M"},"children":[null]}}`},
		{"short lines", `{"root":{"start":0,"end":10,"lines":[1,0],"label":{"kind":"M"}}}`},
		{"bad id", `{"id":"not-a-uuid","root":{"start":0,"end":10,"label":{"kind":"M"}}}`},
		{"unknown field", `{"root":{"start":0,"end":10,"label":{"kind":"M"},"parent":3}}`},
		{"not json", `{"root":`},
		{"trailing data", `{"root":{"start":0,"end":10,"label":{"kind":"M"}}} {"garbage":`},
		{"second document", `{"root":{"start":0,"end":10,"label":{"kind":"M"}}} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.doc))
			assert.True(t, errors.Is(err, spantree.ErrDeserialization), "got %v", err)
		})
	}
}

func TestUnmarshalYAML_RejectsInvalidStructure(t *testing.T) {
	doc := `
root:
  start: 0
  end: 10
  label: {kind: M}
  children:
    - start: 5
      end: 15
      label: {kind: A}
`
	_, err := UnmarshalYAML([]byte(doc))
	assert.True(t, errors.Is(err, spantree.ErrDeserialization))
}

func must(data []byte, err error) []byte {
	if err != nil {
		panic(err)
	}

	return data
}
