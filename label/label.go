package label

import (
	"maps"
	"strings"
)

// Payload is the opaque label attached to a tree node. Kind names the syntactic
// construct, Field names the role the node plays inside its parent.
type Payload struct {
	Kind  string
	Field string
	Attrs map[string]any
}

// New creates a payload with the given kind
func New(kind string) Payload {
	return Payload{Kind: kind}
}

// WithField returns a copy of p with the field role set
func (p Payload) WithField(field string) Payload {
	p.Field = field
	return p
}

// WithAttr returns a copy of p with an additional attribute
func (p Payload) WithAttr(key string, value any) Payload {
	attrs := make(map[string]any, len(p.Attrs)+1)
	maps.Copy(attrs, p.Attrs)
	attrs[key] = value
	p.Attrs = attrs

	return p
}

// Clone returns a deep copy of the top-level attribute map
func (p Payload) Clone() Payload {
	if p.Attrs != nil {
		p.Attrs = maps.Clone(p.Attrs)
	}

	return p
}

// Attr returns a single attribute value
func (p Payload) Attr(key string) (any, bool) {
	v, ok := p.Attrs[key]
	return v, ok
}

// String returns "kind" or "kind[field]"
func (p Payload) String() string {
	if p.Field == "" {
		return p.Kind
	}

	var b strings.Builder
	b.WriteString(p.Kind)
	b.WriteByte('[')
	b.WriteString(p.Field)
	b.WriteByte(']')

	return b.String()
}
