package label

import (
	"embed"
	"fmt"
	"os"
	"path"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/shibukawa/spantree"
)

// Classifier is the small classification interface chain navigation depends on.
type Classifier interface {
	IsStatement(p Payload) bool
	IsAssignmentLike(p Payload) bool
	IsChainLink(p Payload) bool
	// ValueField returns the field name of the assigned value child of an
	// assignment-like statement, or "" when p has none.
	ValueField(p Payload) string
}

// Class is the classification of one label kind
type Class struct {
	Statement  bool   `yaml:"statement"`
	Assignment bool   `yaml:"assignment"`
	ChainLink  bool   `yaml:"chain_link"`
	ValueField string `yaml:"value_field"`
}

// Schema is a table driven Classifier
type Schema struct {
	Name  string           `yaml:"name"`
	Kinds map[string]Class `yaml:"kinds"`
}

var _ Classifier = (*Schema)(nil)

//go:embed schemas/*.yaml
var builtinSchemas embed.FS

// BuiltinSchemas returns the names of the embedded schemas
func BuiltinSchemas() []string {
	entries, err := builtinSchemas.ReadDir("schemas")
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		names = append(names, name[:len(name)-len(path.Ext(name))])
	}

	slices.Sort(names)

	return names
}

// LoadSchema loads one of the embedded schemas by name
func LoadSchema(name string) (*Schema, error) {
	data, err := builtinSchemas.ReadFile("schemas/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", spantree.ErrUnknownSchema, name)
	}

	return ParseSchema(data)
}

// LoadSchemaFile loads a schema document from disk
func LoadSchemaFile(filePath string) (*Schema, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	return ParseSchema(data)
}

// ParseSchema parses and validates a YAML schema document
func ParseSchema(data []byte) (*Schema, error) {
	var schema Schema

	err := yaml.UnmarshalWithOptions(data, &schema, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", spantree.ErrInvalidSchema, err)
	}

	if err := schema.validate(); err != nil {
		return nil, err
	}

	return &schema, nil
}

func (s *Schema) validate() error {
	if len(s.Kinds) == 0 {
		return fmt.Errorf("%w: schema '%s' declares no kinds", spantree.ErrInvalidSchema, s.Name)
	}

	for kind, class := range s.Kinds {
		if class.Assignment && !class.Statement {
			return fmt.Errorf("%w: kind '%s' is assignment-like but not a statement", spantree.ErrInvalidSchema, kind)
		}

		if class.ValueField != "" && !class.Assignment {
			return fmt.Errorf("%w: kind '%s' has value_field but is not assignment-like", spantree.ErrInvalidSchema, kind)
		}
	}

	return nil
}

func (s *Schema) class(p Payload) Class {
	if s == nil {
		return Class{}
	}

	return s.Kinds[p.Kind]
}

// IsStatement reports whether p is a statement kind
func (s *Schema) IsStatement(p Payload) bool { return s.class(p).Statement }

// IsAssignmentLike reports whether p is an assignment-like statement kind
func (s *Schema) IsAssignmentLike(p Payload) bool { return s.class(p).Assignment }

// IsChainLink reports whether p is an attribute-chain link
func (s *Schema) IsChainLink(p Payload) bool { return s.class(p).ChainLink }

// ValueField returns the value child field of an assignment-like kind
func (s *Schema) ValueField(p Payload) string { return s.class(p).ValueField }
