// Package parser loads minazuki schema files.
//
// A schema file is YAML (or JSON, which is valid YAML) listing entities in
// declaration order:
//
//	entities:
//	  - name: song
//	    fields:
//	      - {name: name, type: string}
//	      - {name: length_seconds, type: integer, index: true}
//	    has_many: [artist]
//	    collections:
//	      - name: lyric
//	        fields: [{name: timestamp_seconds, type: integer}]
//	  - name: derivation
//	    extends: song
//	    fields: [{name: original, type: song}]
//
// Keys on a field other than name and type are passed through to
// renderers as schema.Field.Options. Unknown keys anywhere else are
// rejected.
//
// # Basic Usage
//
//	s, err := parser.ParseSchema("schema.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Definitions are built with the pkg/schema builder, so reserved field
// names and duplicate fields fail here, at load time.
package parser

import (
	"errors"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/pthm/minazuki/pkg/schema"
)

type document struct {
	Entities []entityDoc `json:"entities"`
}

type entityDoc struct {
	Name        string           `json:"name"`
	Extends     string           `json:"extends,omitempty"`
	Fields      []map[string]any `json:"fields,omitempty"`
	HasMany     []string         `json:"has_many,omitempty"`
	Collections []entityDoc      `json:"collections,omitempty"`
}

// ParseSchema reads a schema file and returns its definitions.
func ParseSchema(path string) (schema.Schema, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path is from trusted source
	if err != nil {
		return schema.Schema{}, fmt.Errorf("reading schema file: %w", err)
	}
	s, err := Parse(content)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseSchemaString parses schema content held in a string.
func ParseSchemaString(content string) (schema.Schema, error) {
	return Parse([]byte(content))
}

// Parse parses YAML or JSON schema content. Syntax errors wrap
// schema.ErrInvalidSchema; definition errors are *schema.DefinitionError.
func Parse(content []byte) (schema.Schema, error) {
	var doc document
	if err := yaml.UnmarshalStrict(content, &doc); err != nil {
		return schema.Schema{}, fmt.Errorf("%w: %v", schema.ErrInvalidSchema, err)
	}

	defs := make([]schema.EntityDefinition, 0, len(doc.Entities))
	for _, ed := range doc.Entities {
		b, err := builderFor(ed)
		if err != nil {
			return schema.Schema{}, err
		}
		def, err := b.Build()
		if err != nil {
			return schema.Schema{}, err
		}
		defs = append(defs, def)
	}
	return schema.New(defs...)
}

func builderFor(ed entityDoc) (*schema.Builder, error) {
	b := schema.NewEntity(ed.Name)
	if ed.Extends != "" {
		b.Extends(ed.Extends)
	}
	for i, raw := range ed.Fields {
		name, typ, opts, err := splitField(raw)
		if err != nil {
			return nil, schema.NewDefinitionError(ed.Name, "", fmt.Sprintf("field #%d: %v", i+1, err), nil)
		}
		b.FieldWithOptions(name, typ, opts)
	}
	if len(ed.HasMany) > 0 {
		b.HasMany(ed.HasMany...)
	}
	for _, c := range ed.Collections {
		cb, err := builderFor(c)
		if err != nil {
			return nil, fmt.Errorf("collection %q of %q: %w", c.Name, ed.Name, err)
		}
		b.Collection(cb)
	}
	return b, nil
}

// splitField separates the name and type keys of a field from its
// options.
func splitField(raw map[string]any) (name, typ string, opts map[string]any, err error) {
	for k, v := range raw {
		switch k {
		case "name", "type":
			s, ok := v.(string)
			if !ok {
				return "", "", nil, fmt.Errorf("%s must be a string, got %T", k, v)
			}
			if k == "name" {
				name = s
			} else {
				typ = s
			}
		default:
			if opts == nil {
				opts = make(map[string]any)
			}
			opts[k] = v
		}
	}
	if name == "" {
		return "", "", nil, errors.New("missing name")
	}
	if typ == "" {
		return "", "", nil, fmt.Errorf("field %q: missing type", name)
	}
	return name, typ, opts, nil
}
