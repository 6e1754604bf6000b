package main

import (
	"fmt"
	"os"

	"github.com/pthm/minazuki/internal/cli"
	"github.com/pthm/minazuki/pkg/compiler"
	"github.com/pthm/minazuki/pkg/parser"
	"github.com/pthm/minazuki/pkg/schema"
)

// loadSchema parses the schema file, mapping failures to exit code 3.
func loadSchema(path string) (schema.Schema, error) {
	if _, err := os.Stat(path); err != nil {
		return schema.Schema{}, cli.SchemaParseError(fmt.Sprintf("schema not found: %s", path), nil)
	}
	s, err := parser.ParseSchema(path)
	if err != nil {
		return schema.Schema{}, cli.SchemaParseError("parsing schema", err)
	}
	return s, nil
}

// loadModel parses and resolves the schema file.
func loadModel(path string, irregular map[string]string) (*compiler.Model, error) {
	s, err := loadSchema(path)
	if err != nil {
		return nil, err
	}
	m, err := compiler.Resolve(s, resolveOptions(irregular)...)
	if err != nil {
		return nil, cli.SchemaError("resolving schema", err)
	}
	logger.Debug("resolved schema", "path", path, "entities", len(m.Entities), "levels", len(m.Levels))
	return m, nil
}

func resolveOptions(irregular map[string]string) []compiler.Option {
	if len(irregular) == 0 {
		return nil
	}
	return []compiler.Option{compiler.WithIrregular(irregular)}
}
