// Package render provides a registry of generators that turn a resolved
// model into files.
//
// Generators return a file map so that one run can produce many outputs
// (one Go file per entity, or a whole tree of rendered templates). Paths
// are relative and slash-separated; the caller decides where to write them.
//
// This is an internal package used by the minazuki CLI. For programmatic
// rendering, use pkg/render which provides a stable public API.
package render

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/pthm/minazuki/internal/resolve"
)

// Generator produces files from a resolved model.
//
// Implementations should be registered via Register() in their init()
// function. The CLI dispatches on the --runtime flag.
type Generator interface {
	// Name returns the runtime identifier ("go", "template").
	Name() string

	// Generate returns a map of relative path -> content.
	Generate(ctx context.Context, m *resolve.Model, cfg *Config) (map[string][]byte, error)

	// DefaultConfig returns the default configuration for this generator.
	DefaultConfig() *Config
}

// Config holds generation options. Each generator documents the fields it
// reads; the rest are ignored.
type Config struct {
	// Package is the package name for generated Go code.
	Package string

	// TemplateDir is the root of the template tree for the template
	// runtime.
	TemplateDir string

	// IDPrefix is prepended to the zero-padded entity index when a path
	// contains "-id-".
	IDPrefix string

	// Workers bounds parallel rendering. Zero means one worker per CPU.
	Workers int

	// Version and SourcePath are recorded in generated file headers.
	Version    string
	SourcePath string

	// Options holds generator-specific configuration.
	Options map[string]any
}

// withDefaults fills unset fields of cfg from def.
func (c *Config) withDefaults(def *Config) *Config {
	out := &Config{}
	if c != nil {
		*out = *c
		out.Options = maps.Clone(c.Options)
	}
	if def == nil {
		return out
	}
	if out.Package == "" {
		out.Package = def.Package
	}
	if out.TemplateDir == "" {
		out.TemplateDir = def.TemplateDir
	}
	if out.IDPrefix == "" {
		out.IDPrefix = def.IDPrefix
	}
	if out.Workers == 0 {
		out.Workers = def.Workers
	}
	for k, v := range def.Options {
		if out.Options == nil {
			out.Options = make(map[string]any)
		}
		if _, set := out.Options[k]; !set {
			out.Options[k] = v
		}
	}
	return out
}

// registry maps runtime names to generators.
var registry = make(map[string]Generator)

// Register adds a generator to the global registry.
// Generators should call this from their init() function.
//
// Panics if a generator with the same name is already registered.
func Register(g Generator) {
	name := g.Name()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("render: generator %q already registered", name))
	}
	registry[name] = g
}

// Get returns the generator for the given runtime name.
// Returns nil if no generator is registered for that name.
func Get(name string) Generator {
	return registry[name]
}

// List returns all registered generator names, sorted.
func List() []string {
	return slices.Sorted(maps.Keys(registry))
}

// Registered returns true if a generator is registered for the given name.
func Registered(name string) bool {
	_, ok := registry[name]
	return ok
}

// Generate runs the named generator. Unset fields of cfg take the
// generator's defaults.
func Generate(ctx context.Context, name string, m *resolve.Model, cfg *Config) (map[string][]byte, error) {
	g := Get(name)
	if g == nil {
		return nil, fmt.Errorf("render: unknown runtime %q (available: %v)", name, List())
	}
	return g.Generate(ctx, m, cfg.withDefaults(g.DefaultConfig()))
}
