// Package render provides the public API for rendering resolved models.
//
// Three runtimes are built in:
//
//   - "go": Go struct definitions, one file per entity plus an ordered
//     entity table
//   - "sql": PostgreSQL DDL creating one table per entity in dependency
//     order, plus a matching drop script
//   - "template": a directory of text/template files, with per-entity
//     templates selected by "-resourcename-" in their path
//
// Typical use:
//
//	m, _ := compiler.Resolve(s)
//	files, err := render.Generate(ctx, "template", m, &render.Config{
//	    TemplateDir: "generators",
//	})
//	if err != nil {
//	    return err
//	}
//	_, err = render.WriteFiles("out", files)
package render

import (
	"context"

	"github.com/pthm/minazuki/internal/render"
	_ "github.com/pthm/minazuki/internal/render/gogen"  // registers "go"
	_ "github.com/pthm/minazuki/internal/render/sqlgen" // registers "sql"
	"github.com/pthm/minazuki/internal/render/tmplgen"  // registers "template"
	"github.com/pthm/minazuki/pkg/compiler"
)

// Config holds generation options.
type Config = render.Config

// Generator produces files from a resolved model.
type Generator = render.Generator

// DefaultIDPrefix precedes the zero-padded entity index in "-id-"
// template paths.
const DefaultIDPrefix = tmplgen.DefaultIDPrefix

// Generate runs the named runtime against m.
func Generate(ctx context.Context, runtime string, m *compiler.Model, cfg *Config) (map[string][]byte, error) {
	return render.Generate(ctx, runtime, m, cfg)
}

// ListRuntimes returns the registered runtime names, sorted.
func ListRuntimes() []string {
	return render.List()
}

// Registered reports whether a runtime is available.
func Registered(runtime string) bool {
	return render.Registered(runtime)
}

// Register adds a custom generator. It panics if the name is taken.
func Register(g Generator) {
	render.Register(g)
}

// WriteFiles writes a file map under dir and returns the written paths.
func WriteFiles(dir string, files map[string][]byte) ([]string, error) {
	return render.WriteFiles(dir, files)
}
