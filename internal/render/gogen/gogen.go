// Package gogen renders a resolved model as Go struct definitions.
//
// Each entity becomes one file holding two types: <Name>Fields with the
// entity's own fields, and <Name>, which embeds <Name>Fields and carries
// every ancestor's fields namespaced in a field of type <Ancestor>Fields.
// Collections and has-many targets become slices. Junctions become
// structs holding the two member IDs. entities.go lists every entity in
// dependency order.
package gogen

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/pthm/minazuki/internal/naming"
	"github.com/pthm/minazuki/internal/render"
	"github.com/pthm/minazuki/internal/resolve"
	"github.com/pthm/minazuki/pkg/schema"
)

func init() {
	render.Register(&Generator{})
}

// Generator implements render.Generator for Go.
type Generator struct{}

// Name returns "go" as the runtime identifier.
func (g *Generator) Name() string { return "go" }

// DefaultConfig returns default configuration for Go code generation.
func (g *Generator) DefaultConfig() *render.Config {
	return &render.Config{
		Package: "models",
		Options: make(map[string]any),
	}
}

// Generate renders one file per entity plus entities.go.
func (g *Generator) Generate(ctx context.Context, m *resolve.Model, cfg *render.Config) (map[string][]byte, error) {
	if cfg == nil {
		cfg = g.DefaultConfig()
	}
	pkg := cfg.Package
	if pkg == "" {
		pkg = "models"
	}

	files := make(map[string][]byte, len(m.Entities)+1)
	for _, e := range m.Entities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f := newFile(pkg, cfg)
		if e.Junction {
			genJunction(f, m, e)
		} else {
			genEntity(f, m, e)
		}
		src, err := renderFile(f)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", e.Name, err)
		}
		files[fileName(e.Name)] = src
	}

	f := newFile(pkg, cfg)
	genIndex(f, m)
	src, err := renderFile(f)
	if err != nil {
		return nil, fmt.Errorf("rendering entities.go: %w", err)
	}
	files["entities.go"] = src
	return files, nil
}

func newFile(pkg string, cfg *render.Config) *jen.File {
	f := jen.NewFile(pkg)
	header := "Code generated by minazuki"
	if cfg.Version != "" {
		header += " " + cfg.Version
	}
	f.HeaderComment(header + ". DO NOT EDIT.")
	if cfg.SourcePath != "" {
		f.HeaderComment("Source: " + cfg.SourcePath)
	}
	return f
}

func renderFile(f *jen.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fileName keeps generated files out of the _test.go namespace.
func fileName(entity string) string {
	if strings.HasSuffix(entity, "_test") {
		return entity + "_entity.go"
	}
	return entity + ".go"
}

func genEntity(f *jen.File, m *resolve.Model, e *resolve.Entity) {
	fieldsType := e.Pascal + "Fields"
	f.Commentf("%s holds the own fields of %s.", fieldsType, e.Name)
	f.Type().Id(fieldsType).StructFunc(func(g *jen.Group) {
		for _, fd := range e.Fields {
			fieldCode(g, fd)
		}
	})

	used := map[string]bool{"ID": true, fieldsType: true}
	f.Commentf("%s is the %s entity.", e.Pascal, e.Label)
	f.Type().Id(e.Pascal).StructFunc(func(g *jen.Group) {
		g.Id("ID").Int64().Tag(map[string]string{"json": "_id"})
		if e.Owner != "" {
			owner, _ := m.Entity(e.Owner)
			name := "Owner" + owner.Pascal + "ID"
			used[name] = true
			g.Id(name).Int64().Tag(map[string]string{"json": "_owner_id"})
		}
		for _, a := range e.Composed {
			anc, _ := m.Entity(a.Entity)
			name := unique(used, anc.Pascal)
			g.Id(name).Id(anc.Pascal + "Fields").Tag(map[string]string{"json": a.Entity})
		}
		g.Id(fieldsType)
		for _, c := range e.Collections {
			target, _ := m.Entity(c.Entity)
			name := unique(used, naming.Default.Pascal(naming.Default.Plural(c.Local)))
			g.Id(name).Index().Id(target.Pascal).Tag(map[string]string{"json": naming.Default.Plural(c.Local) + ",omitempty"})
		}
		for _, t := range e.HasMany {
			target, _ := m.Entity(t)
			name := unique(used, target.Pascal+"List")
			g.Id(name).Index().Id(target.Pascal).Tag(map[string]string{"json": target.Plural + ",omitempty"})
		}
	})
}

func genJunction(f *jen.File, m *resolve.Model, e *resolve.Entity) {
	f.Commentf("%s links %s and %s.", e.Pascal, e.Members[0], e.Members[1])
	f.Type().Id(e.Pascal).StructFunc(func(g *jen.Group) {
		g.Id("ID").Int64().Tag(map[string]string{"json": "_id"})
		left, _ := m.Entity(e.Members[0])
		right, _ := m.Entity(e.Members[1])
		if left.Name == right.Name {
			g.Id("Source" + left.Pascal + "ID").Int64().Tag(map[string]string{"json": "source_" + left.Name + "_id"})
			g.Id("Target" + right.Pascal + "ID").Int64().Tag(map[string]string{"json": "target_" + right.Name + "_id"})
			return
		}
		g.Id(left.Pascal + "ID").Int64().Tag(map[string]string{"json": left.Name + "_id"})
		g.Id(right.Pascal + "ID").Int64().Tag(map[string]string{"json": right.Name + "_id"})
	})
}

func fieldCode(g *jen.Group, fd schema.Field) {
	name := naming.Default.Pascal(fd.Name)
	switch fd.Type {
	case schema.TypeString:
		g.Id(name).String().Tag(map[string]string{"json": fd.Name})
	case schema.TypeInteger:
		g.Id(name).Int64().Tag(map[string]string{"json": fd.Name})
	case schema.TypeBoolean:
		g.Id(name).Bool().Tag(map[string]string{"json": fd.Name})
	default:
		g.Commentf("%s references %s.", name+"ID", fd.Type)
		g.Id(name + "ID").Int64().Tag(map[string]string{"json": fd.Name + "_id"})
	}
}

func genIndex(f *jen.File, m *resolve.Model) {
	f.Comment("EntityInfo describes a generated entity.")
	f.Type().Id("EntityInfo").Struct(
		jen.Id("Index").Int(),
		jen.Id("Name").String(),
		jen.Id("Plural").String(),
		jen.Id("Owner").String(),
		jen.Id("Parent").String(),
		jen.Id("Junction").Bool(),
	)

	f.Comment("Entities lists every entity in dependency order.")
	f.Var().Id("Entities").Op("=").Index().Id("EntityInfo").ValuesFunc(func(vals *jen.Group) {
		for _, e := range m.Entities {
			vals.Values(jen.Dict{
				jen.Id("Index"):    jen.Lit(e.Index),
				jen.Id("Name"):     jen.Lit(e.Name),
				jen.Id("Plural"):   jen.Lit(e.Plural),
				jen.Id("Owner"):    jen.Lit(e.Owner),
				jen.Id("Parent"):   jen.Lit(e.Parent),
				jen.Id("Junction"): jen.Lit(e.Junction),
			})
		}
	})
}

// unique returns name, or name with a numeric suffix if it is taken.
func unique(used map[string]bool, name string) string {
	candidate := name
	for i := 2; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s%d", name, i)
	}
	used[candidate] = true
	return candidate
}
