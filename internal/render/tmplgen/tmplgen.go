// Package tmplgen renders a directory of text/template files against a
// resolved model.
//
// Every file matching **/*.tmpl under the template root is a template. A
// template whose path contains "-resourcename-" is rendered once per
// entity; any other template is rendered once for the whole model. The
// output path is the template path relative to the root with ".tmpl"
// stripped and these placeholders substituted:
//
//	-id-                    IDPrefix followed by the entity index, zero-padded to 6 digits
//	-resourcename-plural-   plural form of the entity name
//	-resourcename-          entity name
//
// So "db/migrate/-id-_create_-resourcename-plural-.rb.tmpl" renders
// song_lyric at index 7 as "db/migrate/20342034000007_create_song_lyrics.rb".
package tmplgen

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"text/template"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/pthm/minazuki/internal/naming"
	"github.com/pthm/minazuki/internal/render"
	"github.com/pthm/minazuki/internal/resolve"
	"github.com/pthm/minazuki/pkg/schema"
)

// Placeholders recognised in template paths.
const (
	PlaceholderID           = "-id-"
	PlaceholderPlural       = "-resourcename-plural-"
	PlaceholderResourceName = "-resourcename-"
)

// DefaultIDPrefix precedes the zero-padded entity index in "-id-".
const DefaultIDPrefix = "20342034"

// Pattern selects template files under the template root.
const Pattern = "**/*.tmpl"

func init() {
	render.Register(&Generator{})
}

// Generator implements render.Generator for template directories.
type Generator struct{}

// Name returns "template" as the runtime identifier.
func (g *Generator) Name() string { return "template" }

// DefaultConfig returns default configuration for template rendering.
func (g *Generator) DefaultConfig() *render.Config {
	return &render.Config{
		TemplateDir: "templates",
		IDPrefix:    DefaultIDPrefix,
		Options:     make(map[string]any),
	}
}

// Generate renders the templates found under cfg.TemplateDir.
func (g *Generator) Generate(ctx context.Context, m *resolve.Model, cfg *render.Config) (map[string][]byte, error) {
	if cfg == nil {
		cfg = g.DefaultConfig()
	}
	if cfg.TemplateDir == "" {
		return nil, fmt.Errorf("tmplgen: template directory not set")
	}
	info, err := os.Stat(cfg.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("tmplgen: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("tmplgen: %s is not a directory", cfg.TemplateDir)
	}
	return Render(ctx, os.DirFS(cfg.TemplateDir), m, cfg)
}

// EntityData is the data passed to per-entity templates. The entity's
// fields are promoted, so templates can use {{.Name}} or {{.Fields}}.
type EntityData struct {
	*resolve.Entity
	// ID is the substituted value of "-id-" for this entity.
	ID    string
	Model *resolve.Model
}

// ModelData is the data passed to templates rendered once.
type ModelData struct {
	*resolve.Model
}

type task struct {
	tmpl *template.Template
	path string
	data any
}

// Render renders every template in fsys. Templates run in parallel,
// bounded by cfg.Workers; the result does not depend on scheduling.
func Render(ctx context.Context, fsys fs.FS, m *resolve.Model, cfg *render.Config) (map[string][]byte, error) {
	prefix := cfg.IDPrefix
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	paths, err := doublestar.Glob(fsys, Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("tmplgen: glob templates: %w", err)
	}

	funcs := Funcs(m, naming.Default)
	var tasks []task
	for _, p := range paths {
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("tmplgen: reading %s: %w", p, err)
		}
		tmpl, err := template.New(p).Funcs(funcs).Option("missingkey=error").Parse(string(src))
		if err != nil {
			return nil, fmt.Errorf("tmplgen: parsing %s: %w", p, err)
		}

		if !strings.Contains(p, PlaceholderResourceName) {
			tasks = append(tasks, task{tmpl: tmpl, path: OutputPath(p, nil, prefix), data: ModelData{Model: m}})
			continue
		}
		for _, e := range m.Entities {
			tasks = append(tasks, task{
				tmpl: tmpl,
				path: OutputPath(p, e, prefix),
				data: EntityData{Entity: e, ID: EntityID(prefix, e.Index), Model: m},
			})
		}
	}

	seen := make(map[string]string, len(tasks))
	for _, t := range tasks {
		if prev, dup := seen[t.path]; dup {
			return nil, fmt.Errorf("tmplgen: templates %s and %s both render to %s", prev, t.tmpl.Name(), t.path)
		}
		seen[t.path] = t.tmpl.Name()
	}

	var mu sync.Mutex
	out := make(map[string][]byte, len(tasks))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, t := range tasks {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			var buf bytes.Buffer
			if err := t.tmpl.Execute(&buf, t.data); err != nil {
				return fmt.Errorf("tmplgen: execute %s for %s: %w", t.tmpl.Name(), t.path, err)
			}
			content := CollapseBlankLines(buf.Bytes())
			mu.Lock()
			out[t.path] = content
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// EntityID returns the "-id-" substitution for the entity at index.
func EntityID(prefix string, index int) string {
	return fmt.Sprintf("%s%06d", prefix, index)
}

// OutputPath maps a template path to its output path. e is nil for
// templates rendered once.
func OutputPath(tmplPath string, e *resolve.Entity, prefix string) string {
	p := strings.TrimSuffix(tmplPath, ".tmpl")
	if e == nil {
		return p
	}
	p = strings.ReplaceAll(p, PlaceholderID, EntityID(prefix, e.Index))
	p = strings.ReplaceAll(p, PlaceholderPlural, e.Plural)
	return strings.ReplaceAll(p, PlaceholderResourceName, e.Name)
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// CollapseBlankLines reduces every run of blank lines to one.
func CollapseBlankLines(b []byte) []byte {
	return blankRuns.ReplaceAll(b, []byte("\n\n"))
}

// Funcs returns the template function map: naming forms, field type
// predicates and entity lookup.
func Funcs(m *resolve.Model, inf naming.Inflector) template.FuncMap {
	return template.FuncMap{
		"singular":  inf.Singular,
		"plural":    inf.Plural,
		"pascal":    inf.Pascal,
		"label":     inf.Label,
		"basic":     func(f schema.Field) bool { return f.IsBasic() },
		"indexable": func(f schema.Field) bool { return f.IsIndexable() },
		"reference": func(f schema.Field) bool { return f.IsReference() },
		"entity": func(name string) *resolve.Entity {
			e, _ := m.Entity(name)
			return e
		},
	}
}
