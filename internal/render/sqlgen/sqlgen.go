// Package sqlgen renders a resolved model as PostgreSQL DDL.
//
// Tables are created in dependency order, so every inheritance and
// ownership foreign key points at a table that already exists:
//
//   - every table is named after the entity's plural form
//   - root entities get a "_id BIGSERIAL" key
//   - an entity with a parent shares its parent's key (class table
//     inheritance): "_id BIGINT PRIMARY KEY REFERENCES parent"
//   - collections carry "_owner_id" referencing the owner, indexed
//   - junctions hold the two member keys as a composite primary key
//   - reference fields become "<field>_id" columns whose foreign keys are
//     added with ALTER TABLE once every table exists
//
// Entities with ancestors also get a "<table>_composed" view joining the
// ancestor tables, with ancestor columns prefixed by the ancestor name.
//
// Two files are produced: schema.sql and drop.sql, which drops
// everything in reverse order.
package sqlgen

import (
	"context"
	"fmt"

	"github.com/pthm/minazuki/internal/render"
	"github.com/pthm/minazuki/internal/render/sqlgen/sqldsl"
	"github.com/pthm/minazuki/internal/resolve"
	"github.com/pthm/minazuki/pkg/schema"
)

// Column names shared by every table.
const (
	IDColumn    = "_id"
	OwnerColumn = "_owner_id"
)

func init() {
	render.Register(&Generator{})
}

// Generator implements render.Generator for PostgreSQL DDL.
type Generator struct{}

// Name returns "sql" as the runtime identifier.
func (g *Generator) Name() string { return "sql" }

// DefaultConfig returns default configuration for DDL generation.
func (g *Generator) DefaultConfig() *render.Config {
	return &render.Config{Options: make(map[string]any)}
}

// Generate renders schema.sql and drop.sql.
func (g *Generator) Generate(ctx context.Context, m *resolve.Model, cfg *render.Config) (map[string][]byte, error) {
	if cfg == nil {
		cfg = g.DefaultConfig()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	create := sqldsl.Script{Header: header(cfg)}
	drop := sqldsl.Script{Header: header(cfg)}
	var (
		fks   []sqldsl.Stmt
		views []sqldsl.Stmt
	)

	for _, e := range m.Entities {
		table, indexes := Table(m, e)
		create.Add(table)
		create.Add(sqldsl.CommentOn{Kind: "TABLE", Name: e.Plural, Text: e.Label})
		create.Add(indexes...)
		fks = append(fks, ForeignKeys(m, e)...)
		if v, ok := ComposedView(m, e); ok {
			views = append(views, v)
		}
	}
	create.Add(fks...)
	create.Add(views...)

	for i := len(views) - 1; i >= 0; i-- {
		drop.Add(sqldsl.DropView{Name: views[i].(sqldsl.CreateView).Name})
	}
	for i := len(m.Entities) - 1; i >= 0; i-- {
		drop.Add(sqldsl.DropTable{Name: m.Entities[i].Plural, IfExists: true, Cascade: true})
	}

	return map[string][]byte{
		"schema.sql": []byte(create.SQL()),
		"drop.sql":   []byte(drop.SQL()),
	}, nil
}

func header(cfg *render.Config) []string {
	h := "Code generated by minazuki"
	if cfg.Version != "" {
		h += " " + cfg.Version
	}
	lines := []string{h + ". DO NOT EDIT."}
	if cfg.SourcePath != "" {
		lines = append(lines, "Source: "+cfg.SourcePath)
	}
	return lines
}

// ColumnName returns the column a field is stored in.
func ColumnName(f schema.Field) string {
	if f.IsReference() {
		return f.Name + "_id"
	}
	return f.Name
}

// Table returns the CREATE TABLE statement for e and its indexes.
func Table(m *resolve.Model, e *resolve.Entity) (sqldsl.CreateTable, []sqldsl.Stmt) {
	t := sqldsl.CreateTable{Name: e.Plural}
	var indexes []sqldsl.Stmt

	if e.Junction {
		cols := memberColumns(e)
		for i, member := range e.Members {
			t.Columns = append(t.Columns, sqldsl.ColumnDef{
				Name:       cols[i],
				Type:       sqldsl.BigInt,
				NotNull:    true,
				References: refTo(m, member, "CASCADE"),
			})
		}
		t.PrimaryKey = cols
		// The primary key covers lookups by the first member.
		indexes = append(indexes, sqldsl.CreateIndex{Table: e.Plural, Columns: cols[1:]})
		return t, indexes
	}

	if e.Parent != "" {
		t.Columns = append(t.Columns, sqldsl.ColumnDef{
			Name:       IDColumn,
			Type:       sqldsl.BigInt,
			PrimaryKey: true,
			References: refTo(m, e.Parent, "CASCADE"),
		})
	} else {
		t.Columns = append(t.Columns, sqldsl.ColumnDef{Name: IDColumn, Type: sqldsl.BigSerial, PrimaryKey: true})
	}

	if e.Owner != "" {
		t.Columns = append(t.Columns, sqldsl.ColumnDef{
			Name:       OwnerColumn,
			Type:       sqldsl.BigInt,
			NotNull:    true,
			References: refTo(m, e.Owner, "CASCADE"),
		})
		indexes = append(indexes, sqldsl.CreateIndex{Table: e.Plural, Columns: []string{OwnerColumn}})
	}

	for _, f := range e.Fields {
		col := sqldsl.ColumnDef{
			Name:    ColumnName(f),
			Type:    columnType(f),
			NotNull: optionSet(f, "required"),
			Unique:  optionSet(f, "unique"),
		}
		t.Columns = append(t.Columns, col)
		if optionSet(f, "index") && !col.Unique && (f.IsIndexable() || f.IsReference()) {
			indexes = append(indexes, sqldsl.CreateIndex{Table: e.Plural, Columns: []string{col.Name}})
		}
	}
	return t, indexes
}

// ForeignKeys returns the deferred foreign keys of e's reference fields.
// References to unknown entities get no constraint.
func ForeignKeys(m *resolve.Model, e *resolve.Entity) []sqldsl.Stmt {
	var out []sqldsl.Stmt
	for _, f := range e.Fields {
		if !f.IsReference() {
			continue
		}
		ref := refTo(m, f.Type, "SET NULL")
		if ref == nil {
			continue
		}
		if optionSet(f, "required") {
			ref.OnDelete = "CASCADE"
		}
		out = append(out, sqldsl.AddForeignKey{Table: e.Plural, Column: ColumnName(f), Ref: *ref})
	}
	return out
}

// ComposedView returns a view exposing e's own columns together with the
// columns of every ancestor, prefixed "<ancestor>_". It reports false for
// entities without ancestors.
func ComposedView(m *resolve.Model, e *resolve.Entity) (sqldsl.CreateView, bool) {
	if len(e.Composed) == 0 {
		return sqldsl.CreateView{}, false
	}

	const self = "c"
	q := sqldsl.SelectStmt{
		Columns: []sqldsl.Expr{sqldsl.Col{Table: self, Column: IDColumn}},
		From:    sqldsl.TableRef{Name: e.Plural, Alias: self},
	}
	for i, anc := range e.Composed {
		alias := fmt.Sprintf("a%d", i)
		ancEntity, ok := m.Entity(anc.Entity)
		if !ok {
			continue
		}
		q.Joins = append(q.Joins, sqldsl.JoinClause{
			Type:  "INNER",
			Table: sqldsl.TableRef{Name: ancEntity.Plural, Alias: alias},
			On:    sqldsl.Eq{Left: sqldsl.Col{Table: alias, Column: IDColumn}, Right: sqldsl.Col{Table: self, Column: IDColumn}},
		})
		for _, f := range anc.Fields {
			q.Columns = append(q.Columns, sqldsl.Alias{
				Expr: sqldsl.Col{Table: alias, Column: ColumnName(f)},
				Name: anc.Entity + "_" + ColumnName(f),
			})
		}
	}
	if e.Owner != "" {
		q.Columns = append(q.Columns, sqldsl.Col{Table: self, Column: OwnerColumn})
	}
	for _, f := range e.Fields {
		q.Columns = append(q.Columns, sqldsl.Col{Table: self, Column: ColumnName(f)})
	}
	return sqldsl.CreateView{Name: e.Plural + "_composed", Query: q}, true
}

// memberColumns names the junction key columns; a self junction uses
// source_/target_ prefixes.
func memberColumns(e *resolve.Entity) []string {
	a, b := e.Members[0], e.Members[1]
	if a == b {
		return []string{"source_" + a + "_id", "target_" + b + "_id"}
	}
	return []string{a + "_id", b + "_id"}
}

func refTo(m *resolve.Model, entity, onDelete string) *sqldsl.Reference {
	target, ok := m.Entity(entity)
	if !ok {
		return nil
	}
	return &sqldsl.Reference{Table: target.Plural, Column: IDColumn, OnDelete: onDelete}
}

func columnType(f schema.Field) string {
	switch f.Type {
	case schema.TypeString:
		return sqldsl.Text
	case schema.TypeInteger:
		return sqldsl.BigInt
	case schema.TypeBoolean:
		return sqldsl.Boolean
	default:
		return sqldsl.BigInt
	}
}

func optionSet(f schema.Field, name string) bool {
	v, ok := f.Option(name)
	if !ok {
		return false
	}
	b, isBool := v.(bool)
	return isBool && b
}
