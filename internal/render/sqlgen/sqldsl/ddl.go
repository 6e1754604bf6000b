package sqldsl

import (
	"fmt"
	"strings"
)

// Stmt is a complete SQL statement.
type Stmt interface {
	SQL() string
}

// Column types used by the generators.
const (
	BigSerial = "BIGSERIAL"
	BigInt    = "BIGINT"
	Text      = "TEXT"
	Boolean   = "BOOLEAN"
)

// Sqlf formats SQL with automatic dedenting and blank line removal.
// The SQL shape is visible in the format string.
func Sqlf(format string, args ...any) string {
	s := fmt.Sprintf(format, args...)
	lines := strings.Split(s, "\n")

	minIndent := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		if indent := len(line) - len(trimmed); minIndent < 0 || indent < minIndent {
			minIndent = indent
		}
	}

	var result []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) >= minIndent {
			result = append(result, line[minIndent:])
		} else {
			result = append(result, strings.TrimLeft(line, " \t"))
		}
	}
	return strings.Join(result, "\n")
}

// Optf returns formatted string if condition is true, empty string otherwise.
func Optf(cond bool, format string, args ...any) string {
	if !cond {
		return ""
	}
	return fmt.Sprintf(format, args...)
}

// Reference is the target of a foreign key.
type Reference struct {
	Table    string
	Column   string
	OnDelete string // "CASCADE", "SET NULL", ...; empty for the default
}

// SQL renders "REFERENCES table (column) [ON DELETE ...]".
func (r Reference) SQL() string {
	return "REFERENCES " + Ident(r.Table).SQL() + " (" + Ident(r.Column).SQL() + ")" +
		Optf(r.OnDelete != "", " ON DELETE %s", r.OnDelete)
}

// ColumnDef is a column in a CREATE TABLE statement.
type ColumnDef struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
	Unique     bool
	References *Reference
}

// SQL renders the column definition.
func (c ColumnDef) SQL() string {
	var b strings.Builder
	b.WriteString(Ident(c.Name).SQL())
	b.WriteByte(' ')
	b.WriteString(c.Type)
	switch {
	case c.PrimaryKey:
		b.WriteString(" PRIMARY KEY")
	case c.NotNull:
		b.WriteString(" NOT NULL")
	}
	if c.Unique && !c.PrimaryKey {
		b.WriteString(" UNIQUE")
	}
	if c.References != nil {
		b.WriteByte(' ')
		b.WriteString(c.References.SQL())
	}
	return b.String()
}

// CreateTable renders CREATE TABLE IF NOT EXISTS. PrimaryKey declares a
// composite key; single-column keys are set on the column.
type CreateTable struct {
	Name       string
	Columns    []ColumnDef
	PrimaryKey []string
}

// SQL renders the statement.
func (t CreateTable) SQL() string {
	lines := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		lines = append(lines, "    "+c.SQL())
	}
	if len(t.PrimaryKey) > 0 {
		lines = append(lines, "    PRIMARY KEY ("+identList(t.PrimaryKey)+")")
	}
	return "CREATE TABLE IF NOT EXISTS " + Ident(t.Name).SQL() + " (\n" +
		strings.Join(lines, ",\n") + "\n)"
}

// CreateIndex renders CREATE [UNIQUE] INDEX IF NOT EXISTS. The name
// defaults to idx_<table>_<columns>.
type CreateIndex struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

// IndexName returns the effective index name.
func (i CreateIndex) IndexName() Ident {
	if i.Name != "" {
		return Ident(i.Name)
	}
	return Name(append([]string{"idx", i.Table}, i.Columns...)...)
}

// SQL renders the statement.
func (i CreateIndex) SQL() string {
	return "CREATE " + Optf(i.Unique, "UNIQUE ") + "INDEX IF NOT EXISTS " + i.IndexName().SQL() +
		" ON " + Ident(i.Table).SQL() + " (" + identList(i.Columns) + ")"
}

// AddForeignKey renders ALTER TABLE ... ADD CONSTRAINT ... FOREIGN KEY.
// Foreign keys between tables that may be created in either order are
// added this way, after every table exists.
type AddForeignKey struct {
	Table  string
	Column string
	Ref    Reference
}

// ConstraintName returns fk_<table>_<column>.
func (f AddForeignKey) ConstraintName() Ident {
	return Name("fk", f.Table, f.Column)
}

// SQL renders the statement.
func (f AddForeignKey) SQL() string {
	return Sqlf(`
		ALTER TABLE %s
		    ADD CONSTRAINT %s
		    FOREIGN KEY (%s) %s`,
		Ident(f.Table).SQL(),
		f.ConstraintName().SQL(),
		Ident(f.Column).SQL(),
		f.Ref.SQL(),
	)
}

// CommentOn renders COMMENT ON <kind> <name> IS '<text>'.
type CommentOn struct {
	Kind string // "TABLE", "VIEW", "COLUMN"
	Name string // for COLUMN, "table.column"
	Text string
}

// SQL renders the statement.
func (c CommentOn) SQL() string {
	name := Ident(c.Name).SQL()
	if table, col, ok := strings.Cut(c.Name, "."); ok && c.Kind == "COLUMN" {
		name = Col{Table: table, Column: col}.SQL()
	}
	return "COMMENT ON " + c.Kind + " " + name + " IS " + Lit(c.Text).SQL()
}

// TableRef is a table in a FROM or JOIN clause.
type TableRef struct {
	Name  string
	Alias string
}

// TableSQL renders the table reference.
func (t TableRef) TableSQL() string {
	if t.Alias != "" {
		return Ident(t.Name).SQL() + " AS " + Ident(t.Alias).SQL()
	}
	return Ident(t.Name).SQL()
}

// JoinClause represents a SQL JOIN clause.
type JoinClause struct {
	Type  string // "INNER", "LEFT", ...
	Table TableRef
	On    Expr
}

// SQL renders the JOIN clause.
func (j JoinClause) SQL() string {
	return j.Type + " JOIN " + j.Table.TableSQL() + " ON " + j.On.SQL()
}

// SelectStmt represents a SELECT query.
type SelectStmt struct {
	Columns []Expr
	From    TableRef
	Joins   []JoinClause
}

// SQL renders the SELECT statement.
func (s SelectStmt) SQL() string {
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = "    " + c.SQL()
	}
	joins := make([]string, len(s.Joins))
	for i, j := range s.Joins {
		joins[i] = j.SQL()
	}
	return "SELECT\n" + strings.Join(cols, ",\n") + "\nFROM " + s.From.TableSQL() +
		Optf(len(joins) > 0, "\n%s", strings.Join(joins, "\n"))
}

// CreateView renders CREATE OR REPLACE VIEW.
type CreateView struct {
	Name  string
	Query SelectStmt
}

// SQL renders the statement.
func (v CreateView) SQL() string {
	return "CREATE OR REPLACE VIEW " + Ident(v.Name).SQL() + " AS\n" + v.Query.SQL()
}

// DropTable renders DROP TABLE.
type DropTable struct {
	Name     string
	IfExists bool
	Cascade  bool
}

// SQL renders the statement.
func (d DropTable) SQL() string {
	return "DROP TABLE " + Optf(d.IfExists, "IF EXISTS ") + Ident(d.Name).SQL() + Optf(d.Cascade, " CASCADE")
}

// DropView renders DROP VIEW IF EXISTS.
type DropView struct {
	Name string
}

// SQL renders the statement.
func (d DropView) SQL() string {
	return "DROP VIEW IF EXISTS " + Ident(d.Name).SQL()
}

// Script is an ordered list of statements with an optional header of
// "--" comment lines.
type Script struct {
	Header []string
	Stmts  []Stmt
}

// Add appends statements.
func (s *Script) Add(stmts ...Stmt) {
	s.Stmts = append(s.Stmts, stmts...)
}

// SQL renders the script: header, then each statement terminated by a
// semicolon and separated by a blank line.
func (s Script) SQL() string {
	var b strings.Builder
	for _, h := range s.Header {
		b.WriteString("-- ")
		b.WriteString(h)
		b.WriteByte('\n')
	}
	for i, st := range s.Stmts {
		if i > 0 || len(s.Header) > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(st.SQL())
		b.WriteString(";\n")
	}
	return b.String()
}

func identList(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = Ident(n).SQL()
	}
	return strings.Join(parts, ", ")
}
