package sqldsl

import (
	"regexp"
	"strings"

	"github.com/lib/pq"
)

// Expr is the interface that all SQL expression types implement.
type Expr interface {
	SQL() string
}

// Ident is an identifier: table, column, index or constraint name.
type Ident string

var bareIdent = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// reserved holds the PostgreSQL reserved key words that cannot be used
// as bare column or table names.
var reserved = map[string]bool{
	"all": true, "analyse": true, "analyze": true, "and": true, "any": true,
	"array": true, "as": true, "asc": true, "both": true, "case": true,
	"cast": true, "check": true, "collate": true, "column": true,
	"constraint": true, "create": true, "current_date": true,
	"current_role": true, "current_time": true, "current_timestamp": true,
	"current_user": true, "default": true, "deferrable": true, "desc": true,
	"distinct": true, "do": true, "else": true, "end": true, "except": true,
	"false": true, "fetch": true, "for": true, "foreign": true, "from": true,
	"grant": true, "group": true, "having": true, "in": true,
	"initially": true, "intersect": true, "into": true, "lateral": true,
	"leading": true, "limit": true, "localtime": true,
	"localtimestamp": true, "not": true, "null": true, "offset": true,
	"on": true, "only": true, "or": true, "order": true, "placing": true,
	"primary": true, "references": true, "returning": true, "select": true,
	"session_user": true, "some": true, "symmetric": true, "table": true,
	"then": true, "to": true, "trailing": true, "true": true, "union": true,
	"unique": true, "user": true, "using": true, "variadic": true,
	"when": true, "where": true, "window": true, "with": true,
}

// SQL renders the identifier, quoting it only when it is not a plain
// lowercase name or is a reserved word.
func (i Ident) SQL() string {
	s := string(i)
	if bareIdent.MatchString(s) && !reserved[s] {
		return s
	}
	return pq.QuoteIdentifier(s)
}

// MaxIdentLen is the longest identifier PostgreSQL keeps (NAMEDATALEN-1).
const MaxIdentLen = 63

// Name joins parts with "_" into an identifier, truncated to MaxIdentLen.
func Name(parts ...string) Ident {
	s := strings.Join(parts, "_")
	if len(s) > MaxIdentLen {
		s = s[:MaxIdentLen]
	}
	return Ident(s)
}

// Col represents a column reference (e.g., c._id).
type Col struct {
	Table  string
	Column string
}

// SQL renders the column reference.
func (c Col) SQL() string {
	if c.Table == "" {
		return Ident(c.Column).SQL()
	}
	return Ident(c.Table).SQL() + "." + Ident(c.Column).SQL()
}

// Lit represents a string literal.
type Lit string

// SQL renders the literal. Strings containing backslashes use the E''
// form.
func (l Lit) SQL() string {
	return pq.QuoteLiteral(string(l))
}

// Raw is an escape hatch for arbitrary SQL expressions.
type Raw string

// SQL renders the raw SQL as-is.
func (r Raw) SQL() string {
	return string(r)
}

// Alias wraps an expression with an alias (expr AS alias).
type Alias struct {
	Expr Expr
	Name string
}

// SQL renders the aliased expression.
func (a Alias) SQL() string {
	return a.Expr.SQL() + " AS " + Ident(a.Name).SQL()
}

// Eq represents an equality comparison (=).
type Eq struct {
	Left  Expr
	Right Expr
}

func (e Eq) SQL() string { return e.Left.SQL() + " = " + e.Right.SQL() }

// And joins conditions with AND.
func And(exprs ...Expr) Expr {
	if len(exprs) == 1 {
		return exprs[0]
	}
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.SQL()
	}
	return Raw("(" + strings.Join(parts, " AND ") + ")")
}
