// Package naming derives the singular, plural, Go identifier and label
// forms of entity and field names.
package naming

import (
	"strings"
	"sync"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Inflector produces the naming forms attached to every resolved entity.
type Inflector interface {
	Singular(name string) string
	Plural(name string) string
	Pascal(name string) string
	Label(name string) string
}

// acronyms are kept upper-case in Pascal forms.
var acronyms = []string{
	"API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP",
	"HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SLA",
	"SMTP", "SQL", "SSH", "TCP", "TLS", "TTL", "UDP", "UI", "UID", "URI",
	"URL", "UTF8", "UUID", "VM", "XML", "XMPP", "XSRF", "XSS",
}

// English is an Inflector backed by the go-openapi/inflect default
// ruleset.
type English struct {
	rules *inflect.Ruleset
	upper map[string]bool
}

var _ Inflector = (*English)(nil)

// NewEnglish returns an English inflector. Extra irregular pairs are
// given as singular, plural.
func NewEnglish(irregular ...[2]string) *English {
	rules := inflect.NewDefaultRuleset()
	upper := make(map[string]bool, len(acronyms))
	for _, w := range acronyms {
		rules.AddAcronym(w)
		upper[w] = true
	}
	for _, p := range irregular {
		rules.AddIrregular(p[0], p[1])
	}
	return &English{rules: rules, upper: upper}
}

// A Caser is stateful, so each concurrent Label call takes its own.
var titlers = sync.Pool{
	New: func() any {
		c := cases.Title(language.English)
		return &c
	},
}

// Default is the inflector used when none is configured.
var Default Inflector = NewEnglish()

// Singular returns the singular form of the last word of name.
func (e *English) Singular(name string) string {
	return e.mapLast(name, e.rules.Singularize)
}

// Plural returns the plural form of the last word of name, so
// "song_lyric" becomes "song_lyrics". A word with identical singular and
// plural forms is returned unchanged.
func (e *English) Plural(name string) string {
	return e.mapLast(name, e.rules.Pluralize)
}

// Pascal converts a snake_case name to a Go-style exported identifier.
//
//	song_lyric_line => SongLyricLine
//	user_id         => UserID
func (e *English) Pascal(name string) string {
	words := splitWords(name)
	for i, w := range words {
		if u := strings.ToUpper(w); e.upper[u] {
			words[i] = u
			continue
		}
		words[i] = e.rules.Capitalize(w)
	}
	return strings.Join(words, "")
}

// Label returns a human readable title.
//
//	song_lyric_line => Song Lyric Line
func (e *English) Label(name string) string {
	titler := titlers.Get().(*cases.Caser)
	defer titlers.Put(titler)

	words := splitWords(name)
	for i, w := range words {
		if u := strings.ToUpper(w); e.upper[u] {
			words[i] = u
			continue
		}
		words[i] = titler.String(w)
	}
	return strings.Join(words, " ")
}

func (e *English) mapLast(name string, fn func(string) string) string {
	i := strings.LastIndex(name, "_")
	if i < 0 {
		return fn(name)
	}
	return name[:i+1] + fn(name[i+1:])
}

func splitWords(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
}
