package resolve

import (
	"fmt"
	"slices"

	"github.com/pthm/minazuki/pkg/schema"
)

// AncestorFields holds the own fields of one ancestor.
type AncestorFields struct {
	Entity string
	Fields []schema.Field
}

// ComposedFields is the namespaced view of an entity's inherited fields:
// one entry per ancestor, root first, each holding exactly that
// ancestor's own fields. Fields with the same name on different ancestors
// live side by side and never overwrite each other.
type ComposedFields []AncestorFields

// Get returns the own fields of the named ancestor.
func (c ComposedFields) Get(ancestor string) ([]schema.Field, bool) {
	for _, a := range c {
		if a.Entity == ancestor {
			return a.Fields, true
		}
	}
	return nil, false
}

// Ancestors returns the ancestor names, root first.
func (c ComposedFields) Ancestors() []string {
	names := make([]string, len(c))
	for i, a := range c {
		names[i] = a.Entity
	}
	return names
}

// Len returns the total number of inherited fields.
func (c ComposedFields) Len() int {
	n := 0
	for _, a := range c {
		n += len(a.Fields)
	}
	return n
}

// Compositor computes ComposedFields for expanded entities. Results are
// memoized, and an entity's composition is built from its parent's, so
// entities must be composed in dependency order.
type Compositor struct {
	entities map[string]*Expanded
	memo     map[string]ComposedFields
}

// NewCompositor returns a compositor over the given expanded entities.
func NewCompositor(entities map[string]*Expanded) *Compositor {
	return &Compositor{
		entities: entities,
		memo:     make(map[string]ComposedFields, len(entities)),
	}
}

// Compose computes the composed fields of name. The parent of name must
// already have been composed; otherwise Compose returns a
// *schema.ResolutionError, which indicates a bug in the ordering.
func (c *Compositor) Compose(name string) (ComposedFields, error) {
	if cf, ok := c.memo[name]; ok {
		return cf, nil
	}
	e, ok := c.entities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownEntity, name)
	}

	parent := e.Definition.Parent
	if parent == "" {
		c.memo[name] = ComposedFields{}
		return c.memo[name], nil
	}
	inherited, ok := c.memo[parent]
	if !ok {
		return nil, schema.NewResolutionError("compose",
			fmt.Sprintf("entity %q composed before its parent %q", name, parent), nil)
	}
	p := c.entities[parent]

	cf := make(ComposedFields, 0, len(inherited)+1)
	cf = append(cf, inherited...)
	cf = append(cf, AncestorFields{
		Entity: parent,
		Fields: slices.Clone(p.Definition.Fields),
	})
	c.memo[name] = cf
	return cf, nil
}

// ComposedFields returns the memoized composition of name.
func (c *Compositor) ComposedFields(name string) (ComposedFields, bool) {
	cf, ok := c.memo[name]
	return cf, ok
}
