package resolve

import (
	"fmt"
	"slices"

	"github.com/pthm/minazuki/pkg/schema"
)

// ManyResolver classifies has-many declarations.
//
// A declaration "A has many B" is direct when B does not declare has-many
// back to A, and mutual when it does. Each mutual pair is backed by exactly
// one junction entity named schema.JunctionName(A, B). A self-relation
// "A has many A" is mutual by definition.
//
// Entities are registered with Add. Resolution happens once, on the first
// query; registering afterwards returns schema.ErrResolverSealed.
type ManyResolver struct {
	names   []string
	targets map[string][]string

	sealed    bool
	err       error
	hasMany   map[string][]string
	tables    map[string][]string
	junctions []string
}

// NewManyResolver returns an empty resolver.
func NewManyResolver() *ManyResolver {
	return &ManyResolver{targets: make(map[string][]string)}
}

// Add registers an entity and its declared has-many targets. Duplicate
// targets are ignored.
func (r *ManyResolver) Add(name string, def schema.EntityDefinition) error {
	if r.sealed {
		return fmt.Errorf("%w: cannot add %q", schema.ErrResolverSealed, name)
	}
	if _, exists := r.targets[name]; exists {
		return schema.NewDefinitionError(name, "", "entity registered more than once", nil)
	}
	targets := make([]string, 0, len(def.HasMany))
	for _, t := range def.HasMany {
		if !slices.Contains(targets, t) {
			targets = append(targets, t)
		}
	}
	r.names = append(r.names, name)
	r.targets[name] = targets
	return nil
}

// Validate resolves all registered declarations and reports the first
// definition error: a target naming no registered entity, or a junction
// name colliding with a registered entity or with the junction of another
// pair.
func (r *ManyResolver) Validate() error {
	return r.resolve()
}

// HasManyOf returns the resolved targets of name's own declarations, in
// declaration order: the junction name for mutual relations, the target
// name otherwise. An entity that only appears as the target of someone
// else's direct relation gets an empty result.
func (r *ManyResolver) HasManyOf(name string) ([]string, error) {
	if err := r.resolve(); err != nil {
		return nil, err
	}
	if _, ok := r.targets[name]; !ok {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownEntity, name)
	}
	return slices.Clone(r.hasMany[name]), nil
}

// MappingTables returns every junction with its two member names, in
// byte-wise order. A self-relation junction lists its member twice.
func (r *ManyResolver) MappingTables() (map[string][]string, error) {
	if err := r.resolve(); err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(r.tables))
	for j, members := range r.tables {
		out[j] = slices.Clone(members)
	}
	return out, nil
}

// Junctions returns junction names in creation order.
func (r *ManyResolver) Junctions() ([]string, error) {
	if err := r.resolve(); err != nil {
		return nil, err
	}
	return slices.Clone(r.junctions), nil
}

// Members returns the members of junction j, in byte-wise order.
func (r *ManyResolver) Members(j string) ([]string, error) {
	if err := r.resolve(); err != nil {
		return nil, err
	}
	m, ok := r.tables[j]
	if !ok {
		return nil, fmt.Errorf("%w: junction %q", schema.ErrUnknownEntity, j)
	}
	return slices.Clone(m), nil
}

func (r *ManyResolver) resolve() error {
	if r.sealed {
		return r.err
	}
	r.sealed = true
	r.hasMany = make(map[string][]string, len(r.names))
	r.tables = make(map[string][]string)

	for _, name := range r.names {
		resolved := make([]string, 0, len(r.targets[name]))
		for _, t := range r.targets[name] {
			back, known := r.targets[t]
			if !known {
				r.err = schema.NewDefinitionError(name, "",
					fmt.Sprintf("has_many target %q is not a known entity", t), schema.ErrUnknownEntity)
				return r.err
			}
			if t != name && !slices.Contains(back, name) {
				resolved = append(resolved, t)
				continue
			}
			j := schema.JunctionName(name, t)
			members := []string{name, t}
			slices.Sort(members)
			if prev, exists := r.tables[j]; exists {
				// Distinct pairs can join to the same name: {a, b_c} and {a_b, c}.
				if !slices.Equal(prev, members) {
					r.err = schema.NewDefinitionError(j, "",
						fmt.Sprintf("junction for %q and %q collides with junction for %q and %q",
							members[0], members[1], prev[0], prev[1]), nil)
					return r.err
				}
			} else {
				if _, taken := r.targets[j]; taken {
					r.err = schema.NewDefinitionError(j, "",
						fmt.Sprintf("junction for %q and %q collides with a declared entity", name, t), nil)
					return r.err
				}
				r.tables[j] = members
				r.junctions = append(r.junctions, j)
			}
			resolved = append(resolved, j)
		}
		r.hasMany[name] = resolved
	}
	return nil
}
