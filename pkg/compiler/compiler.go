// Package compiler provides the public API for resolving minazuki schemas.
//
// This is a thin wrapper around internal/resolve that exposes only the
// types and functions needed by external consumers. Load schemas with
// pkg/parser or build them with pkg/schema, then call Resolve:
//
//	m, err := compiler.Resolve(s)
//	if err != nil {
//		return err
//	}
//	for _, e := range m.Entities {
//		fmt.Println(e.Index, e.Name, e.HasMany)
//	}
package compiler

import (
	"github.com/pthm/minazuki/internal/naming"
	"github.com/pthm/minazuki/internal/resolve"
)

// Model is a resolved schema: entities in dependency order plus the
// junction and ownership tables.
type Model = resolve.Model

// Entity is a resolved entity.
type Entity = resolve.Entity

// ComposedFields is the namespaced view of an entity's inherited fields.
type ComposedFields = resolve.ComposedFields

// AncestorFields holds the own fields of one ancestor.
type AncestorFields = resolve.AncestorFields

// CollectionRef links a local collection name to its expanded entity.
type CollectionRef = resolve.CollectionRef

// Edge is a dependency edge between two entities.
type Edge = resolve.Edge

// EdgeKind identifies why one entity depends on another.
type EdgeKind = resolve.EdgeKind

// Edge kinds.
const (
	EdgeInheritance = resolve.EdgeInheritance
	EdgeOwnership   = resolve.EdgeOwnership
	EdgeJunction    = resolve.EdgeJunction
)

// Option configures Resolve.
type Option = resolve.Option

// Inflector produces the naming forms attached to resolved entities.
type Inflector = naming.Inflector

// Resolve expands, relates, sorts and composes a schema.
var Resolve = resolve.Resolve

// WithInflector sets the inflector used for entity naming forms.
var WithInflector = resolve.WithInflector

// WithIrregular registers extra singular/plural pairs.
var WithIrregular = resolve.WithIrregular

// NewEnglishInflector returns the default English inflector with extra
// irregular singular/plural pairs.
var NewEnglishInflector = naming.NewEnglish

// Lower-level building blocks, for tools that need a single phase.
type (
	// Expansion is the output of Expand.
	Expansion = resolve.Expansion
	// ManyResolver classifies has-many declarations.
	ManyResolver = resolve.ManyResolver
	// Graph is a dependency graph over entity names.
	Graph = resolve.Graph
	// Compositor computes composed fields in dependency order.
	Compositor = resolve.Compositor
)

var (
	// Expand flattens nested collections into top-level entities.
	Expand = resolve.Expand
	// NewManyResolver returns an empty relationship resolver.
	NewManyResolver = resolve.NewManyResolver
	// NewGraph returns an empty dependency graph.
	NewGraph = resolve.NewGraph
	// NewCompositor returns a field compositor.
	NewCompositor = resolve.NewCompositor
)
