package resolve

import (
	"slices"
	"strings"

	"github.com/pthm/minazuki/pkg/schema"
)

// EdgeKind identifies why one entity depends on another.
type EdgeKind int

const (
	// EdgeInheritance: child depends on parent.
	EdgeInheritance EdgeKind = iota + 1
	// EdgeOwnership: collection depends on owner.
	EdgeOwnership
	// EdgeJunction: junction depends on each member.
	EdgeJunction
)

// String returns the edge kind name.
func (k EdgeKind) String() string {
	switch k {
	case EdgeInheritance:
		return "inheritance"
	case EdgeOwnership:
		return "ownership"
	case EdgeJunction:
		return "junction"
	default:
		return "unknown"
	}
}

// Edge records that From depends on To.
type Edge struct {
	From string
	To   string
	Kind EdgeKind
}

// Graph is a dependency graph over entity names. Nodes remember their
// registration order, which breaks ties within a level.
type Graph struct {
	nodes []string
	index map[string]int
	deps  map[string][]string
	edges []Edge
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		index: make(map[string]int),
		deps:  make(map[string][]string),
	}
}

// AddNode registers a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	if _, ok := g.index[name]; ok {
		return
	}
	g.index[name] = len(g.nodes)
	g.nodes = append(g.nodes, name)
}

// AddEdge records that from depends on to, registering both nodes if
// needed. Repeated dependencies between the same pair are kept once.
func (g *Graph) AddEdge(from, to string, kind EdgeKind) {
	g.AddNode(from)
	g.AddNode(to)
	if slices.Contains(g.deps[from], to) {
		return
	}
	g.deps[from] = append(g.deps[from], to)
	g.edges = append(g.edges, Edge{From: from, To: to, Kind: kind})
}

// Nodes returns node names in registration order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// Dependencies returns the direct dependencies of name.
func (g *Graph) Dependencies(name string) []string {
	return slices.Clone(g.deps[name])
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// Levels stratifies the graph with Kahn's algorithm. Level 0 holds the
// nodes without dependencies; level n holds the nodes whose dependencies
// all sit in earlier levels. Within a level nodes keep registration order.
//
// If some nodes can never be placed the graph has a cycle, and Levels
// returns a *schema.ResolutionError wrapping schema.ErrCyclicSchema that
// names one cycle.
func (g *Graph) Levels() ([][]string, error) {
	pending := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string)
	var current []string
	for _, n := range g.nodes {
		pending[n] = len(g.deps[n])
		for _, d := range g.deps[n] {
			dependents[d] = append(dependents[d], n)
		}
		if pending[n] == 0 {
			current = append(current, n)
		}
	}

	var levels [][]string
	placed := 0
	for len(current) > 0 {
		levels = append(levels, current)
		placed += len(current)

		var next []string
		for _, n := range current {
			for _, m := range dependents[n] {
				pending[m]--
				if pending[m] == 0 {
					next = append(next, m)
				}
			}
		}
		slices.SortFunc(next, func(a, b string) int {
			return g.index[a] - g.index[b]
		})
		current = next
	}

	if placed < len(g.nodes) {
		remaining := make(map[string]bool)
		for _, n := range g.nodes {
			if pending[n] > 0 {
				remaining[n] = true
			}
		}
		cycle := g.findCycle(remaining)
		return nil, schema.NewResolutionError("sort",
			"dependency cycle: "+strings.Join(cycle, " → "), schema.ErrCyclicSchema)
	}
	return levels, nil
}

// Order returns the levels flattened into one safe emission order: every
// node appears after all of its dependencies.
func (g *Graph) Order() ([]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	order := make([]string, 0, len(g.nodes))
	for _, l := range levels {
		order = append(order, l...)
	}
	return order, nil
}

type color int

const (
	white color = iota
	gray
	black
)

// findCycle runs a three-color DFS restricted to nodes and returns the
// first cycle found as a closed path ("a", "b", "a").
func (g *Graph) findCycle(nodes map[string]bool) []string {
	colors := make(map[string]color)
	parent := make(map[string]string)

	var dfs func(n string) []string
	dfs = func(n string) []string {
		colors[n] = gray
		for _, d := range g.deps[n] {
			if !nodes[d] {
				continue
			}
			switch colors[d] {
			case gray:
				return reconstructCycle(n, d, parent)
			case white:
				parent[d] = n
				if cycle := dfs(d); cycle != nil {
					return cycle
				}
			}
		}
		colors[n] = black
		return nil
	}

	for _, n := range g.nodes {
		if nodes[n] && colors[n] == white {
			if cycle := dfs(n); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// reconstructCycle builds the path from the back-edge target to itself.
// from is where the back-edge was found, to is the gray node it points at.
func reconstructCycle(from, to string, parent map[string]string) []string {
	cycle := []string{from}
	for n := from; n != to; {
		n = parent[n]
		cycle = append([]string{n}, cycle...)
	}
	return append(cycle, to)
}
