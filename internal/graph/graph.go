// Package graph builds the dependency graph between recipes and
// ingredients discovered during import, and detects cycles among
// sub-recipe references before any commit is attempted.
//
// Kept small and single-purpose: one exported type plus a handful of
// methods, no sub-recipe nesting concept borrowed from elsewhere —
// this is new territory, a plain adjacency map with three-colour DFS.
package graph

import "github.com/menucost/engine/internal/importerr"

// Node identifies one entity by kind and slug.
type Node struct {
	Kind string
	Slug string
}

// Graph is a directed graph of "depends on" edges: Recipe A depending
// on ingredient/sub-recipe B is represented as an edge A -> B.
type Graph struct {
	edges map[Node][]Node
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{edges: make(map[Node][]Node)}
}

// AddNode registers n with no dependencies if it is not already
// present. Safe to call repeatedly.
func (g *Graph) AddNode(n Node) {
	if _, ok := g.edges[n]; !ok {
		g.edges[n] = nil
	}
}

// SetDependency records that dependent consumes referent. Both nodes
// are implicitly added if absent.
func (g *Graph) SetDependency(dependent, referent Node) {
	g.AddNode(dependent)
	g.AddNode(referent)
	g.edges[dependent] = append(g.edges[dependent], referent)
}

// Dependencies returns the direct dependencies of n in insertion order.
func (g *Graph) Dependencies(n Node) []Node {
	return g.edges[n]
}

// Nodes returns every node registered in the graph, in no particular
// order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.edges))
	for n := range g.edges {
		out = append(out, n)
	}
	return out
}

// color is the three-colour DFS marker: unvisited nodes are absent from
// the map, visiting nodes are colorGray, finished nodes are colorBlack.
type color int

const (
	colorGray color = iota + 1
	colorBlack
)

// DetectCycle runs a three-colour depth-first search over the whole
// graph and returns the first cycle found as an *importerr.CycleError,
// or nil if the graph is acyclic.
func (g *Graph) DetectCycle() error {
	colors := make(map[Node]color, len(g.edges))
	var path []Node

	var visit func(n Node) error
	visit = func(n Node) error {
		colors[n] = colorGray
		path = append(path, n)

		for _, dep := range g.edges[n] {
			switch colors[dep] {
			case colorGray:
				cyclePath := append(append([]Node{}, path...), dep)
				return &importerr.CycleError{Path: nodeLabels(cyclePath)}
			case colorBlack:
				continue
			default:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		colors[n] = colorBlack
		path = path[:len(path)-1]
		return nil
	}

	for n := range g.edges {
		if colors[n] == 0 {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// TopoOrder returns nodes in dependency-first (post-order) order: every
// node appears after all of its dependencies. It assumes the graph is
// already known to be acyclic — call DetectCycle first.
func (g *Graph) TopoOrder() []Node {
	visited := make(map[Node]bool, len(g.edges))
	var order []Node

	var visit func(n Node)
	visit = func(n Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, dep := range g.edges[n] {
			visit(dep)
		}
		order = append(order, n)
	}

	for n := range g.edges {
		visit(n)
	}
	return order
}

func nodeLabels(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Kind + ":" + n.Slug
	}
	return out
}
