// Package depgraph orders skills by a fixed prerequisite graph.
package depgraph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Edge states that Prerequisite should be learned before Target.
type Edge struct {
	Prerequisite string `json:"prerequisite"`
	Target       string `json:"target"`
}

// Errors returned while building a graph.
var (
	ErrEmptyPrerequisite = errors.New("prerequisite is required")
	ErrEmptyTarget       = errors.New("target is required")
	ErrSelfEdge          = errors.New("prerequisite and target cannot be the same")
	ErrCyclicDependency  = errors.New("cyclic prerequisite dependency")
)

// Validate checks an edge in isolation.
func (e *Edge) Validate() error {
	if strings.TrimSpace(e.Prerequisite) == "" {
		return ErrEmptyPrerequisite
	}
	if strings.TrimSpace(e.Target) == "" {
		return ErrEmptyTarget
	}
	if strings.TrimSpace(e.Prerequisite) == strings.TrimSpace(e.Target) {
		return ErrSelfEdge
	}
	return nil
}

// Graph is an immutable prerequisite DAG with a precomputed topological order.
// It is safe for concurrent use.
type Graph struct {
	order []string            // full topological order
	rank  map[string]int      // node -> position in order
	preds map[string][]string // node -> immediate prerequisites, sorted
	edges int
}

// New builds a graph from edges. Duplicate edges are ignored.
// A cycle returns an error wrapping ErrCyclicDependency.
func New(edges []Edge) (*Graph, error) {
	succs := make(map[string][]string)
	indegree := make(map[string]int)
	seen := make(map[Edge]bool, len(edges))
	g := &Graph{
		rank:  make(map[string]int),
		preds: make(map[string][]string),
	}

	for i, e := range edges {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		e.Prerequisite = strings.TrimSpace(e.Prerequisite)
		e.Target = strings.TrimSpace(e.Target)
		if seen[e] {
			continue
		}
		seen[e] = true
		g.edges++

		if _, ok := indegree[e.Prerequisite]; !ok {
			indegree[e.Prerequisite] = 0
		}
		indegree[e.Target]++
		succs[e.Prerequisite] = append(succs[e.Prerequisite], e.Target)
		g.preds[e.Target] = append(g.preds[e.Target], e.Prerequisite)
	}
	for _, p := range g.preds {
		sort.Strings(p)
	}

	// Kahn's algorithm, taking ready nodes alphabetically.
	var ready []string
	for node, d := range indegree {
		if d == 0 {
			ready = append(ready, node)
		}
	}
	sort.Strings(ready)

	for len(ready) > 0 {
		node := ready[0]
		ready = ready[1:]
		g.rank[node] = len(g.order)
		g.order = append(g.order, node)

		released := false
		for _, next := range succs[node] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
				released = true
			}
		}
		if released {
			sort.Strings(ready)
		}
	}

	if len(g.order) < len(indegree) {
		var stuck []string
		for node, d := range indegree {
			if d > 0 {
				stuck = append(stuck, node)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w among: %s", ErrCyclicDependency, strings.Join(stuck, ", "))
	}

	return g, nil
}

// SortSkills returns the requested skills in prerequisite order.
// Skills the graph does not know are appended alphabetically. Duplicates are
// dropped.
func (g *Graph) SortSkills(requested []string) []string {
	var known, orphans []string
	seen := make(map[string]bool, len(requested))
	for _, s := range requested {
		if seen[s] {
			continue
		}
		seen[s] = true
		if _, ok := g.rank[s]; ok {
			known = append(known, s)
		} else {
			orphans = append(orphans, s)
		}
	}

	sort.Slice(known, func(i, j int) bool {
		return g.rank[known[i]] < g.rank[known[j]]
	})
	sort.Strings(orphans)
	return append(known, orphans...)
}

// Prerequisites returns the immediate prerequisites of skill, sorted.
func (g *Graph) Prerequisites(skill string) []string {
	return append([]string(nil), g.preds[skill]...)
}

// Order returns the full topological order.
func (g *Graph) Order() []string {
	return append([]string(nil), g.order...)
}

// Has reports whether skill appears in any edge.
func (g *Graph) Has(skill string) bool {
	_, ok := g.rank[skill]
	return ok
}

// Len returns the number of skills in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}
