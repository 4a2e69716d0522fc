// Package routegraph is a weighted, undirected city graph with Dijkstra
// shortest-path and radius searches.
package routegraph

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"bookingmx/internal/domain"
)

// Graph maps each city to its neighbours and their distances. Every edge is
// stored in both directions with the same weight. Safe for concurrent use.
type Graph struct {
	mu  sync.RWMutex
	adj map[string]map[string]float64
}

func New() *Graph { return &Graph{adj: make(map[string]map[string]float64)} }

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: city name cannot be empty", domain.ErrInvalidArgument)
	}
	return nil
}

func checkWeight(a, b string, d float64) error {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return fmt.Errorf("%w: distance %s-%s must be a finite non-negative number", domain.ErrInvalidArgument, a, b)
	}
	if a == b {
		return fmt.Errorf("%w: city %s cannot connect to itself", domain.ErrInvalidArgument, a)
	}
	return nil
}

// AddCity inserts name or replaces its whole neighbour set. Reverse edges are
// rewritten to match and unknown neighbours are created.
func (g *Graph) AddCity(name string, neighbors map[string]float64) error {
	if err := checkName(name); err != nil {
		return err
	}
	for n, d := range neighbors {
		if err := checkName(n); err != nil {
			return err
		}
		if err := checkWeight(name, n, d); err != nil {
			return err
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for old := range g.adj[name] {
		if _, keep := neighbors[old]; !keep {
			delete(g.adj[old], name)
		}
	}
	edges := make(map[string]float64, len(neighbors))
	for n, d := range neighbors {
		edges[n] = d
		g.ensure(n)[name] = d
	}
	g.adj[name] = edges
	return nil
}

// ensure returns the edge map of name, creating the city if needed. Caller holds mu.
func (g *Graph) ensure(name string) map[string]float64 {
	e, ok := g.adj[name]
	if !ok {
		e = make(map[string]float64)
		g.adj[name] = e
	}
	return e
}

// RemoveCity drops name and every edge that points at it.
func (g *Graph) RemoveCity(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	edges, ok := g.adj[name]
	if !ok {
		return false
	}
	for n := range edges {
		delete(g.adj[n], name)
	}
	// sweep in case an edge was one-sided
	for _, e := range g.adj {
		delete(e, name)
	}
	delete(g.adj, name)
	return true
}

// AddConnection sets the a-b distance in both directions, creating missing cities.
func (g *Graph) AddConnection(a, b string, d float64) error {
	if err := checkName(a); err != nil {
		return err
	}
	if err := checkName(b); err != nil {
		return err
	}
	if err := checkWeight(a, b, d); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensure(a)[b] = d
	g.ensure(b)[a] = d
	return nil
}

// RemoveConnection drops the a-b edge in both directions. Missing cities or
// edges are not an error; the result reports whether anything was removed.
func (g *Graph) RemoveConnection(a, b string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ab := g.adj[a][b]
	_, ba := g.adj[b][a]
	delete(g.adj[a], b)
	delete(g.adj[b], a)
	return ab || ba
}

// Distance is the direct edge weight between a and b.
func (g *Graph) Distance(a, b string) (float64, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.mustHave(a, b); err != nil {
		return 0, false, err
	}
	d, ok := g.adj[a][b]
	return d, ok, nil
}

// mustHave fails with ErrNotFound for the first absent city. Caller holds mu.
func (g *Graph) mustHave(names ...string) error {
	for _, n := range names {
		if _, ok := g.adj[n]; !ok {
			return fmt.Errorf("%w: city %s", domain.ErrNotFound, n)
		}
	}
	return nil
}

func (g *Graph) HasCity(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.adj[name]
	return ok
}

// Cities lists every city in name order.
func (g *Graph) Cities() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.adj))
	for n := range g.adj {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Neighbors returns a copy of name's edges.
func (g *Graph) Neighbors(name string) (map[string]float64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.mustHave(name); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(g.adj[name]))
	for n, d := range g.adj[name] {
		out[n] = d
	}
	return out, nil
}
