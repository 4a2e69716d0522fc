package routegraph

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"bookingmx/internal/domain"
)

type Route struct {
	Path     []string `json:"path"`
	Distance float64  `json:"distance"`
}

type Nearby struct {
	City     string  `json:"city"`
	Distance float64 `json:"distance"`
}

type item struct {
	city string
	dist float64
}

// queue pops by distance, then by city name.
type queue []item

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].city < q[j].city
}
func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any)   { *q = append(*q, x.(item)) }
func (q *queue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}

// search settles cities from start in (distance, name) order. A predecessor
// is only replaced by a strictly shorter path, so among equal-cost routes the
// one through the earliest settled city wins. limit < 0 means unbounded; stop
// ends the search once that city settles. Caller holds mu.
func (g *Graph) search(start, stop string, limit float64) (map[string]float64, map[string]string) {
	dist := map[string]float64{start: 0}
	prev := make(map[string]string)
	settled := make(map[string]bool)
	q := &queue{{city: start}}

	for q.Len() > 0 {
		cur := heap.Pop(q).(item)
		if settled[cur.city] {
			continue
		}
		settled[cur.city] = true
		if cur.city == stop {
			break
		}
		for n, w := range g.adj[cur.city] {
			if settled[n] {
				continue
			}
			nd := cur.dist + w
			if limit >= 0 && nd > limit {
				continue
			}
			if d, seen := dist[n]; !seen || nd < d {
				dist[n] = nd
				prev[n] = cur.city
				heap.Push(q, item{city: n, dist: nd})
			}
		}
	}
	return dist, prev
}

// ShortestPath returns the cheapest route from start to end.
func (g *Graph) ShortestPath(start, end string) (Route, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.mustHave(start, end); err != nil {
		return Route{}, err
	}
	if start == end {
		return Route{Path: []string{start}, Distance: 0}, nil
	}

	dist, prev := g.search(start, end, -1)
	total, ok := dist[end]
	if !ok {
		return Route{}, fmt.Errorf("%w: no route from %s to %s", domain.ErrNoPath, start, end)
	}
	path := []string{end}
	for c := end; c != start; {
		c = prev[c]
		path = append(path, c)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return Route{Path: path, Distance: total}, nil
}

// NearbyCities returns every city within maxDistance of start by graph
// distance, start excluded, nearest first and then by name.
func (g *Graph) NearbyCities(start string, maxDistance float64) ([]Nearby, error) {
	if maxDistance < 0 || math.IsNaN(maxDistance) {
		return nil, fmt.Errorf("%w: max distance must be non-negative", domain.ErrInvalidArgument)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.mustHave(start); err != nil {
		return nil, err
	}

	dist, _ := g.search(start, "", maxDistance)
	out := make([]Nearby, 0, len(dist))
	for c, d := range dist {
		if c != start {
			out = append(out, Nearby{City: c, Distance: d})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].City < out[j].City
	})
	return out, nil
}
