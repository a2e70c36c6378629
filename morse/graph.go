package morse

import (
	"math"
	"sort"

	cc "github.com/notargets/gomorse/cellcomplex"
)

// Arc is one separatrix: a V-path from a critical (d+1)-cell Upper down to a
// critical d-cell Lower. Path starts at Upper and ends at Lower.
type Arc struct {
	ID          int
	Upper       cc.CellID
	Lower       cc.CellID
	Dim         cc.Dim // dimension of Lower
	Path        []cc.CellID
	Persistence float64
}

// Node is a critical cell with the arcs arriving from above (Up) and leaving
// downward (Down).
type Node struct {
	Cell cc.CellID
	Dim  cc.Dim
	Up   []int
	Down []int
}

type pairKey struct {
	upper, lower cc.CellID
}

// Graph is the Morse complex: critical cells joined by separatrices. Parallel
// arcs between the same pair are kept. Arc ids are never reused.
type Graph struct {
	cx      *cc.Complex
	nodes   map[cc.CellID]*Node
	arcs    map[int]*Arc
	pairs   map[pairKey]int
	nextArc int
}

func NewGraph(cx *cc.Complex) *Graph {
	return &Graph{
		cx:    cx,
		nodes: make(map[cc.CellID]*Node),
		arcs:  make(map[int]*Arc),
		pairs: make(map[pairKey]int),
	}
}

func (g *Graph) Complex() *cc.Complex { return g.cx }

// AddNode registers a critical cell. Adding an existing node is a no-op.
func (g *Graph) AddNode(c cc.CellID) *Node {
	if n, ok := g.nodes[c]; ok {
		return n
	}
	n := &Node{Cell: c, Dim: g.cx.Dim(c)}
	g.nodes[c] = n
	return n
}

func (g *Graph) Node(c cc.CellID) (*Node, bool) {
	n, ok := g.nodes[c]
	return n, ok
}

func (g *Graph) HasNode(c cc.CellID) bool {
	_, ok := g.nodes[c]
	return ok
}

// Nodes lists the nodes of dimension d in ascending cell order.
func (g *Graph) Nodes(d cc.Dim) (out []*Node) {
	for _, n := range g.nodes {
		if n.Dim == d {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cell < out[j].Cell })
	return
}

// NumNodes counts nodes per dimension.
func (g *Graph) NumNodes() (n [3]int) {
	for _, nd := range g.nodes {
		n[nd.Dim]++
	}
	return
}

// AddArc records the separatrix running along path and returns it. Both
// endpoints become nodes if they were not already.
func (g *Graph) AddArc(path []cc.CellID) *Arc {
	upper, lower := path[0], path[len(path)-1]
	a := &Arc{
		ID:          g.nextArc,
		Upper:       upper,
		Lower:       lower,
		Dim:         g.cx.Dim(lower),
		Path:        path,
		Persistence: math.Abs(g.cx.Value(upper) - g.cx.Value(lower)),
	}
	g.nextArc++
	g.arcs[a.ID] = a
	g.pairs[pairKey{upper, lower}]++
	un, ln := g.AddNode(upper), g.AddNode(lower)
	un.Down = append(un.Down, a.ID)
	ln.Up = append(ln.Up, a.ID)
	return a
}

func (g *Graph) Arc(id int) (*Arc, bool) {
	a, ok := g.arcs[id]
	return a, ok
}

// Arcs lists every arc in ascending id order.
func (g *Graph) Arcs() (out []*Arc) {
	out = make([]*Arc, 0, len(g.arcs))
	for _, a := range g.arcs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return
}

func (g *Graph) NumArcs() int { return len(g.arcs) }

// Multiplicity is the number of arcs joining upper to lower.
func (g *Graph) Multiplicity(upper, lower cc.CellID) int {
	return g.pairs[pairKey{upper, lower}]
}

// ArcsBetween lists the arcs joining upper to lower in ascending id order.
func (g *Graph) ArcsBetween(upper, lower cc.CellID) (out []*Arc) {
	n, ok := g.nodes[upper]
	if !ok {
		return
	}
	for _, id := range n.Down {
		if a := g.arcs[id]; a.Lower == lower {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return
}

// UpArcs are the arcs arriving at c from above, DownArcs those leaving it.
func (g *Graph) UpArcs(c cc.CellID) []*Arc   { return g.arcList(c, true) }
func (g *Graph) DownArcs(c cc.CellID) []*Arc { return g.arcList(c, false) }

func (g *Graph) arcList(c cc.CellID, up bool) (out []*Arc) {
	n, ok := g.nodes[c]
	if !ok {
		return
	}
	ids := n.Down
	if up {
		ids = n.Up
	}
	out = make([]*Arc, len(ids))
	for i, id := range ids {
		out[i] = g.arcs[id]
	}
	return
}

// RemoveArc drops an arc from the graph and from both endpoint nodes.
func (g *Graph) RemoveArc(id int) {
	a, ok := g.arcs[id]
	if !ok {
		return
	}
	delete(g.arcs, id)
	k := pairKey{a.Upper, a.Lower}
	if g.pairs[k]--; g.pairs[k] == 0 {
		delete(g.pairs, k)
	}
	if n, ok := g.nodes[a.Upper]; ok {
		n.Down = dropID(n.Down, id)
	}
	if n, ok := g.nodes[a.Lower]; ok {
		n.Up = dropID(n.Up, id)
	}
}

// RemoveNode drops a node together with every arc touching it.
func (g *Graph) RemoveNode(c cc.CellID) {
	n, ok := g.nodes[c]
	if !ok {
		return
	}
	for _, id := range append(append([]int(nil), n.Up...), n.Down...) {
		g.RemoveArc(id)
	}
	delete(g.nodes, c)
}

func dropID(ids []int, id int) []int {
	for i, x := range ids {
		if x == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
