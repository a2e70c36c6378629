// Package cellcomplex holds a triangulated 2-manifold as an arena of cells with
// boundary and coboundary incidence, a scalar value per vertex, and the total
// order on cells used to simulate a generic scalar function.
package cellcomplex

import (
	"math"
	"sort"

	"github.com/notargets/gomorse/types"
)

// CellID indexes the cell arena. Vertices come first, then edges, then faces.
type CellID int

// None marks the absence of a cell, for example an unpaired gradient slot.
const None CellID = -1

type Dim uint8

const (
	Vertex Dim = iota
	Edge
	Face
)

// MaxDim is the top dimension of a surface complex.
const MaxDim = Face

func (d Dim) String() string {
	switch d {
	case Vertex:
		return "vertex"
	case Edge:
		return "edge"
	case Face:
		return "face"
	}
	return "unknown"
}

// Cell is one vertex, edge or face. Verts is sorted ascending. Boundary lists the
// cells of dimension Dim-1, Coboundary those of dimension Dim+1.
type Cell struct {
	Dim        Dim
	Verts      []int
	Boundary   []CellID
	Coboundary []CellID
}

type Complex struct {
	cells  []Cell
	values []float64
	rank   []int // vertex index -> rank under (value, index)
	peak   []int // cell -> highest ranked vertex
	count  [3]int
	edges  map[types.EdgeKey]CellID
}

// New builds a complex from per-vertex values, edges and faces given as vertex
// tuples. Every edge of every face must appear in edges.
func New(values []float64, edges [][2]int, faces [][3]int) (cx *Complex, err error) {
	var (
		nv = len(values)
	)
	if nv == 0 {
		return nil, invalid(ErrEmpty, Vertex, 0, "no vertices")
	}
	cx = &Complex{
		cells:  make([]Cell, 0, nv+len(edges)+len(faces)),
		values: make([]float64, nv),
		count:  [3]int{nv, len(edges), len(faces)},
		edges:  make(map[types.EdgeKey]CellID, len(edges)),
	}
	for v, val := range values {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, invalid(ErrInvalidValue, Vertex, v, "value %v", val)
		}
		cx.values[v] = val
		cx.cells = append(cx.cells, Cell{Dim: Vertex, Verts: []int{v}})
	}
	for e, ev := range edges {
		id := CellID(len(cx.cells))
		for _, v := range ev {
			if v < 0 || v >= nv {
				return nil, invalid(ErrDanglingReference, Edge, e, "vertex %d out of range [0,%d)", v, nv)
			}
		}
		if ev[0] == ev[1] {
			return nil, invalid(ErrDuplicateVertex, Edge, e, "vertices %v", ev)
		}
		ek := types.NewEdgeKey(ev)
		if _, dup := cx.edges[ek]; dup {
			return nil, invalid(ErrDuplicateCell, Edge, e, "vertices %v", ev)
		}
		cx.edges[ek] = id
		sv := ek.GetVertices(false)
		cx.cells = append(cx.cells, Cell{
			Dim:      Edge,
			Verts:    []int{sv[0], sv[1]},
			Boundary: []CellID{CellID(sv[0]), CellID(sv[1])},
		})
		for _, v := range sv {
			cx.cells[v].Coboundary = append(cx.cells[v].Coboundary, id)
		}
	}
	seen := make(map[types.FaceKey]struct{}, len(faces))
	for f, fv := range faces {
		id := CellID(len(cx.cells))
		for _, v := range fv {
			if v < 0 || v >= nv {
				return nil, invalid(ErrDanglingReference, Face, f, "vertex %d out of range [0,%d)", v, nv)
			}
		}
		fk := types.NewFaceKey(fv)
		if fk.Degenerate() {
			return nil, invalid(ErrDuplicateVertex, Face, f, "vertices %v", fv)
		}
		if _, dup := seen[fk]; dup {
			return nil, invalid(ErrDuplicateCell, Face, f, "vertices %v", fv)
		}
		seen[fk] = struct{}{}
		cell := Cell{Dim: Face, Verts: []int{fk[0], fk[1], fk[2]}}
		for _, ek := range fk.Edges() {
			eid, ok := cx.edges[ek]
			if !ok {
				return nil, invalid(ErrDanglingReference, Face, f, "missing edge %v", ek.GetVertices(false))
			}
			cob := cx.cells[eid].Coboundary
			if len(cob) == 2 {
				return nil, invalid(ErrNonManifold, Edge, int(eid)-nv, "vertices %v shared by more than two faces",
					ek.GetVertices(false))
			}
			cx.cells[eid].Coboundary = append(cob, id)
			cell.Boundary = append(cell.Boundary, eid)
		}
		cx.cells = append(cx.cells, cell)
	}
	cx.rankVertices()
	return
}

// FromTriangles derives the edge set from the triangles, in order of first
// appearance, and builds the complex.
func FromTriangles(values []float64, tris [][3]int) (*Complex, error) {
	var (
		edges [][2]int
		nv    = len(values)
		known = make(map[types.EdgeKey]struct{}, 3*len(tris)/2)
	)
	for _, tri := range tris {
		for _, ev := range [3][2]int{{tri[0], tri[1]}, {tri[1], tri[2]}, {tri[2], tri[0]}} {
			if ev[0] < 0 || ev[1] < 0 || ev[0] >= nv || ev[1] >= nv || ev[0] == ev[1] {
				// New reports the face with the proper context
				continue
			}
			ek := types.NewEdgeKey(ev)
			if _, ok := known[ek]; ok {
				continue
			}
			known[ek] = struct{}{}
			edges = append(edges, ek.GetVertices(false))
		}
	}
	return New(values, edges, tris)
}

func (cx *Complex) rankVertices() {
	var (
		nv    = cx.count[Vertex]
		order = make([]int, nv)
	)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if cx.values[a] != cx.values[b] {
			return cx.values[a] < cx.values[b]
		}
		return a < b
	})
	cx.rank = make([]int, nv)
	for r, v := range order {
		cx.rank[v] = r
	}
	cx.peak = make([]int, len(cx.cells))
	for id, c := range cx.cells {
		top := c.Verts[0]
		for _, v := range c.Verts[1:] {
			if cx.rank[v] > cx.rank[top] {
				top = v
			}
		}
		cx.peak[id] = top
	}
}

// NumCells is the size of the cell arena.
func (cx *Complex) NumCells() int { return len(cx.cells) }

// Count is the number of cells of dimension d.
func (cx *Complex) Count(d Dim) int { return cx.count[d] }

// Counts returns the number of vertices, edges and faces.
func (cx *Complex) Counts() [3]int { return cx.count }

// Range returns the half open id range [lo, hi) of dimension d.
func (cx *Complex) Range(d Dim) (lo, hi CellID) {
	for i := Dim(0); i < d; i++ {
		lo += CellID(cx.count[i])
	}
	hi = lo + CellID(cx.count[d])
	return
}

// Cell returns the cell with the given id. The returned slices are shared with
// the complex and must not be modified.
func (cx *Complex) Cell(id CellID) Cell { return cx.cells[id] }

func (cx *Complex) Dim(id CellID) Dim { return cx.cells[id].Dim }

func (cx *Complex) Verts(id CellID) []int { return cx.cells[id].Verts }

func (cx *Complex) Boundary(id CellID) []CellID { return cx.cells[id].Boundary }

func (cx *Complex) Coboundary(id CellID) []CellID { return cx.cells[id].Coboundary }

// Value is the sampled value for a vertex and the largest incident vertex value
// for an edge or face.
func (cx *Complex) Value(id CellID) float64 { return cx.values[cx.peak[id]] }

// VertexValue is the sampled value at vertex v.
func (cx *Complex) VertexValue(v int) float64 { return cx.values[v] }

// Rank is the position of vertex v when all vertices are sorted by (value, index).
func (cx *Complex) Rank(v int) int { return cx.rank[v] }

// Peak is the highest ranked vertex of the cell. A cell belongs to the lower star
// of its peak.
func (cx *Complex) Peak(id CellID) int { return cx.peak[id] }

// EdgeBetween looks up the edge joining vertices a and b.
func (cx *Complex) EdgeBetween(a, b int) (CellID, bool) {
	nv := cx.count[Vertex]
	if a < 0 || b < 0 || a >= nv || b >= nv || a == b {
		return None, false
	}
	id, ok := cx.edges[types.NewEdgeKey([2]int{a, b})]
	return id, ok
}

// Neighbors returns the vertices sharing an edge with v.
func (cx *Complex) Neighbors(v int) (nbrs []int) {
	cob := cx.cells[v].Coboundary
	nbrs = make([]int, 0, len(cob))
	for _, e := range cob {
		ev := cx.cells[e].Verts
		if ev[0] == v {
			nbrs = append(nbrs, ev[1])
		} else {
			nbrs = append(nbrs, ev[0])
		}
	}
	return
}

// EulerCharacteristic is V - E + F.
func (cx *Complex) EulerCharacteristic() int {
	return cx.count[Vertex] - cx.count[Edge] + cx.count[Face]
}
