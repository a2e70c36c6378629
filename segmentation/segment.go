// Package segmentation partitions the mesh vertices into Morse cells: regions
// bounded by the separatrices of a Morse complex.
package segmentation

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/emirpasic/gods/queues/linkedlistqueue"

	cc "github.com/notargets/gomorse/cellcomplex"
	"github.com/notargets/gomorse/morse"
)

// Segmentation labels vertices from 1. Label 0 marks a boundary vertex still
// without a labelled neighbour after the last boundary sweep.
type Segmentation struct {
	Labels     []int
	NumLabels  int
	Boundary   *roaring.Bitmap
	Unlabelled []int
	// Adjacent counts, per pair of distinct labels (lower first), the boundary
	// vertices where the two cells touch.
	Adjacent map[[2]int]int
}

// BoundaryVertices collects the critical vertices and the vertices traced by
// every separatrix of g. Arcs ending on a vertex contribute the endpoints of
// their edges; arcs ending on an edge contribute the peak vertex of every cell
// along the path.
func BoundaryVertices(g *morse.Graph) *roaring.Bitmap {
	var (
		cx = g.Complex()
		bd = roaring.New()
	)
	for _, n := range g.Nodes(cc.Vertex) {
		bd.Add(uint32(n.Cell))
	}
	for _, a := range g.Arcs() {
		for i, c := range a.Path {
			switch a.Dim {
			case cc.Vertex:
				if i%2 == 0 {
					for _, v := range cx.Verts(c) {
						bd.Add(uint32(v))
					}
				}
			case cc.Edge:
				bd.Add(uint32(cx.Peak(c)))
			}
		}
	}
	return bd
}

// boundarySweeps is the number of passes made over unlabelled boundary vertices.
const boundarySweeps = 3

// Segment floods the non-boundary vertices into connected cells, then labels
// the boundary vertices in sweeps. See assignBoundary.
func Segment(g *morse.Graph) *Segmentation {
	var (
		cx = g.Complex()
		nv = cx.Count(cc.Vertex)
		s  = &Segmentation{
			Labels:   make([]int, nv),
			Boundary: BoundaryVertices(g),
			Adjacent: make(map[[2]int]int),
		}
	)
	for v := 0; v < nv; v++ {
		if s.Labels[v] != 0 || s.Boundary.Contains(uint32(v)) {
			continue
		}
		s.NumLabels++
		s.flood(cx, v, s.NumLabels)
	}

	s.assignBoundary(cx)

	it := s.Boundary.Iterator()
	for it.HasNext() {
		v := int(it.Next())
		own := s.Labels[v]
		if own == 0 {
			continue
		}
		for _, u := range cx.Neighbors(v) {
			if l := s.Labels[u]; l != 0 && l != own {
				s.Adjacent[[2]int{min(own, l), max(own, l)}]++
			}
		}
	}
	return s
}

func (s *Segmentation) flood(cx *cc.Complex, start, label int) {
	q := linkedlistqueue.New()
	s.Labels[start] = label
	q.Enqueue(start)
	for !q.Empty() {
		x, _ := q.Dequeue()
		for _, u := range cx.Neighbors(x.(int)) {
			if s.Labels[u] == 0 && !s.Boundary.Contains(uint32(u)) {
				s.Labels[u] = label
				q.Enqueue(u)
			}
		}
	}
}

// assignBoundary visits the boundary vertices in ascending order, giving each
// the most common label among its neighbours (smallest label on ties). A vertex
// with no labelled neighbour waits for the next sweep. Labels given earlier in a
// sweep count for later vertices of the same sweep, so the result depends on
// vertex order. Vertices still unlabelled after boundarySweeps are reported in
// Unlabelled.
func (s *Segmentation) assignBoundary(cx *cc.Complex) {
	pending := s.Boundary.ToArray()
	for sweep := 0; sweep < boundarySweeps && len(pending) > 0; sweep++ {
		var deferred []uint32
		for _, v := range pending {
			if l := s.neighbourLabel(cx, int(v)); l != 0 {
				s.Labels[v] = l
			} else {
				deferred = append(deferred, v)
			}
		}
		pending = deferred
	}
	for _, v := range pending {
		s.Unlabelled = append(s.Unlabelled, int(v))
	}
}

func (s *Segmentation) neighbourLabel(cx *cc.Complex, v int) (best int) {
	count := make(map[int]int)
	for _, u := range cx.Neighbors(v) {
		if l := s.Labels[u]; l != 0 {
			count[l]++
		}
	}
	for l, n := range count {
		if best == 0 || n > count[best] || (n == count[best] && l < best) {
			best = l
		}
	}
	return
}

// Members lists the vertices carrying label l in ascending order.
func (s *Segmentation) Members(l int) (vs []int) {
	for v, x := range s.Labels {
		if x == l {
			vs = append(vs, v)
		}
	}
	return
}

// Sizes maps every label to its vertex count.
func (s *Segmentation) Sizes() map[int]int {
	out := make(map[int]int, s.NumLabels)
	for _, l := range s.Labels {
		if l != 0 {
			out[l]++
		}
	}
	return out
}

// Neighbors lists the labels adjacent to l in ascending order.
func (s *Segmentation) Neighbors(l int) (out []int) {
	for k := range s.Adjacent {
		switch l {
		case k[0]:
			out = append(out, k[1])
		case k[1]:
			out = append(out, k[0])
		}
	}
	sort.Ints(out)
	return
}
