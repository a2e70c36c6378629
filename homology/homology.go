// Package homology computes the Betti numbers of a cell complex directly from
// its oriented boundary matrices. It serves as an independent check on the
// Morse complex.
package homology

import (
	"math"
	"sort"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	cc "github.com/notargets/gomorse/cellcomplex"
)

// RankTol is the magnitude below which an eliminated entry counts as zero.
const RankTol = 1e-9

// BoundaryMatrices returns d1 (vertices x edges) and d2 (edges x faces). Edges
// run from their lower to their higher vertex index; a face (a<b<c) has
// boundary [b,c] - [a,c] + [a,b].
func BoundaryMatrices(cx *cc.Complex) (d1, d2 *sparse.DOK) {
	var (
		n        = cx.Counts()
		elo, ehi = cx.Range(cc.Edge)
		flo, fhi = cx.Range(cc.Face)
	)
	d1 = sparse.NewDOK(max(n[cc.Vertex], 1), max(n[cc.Edge], 1))
	d2 = sparse.NewDOK(max(n[cc.Edge], 1), max(n[cc.Face], 1))
	for e := elo; e < ehi; e++ {
		v := cx.Verts(e)
		a, b := min(v[0], v[1]), max(v[0], v[1])
		j := int(e - elo)
		d1.Set(a, j, -1)
		d1.Set(b, j, 1)
	}
	for f := flo; f < fhi; f++ {
		fk := newSorted(cx.Verts(f))
		j := int(f - flo)
		for i, sign := range []float64{1, -1, 1} {
			// edge opposite vertex i
			a, b := fk[(i+1)%3], fk[(i+2)%3]
			e, _ := cx.EdgeBetween(a, b)
			d2.Set(int(e-elo), j, sign)
		}
	}
	return
}

func newSorted(v []int) (s [3]int) {
	copy(s[:], v)
	if s[0] > s[1] {
		s[0], s[1] = s[1], s[0]
	}
	if s[1] > s[2] {
		s[1], s[2] = s[2], s[1]
	}
	if s[0] > s[1] {
		s[0], s[1] = s[1], s[0]
	}
	return
}

type entry struct {
	row int
	v   float64
}

// column is a sparse column with rows in ascending order.
type column []entry

func (c column) pivot() entry { return c[len(c)-1] }

// axpy returns c + alpha*o, dropping entries that cancel.
func (c column) axpy(alpha float64, o column) (out column) {
	out = make(column, 0, len(c)+len(o))
	var i, j int
	for i < len(c) || j < len(o) {
		switch {
		case j == len(o) || (i < len(c) && c[i].row < o[j].row):
			out = append(out, c[i])
			i++
		case i == len(c) || o[j].row < c[i].row:
			out = append(out, entry{o[j].row, alpha * o[j].v})
			j++
		default:
			if v := c[i].v + alpha*o[j].v; math.Abs(v) > RankTol {
				out = append(out, entry{c[i].row, v})
			}
			i++
			j++
		}
	}
	return
}

// columns gathers the non-zero entries of m by column.
func columns(m mat.Matrix) []column {
	_, nc := m.Dims()
	cols := make([]column, nc)
	add := func(i, j int, v float64) {
		if math.Abs(v) > RankTol {
			cols[j] = append(cols[j], entry{i, v})
		}
	}
	if nz, ok := m.(mat.NonZeroDoer); ok {
		nz.DoNonZero(add)
	} else {
		nr, _ := m.Dims()
		for i := 0; i < nr; i++ {
			for j := 0; j < nc; j++ {
				add(i, j, m.At(i, j))
			}
		}
	}
	for _, c := range cols {
		sort.Slice(c, func(a, b int) bool { return c[a].row < c[b].row })
	}
	return cols
}

// Rank is the rank of m over the reals, found by column elimination on the
// lowest non-zero row. Sparse matrices are walked through their non-zeros
// only, so boundary matrices never become dense.
func Rank(m mat.Matrix) (r int) {
	var (
		cols  = columns(m)
		owner = make(map[int]column) // pivot row -> reduced column
	)
	for _, c := range cols {
		for len(c) > 0 {
			p := c.pivot()
			o, ok := owner[p.row]
			if !ok {
				owner[p.row] = c
				r++
				break
			}
			c = c.axpy(-p.v/o.pivot().v, o)
		}
	}
	return
}

// Betti returns b_d = n_d - rank d_d - rank d_{d+1} over the reals.
func Betti(cx *cc.Complex) (b [3]int) {
	n := cx.Counts()
	d1, d2 := BoundaryMatrices(cx)
	var r1, r2 int
	if n[cc.Edge] > 0 {
		r1 = Rank(d1)
	}
	if n[cc.Face] > 0 {
		r2 = Rank(d2)
	}
	b[cc.Vertex] = n[cc.Vertex] - r1
	b[cc.Edge] = n[cc.Edge] - r1 - r2
	b[cc.Face] = n[cc.Face] - r2
	return
}
