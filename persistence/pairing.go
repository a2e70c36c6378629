package persistence

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	cc "github.com/notargets/gomorse/cellcomplex"
	"github.com/notargets/gomorse/morse"
)

// Pair is a pivot pair of the boundary reduction.
type Pair struct {
	Birth       cc.CellID
	Death       cc.CellID
	BirthDim    cc.Dim
	Persistence float64
}

type Reduction struct {
	Pairs     []Pair
	Essential []cc.CellID // unpaired cells in key order
	Betti     [3]int
}

// PairCells reduces the Z2 boundary matrix of the Morse complex g. Columns are
// the critical cells in key order; a column holds the lower nodes reached by an
// odd number of arcs. Unpaired cells count the Z2 Betti numbers.
func PairCells(g *morse.Graph) *Reduction {
	var (
		cx    = g.Complex()
		cells []cc.CellID
	)
	for d := cc.Vertex; d <= cc.MaxDim; d++ {
		for _, n := range g.Nodes(d) {
			cells = append(cells, n.Cell)
		}
	}
	sort.Slice(cells, func(i, j int) bool { return cx.Less(cells[i], cells[j]) })
	pos := make(map[cc.CellID]uint32, len(cells))
	for i, c := range cells {
		pos[c] = uint32(i)
	}

	var (
		cols   = make([]*roaring.Bitmap, len(cells))
		owner  = make(map[uint32]int)
		paired = make([]bool, len(cells))
		red    = &Reduction{}
	)
	for j, c := range cells {
		col := roaring.New()
		for _, a := range g.DownArcs(c) {
			if p := pos[a.Lower]; !col.CheckedAdd(p) {
				col.Remove(p)
			}
		}
		for !col.IsEmpty() {
			low := col.Maximum()
			k, ok := owner[low]
			if !ok {
				owner[low] = j
				break
			}
			col.Xor(cols[k])
		}
		cols[j] = col
		if col.IsEmpty() {
			continue
		}
		low := cells[col.Maximum()]
		paired[pos[low]], paired[j] = true, true
		red.Pairs = append(red.Pairs, Pair{
			Birth:       low,
			Death:       c,
			BirthDim:    cx.Dim(low),
			Persistence: math.Abs(cx.Value(c) - cx.Value(low)),
		})
	}
	for i, c := range cells {
		if !paired[i] {
			red.Essential = append(red.Essential, c)
			red.Betti[cx.Dim(c)]++
		}
	}
	return red
}
