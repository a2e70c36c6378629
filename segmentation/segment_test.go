package segmentation

import (
	"context"
	"math"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cc "github.com/notargets/gomorse/cellcomplex"
	"github.com/notargets/gomorse/gradient"
	"github.com/notargets/gomorse/morse"
)

func TestSeparatingLine(t *testing.T) {
	cx := cc.Grid(5, 3, func(i, j int) float64 { return float64(i + j) })
	g := morse.NewGraph(cx)
	e27, ok := cx.EdgeBetween(2, 7)
	require.True(t, ok)
	e712, ok := cx.EdgeBetween(7, 12)
	require.True(t, ok)
	g.AddArc([]cc.CellID{e712, 7, e27, 2})

	s := Segment(g)
	assert.Equal(t, []uint32{2, 7, 12}, s.Boundary.ToArray())
	assert.Equal(t, 2, s.NumLabels)
	assert.Empty(t, s.Unlabelled)
	for _, v := range []int{0, 1, 5, 6, 10, 11} {
		assert.Equal(t, 1, s.Labels[v], "vertex %d", v)
	}
	for _, v := range []int{3, 4, 8, 9, 13, 14} {
		assert.Equal(t, 2, s.Labels[v], "vertex %d", v)
	}
	assert.Equal(t, 2, s.Labels[2])
	assert.Equal(t, 2, s.Labels[7])
	assert.Equal(t, 1, s.Labels[12])
	assert.Equal(t, []int{2}, s.Neighbors(1))
	assert.Equal(t, []int{1}, s.Neighbors(2))
	assert.Equal(t, map[int]int{1: 7, 2: 8}, s.Sizes())
	assert.Equal(t, []int{0, 1, 5, 6, 10, 11, 12}, s.Members(1))
}

func TestBoundarySweeps(t *testing.T) {
	// only the right column is labelled; the rest is boundary
	cx := cc.Grid(6, 2, func(int, int) float64 { return 0 })
	s := &Segmentation{Labels: make([]int, 12), Boundary: roaring.New()}
	for v := 0; v < 12; v++ {
		if v == 5 || v == 11 {
			s.Labels[v] = 1
		} else {
			s.Boundary.Add(uint32(v))
		}
	}
	s.assignBoundary(cx)
	// each sweep reaches one column further left
	assert.Equal(t, []int{0, 1, 6, 7}, s.Unlabelled)
	for _, v := range []int{2, 3, 4, 8, 9, 10} {
		assert.Equal(t, 1, s.Labels[v], "vertex %d", v)
	}
	for _, v := range s.Unlabelled {
		assert.Zero(t, s.Labels[v])
	}
}

func TestTriangle(t *testing.T) {
	cx := cc.SingleTriangle([3]float64{0, 1, 2})
	f, err := gradient.Build(context.Background(), cx)
	require.NoError(t, err)
	g, err := morse.Extract(context.Background(), f)
	require.NoError(t, err)
	s := Segment(g)
	assert.Equal(t, []int{1, 1, 1}, s.Labels)
	assert.Empty(t, s.Adjacent)
}

func TestAnnulusCells(t *testing.T) {
	cx := cc.Annulus(24, 6, func(k, r int) float64 {
		return math.Cos(math.Pi*float64(k)/6) + 0.05*float64(r)
	})
	ctx := context.Background()
	f, err := gradient.Build(ctx, cx)
	require.NoError(t, err)
	g, err := morse.Extract(ctx, f)
	require.NoError(t, err)

	s := Segment(g)
	require.GreaterOrEqual(t, s.NumLabels, 1)
	total := len(s.Unlabelled)
	for _, n := range s.Sizes() {
		total += n
	}
	assert.Equal(t, cx.Count(cc.Vertex), total)
	for _, v := range s.Unlabelled {
		assert.True(t, s.Boundary.Contains(uint32(v)))
	}
	// cells are separated: interior neighbours always agree
	for v := 0; v < cx.Count(cc.Vertex); v++ {
		if s.Boundary.Contains(uint32(v)) {
			continue
		}
		for _, u := range cx.Neighbors(v) {
			if !s.Boundary.Contains(uint32(u)) {
				assert.Equal(t, s.Labels[v], s.Labels[u])
			}
		}
	}
	for k := range s.Adjacent {
		assert.Less(t, k[0], k[1])
	}
	for _, n := range g.Nodes(cc.Vertex) {
		assert.True(t, s.Boundary.Contains(uint32(n.Cell)))
	}
}
