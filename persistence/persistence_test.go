package persistence

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cc "github.com/notargets/gomorse/cellcomplex"
	"github.com/notargets/gomorse/gradient"
	"github.com/notargets/gomorse/morse"
)

func noisy(seed int64) func(i, j int) float64 {
	rng := rand.New(rand.NewSource(seed))
	return func(i, j int) float64 {
		return math.Sin(float64(i)/2)*math.Cos(float64(j)/3) + 0.2*rng.Float64()
	}
}

type run struct {
	field  *gradient.Field
	graph  *morse.Graph
	engine *morse.Engine
	raw    [3]int
}

func simplify(t *testing.T, cx *cc.Complex, tau float64) *run {
	t.Helper()
	ctx := context.Background()
	f, err := gradient.Build(ctx, cx)
	require.NoError(t, err)
	g, err := morse.Extract(ctx, f)
	require.NoError(t, err)
	r := &run{field: f, graph: g, raw: f.CriticalCount()}
	r.engine = morse.NewEngine(f, g)
	_, err = r.engine.Simplify(ctx, tau)
	require.NoError(t, err)
	return r
}

func (r *run) diagram() *Diagram {
	return NewDiagram(r.field, r.engine.History(), r.raw)
}

func TestTriangleDiagram(t *testing.T) {
	r := simplify(t, cc.SingleTriangle([3]float64{0, 1, 2}), math.Inf(1))
	dg := r.diagram()
	require.Len(t, dg.Entries(), 1)
	e := dg.Entries()[0]
	assert.True(t, e.Infinite)
	assert.Equal(t, cc.CellID(0), e.BirthCell)
	assert.Equal(t, cc.None, e.DeathCell)
	assert.True(t, math.IsInf(e.Persistence, 1))
	assert.Equal(t, [3]int{1, 0, 0}, dg.BettiAt(0))
	assert.Equal(t, 1, dg.EulerCharacteristic())
}

// flatStrip is a 5x2 grid with every value equal, numbered so that both ends
// of the strip are local minima of the vertex order.
func flatStrip() *cc.Complex {
	perm := make([]int, 10)
	next := 2
	for p := range perm {
		switch p {
		case 0:
			perm[p] = 0
		case 4:
			perm[p] = 1
		default:
			perm[p] = next
			next++
		}
	}
	tris := cc.GridTriangles(5, 2)
	for k := range tris {
		for c := range tris[k] {
			tris[k][c] = perm[tris[k][c]]
		}
	}
	return cc.Must(cc.FromTriangles(make([]float64, 10), tris))
}

func TestBettiAtZeroOnPlateau(t *testing.T) {
	r := simplify(t, flatStrip(), math.Inf(1))
	require.GreaterOrEqual(t, r.raw[cc.Vertex], 2)
	dg := r.diagram()
	require.NotEmpty(t, dg.Finite())
	for _, p := range dg.Persistences() {
		assert.Zero(t, p)
	}
	assert.Equal(t, dg.RawCounts(), dg.BettiAt(0))
	assert.Equal(t, dg.FinalCounts(), dg.BettiAt(1e-12))
	assert.Equal(t, 1, dg.FinalCounts()[cc.Vertex])
}

func TestBettiMatchesPartialSimplification(t *testing.T) {
	cx := cc.Torus(10, 9, noisy(5))
	full := simplify(t, cx, math.Inf(1))
	dg := full.diagram()
	assert.Equal(t, [3]int{1, 2, 1}, dg.BettiAt(math.Inf(1)))
	assert.Equal(t, dg.FinalCounts(), dg.BettiAt(math.Inf(1)))
	assert.Equal(t, full.raw, dg.RawCounts())
	assert.Equal(t, dg.RawCounts(), dg.BettiAt(-1))

	ps := dg.Persistences()
	require.NotEmpty(t, ps)
	for _, tau := range []float64{ps[0], ps[len(ps)/3], ps[len(ps)/2], ps[len(ps)-1]} {
		partial := simplify(t, cx, tau)
		assert.Equal(t, partial.field.CriticalCount(), dg.BettiAt(tau), "tau %g", tau)
	}
	table := dg.Table([]float64{-1, math.Inf(1)})
	assert.Equal(t, [][3]int{dg.RawCounts(), {1, 2, 1}}, table)
}

func TestDiagramIdempotent(t *testing.T) {
	r := simplify(t, cc.Grid(8, 8, noisy(6)), math.Inf(1))
	a, b := r.diagram(), r.diagram()
	assert.Equal(t, a.Entries(), b.Entries())
	assert.Equal(t, a.BettiAt(0.1), a.BettiAt(0.1))
	assert.Equal(t, a.BettiAt(0.1), b.BettiAt(0.1))

	finite := a.Finite()
	for i, e := range finite {
		assert.Equal(t, i, e.Order)
		assert.Equal(t, e.BirthDim+1, e.DeathDim)
		assert.InDelta(t, math.Abs(e.Death-e.Birth), e.Persistence, 1e-12)
	}
	assert.Len(t, a.Infinite(), 1)
	assert.Equal(t, len(a.Entries()), len(finite)+len(a.Infinite()))
	raw, fin := a.RawCounts(), a.FinalCounts()
	assert.Equal(t, raw[0]-raw[1]+raw[2], a.EulerCharacteristic())
	assert.Equal(t, fin[0]-fin[1]+fin[2], a.EulerCharacteristic())
}

func TestPairCells(t *testing.T) {
	for name, tc := range map[string]struct {
		cx   *cc.Complex
		want [3]int
	}{
		"triangle":   {cc.SingleTriangle([3]float64{0, 1, 2}), [3]int{1, 0, 0}},
		"grid":       {cc.Grid(9, 7, noisy(1)), [3]int{1, 0, 0}},
		"annulus":    {cc.Annulus(12, 4, func(k, r int) float64 { return math.Cos(math.Pi*float64(k)/3) + 0.1*float64(r) }), [3]int{1, 1, 0}},
		"torus":      {cc.Torus(9, 8, noisy(2)), [3]int{1, 2, 1}},
		"octahedron": {cc.Octahedron([6]float64{0.3, 0.1, 0.7, 0.2, 0.9, 0.4}), [3]int{1, 0, 1}},
	} {
		before := simplify(t, tc.cx, -1)
		red := PairCells(before.graph)
		assert.Equal(t, tc.want, red.Betti, "%s unsimplified", name)
		n := before.field.CriticalCount()
		assert.Equal(t, n[0]+n[1]+n[2], 2*len(red.Pairs)+len(red.Essential), name)

		after := simplify(t, tc.cx, math.Inf(1))
		assert.Equal(t, tc.want, PairCells(after.graph).Betti, "%s simplified", name)
		// Morse inequalities
		counts := after.field.CriticalCount()
		for d := range counts {
			assert.GreaterOrEqual(t, counts[d], tc.want[d], "%s dim %d", name, d)
		}
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Stats{}, Summarize(nil))
	assert.Equal(t, Stats{Count: 1, Min: 2, Max: 2, Mean: 2, Median: 2}, Summarize([]float64{2}))

	s := Summarize([]float64{4, 1, 3, 2})
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1., s.Min)
	assert.Equal(t, 4., s.Max)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(5./3), s.StdDev, 1e-12)
	assert.Equal(t, 2., s.Median)
}
