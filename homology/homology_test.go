package homology

import (
	"testing"
	"time"

	"github.com/james-bowman/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	cc "github.com/notargets/gomorse/cellcomplex"
)

func flat(int, int) float64 { return 0 }

func TestBetti(t *testing.T) {
	for name, tc := range map[string]struct {
		cx   *cc.Complex
		want [3]int
	}{
		"triangle":   {cc.SingleTriangle([3]float64{0, 1, 2}), [3]int{1, 0, 0}},
		"disk":       {cc.Grid(5, 4, flat), [3]int{1, 0, 0}},
		"annulus":    {cc.Annulus(8, 3, flat), [3]int{1, 1, 0}},
		"torus":      {cc.Torus(6, 5, flat), [3]int{1, 2, 1}},
		"octahedron": {cc.Octahedron([6]float64{}), [3]int{1, 0, 1}},
	} {
		b := Betti(tc.cx)
		assert.Equal(t, tc.want, b, name)
		assert.Equal(t, tc.cx.EulerCharacteristic(), b[0]-b[1]+b[2], name)
	}
}

func TestBoundaryOfBoundary(t *testing.T) {
	cx := cc.Torus(6, 5, flat)
	d1, d2 := BoundaryMatrices(cx)
	var prod sparse.CSR
	prod.Mul(d1.ToCSR(), d2.ToCSR())
	prod.DoNonZero(func(i, j int, v float64) {
		assert.Zero(t, v, "(%d,%d)", i, j)
	})
	// every face has three edges
	r, c := d2.Dims()
	require.Equal(t, cx.Count(cc.Edge), r)
	require.Equal(t, cx.Count(cc.Face), c)
	dense := d2.ToDense()
	for j := 0; j < c; j++ {
		assert.Equal(t, 3., mat.Norm(dense.ColView(j), 1))
	}
}

func TestRank(t *testing.T) {
	assert.Equal(t, 0, Rank(mat.NewDense(2, 2, nil)))
	assert.Equal(t, 1, Rank(mat.NewDense(2, 2, []float64{1, 2, 2, 4})))
	assert.Equal(t, 2, Rank(mat.NewDense(2, 3, []float64{1, 0, 0, 0, 1, 1})))
	assert.Equal(t, 2, Rank(mat.NewDense(3, 3, []float64{1, 1, 2, 1, 0, 1, 0, 1, 1})))

	// a directed cycle on four vertices: incidence rank is n-1
	d := sparse.NewDOK(4, 4)
	for j := 0; j < 4; j++ {
		d.Set(j, j, -1)
		d.Set((j+1)%4, j, 1)
	}
	assert.Equal(t, 3, Rank(d))
}

func TestBettiLargeMesh(t *testing.T) {
	for name, tc := range map[string]struct {
		cx   *cc.Complex
		want [3]int
	}{
		"disk":  {cc.Grid(60, 50, flat), [3]int{1, 0, 0}},
		"torus": {cc.Torus(60, 50, flat), [3]int{1, 2, 1}},
	} {
		start := time.Now()
		assert.Equal(t, tc.want, Betti(tc.cx), name)
		assert.Less(t, time.Since(start), 30*time.Second, name)
	}
}
