package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Test packed int for edge labeling
		en := NewEdgeKey([2]int{1, 0})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{0, 1}, en.GetVertices(false))

		en = NewEdgeKey([2]int{0, 1})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{1, 0}, en.GetVertices(true))

		en = NewEdgeKey([2]int{100, 1})
		assert.Equal(t, EdgeKey(100*(1<<32)+1), en)
		assert.Equal(t, [2]int{1, 100}, en.GetVertices(false))

		en = NewEdgeKey([2]int{100, 100001})
		assert.Equal(t, EdgeKey(100001*(1<<32)+100), en)
		assert.Equal(t, [2]int{100, 100001}, en.GetVertices(false))

		// Test maximum/minimum indices
		en = NewEdgeKey([2]int{1<<32 - 1, 1<<32 - 1})
		assert.Equal(t, EdgeKey(1<<64-1), en)
		assert.Equal(t, [2]int{1<<32 - 1, 1<<32 - 1}, en.GetVertices(false))

		assert.Panics(t, func() { NewEdgeKey([2]int{-1, 2}) })
	}
	{ // Test face keys are winding independent
		f1 := NewFaceKey([3]int{7, 2, 5})
		f2 := NewFaceKey([3]int{5, 7, 2})
		assert.Equal(t, FaceKey{2, 5, 7}, f1)
		assert.Equal(t, f1, f2)
		eks := f1.Edges()
		assert.Equal(t, [2]int{5, 7}, eks[0].GetVertices(false))
		assert.Equal(t, [2]int{2, 7}, eks[1].GetVertices(false))
		assert.Equal(t, [2]int{2, 5}, eks[2].GetVertices(false))
		assert.False(t, f1.Degenerate())
		assert.True(t, NewFaceKey([3]int{3, 1, 3}).Degenerate())
	}
}
