package gradient

import (
	"fmt"

	cc "github.com/notargets/gomorse/cellcomplex"
)

// Validate checks that every cell is exactly one of paired or critical and that
// the pairing is a symmetric matching of incident cells of adjacent dimension.
func (f *Field) Validate() error {
	for id, p := range f.partner {
		c := cc.CellID(id)
		crit := f.IsCritical(c)
		if p == cc.None {
			if !crit {
				return fmt.Errorf("%w: cell %d", ErrUnassigned, c)
			}
			continue
		}
		if crit {
			return fmt.Errorf("%w: cell %d is critical and paired with %d", ErrUnassigned, c, p)
		}
		if f.partner[p] != c {
			return fmt.Errorf("%w: %d -> %d -> %d", ErrAsymmetric, c, p, f.partner[p])
		}
		lo, hi := c, p
		if f.cx.Dim(lo) > f.cx.Dim(hi) {
			lo, hi = hi, lo
		}
		if f.cx.Dim(hi) != f.cx.Dim(lo)+1 || !isFace(f.cx, lo, hi) {
			return fmt.Errorf("%w: %d and %d", ErrBadPairing, c, p)
		}
	}
	return nil
}

const (
	white = iota
	grey
	black
)

// CheckAcyclic looks for a closed V-path. For each dimension d the d-cells
// matched upward form a directed graph, a -> a' whenever a' is another face of
// a's partner and also matched upward. A cycle in that graph is a closed V-path.
// The search is an iterative three-colour depth first search.
func (f *Field) CheckAcyclic() error {
	var (
		color = make([]uint8, len(f.partner))
		stack []frame
	)
	for id := range f.partner {
		start := cc.CellID(id)
		if color[start] != white || !f.PairedUp(start) {
			continue
		}
		color[start] = grey
		stack = append(stack[:0], frame{cell: start})
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			next, ok := f.nextSuccessor(top)
			if !ok {
				color[top.cell] = black
				stack = stack[:len(stack)-1]
				continue
			}
			switch color[next] {
			case grey:
				return fmt.Errorf("%w: through cell %d", ErrCyclic, next)
			case white:
				color[next] = grey
				stack = append(stack, frame{cell: next})
			}
		}
	}
	return nil
}

type frame struct {
	cell cc.CellID
	i    int
}

// nextSuccessor advances fr to its next successor in the V-path digraph.
func (f *Field) nextSuccessor(fr *frame) (cc.CellID, bool) {
	faces := f.cx.Boundary(f.partner[fr.cell])
	for fr.i < len(faces) {
		a := faces[fr.i]
		fr.i++
		if a != fr.cell && f.PairedUp(a) {
			return a, true
		}
	}
	return cc.None, false
}
