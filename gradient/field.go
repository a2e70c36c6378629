package gradient

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	cc "github.com/notargets/gomorse/cellcomplex"
)

var (
	// ErrAsymmetric is a partner relation that is not an involution.
	ErrAsymmetric = errors.New("gradient: asymmetric pairing")
	// ErrBadPairing pairs cells that are not incident or not of adjacent dimension.
	ErrBadPairing = errors.New("gradient: pairing of non-incident cells")
	// ErrUnassigned is a cell that is neither paired nor critical, or both.
	ErrUnassigned = errors.New("gradient: cell neither paired nor critical")
	// ErrCyclic is a closed V-path.
	ErrCyclic = errors.New("gradient: closed V-path")
	// ErrInvalidPath is a path that is not a V-path between two critical cells.
	ErrInvalidPath = errors.New("gradient: invalid V-path")
)

// Field is a discrete gradient vector field: a partial matching of cells with
// cofaces, plus the set of unmatched (critical) cells per dimension.
type Field struct {
	cx       *cc.Complex
	partner  []cc.CellID
	critical [3]*roaring.Bitmap
}

func newField(cx *cc.Complex) *Field {
	f := &Field{
		cx:      cx,
		partner: make([]cc.CellID, cx.NumCells()),
	}
	for i := range f.partner {
		f.partner[i] = cc.None
	}
	for d := range f.critical {
		f.critical[d] = roaring.New()
	}
	return f
}

func (f *Field) Complex() *cc.Complex { return f.cx }

// Partner is the cell c is matched with, or cc.None.
func (f *Field) Partner(c cc.CellID) cc.CellID { return f.partner[c] }

func (f *Field) IsCritical(c cc.CellID) bool {
	return f.critical[f.cx.Dim(c)].Contains(uint32(c))
}

// PairedUp reports whether c is matched with one of its cofaces.
func (f *Field) PairedUp(c cc.CellID) bool {
	p := f.partner[c]
	return p != cc.None && f.cx.Dim(p) > f.cx.Dim(c)
}

// PairedDown reports whether c is matched with one of its faces.
func (f *Field) PairedDown(c cc.CellID) bool {
	p := f.partner[c]
	return p != cc.None && f.cx.Dim(p) < f.cx.Dim(c)
}

// Critical lists the critical cells of dimension d in ascending id order.
func (f *Field) Critical(d cc.Dim) (ids []cc.CellID) {
	arr := f.critical[d].ToArray()
	ids = make([]cc.CellID, len(arr))
	for i, c := range arr {
		ids[i] = cc.CellID(c)
	}
	return
}

// CriticalCount is the number of critical vertices, edges and faces.
func (f *Field) CriticalCount() (n [3]int) {
	for d := range f.critical {
		n[d] = int(f.critical[d].GetCardinality())
	}
	return
}

// Snapshot copies the partner table, indexed by cell id.
func (f *Field) Snapshot() []cc.CellID {
	out := make([]cc.CellID, len(f.partner))
	copy(out, f.partner)
	return out
}

// Clone returns an independent copy sharing the immutable complex.
func (f *Field) Clone() *Field {
	g := &Field{
		cx:      f.cx,
		partner: f.Snapshot(),
	}
	for d := range f.critical {
		g.critical[d] = f.critical[d].Clone()
	}
	return g
}

func (f *Field) pair(a, b cc.CellID) {
	f.partner[a] = b
	f.partner[b] = a
}

// CheckPath verifies that path is a V-path [u, a1, b1, ..., ak, bk, l] from a
// critical (d+1)-cell u down to a critical d-cell l, with each (ai, bi) matched,
// each ai a face of the preceding cell and bi != the preceding cell.
func (f *Field) CheckPath(path []cc.CellID) error {
	n := len(path)
	if n < 2 || n%2 != 0 {
		return fmt.Errorf("%w: length %d", ErrInvalidPath, n)
	}
	upper, lower := path[0], path[n-1]
	if !f.IsCritical(upper) || !f.IsCritical(lower) {
		return fmt.Errorf("%w: endpoints %d, %d not both critical", ErrInvalidPath, upper, lower)
	}
	hi := f.cx.Dim(upper)
	if hi == cc.Vertex {
		return fmt.Errorf("%w: upper endpoint %d is a vertex", ErrInvalidPath, upper)
	}
	for i := 1; i < n; i++ {
		prev, c := path[i-1], path[i]
		if i%2 == 1 {
			if f.cx.Dim(c) != hi-1 || !isFace(f.cx, c, prev) {
				return fmt.Errorf("%w: %d is not a face of %d", ErrInvalidPath, c, prev)
			}
			continue
		}
		if f.cx.Dim(c) != hi || f.partner[prev] != c || c == path[i-2] {
			return fmt.Errorf("%w: %d is not the gradient partner of %d", ErrInvalidPath, c, prev)
		}
	}
	return nil
}

// Reverse cancels the critical pair at the ends of a V-path by flipping every
// arrow along it. Both endpoints stop being critical. The field is left
// untouched when the path does not check out.
func (f *Field) Reverse(path []cc.CellID) error {
	if err := f.CheckPath(path); err != nil {
		return err
	}
	n := len(path)
	for i := 1; i+1 < n; i += 2 {
		f.partner[path[i]] = cc.None
		f.partner[path[i+1]] = cc.None
	}
	for i := 0; i+1 < n; i += 2 {
		f.pair(path[i+1], path[i])
	}
	upper, lower := path[0], path[n-1]
	f.critical[f.cx.Dim(upper)].Remove(uint32(upper))
	f.critical[f.cx.Dim(lower)].Remove(uint32(lower))
	return nil
}

func isFace(cx *cc.Complex, face, cell cc.CellID) bool {
	for _, b := range cx.Boundary(cell) {
		if b == face {
			return true
		}
	}
	return false
}
