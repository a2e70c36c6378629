// Package gradient builds and maintains the discrete gradient vector field of a
// scalar function on a cell complex.
//
// Construction follows the lower-star matching: every cell belongs to the lower
// star of its highest ranked vertex, and each lower star is matched on its own
// with two key-ordered queues. Lower stars are disjoint, so they are processed in
// parallel partitions of the vertex range without synchronisation on cells.
package gradient

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	cc "github.com/notargets/gomorse/cellcomplex"
	"github.com/notargets/gomorse/logging"
	"github.com/notargets/gomorse/pqueue"
	"github.com/notargets/gomorse/utils"
)

type options struct {
	workers int
	log     *logging.Logger
}

type Option func(*options)

// WithWorkers sets the number of lower-star partitions processed concurrently.
// Zero or less uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

const ctxCheckInterval = 1024

// Build computes the gradient field of the complex's vertex function.
func Build(ctx context.Context, cx *cc.Complex, opts ...Option) (*Field, error) {
	var (
		o     = options{log: logging.NoopLogger()}
		start = time.Now()
		f     = newField(cx)
		nv    = cx.Count(cc.Vertex)
		crit  = make([]bool, cx.NumCells())
	)
	for _, opt := range opts {
		opt(&o)
	}
	pm := utils.NewPartitionMap(utils.ParallelDegree(o.workers, nv), nv)
	g, gctx := errgroup.WithContext(ctx)
	for n := 0; n < pm.ParallelDegree; n++ {
		lo, hi := pm.GetBucketRange(n)
		g.Go(func() error {
			ls := newLowerStar(cx, f.partner, crit)
			for v := lo; v < hi; v++ {
				if (v-lo)%ctxCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				ls.process(v)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for id, isCrit := range crit {
		if isCrit {
			c := cc.CellID(id)
			f.critical[cx.Dim(c)].Add(uint32(c))
		}
	}
	counts := f.CriticalCount()
	o.log.LogPhase(ctx, "gradient", time.Since(start),
		"workers", pm.ParallelDegree,
		"critical_vertices", counts[cc.Vertex],
		"critical_edges", counts[cc.Edge],
		"critical_faces", counts[cc.Face],
	)
	return f, nil
}

// lowerStar holds the per-worker queues. It only reads and writes partner and
// crit slots of cells whose peak is the vertex being processed.
type lowerStar struct {
	cx      *cc.Complex
	partner []cc.CellID
	crit    []bool
	v       int
	zero    *pqueue.Queue[cc.CellID] // cells with no unassigned lower-star face
	one     *pqueue.Queue[cc.CellID] // cells with exactly one
	handles map[cc.CellID]pqueue.Handle
}

func newLowerStar(cx *cc.Complex, partner []cc.CellID, crit []bool) *lowerStar {
	byKey := func(a, b cc.CellID) int { return cx.Compare(a, b) }
	return &lowerStar{
		cx:      cx,
		partner: partner,
		crit:    crit,
		zero:    pqueue.New(byKey),
		one:     pqueue.New(byKey),
		handles: make(map[cc.CellID]pqueue.Handle),
	}
}

func (ls *lowerStar) inStar(c cc.CellID) bool { return ls.cx.Peak(c) == ls.v }

func (ls *lowerStar) assigned(c cc.CellID) bool {
	return ls.partner[c] != cc.None || ls.crit[c]
}

func (ls *lowerStar) pair(a, b cc.CellID) {
	ls.partner[a] = b
	ls.partner[b] = a
}

// unassignedFaces counts the faces of c inside the lower star that are still
// unassigned and returns the last one seen.
func (ls *lowerStar) unassignedFaces(c cc.CellID) (n int, face cc.CellID) {
	face = cc.None
	for _, b := range ls.cx.Boundary(c) {
		if ls.inStar(b) && !ls.assigned(b) {
			n++
			face = b
		}
	}
	return
}

// pushCofaces queues the unassigned lower-star cofaces of c that now have a
// single unassigned face.
func (ls *lowerStar) pushCofaces(c cc.CellID) {
	for _, b := range ls.cx.Coboundary(c) {
		if !ls.inStar(b) || ls.assigned(b) {
			continue
		}
		if n, _ := ls.unassignedFaces(b); n == 1 {
			ls.one.Push(b)
		}
	}
}

func (ls *lowerStar) process(v int) {
	var (
		cx    = ls.cx
		vid   = cc.CellID(v)
		edges []cc.CellID
	)
	ls.v = v
	for _, e := range cx.Coboundary(vid) {
		if ls.inStar(e) {
			edges = append(edges, e)
		}
	}
	if len(edges) == 0 {
		ls.crit[vid] = true
		return
	}
	delta := edges[0]
	for _, e := range edges[1:] {
		if cx.Less(e, delta) {
			delta = e
		}
	}
	ls.pair(vid, delta)

	ls.zero.Clear()
	ls.one.Clear()
	clear(ls.handles)
	for _, e := range edges {
		if e != delta {
			ls.handles[e] = ls.zero.Push(e)
		}
	}
	ls.pushCofaces(delta)

	for !ls.one.Empty() || !ls.zero.Empty() {
		for !ls.one.Empty() {
			alpha, _ := ls.one.PopMin()
			if ls.assigned(alpha) {
				continue
			}
			n, face := ls.unassignedFaces(alpha)
			if n == 0 {
				ls.handles[alpha] = ls.zero.Push(alpha)
				continue
			}
			ls.pair(face, alpha)
			if h, ok := ls.handles[face]; ok {
				ls.zero.Remove(h)
				delete(ls.handles, face)
			}
			ls.pushCofaces(alpha)
			ls.pushCofaces(face)
		}
		if ls.zero.Empty() {
			continue
		}
		gamma, _ := ls.zero.PopMin()
		delete(ls.handles, gamma)
		if ls.assigned(gamma) {
			continue
		}
		ls.crit[gamma] = true
		ls.pushCofaces(gamma)
	}
}
