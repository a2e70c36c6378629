// Package morse extracts the Morse complex of a discrete gradient field and
// simplifies it by persistence-ordered cancellation of critical pairs.
package morse

import (
	"context"
	"slices"
	"time"

	cc "github.com/notargets/gomorse/cellcomplex"
	"github.com/notargets/gomorse/gradient"
	"github.com/notargets/gomorse/logging"
)

type options struct {
	log    *logging.Logger
	checks bool
}

type Option func(*options)

func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{log: logging.NoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

const ctxCheckInterval = 256

// Extract builds the Morse graph of f: one node per critical cell and one arc
// per descending V-path between critical cells of adjacent dimension.
func Extract(ctx context.Context, f *gradient.Field, opts ...Option) (*Graph, error) {
	var (
		o     = newOptions(opts)
		start = time.Now()
		cx    = f.Complex()
		g     = NewGraph(cx)
	)
	for d := cc.Vertex; d <= cc.MaxDim; d++ {
		for _, c := range f.Critical(d) {
			g.AddNode(c)
		}
	}
	for _, hi := range []cc.Dim{cc.Edge, cc.Face} {
		for i, u := range f.Critical(hi) {
			if i%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			traceDown(f, g, []cc.CellID{u}, u, cc.None)
		}
	}
	n := g.NumNodes()
	o.log.LogPhase(ctx, "extract", time.Since(start),
		"nodes", n[0]+n[1]+n[2],
		"arcs", g.NumArcs(),
	)
	return g, nil
}

// traceDown follows every descending V-path leaving beta, which was entered
// through its face from (cc.None at the starting critical cell).
func traceDown(f *gradient.Field, g *Graph, path []cc.CellID, beta, from cc.CellID) {
	for _, alpha := range f.Complex().Boundary(beta) {
		if alpha == from {
			continue
		}
		switch {
		case f.IsCritical(alpha):
			g.AddArc(slices.Clone(append(path, alpha)))
		case f.PairedUp(alpha):
			next := f.Partner(alpha)
			if next == beta {
				continue
			}
			traceDown(f, g, append(path, alpha, next), next, alpha)
		}
	}
}
