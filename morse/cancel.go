package morse

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"time"

	cc "github.com/notargets/gomorse/cellcomplex"
	"github.com/notargets/gomorse/gradient"
	"github.com/notargets/gomorse/logging"
	"github.com/notargets/gomorse/pqueue"
)

var (
	// ErrStaleCandidate is a queued pair whose endpoints or arc no longer exist.
	ErrStaleCandidate = errors.New("morse: stale cancellation candidate")
	// ErrNotUnique is a pair joined by more than one separatrix.
	ErrNotUnique = errors.New("morse: pair joined by more than one separatrix")
	// ErrNotCritical is a cancellation request naming a cell that is not critical.
	ErrNotCritical = errors.New("morse: cell is not critical")
	// ErrNotConnected is a cancellation request for a pair with no separatrix.
	ErrNotConnected = errors.New("morse: no separatrix joins the pair")
)

// Cancellation records one executed cancellation. Dim is the dimension of Lower.
type Cancellation struct {
	Order       int
	Lower       cc.CellID
	Upper       cc.CellID
	Dim         cc.Dim
	LowerValue  float64
	UpperValue  float64
	Persistence float64
}

type candidate struct {
	lower, upper cc.CellID
	arc          int
	persistence  float64
}

// Engine owns the gradient field and Morse graph during simplification. All
// mutation goes through it, one cancellation at a time.
type Engine struct {
	field   *gradient.Field
	graph   *Graph
	queue   *pqueue.Queue[candidate]
	history []Cancellation
	log     *logging.Logger
	checks  bool
}

// WithInvariantChecks validates the gradient field, its acyclicity and every
// rerouted path after each cancellation. Intended for tests and debugging.
func WithInvariantChecks() Option {
	return func(o *options) { o.checks = true }
}

// NewEngine queues every pair of critical cells joined by exactly one arc, in
// ascending arc id order.
func NewEngine(f *gradient.Field, g *Graph, opts ...Option) *Engine {
	o := newOptions(opts)
	e := &Engine{
		field: f,
		graph: g,
		queue: pqueue.New(func(a, b candidate) int {
			return cmp.Compare(a.persistence, b.persistence)
		}),
		log:    o.log,
		checks: o.checks,
	}
	for _, a := range g.Arcs() {
		e.offer(a)
	}
	return e
}

func (e *Engine) offer(a *Arc) {
	if e.graph.Multiplicity(a.Upper, a.Lower) != 1 {
		return
	}
	e.queue.Push(candidate{
		lower:       a.Lower,
		upper:       a.Upper,
		arc:         a.ID,
		persistence: a.Persistence,
	})
}

func (e *Engine) Field() *gradient.Field { return e.field }

func (e *Engine) Graph() *Graph { return e.graph }

// Pending is the number of queued candidates, stale ones included.
func (e *Engine) Pending() int { return e.queue.Len() }

// History returns the cancellations executed so far, in order.
func (e *Engine) History() []Cancellation {
	out := make([]Cancellation, len(e.history))
	copy(out, e.history)
	return out
}

// Simplify cancels pairs in order of increasing persistence until the queue is
// empty or the next candidate's persistence exceeds threshold. Stale and
// non-unique candidates are skipped. It returns the number of cancellations
// made by this call and may be called again with a larger threshold.
func (e *Engine) Simplify(ctx context.Context, threshold float64) (n int, err error) {
	start := time.Now()
	for i := 0; !e.queue.Empty(); i++ {
		if i%ctxCheckInterval == 0 {
			if err = ctx.Err(); err != nil {
				return
			}
		}
		var c candidate
		if c, err = e.queue.PeekMin(); err != nil {
			return n, fmt.Errorf("morse: cancellation queue: %w", err)
		}
		if c.persistence > threshold {
			break
		}
		if c, err = e.queue.PopMin(); err != nil {
			return n, fmt.Errorf("morse: cancellation queue: %w", err)
		}
		if err = e.tryCandidate(c); err != nil {
			if errors.Is(err, ErrStaleCandidate) || errors.Is(err, ErrNotUnique) {
				e.log.LogSkip(ctx, err, int(c.lower), int(c.upper), c.persistence)
				err = nil
				continue
			}
			return
		}
		last := e.history[len(e.history)-1]
		e.log.LogCancel(ctx, last.Order, int(last.Lower), int(last.Upper), last.Persistence)
		n++
	}
	nodes := e.graph.NumNodes()
	e.log.LogPhase(ctx, "simplify", time.Since(start),
		"threshold", threshold,
		"cancelled", n,
		"critical_vertices", nodes[cc.Vertex],
		"critical_edges", nodes[cc.Edge],
		"critical_faces", nodes[cc.Face],
	)
	return
}

func (e *Engine) tryCandidate(c candidate) error {
	if !e.graph.HasNode(c.lower) || !e.graph.HasNode(c.upper) {
		return fmt.Errorf("%w: endpoint no longer critical", ErrStaleCandidate)
	}
	a, ok := e.graph.Arc(c.arc)
	if !ok {
		return fmt.Errorf("%w: arc %d removed", ErrStaleCandidate, c.arc)
	}
	if m := e.graph.Multiplicity(c.upper, c.lower); m != 1 {
		return fmt.Errorf("%w: multiplicity %d", ErrNotUnique, m)
	}
	return e.cancel(a)
}

// Cancel cancels a specific pair. It fails without touching any state when the
// pair is not joined by exactly one separatrix.
func (e *Engine) Cancel(upper, lower cc.CellID) error {
	for _, c := range []cc.CellID{upper, lower} {
		if !e.graph.HasNode(c) {
			return fmt.Errorf("%w: %d", ErrNotCritical, c)
		}
	}
	arcs := e.graph.ArcsBetween(upper, lower)
	switch len(arcs) {
	case 0:
		return fmt.Errorf("%w: %d and %d", ErrNotConnected, upper, lower)
	case 1:
		return e.cancel(arcs[0])
	}
	return fmt.Errorf("%w: %d arcs join %d and %d", ErrNotUnique, len(arcs), upper, lower)
}

// cancel reverses the arc's path in the field, reroutes every separatrix that
// ended on the pair through the reversed path, and drops the pair from the graph.
//
// With lower L and upper U, each arc X->L (X != U) is joined with each arc U->Y
// (other than the cancelled one) into a new arc X->Y running X->L, then up the
// reversed path to U, then down U->Y.
func (e *Engine) cancel(a *Arc) error {
	var (
		cx       = e.graph.Complex()
		lower    = a.Lower
		upper    = a.Upper
		incoming []*Arc
		outgoing []*Arc
	)
	for _, x := range e.graph.UpArcs(lower) {
		if x.Upper != upper {
			incoming = append(incoming, x)
		}
	}
	for _, y := range e.graph.DownArcs(upper) {
		if y.ID != a.ID {
			outgoing = append(outgoing, y)
		}
	}
	if err := e.field.Reverse(a.Path); err != nil {
		return fmt.Errorf("morse: cancelling %d-%d: %w", lower, upper, err)
	}
	e.history = append(e.history, Cancellation{
		Order:       len(e.history),
		Lower:       lower,
		Upper:       upper,
		Dim:         a.Dim,
		LowerValue:  cx.Value(lower),
		UpperValue:  cx.Value(upper),
		Persistence: a.Persistence,
	})

	up := reversed(a.Path)[1:]
	paths := make([][]cc.CellID, 0, len(incoming)*len(outgoing))
	for _, x := range incoming {
		for _, y := range outgoing {
			paths = append(paths, splice(x.Path, up, y.Path[1:]))
		}
	}
	e.graph.RemoveNode(lower)
	e.graph.RemoveNode(upper)
	added := make([]*Arc, len(paths))
	for i, p := range paths {
		added[i] = e.graph.AddArc(p)
	}
	for _, na := range added {
		e.offer(na)
	}
	if e.checks {
		return e.checkInvariants(added)
	}
	return nil
}

func (e *Engine) checkInvariants(added []*Arc) error {
	if err := e.field.Validate(); err != nil {
		return err
	}
	if err := e.field.CheckAcyclic(); err != nil {
		return err
	}
	for _, a := range added {
		if err := e.field.CheckPath(a.Path); err != nil {
			return fmt.Errorf("morse: rerouted arc %d: %w", a.ID, err)
		}
	}
	return nil
}

func reversed(path []cc.CellID) []cc.CellID {
	out := make([]cc.CellID, len(path))
	for i, c := range path {
		out[len(path)-1-i] = c
	}
	return out
}

// splice concatenates path pieces, dropping immediate backtracks x, y, x -> x.
func splice(parts ...[]cc.CellID) (out []cc.CellID) {
	for _, p := range parts {
		for _, c := range p {
			if n := len(out); n >= 2 && out[n-2] == c {
				out = out[:n-1]
				continue
			}
			out = append(out, c)
		}
	}
	return
}
