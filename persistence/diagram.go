// Package persistence turns a cancellation history into a persistence diagram
// and Betti numbers, and cross-checks them by Z2 reduction of the Morse complex.
package persistence

import (
	"math"

	cc "github.com/notargets/gomorse/cellcomplex"
	"github.com/notargets/gomorse/gradient"
	"github.com/notargets/gomorse/morse"
)

// Entry is one point of the diagram. Finite entries come from cancellations and
// are born at the lower cell and die at the upper one. Infinite entries are the
// critical cells that survived simplification; Death and Persistence are +Inf
// and DeathCell is cc.None.
type Entry struct {
	Order       int // cancellation order, -1 for infinite entries
	BirthDim    cc.Dim
	DeathDim    cc.Dim
	Birth       float64
	Death       float64
	Persistence float64
	BirthCell   cc.CellID
	DeathCell   cc.CellID
	Infinite    bool
}

type Diagram struct {
	entries []Entry
	raw     [3]int
	final   [3]int
}

// NewDiagram records history in order followed by one infinite entry per
// surviving critical cell of f, in ascending cell id. raw is the critical
// count before any cancellation.
func NewDiagram(f *gradient.Field, history []morse.Cancellation, raw [3]int) *Diagram {
	var (
		cx = f.Complex()
		dg = &Diagram{raw: raw, final: f.CriticalCount()}
	)
	dg.entries = make([]Entry, 0, len(history)+dg.final[0]+dg.final[1]+dg.final[2])
	for _, c := range history {
		dg.entries = append(dg.entries, Entry{
			Order:       c.Order,
			BirthDim:    c.Dim,
			DeathDim:    c.Dim + 1,
			Birth:       c.LowerValue,
			Death:       c.UpperValue,
			Persistence: c.Persistence,
			BirthCell:   c.Lower,
			DeathCell:   c.Upper,
		})
	}
	for d := cc.Vertex; d <= cc.MaxDim; d++ {
		for _, c := range f.Critical(d) {
			dg.entries = append(dg.entries, Entry{
				Order:       -1,
				BirthDim:    d,
				DeathDim:    d,
				Birth:       cx.Value(c),
				Death:       math.Inf(1),
				Persistence: math.Inf(1),
				BirthCell:   c,
				DeathCell:   cc.None,
				Infinite:    true,
			})
		}
	}
	return dg
}

// Entries returns a copy of every entry, finite ones first.
func (dg *Diagram) Entries() []Entry {
	out := make([]Entry, len(dg.entries))
	copy(out, dg.entries)
	return out
}

func (dg *Diagram) Finite() (out []Entry) {
	for _, e := range dg.entries {
		if !e.Infinite {
			out = append(out, e)
		}
	}
	return
}

func (dg *Diagram) Infinite() (out []Entry) {
	for _, e := range dg.entries {
		if e.Infinite {
			out = append(out, e)
		}
	}
	return
}

// Persistences lists the finite persistence values in cancellation order.
func (dg *Diagram) Persistences() (ps []float64) {
	for _, e := range dg.entries {
		if !e.Infinite {
			ps = append(ps, e.Persistence)
		}
	}
	return
}

// BettiAt counts the critical cells of each dimension alive at threshold tau:
// survivors plus cells whose cancellation persistence exceeds tau. A tau of
// zero or less keeps every cell, including pairs of zero persistence from
// plateaus, so BettiAt(0) equals RawCounts.
func (dg *Diagram) BettiAt(tau float64) (b [3]int) {
	for _, e := range dg.entries {
		switch {
		case e.Infinite:
			b[e.BirthDim]++
		case tau <= 0 || e.Persistence > tau:
			b[e.BirthDim]++
			b[e.DeathDim]++
		}
	}
	return
}

// Table evaluates BettiAt for each threshold.
func (dg *Diagram) Table(thresholds []float64) [][3]int {
	out := make([][3]int, len(thresholds))
	for i, tau := range thresholds {
		out[i] = dg.BettiAt(tau)
	}
	return out
}

// RawCounts is the number of critical cells per dimension before simplification.
func (dg *Diagram) RawCounts() [3]int { return dg.raw }

// FinalCounts is the number of critical cells per dimension after simplification.
func (dg *Diagram) FinalCounts() [3]int { return dg.final }

func (dg *Diagram) EulerCharacteristic() int {
	return dg.final[0] - dg.final[1] + dg.final[2]
}
