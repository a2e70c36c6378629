package pipeline

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	cc "github.com/notargets/gomorse/cellcomplex"
	"github.com/notargets/gomorse/persistence"
	"github.com/notargets/gomorse/segmentation"
)

// Report is the serialisable summary of a run. Infinite values are not
// representable in JSON, so a complete simplification leaves Threshold nil
// and surviving cells are listed under Essential.
type Report struct {
	Title         string
	Cells         [3]int
	Euler         int
	Threshold     *float64 `json:",omitempty"`
	RawCounts     [3]int
	FinalCounts   [3]int
	Cancellations int
	Pairs         []PairRecord
	Essential     []EssentialRecord
	Betti         []BettiRecord
	Stats         persistence.Stats
	ReducedBetti  *[3]int     `json:",omitempty"`
	HomologyBetti *[3]int     `json:",omitempty"`
	Labels        int         `json:",omitempty"`
	LabelSizes    map[int]int `json:",omitempty"`
	Unlabelled    int         `json:",omitempty"`
	Elapsed       time.Duration
}

type PairRecord struct {
	Order       int
	Dim         int
	Lower       int
	Upper       int
	Birth       float64
	Death       float64
	Persistence float64
}

type EssentialRecord struct {
	Cell  int
	Dim   int
	Value float64
}

// BettiRecord holds the critical counts alive at Threshold. Thresholds above
// the simplification threshold report the final counts.
type BettiRecord struct {
	Threshold float64
	Betti     [3]int
}

func newReport(cfg Config, res *Result) *Report {
	var (
		dg = res.Diagram
		r  = &Report{
			Title:       cfg.Title,
			Cells:       res.Complex.Counts(),
			Euler:       res.Complex.EulerCharacteristic(),
			RawCounts:   dg.RawCounts(),
			FinalCounts: dg.FinalCounts(),
		}
	)
	if !math.IsInf(cfg.Threshold, 1) {
		tau := cfg.Threshold
		r.Threshold = &tau
	}
	for _, e := range dg.Finite() {
		r.Pairs = append(r.Pairs, PairRecord{
			Order:       e.Order,
			Dim:         int(e.BirthDim),
			Lower:       int(e.BirthCell),
			Upper:       int(e.DeathCell),
			Birth:       e.Birth,
			Death:       e.Death,
			Persistence: e.Persistence,
		})
	}
	r.Cancellations = len(r.Pairs)
	for _, e := range dg.Infinite() {
		r.Essential = append(r.Essential, EssentialRecord{
			Cell:  int(e.BirthCell),
			Dim:   int(e.BirthDim),
			Value: e.Birth,
		})
	}
	thresholds := append([]float64(nil), cfg.Thresholds...)
	sort.Float64s(thresholds)
	for i, b := range dg.Table(thresholds) {
		r.Betti = append(r.Betti, BettiRecord{Threshold: thresholds[i], Betti: b})
	}
	r.Stats = persistence.Summarize(dg.Persistences())
	return r
}

func (r *Report) addSegmentation(s *segmentation.Segmentation) {
	r.Labels = s.NumLabels
	r.LabelSizes = s.Sizes()
	r.Unlabelled = len(s.Unlabelled)
}

// Print writes a human readable summary.
func (r *Report) Print(w io.Writer) {
	if r.Title != "" {
		fmt.Fprintf(w, "%s\n", r.Title)
	}
	fmt.Fprintf(w, "cells (V, E, F)        = %v, Euler characteristic %d\n", r.Cells, r.Euler)
	fmt.Fprintf(w, "critical before        = %v\n", r.RawCounts)
	fmt.Fprintf(w, "critical after         = %v\n", r.FinalCounts)
	if r.Threshold != nil {
		fmt.Fprintf(w, "threshold              = %g\n", *r.Threshold)
	}
	fmt.Fprintf(w, "cancellations          = %d\n", r.Cancellations)
	if r.Stats.Count > 0 {
		fmt.Fprintf(w, "persistence min/median/max = %.6g / %.6g / %.6g, mean %.6g, std dev %.6g\n",
			r.Stats.Min, r.Stats.Median, r.Stats.Max, r.Stats.Mean, r.Stats.StdDev)
	}
	for _, b := range r.Betti {
		fmt.Fprintf(w, "Betti at %-12g = %v\n", b.Threshold, b.Betti)
	}
	if r.HomologyBetti != nil {
		fmt.Fprintf(w, "homology Betti         = %v\n", *r.HomologyBetti)
	}
	for _, e := range r.Essential {
		fmt.Fprintf(w, "essential %-6s %8d  value %g\n", cc.Dim(e.Dim), e.Cell, e.Value)
	}
	if r.Labels > 0 {
		fmt.Fprintf(w, "segmentation           = %d cells, %d unlabelled vertices\n", r.Labels, r.Unlabelled)
	}
	fmt.Fprintf(w, "elapsed                = %v\n", r.Elapsed)
}
