package persistence

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Stats struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Median float64
}

// Summarize describes a set of finite persistence values. An empty set yields
// the zero Stats; StdDev is zero for a single value.
func Summarize(ps []float64) (s Stats) {
	if s.Count = len(ps); s.Count == 0 {
		return
	}
	sorted := append([]float64(nil), ps...)
	sort.Float64s(sorted)
	s.Min, s.Max = floats.Min(sorted), floats.Max(sorted)
	s.Mean = stat.Mean(sorted, nil)
	if s.Count > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	return
}
