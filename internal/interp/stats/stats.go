// Package stats implements the PROC MEANS/FREQ statistic accumulators
// (spec.md §4.8). DWScript, the teacher repo, has no tabular-procedure
// analogue; this package is built directly from spec.md and kept separate
// the way the teacher isolates each builtin concern into its own file
// (DESIGN.md).
package stats

import (
	"math"
	"sort"
)

// Summary holds PROC MEANS' per-variable statistics: N, mean, min, max,
// sample standard deviation.
type Summary struct {
	N    int
	Mean float64
	Min  float64
	Max  float64
	Std  float64
}

// Summarize computes Summary over non-missing values. An empty input
// yields a zero-N Summary with all other fields zero.
func Summarize(vals []float64) Summary {
	if len(vals) == 0 {
		return Summary{}
	}
	s := Summary{N: len(vals), Min: vals[0], Max: vals[0]}
	sum := 0.0
	for _, v := range vals {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = sum / float64(len(vals))

	if len(vals) > 1 {
		var sq float64
		for _, v := range vals {
			d := v - s.Mean
			sq += d * d
		}
		s.Std = math.Sqrt(sq / float64(len(vals)-1))
	}
	return s
}

// FreqEntry is one PROC FREQ row: a distinct value and its occurrence count.
type FreqEntry struct {
	Value string
	Count int
}

// Frequency tabulates vals into FreqEntry rows sorted by descending count,
// ties broken by ascending value (spec.md §4.8).
func Frequency(vals []string) []FreqEntry {
	counts := make(map[string]int)
	for _, v := range vals {
		counts[v]++
	}
	entries := make([]FreqEntry, 0, len(counts))
	for v, c := range counts {
		entries = append(entries, FreqEntry{Value: v, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Value < entries[j].Value
	})
	return entries
}
