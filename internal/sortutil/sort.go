// Package sortutil implements the BY-variable sort and NODUPKEY dedup used
// by PROC SORT and by MERGE's pre-sort step (spec.md §4.7 step 1, §4.8).
package sortutil

import (
	"sort"
	"strings"

	"github.com/cwbudde/gosas/internal/catalog"
	"github.com/cwbudde/gosas/internal/value"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collator gives string BY-values a deterministic, locale-stable ordering
// by the Unicode collation rules of the root locale. This is not byte
// order, even for ASCII: letters compare case-insensitively first, so "a"
// sorts before "B".
var collator = collate.New(language.Und)

// ByVars sorts ds.Rows in place, ascending, by the named BY variables
// (spec.md §4.8). The sort is stable, matching §5's "PROC SORT produces a
// stable order" guarantee.
func ByVars(ds *catalog.Dataset, byVars []string) {
	sort.SliceStable(ds.Rows, func(i, j int) bool {
		return compareRows(ds, ds.Rows[i], ds.Rows[j], byVars) < 0
	})
}

// compareRows compares two rows by the BY-variable key, returning <0, 0, or
// >0. Numeric variables compare numerically; character variables compare
// via collate for deterministic ordering of multi-byte content.
func compareRows(ds *catalog.Dataset, a, b catalog.Row, byVars []string) int {
	for _, name := range byVars {
		va := ds.Get(a, name)
		vb := ds.Get(b, name)
		if c := compareValues(va, vb); c != 0 {
			return c
		}
	}
	return 0
}

func compareValues(a, b value.Value) int {
	if a.Kind == value.Number || b.Kind == value.Number {
		na, nb := value.ToNumber(a), value.ToNumber(b)
		switch {
		case na.Missing && nb.Missing:
			return 0
		case na.Missing:
			return -1
		case nb.Missing:
			return 1
		case na.Num < nb.Num:
			return -1
		case na.Num > nb.Num:
			return 1
		default:
			return 0
		}
	}
	return collator.CompareString(a.Str, b.Str)
}

// IsSorted reports whether ds.Rows is already non-decreasing by byVars,
// used so a DATA step's implicit MERGE pre-sort (spec.md §4.7 step 1) can
// skip re-sorting an already-ordered input and simply record the fact.
func IsSorted(ds *catalog.Dataset, byVars []string) bool {
	for i := 1; i < len(ds.Rows); i++ {
		if compareRows(ds, ds.Rows[i-1], ds.Rows[i], byVars) > 0 {
			return false
		}
	}
	return true
}

// Dedup removes all but the first row of each equal-BY-key run (NODUPKEY).
// ds.Rows must already be sorted by byVars. Returns the number of rows
// removed, which the caller logs (spec.md §4.8: "the remaining group's
// count is logged").
func Dedup(ds *catalog.Dataset, byVars []string) int {
	if len(ds.Rows) == 0 {
		return 0
	}
	out := ds.Rows[:1]
	removed := 0
	for i := 1; i < len(ds.Rows); i++ {
		if compareRows(ds, out[len(out)-1], ds.Rows[i], byVars) == 0 {
			removed++
			continue
		}
		out = append(out, ds.Rows[i])
	}
	ds.Rows = out
	return removed
}

// KeyString renders a row's BY-key as a display string, joining the
// formatted BY values with the 0x1f unit separator.
func KeyString(ds *catalog.Dataset, row catalog.Row, byVars []string) string {
	parts := make([]string, len(byVars))
	for i, name := range byVars {
		parts[i] = value.ToString(ds.Get(row, name))
	}
	return strings.Join(parts, "\x1f")
}

// CompareValues exposes compareValues for the MERGE k-way cursor, which
// needs to find the minimum key across several input cursors directly
// rather than through a Dataset pair.
func CompareValues(a, b value.Value) int { return compareValues(a, b) }
