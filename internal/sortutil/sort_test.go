package sortutil

import (
	"testing"

	"github.com/cwbudde/gosas/internal/catalog"
	"github.com/cwbudde/gosas/internal/value"
)

func makeDataset(keys []float64) *catalog.Dataset {
	ds := catalog.NewDataset("WORK.A")
	ds.EnsureColumn("k", true)
	for _, k := range keys {
		row := ds.NewRow()
		catalog.Put(row, "k", value.NewNumber(k))
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

func keysOf(ds *catalog.Dataset) []float64 {
	out := make([]float64, len(ds.Rows))
	for i, r := range ds.Rows {
		out[i] = ds.Get(r, "k").Num
	}
	return out
}

func TestByVarsSortsAscending(t *testing.T) {
	ds := makeDataset([]float64{3, 1, 2})
	ByVars(ds, []string{"k"})
	got := keysOf(ds)
	want := []float64{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestIsSortedIdempotence(t *testing.T) {
	ds := makeDataset([]float64{1, 2, 3})
	if !IsSorted(ds, []string{"k"}) {
		t.Fatal("expected already-sorted dataset to report sorted")
	}
	before := append([]float64(nil), keysOf(ds)...)
	ByVars(ds, []string{"k"})
	after := keysOf(ds)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("sorting an already-sorted dataset changed order: %v -> %v", before, after)
		}
	}
}

func TestDedupKeepsFirstOfEachGroup(t *testing.T) {
	ds := catalog.NewDataset("WORK.A")
	ds.EnsureColumn("k", true)
	ds.EnsureColumn("v", true)
	for _, pair := range [][2]float64{{1, 10}, {1, 20}, {2, 30}} {
		row := ds.NewRow()
		catalog.Put(row, "k", value.NewNumber(pair[0]))
		catalog.Put(row, "v", value.NewNumber(pair[1]))
		ds.Rows = append(ds.Rows, row)
	}
	removed := Dedup(ds, []string{"k"})
	if removed != 1 {
		t.Fatalf("expected 1 row removed, got %d", removed)
	}
	if len(ds.Rows) != 2 {
		t.Fatalf("expected 2 remaining rows, got %d", len(ds.Rows))
	}
	if ds.Get(ds.Rows[0], "v").Num != 10 {
		t.Errorf("expected first of group kept (v=10), got %v", ds.Get(ds.Rows[0], "v").Num)
	}
}
