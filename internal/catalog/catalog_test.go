package catalog

import (
	"testing"

	"github.com/cwbudde/gosas/internal/value"
)

func TestWorkLibraryExistsByDefault(t *testing.T) {
	c := New()
	if c.GetLibrary("WORK") == nil {
		t.Fatal("expected WORK library to exist")
	}
	if c.GetLibrary("work") == nil {
		t.Fatal("GetLibrary should be case-insensitive")
	}
}

func TestGetOrCreateDatasetDefaultsToWork(t *testing.T) {
	c := New()
	ds, err := c.GetOrCreateDataset("", "A")
	if err != nil {
		t.Fatal(err)
	}
	if ds.Name != "WORK.A" {
		t.Fatalf("expected WORK.A, got %s", ds.Name)
	}

	ds2, err := c.GetOrCreateDataset("", "a")
	if err != nil {
		t.Fatal(err)
	}
	if ds2 != ds {
		t.Fatal("expected case-insensitive dataset lookup to return same dataset")
	}
}

func TestColumnOrderIsFirstSeen(t *testing.T) {
	ds := NewDataset("WORK.A")
	ds.EnsureColumn("b", true)
	ds.EnsureColumn("a", true)
	ds.EnsureColumn("b", true) // no-op, already present
	if len(ds.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(ds.Columns))
	}
	if ds.Columns[0].Name != "b" || ds.Columns[1].Name != "a" {
		t.Fatalf("unexpected column order: %+v", ds.Columns)
	}
}

func TestMissingColumnReadsTyped(t *testing.T) {
	ds := NewDataset("WORK.A")
	ds.EnsureColumn("n", true)
	ds.EnsureColumn("s", false)
	row := ds.NewRow()
	if got := ds.Get(row, "n"); !got.Missing {
		t.Errorf("expected numeric missing, got %+v", got)
	}
	if got := ds.Get(row, "s"); got.Str != "" {
		t.Errorf("expected empty string missing, got %+v", got)
	}
	_ = value.NumMissing
}

func TestUndefinedLibrefIsAnError(t *testing.T) {
	c := New()
	if _, err := c.GetOrCreateDataset("NOPE", "x"); err == nil {
		t.Fatal("expected an error for undefined libref")
	}
}
