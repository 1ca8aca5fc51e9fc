// Package catalog owns every Library and Dataset for the lifetime of a
// program run (spec.md §4.4). It is single-owned by the interpreter; no
// external mutator exists (spec.md §5).
package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/cwbudde/gosas/internal/value"
)

// AccessMode is a library's access mode.
type AccessMode int

const (
	ReadWrite AccessMode = iota
	ReadOnly
	Temp
)

// ColumnMeta describes one dataset variable.
type ColumnMeta struct {
	Name      string
	IsNumeric bool
	Length    int
	Label     string
	Format    string
	Decimals  int
}

// Row is one observation: a mapping from column name (case-insensitive via
// the owning Dataset) to Value.
type Row map[string]value.Value

// Dataset is an ordered column list plus an ordered row list.
type Dataset struct {
	Name    string // "LIBREF.NAME" in display case
	Columns []ColumnMeta
	Rows    []Row

	lowerIndex map[string]int // lower(name) -> index into Columns
}

// NewDataset creates an empty dataset under the given display name.
func NewDataset(name string) *Dataset {
	return &Dataset{Name: name, lowerIndex: make(map[string]int)}
}

// EnsureColumn adds column `name` if not already present (case-insensitive,
// preserving first-declared case), appending to the end — variable order is
// first-seen order (spec.md §3 invariants). Returns the column's index.
func (d *Dataset) EnsureColumn(name string, isNumeric bool) int {
	lower := strings.ToLower(name)
	if idx, ok := d.lowerIndex[lower]; ok {
		return idx
	}
	idx := len(d.Columns)
	d.Columns = append(d.Columns, ColumnMeta{Name: name, IsNumeric: isNumeric, Length: defaultLength(isNumeric)})
	d.lowerIndex[lower] = idx
	return idx
}

func defaultLength(isNumeric bool) int {
	if isNumeric {
		return 8
	}
	return 200
}

// ColumnIndex returns the index of `name`, case-insensitively, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	if idx, ok := d.lowerIndex[strings.ToLower(name)]; ok {
		return idx
	}
	return -1
}

// Column returns the ColumnMeta for `name`, and whether it exists.
func (d *Dataset) Column(name string) (ColumnMeta, bool) {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return ColumnMeta{}, false
	}
	return d.Columns[idx], true
}

// SetColumnMeta overwrites the metadata for an existing or new column.
func (d *Dataset) SetColumnMeta(meta ColumnMeta) {
	idx := d.EnsureColumn(meta.Name, meta.IsNumeric)
	meta.Name = d.Columns[idx].Name // preserve first-declared display case
	d.Columns[idx] = meta
}

// Get reads column `name` from row r, returning the typed-missing default
// when the row has no entry for it (spec.md §3 invariants).
func (d *Dataset) Get(r Row, name string) value.Value {
	col, ok := d.Column(name)
	if !ok {
		return value.NumMissing
	}
	if v, ok := r[strings.ToLower(name)]; ok {
		return v
	}
	if col.IsNumeric {
		return value.NumMissing
	}
	return value.StrMissing
}

// NewRow builds an empty Row keyed by lower-cased column names so Get/Put
// stay case-insensitive without rescanning Columns.
func (d *Dataset) NewRow() Row { return make(Row) }

// Put writes value v into row r under column `name` (case-insensitive key).
func Put(r Row, name string, v value.Value) {
	r[strings.ToLower(name)] = v
}

// RowValue reads `name` out of r directly (case-insensitive), without
// dataset-level missing-default handling. Used by code that already knows
// the column exists.
func RowValue(r Row, name string) (value.Value, bool) {
	v, ok := r[strings.ToLower(name)]
	return v, ok
}

// Library is a named collection of datasets sharing a path and access mode.
type Library struct {
	Libref    string // uppercased
	Path      string
	Access    AccessMode
	CreatedAt time.Time
	Datasets  map[string]*Dataset // keyed by lower(name)
	names     map[string]string   // lower(name) -> display name
}

func newLibrary(libref, path string, access AccessMode) *Library {
	return &Library{
		Libref:    strings.ToUpper(libref),
		Path:      path,
		Access:    access,
		CreatedAt: time.Now(),
		Datasets:  make(map[string]*Dataset),
		names:     make(map[string]string),
	}
}

// Catalog owns all libraries for a program run. A WORK library with Temp
// access is created automatically.
type Catalog struct {
	libraries map[string]*Library // keyed by uppercased libref
}

// New creates a Catalog with the WORK library already registered.
func New() *Catalog {
	c := &Catalog{libraries: make(map[string]*Library)}
	c.libraries["WORK"] = newLibrary("WORK", "", Temp)
	return c
}

// DefineLibrary registers a library (LIBNAME statement).
func (c *Catalog) DefineLibrary(libref, path string, access AccessMode) *Library {
	lib := newLibrary(libref, path, access)
	c.libraries[lib.Libref] = lib
	return lib
}

// GetLibrary returns the library for libref, or nil.
func (c *Catalog) GetLibrary(libref string) *Library {
	return c.libraries[strings.ToUpper(libref)]
}

// Libraries returns all registered libraries, keyed by uppercased libref
// (for read-only enumeration).
func (c *Catalog) Libraries() map[string]*Library {
	return c.libraries
}

// SplitName splits "LIBREF.NAME" into (libref, name); a bare name defaults
// libref to "" (meaning WORK, resolved by GetOrCreateDataset).
func SplitName(full string) (libref, name string) {
	if i := strings.IndexByte(full, '.'); i >= 0 {
		return full[:i], full[i+1:]
	}
	return "", full
}

// GetOrCreateDataset resolves "libref.name" (missing libref defaults to
// WORK) and creates the dataset if it doesn't exist yet.
func (c *Catalog) GetOrCreateDataset(libref, name string) (*Dataset, error) {
	if libref == "" {
		libref = "WORK"
	}
	lib := c.GetLibrary(libref)
	if lib == nil {
		return nil, fmt.Errorf("libref %s is not defined", strings.ToUpper(libref))
	}
	lower := strings.ToLower(name)
	if ds, ok := lib.Datasets[lower]; ok {
		return ds, nil
	}
	ds := NewDataset(fmt.Sprintf("%s.%s", lib.Libref, name))
	lib.Datasets[lower] = ds
	lib.names[lower] = name
	return ds, nil
}

// CreateDataset resolves "libref.name" (missing libref defaults to WORK)
// and replaces any existing dataset of that name with a fresh, empty one.
// Used by a DATA/PROC step to (re)materialize the dataset it owns, since a
// step that runs again fully replaces its prior output (spec.md §3
// lifecycle: a dataset is "mutated only by the step that owns them").
func (c *Catalog) CreateDataset(libref, name string) (*Dataset, error) {
	if libref == "" {
		libref = "WORK"
	}
	lib := c.GetLibrary(libref)
	if lib == nil {
		return nil, fmt.Errorf("libref %s is not defined", strings.ToUpper(libref))
	}
	ds := NewDataset(fmt.Sprintf("%s.%s", lib.Libref, name))
	lower := strings.ToLower(name)
	lib.Datasets[lower] = ds
	lib.names[lower] = name
	return ds, nil
}

// GetDataset resolves an existing "libref.name" without creating it.
func (c *Catalog) GetDataset(libref, name string) (*Dataset, bool) {
	if libref == "" {
		libref = "WORK"
	}
	lib := c.GetLibrary(libref)
	if lib == nil {
		return nil, false
	}
	ds, ok := lib.Datasets[strings.ToLower(name)]
	return ds, ok
}
