// Package pdv implements the Program Data Vector: the per-iteration
// variable table a DATA step reads and writes (spec.md §3, §4.5).
package pdv

import (
	"strings"

	"github.com/cwbudde/gosas/internal/catalog"
	"github.com/cwbudde/gosas/internal/value"
)

// Var extends catalog.ColumnMeta with the retention flag spec.md §4.5
// names. RETAIN introduces variables too; their Retained flag is set at
// declaration and never toggled afterward.
type Var struct {
	catalog.ColumnMeta
	Retained bool
}

// PDV is an ordered list of (Var, Value) slots, built at DATA-step entry
// and discarded at step exit (spec.md §3 lifecycle).
type PDV struct {
	vars   []Var
	values []value.Value
	index  map[string]int // lower(name) -> slot index

	// fromInputRow tracks, for the current iteration, which slots were
	// just overwritten by the input row. Per spec.md §4.5 step 4, those
	// slots behave as retained until the next input row replaces them,
	// even though they are not RETAIN-declared.
	fromInputRow map[string]bool
}

// New creates an empty PDV.
func New() *PDV {
	return &PDV{index: make(map[string]int), fromInputRow: make(map[string]bool)}
}

// Add declares a variable if not already present (idempotent on name,
// case-insensitive) and returns its slot index.
func (p *PDV) Add(name string, isNumeric bool) int {
	lower := strings.ToLower(name)
	if idx, ok := p.index[lower]; ok {
		return idx
	}
	idx := len(p.vars)
	p.vars = append(p.vars, Var{ColumnMeta: catalog.ColumnMeta{Name: name, IsNumeric: isNumeric, Length: defaultLength(isNumeric)}})
	if isNumeric {
		p.values = append(p.values, value.NumMissing)
	} else {
		p.values = append(p.values, value.StrMissing)
	}
	p.index[lower] = idx
	return idx
}

func defaultLength(isNumeric bool) int {
	if isNumeric {
		return 8
	}
	return 200
}

// DeclareLength declares (or redeclares) a variable with an explicit
// storage length (LENGTH statement), overriding the default length Add
// would otherwise assign.
func (p *PDV) DeclareLength(name string, isChar bool, length int) {
	idx := p.Add(name, !isChar)
	if length > 0 {
		p.vars[idx].Length = length
	}
}

// MarkRetained sets the Retained flag on an existing or newly-declared
// variable, optionally seeding its initial value (RETAIN statement).
func (p *PDV) MarkRetained(name string, isNumeric bool, initial *value.Value) {
	idx := p.Add(name, isNumeric)
	p.vars[idx].Retained = true
	if initial != nil {
		p.values[idx] = *initial
	}
}

// IndexOf returns the slot index for name (case-insensitive), or -1.
func (p *PDV) IndexOf(name string) int {
	if idx, ok := p.index[strings.ToLower(name)]; ok {
		return idx
	}
	return -1
}

// Get reads the value at name, returning the typed-missing default if the
// variable is undeclared (caller should usually check IndexOf first when
// "undeclared" needs to raise an UndefinedName warning — spec.md §7).
func (p *PDV) Get(name string) value.Value {
	idx := p.IndexOf(name)
	if idx < 0 {
		return value.NumMissing
	}
	return p.values[idx]
}

// GetAt reads by slot index directly.
func (p *PDV) GetAt(idx int) value.Value { return p.values[idx] }

// Set writes v into the slot for name, declaring the variable (inferring
// numeric unless v is a string) if it doesn't already exist — this is the
// "assignment LHS not yet in the PDV" rule of spec.md §4.5 step 2.
func (p *PDV) Set(name string, v value.Value) {
	idx := p.IndexOf(name)
	if idx < 0 {
		idx = p.Add(name, v.Kind == value.Number)
	}
	p.values[idx] = v
}

// SetAt writes by slot index directly.
func (p *PDV) SetAt(idx int, v value.Value) { p.values[idx] = v }

// Vars returns the PDV's variable slots in declaration order.
func (p *PDV) Vars() []Var { return p.vars }

// LoadRow overwrites only the slots present in the source row (spec.md
// §4.5 step 1), declaring any column from ds not yet in the PDV. Slots
// touched this way are tracked so Reset treats them as retained for this
// iteration only.
func (p *PDV) LoadRow(ds *catalog.Dataset, row catalog.Row) {
	for k := range p.fromInputRow {
		delete(p.fromInputRow, k)
	}
	for _, col := range ds.Columns {
		v := ds.Get(row, col.Name)
		p.Set(col.Name, v)
		p.fromInputRow[strings.ToLower(col.Name)] = true
	}
}

// Snapshot copies the current PDV values into a fresh catalog.Row, honoring
// KEEP (wins on conflict, fixes order) / DROP (first-seen order minus
// dropped names) per spec.md §4.5 step 3. keep==nil means no KEEP was
// given; drop==nil means no DROP was given.
func (p *PDV) Snapshot(ds *catalog.Dataset, keep, drop []string) catalog.Row {
	row := ds.NewRow()
	order := p.projectionOrder(keep, drop)
	for _, name := range order {
		idx := p.IndexOf(name)
		v := p.values[idx]
		ds.SetColumnMeta(p.vars[idx].ColumnMeta)
		catalog.Put(row, p.vars[idx].Name, v)
	}
	return row
}

func (p *PDV) projectionOrder(keep, drop []string) []string {
	if len(keep) > 0 {
		return keep
	}
	if len(drop) == 0 {
		out := make([]string, len(p.vars))
		for i, v := range p.vars {
			out[i] = v.Name
		}
		return out
	}
	dropped := make(map[string]bool, len(drop))
	for _, d := range drop {
		dropped[strings.ToLower(d)] = true
	}
	var out []string
	for _, v := range p.vars {
		if !dropped[strings.ToLower(v.Name)] {
			out = append(out, v.Name)
		}
	}
	return out
}

// Reset clears all non-retained variables to their typed-missing default
// before the next iteration (spec.md §4.5 step 4). Variables just loaded
// from the current input row are treated as retained until the next
// LoadRow replaces them.
func (p *PDV) Reset() {
	for i := range p.vars {
		if p.vars[i].Retained {
			continue
		}
		if p.fromInputRow[strings.ToLower(p.vars[i].Name)] {
			continue
		}
		if p.vars[i].IsNumeric {
			p.values[i] = value.NumMissing
		} else {
			p.values[i] = value.StrMissing
		}
	}
}
