package interp

import (
	"fmt"
	"strings"

	"github.com/cwbudde/gosas/internal/ast"
	"github.com/cwbudde/gosas/internal/catalog"
	"github.com/cwbudde/gosas/internal/errs"
	"github.com/cwbudde/gosas/internal/interp/stats"
	"github.com/cwbudde/gosas/internal/sink"
	"github.com/cwbudde/gosas/internal/sortutil"
	"github.com/cwbudde/gosas/internal/value"
)

func (ip *Interpreter) resolveDataset(name string, pos ast.Node) *catalog.Dataset {
	lr, nm := catalog.SplitName(name)
	ds, ok := ip.catalog.GetDataset(lr, nm)
	if !ok {
		ip.abort(errs.UndefinedName, pos.Pos(), "dataset %s does not exist", name)
	}
	return ds
}

// runProcSort implements PROC SORT (spec.md §4.8): copies Input into Output
// (or sorts Input in place when Output is empty), applying WHERE, then BY,
// then NODUPKEY.
func (ip *Interpreter) runProcSort(n *ast.ProcSort) {
	src := ip.resolveDataset(n.Input, n)

	outName := n.Output
	if outName == "" {
		outName = n.Input
	}
	outLr, outNm := catalog.SplitName(outName)
	out, err := ip.catalog.CreateDataset(outLr, outNm)
	if err != nil {
		ip.abort(errs.UndefinedName, n.Pos(), "%s", err.Error())
	}
	for _, col := range src.Columns {
		out.EnsureColumn(col.Name, col.IsNumeric)
	}

	scratchCtx := newStepCtx(out)
	for _, col := range src.Columns {
		scratchCtx.pdv.Add(col.Name, col.IsNumeric)
	}

	for _, row := range src.Rows {
		if n.Where != nil {
			scratchCtx.pdv.LoadRow(src, row)
			if !value.Truthy(ip.evalExpr(scratchCtx, n.Where)) {
				continue
			}
		}
		newRow := out.NewRow()
		for _, col := range src.Columns {
			catalog.Put(newRow, col.Name, src.Get(row, col.Name))
		}
		out.Rows = append(out.Rows, newRow)
	}

	sortutil.ByVars(out, n.By)
	if n.NoDupKey {
		removed := sortutil.Dedup(out, n.By)
		if removed > 0 {
			ip.note("%d observations with duplicate key values were deleted.", removed)
		}
	}
	ip.noteDatasetCreated(out)
}

// runProcPrint implements PROC PRINT (spec.md §4.8): a simple tab-separated
// listing with an observation number column unless NOOBS was given.
func (ip *Interpreter) runProcPrint(n *ast.ProcPrint) {
	ds := ip.resolveDataset(n.Data, n)
	cols := n.Vars
	if len(cols) == 0 {
		cols = make([]string, len(ds.Columns))
		for i, c := range ds.Columns {
			cols[i] = c.Name
		}
	}

	if ip.title != "" {
		ip.listing.Writeln(sink.LevelInfo, ip.title)
	}

	header := strings.Builder{}
	if !n.NoObs {
		header.WriteString("Obs\t")
	}
	header.WriteString(strings.Join(cols, "\t"))
	ip.listing.Writeln(sink.LevelInfo, header.String())

	limit := len(ds.Rows)
	if n.Obs > 0 && n.Obs < limit {
		limit = n.Obs
	}
	for i := 0; i < limit; i++ {
		row := ds.Rows[i]
		line := strings.Builder{}
		if !n.NoObs {
			fmt.Fprintf(&line, "%d\t", i+1)
		}
		for j, colName := range cols {
			if j > 0 {
				line.WriteString("\t")
			}
			line.WriteString(value.ToString(ds.Get(row, colName)))
		}
		ip.listing.Writeln(sink.LevelInfo, line.String())
	}
}

// runProcMeans implements PROC MEANS (spec.md §4.8): N, MEAN, MIN, MAX, STD
// per numeric variable (Open Question decision recorded in DESIGN.md).
func (ip *Interpreter) runProcMeans(n *ast.ProcMeans) {
	ds := ip.resolveDataset(n.Data, n)
	vars := n.Vars
	if len(vars) == 0 {
		for _, c := range ds.Columns {
			if c.IsNumeric {
				vars = append(vars, c.Name)
			}
		}
	}

	if ip.title != "" {
		ip.listing.Writeln(sink.LevelInfo, ip.title)
	}
	ip.listing.Writeln(sink.LevelInfo, "Variable\tN\tMean\tMin\tMax\tStd Dev")

	for _, v := range vars {
		var vals []float64
		for _, row := range ds.Rows {
			val := value.ToNumber(ds.Get(row, v))
			if !val.Missing {
				vals = append(vals, val.Num)
			}
		}
		s := stats.Summarize(vals)
		ip.listing.Writeln(sink.LevelInfo, fmt.Sprintf("%s\t%d\t%.4f\t%.4f\t%.4f\t%.4f", v, s.N, s.Mean, s.Min, s.Max, s.Std))
	}
}

// runProcFreq implements PROC FREQ (spec.md §4.8): a one-way frequency
// table per TABLES variable, rows sorted by descending count, ties broken
// by ascending value (first./last. grouping is out of scope, DESIGN.md).
func (ip *Interpreter) runProcFreq(n *ast.ProcFreq) {
	ds := ip.resolveDataset(n.Data, n)

	if ip.title != "" {
		ip.listing.Writeln(sink.LevelInfo, ip.title)
	}

	for _, v := range n.Tables {
		ip.listing.Writeln(sink.LevelInfo, fmt.Sprintf("%s frequency", v))
		ip.listing.Writeln(sink.LevelInfo, "Value\tFrequency")
		var vals []string
		for _, row := range ds.Rows {
			cell := ds.Get(row, v)
			if cell.IsMissing() {
				continue
			}
			vals = append(vals, value.ToString(cell))
		}
		for _, e := range stats.Frequency(vals) {
			ip.listing.Writeln(sink.LevelInfo, fmt.Sprintf("%s\t%d", e.Value, e.Count))
		}
	}
}
