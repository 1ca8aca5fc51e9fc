package interp

import (
	"strings"

	"github.com/cwbudde/gosas/internal/ast"
	"github.com/cwbudde/gosas/internal/catalog"
	"github.com/cwbudde/gosas/internal/errs"
	"github.com/cwbudde/gosas/internal/sortutil"
	"github.com/cwbudde/gosas/internal/value"
)

// runMergeDriven implements the k-way BY-key merge of spec.md §4.7: every
// input is pre-sorted by the BY variables if not already sorted, then
// walked by a cursor per input, grouping by the lowest current key across
// all inputs. Datasets later in the MERGE list win on shared-variable
// conflicts; a dataset not part of a given match contributes nothing to
// that row (Open Question decision recorded in DESIGN.md).
func (ip *Interpreter) runMergeDriven(ctx *stepCtx, merge *ast.MergeStmt, by *ast.ByStmt, body []ast.Statement) {
	if by == nil || len(by.Names) == 0 {
		ip.abort(errs.RuntimeFatal, merge.Pos(), "MERGE requires a BY statement")
	}

	datasets := make([]*catalog.Dataset, len(merge.Datasets))
	for i, name := range merge.Datasets {
		lr, nm := catalog.SplitName(name)
		ds, ok := ip.catalog.GetDataset(lr, nm)
		if !ok {
			ip.abort(errs.UndefinedName, merge.Pos(), "dataset %s does not exist", name)
		}
		datasets[i] = ds
	}

	for _, ds := range datasets {
		if !sortutil.IsSorted(ds, by.Names) {
			sortutil.ByVars(ds, by.Names)
			ip.note("%s was sorted by %s for MERGE.", ds.Name, strings.Join(by.Names, " "))
		}
	}

	union := catalog.NewDataset("(merge)")
	for _, ds := range datasets {
		for _, col := range ds.Columns {
			union.EnsureColumn(col.Name, col.IsNumeric)
		}
	}

	cursors := make([]int, len(datasets))
	for {
		minIdx := -1
		var minKey []value.Value
		for i, ds := range datasets {
			if cursors[i] >= len(ds.Rows) {
				continue
			}
			key := rowKey(ds, ds.Rows[cursors[i]], by.Names)
			if minIdx == -1 || compareKeys(key, minKey) < 0 {
				minIdx = i
				minKey = key
			}
		}
		if minIdx == -1 {
			break
		}

		merged := union.NewRow()
		for i, ds := range datasets {
			if cursors[i] >= len(ds.Rows) {
				continue
			}
			row := ds.Rows[cursors[i]]
			key := rowKey(ds, row, by.Names)
			if compareKeys(key, minKey) != 0 {
				continue
			}
			for _, col := range ds.Columns {
				catalog.Put(merged, col.Name, ds.Get(row, col.Name))
			}
			cursors[i]++
		}

		ctx.pdv.LoadRow(union, merged)
		ip.runIterationBody(ctx, body)
	}
}

func rowKey(ds *catalog.Dataset, row catalog.Row, byVars []string) []value.Value {
	key := make([]value.Value, len(byVars))
	for i, name := range byVars {
		key[i] = ds.Get(row, name)
	}
	return key
}

func compareKeys(a, b []value.Value) int {
	for i := range a {
		if c := sortutil.CompareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}
