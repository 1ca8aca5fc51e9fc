package interp

import (
	"strconv"
	"strings"

	"github.com/cwbudde/gosas/internal/ast"
	"github.com/cwbudde/gosas/internal/catalog"
	"github.com/cwbudde/gosas/internal/errs"
	"github.com/cwbudde/gosas/internal/token"
	"github.com/cwbudde/gosas/internal/value"
)

// Run walks every top-level statement of prog in order (spec.md §4.2: a
// program is just an ordered list of DATA/PROC steps and global
// statements). source is kept so diagnostics can render a caret-pointer
// source line (spec.md §7).
func (ip *Interpreter) Run(prog *ast.Program, source string) ExitStatus {
	ip.source = source
	for _, stmt := range prog.Statements {
		switch n := stmt.(type) {
		case *ast.DataStep:
			ip.runStepSafely(func() { ip.runDataStep(n) })
		case *ast.ProcSort:
			ip.runStepSafely(func() { ip.runProcSort(n) })
		case *ast.ProcPrint:
			ip.runStepSafely(func() { ip.runProcPrint(n) })
		case *ast.ProcMeans:
			ip.runStepSafely(func() { ip.runProcMeans(n) })
		case *ast.ProcFreq:
			ip.runStepSafely(func() { ip.runProcFreq(n) })
		case *ast.LibnameStmt:
			ip.runLibname(n)
		case *ast.OptionsStmt:
			ip.runOptions(n)
		case *ast.TitleStmt:
			ip.title = n.Text
		}
	}
	return ip.ExitStatus()
}

func (ip *Interpreter) runLibname(n *ast.LibnameStmt) {
	ip.catalog.DefineLibrary(n.Libref, n.Path, catalog.ReadWrite)
	ip.note("Libref %s was successfully assigned.", strings.ToUpper(n.Libref))
}

func (ip *Interpreter) runOptions(n *ast.OptionsStmt) {
	// Options are accepted and logged; spec.md's OPTIONS statement carries
	// no behavior the interpreter needs to act on.
	for _, p := range n.Pairs {
		ip.note("Option %s set to %s.", strings.ToUpper(p.Key), p.Value)
	}
}

// runDataStep drives one "data OUT; ... run;" step through whichever of the
// four iteration modes its body selects (spec.md §4.5): MERGE-driven,
// SET-driven, DATALINES-driven, or the single-iteration case with no input
// at all.
func (ip *Interpreter) runDataStep(step *ast.DataStep) {
	outLibref, outName := catalog.SplitName(step.Output)
	outDS, err := ip.catalog.CreateDataset(outLibref, outName)
	if err != nil {
		ip.abort(errs.UndefinedName, step.Pos(), "%s", err.Error())
	}

	ctx := newStepCtx(outDS)
	applyDeclarations(ctx, step.Body)
	ctx.hasExplicitOutput = containsOutput(step.Body)

	merge, by := findMergeAndBy(step.Body)
	inputStmt, datalines := findInputAndDatalines(step.Body)

	switch {
	case merge != nil:
		ip.runMergeDriven(ctx, merge, by, step.Body)
	case inputStmt != nil && datalines != nil:
		ip.runDatalinesDriven(ctx, inputStmt, datalines, step.Body)
	case step.Input != "":
		ip.runSetDriven(ctx, step.Input, step.Body, step.Pos())
	default:
		ip.runIterationBody(ctx, step.Body)
	}

	ip.noteDatasetCreated(outDS)
}

func (ip *Interpreter) runSetDriven(ctx *stepCtx, inputName string, body []ast.Statement, pos token.Position) {
	lr, nm := catalog.SplitName(inputName)
	inDS, ok := ip.catalog.GetDataset(lr, nm)
	if !ok {
		ip.abort(errs.UndefinedName, pos, "dataset %s does not exist", inputName)
	}
	for _, row := range inDS.Rows {
		ctx.pdv.LoadRow(inDS, row)
		ip.runIterationBody(ctx, body)
	}
}

func (ip *Interpreter) runDatalinesDriven(ctx *stepCtx, in *ast.InputStmt, dl *ast.DatalinesStmt, body []ast.Statement) {
	tmp := catalog.NewDataset("(datalines)")
	for _, v := range in.Vars {
		tmp.EnsureColumn(v.Name, !v.IsChar)
	}
	for _, line := range dl.Lines {
		fields := strings.Fields(line)
		row := tmp.NewRow()
		for i, v := range in.Vars {
			raw := ""
			if i < len(fields) {
				raw = fields[i]
			}
			if v.IsChar {
				catalog.Put(row, v.Name, value.NewString(raw))
			} else {
				n, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					catalog.Put(row, v.Name, value.NumMissing)
				} else {
					catalog.Put(row, v.Name, value.NewNumber(n))
				}
			}
		}
		tmp.Rows = append(tmp.Rows, row)
	}
	for _, row := range tmp.Rows {
		ctx.pdv.LoadRow(tmp, row)
		ip.runIterationBody(ctx, body)
	}
}

// runIterationBody executes one DATA-step iteration's worth of body
// statements, performs the implicit end-of-iteration OUTPUT when the body
// never called OUTPUT itself (spec.md §4.5 step 3), then resets the PDV for
// the next iteration (step 4).
func (ip *Interpreter) runIterationBody(ctx *stepCtx, body []ast.Statement) {
	ip.execStmts(ctx, body)
	if !ctx.hasExplicitOutput {
		ip.emitOutput(ctx)
	}
	ctx.pdv.Reset()
}

func (ip *Interpreter) emitOutput(ctx *stepCtx) {
	row := ctx.pdv.Snapshot(ctx.outDS, ctx.keep, ctx.drop)
	ctx.outDS.Rows = append(ctx.outDS.Rows, row)
}

// applyDeclarations walks body recursively (RETAIN/ARRAY/LENGTH/DROP/KEEP
// may appear nested inside IF/DO blocks) and wires every declaration into
// ctx before the first iteration runs, since they affect PDV shape rather
// than flow (spec.md §4.5 step 2).
func applyDeclarations(ctx *stepCtx, body []ast.Statement) {
	for _, s := range body {
		switch n := s.(type) {
		case *ast.RetainStmt:
			for i, name := range n.Names {
				var initial *value.Value
				if i < len(n.Inits) && n.Inits[i] != nil {
					v := literalValue(n.Inits[i])
					initial = &v
				}
				isNumeric := initial == nil || initial.Kind == value.Number
				ctx.pdv.MarkRetained(name, isNumeric, initial)
			}
		case *ast.LengthStmt:
			for _, name := range n.Names {
				ctx.pdv.DeclareLength(name, n.IsChar, n.CharLength)
			}
		case *ast.ArrayStmt:
			ctx.arrays[strings.ToLower(n.Name)] = n.Vars
			for _, v := range n.Vars {
				ctx.pdv.Add(v, true)
			}
		case *ast.DropStmt:
			ctx.drop = append(ctx.drop, n.Names...)
		case *ast.KeepStmt:
			ctx.keep = append(ctx.keep, n.Names...)
		case *ast.IfThenElse:
			applyDeclarations(ctx, n.Body)
			for _, ei := range n.ElseIfs {
				applyDeclarations(ctx, ei.Body)
			}
			applyDeclarations(ctx, n.ElseBody)
		case *ast.DoLoop:
			applyDeclarations(ctx, n.Body)
		}
	}
}

// literalValue pulls a compile-time constant out of a RETAIN initializer
// expression, which the grammar restricts to a bare number or string
// literal (internal/parser's parseRetain).
func literalValue(e ast.Expression) value.Value {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		return value.NewNumber(n.Value)
	case *ast.StringLiteral:
		return value.NewString(n.Value)
	default:
		return value.NumMissing
	}
}

func containsOutput(body []ast.Statement) bool {
	for _, s := range body {
		switch n := s.(type) {
		case *ast.OutputStmt:
			return true
		case *ast.IfThenElse:
			if containsOutput(n.Body) {
				return true
			}
			for _, ei := range n.ElseIfs {
				if containsOutput(ei.Body) {
					return true
				}
			}
			if containsOutput(n.ElseBody) {
				return true
			}
		case *ast.DoLoop:
			if containsOutput(n.Body) {
				return true
			}
		}
	}
	return false
}

func findMergeAndBy(body []ast.Statement) (*ast.MergeStmt, *ast.ByStmt) {
	var m *ast.MergeStmt
	var b *ast.ByStmt
	for _, s := range body {
		switch n := s.(type) {
		case *ast.MergeStmt:
			m = n
		case *ast.ByStmt:
			b = n
		}
	}
	return m, b
}

func findInputAndDatalines(body []ast.Statement) (*ast.InputStmt, *ast.DatalinesStmt) {
	var in *ast.InputStmt
	var dl *ast.DatalinesStmt
	for _, s := range body {
		switch n := s.(type) {
		case *ast.InputStmt:
			in = n
		case *ast.DatalinesStmt:
			dl = n
		}
	}
	return in, dl
}
