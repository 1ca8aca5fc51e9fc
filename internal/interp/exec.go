package interp

import (
	"math"

	"github.com/cwbudde/gosas/internal/ast"
	"github.com/cwbudde/gosas/internal/errs"
	"github.com/cwbudde/gosas/internal/value"
)

// execStmts runs a statement list in order.
func (ip *Interpreter) execStmts(ctx *stepCtx, stmts []ast.Statement) {
	for _, s := range stmts {
		ip.execStmt(ctx, s)
	}
}

// execStmt executes one DATA-step body statement. RETAIN/ARRAY/LENGTH/
// DROP/KEEP/MERGE/BY/INPUT/DATALINES are setup-only declarations already
// consumed by applyDeclarations/findMergeAndBy/findInputAndDatalines before
// the first iteration, so they are no-ops here.
func (ip *Interpreter) execStmt(ctx *stepCtx, s ast.Statement) {
	switch n := s.(type) {
	case *ast.Assignment:
		v := ip.evalExpr(ctx, n.Value)
		ctx.pdv.Set(n.Name, v)
	case *ast.IfThenElse:
		ip.execIf(ctx, n)
	case *ast.DoLoop:
		ip.execDoLoop(ctx, n)
	case *ast.OutputStmt:
		ip.emitOutput(ctx)
	case *ast.RetainStmt, *ast.LengthStmt, *ast.ArrayStmt, *ast.DropStmt, *ast.KeepStmt,
		*ast.MergeStmt, *ast.ByStmt, *ast.InputStmt, *ast.DatalinesStmt:
		// declaration/setup only
	}
}

func (ip *Interpreter) execIf(ctx *stepCtx, n *ast.IfThenElse) {
	if value.Truthy(ip.evalExpr(ctx, n.Cond)) {
		ip.execStmts(ctx, n.Body)
		return
	}
	for _, ei := range n.ElseIfs {
		if value.Truthy(ip.evalExpr(ctx, ei.Cond)) {
			ip.execStmts(ctx, ei.Body)
			return
		}
	}
	if n.ElseBody != nil {
		ip.execStmts(ctx, n.ElseBody)
	}
}

// execDoLoop executes the three DO forms spec.md §4.6 describes: iterative
// (var = start to/downto end by step), conditional (while/until), and the
// bare "do ; ... ; end ;" block executed exactly once. Every looping form is
// capped at maxIterations to turn a runaway condition into a diagnosed
// RuntimeFatal instead of hanging the process (spec.md §7).
func (ip *Interpreter) execDoLoop(ctx *stepCtx, n *ast.DoLoop) {
	switch {
	case n.LoopVar != "":
		ip.execIterativeDo(ctx, n)
	case n.CondKind == "while":
		count := 0
		for value.Truthy(ip.evalExpr(ctx, n.Cond)) {
			ip.execStmts(ctx, n.Body)
			count++
			if count > ip.maxIterations {
				ip.abort(errs.RuntimeFatal, n.Pos(), "DO WHILE exceeded %d iterations", ip.maxIterations)
			}
		}
	case n.CondKind == "until":
		count := 0
		for {
			ip.execStmts(ctx, n.Body)
			count++
			if count > ip.maxIterations {
				ip.abort(errs.RuntimeFatal, n.Pos(), "DO UNTIL exceeded %d iterations", ip.maxIterations)
			}
			if value.Truthy(ip.evalExpr(ctx, n.Cond)) {
				break
			}
		}
	default:
		ip.execStmts(ctx, n.Body)
	}
}

func (ip *Interpreter) execIterativeDo(ctx *stepCtx, n *ast.DoLoop) {
	start := value.ToNumber(ip.evalExpr(ctx, n.Start)).Num
	end := value.ToNumber(ip.evalExpr(ctx, n.End)).Num
	step := 1.0
	if n.Step != nil {
		step = value.ToNumber(ip.evalExpr(ctx, n.Step)).Num
	}
	if n.Downto {
		step = -math.Abs(step)
	}
	if step == 0 {
		ip.abort(errs.RangeError, n.Pos(), "DO loop step evaluates to zero")
	}

	count := 0
	for i := start; (step > 0 && i <= end) || (step < 0 && i >= end); i += step {
		ctx.pdv.Set(n.LoopVar, value.NewNumber(i))
		ip.execStmts(ctx, n.Body)
		count++
		if count > ip.maxIterations {
			ip.abort(errs.RuntimeFatal, n.Pos(), "DO loop exceeded %d iterations", ip.maxIterations)
		}
	}
}
