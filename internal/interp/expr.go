package interp

import (
	"math"
	"strings"

	"github.com/cwbudde/gosas/internal/ast"
	"github.com/cwbudde/gosas/internal/errs"
	"github.com/cwbudde/gosas/internal/token"
	"github.com/cwbudde/gosas/internal/value"
)

// evalExpr evaluates an expression node against the current PDV, following
// the operator semantics of spec.md §4.3.
func (ip *Interpreter) evalExpr(ctx *stepCtx, e ast.Expression) value.Value {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		return value.NewNumber(n.Value)
	case *ast.StringLiteral:
		return value.NewString(n.Value)
	case *ast.VariableRef:
		return ip.evalVariableRef(ctx, n)
	case *ast.ArrayElement:
		return ip.evalArrayElement(ctx, n)
	case *ast.FunctionCall:
		return ip.evalFunctionCall(ctx, n)
	case *ast.BinaryOp:
		return ip.evalBinaryOp(ctx, n)
	case *ast.UnaryOp:
		return ip.evalUnaryOp(ctx, n)
	default:
		return value.NumMissing
	}
}

func (ip *Interpreter) evalVariableRef(ctx *stepCtx, n *ast.VariableRef) value.Value {
	idx := ctx.pdv.IndexOf(n.Name)
	if idx < 0 {
		ip.warn(errs.UndefinedName, n.Pos(), "variable %s is used before it is assigned a value", n.Name)
		return value.NumMissing
	}
	return ctx.pdv.GetAt(idx)
}

func (ip *Interpreter) evalArrayElement(ctx *stepCtx, n *ast.ArrayElement) value.Value {
	members, ok := ctx.arrays[strings.ToLower(n.Name)]
	if !ok {
		ip.abort(errs.UndefinedName, n.Pos(), "array %s is not declared", n.Name)
	}
	idxVal := value.ToNumber(ip.evalExpr(ctx, n.Index))
	if idxVal.Missing {
		ip.abort(errs.RangeError, n.Pos(), "array %s subscript is missing", n.Name)
	}
	idx := int(idxVal.Num)
	if idx < 1 || idx > len(members) {
		ip.abort(errs.RangeError, n.Pos(), "array %s subscript %d is out of range 1:%d", n.Name, idx, len(members))
	}
	return ctx.pdv.Get(members[idx-1])
}

func (ip *Interpreter) evalUnaryOp(ctx *stepCtx, n *ast.UnaryOp) value.Value {
	v := ip.evalExpr(ctx, n.Operand)
	switch n.Op {
	case token.MINUS:
		nv := value.ToNumber(v)
		if nv.Missing {
			return value.NumMissing
		}
		return value.NewNumber(-nv.Num)
	case token.NOT:
		if value.Truthy(v) {
			return value.NewNumber(0)
		}
		return value.NewNumber(1)
	default:
		return value.NumMissing
	}
}

func (ip *Interpreter) evalBinaryOp(ctx *stepCtx, n *ast.BinaryOp) value.Value {
	left := ip.evalExpr(ctx, n.Left)

	switch n.Op {
	case token.AND:
		right := ip.evalExpr(ctx, n.Right)
		return boolVal(value.Truthy(left) && value.Truthy(right))
	case token.OR:
		right := ip.evalExpr(ctx, n.Right)
		return boolVal(value.Truthy(left) || value.Truthy(right))
	}

	right := ip.evalExpr(ctx, n.Right)

	switch n.Op {
	case token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE:
		return ip.evalComparison(n.Op, left, right)
	case token.PLUS, token.MINUS, token.MUL, token.DIV, token.POWER:
		return ip.evalArith(ctx, n, left, right)
	default:
		return value.NumMissing
	}
}

func boolVal(b bool) value.Value {
	if b {
		return value.NewNumber(1)
	}
	return value.NewNumber(0)
}

// evalComparison implements spec.md §4.3's comparison rule: a numeric-
// missing operand compared against anything except another numeric-missing
// makes the whole comparison false, rather than ordering missing as the
// lowest value the way PROC SORT does.
func (ip *Interpreter) evalComparison(op token.Type, a, b value.Value) value.Value {
	if a.Kind == value.String && b.Kind == value.String {
		return boolVal(compareStrings(op, a.Str, b.Str))
	}

	na, nb := value.ToNumber(a), value.ToNumber(b)
	if na.Missing || nb.Missing {
		if na.Missing && nb.Missing {
			return boolVal(compareNumeric(op, 0, 0))
		}
		return value.NewNumber(0)
	}
	return boolVal(compareNumeric(op, na.Num, nb.Num))
}

func compareNumeric(op token.Type, a, b float64) bool {
	switch op {
	case token.EQ:
		return a == b
	case token.NE:
		return a != b
	case token.LT:
		return a < b
	case token.LE:
		return a <= b
	case token.GT:
		return a > b
	case token.GE:
		return a >= b
	default:
		return false
	}
}

func compareStrings(op token.Type, a, b string) bool {
	switch op {
	case token.EQ:
		return a == b
	case token.NE:
		return a != b
	case token.LT:
		return a < b
	case token.LE:
		return a <= b
	case token.GT:
		return a > b
	case token.GE:
		return a >= b
	default:
		return false
	}
}

// evalArith implements the arithmetic operators + - * / **. A missing operand
// propagates to a missing result; division by zero is an ArithError
// (warning, missing result), not a panic (spec.md §4.3, §7).
func (ip *Interpreter) evalArith(ctx *stepCtx, n *ast.BinaryOp, a, b value.Value) value.Value {
	na, nb := value.ToNumber(a), value.ToNumber(b)
	if na.Missing || nb.Missing {
		return value.NumMissing
	}
	switch n.Op {
	case token.PLUS:
		return value.NewNumber(na.Num + nb.Num)
	case token.MINUS:
		return value.NewNumber(na.Num - nb.Num)
	case token.MUL:
		return value.NewNumber(na.Num * nb.Num)
	case token.DIV:
		if nb.Num == 0 {
			ip.warn(errs.ArithError, n.Pos(), "division by zero")
			return value.NumMissing
		}
		return value.NewNumber(na.Num / nb.Num)
	case token.POWER:
		return value.NewNumber(math.Pow(na.Num, nb.Num))
	default:
		return value.NumMissing
	}
}
