package interp

import (
	"math"
	"strings"
	"time"

	"github.com/cwbudde/gosas/internal/ast"
	"github.com/cwbudde/gosas/internal/errs"
	"github.com/cwbudde/gosas/internal/value"
)

// evalFunctionCall dispatches a built-in function by name (spec.md §4.3's
// function library: sqrt/abs/log/log10/exp/ceil/floor/round, substr/trim/
// left/upcase/lowcase, today/intck/intnx).
func (ip *Interpreter) evalFunctionCall(ctx *stepCtx, n *ast.FunctionCall) value.Value {
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = ip.evalExpr(ctx, a)
	}
	name := strings.ToLower(n.Name)

	switch name {
	case "sqrt":
		return ip.mathFn1(n, args, func(x float64) (float64, bool) {
			if x < 0 {
				return 0, false
			}
			return math.Sqrt(x), true
		}, "sqrt of a negative number")
	case "abs":
		return ip.mathFn1(n, args, func(x float64) (float64, bool) { return math.Abs(x), true }, "")
	case "log":
		return ip.mathFn1(n, args, func(x float64) (float64, bool) {
			if x <= 0 {
				return 0, false
			}
			return math.Log(x), true
		}, "log of a non-positive number")
	case "log10":
		return ip.mathFn1(n, args, func(x float64) (float64, bool) {
			if x <= 0 {
				return 0, false
			}
			return math.Log10(x), true
		}, "log10 of a non-positive number")
	case "exp":
		return ip.mathFn1(n, args, func(x float64) (float64, bool) { return math.Exp(x), true }, "")
	case "ceil":
		return ip.mathFn1(n, args, func(x float64) (float64, bool) { return math.Ceil(x), true }, "")
	case "floor":
		return ip.mathFn1(n, args, func(x float64) (float64, bool) { return math.Floor(x), true }, "")
	case "round":
		return ip.evalRound(n, args)
	case "substr":
		return ip.evalSubstr(n, args)
	case "trim":
		return value.NewString(value.Trim(argString(args, 0)))
	case "left":
		return value.NewString(value.Left(argString(args, 0)))
	case "upcase":
		return value.NewString(value.Upcase(argString(args, 0)))
	case "lowcase":
		return value.NewString(value.Lowcase(argString(args, 0)))
	case "today":
		return value.NewNumber(todayYYYYMMDD())
	case "intck":
		return ip.evalIntck(n, args)
	case "intnx":
		return ip.evalIntnx(n, args)
	default:
		ip.abort(errs.UndefinedName, n.Pos(), "function %s is not defined", n.Name)
		return value.NumMissing
	}
}

func (ip *Interpreter) mathFn1(n *ast.FunctionCall, args []value.Value, fn func(float64) (float64, bool), domainMsg string) value.Value {
	if len(args) < 1 {
		ip.abort(errs.TypeError, n.Pos(), "%s requires one argument", n.Name)
	}
	x := value.ToNumber(args[0])
	if x.Missing {
		return value.NumMissing
	}
	r, ok := fn(x.Num)
	if !ok {
		ip.warn(errs.ArithError, n.Pos(), "%s", domainMsg)
		return value.NumMissing
	}
	return value.NewNumber(r)
}

func (ip *Interpreter) evalRound(n *ast.FunctionCall, args []value.Value) value.Value {
	if len(args) < 1 {
		ip.abort(errs.TypeError, n.Pos(), "round requires at least one argument")
	}
	x := value.ToNumber(args[0])
	if x.Missing {
		return value.NumMissing
	}
	if len(args) == 1 {
		return value.NewNumber(math.Round(x.Num))
	}
	d := value.ToNumber(args[1])
	if d.Missing || d.Num == 0 {
		return value.NewNumber(math.Round(x.Num))
	}
	factor := math.Pow(10, d.Num)
	return value.NewNumber(math.Round(x.Num*factor) / factor)
}

func (ip *Interpreter) evalSubstr(n *ast.FunctionCall, args []value.Value) value.Value {
	if len(args) < 2 {
		ip.abort(errs.TypeError, n.Pos(), "substr requires at least two arguments")
	}
	s := argString(args, 0)
	pos := int(value.ToNumber(args[1]).Num)
	if pos < 1 {
		pos = 1
	}
	if pos > len(s) {
		return value.NewString("")
	}
	end := len(s)
	if len(args) >= 3 {
		l := int(value.ToNumber(args[2]).Num)
		if pos-1+l < end {
			end = pos - 1 + l
		}
	}
	return value.NewString(s[pos-1 : end])
}

func argString(args []value.Value, i int) string {
	if i >= len(args) {
		return ""
	}
	v := args[i]
	if v.Kind == value.String {
		return v.Str
	}
	return value.ToString(v)
}

func todayYYYYMMDD() float64 {
	now := time.Now()
	return float64(now.Year()*10000 + int(now.Month())*100 + now.Day())
}

// evalIntck computes a day-count difference, the only interval this subset
// supports; other intervals are rejected.
func (ip *Interpreter) evalIntck(n *ast.FunctionCall, args []value.Value) value.Value {
	if len(args) != 3 {
		ip.abort(errs.TypeError, n.Pos(), "intck requires three arguments")
	}
	if strings.ToLower(argString(args, 0)) != "day" {
		ip.abort(errs.RuntimeFatal, n.Pos(), "intck only supports the 'day' interval in this implementation")
	}
	a := value.ToNumber(args[1])
	b := value.ToNumber(args[2])
	if a.Missing || b.Missing {
		return value.NumMissing
	}
	return value.NewNumber(b.Num - a.Num)
}

// evalIntnx advances a day-encoded value by n days.
func (ip *Interpreter) evalIntnx(n *ast.FunctionCall, args []value.Value) value.Value {
	if len(args) != 3 {
		ip.abort(errs.TypeError, n.Pos(), "intnx requires three arguments")
	}
	if strings.ToLower(argString(args, 0)) != "day" {
		ip.abort(errs.RuntimeFatal, n.Pos(), "intnx only supports the 'day' interval in this implementation")
	}
	start := value.ToNumber(args[1])
	shift := value.ToNumber(args[2])
	if start.Missing || shift.Missing {
		return value.NumMissing
	}
	return value.NewNumber(start.Num + shift.Num)
}
