package parser

import (
	"testing"

	"github.com/cwbudde/gosas/internal/ast"
	"github.com/cwbudde/gosas/internal/lexer"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	l := lexer.New(src)
	p := New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		for _, e := range p.Errors() {
			t.Errorf("parse error: %s", e.String())
		}
		t.FailNow()
	}
	return prog
}

func TestParseSimpleDataStep(t *testing.T) {
	prog := parseProgram(t, `data a; a = 10; output; run;`)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	ds, ok := prog.Statements[0].(*ast.DataStep)
	if !ok {
		t.Fatalf("expected *ast.DataStep, got %T", prog.Statements[0])
	}
	if ds.Output != "a" {
		t.Errorf("expected output 'a', got %q", ds.Output)
	}
	if len(ds.Body) != 2 {
		t.Fatalf("expected 2 body statements, got %d", len(ds.Body))
	}
	if _, ok := ds.Body[0].(*ast.Assignment); !ok {
		t.Errorf("expected Assignment, got %T", ds.Body[0])
	}
	if _, ok := ds.Body[1].(*ast.OutputStmt); !ok {
		t.Errorf("expected OutputStmt, got %T", ds.Body[1])
	}
}

func TestParseSetStep(t *testing.T) {
	prog := parseProgram(t, `data out; set in; x = 1; run;`)
	ds := prog.Statements[0].(*ast.DataStep)
	if ds.Input != "in" {
		t.Errorf("expected input 'in', got %q", ds.Input)
	}
}

func TestParseInputDatalines(t *testing.T) {
	prog := parseProgram(t, "data employees; input name $ age; datalines;\njohn 23\nmary 30\n;\nrun;")
	ds := prog.Statements[0].(*ast.DataStep)
	var input *ast.InputStmt
	var dl *ast.DatalinesStmt
	for _, s := range ds.Body {
		switch v := s.(type) {
		case *ast.InputStmt:
			input = v
		case *ast.DatalinesStmt:
			dl = v
		}
	}
	if input == nil || len(input.Vars) != 2 {
		t.Fatalf("expected 2 input vars, got %+v", input)
	}
	if !input.Vars[0].IsChar || input.Vars[1].IsChar {
		t.Errorf("expected name char, age numeric: %+v", input.Vars)
	}
	if dl == nil || len(dl.Lines) != 2 {
		t.Fatalf("expected 2 datalines, got %+v", dl)
	}
}

func TestParseIfElseDo(t *testing.T) {
	src := `data out; set in;
  if x > 10 then do; status = 'High'; y = y * 2; end;
  else do; status = 'Low'; y = y + 5; end;
  output;
run;`
	prog := parseProgram(t, src)
	ds := prog.Statements[0].(*ast.DataStep)
	ifStmt, ok := ds.Body[0].(*ast.IfThenElse)
	if !ok {
		t.Fatalf("expected IfThenElse, got %T", ds.Body[0])
	}
	if len(ifStmt.Body) != 2 {
		t.Fatalf("expected 2 then-statements, got %d", len(ifStmt.Body))
	}
	if len(ifStmt.ElseBody) != 2 {
		t.Fatalf("expected 2 else-statements, got %d", len(ifStmt.ElseBody))
	}
}

func TestParseDoIterative(t *testing.T) {
	prog := parseProgram(t, `data a; do i = 1 to 10 by 2; x = i; end; run;`)
	ds := prog.Statements[0].(*ast.DataStep)
	do, ok := ds.Body[0].(*ast.DoLoop)
	if !ok {
		t.Fatalf("expected DoLoop, got %T", ds.Body[0])
	}
	if do.LoopVar != "i" {
		t.Errorf("expected loop var 'i', got %q", do.LoopVar)
	}
	if do.Step == nil {
		t.Error("expected a BY step expression")
	}
}

func TestParseMergeBy(t *testing.T) {
	prog := parseProgram(t, `data out; merge ds1 ds2; by id; run;`)
	ds := prog.Statements[0].(*ast.DataStep)
	var merge *ast.MergeStmt
	var by *ast.ByStmt
	for _, s := range ds.Body {
		switch v := s.(type) {
		case *ast.MergeStmt:
			merge = v
		case *ast.ByStmt:
			by = v
		}
	}
	if merge == nil || len(merge.Datasets) != 2 {
		t.Fatalf("expected 2 merge datasets, got %+v", merge)
	}
	if by == nil || len(by.Names) != 1 || by.Names[0] != "id" {
		t.Fatalf("expected BY id, got %+v", by)
	}
}

func TestParseProcSort(t *testing.T) {
	prog := parseProgram(t, `proc sort data=a out=b; by x; nodupkey; run;`)
	sortStmt, ok := prog.Statements[0].(*ast.ProcSort)
	if !ok {
		t.Fatalf("expected ProcSort, got %T", prog.Statements[0])
	}
	if sortStmt.Input != "a" || sortStmt.Output != "b" {
		t.Errorf("unexpected in/out: %+v", sortStmt)
	}
	if !sortStmt.NoDupKey {
		t.Error("expected NoDupKey true")
	}
	if len(sortStmt.By) != 1 || sortStmt.By[0] != "x" {
		t.Errorf("unexpected BY: %+v", sortStmt.By)
	}
}

func TestParseProcPrint(t *testing.T) {
	prog := parseProgram(t, `proc print data=a; var x y; noobs; run;`)
	pr, ok := prog.Statements[0].(*ast.ProcPrint)
	if !ok {
		t.Fatalf("expected ProcPrint, got %T", prog.Statements[0])
	}
	if pr.Data != "a" || !pr.NoObs {
		t.Errorf("unexpected: %+v", pr)
	}
	if len(pr.Vars) != 2 {
		t.Errorf("expected 2 vars, got %+v", pr.Vars)
	}
}

func TestExpressionPrecedence(t *testing.T) {
	prog := parseProgram(t, `data a; x = 1 + 2 * 3; run;`)
	ds := prog.Statements[0].(*ast.DataStep)
	assign := ds.Body[0].(*ast.Assignment)
	bin, ok := assign.Value.(*ast.BinaryOp)
	if !ok {
		t.Fatalf("expected BinaryOp, got %T", assign.Value)
	}
	// top-level op should be '+', with '2*3' nested on the right
	if _, ok := bin.Right.(*ast.BinaryOp); !ok {
		t.Errorf("expected right side to be the nested multiplication, got %T", bin.Right)
	}
	if _, ok := bin.Left.(*ast.NumberLiteral); !ok {
		t.Errorf("expected left side to be a literal, got %T", bin.Left)
	}
}

func TestParseErrorRecoverySynchronizesAtRun(t *testing.T) {
	l := lexer.New(`data a; ### ; x = 1; run; data b; y = 2; output; run;`)
	p := New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected at least one parse error")
	}
	// Despite the garbage token, the second DATA step should still parse.
	found := false
	for _, s := range prog.Statements {
		if ds, ok := s.(*ast.DataStep); ok && ds.Output == "b" {
			found = true
		}
	}
	if !found {
		t.Error("expected parser to recover and still parse 'data b'")
	}
}
