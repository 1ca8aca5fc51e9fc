package interp

import (
	"strconv"
	"strings"
	"testing"

	"github.com/cwbudde/gosas/internal/catalog"
	"github.com/cwbudde/gosas/internal/lexer"
	"github.com/cwbudde/gosas/internal/parser"
	"github.com/cwbudde/gosas/internal/sink"
)

// run parses and executes src against a fresh Catalog, failing the test on
// any parse error, and returns the interpreter plus its captured log/listing
// lines for assertions.
func run(t *testing.T, src string) (*Interpreter, *sink.MemorySink, *sink.MemorySink) {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		for _, e := range p.Errors() {
			t.Errorf("parse error: %s", e.String())
		}
		t.FailNow()
	}
	log := sink.NewMemorySink()
	listing := sink.NewMemorySink()
	ip := New(catalog.New(), log, listing)
	ip.Run(prog, src)
	return ip, log, listing
}

func getDataset(t *testing.T, ip *Interpreter, name string) *catalog.Dataset {
	t.Helper()
	lr, nm := catalog.SplitName(name)
	ds, ok := ip.Catalog().GetDataset(lr, nm)
	if !ok {
		t.Fatalf("dataset %s was not created", name)
	}
	return ds
}

func TestSingleIterationDataStepOutputsOneRow(t *testing.T) {
	ip, _, _ := run(t, `data a; x = 10; y = x * 2; output; run;`)
	ds := getDataset(t, ip, "WORK.A")
	if len(ds.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(ds.Rows))
	}
	if ds.Get(ds.Rows[0], "y").Num != 20 {
		t.Errorf("expected y=20, got %v", ds.Get(ds.Rows[0], "y").Num)
	}
}

func TestImplicitOutputWhenNoExplicitOutputStatement(t *testing.T) {
	ip, _, _ := run(t, `data a; x = 1; run;`)
	ds := getDataset(t, ip, "WORK.A")
	if len(ds.Rows) != 1 {
		t.Fatalf("expected implicit output to still produce 1 row, got %d", len(ds.Rows))
	}
}

func TestSetDrivenIterationOverInput(t *testing.T) {
	seed := `data src; x = 1; output; x = 2; output; x = 3; output; run;`
	square := `data sq; set src; y = x * x; run;`
	ip, _, _ := run(t, seed+square)
	ds := getDataset(t, ip, "WORK.SQ")
	if len(ds.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(ds.Rows))
	}
	want := []float64{1, 4, 9}
	for i, row := range ds.Rows {
		if got := ds.Get(row, "y").Num; got != want[i] {
			t.Errorf("row %d: expected y=%v, got %v", i, want[i], got)
		}
	}
}

func TestRetainCarriesValueAcrossIterations(t *testing.T) {
	seed := `data src; x = 1; output; x = 2; output; x = 3; output; run;`
	accum := `data acc; set src; retain total 0; total = total + x; run;`
	ip, _, _ := run(t, seed+accum)
	ds := getDataset(t, ip, "WORK.ACC")
	want := []float64{1, 3, 6}
	for i, row := range ds.Rows {
		if got := ds.Get(row, "total").Num; got != want[i] {
			t.Errorf("row %d: expected total=%v, got %v", i, want[i], got)
		}
	}
}

func TestKeepProjectionFixesColumnOrder(t *testing.T) {
	ip, _, _ := run(t, `data a; x = 1; y = 2; z = 3; keep z x; output; run;`)
	ds := getDataset(t, ip, "WORK.A")
	if len(ds.Columns) != 2 || ds.Columns[0].Name != "z" || ds.Columns[1].Name != "x" {
		t.Fatalf("expected KEEP to fix column order to [z x], got %v", ds.Columns)
	}
}

func TestDropRemovesVariableKeepsFirstSeenOrder(t *testing.T) {
	ip, _, _ := run(t, `data a; x = 1; y = 2; z = 3; drop y; output; run;`)
	ds := getDataset(t, ip, "WORK.A")
	if len(ds.Columns) != 2 || ds.Columns[0].Name != "x" || ds.Columns[1].Name != "z" {
		t.Fatalf("expected DROP to leave [x z] in first-seen order, got %v", ds.Columns)
	}
}

func TestLengthStatementSetsCharacterColumnLength(t *testing.T) {
	ip, _, _ := run(t, `data a; length x $10; x = "hi"; output; run;`)
	ds := getDataset(t, ip, "WORK.A")
	col, ok := ds.Column("x")
	if !ok {
		t.Fatal("expected column x to exist")
	}
	if col.Length != 10 {
		t.Errorf("expected LENGTH $10 to set column length to 10, got %d", col.Length)
	}
}

func TestIfElseBranchesAssignCorrectly(t *testing.T) {
	ip, _, _ := run(t, `
		data a;
			x = 5;
			if x > 3 then y = 1; else y = 0;
			output;
		run;`)
	ds := getDataset(t, ip, "WORK.A")
	if ds.Get(ds.Rows[0], "y").Num != 1 {
		t.Errorf("expected y=1, got %v", ds.Get(ds.Rows[0], "y").Num)
	}
}

func TestIterativeDoLoopSumsToExpectedTotal(t *testing.T) {
	ip, _, _ := run(t, `
		data a;
			total = 0;
			do i = 1 to 5;
				total = total + i;
			end;
			output;
		run;`)
	ds := getDataset(t, ip, "WORK.A")
	if got := ds.Get(ds.Rows[0], "total").Num; got != 15 {
		t.Errorf("expected total=15, got %v", got)
	}
}

func TestWhileLoopTerminatesOnCondition(t *testing.T) {
	ip, _, _ := run(t, `
		data a;
			n = 1;
			do while (n < 4);
				n = n + 1;
			end;
			output;
		run;`)
	ds := getDataset(t, ip, "WORK.A")
	if got := ds.Get(ds.Rows[0], "n").Num; got != 4 {
		t.Errorf("expected n=4, got %v", got)
	}
}

func TestArrayElementReadsByOneBasedIndex(t *testing.T) {
	ip, _, _ := run(t, `
		data a;
			array scores [3] s1 s2 s3;
			s1 = 10; s2 = 20; s3 = 30;
			second = scores[2];
			output;
		run;`)
	ds := getDataset(t, ip, "WORK.A")
	if got := ds.Get(ds.Rows[0], "second").Num; got != 20 {
		t.Errorf("expected second=20, got %v", got)
	}
}

func TestArrayOutOfRangeIndexAbortsStep(t *testing.T) {
	ip, log, _ := run(t, `
		data a;
			array scores [3] s1 s2 s3;
			bad = scores[9];
			output;
		run;`)
	if ip.ExitStatus() != ExitError {
		t.Fatalf("expected ExitError from out-of-range array access, got %v", ip.ExitStatus())
	}
	if !strings.Contains(log.Text(), "out of range") {
		t.Errorf("expected an out-of-range diagnostic, got log: %s", log.Text())
	}
}

func TestMergeLaterDatasetWinsOnSharedVariable(t *testing.T) {
	src := `
		data left; a = 1; v = "L"; output; a = 2; v = "L"; output; run;
		data right; a = 1; v = "R"; output; run;
		data both; merge left right; by a; run;`
	ip, _, _ := run(t, src)
	ds := getDataset(t, ip, "WORK.BOTH")
	if len(ds.Rows) != 2 {
		t.Fatalf("expected 2 merged rows (union of BY keys 1,2), got %d", len(ds.Rows))
	}
	if ds.Get(ds.Rows[0], "v").Str != "R" {
		t.Errorf("expected the later dataset (right) to win the shared variable v, got %q", ds.Get(ds.Rows[0], "v").Str)
	}
	if ds.Get(ds.Rows[1], "v").Str != "L" {
		t.Errorf("expected key 2 (only in left) to carry left's value, got %q", ds.Get(ds.Rows[1], "v").Str)
	}
}

func TestDivisionByZeroWarnsAndYieldsMissing(t *testing.T) {
	ip, log, _ := run(t, `data a; x = 1 / 0; output; run;`)
	ds := getDataset(t, ip, "WORK.A")
	if !ds.Get(ds.Rows[0], "x").Missing {
		t.Errorf("expected x to be missing after division by zero")
	}
	if ip.ExitStatus() != ExitWarning {
		t.Errorf("expected ExitWarning, got %v", ip.ExitStatus())
	}
	if !strings.Contains(log.Text(), "division by zero") {
		t.Errorf("expected a division-by-zero warning, got log: %s", log.Text())
	}
}

func TestProcSortOrdersByVariableAndAppliesNodupkey(t *testing.T) {
	seed := `data src; k = 2; output; k = 1; output; k = 1; output; run;`
	sorted := `proc sort data=src out=srt nodupkey; by k; run;`
	ip, _, _ := run(t, seed+sorted)
	ds := getDataset(t, ip, "WORK.SRT")
	if len(ds.Rows) != 2 {
		t.Fatalf("expected NODUPKEY to leave 2 rows, got %d", len(ds.Rows))
	}
	if ds.Get(ds.Rows[0], "k").Num != 1 || ds.Get(ds.Rows[1], "k").Num != 2 {
		t.Errorf("expected rows sorted ascending by k, got %v, %v",
			ds.Get(ds.Rows[0], "k").Num, ds.Get(ds.Rows[1], "k").Num)
	}
}

func TestProcPrintListsEveryRow(t *testing.T) {
	seed := `data src; x = 1; output; x = 2; output; run;`
	print := `proc print data=src; run;`
	_, _, listing := run(t, seed+print)
	lines := listing.Lines()
	if len(lines) != 3 { // header + 2 rows
		t.Fatalf("expected 3 listing lines, got %d: %v", len(lines), lines)
	}
}

func TestProcMeansComputesSummaryStatistics(t *testing.T) {
	seed := `data src; x = 1; output; x = 2; output; x = 3; output; run;`
	means := `proc means data=src; var x; run;`
	_, _, listing := run(t, seed+means)
	text := listing.Text()
	if !strings.Contains(text, "2.0000") { // mean of 1,2,3
		t.Errorf("expected mean of 2.0000 in listing, got: %s", text)
	}
}

func TestProcFreqOrdersByDescendingCount(t *testing.T) {
	seed := `data src; g = "a"; output; g = "b"; output; g = "a"; output; run;`
	freq := `proc freq data=src; tables g; run;`
	_, _, listing := run(t, seed+freq)
	lines := listing.Lines()
	// Expect the two-count value "a" to appear before the one-count value "b".
	idxA, idxB := -1, -1
	for i, l := range lines {
		if strings.HasPrefix(l, "a\t") {
			idxA = i
		}
		if strings.HasPrefix(l, "b\t") {
			idxB = i
		}
	}
	if idxA == -1 || idxB == -1 || idxA > idxB {
		t.Errorf("expected 'a' (count 2) before 'b' (count 1), got lines: %v", lines)
	}
}

func TestProcFreqExcludesMissingValuesFromCounts(t *testing.T) {
	seed := `data src; g = "a"; output; g = ""; output; g = "a"; output; run;`
	freq := `proc freq data=src; tables g; run;`
	_, _, listing := run(t, seed+freq)
	lines := listing.Lines()
	var total int
	for _, l := range lines {
		if strings.HasPrefix(l, "a\t") {
			parts := strings.Split(l, "\t")
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				t.Fatalf("expected a numeric count, got line %q", l)
			}
			total += n
		}
		if strings.HasPrefix(l, "\t") || l == "" {
			t.Errorf("expected the missing value to be excluded from the table, got line %q", l)
		}
	}
	if total != 2 {
		t.Errorf("expected 2 non-missing observations of 'a', got %d", total)
	}
}

func TestUndeclaredVariableWarnsAndReadsAsMissing(t *testing.T) {
	_, log, _ := run(t, `data a; y = x + 1; output; run;`)
	if !strings.Contains(log.Text(), "is used before it is assigned") {
		t.Errorf("expected an undefined-variable warning, got log: %s", log.Text())
	}
}
